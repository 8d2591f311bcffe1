package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/config"
	"teacherdash/internal/devapi"
	"teacherdash/internal/logger"
	"teacherdash/internal/model"
)

var (
	groupA1 = devapi.SeedID("group/eng-a1")
	madina  = devapi.SeedID("student/ENG-A1/Madina")
)

type harness struct {
	t       *testing.T
	cfg     config.App
	api     *devapi.Store
	session []string
	out     bytes.Buffer
}

func setup(t *testing.T, store string) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := devapi.Seed()
	upstream := httptest.NewServer(devapi.New(api, "cli-test-key").Handler())
	t.Cleanup(upstream.Close)

	path := filepath.Join(t.TempDir(), "session")
	return &harness{
		t:       t,
		cfg:     config.App{APIBaseURL: upstream.URL, APITimeout: 5 * time.Second, AvatarMaxPx: 64},
		api:     api,
		session: []string{"-store", store, "-session", path},
	}
}

// run executes one invocation as a separate process would, with a fresh controller.
func (h *harness) run(args ...string) (string, error) {
	h.out.Reset()
	cli := &commandLine{cfg: h.cfg, log: logger.Discard(), out: &h.out}
	full := append(append([]string{"teacherctl"}, h.session...), args...)
	err := cli.run(full)
	if cli.close != nil {
		require.NoError(h.t, cli.close())
	}
	return h.out.String(), err
}

func withPassword(t *testing.T, pwd string) {
	prev := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = prev })
}

func Test_commandLine_usage(t *testing.T) {
	h := setup(t, storeFile)
	withPassword(t, "")

	tests := []struct {
		name       string
		args       []string
		wantErr    error
		wantErrStr string
	}{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "login without phone", args: []string{"login"}, wantErr: errHelp},
		{name: "login without password", args: []string{"login", "-phone", "901234567"}, wantErr: errHelp},
		{name: "students without group", args: []string{"students"}, wantErr: errHelp},
		{name: "attendance without subcommand", args: []string{"attendance"}, wantErr: errHelp},
		{name: "attendance unknown subcommand", args: []string{"attendance", "lol"}, wantErr: errHelp},
		{name: "mark without marks", args: []string{"attendance", "mark", "-group", "ENG-A1"}, wantErr: errHelp},
		{name: "feedback add without ball", args: []string{"feedback", "add", "-group", "ENG-A1", "-student", "x"}, wantErr: errHelp},
		{name: "not signed in", args: []string{"groups"}, wantErr: errNotSignedIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.EqualError(t, err, tt.wantErrStr)
		})
	}
}

func Test_commandLine_unknownStore(t *testing.T) {
	h := setup(t, "bogus")
	_, err := h.run("status")
	assert.EqualError(t, err, `"bogus": unknown session store`)
}

func Test_commandLine_login(t *testing.T) {
	h := setup(t, storeFile)

	withPassword(t, "wrong")
	_, err := h.run("login", "-phone", "90 123 45 67")
	assert.EqualError(t, err, apiclient.ErrAuth.Message)

	withPassword(t, devapi.SeedPassword)
	out, err := h.run("login", "-phone", devapi.SeedPhone)
	require.NoError(t, err)
	assert.Contains(t, out, "Xush kelibsiz, Aziz Karimov!")

	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Holat: ready")
	assert.Contains(t, out, "Guruhlar: 3")

	out, err = h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Tizimdan chiqildi.")

	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Holat: loggedOut")
}

func Test_commandLine_sqliteSession(t *testing.T) {
	h := setup(t, storeSQLite)
	withPassword(t, devapi.SeedPassword)

	_, err := h.run("login", "-phone", "901234567")
	require.NoError(t, err)

	out, err := h.run("groups")
	require.NoError(t, err)
	assert.Contains(t, out, "ENG-A1")
	assert.Contains(t, out, "Guruh IELTS-1")
}

func Test_commandLine_attendance(t *testing.T) {
	h := setup(t, storeFile)
	withPassword(t, devapi.SeedPassword)
	_, err := h.run("login", "-phone", "901234567")
	require.NoError(t, err)
	date := time.Now().Format(model.DateLayout)

	out, err := h.run("students", "-group", "eng-a1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ali Valiyev")
	assert.Contains(t, out, "Nodira Saidova")

	_, err = h.run("attendance", "mark", "-group", "ENG-A1", "Ali Valiyev=maybe")
	assert.EqualError(t, err, `"maybe": noma'lum holat`)
	_, err = h.run("attendance", "mark", "-group", "ENG-A1", "Nobody=KELDI")
	assert.EqualError(t, err, "o'quvchi topilmadi: Nobody")
	_, err = h.run("attendance", "mark", "-group", "NOPE", "-all", "KELDI")
	assert.EqualError(t, err, "guruh topilmadi: NOPE")

	out, err = h.run("attendance", "mark", "-group", "ENG-A1", "-all", "KELDI", "ali valiyev=kechikdi")
	require.NoError(t, err)
	assert.Contains(t, out, "Davomat muvaffaqiyatli saqlandi!")

	records := h.api.Attendance(groupA1, date, 0)
	require.Len(t, records, 4)
	late := 0
	for _, r := range records {
		if r.Status == model.Late {
			late++
		}
	}
	assert.Equal(t, 1, late)

	out, err = h.run("attendance", "show", "-group", groupA1, "-date", date)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingliz tili A1, "+date)
	assert.Contains(t, out, "Keldi: 3  Kelmadi: 0  Kechikdi: 1  Sababli: 0  Belgilanmagan: 0")

	file := filepath.Join(t.TempDir(), "a1.xlsx")
	out, err = h.run("export", "-group", "ENG-A1", "-out", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Saqlandi: "+file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func Test_commandLine_feedback(t *testing.T) {
	h := setup(t, storeFile)
	withPassword(t, devapi.SeedPassword)
	_, err := h.run("login", "-phone", "901234567")
	require.NoError(t, err)

	out, err := h.run("feedback", "list", "-group", "ENG-A1")
	require.NoError(t, err)
	assert.Contains(t, out, "Bu sana uchun fikr-mulohazalar yo'q")

	_, err = h.run("feedback", "add", "-group", "ENG-A1", "-student", "Nodira Saidova", "-ball", "80")
	assert.EqualError(t, err, "o'quvchi topilmadi: Nodira Saidova", "inactive students are not graded")

	_, err = h.run("feedback", "add", "-group", "ENG-A1", "-student", madina, "-ball", "abc")
	assert.Error(t, err)

	out, err = h.run("feedback", "add", "-group", "ENG-A1", "-student", madina, "-ball", "88", "-comment", "Faol qatnashdi")
	require.NoError(t, err)
	assert.Contains(t, out, msgFeedbackSaved)

	out, err = h.run("feedback", "list", "-group", "ENG-A1")
	require.NoError(t, err)
	assert.Contains(t, out, "Madina Ergasheva")
	assert.Contains(t, out, "88")
	assert.Contains(t, out, "Faol qatnashdi")
}
