package devapi

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/model"
)

const testKey = "devapi-test-key"

type tokenVar struct{ token string }

func (v *tokenVar) Token(context.Context) (string, error) { return v.token, nil }

func setup(t *testing.T, envelope bool) (*apiclient.Client, *tokenVar, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := Seed()
	srv := New(store, testKey)
	srv.Envelope = envelope
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	tokens := &tokenVar{}
	return apiclient.New(ts.URL, 5*time.Second, tokens, nil), tokens, store
}

func login(t *testing.T, client *apiclient.Client, tokens *tokenVar) {
	t.Helper()
	token, err := client.Login(context.Background(), SeedPhone, SeedPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	tokens.token = token
}

func TestLogin(t *testing.T) {
	client, _, _ := setup(t, false)
	ctx := context.Background()

	_, err := client.Login(ctx, SeedPhone, "wrong")
	require.Error(t, err)
	assert.True(t, apiclient.IsAuth(err))

	_, err = client.GetTeacher(ctx, SeedTeacherID)
	assert.True(t, apiclient.IsAuth(err), "bearer token required")
}

func TestTeacherAndGroups(t *testing.T) {
	for _, envelope := range []bool{false, true} {
		client, tokens, _ := setup(t, envelope)
		login(t, client, tokens)
		ctx := context.Background()

		teacher, err := client.GetTeacher(ctx, SeedTeacherID)
		require.NoError(t, err)
		assert.Equal(t, "Aziz", teacher.FirstName)

		groups, err := client.ListGroups(ctx, SeedTeacherID)
		require.NoError(t, err)
		require.Len(t, groups, 3)
		assert.Equal(t, 4, groups[0].Students())

		students, err := client.ListStudents(ctx, groups[0].ID)
		require.NoError(t, err)
		assert.Len(t, students, 4)

		leaders, err := client.ListLeaders(ctx)
		require.NoError(t, err)
		require.Len(t, leaders, 3)
		for _, l := range leaders {
			assert.Equal(t, model.StatusLeader, l.Status)
		}
	}
}

func TestAttendanceRoundTrip(t *testing.T) {
	client, tokens, _ := setup(t, false)
	login(t, client, tokens)
	ctx := context.Background()
	groupID := SeedID("group/eng-a1")
	studentID := SeedID("student/ENG-A1/Ali")

	rec, err := client.CreateAttendance(ctx, apiclient.NewAttendance{
		GroupID: groupID, StudentID: studentID, Date: "2026-10-14T00:00:00.000Z", Status: model.Present,
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	_, err = client.CreateAttendance(ctx, apiclient.NewAttendance{
		GroupID: groupID, StudentID: studentID, Date: "2026-10-14T00:00:00.000Z", Status: model.Late,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apiclient.StatusOf(err))

	updated, err := client.UpdateAttendance(ctx, rec.ID, apiclient.AttendanceUpdate{Status: model.Late})
	require.NoError(t, err)
	assert.Equal(t, model.Late, updated.Status)

	list, err := client.ListAttendance(ctx, apiclient.AttendanceFilter{GroupID: groupID, Date: "2026-10-14"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.Late, list[0].Status)

	list, err = client.ListAttendance(ctx, apiclient.AttendanceFilter{GroupID: groupID, Date: "2026-10-13"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFeedbackRoundTrip(t *testing.T) {
	client, tokens, _ := setup(t, true)
	login(t, client, tokens)
	ctx := context.Background()
	groupID := SeedID("group/eng-a1")

	fb, err := client.CreateFeedback(ctx, apiclient.NewFeedback{
		StudentID: SeedID("student/ENG-A1/Ali"), GroupID: groupID, Ball: 92,
		Feedback: "A'lo", FeedbackDate: "2026-10-14T09:00:00.000Z",
	})
	require.NoError(t, err)

	list, err := client.ListFeedback(ctx, groupID, "2026-10-14")
	require.NoError(t, err)
	require.Len(t, list, 1)

	ball := 70
	updated, err := client.UpdateFeedback(ctx, fb.ID, apiclient.FeedbackUpdate{Ball: &ball})
	require.NoError(t, err)
	assert.Equal(t, 70, updated.Ball)
	assert.Equal(t, "A'lo", updated.Feedback)

	require.NoError(t, client.DeleteFeedback(ctx, fb.ID))
	_, err = client.GetFeedback(ctx, fb.ID)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
}

func TestUpdateTeacher(t *testing.T) {
	client, tokens, store := setup(t, false)
	login(t, client, tokens)
	ctx := context.Background()

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 20, 20))))
	teacher, err := client.UpdateTeacher(ctx, SeedTeacherID, apiclient.ProfileUpdate{
		FirstName: "Aziz", LastName: "Karimov", Phone: SeedPhone, Address: "Samarqand",
		Image: &apiclient.File{Name: "me.png", Data: img.Bytes()},
	})
	require.NoError(t, err)
	assert.Equal(t, "Samarqand", teacher.Address)
	assert.NotEmpty(t, teacher.Image)
	_, ok := store.Avatar(SeedTeacherID)
	assert.True(t, ok)

	_, err = client.UpdateTeacher(ctx, SeedID("teacher/malika"), apiclient.ProfileUpdate{FirstName: "X"})
	assert.Equal(t, http.StatusForbidden, apiclient.StatusOf(err))
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	New(NewStore(), testKey).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
