package feedback

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/model"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		score  int
		prefix string
	}{
		{0, "Juda yomon"}, {25, "Juda yomon"}, {49, "Juda yomon"},
		{50, "Yomon natija"}, {55, "Yomon natija"}, {59, "Yomon natija"},
		{60, "Qoniqarli"}, {65, "Qoniqarli"}, {69, "Qoniqarli"},
		{70, "Yaxshi natija"}, {75, "Yaxshi natija"}, {79, "Yaxshi natija"},
		{80, "Juda yaxshi"}, {85, "Juda yaxshi"}, {89, "Juda yaxshi"},
		{90, "A'lo"}, {95, "A'lo"}, {100, "A'lo"},
	}
	for _, tt := range tests {
		text, ok := Suggest(tt.score)
		require.True(t, ok, tt.score)
		assert.True(t, strings.HasPrefix(text, tt.prefix), "score %d: %s", tt.score, text)
	}
	_, ok := Suggest(101)
	assert.False(t, ok)
	_, ok = Suggest(-1)
	assert.False(t, ok)
}

func TestQuickScores(t *testing.T) {
	assert.Equal(t, []int{50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100}, QuickScores())
}

func TestIsSuggestion(t *testing.T) {
	text, _ := Suggest(75)
	assert.True(t, IsSuggestion(text))
	assert.False(t, IsSuggestion("Uy vazifasini bajarmadi"))
	assert.False(t, IsSuggestion(""))
}

func TestEntry_autofill(t *testing.T) {
	var e Entry
	e.SetBall("95")
	top, _ := Suggest(95)
	assert.Equal(t, top, e.Comment)
	assert.False(t, e.Custom)

	e.SetBall("72")
	mid, _ := Suggest(72)
	assert.Equal(t, mid, e.Comment)

	e.SetBall("")
	assert.Empty(t, e.Comment)

	e.SetBall("88")
	e.SetComment("Mening izohim")
	e.SetBall("40")
	assert.Equal(t, "Mening izohim", e.Comment, "hand-edited comment survives")
	e.SetBall("abc")
	assert.Equal(t, "Mening izohim", e.Comment)

	e.SetComment("")
	e.SetBall("40")
	low, _ := Suggest(40)
	assert.Equal(t, low, e.Comment)
	assert.False(t, e.Custom)
}

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  map[string]string
	}{
		{name: "ok", entry: Entry{Ball: "80", Comment: "Yaxshi"}, want: map[string]string{}},
		{name: "non numeric", entry: Entry{Ball: "x", Comment: "c"}, want: map[string]string{FieldBall: "Ball qiymati to'g'ri kiritilmagan."}},
		{name: "too high", entry: Entry{Ball: "101", Comment: "c"}, want: map[string]string{FieldBall: "Ball 0 dan 100 gacha bo'lishi kerak."}},
		{name: "negative", entry: Entry{Ball: "-1", Comment: "c"}, want: map[string]string{FieldBall: "Ball 0 dan 100 gacha bo'lishi kerak."}},
		{name: "blank comment", entry: Entry{Ball: "0", Comment: "  "}, want: map[string]string{FieldFeedback: "Fikr-mulohaza tavsifi bo'sh bo'lishi mumkin emas."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Validate().Map())
		})
	}
}

type fakeCreator struct {
	calls []apiclient.NewFeedback
	fail  map[string]error
}

func (f *fakeCreator) CreateFeedback(_ context.Context, in apiclient.NewFeedback) (model.DailyFeedback, error) {
	f.calls = append(f.calls, in)
	if err := f.fail[in.StudentID]; err != nil {
		return model.DailyFeedback{}, err
	}
	return model.DailyFeedback{ID: "f-" + in.StudentID, StudentID: in.StudentID}, nil
}

var roster = []model.Student{
	{ID: "s1", FirstName: "Ali", LastName: "Valiyev", Status: model.StatusActive},
	{ID: "s2", FirstName: "Vali", LastName: "Aliyev", Status: model.StatusActive},
	{ID: "s3", FirstName: "Gone", LastName: "Student", Status: "NOFAOL"},
	{ID: "s4", FirstName: "Olim", LastName: "Karimov", Status: model.StatusActive},
}

var day = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func TestForm_Submit_allValid(t *testing.T) {
	f := NewForm("g1", roster, day)
	require.Len(t, f.Students, 3)
	f.Entry("s1").SetBall("90")
	f.Entry("s2").SetBall("70")
	f.Entry("s4").SetBall("50")

	api := &fakeCreator{}
	res, err := f.Submit(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Saved)
	require.Len(t, api.calls, 3)
	assert.Equal(t, apiclient.NewFeedback{
		StudentID:    "s1",
		GroupID:      "g1",
		Ball:         90,
		Feedback:     api.calls[0].Feedback,
		FeedbackDate: "2026-10-01T00:00:00.000Z",
	}, api.calls[0])
	assert.True(t, f.Entry("s1").Empty(), "saved entries are cleared")
}

func TestForm_Submit_mixed(t *testing.T) {
	f := NewForm("g1", roster, day)
	f.Entry("s1").SetBall("90")
	f.Entry("s2").SetBall("150")
	f.Entry("s2").SetComment("c")
	f.Entry("s4").SetBall("60")

	api := &fakeCreator{fail: map[string]error{"s4": &apiclient.APIError{Status: 500, Message: "DB xato"}}}
	res, err := f.Submit(context.Background(), api)
	require.Error(t, err)
	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, api.calls, 2, "invalid entries are not sent")
	assert.Equal(t,
		"Baho saqlashda 2 ta xato yuz berdi. Tafsilotlar: O'quvchi Vali Aliyev uchun: Ball 0 dan 100 gacha bo'lishi kerak.; O'quvchi Olim Karimov uchun baho saqlab bo'lmadi: DB xato",
		err.Error())
	assert.Equal(t, "150", f.Entry("s2").Ball, "failed entries keep their values")
	assert.Equal(t, "60", f.Entry("s4").Ball)
	assert.NotNil(t, f.Invalid["s2"])
}

func TestForm_Submit_nothing(t *testing.T) {
	api := &fakeCreator{}
	_, err := NewForm("g1", roster, day).Submit(context.Background(), api)
	assert.EqualError(t, err, "Hech qanday baho saqlanmadi. Ma'lumotlarni tekshiring.")
	assert.Empty(t, api.calls)

	_, err = NewForm("g1", roster[2:3], day).Submit(context.Background(), api)
	assert.EqualError(t, err, "Faol o'quvchilar topilmadi, baholash mumkin emas.")
}

func TestForm_Submit_authStops(t *testing.T) {
	f := NewForm("g1", roster, day)
	f.Entry("s1").SetBall("90")
	f.Entry("s2").SetBall("90")
	api := &fakeCreator{fail: map[string]error{"s1": apiclient.ErrAuth}}

	_, err := f.Submit(context.Background(), api)
	assert.True(t, apiclient.IsAuth(err))
	assert.Len(t, api.calls, 1)
}

type fakeUpdater struct {
	got apiclient.FeedbackUpdate
	err error
}

func (f *fakeUpdater) UpdateFeedback(_ context.Context, id string, in apiclient.FeedbackUpdate) (model.DailyFeedback, error) {
	f.got = in
	if f.err != nil {
		return model.DailyFeedback{}, f.err
	}
	return model.DailyFeedback{ID: id, Ball: *in.Ball, Feedback: *in.Feedback}, nil
}

func TestGrade(t *testing.T) {
	g := NewGrade(model.DailyFeedback{ID: "f1", Ball: 120, Feedback: "eski"}, model.Student{})
	assert.Equal(t, 100, g.Score)
	assert.Equal(t, "Noma'lum talaba", g.StudentName())

	for input, want := range map[string]int{"-5": 0, "abc": 0, "42": 42, "300": 100} {
		g.SetScore(input)
		assert.Equal(t, want, g.Score, input)
	}

	g.SetScore("77")
	g.Comment = "yangi"
	api := &fakeUpdater{}
	fb, err := g.Save(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, 77, fb.Ball)
	assert.Equal(t, "yangi", *api.got.Feedback)

	api.err = &apiclient.APIError{Status: 500}
	_, err = g.Save(context.Background(), api)
	assert.EqualError(t, err, "Fikr-mulohazani saqlashda xatolik yuz berdi.")
}
