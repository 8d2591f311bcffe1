package feedback

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/model"
)

const msgGradeFailed = "Fikr-mulohazani saqlashda xatolik yuz berdi."

// Updater is the API call grading goes through.
type Updater interface {
	UpdateFeedback(ctx context.Context, id string, in apiclient.FeedbackUpdate) (model.DailyFeedback, error)
}

// Grade edits the score and comment of an existing feedback.
type Grade struct {
	FeedbackID string
	Student    model.Student
	Score      int
	Comment    string
}

func NewGrade(fb model.DailyFeedback, student model.Student) *Grade {
	g := &Grade{FeedbackID: fb.ID, Student: student, Comment: fb.Feedback}
	g.Score = clamp(fb.Ball)
	return g
}

// SetScore parses input, treating garbage as 0, and clamps it to 0..100.
func (g *Grade) SetScore(input string) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		n = 0
	}
	g.Score = clamp(n)
}

// StudentName falls back when the student is unknown.
func (g *Grade) StudentName() string {
	if n := g.Student.FullName(); n != "" {
		return n
	}
	return "Noma'lum talaba"
}

func (g *Grade) Save(ctx context.Context, api Updater) (model.DailyFeedback, error) {
	score, comment := g.Score, g.Comment
	fb, err := api.UpdateFeedback(ctx, g.FeedbackID, apiclient.FeedbackUpdate{Ball: &score, Feedback: &comment})
	if err != nil {
		if apiclient.IsAuth(err) {
			return model.DailyFeedback{}, err
		}
		return model.DailyFeedback{}, errors.New(apiclient.Message(err, msgGradeFailed))
	}
	return fb, nil
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
