package feedback

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/model"
	"teacherdash/internal/validate"
)

// Field names used in validation errors.
const (
	FieldBall     = "ball"
	FieldFeedback = "feedback"
)

const (
	msgBallInvalid   = "Ball qiymati to'g'ri kiritilmagan."
	msgBallRange     = "Ball 0 dan 100 gacha bo'lishi kerak."
	msgCommentEmpty  = "Fikr-mulohaza tavsifi bo'sh bo'lishi mumkin emas."
	msgNoActive      = "Faol o'quvchilar topilmadi, baholash mumkin emas."
	msgNothingSaved  = "Hech qanday baho saqlanmadi. Ma'lumotlarni tekshiring."
	msgUnknownFailed = "Noma'lum xato"
)

// Entry is one student's score and comment as typed.
type Entry struct {
	Ball    string
	Comment string
	// Custom is set once the comment was edited by hand.
	Custom bool
}

// SetComment records a hand-edited comment.
func (e *Entry) SetComment(v string) {
	e.Comment = v
	e.Custom = true
}

// SetBall records the score and refreshes the suggested comment unless the
// teacher wrote their own, non-empty one.
func (e *Entry) SetBall(v string) {
	e.Ball = v
	score, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		if !e.Custom {
			e.Comment = ""
		}
		return
	}
	if text, ok := Suggest(score); ok && (!e.Custom || e.Comment == "") {
		e.Comment = text
		e.Custom = false
	}
}

// Empty reports whether no score was entered.
func (e Entry) Empty() bool { return strings.TrimSpace(e.Ball) == "" }

// Validate checks the entry before it is sent.
func (e Entry) Validate() *validate.Errors {
	errs := validate.New("")
	score, err := strconv.Atoi(strings.TrimSpace(e.Ball))
	switch {
	case err != nil:
		errs.Add(FieldBall, msgBallInvalid)
	case score < 0 || score > 100:
		errs.Add(FieldBall, msgBallRange)
	}
	if strings.TrimSpace(e.Comment) == "" {
		errs.Add(FieldFeedback, msgCommentEmpty)
	}
	return errs
}

// first is the single message shown for the entry, in the order the form checks them.
func (e Entry) first(errs *validate.Errors) string {
	if msg := errs.Get(FieldBall); msg == msgBallInvalid {
		return msg
	}
	if msg := errs.Get(FieldFeedback); msg != "" {
		return msg
	}
	return errs.Get(FieldBall)
}

// Creator is the API call the form submits through.
type Creator interface {
	CreateFeedback(ctx context.Context, in apiclient.NewFeedback) (model.DailyFeedback, error)
}

// Form collects daily feedback for a group's active students.
type Form struct {
	GroupID  string
	Date     time.Time
	Students []model.Student
	entries  map[string]*Entry
	// Invalid holds the field errors of the last submission per student.
	Invalid map[string]*validate.Errors
}

// NewForm keeps only active students.
func NewForm(groupID string, students []model.Student, date time.Time) *Form {
	f := &Form{
		GroupID: groupID,
		Date:    date,
		entries: make(map[string]*Entry),
		Invalid: make(map[string]*validate.Errors),
	}
	for _, s := range students {
		if s.Active() {
			f.Students = append(f.Students, s)
		}
	}
	return f
}

// Entry returns the student's entry, creating an empty one.
func (f *Form) Entry(studentID string) *Entry {
	e, ok := f.entries[studentID]
	if !ok {
		e = &Entry{}
		f.entries[studentID] = e
	}
	return e
}

// Result summarizes a submission.
type Result struct {
	Saved   int
	Failed  int
	Skipped int
	Errors  []string
}

// Message is the banner text for r: "" when everything that was entered saved.
func (r Result) Message() string {
	if r.Failed > 0 {
		return fmt.Sprintf("Baho saqlashda %d ta xato yuz berdi. Tafsilotlar: %s", r.Failed, strings.Join(r.Errors, "; "))
	}
	if r.Saved == 0 {
		return msgNothingSaved
	}
	return ""
}

// Submit sends one request per student with a score, in roster order.
// Saved entries are cleared; failed ones keep their values.
func (f *Form) Submit(ctx context.Context, api Creator) (Result, error) {
	var res Result
	f.Invalid = make(map[string]*validate.Errors)
	if len(f.Students) == 0 {
		return res, errors.New(msgNoActive)
	}

	for _, s := range f.Students {
		e := f.Entry(s.ID)
		if e.Empty() {
			res.Skipped++
			continue
		}
		if errs := e.Validate(); errs.OrNil() != nil {
			f.Invalid[s.ID] = errs
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("O'quvchi %s %s uchun: %s", s.FirstName, s.LastName, e.first(errs)))
			continue
		}

		score, _ := strconv.Atoi(strings.TrimSpace(e.Ball))
		_, err := api.CreateFeedback(ctx, apiclient.NewFeedback{
			StudentID:    s.ID,
			GroupID:      f.GroupID,
			Ball:         score,
			Feedback:     e.Comment,
			FeedbackDate: ISOTime(f.Date),
		})
		if err != nil {
			if apiclient.IsAuth(err) || ctx.Err() != nil {
				return res, err
			}
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("O'quvchi %s %s uchun baho saqlab bo'lmadi: %s", s.FirstName, s.LastName, apiclient.Message(err, msgUnknownFailed)))
			continue
		}
		res.Saved++
		delete(f.entries, s.ID)
	}

	if msg := res.Message(); msg != "" {
		return res, errors.New(msg)
	}
	return res, nil
}

// ISOTime formats t the way the API stores feedback dates.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
