package app

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/attendance"
	"teacherdash/internal/feedback"
	"teacherdash/internal/model"
	"teacherdash/internal/validate"
)

const msgProfileRequired = "Ism, Familiya va Telefon raqam kiritilishi shart."

// ErrSuperseded is returned by a scoped load when a newer one replaced it.
var ErrSuperseded = errors.New("superseded by a newer request")

// statsParallelism bounds the per-group attendance queries of the statistics screen.
const statsParallelism = 4

func (c *Controller) selected() (model.Group, error) {
	g, ok := c.Group()
	if !ok {
		return model.Group{}, errors.New(msgNoGroup)
	}
	return g, nil
}

// Today is the current day as used in date filters.
func (c *Controller) Today() string {
	return c.Now().Format(model.DateLayout)
}

// LoadStudents fetches the roster of the selected group.
func (c *Controller) LoadStudents(ctx context.Context) ([]model.Student, error) {
	g, err := c.selected()
	if err != nil {
		return nil, err
	}
	applied := c.roster.Load(ctx, g.ID, func(ctx context.Context) ([]model.Student, error) {
		return c.api.ListStudents(ctx, g.ID)
	})
	if !applied {
		return nil, ErrSuperseded
	}
	_, students, err, _ := c.roster.Snapshot()
	if err != nil {
		return nil, c.guard(ctx, err)
	}
	c.mu.Lock()
	if c.group != nil && c.group.ID == g.ID {
		c.students = students
	}
	c.mu.Unlock()
	return students, nil
}

// Students is the roster last handed to the controller, loading it when empty.
func (c *Controller) Students(ctx context.Context) ([]model.Student, error) {
	c.mu.Lock()
	students := c.students
	c.mu.Unlock()
	if students != nil {
		return students, nil
	}
	return c.LoadStudents(ctx)
}

// LoadFeedback fetches the selected group's daily feedback for date.
func (c *Controller) LoadFeedback(ctx context.Context, date string) ([]model.DailyFeedback, error) {
	g, err := c.selected()
	if err != nil {
		return nil, err
	}
	if _, err := attendance.ParseDate(date, c.Now()); err != nil {
		return nil, err
	}
	applied := c.daily.Load(ctx, date, func(ctx context.Context) ([]model.DailyFeedback, error) {
		return c.api.ListFeedback(ctx, g.ID, date)
	})
	if !applied {
		return nil, ErrSuperseded
	}
	_, list, err, _ := c.daily.Snapshot()
	return list, c.guard(ctx, err)
}

// LoadAttendance fetches the selected group's records for date.
func (c *Controller) LoadAttendance(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	g, err := c.selected()
	if err != nil {
		return nil, err
	}
	if _, err := attendance.ParseDate(date, c.Now()); err != nil {
		return nil, err
	}
	applied := c.records.Load(ctx, date, func(ctx context.Context) ([]model.AttendanceRecord, error) {
		return c.api.ListAttendance(ctx, apiclient.AttendanceFilter{GroupID: g.ID, Date: date})
	})
	if !applied {
		return nil, ErrSuperseded
	}
	_, list, err, _ := c.records.Snapshot()
	return list, c.guard(ctx, err)
}

// AttendanceSheet builds the sheet for date. When only the record query fails the
// sheet is still returned with every student present, alongside the error.
func (c *Controller) AttendanceSheet(ctx context.Context, date string) (*attendance.Sheet, error) {
	g, err := c.selected()
	if err != nil {
		return nil, err
	}
	if _, err := attendance.ParseDate(date, c.Now()); err != nil {
		return nil, err
	}
	students, err := c.Students(ctx)
	if err != nil {
		return nil, err
	}
	records, err := c.LoadAttendance(ctx, date)
	if err != nil {
		if apiclient.IsAuth(err) || errors.Is(err, ErrSuperseded) || ctx.Err() != nil {
			return nil, err
		}
		return attendance.NewSheet(g.ID, date, students, nil), err
	}
	return attendance.NewSheet(g.ID, date, students, records), nil
}

// SaveAttendance stores every mark of sheet.
func (c *Controller) SaveAttendance(ctx context.Context, sheet *attendance.Sheet) (attendance.SaveResult, error) {
	res, err := sheet.Save(ctx, c.api, c.Now())
	c.records.Reset()
	return res, c.guard(ctx, err)
}

// FeedbackForm starts a feedback entry form for the selected group, dated today.
func (c *Controller) FeedbackForm(ctx context.Context) (*feedback.Form, error) {
	g, err := c.selected()
	if err != nil {
		return nil, err
	}
	students, err := c.Students(ctx)
	if err != nil {
		return nil, err
	}
	return feedback.NewForm(g.ID, students, c.Now()), nil
}

// SubmitFeedback sends form and returns to the group when nothing failed.
func (c *Controller) SubmitFeedback(ctx context.Context, form *feedback.Form) (feedback.Result, error) {
	res, err := form.Submit(ctx, c.api)
	if err != nil {
		return res, c.guard(ctx, err)
	}
	c.FeedbackSaved(ctx)
	return res, nil
}

// Feedback looks id up among the loaded feedback before asking the API.
func (c *Controller) Feedback(ctx context.Context, id string) (model.DailyFeedback, error) {
	c.mu.Lock()
	if c.feedback != nil && c.feedback.ID == id {
		fb := *c.feedback
		c.mu.Unlock()
		return fb, nil
	}
	c.mu.Unlock()
	if _, list, err, _ := c.daily.Snapshot(); err == nil {
		for _, fb := range list {
			if fb.ID == id {
				return fb, nil
			}
		}
	}
	fb, err := c.api.GetFeedback(ctx, id)
	return fb, c.guard(ctx, err)
}

// SaveGrade patches a graded feedback and returns to its detail.
func (c *Controller) SaveGrade(ctx context.Context, g *feedback.Grade) (model.DailyFeedback, error) {
	fb, err := g.Save(ctx, c.api)
	if err != nil {
		return fb, c.guard(ctx, err)
	}
	c.GradeSaved(ctx, fb)
	return fb, nil
}

// DeleteFeedback removes a feedback and leaves its detail screen if it was open.
func (c *Controller) DeleteFeedback(ctx context.Context, id string) error {
	if err := c.api.DeleteFeedback(ctx, id); err != nil {
		return c.guard(ctx, err)
	}
	c.mu.Lock()
	open := c.feedback != nil && c.feedback.ID == id
	c.daily.Reset()
	c.mu.Unlock()
	if open {
		c.BackToGroupDetail(ctx)
	}
	return nil
}

// ProfileInput is the edit-profile form.
type ProfileInput struct {
	FirstName string          `json:"firstName" validate:"notblank"`
	LastName  string          `json:"lastName" validate:"notblank"`
	Phone     string          `json:"phone" validate:"notblank"`
	Address   string          `json:"address"`
	Image     *apiclient.File `json:"-"`
}

// UpdateProfile validates in, patches the teacher and returns to the profile.
func (c *Controller) UpdateProfile(ctx context.Context, in ProfileInput) (model.Teacher, error) {
	t, ok := c.Teacher()
	if !ok {
		return model.Teacher{}, ErrNotReady
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if err := validate.Struct(in, msgProfileRequired); err != nil {
		return model.Teacher{}, err
	}

	updated, err := c.api.UpdateTeacher(ctx, t.ID, apiclient.ProfileUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   in.Address,
		Image:     in.Image,
	})
	if err != nil {
		return model.Teacher{}, c.guard(ctx, err)
	}
	c.ProfileUpdated(ctx, updated)
	return updated, nil
}

// LoadStatistics sums the attendance of every active group for date.
func (c *Controller) LoadStatistics(ctx context.Context, date string) (attendance.Summary, error) {
	if _, err := attendance.ParseDate(date, c.Now()); err != nil {
		return attendance.Summary{}, err
	}
	groups := c.Groups()
	applied := c.stats.Load(ctx, date, func(ctx context.Context) (attendance.Summary, error) {
		var (
			mu    sync.Mutex
			total attendance.Summary
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(statsParallelism)
		for _, grp := range groups {
			if !grp.Active() {
				continue
			}
			g.Go(func() error {
				records, err := c.api.ListAttendance(gctx, apiclient.AttendanceFilter{GroupID: grp.ID, Date: date})
				if err != nil {
					return errors.Wrapf(err, "attendance of group %s", grp.ID)
				}
				sum := attendance.Summarize(records)
				mu.Lock()
				total = total.Merge(sum)
				mu.Unlock()
				return nil
			})
		}
		err := g.Wait()
		return total, err
	})
	if !applied {
		return attendance.Summary{}, ErrSuperseded
	}
	_, sum, err, _ := c.stats.Snapshot()
	return sum, c.guard(ctx, err)
}
