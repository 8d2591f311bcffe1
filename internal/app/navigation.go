package app

import (
	"context"

	"github.com/pkg/errors"

	"teacherdash/internal/model"
)

// Screen is the screen that will render, after falling back from any screen whose
// selection is missing.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked()
}

func (c *Controller) resolveLocked() Screen {
	s := c.screen
	for {
		switch {
		case s == GradeFeedback && (c.submission == nil || c.feedback == nil || c.group == nil):
			s = FeedbackDetail
		case s == FeedbackDetail && (c.feedback == nil || c.group == nil):
			s = GroupDetail
		case (s == GroupDetail || s == Attendance || s == NewFeedback) && c.group == nil:
			s = Groups
		case s == EditProfile && c.teacher == nil:
			s = Profile
		default:
			return s
		}
	}
}

// goToLocked moves to s and persists it. Callers hold mu.
func (c *Controller) goToLocked(ctx context.Context, s Screen) {
	c.screen = s
	c.sess.SetScreen(ctx, string(s))
}

func (c *Controller) goTo(ctx context.Context, s Screen) {
	c.mu.Lock()
	c.goToLocked(ctx, s)
	c.mu.Unlock()
}

// Navigate follows a bottom navigation tab.
func (c *Controller) Navigate(ctx context.Context, tab Screen) error {
	if !tab.Tab() {
		return errors.Errorf("unknown tab %q", tab)
	}
	c.goTo(ctx, tab)
	return nil
}

// SelectGroup opens the detail screen of one of the loaded groups.
func (c *Controller) SelectGroup(ctx context.Context, id string) (model.Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.groups {
		if g.ID == id {
			if c.group == nil || c.group.ID != id {
				c.clearGroupLocked()
				c.group = &g
			}
			c.feedback, c.submission = nil, nil
			c.goToLocked(ctx, GroupDetail)
			return g, nil
		}
	}
	return model.Group{}, errors.New(msgNoGroup)
}

// BackToGroups drops the group selection.
func (c *Controller) BackToGroups(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearGroupLocked()
	c.goToLocked(ctx, Groups)
}

// OpenAttendance moves to the attendance sheet for the roster the detail screen loaded.
func (c *Controller) OpenAttendance(ctx context.Context, students []model.Student) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == nil {
		return
	}
	c.students = students
	c.goToLocked(ctx, Attendance)
}

// BackToGroupDetail leaves attendance or feedback detail.
func (c *Controller) BackToGroupDetail(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback, c.submission = nil, nil
	c.goToLocked(ctx, GroupDetail)
}

// OpenNewFeedback moves to the feedback entry form of the selected group.
func (c *Controller) OpenNewFeedback(ctx context.Context, students []model.Student) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == nil {
		return
	}
	if students != nil {
		c.students = students
	}
	c.goToLocked(ctx, NewFeedback)
}

// BackFromNewFeedback returns to the group.
func (c *Controller) BackFromNewFeedback(ctx context.Context) {
	c.goTo(ctx, GroupDetail)
}

// FeedbackSaved returns to the group once every entered score was stored.
func (c *Controller) FeedbackSaved(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.daily.Reset()
	c.goToLocked(ctx, GroupDetail)
}

// OpenFeedbackDetail shows one feedback of the selected group.
func (c *Controller) OpenFeedbackDetail(ctx context.Context, fb model.DailyFeedback, students []model.Student) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == nil {
		return
	}
	c.feedback = &fb
	if students != nil {
		c.students = students
	}
	c.submission = nil
	c.goToLocked(ctx, FeedbackDetail)
}

// OpenGradeFeedback moves to grading one student's feedback.
func (c *Controller) OpenGradeFeedback(ctx context.Context, fb model.DailyFeedback, student model.Student) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == nil {
		return
	}
	c.submission = &Submission{Feedback: fb, Student: student}
	if c.feedback == nil {
		c.feedback = &fb
	}
	c.goToLocked(ctx, GradeFeedback)
}

// GradeSaved stores the graded feedback and returns to its detail.
func (c *Controller) GradeSaved(ctx context.Context, fb model.DailyFeedback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.feedback != nil && c.feedback.ID == fb.ID {
		c.feedback = &fb
	}
	c.submission = nil
	c.daily.Reset()
	c.goToLocked(ctx, FeedbackDetail)
}

// BackFromGradeFeedback abandons grading.
func (c *Controller) BackFromGradeFeedback(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submission = nil
	c.goToLocked(ctx, FeedbackDetail)
}

func (c *Controller) OpenEditProfile(ctx context.Context) {
	c.goTo(ctx, EditProfile)
}

func (c *Controller) BackFromEditProfile(ctx context.Context) {
	c.goTo(ctx, Profile)
}

// ProfileUpdated replaces the loaded profile and returns to it.
func (c *Controller) ProfileUpdated(ctx context.Context, t model.Teacher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teacher = &t
	c.goToLocked(ctx, Profile)
}
