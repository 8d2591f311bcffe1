package app

import (
	"teacherdash/internal/attendance"
	"teacherdash/internal/dashboard"
	"teacherdash/internal/model"
)

// View is what one render shows. Every variant is built only when the data it
// needs is present, so templates never check for missing fields.
type View interface {
	Name() string
}

// LoadingView covers checkingAuth and loadingData.
type LoadingView struct{ State State }

// LoginView is the login form with the last failure.
type LoginView struct{ Error string }

// ErrorView is the failed initial load, offering retry and logout.
type ErrorView struct{ Message string }

type DashboardView struct {
	Teacher  model.Teacher
	Greeting string
	DateLine string
	Week     []dashboard.Day
	Today    int
	Leaders  []model.Teacher
	Totals   dashboard.Totals
}

type GroupsView struct {
	Groups []model.Group
}

// Scoped is the latest applied result of a date filtered load.
type Scoped[T any] struct {
	Date    string
	Items   T
	Error   string
	Loading bool
}

type GroupDetailView struct {
	Group      model.Group
	Students   Scoped[[]model.Student]
	Feedback   Scoped[[]model.DailyFeedback]
	Attendance Scoped[[]model.AttendanceRecord]
}

type AttendanceView struct {
	Group    model.Group
	Students []model.Student
}

type StatisticsView struct {
	Totals  dashboard.Totals
	Summary Scoped[attendance.Summary]
}

type ProfileView struct{ Teacher model.Teacher }

type EditProfileView struct{ Teacher model.Teacher }

type NewFeedbackView struct {
	Group    model.Group
	Students []model.Student
}

type FeedbackDetailView struct {
	Group    model.Group
	Feedback model.DailyFeedback
	Students []model.Student
}

type GradeFeedbackView struct {
	Group      model.Group
	Feedback   model.DailyFeedback
	Submission Submission
}

func (LoadingView) Name() string        { return "loading" }
func (LoginView) Name() string          { return "login" }
func (ErrorView) Name() string          { return "error" }
func (DashboardView) Name() string      { return string(Dashboard) }
func (GroupsView) Name() string         { return string(Groups) }
func (GroupDetailView) Name() string    { return string(GroupDetail) }
func (AttendanceView) Name() string     { return string(Attendance) }
func (StatisticsView) Name() string     { return string(Statistics) }
func (ProfileView) Name() string        { return string(Profile) }
func (EditProfileView) Name() string    { return string(EditProfile) }
func (NewFeedbackView) Name() string    { return string(NewFeedback) }
func (FeedbackDetailView) Name() string { return string(FeedbackDetail) }
func (GradeFeedbackView) Name() string  { return string(GradeFeedback) }

func scoped[T any](l *attendance.Loader[T]) Scoped[T] {
	key, value, err, loading := l.Snapshot()
	s := Scoped[T]{Date: key, Items: value, Loading: loading}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// View renders the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case CheckingAuth, LoadingData:
		return LoadingView{State: c.state}
	case LoggedOut:
		return LoginView{Error: c.loginErr}
	case Failed:
		return ErrorView{Message: c.loadErr}
	}
	if c.teacher == nil {
		return LoadingView{State: c.state}
	}

	switch c.resolveLocked() {
	case Groups:
		return GroupsView{Groups: c.groups}
	case GroupDetail:
		return GroupDetailView{
			Group:      *c.group,
			Students:   scoped(&c.roster),
			Feedback:   scoped(&c.daily),
			Attendance: scoped(&c.records),
		}
	case Attendance:
		return AttendanceView{Group: *c.group, Students: c.students}
	case Statistics:
		return StatisticsView{Totals: dashboard.Count(c.groups), Summary: scoped(&c.stats)}
	case Profile:
		return ProfileView{Teacher: *c.teacher}
	case EditProfile:
		return EditProfileView{Teacher: *c.teacher}
	case NewFeedback:
		return NewFeedbackView{Group: *c.group, Students: c.students}
	case FeedbackDetail:
		return FeedbackDetailView{Group: *c.group, Feedback: *c.feedback, Students: c.students}
	case GradeFeedback:
		return GradeFeedbackView{Group: *c.group, Feedback: *c.feedback, Submission: *c.submission}
	}

	now := c.Now()
	return DashboardView{
		Teacher:  *c.teacher,
		Greeting: dashboard.Greeting(now),
		DateLine: dashboard.DateLine(now),
		Week:     dashboard.Week(c.groups, now),
		Today:    dashboard.TodayIndex(now),
		Leaders:  dashboard.Leaders(c.leaders),
		Totals:   dashboard.Count(c.groups),
	}
}
