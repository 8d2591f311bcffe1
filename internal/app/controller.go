// Package app holds the per-session root controller: lifecycle, navigation and
// the data every screen renders from.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/attendance"
	"teacherdash/internal/logger"
	"teacherdash/internal/login"
	"teacherdash/internal/model"
	"teacherdash/internal/session"
)

const (
	msgLoadFailed    = "Ma'lumotlarni yuklashda noma'lum xatolik yuz berdi."
	msgLoginFailed   = "Login qilishda tizim xatoligi."
	msgPhoneNotReady = "Telefon raqamni to'liq kiriting."
	msgNoGroup       = "Guruh topilmadi."
	msgNotReady      = "Ma'lumotlar hali yuklanmagan."
)

var ErrNotReady = errors.New(msgNotReady)

// Submission is the feedback being graded together with its student.
type Submission struct {
	Feedback model.DailyFeedback
	Student  model.Student
}

// Controller is one signed in (or signing in) teacher's dashboard state.
// It is safe for concurrent use; no lock is held across API calls.
type Controller struct {
	// Now is the clock used for dates and greetings.
	Now func() time.Time

	api  Backend
	sess *session.Manager
	log  logger.Logger

	mu       sync.Mutex
	state    State
	loadGen  uint64
	screen   Screen
	identity session.Identity
	loginErr string
	loadErr  string

	teacher *model.Teacher
	groups  []model.Group
	leaders []model.Teacher

	group      *model.Group
	students   []model.Student
	feedback   *model.DailyFeedback
	submission *Submission

	roster  attendance.Loader[[]model.Student]
	daily   attendance.Loader[[]model.DailyFeedback]
	records attendance.Loader[[]model.AttendanceRecord]
	stats   attendance.Loader[attendance.Summary]
}

// New returns a controller in the checkingAuth state. Call Start to resolve it.
func New(api Backend, sess *session.Manager, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		Now:    time.Now,
		api:    api,
		sess:   sess,
		log:    log,
		state:  CheckingAuth,
		screen: Dashboard,
	}
}

// State is the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start validates the stored token and, when it is good, runs the initial load.
func (c *Controller) Start(ctx context.Context) State {
	c.mu.Lock()
	c.state = CheckingAuth
	c.mu.Unlock()

	id, ok := c.sess.Check(ctx)
	if !ok {
		c.reset(LoggedOut)
		return LoggedOut
	}
	c.mu.Lock()
	c.identity = id
	c.screen = ParseScreen(c.sess.Screen(ctx))
	c.mu.Unlock()
	return c.load(ctx)
}

// Login submits the 9 local digits and password. On success the initial load runs.
func (c *Controller) Login(ctx context.Context, digits, password string) error {
	digits = login.Digits(digits)
	if !login.Ready(digits) {
		return c.failLogin(errors.New(msgPhoneNotReady))
	}
	id, err := c.sess.Login(ctx, c.api, login.Raw(digits), password)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return c.failLogin(errors.New(apiclient.Message(err, msgLoginFailed)))
	}

	c.mu.Lock()
	c.identity = id
	c.loginErr = ""
	c.screen = ParseScreen(c.sess.Screen(ctx))
	c.mu.Unlock()

	if st := c.load(ctx); st == Failed {
		return errors.New(c.LoadError())
	}
	return nil
}

func (c *Controller) failLogin(err error) error {
	c.mu.Lock()
	c.state = LoggedOut
	c.loginErr = err.Error()
	c.mu.Unlock()
	return err
}

// Refresh reruns the initial load; it is the retry of the error screen too.
func (c *Controller) Refresh(ctx context.Context) State {
	c.mu.Lock()
	state, teacherID := c.state, c.identity.TeacherID
	c.mu.Unlock()
	if state == LoggedOut || state == CheckingAuth {
		return state
	}
	if teacherID == "" {
		c.logout(ctx)
		return LoggedOut
	}
	return c.load(ctx)
}

// load fetches the teacher, their groups and the leaderboard together. The first
// failure cancels the other two.
func (c *Controller) load(ctx context.Context) State {
	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.state = LoadingData
	c.loadErr = ""
	teacherID := c.identity.TeacherID
	c.mu.Unlock()

	var (
		teacher model.Teacher
		groups  []model.Group
		leaders []model.Teacher
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teacher, err = c.api.GetTeacher(gctx, teacherID)
		return errors.Wrap(err, "loading teacher")
	})
	g.Go(func() (err error) {
		groups, err = c.api.ListGroups(gctx, teacherID)
		return errors.Wrap(err, "loading groups")
	})
	g.Go(func() (err error) {
		leaders, err = c.api.ListLeaders(gctx)
		return errors.Wrap(err, "loading leaders")
	})
	err := g.Wait()

	if err != nil && apiclient.IsAuth(err) {
		c.logout(ctx)
		return LoggedOut
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		return c.state
	}
	if err != nil {
		c.log.Error("initial load", err, c.personLocked())
		c.state = Failed
		c.loadErr = apiclient.Message(errors.Cause(err), msgLoadFailed)
		c.teacher, c.groups, c.leaders = nil, nil, nil
		return Failed
	}
	c.teacher = &teacher
	c.groups = groups
	c.leaders = leaders
	c.state = Ready
	c.log.Info("initial load", teacher, map[string]interface{}{"groups": len(groups)})
	return Ready
}

// Person is the signed in teacher for log reports: the loaded profile, or
// the token identity before it arrives.
func (c *Controller) Person() model.Teacher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.personLocked()
}

func (c *Controller) personLocked() model.Teacher {
	if c.teacher != nil {
		return *c.teacher
	}
	first, last, _ := strings.Cut(c.identity.Name, " ")
	return model.Teacher{ID: c.identity.TeacherID, FirstName: first, LastName: last}
}

// Logout clears storage and every piece of derived state.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.sess.Logout(ctx)
	c.reset(LoggedOut)
	return errors.Wrap(err, "clearing session")
}

func (c *Controller) logout(ctx context.Context) {
	person := c.Person()
	if err := c.Logout(ctx); err != nil {
		c.log.Error("logout", err, person)
	}
}

func (c *Controller) reset(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadGen++
	c.state = state
	c.screen = Dashboard
	c.identity = session.Identity{}
	c.loadErr = ""
	c.teacher, c.groups, c.leaders = nil, nil, nil
	c.clearGroupLocked()
}

// clearGroupLocked drops the selection below the group list.
func (c *Controller) clearGroupLocked() {
	c.group = nil
	c.students = nil
	c.feedback = nil
	c.submission = nil
	c.roster.Reset()
	c.daily.Reset()
	c.records.Reset()
}

// guard turns an auth failure into a logout and passes err through.
func (c *Controller) guard(ctx context.Context, err error) error {
	if err != nil && apiclient.IsAuth(err) {
		c.logout(ctx)
	}
	return err
}

// LoginError is the message of the last failed login.
func (c *Controller) LoginError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginErr
}

// LoadError is the message of the last failed initial load.
func (c *Controller) LoadError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Teacher is the loaded profile, if any.
func (c *Controller) Teacher() (model.Teacher, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.teacher == nil {
		return model.Teacher{}, false
	}
	return *c.teacher, true
}

// Group returns the selected group.
func (c *Controller) Group() (model.Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == nil {
		return model.Group{}, false
	}
	return *c.group, true
}

// Groups is the loaded group list.
func (c *Controller) Groups() []model.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Group(nil), c.groups...)
}
