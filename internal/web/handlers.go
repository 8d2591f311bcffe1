package web

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/app"
	"teacherdash/internal/attendance"
	"teacherdash/internal/export"
	"teacherdash/internal/feedback"
	"teacherdash/internal/httpmiddleware"
	"teacherdash/internal/login"
	"teacherdash/internal/model"
	"teacherdash/internal/validate"
)

const (
	msgFeedbackSaved   = "Baholar muvaffaqiyatli saqlandi!"
	msgGradeSaved      = "Baho yangilandi."
	msgFeedbackDeleted = "Fikr-mulohaza o'chirildi."
	msgProfileSaved    = "Profil yangilandi."
	msgNotFound        = "Sahifa topilmadi."
	msgGeneric         = "Noma'lum xatolik yuz berdi."
	msgImageTooLarge   = "Rasm hajmi 5 MB dan oshmasligi kerak."
)

const maxAvatarBytes = 5 << 20

type loginPage struct {
	Phone string
}

type messagePage struct {
	Message string
	Back    string
}

type groupPage struct {
	View    app.GroupDetailView
	Date    string
	Tab     string
	Summary attendance.Summary
}

type attendancePage struct {
	Group  model.Group
	Date   string
	Sheet  *attendance.Sheet
	Result *attendance.SaveResult
}

type feedbackRow struct {
	Student      model.Student
	Entry        *feedback.Entry
	BallError    string
	CommentError string
}

type newFeedbackPage struct {
	Group model.Group
	Date  string
	Rows  []feedbackRow
}

type feedbackPage struct {
	Group    model.Group
	Feedback model.DailyFeedback
	Students []model.Student
	Student  model.Student
}

type gradePage struct {
	Group model.Group
	Grade *feedback.Grade
}

type profileForm struct {
	Teacher model.Teacher
	Errors  map[string]string
}

// loggedOut redirects to login when the last operation ended the session.
func loggedOut(c *gin.Context, ctrl *app.Controller) bool {
	if ctrl.State() != app.LoggedOut {
		return false
	}
	redirect(c, "/login")
	return true
}

func (s *Server) message(c *gin.Context, status int, msg, back string) {
	s.render(c, status, "message", page{Nav: true, Active: activeTab(controllerOf(c).Screen()), Data: messagePage{Message: msg, Back: back}})
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return apiclient.Message(errors.Cause(err), msgGeneric)
}

// dateParam reads ?date= (or the form field), defaulting to today. An invalid day
// falls back to today with the parse error.
func dateParam(c *gin.Context, ctrl *app.Controller) (string, error) {
	date := c.Query("date")
	if v, ok := c.GetPostForm("date"); ok {
		date = v
	}
	if date == "" {
		return ctrl.Today(), nil
	}
	if _, err := attendance.ParseDate(date, ctrl.Now()); err != nil {
		return ctrl.Today(), err
	}
	return date, nil
}

func (s *Server) loginPage(c *gin.Context) {
	ctrl := controllerOf(c)
	v, ok := ctrl.View().(app.LoginView)
	if !ok {
		redirect(c, "/")
		return
	}
	s.render(c, http.StatusOK, "login", page{Title: "Kirish", Error: v.Error})
}

func (s *Server) loginLimited(c *gin.Context) {
	s.render(c, http.StatusTooManyRequests, "login", page{
		Title: "Kirish",
		Error: httpmiddleware.MsgTooManyAttempts,
		Data:  loginPage{Phone: login.Format(login.Digits(c.PostForm("phone")))},
	})
}

func (s *Server) login(c *gin.Context) {
	ctrl := controllerOf(c)
	digits := login.Digits(c.PostForm("phone"))
	err := ctrl.Login(c.Request.Context(), digits, c.PostForm("password"))
	if err == nil || ctrl.State() == app.Failed {
		redirect(c, "/")
		return
	}
	s.render(c, http.StatusOK, "login", page{
		Title: "Kirish",
		Error: err.Error(),
		Data:  loginPage{Phone: login.Format(digits)},
	})
}

func (s *Server) logout(c *gin.Context) {
	ctrl := controllerOf(c)
	person := ctrl.Person()
	if err := ctrl.Logout(c.Request.Context()); err != nil {
		s.log.Error("logging out", err, person)
	}
	redirect(c, "/login")
}

func (s *Server) nav(c *gin.Context) {
	ctrl := controllerOf(c)
	if ctrl.State() != app.Ready {
		redirect(c, "/")
		return
	}
	if err := ctrl.Navigate(c.Request.Context(), app.Screen(c.Param("tab"))); err != nil {
		s.message(c, http.StatusNotFound, msgNotFound, "/")
		return
	}
	redirect(c, "/")
}

func (s *Server) refresh(c *gin.Context) {
	controllerOf(c).Refresh(c.Request.Context())
	redirect(c, "/")
}

// home renders the active screen. Screens that belong to a selection are served
// from their own routes.
func (s *Server) home(c *gin.Context) {
	ctrl := controllerOf(c)
	switch v := ctrl.View().(type) {
	case app.LoginView:
		redirect(c, "/login")
	case app.LoadingView:
		s.render(c, http.StatusOK, "loading", page{Refresh: 1, Data: v})
	case app.ErrorView:
		s.render(c, http.StatusOK, "error", page{Error: v.Message, Data: v})
	case app.DashboardView:
		s.render(c, http.StatusOK, "dashboard", page{Nav: true, Active: app.Dashboard, Data: v})
	case app.GroupsView:
		s.render(c, http.StatusOK, "groups", page{Nav: true, Active: app.Groups, Data: v})
	case app.StatisticsView:
		s.statistics(c, ctrl)
	case app.ProfileView:
		s.render(c, http.StatusOK, "profile", page{Nav: true, Active: app.Profile, Data: v})
	case app.GroupDetailView:
		redirect(c, "/groups/"+url.PathEscape(v.Group.ID))
	case app.AttendanceView:
		redirect(c, "/groups/"+url.PathEscape(v.Group.ID)+"/attendance")
	case app.NewFeedbackView:
		redirect(c, "/groups/"+url.PathEscape(v.Group.ID)+"/feedback/new")
	case app.FeedbackDetailView:
		redirect(c, "/feedback/"+url.PathEscape(v.Feedback.ID))
	case app.GradeFeedbackView:
		redirect(c, "/feedback/"+url.PathEscape(v.Feedback.ID)+"/grade/"+url.PathEscape(v.Submission.Student.ID))
	case app.EditProfileView:
		redirect(c, "/profile/edit")
	default:
		s.message(c, http.StatusInternalServerError, msgGeneric, "/")
	}
}

func (s *Server) statistics(c *gin.Context, ctrl *app.Controller) {
	date, dateErr := dateParam(c, ctrl)
	_, err := ctrl.LoadStatistics(c.Request.Context(), date)
	if loggedOut(c, ctrl) {
		return
	}
	if errors.Is(err, app.ErrSuperseded) {
		err = nil
	}
	if dateErr != nil {
		err = dateErr
	}
	v, ok := ctrl.View().(app.StatisticsView)
	if !ok {
		redirect(c, "/")
		return
	}
	s.render(c, http.StatusOK, "statistics", page{Nav: true, Active: app.Statistics, Error: errText(err), Data: v})
}

// selectGroup makes :id the selected group, or answers 404.
func (s *Server) selectGroup(c *gin.Context, ctrl *app.Controller, id string) (model.Group, bool) {
	if g, ok := ctrl.Group(); ok && g.ID == id {
		return g, true
	}
	g, err := ctrl.SelectGroup(c.Request.Context(), id)
	if err != nil {
		s.message(c, http.StatusNotFound, err.Error(), "/nav/"+string(app.Groups))
		return model.Group{}, false
	}
	return g, true
}

func (s *Server) groupDetail(c *gin.Context) {
	ctrl := controllerOf(c)
	ctx := c.Request.Context()
	g, err := ctrl.SelectGroup(ctx, c.Param("id"))
	if err != nil {
		s.message(c, http.StatusNotFound, err.Error(), "/nav/"+string(app.Groups))
		return
	}
	date, dateErr := dateParam(c, ctrl)

	// each loader keeps its own outcome for the view
	var eg errgroup.Group
	eg.Go(func() error { _, err := ctrl.LoadStudents(ctx); return err })
	eg.Go(func() error { _, err := ctrl.LoadFeedback(ctx, date); return err })
	eg.Go(func() error { _, err := ctrl.LoadAttendance(ctx, date); return err })
	_ = eg.Wait()
	if loggedOut(c, ctrl) {
		return
	}

	v, ok := ctrl.View().(app.GroupDetailView)
	if !ok {
		redirect(c, "/")
		return
	}
	tab := c.DefaultQuery("tab", "students")
	s.render(c, http.StatusOK, "group", page{
		Title:  g.DisplayName(),
		Nav:    true,
		Active: app.Groups,
		Error:  errText(dateErr),
		Data: groupPage{
			View:    v,
			Date:    date,
			Tab:     tab,
			Summary: attendance.NewSheet(g.ID, date, v.Students.Items, v.Attendance.Items).Summary(),
		},
	})
}

// errWritten tells a handler that its helper already answered the request.
var errWritten = errors.New("response written")

// sheetFor selects :id, opens its attendance screen and builds the sheet for the
// requested date.
func (s *Server) sheetFor(c *gin.Context, ctrl *app.Controller) (attendancePage, error) {
	ctx := c.Request.Context()
	g, ok := s.selectGroup(c, ctrl, c.Param("id"))
	if !ok {
		return attendancePage{}, errWritten
	}
	date, dateErr := dateParam(c, ctrl)
	data := attendancePage{Group: g, Date: date}

	students, err := ctrl.Students(ctx)
	if err == nil {
		ctrl.OpenAttendance(ctx, students)
		data.Sheet, err = ctrl.AttendanceSheet(ctx, date)
	}
	if loggedOut(c, ctrl) {
		return data, errWritten
	}
	if err == nil {
		err = dateErr
	}
	return data, err
}

func (s *Server) attendancePage(c *gin.Context) {
	ctrl := controllerOf(c)
	data, err := s.sheetFor(c, ctrl)
	if errors.Is(err, errWritten) {
		return
	}
	s.render(c, http.StatusOK, "attendance", page{
		Title:  "Davomat",
		Nav:    true,
		Active: app.Groups,
		Error:  errText(err),
		Data:   data,
	})
}

func (s *Server) saveAttendance(c *gin.Context) {
	ctrl := controllerOf(c)
	data, err := s.sheetFor(c, ctrl)
	if errors.Is(err, errWritten) {
		return
	}
	if data.Sheet == nil || errors.Is(err, app.ErrSuperseded) {
		s.render(c, http.StatusOK, "attendance", page{Title: "Davomat", Nav: true, Active: app.Groups, Error: errText(err), Data: data})
		return
	}

	sheet := data.Sheet
	for id, status := range c.PostFormMap("status") {
		sheet.Set(id, model.AttendanceStatus(status))
	}
	if all := c.PostForm("all"); all != "" {
		sheet.MarkAll(model.AttendanceStatus(all))
	}
	res, err := ctrl.SaveAttendance(c.Request.Context(), sheet)
	if loggedOut(c, ctrl) {
		return
	}
	if err == nil && res.OK() {
		flash(c, flashOK, res.Message())
		redirect(c, "/groups/"+url.PathEscape(data.Group.ID)+"/attendance?date="+url.QueryEscape(data.Date))
		return
	}
	msg := errText(err)
	if err == nil {
		msg = res.Message()
	}
	data.Result = &res
	s.render(c, http.StatusOK, "attendance", page{Title: "Davomat", Nav: true, Active: app.Groups, Error: msg, Data: data})
}

func (s *Server) exportAttendance(c *gin.Context) {
	ctrl := controllerOf(c)
	data, err := s.sheetFor(c, ctrl)
	if errors.Is(err, errWritten) {
		return
	}
	if err != nil || data.Sheet == nil {
		s.message(c, http.StatusBadGateway, errText(err), "/groups/"+url.PathEscape(data.Group.ID))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(data.Group, data.Date)+`"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.Attendance(c.Writer, data.Group, data.Sheet); err != nil {
		s.log.Error("writing attendance export", err, controllerOf(c).Person())
	}
}

func rowsOf(form *feedback.Form) []feedbackRow {
	rows := make([]feedbackRow, 0, len(form.Students))
	for _, st := range form.Students {
		errs := form.Invalid[st.ID]
		rows = append(rows, feedbackRow{
			Student:      st,
			Entry:        form.Entry(st.ID),
			BallError:    errs.Get(feedback.FieldBall),
			CommentError: errs.Get(feedback.FieldFeedback),
		})
	}
	return rows
}

func (s *Server) newFeedback(c *gin.Context) {
	ctrl := controllerOf(c)
	ctx := c.Request.Context()
	g, ok := s.selectGroup(c, ctrl, c.Param("id"))
	if !ok {
		return
	}
	form, err := ctrl.FeedbackForm(ctx)
	if loggedOut(c, ctrl) {
		return
	}
	if err != nil {
		s.message(c, http.StatusBadGateway, errText(err), "/groups/"+url.PathEscape(g.ID))
		return
	}
	ctrl.OpenNewFeedback(ctx, nil)
	s.render(c, http.StatusOK, "feedback_new", page{
		Title:  "Yangi baholash",
		Nav:    true,
		Active: app.Groups,
		Data:   newFeedbackPage{Group: g, Date: ctrl.Today(), Rows: rowsOf(form)},
	})
}

func (s *Server) submitFeedback(c *gin.Context) {
	ctrl := controllerOf(c)
	ctx := c.Request.Context()
	g, ok := s.selectGroup(c, ctrl, c.Param("id"))
	if !ok {
		return
	}
	form, err := ctrl.FeedbackForm(ctx)
	if loggedOut(c, ctrl) {
		return
	}
	if err != nil {
		s.message(c, http.StatusBadGateway, errText(err), "/groups/"+url.PathEscape(g.ID))
		return
	}
	balls, comments := c.PostFormMap("ball"), c.PostFormMap("feedback")
	for _, st := range form.Students {
		e := form.Entry(st.ID)
		if comment := strings.TrimSpace(comments[st.ID]); comment != "" && !feedback.IsSuggestion(comment) {
			e.SetComment(comment)
		}
		e.SetBall(balls[st.ID])
	}

	_, err = ctrl.SubmitFeedback(ctx, form)
	if loggedOut(c, ctrl) {
		return
	}
	if err == nil {
		flash(c, flashOK, msgFeedbackSaved)
		redirect(c, "/groups/"+url.PathEscape(g.ID)+"?tab=feedback")
		return
	}
	s.render(c, http.StatusOK, "feedback_new", page{
		Title:  "Yangi baholash",
		Nav:    true,
		Active: app.Groups,
		Error:  errText(err),
		Data:   newFeedbackPage{Group: g, Date: ctrl.Today(), Rows: rowsOf(form)},
	})
}

// openFeedback loads :id and selects its group together with the roster.
func (s *Server) openFeedback(c *gin.Context, ctrl *app.Controller) (model.DailyFeedback, model.Group, []model.Student, bool) {
	ctx := c.Request.Context()
	fb, err := ctrl.Feedback(ctx, c.Param("id"))
	if loggedOut(c, ctrl) {
		return fb, model.Group{}, nil, false
	}
	if err != nil {
		status := apiclient.StatusOf(err)
		if status == 0 {
			status = http.StatusBadGateway
		}
		s.message(c, status, errText(err), "/")
		return fb, model.Group{}, nil, false
	}
	g, ok := s.selectGroup(c, ctrl, fb.GroupID)
	if !ok {
		return fb, g, nil, false
	}
	students, err := ctrl.Students(ctx)
	if loggedOut(c, ctrl) {
		return fb, g, nil, false
	}
	if err != nil {
		s.log.Warn("loading roster for feedback", err, ctrl.Person())
	}
	return fb, g, students, true
}

func studentOf(students []model.Student, id string) model.Student {
	for _, st := range students {
		if st.ID == id {
			return st
		}
	}
	return model.Student{ID: id}
}

func (s *Server) feedbackDetail(c *gin.Context) {
	ctrl := controllerOf(c)
	fb, g, students, ok := s.openFeedback(c, ctrl)
	if !ok {
		return
	}
	ctrl.OpenFeedbackDetail(c.Request.Context(), fb, students)
	s.render(c, http.StatusOK, "feedback", page{
		Title:  fb.Title(),
		Nav:    true,
		Active: app.Groups,
		Data:   feedbackPage{Group: g, Feedback: fb, Students: students, Student: studentOf(students, fb.StudentID)},
	})
}

func (s *Server) gradePage(c *gin.Context) {
	ctrl := controllerOf(c)
	fb, g, students, ok := s.openFeedback(c, ctrl)
	if !ok {
		return
	}
	st := studentOf(students, c.Param("studentId"))
	ctrl.OpenFeedbackDetail(c.Request.Context(), fb, students)
	ctrl.OpenGradeFeedback(c.Request.Context(), fb, st)
	s.render(c, http.StatusOK, "grade", page{
		Title:  "Baholash",
		Nav:    true,
		Active: app.Groups,
		Data:   gradePage{Group: g, Grade: feedback.NewGrade(fb, st)},
	})
}

func (s *Server) saveGrade(c *gin.Context) {
	ctrl := controllerOf(c)
	fb, g, students, ok := s.openFeedback(c, ctrl)
	if !ok {
		return
	}
	grade := feedback.NewGrade(fb, studentOf(students, c.PostForm("studentId")))
	score := c.PostForm("score")
	if quick := c.PostForm("quick"); quick != "" {
		score = quick
	}
	grade.SetScore(score)
	grade.Comment = strings.TrimSpace(c.PostForm("comment"))

	_, err := ctrl.SaveGrade(c.Request.Context(), grade)
	if loggedOut(c, ctrl) {
		return
	}
	if err != nil {
		s.render(c, http.StatusOK, "grade", page{
			Title:  "Baholash",
			Nav:    true,
			Active: app.Groups,
			Error:  errText(err),
			Data:   gradePage{Group: g, Grade: grade},
		})
		return
	}
	flash(c, flashOK, msgGradeSaved)
	redirect(c, "/feedback/"+url.PathEscape(fb.ID))
}

func (s *Server) deleteFeedback(c *gin.Context) {
	ctrl := controllerOf(c)
	fb, g, _, ok := s.openFeedback(c, ctrl)
	if !ok {
		return
	}
	err := ctrl.DeleteFeedback(c.Request.Context(), fb.ID)
	if loggedOut(c, ctrl) {
		return
	}
	if err != nil {
		flash(c, flashErr, errText(err))
		redirect(c, "/feedback/"+url.PathEscape(fb.ID))
		return
	}
	flash(c, flashOK, msgFeedbackDeleted)
	redirect(c, "/groups/"+url.PathEscape(g.ID)+"?tab=feedback")
}

func (s *Server) editProfile(c *gin.Context) {
	ctrl := controllerOf(c)
	ctrl.OpenEditProfile(c.Request.Context())
	v, ok := ctrl.View().(app.EditProfileView)
	if !ok {
		redirect(c, "/")
		return
	}
	s.render(c, http.StatusOK, "profile_edit", page{
		Title:  "Profilni tahrirlash",
		Nav:    true,
		Active: app.Profile,
		Data:   profileForm{Teacher: v.Teacher},
	})
}

func (s *Server) updateProfile(c *gin.Context) {
	ctrl := controllerOf(c)
	in := app.ProfileInput{
		FirstName: c.PostForm("firstName"),
		LastName:  c.PostForm("lastName"),
		Phone:     c.PostForm("phone"),
		Address:   c.PostForm("address"),
	}
	current, _ := ctrl.Teacher()
	shown := current
	shown.FirstName, shown.LastName, shown.Phone, shown.Address = in.FirstName, in.LastName, in.Phone, in.Address
	fail := func(msg string, fields map[string]string) {
		s.render(c, http.StatusOK, "profile_edit", page{
			Title:  "Profilni tahrirlash",
			Nav:    true,
			Active: app.Profile,
			Error:  msg,
			Data:   profileForm{Teacher: shown, Errors: fields},
		})
	}

	if fh, err := c.FormFile("image"); err == nil {
		if fh.Size > maxAvatarBytes {
			fail(msgImageTooLarge, nil)
			return
		}
		f, err := fh.Open()
		if err != nil {
			fail(errText(err), nil)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes+1))
		_ = f.Close()
		if err != nil {
			fail(errText(err), nil)
			return
		}
		in.Image = &apiclient.File{Field: "image", Name: fh.Filename, Data: data}
	}

	_, err := ctrl.UpdateProfile(c.Request.Context(), in)
	if loggedOut(c, ctrl) {
		return
	}
	if verrs, ok := validate.As(err); ok {
		fail(verrs.Error(), verrs.Map())
		return
	}
	if err != nil {
		fail(errText(err), nil)
		return
	}
	flash(c, flashOK, msgProfileSaved)
	redirect(c, "/")
}
