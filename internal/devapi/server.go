package devapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"teacherdash/internal/auth"
	"teacherdash/internal/model"
)

const (
	msgBadCredentials = "Telefon raqam yoki parol noto'g'ri."
	msgForbidden      = "Ruxsat etilmagan."
)

// Server serves the Store over the same routes as the real API.
type Server struct {
	Store      *Store
	SigningKey string
	TokenTTL   time.Duration
	// Envelope wraps list replies as {"data": [...]}.
	Envelope bool
}

func New(store *Store, signingKey string) *Server {
	return &Server{Store: store, SigningKey: signingKey, TokenTTL: 24 * time.Hour}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/healthz"}}))
	s.Register(r)
	return r
}

// Register mounts the API routes on r.
func (s *Server) Register(r gin.IRouter) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/auth/teacher", s.login)

	api := r.Group("", auth.BearerAuth(s.SigningKey))
	api.GET("/teachers", s.listTeachers)
	api.GET("/teachers/:id", s.getTeacher)
	api.PATCH("/teachers/:id", s.updateTeacher)
	api.GET("/teachers/:id/avatar", s.avatar)
	api.GET("/groups", s.listGroups)
	api.GET("/students", s.listStudents)
	api.POST("/attendances", s.createAttendance)
	api.GET("/attendances", s.listAttendance)
	api.PATCH("/attendances/:id", s.updateAttendance)
	api.POST("/daily-feedbacks", s.createFeedback)
	api.GET("/daily-feedbacks", s.listFeedback)
	api.GET("/daily-feedbacks/:id", s.getFeedback)
	api.PATCH("/daily-feedbacks/:id", s.updateFeedback)
	api.DELETE("/daily-feedbacks/:id", s.deleteFeedback)
}

func (s *Server) list(c *gin.Context, v interface{}) {
	if s.Envelope {
		c.JSON(http.StatusOK, gin.H{"data": v})
		return
	}
	c.JSON(http.StatusOK, v)
}

func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func limitOf(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": []string{"phone va password talab qilinadi"}})
		return
	}
	acc, ok := s.Store.Authenticate(req.Phone, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgBadCredentials})
		return
	}
	token, _, err := auth.Issue(acc.ID, acc.FirstName, acc.LastName, s.SigningKey, s.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

func (s *Server) listTeachers(c *gin.Context) {
	s.list(c, s.Store.Teachers(c.Query("status")))
}

func (s *Server) getTeacher(c *gin.Context) {
	t, err := s.Store.Teacher(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// updateTeacher accepts JSON or multipart with an optional image file. A teacher may
// only edit their own profile.
func (s *Server) updateTeacher(c *gin.Context) {
	id := c.Param("id")
	if claims, _ := auth.ClaimsFrom(c); claims.Identity() != id {
		c.JSON(http.StatusForbidden, gin.H{"message": msgForbidden})
		return
	}

	var p TeacherPatch
	if c.ContentType() == "multipart/form-data" {
		form := func(key string) *string {
			if v, ok := c.GetPostForm(key); ok {
				return &v
			}
			return nil
		}
		p.FirstName, p.LastName, p.Phone, p.Address = form("firstName"), form("lastName"), form("phone"), form("address")
		if fh, err := c.FormFile("image"); err == nil {
			f, err := fh.Open()
			if err != nil {
				fail(c, errors.Wrap(err, "opening image"))
				return
			}
			defer f.Close()
			if p.Avatar, err = io.ReadAll(f); err != nil {
				fail(c, errors.Wrap(err, "reading image"))
				return
			}
		}
	} else {
		var body struct {
			FirstName *string `json:"firstName"`
			LastName  *string `json:"lastName"`
			Phone     *string `json:"phone"`
			Address   *string `json:"address"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, err)
			return
		}
		p = TeacherPatch{FirstName: body.FirstName, LastName: body.LastName, Phone: body.Phone, Address: body.Address}
	}

	t, err := s.Store.UpdateTeacher(id, p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) avatar(c *gin.Context) {
	b, ok := s.Store.Avatar(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", b)
}

func (s *Server) listGroups(c *gin.Context) {
	s.list(c, s.Store.Groups(c.Query("filterByTeacherId")))
}

func (s *Server) listStudents(c *gin.Context) {
	s.list(c, s.Store.Students(c.Query("filterByGroupId"), limitOf(c)))
}

func (s *Server) createAttendance(c *gin.Context) {
	var req struct {
		GroupID   string                 `json:"groupId" binding:"required"`
		StudentID string                 `json:"studentId" binding:"required"`
		Date      string                 `json:"date" binding:"required"`
		Status    model.AttendanceStatus `json:"status" binding:"required"`
		Reason    string                 `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status noto'g'ri"})
		return
	}
	rec, err := s.Store.AddAttendance(model.AttendanceRecord{
		GroupID: req.GroupID, StudentID: req.StudentID, Date: req.Date, Status: req.Status, Reason: req.Reason,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listAttendance(c *gin.Context) {
	s.list(c, s.Store.Attendance(c.Query("filterByGroupId"), c.Query("filterByDate"), limitOf(c)))
}

func (s *Server) updateAttendance(c *gin.Context) {
	var req struct {
		Status model.AttendanceStatus `json:"status"`
		Date   string                 `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status noto'g'ri"})
		return
	}
	rec, err := s.Store.UpdateAttendance(c.Param("id"), req.Status, req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) createFeedback(c *gin.Context) {
	var req struct {
		StudentID    string `json:"studentId" binding:"required"`
		GroupID      string `json:"groupId" binding:"required"`
		Ball         *int   `json:"ball" binding:"required,min=0,max=100"`
		Feedback     string `json:"feedback" binding:"required"`
		FeedbackDate string `json:"feedbackDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if req.FeedbackDate == "" {
		req.FeedbackDate = time.Now().UTC().Format(time.RFC3339)
	}
	fb := s.Store.AddFeedback(model.DailyFeedback{
		StudentID: req.StudentID, GroupID: req.GroupID, Ball: *req.Ball,
		Feedback: req.Feedback, FeedbackDate: req.FeedbackDate,
	})
	c.JSON(http.StatusCreated, fb)
}

func (s *Server) listFeedback(c *gin.Context) {
	s.list(c, s.Store.Feedbacks(c.Query("groupId"), c.Query("date")))
}

func (s *Server) getFeedback(c *gin.Context) {
	fb, err := s.Store.Feedback(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

func (s *Server) updateFeedback(c *gin.Context) {
	var req struct {
		Ball     *int    `json:"ball" binding:"omitempty,min=0,max=100"`
		Feedback *string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	fb, err := s.Store.UpdateFeedback(c.Param("id"), req.Ball, req.Feedback)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

func (s *Server) deleteFeedback(c *gin.Context) {
	if err := s.Store.DeleteFeedback(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
