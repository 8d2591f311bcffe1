// Package web serves the teacher dashboard as server rendered pages. Every browser
// session owns one app.Controller; the pages only read its views and call its
// operations.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/app"
	"teacherdash/internal/config"
	"teacherdash/internal/httpmiddleware"
	"teacherdash/internal/logger"
	"teacherdash/internal/session"
)

const (
	cookieName    = "teacherdash"
	keySID        = "sid"
	ctxController = "controller"
)

// Server holds the shared pieces behind every browser session.
type Server struct {
	cfg      config.App
	log      logger.Logger
	stores   *stores
	registry *registry
	tmpl     *renderer
	limiter  *httpmiddleware.TokenBucket

	// Now overrides the clock of new controllers.
	Now func() time.Time
}

// New opens the configured session backend and parses the templates.
func New(ctx context.Context, cfg config.App, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Discard()
	}
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	tmpl, err := newRenderer()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	rate := cfg.LoginRatePerMin
	if rate <= 0 {
		rate = 10
	}
	return &Server{
		cfg:      cfg,
		log:      log,
		stores:   st,
		registry: newRegistry(cfg.SessionMaxAge),
		tmpl:     tmpl,
		limiter:  httpmiddleware.NewTokenBucket(rate, rate),
	}, nil
}

// Close releases the session backend.
func (s *Server) Close() error {
	return s.stores.Close()
}

func (s *Server) newController(sid string) *app.Controller {
	mgr := session.NewManager(s.stores.forSession(sid), s.log)
	client := apiclient.New(s.cfg.APIBaseURL, s.cfg.APITimeout, mgr, mgr.Clear)
	client.AvatarMaxPx = s.cfg.AvatarMaxPx
	ctrl := app.New(client, mgr, s.log)
	if s.Now != nil {
		ctrl.Now = s.Now
	}
	return ctrl
}

// Handler builds the router. With CSRF_KEY set every unsafe request must carry
// the token rendered into the forms.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID(func(format string, args ...interface{}) {
		s.log.Debug(fmt.Sprintf(format, args...))
	}))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.Metrics())

	cs := cookie.NewStore([]byte(s.cfg.SessionSecret))
	cs.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(s.cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.healthz)

	withSession := []gin.HandlerFunc{sessions.Sessions(cookieName, cs), s.withController}

	api := r.Group("/api", s.cors())
	// preflight is answered by cors before any session is touched
	api.OPTIONS("/*any", func(*gin.Context) {})
	api.Use(withSession...)
	api.GET("/state", s.state)

	ui := r.Group("", withSession...)
	ui.GET("/login", s.loginPage)
	ui.POST("/login", s.limiter.GinMiddleware(s.loginLimited), s.login)
	ui.POST("/logout", s.logout)
	ui.GET("/", s.home)
	ui.GET("/nav/:tab", s.nav)
	ui.POST("/refresh", s.refresh)

	ready := ui.Group("", s.requireReady)
	ready.GET("/groups/:id", s.groupDetail)
	ready.GET("/groups/:id/attendance", s.attendancePage)
	ready.POST("/groups/:id/attendance", s.saveAttendance)
	ready.GET("/groups/:id/attendance.xlsx", s.exportAttendance)
	ready.GET("/groups/:id/feedback/new", s.newFeedback)
	ready.POST("/groups/:id/feedback", s.submitFeedback)
	ready.GET("/feedback/:id", s.feedbackDetail)
	ready.GET("/feedback/:id/grade/:studentId", s.gradePage)
	ready.POST("/feedback/:id/grade", s.saveGrade)
	ready.POST("/feedback/:id/delete", s.deleteFeedback)
	ready.GET("/profile/edit", s.editProfile)
	ready.POST("/profile", s.updateProfile)

	if s.cfg.CSRFKey == "" {
		return r
	}
	return csrf.Protect([]byte(s.cfg.CSRFKey),
		csrf.Secure(s.cfg.Production()),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)(r)
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "So'rov muddati o'tgan. Sahifani yangilab, qayta urinib ko'ring.", http.StatusForbidden)
}

func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
		ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.cfg.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = s.cfg.CORSOrigins
	}
	return cors.New(cfg)
}

// withController finds (or starts) the controller of the browser session.
func (s *Server) withController(c *gin.Context) {
	sess := sessions.Default(c)
	sid, _ := sess.Get(keySID).(string)
	if sid == "" {
		sid = uuid.NewString()
		sess.Set(keySID, sid)
		if err := sess.Save(); err != nil {
			s.log.Error("saving session cookie", err)
		}
	}
	ctrl, fresh := s.registry.get(sid, func() *app.Controller { return s.newController(sid) })
	c.Request = c.Request.WithContext(s.stores.requestContext(c.Request.Context(), sess))
	if fresh {
		ctrl.Start(c.Request.Context())
	}
	c.Set(ctxController, ctrl)
	c.Next()
}

func controllerOf(c *gin.Context) *app.Controller {
	return c.MustGet(ctxController).(*app.Controller)
}

// requireReady sends sessions that are not signed in and loaded back to the root,
// which renders login, loading or the load error.
func (s *Server) requireReady(c *gin.Context) {
	if controllerOf(c).State() != app.Ready {
		redirect(c, "/")
		c.Abort()
		return
	}
	c.Next()
}

func redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, to)
}

func (s *Server) healthz(c *gin.Context) {
	checks, ok := s.stores.healthy(c.Request.Context())
	status, text := http.StatusOK, "ok"
	if !ok {
		status, text = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(status, gin.H{
		"status":   text,
		"backend":  s.stores.kind,
		"checks":   checks,
		"sessions": s.registry.len(),
	})
}

func (s *Server) state(c *gin.Context) {
	ctrl := controllerOf(c)
	body := gin.H{
		"state":     ctrl.State().String(),
		"screen":    ctrl.Screen(),
		"view":      ctrl.View().Name(),
		"groups":    len(ctrl.Groups()),
		"requestId": httpmiddleware.RequestIDFrom(c),
	}
	if t, ok := ctrl.Teacher(); ok {
		body["teacher"] = gin.H{"id": t.ID, "name": t.FullName()}
	}
	if g, ok := ctrl.Group(); ok {
		body["group"] = gin.H{"id": g.ID, "name": g.DisplayName()}
	}
	c.JSON(http.StatusOK, body)
}
