package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/gorilla/csrf"
	"github.com/pkg/errors"

	"teacherdash/internal/app"
	"teacherdash/internal/attendance"
	"teacherdash/internal/feedback"
	"teacherdash/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "loading", "error", "message",
	"dashboard", "groups", "group", "attendance", "statistics",
	"profile", "profile_edit", "feedback_new", "feedback", "grade",
}

const (
	flashOK  = "ok"
	flashErr = "err"
)

type tabLink struct {
	Screen app.Screen
	Label  string
	Href   string
}

var funcs = template.FuncMap{
	"tabs": func() []tabLink {
		out := make([]tabLink, 0, len(app.Tabs))
		for _, s := range app.Tabs {
			out = append(out, tabLink{Screen: s, Label: app.TabLabel(s), Href: "/nav/" + string(s)})
		}
		return out
	},
	"statuses":    func() []model.AttendanceStatus { return model.AttendanceStatuses },
	"quickScores": feedback.QuickScores,
	"inc":         func(i int) int { return i + 1 },
	"remoteImage": func(src string) bool { return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") },
	"statusClass": func(s model.AttendanceStatus) string { return "status-" + strings.ToLower(string(s)) },
	"recorded": func(sheet *attendance.Sheet, studentID string) model.AttendanceStatus {
		if r, ok := sheet.Record(studentID); ok {
			return r.Status
		}
		return ""
	},
	"studentName": func(students []model.Student, id string) string {
		for _, s := range students {
			if s.ID == id {
				return s.FullName()
			}
		}
		return "Noma'lum talaba"
	},
}

// renderer holds one template set per page, each the layout plus partials plus the
// page's own "content".
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	base, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing layout")
	}
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, errors.Wrap(err, "cloning layout")
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, errors.Wrapf(err, "parsing page %s", name)
		}
		r.pages[name] = t
	}
	return r, nil
}

// page is what the layout renders around every screen.
type page struct {
	Title  string
	Active app.Screen
	Nav    bool
	Flash  string
	Error  string
	CSRF   template.HTML
	// Refresh reloads the page after the given seconds when non-zero.
	Refresh int
	Data    interface{}
}

func (s *Server) render(c *gin.Context, status int, name string, p page) {
	t, ok := s.tmpl.pages[name]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %s", name)
		return
	}
	if p.Title == "" {
		p.Title = "O'qituvchi paneli"
	}
	p.CSRF = csrf.TemplateField(c.Request)
	sess := sessions.Default(c)
	okMsg, errMsg := popFlash(sess, flashOK), popFlash(sess, flashErr)
	if p.Flash == "" {
		p.Flash = okMsg
	}
	if p.Error == "" {
		p.Error = errMsg
	}
	c.Render(status, render.HTML{Template: t, Name: "layout", Data: p})
}

func flash(c *gin.Context, kind, msg string) {
	if msg == "" {
		return
	}
	sess := sessions.Default(c)
	sess.AddFlash(msg, kind)
	_ = sess.Save()
}

func popFlash(sess sessions.Session, kind string) string {
	flashes := sess.Flashes(kind)
	if len(flashes) == 0 {
		return ""
	}
	_ = sess.Save()
	msg, _ := flashes[len(flashes)-1].(string)
	return msg
}

// activeTab is the bottom navigation entry a screen belongs to.
func activeTab(s app.Screen) app.Screen {
	switch s {
	case app.GroupDetail, app.Attendance, app.NewFeedback, app.FeedbackDetail, app.GradeFeedback:
		return app.Groups
	case app.EditProfile:
		return app.Profile
	}
	return s
}
