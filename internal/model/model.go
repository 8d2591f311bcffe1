package model

import (
	"strings"
	"time"
)

// Status values the backend uses for groups, students and teachers.
const (
	StatusActive = "FAOL"
	StatusLeader = "LIDER"
)

// DateLayout is the calendar-date format used in attendance filters and bodies.
const DateLayout = "2006-01-02"

// Teacher is the logged in teacher's profile.
type Teacher struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	Image     string `json:"image,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Status    string `json:"status,omitempty"`
}

// FullName joins first and last name.
func (t Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Initials is the avatar fallback text.
func (t Teacher) Initials() string {
	return initials(t.FirstName, t.LastName)
}

// Group is a cohort taught by one teacher.
type Group struct {
	ID           string  `json:"id"`
	GroupID      string  `json:"groupId"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	CoursePrice  float64 `json:"coursePrice,omitempty"`
	DarsJadvali  string  `json:"darsJadvali,omitempty"`
	DarsVaqt     string  `json:"darsVaqt,omitempty"`
	StudentCount *int    `json:"studentCount,omitempty"`
	Count        struct {
		Students int `json:"students"`
	} `json:"_count"`
}

// Students returns the derived student count.
func (g Group) Students() int {
	if g.StudentCount != nil {
		return *g.StudentCount
	}
	return g.Count.Students
}

// Active reports whether the group is running.
func (g Group) Active() bool { return g.Status == StatusActive }

// DisplayName falls back to the group code when the name is empty.
func (g Group) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	code := g.GroupID
	if code == "" {
		code = g.ID
	}
	return "Guruh " + code
}

// Student belongs to a group.
type Student struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Image     string `json:"image,omitempty"`
	Status    string `json:"status"`
	Phone     string `json:"phone,omitempty"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Initials is the avatar fallback text.
func (s Student) Initials() string {
	return initials(s.FirstName, s.LastName)
}

// Active reports whether the student is currently enrolled.
func (s Student) Active() bool { return s.Status == StatusActive }

// AttendanceStatus is one of the four attendance marks.
type AttendanceStatus string

const (
	Present AttendanceStatus = "KELDI"
	Absent  AttendanceStatus = "KELMADI"
	Late    AttendanceStatus = "KECHIKDI"
	Excused AttendanceStatus = "SABABLI"
)

// AttendanceStatuses lists the marks in display order.
var AttendanceStatuses = []AttendanceStatus{Present, Absent, Late, Excused}

// Valid reports whether s is a known mark.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case Present, Absent, Late, Excused:
		return true
	}
	return false
}

// Label is the human readable name of the mark.
func (s AttendanceStatus) Label() string {
	switch s {
	case Present:
		return "Keldi"
	case Absent:
		return "Kelmadi"
	case Late:
		return "Kechikdi"
	case Excused:
		return "Sababli"
	}
	return string(s)
}

// AttendanceRecord is one student's mark for one group and date.
type AttendanceRecord struct {
	ID        string           `json:"id,omitempty"`
	GroupID   string           `json:"groupId"`
	StudentID string           `json:"studentId"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
	Reason    string           `json:"reason,omitempty"`
}

// DailyFeedback is a per-student, per-date score and comment.
type DailyFeedback struct {
	ID            string `json:"id,omitempty"`
	StudentID     string `json:"studentId"`
	GroupID       string `json:"groupId"`
	Ball          int    `json:"ball"`
	Feedback      string `json:"feedback"`
	FeedbackDate  string `json:"feedbackDate,omitempty"`
	FeedbackTitle string `json:"feedbackTitle,omitempty"`
}

// Title falls back to a generic heading.
func (f DailyFeedback) Title() string {
	if f.FeedbackTitle != "" {
		return f.FeedbackTitle
	}
	return "Kunlik fikr-mulohaza"
}

// Day returns the calendar date part of FeedbackDate.
func (f DailyFeedback) Day() string {
	return DayOf(f.FeedbackDate)
}

// DayOf trims an RFC 3339 timestamp down to its calendar date.
func DayOf(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Format(DateLayout)
	}
	if len(ts) >= len(DateLayout) {
		return ts[:len(DateLayout)]
	}
	return ts
}

func initials(first, last string) string {
	var out []rune
	if r := []rune(first); len(r) > 0 {
		out = append(out, r[0])
	}
	if r := []rune(last); len(r) > 0 {
		out = append(out, r[0])
	}
	return string(out)
}
