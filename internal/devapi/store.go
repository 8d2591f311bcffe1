// Package devapi is an in-memory stand-in for the teacher REST API, used for local
// development and as the upstream in tests.
package devapi

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"teacherdash/internal/model"
)

var (
	ErrNotFound  = errors.New("topilmadi")
	ErrDuplicate = errors.New("Bu o'quvchi uchun ushbu sanada davomat allaqachon mavjud.")
)

// Account is a teacher with login credentials.
type Account struct {
	model.Teacher
	Password  string
	CreatedAt time.Time
}

// Store holds every entity behind one lock.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]*Account
	groups     []model.Group
	teacherOf  map[string]string
	students   map[string][]model.Student
	attendance []model.AttendanceRecord
	feedback   []model.DailyFeedback
	avatars    map[string][]byte
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*Account),
		teacherOf: make(map[string]string),
		students:  make(map[string][]model.Student),
		avatars:   make(map[string][]byte),
	}
}

// AddTeacher registers an account; an empty ID gets a fresh one.
func (s *Store) AddTeacher(a Account) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.accounts[a.ID] = &a
	return a.ID
}

// AddGroup attaches g to a teacher.
func (s *Store) AddGroup(teacherID string, g model.Group) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.groups = append(s.groups, g)
	s.teacherOf[g.ID] = teacherID
	return g.ID
}

// AddStudent enrolls st in a group and keeps the group's counter in step.
func (s *Store) AddStudent(groupID string, st model.Student) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	s.students[groupID] = append(s.students[groupID], st)
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			s.groups[i].Count.Students++
		}
	}
	return st.ID
}

// Authenticate returns the account for phone and password.
func (s *Store) Authenticate(phone, password string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Phone == phone && a.Password == password {
			return *a, true
		}
	}
	return Account{}, false
}

func (s *Store) Teacher(id string) (model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.Teacher{}, ErrNotFound
	}
	return a.Teacher, nil
}

// TeacherPatch holds the editable profile fields; nil means unchanged.
type TeacherPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	Avatar    []byte
}

func (s *Store) UpdateTeacher(id string, p TeacherPatch) (model.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.Teacher{}, ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.FirstName, p.FirstName)
	set(&a.LastName, p.LastName)
	set(&a.Phone, p.Phone)
	set(&a.Address, p.Address)
	if len(p.Avatar) > 0 {
		s.avatars[id] = p.Avatar
		a.Image = "/teachers/" + id + "/avatar"
	}
	return a.Teacher, nil
}

func (s *Store) Avatar(id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.avatars[id]
	return b, ok
}

// Teachers lists accounts with status (any when empty), oldest first.
func (s *Store) Teachers(status string) []model.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if status == "" || a.Status == status {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.Before(accounts[j].CreatedAt) })
	out := make([]model.Teacher, len(accounts))
	for i, a := range accounts {
		out[i] = a.Teacher
	}
	return out
}

func (s *Store) Groups(teacherID string) []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Group{}
	for _, g := range s.groups {
		if teacherID == "" || s.teacherOf[g.ID] == teacherID {
			out = append(out, g)
		}
	}
	return out
}

func (s *Store) Students(groupID string, limit int) []model.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.students[groupID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return append([]model.Student{}, list...)
}

// AddAttendance stores one record; a second record for the same student, group and
// day is refused.
func (s *Store) AddAttendance(r model.AttendanceRecord) (model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := model.DayOf(r.Date)
	for _, existing := range s.attendance {
		if existing.GroupID == r.GroupID && existing.StudentID == r.StudentID && model.DayOf(existing.Date) == day {
			return model.AttendanceRecord{}, ErrDuplicate
		}
	}
	r.ID = uuid.NewString()
	s.attendance = append(s.attendance, r)
	return r, nil
}

func (s *Store) UpdateAttendance(id string, status model.AttendanceStatus, date string) (model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.attendance {
		if s.attendance[i].ID != id {
			continue
		}
		if status != "" {
			s.attendance[i].Status = status
		}
		if date != "" {
			s.attendance[i].Date = date
		}
		return s.attendance[i], nil
	}
	return model.AttendanceRecord{}, ErrNotFound
}

// Attendance filters by group and calendar day; empty filters match everything.
func (s *Store) Attendance(groupID, day string, limit int) []model.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.AttendanceRecord{}
	for _, r := range s.attendance {
		if groupID != "" && r.GroupID != groupID {
			continue
		}
		if day != "" && model.DayOf(r.Date) != day {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *Store) AddFeedback(fb model.DailyFeedback) model.DailyFeedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb.ID = uuid.NewString()
	s.feedback = append(s.feedback, fb)
	return fb
}

func (s *Store) Feedback(id string) (model.DailyFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fb := range s.feedback {
		if fb.ID == id {
			return fb, nil
		}
	}
	return model.DailyFeedback{}, ErrNotFound
}

func (s *Store) Feedbacks(groupID, day string) []model.DailyFeedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.DailyFeedback{}
	for _, fb := range s.feedback {
		if groupID != "" && fb.GroupID != groupID {
			continue
		}
		if day != "" && fb.Day() != day {
			continue
		}
		out = append(out, fb)
	}
	return out
}

func (s *Store) UpdateFeedback(id string, ball *int, comment *string) (model.DailyFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.feedback {
		if s.feedback[i].ID != id {
			continue
		}
		if ball != nil {
			s.feedback[i].Ball = *ball
		}
		if comment != nil {
			s.feedback[i].Feedback = *comment
		}
		return s.feedback[i], nil
	}
	return model.DailyFeedback{}, ErrNotFound
}

func (s *Store) DeleteFeedback(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.feedback {
		if s.feedback[i].ID == id {
			s.feedback = append(s.feedback[:i], s.feedback[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
