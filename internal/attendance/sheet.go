package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/model"
)

// Unmarked is the badge text for a student without a record.
const Unmarked = "Belgilanmagan"

const (
	msgSaved      = "Davomat muvaffaqiyatli saqlandi!"
	msgNoStudents = "Bu guruhda o'quvchilar mavjud emas."
	msgBadDate    = "Noto'g'ri sana tanlandi. Iltimos, to'g'ri sana kiriting."
	msgUnknown    = "Noma'lum xato"
)

// saveParallelism bounds the per-student requests in flight.
const saveParallelism = 4

// ParseDate accepts a YYYY-MM-DD day that is not after today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, errors.New(msgBadDate)
	}
	y, m, dd := now.Date()
	if d.After(time.Date(y, m, dd, 0, 0, 0, 0, now.Location())) {
		return time.Time{}, errors.New(msgBadDate)
	}
	return d, nil
}

// Saver is the API surface a sheet saves through.
type Saver interface {
	CreateAttendance(ctx context.Context, in apiclient.NewAttendance) (model.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, id string, in apiclient.AttendanceUpdate) (model.AttendanceRecord, error)
}

// Sheet is the attendance of one group on one day.
type Sheet struct {
	GroupID  string
	Date     string
	Students []model.Student
	marks    map[string]model.AttendanceStatus
	records  map[string]model.AttendanceRecord
}

// NewSheet starts from the existing records; students without one are present.
func NewSheet(groupID, date string, students []model.Student, records []model.AttendanceRecord) *Sheet {
	s := &Sheet{
		GroupID:  groupID,
		Date:     date,
		Students: students,
		marks:    make(map[string]model.AttendanceStatus, len(students)),
		records:  make(map[string]model.AttendanceRecord, len(records)),
	}
	for _, r := range records {
		if r.StudentID == "" {
			continue
		}
		if !r.Status.Valid() {
			r.Status = model.Absent
		}
		s.records[r.StudentID] = r
	}
	for _, st := range students {
		if r, ok := s.records[st.ID]; ok {
			s.marks[st.ID] = r.Status
		} else {
			s.marks[st.ID] = model.Present
		}
	}
	return s
}

// Status is the current mark for a student.
func (s *Sheet) Status(studentID string) model.AttendanceStatus {
	if st, ok := s.marks[studentID]; ok {
		return st
	}
	return model.Present
}

// Record returns the stored record for a student, if any.
func (s *Sheet) Record(studentID string) (model.AttendanceRecord, bool) {
	r, ok := s.records[studentID]
	return r, ok
}

// Badge is the stored status label, or Unmarked.
func (s *Sheet) Badge(studentID string) string {
	if r, ok := s.records[studentID]; ok {
		return r.Status.Label()
	}
	return Unmarked
}

func (s *Sheet) Set(studentID string, status model.AttendanceStatus) {
	s.marks[studentID] = status
}

// MarkAll sets every student to status.
func (s *Sheet) MarkAll(status model.AttendanceStatus) {
	for _, st := range s.Students {
		s.marks[st.ID] = status
	}
}

// Summary counts the stored records of the sheet.
func (s *Sheet) Summary() Summary {
	var sum Summary
	for _, st := range s.Students {
		r, ok := s.records[st.ID]
		if !ok {
			sum.Unmarked++
			continue
		}
		sum.add(r.Status)
	}
	return sum
}

// Item is the outcome for one student.
type Item struct {
	Student model.Student
	Record  model.AttendanceRecord
	Err     string
}

// SaveResult summarizes a save; Items follow the roster order.
type SaveResult struct {
	Saved  int
	Failed int
	Items  []Item
}

// Errors lists the per-student failure messages in roster order.
func (r SaveResult) Errors() []string {
	var out []string
	for _, it := range r.Items {
		if it.Err != "" {
			out = append(out, it.Err)
		}
	}
	return out
}

// Message is the banner text for the save.
func (r SaveResult) Message() string {
	details := strings.Join(r.Errors(), "; ")
	switch {
	case r.Failed == 0:
		return msgSaved
	case r.Saved > 0:
		return fmt.Sprintf("Davomat qisman saqlandi. %d ta muvaffaqiyatli, %d ta xato. Tafsilotlar: %s", r.Saved, r.Failed, details)
	default:
		return "Davomatni saqlashda xatolik yuz berdi. Tafsilotlar: " + details
	}
}

// OK reports whether every student saved.
func (r SaveResult) OK() bool { return r.Failed == 0 }

// Save writes one record per student: PATCH when a record exists, POST otherwise.
// Successful saves are never rolled back. The error is non-nil only when nothing
// could be attempted, or the session was rejected.
func (s *Sheet) Save(ctx context.Context, api Saver, now time.Time) (SaveResult, error) {
	if len(s.Students) == 0 {
		return SaveResult{}, errors.New(msgNoStudents)
	}
	day, err := ParseDate(s.Date, now)
	if err != nil {
		return SaveResult{}, err
	}
	isoDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).Format("2006-01-02T15:04:05.000Z")

	items := make([]Item, len(s.Students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(saveParallelism)
	for i, st := range s.Students {
		items[i].Student = st
		status := s.Status(st.ID)
		if _, err := uuid.Parse(st.ID); err != nil || len(st.ID) != 36 {
			items[i].Err = fmt.Sprintf("O'quvchi %s %s (%s) uchun noto'g'ri ID.", st.FirstName, st.LastName, st.ID)
			continue
		}
		if !status.Valid() {
			items[i].Err = fmt.Sprintf("O'quvchi %s %s uchun noto'g'ri davomat statusi: %s.", st.FirstName, st.LastName, status)
			continue
		}
		existing, hasRecord := s.records[st.ID]
		g.Go(func() error {
			var (
				rec model.AttendanceRecord
				err error
			)
			if hasRecord && existing.ID != "" {
				rec, err = api.UpdateAttendance(gctx, existing.ID, apiclient.AttendanceUpdate{Status: status, Date: isoDay})
			} else {
				rec, err = api.CreateAttendance(gctx, apiclient.NewAttendance{
					GroupID:   s.GroupID,
					StudentID: st.ID,
					Date:      isoDay,
					Status:    status,
					Reason:    "",
				})
			}
			if err != nil {
				if apiclient.IsAuth(err) {
					return err
				}
				items[i].Err = fmt.Sprintf("O'quvchi %s %s uchun davomatni saqlab bo'lmadi: %s", st.FirstName, st.LastName, apiclient.Message(err, msgUnknown))
				return nil
			}
			if rec.StudentID == "" {
				rec.StudentID = st.ID
			}
			items[i].Record = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SaveResult{}, err
	}

	res := SaveResult{Items: items}
	for _, it := range items {
		if it.Err != "" {
			res.Failed++
			continue
		}
		res.Saved++
		s.records[it.Student.ID] = it.Record
	}
	return res, nil
}
