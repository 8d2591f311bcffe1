package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/model"
)

const (
	id1 = "0b7a4a1e-6a5f-4a44-9a53-1c1b1f0e0001"
	id2 = "0b7a4a1e-6a5f-4a44-9a53-1c1b1f0e0002"
	id3 = "0b7a4a1e-6a5f-4a44-9a53-1c1b1f0e0003"
)

var (
	now      = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)
	students = []model.Student{
		{ID: id1, FirstName: "Ali", LastName: "Valiyev"},
		{ID: id2, FirstName: "Vali", LastName: "Aliyev"},
		{ID: id3, FirstName: "Olim", LastName: "Karimov"},
	}
)

type fakeSaver struct {
	mu      sync.Mutex
	created []apiclient.NewAttendance
	updated map[string]apiclient.AttendanceUpdate
	fail    map[string]error
}

func (f *fakeSaver) CreateAttendance(_ context.Context, in apiclient.NewAttendance) (model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[in.StudentID]; err != nil {
		return model.AttendanceRecord{}, err
	}
	f.created = append(f.created, in)
	return model.AttendanceRecord{ID: "new-" + in.StudentID, StudentID: in.StudentID, Status: in.Status}, nil
}

func (f *fakeSaver) UpdateAttendance(_ context.Context, id string, in apiclient.AttendanceUpdate) (model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = make(map[string]apiclient.AttendanceUpdate)
	}
	f.updated[id] = in
	return model.AttendanceRecord{ID: id, Status: in.Status}, nil
}

func TestNewSheet_defaults(t *testing.T) {
	s := NewSheet("g1", "2026-10-14", students, []model.AttendanceRecord{
		{ID: "a2", StudentID: id2, Status: model.Late},
		{ID: "a3", StudentID: id3, Status: "WHATEVER"},
	})
	assert.Equal(t, model.Present, s.Status(id1))
	assert.Equal(t, model.Late, s.Status(id2))
	assert.Equal(t, model.Absent, s.Status(id3))
	assert.Equal(t, Unmarked, s.Badge(id1))
	assert.Equal(t, "Kechikdi", s.Badge(id2))
	assert.Equal(t, Summary{Late: 1, Absent: 1, Unmarked: 1}, s.Summary())
}

func TestSheet_Save_createAndUpdate(t *testing.T) {
	s := NewSheet("g1", "2026-10-14", students, []model.AttendanceRecord{{ID: "a2", StudentID: id2, Status: model.Absent}})
	s.MarkAll(model.Present)
	s.Set(id3, model.Excused)
	api := &fakeSaver{}

	res, err := s.Save(context.Background(), api, now)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 3, res.Saved)
	assert.Equal(t, "Davomat muvaffaqiyatli saqlandi!", res.Message())

	assert.Len(t, api.created, 2)
	for _, c := range api.created {
		assert.Equal(t, "g1", c.GroupID)
		assert.Equal(t, "2026-10-14T00:00:00.000Z", c.Date)
		assert.Equal(t, "", c.Reason)
	}
	assert.Equal(t, apiclient.AttendanceUpdate{Status: model.Present, Date: "2026-10-14T00:00:00.000Z"}, api.updated["a2"])

	rec, ok := s.Record(id3)
	require.True(t, ok)
	assert.Equal(t, model.Excused, rec.Status)
}

func TestSheet_Save_partial(t *testing.T) {
	roster := append([]model.Student{{ID: "s-bad", FirstName: "Bad", LastName: "Id"}}, students...)
	s := NewSheet("g1", "2026-10-14", roster, nil)
	api := &fakeSaver{fail: map[string]error{id2: &apiclient.APIError{Status: 409, Message: "Takroriy yozuv"}}}

	res, err := s.Save(context.Background(), api, now)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []string{
		"O'quvchi Bad Id (s-bad) uchun noto'g'ri ID.",
		"O'quvchi Vali Aliyev uchun davomatni saqlab bo'lmadi: Takroriy yozuv",
	}, res.Errors())
	assert.Equal(t,
		"Davomat qisman saqlandi. 2 ta muvaffaqiyatli, 2 ta xato. Tafsilotlar: O'quvchi Bad Id (s-bad) uchun noto'g'ri ID.; O'quvchi Vali Aliyev uchun davomatni saqlab bo'lmadi: Takroriy yozuv",
		res.Message())
}

func TestSheet_Save_allFailed(t *testing.T) {
	s := NewSheet("g1", "2026-10-14", students[:1], nil)
	s.Set(id1, "ABSENT")
	res, err := s.Save(context.Background(), &fakeSaver{}, now)
	require.NoError(t, err)
	assert.Equal(t, "Davomatni saqlashda xatolik yuz berdi. Tafsilotlar: O'quvchi Ali Valiyev uchun noto'g'ri davomat statusi: ABSENT.", res.Message())
}

func TestSheet_Save_rejected(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		students []model.Student
		fail     error
		wantErr  string
	}{
		{name: "no students", date: "2026-10-14", wantErr: "Bu guruhda o'quvchilar mavjud emas."},
		{name: "future date", date: "2026-10-15", students: students, wantErr: "Noto'g'ri sana tanlandi. Iltimos, to'g'ri sana kiriting."},
		{name: "garbage date", date: "14/10/2026", students: students, wantErr: "Noto'g'ri sana tanlandi. Iltimos, to'g'ri sana kiriting."},
		{name: "auth", date: "2026-10-14", students: students[:1], fail: apiclient.ErrAuth, wantErr: apiclient.ErrAuth.Message},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSaver{fail: map[string]error{id1: tt.fail}}
			_, err := NewSheet("g1", tt.date, tt.students, nil).Save(context.Background(), api, now)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSummary_Rate(t *testing.T) {
	s := Summarize([]model.AttendanceRecord{
		{Status: model.Present}, {Status: model.Present}, {Status: model.Late}, {Status: model.Absent},
	})
	assert.Equal(t, 4, s.Marked())
	assert.Equal(t, 75, s.Rate())
	assert.Equal(t, 0, Summary{Unmarked: 3}.Rate())
	assert.Equal(t, Summary{Present: 3, Late: 1, Absent: 1}, s.Merge(Summary{Present: 1}))
}
