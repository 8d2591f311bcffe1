package devapi

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"teacherdash/internal/model"
)

// Demo credentials of the seeded teacher.
const (
	SeedPhone    = "+998901234567"
	SeedPassword = "parol123"
)

// SeedID derives a stable id for a seeded entity.
func SeedID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("teacherdash:"+name)).String()
}

// SeedTeacherID is the id of the teacher behind SeedPhone.
var SeedTeacherID = SeedID("teacher/aziz")

// Seed fills a fresh store with one teacher, a small leaderboard, three groups and
// their students.
func Seed() *Store {
	s := NewStore()
	base := time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)

	s.AddTeacher(Account{
		Teacher: model.Teacher{
			ID: SeedTeacherID, FirstName: "Aziz", LastName: "Karimov", Phone: SeedPhone,
			Address: "Toshkent", Subject: "Ingliz tili", Status: model.StatusLeader,
		},
		Password:  SeedPassword,
		CreatedAt: base,
	})
	leaders := []struct{ key, first, last, subject, status string }{
		{"teacher/malika", "Malika", "Rahimova", "Matematika", model.StatusLeader},
		{"teacher/jasur", "Jasur", "Toshmatov", "Fizika", model.StatusLeader},
		{"teacher/dilnoza", "Dilnoza", "Yusupova", "Kimyo", model.StatusActive},
	}
	for i, l := range leaders {
		s.AddTeacher(Account{
			Teacher: model.Teacher{
				ID: SeedID(l.key), FirstName: l.first, LastName: l.last,
				Phone: fmt.Sprintf("+99890000000%d", i+1), Subject: l.subject, Status: l.status,
			},
			Password:  SeedPassword,
			CreatedAt: base.Add(time.Duration(i+1) * time.Hour),
		})
	}

	groups := []model.Group{
		{ID: SeedID("group/eng-a1"), GroupID: "ENG-A1", Name: "Ingliz tili A1", Status: model.StatusActive,
			CoursePrice: 450000, DarsJadvali: "Dush/Chor/Jum", DarsVaqt: "14:00-16:00"},
		{ID: SeedID("group/eng-b2"), GroupID: "ENG-B2", Name: "Ingliz tili B2", Status: model.StatusActive,
			CoursePrice: 550000, DarsJadvali: "Sesh/Pays/Shan", DarsVaqt: "09:30-11:00"},
		{ID: SeedID("group/ielts-old"), GroupID: "IELTS-1", Name: "", Status: "TUGAGAN",
			DarsJadvali: "Dush/Chor", DarsVaqt: "18:00-20:00"},
	}
	for _, g := range groups {
		s.AddGroup(SeedTeacherID, g)
	}

	roster := map[string][][2]string{
		groups[0].ID: {{"Ali", "Valiyev"}, {"Madina", "Ergasheva"}, {"Sardor", "Qodirov"}, {"Nodira", "Saidova"}},
		groups[1].ID: {{"Bekzod", "Aliyev"}, {"Shahlo", "Karimova"}, {"Otabek", "Nazarov"}},
		groups[2].ID: {{"Zarina", "Umarova"}},
	}
	n := 0
	for _, g := range groups {
		for i, name := range roster[g.ID] {
			n++
			status := model.StatusActive
			if g.ID == groups[0].ID && i == 3 {
				status = "NOFAOL"
			}
			s.AddStudent(g.ID, model.Student{
				ID:        SeedID("student/" + g.GroupID + "/" + name[0]),
				StudentID: fmt.Sprintf("ST-%02d", n),
				FirstName: name[0],
				LastName:  name[1],
				Status:    status,
			})
		}
	}
	return s
}
