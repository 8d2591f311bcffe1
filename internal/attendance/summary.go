package attendance

import "teacherdash/internal/model"

// Summary counts marks by status.
type Summary struct {
	Present  int
	Absent   int
	Late     int
	Excused  int
	Unmarked int
}

func (s *Summary) add(st model.AttendanceStatus) {
	switch st {
	case model.Present:
		s.Present++
	case model.Absent:
		s.Absent++
	case model.Late:
		s.Late++
	case model.Excused:
		s.Excused++
	}
}

// Summarize counts records by status.
func Summarize(records []model.AttendanceRecord) Summary {
	var s Summary
	for _, r := range records {
		s.add(r.Status)
	}
	return s
}

// Marked is the number of students with a record.
func (s Summary) Marked() int { return s.Present + s.Absent + s.Late + s.Excused }

// Merge adds o into s.
func (s Summary) Merge(o Summary) Summary {
	return Summary{
		Present:  s.Present + o.Present,
		Absent:   s.Absent + o.Absent,
		Late:     s.Late + o.Late,
		Excused:  s.Excused + o.Excused,
		Unmarked: s.Unmarked + o.Unmarked,
	}
}

// Rate is the share of marked students who attended, late included, in percent.
func (s Summary) Rate() int {
	marked := s.Marked()
	if marked == 0 {
		return 0
	}
	return (s.Present + s.Late) * 100 / marked
}
