package dashboard

import "teacherdash/internal/model"

// Totals are the headline counters of the dashboard and statistics screens.
type Totals struct {
	ActiveGroups   int
	ActiveStudents int
}

// Count sums active groups and their students.
func Count(groups []model.Group) Totals {
	var t Totals
	for _, g := range groups {
		if !g.Active() {
			continue
		}
		t.ActiveGroups++
		t.ActiveStudents += g.Students()
	}
	return t
}

// Leaders keeps teachers whose status is LIDER.
func Leaders(teachers []model.Teacher) []model.Teacher {
	out := make([]model.Teacher, 0, len(teachers))
	for _, t := range teachers {
		if t.Status == model.StatusLeader {
			out = append(out, t)
		}
	}
	return out
}

// ActiveGroups keeps the running groups in their original order.
func ActiveGroups(groups []model.Group) []model.Group {
	out := make([]model.Group, 0, len(groups))
	for _, g := range groups {
		if g.Active() {
			out = append(out, g)
		}
	}
	return out
}
