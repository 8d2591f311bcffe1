package dashboard

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"teacherdash/internal/model"
)

// Class is one lesson on a day.
type Class struct {
	GroupID      string
	GroupName    string
	Time         string
	startMinutes int
}

// Day is one column of the weekly schedule.
type Day struct {
	Name      string
	ShortName string
	Date      time.Time
	Month     string
	IsToday   bool
	Classes   []Class
}

// Week builds Monday..Sunday of the week containing now from the active groups.
func Week(groups []model.Group, now time.Time) []Day {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	monday := today.AddDate(0, 0, -mondayIndex(today.Weekday()))

	week := make([]Day, 7)
	for i := range week {
		day := monday.AddDate(0, 0, i)
		week[i] = Day{
			Name:      WeekdayName(day.Weekday()),
			ShortName: weekdaysMon[i],
			Date:      day,
			Month:     MonthName(day.Month()),
			IsToday:   day.Equal(today),
		}
	}

	for _, g := range groups {
		if !g.Active() || g.DarsJadvali == "" || g.DarsVaqt == "" {
			continue
		}
		start := strings.TrimSpace(strings.SplitN(g.DarsVaqt, "-", 2)[0])
		minutes, ok := parseClock(start)
		if !ok {
			continue
		}
		for _, code := range strings.Split(g.DarsJadvali, "/") {
			wd, ok := scheduleDays[strings.TrimSpace(code)]
			if !ok {
				continue
			}
			day := &week[mondayIndex(wd)]
			if hasClass(day.Classes, g.ID, start) {
				continue
			}
			day.Classes = append(day.Classes, Class{
				GroupID:      g.ID,
				GroupName:    g.DisplayName(),
				Time:         start,
				startMinutes: minutes,
			})
		}
	}
	for i := range week {
		sort.SliceStable(week[i].Classes, func(a, b int) bool {
			return week[i].Classes[a].startMinutes < week[i].Classes[b].startMinutes
		})
	}
	return week
}

// TodayIndex is the position of today in a Week result.
func TodayIndex(now time.Time) int { return mondayIndex(now.Weekday()) }

func hasClass(classes []Class, groupID, at string) bool {
	for _, c := range classes {
		if c.GroupID == groupID && c.Time == at {
			return true
		}
	}
	return false
}

// parseClock reads "HH:MM" into minutes after midnight.
func parseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}
