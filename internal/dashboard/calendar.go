package dashboard

import (
	"fmt"
	"time"
)

var (
	weekdays    = [...]string{"Yakshanba", "Dushanba", "Seshanba", "Chorshanba", "Payshanba", "Juma", "Shanba"}
	weekdaysMon = [...]string{"Dush", "Sesh", "Chor", "Pay", "Jum", "Shan", "Yak"}
	months      = [...]string{"Yanvar", "Fevral", "Mart", "Aprel", "May", "Iyun", "Iyul", "Avgust", "Sentyabr", "Oktyabr", "Noyabr", "Dekabr"}

	// scheduleDays maps the day codes used in darsJadvali to weekdays.
	scheduleDays = map[string]time.Weekday{
		"Yak":  time.Sunday,
		"Dush": time.Monday,
		"Sesh": time.Tuesday,
		"Chor": time.Wednesday,
		"Pays": time.Thursday,
		"Jum":  time.Friday,
		"Shan": time.Saturday,
	}
)

// Greeting picks the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return "Xayrli tun"
	case h < 12:
		return "Xayrli tong"
	case h < 18:
		return "Xayrli kun"
	default:
		return "Xayrli kech"
	}
}

// WeekdayName is the Uzbek name of d.
func WeekdayName(d time.Weekday) string { return weekdays[d] }

// MonthName is the Uzbek name of m.
func MonthName(m time.Month) string { return months[m-1] }

// DateLine renders t as "Seshanba, 14 Oktyabr 2026".
func DateLine(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", WeekdayName(t.Weekday()), t.Day(), MonthName(t.Month()), t.Year())
}

// mondayIndex is 0 for Monday through 6 for Sunday.
func mondayIndex(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}
