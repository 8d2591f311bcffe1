package feedback

type tier struct {
	min, max int
	text     string
}

var tiers = []tier{
	{90, 100, "A'lo darajadagi ishlash. Barcha ko'rsatkichlar bo'yicha yuqori natijalar ko'rsatdi."},
	{80, 89, "Juda yaxshi natija. Berilgan vazifalarni to'g'ri bajargan, darsda faol qatnashgan."},
	{70, 79, "Yaxshi natija. Mavzuni o'zlashtirgan, ammo ba'zi jihatlarda qo'shimcha e'tibor talab etiladi."},
	{60, 69, "Qoniqarli natija. Asosiy tushunchalarni o'zlashtirgan, biroq faollikni oshirish va vazifalarni to'liq bajarish ustida ishlash kerak."},
	{50, 59, "Yomon natija. Mavzuni o'zlashtirishda katta qiyinchiliklarga duch kelmoqda. Qo'shimcha darslar va individual yondashuv tavsiya etiladi."},
	{0, 49, "Juda yomon natija. Jiddiy e'tibor va yordam talab qiladi. Darsga tayyorgarlik ko'rish va faol qatnashish kerak."},
}

// Suggest returns the tier comment for score; scores outside 0..100 have none.
func Suggest(score int) (string, bool) {
	for _, t := range tiers {
		if score >= t.min && score <= t.max {
			return t.text, true
		}
	}
	return "", false
}

// QuickScores are the one-click score buttons, 50 to 100 in steps of 5.
func QuickScores() []int {
	out := make([]int, 0, 11)
	for s := 50; s <= 100; s += 5 {
		out = append(out, s)
	}
	return out
}

// IsSuggestion reports whether text is one of the tier comments, as echoed back by a
// form that was filled in automatically.
func IsSuggestion(text string) bool {
	for _, t := range tiers {
		if t.text == text {
			return true
		}
	}
	return false
}
