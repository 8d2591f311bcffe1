package app

// Screen names one page of the dashboard. The value is what gets persisted.
type Screen string

const (
	Dashboard      Screen = "dashboard"
	Groups         Screen = "groups"
	GroupDetail    Screen = "groupDetail"
	Attendance     Screen = "attendance"
	Statistics     Screen = "statistics"
	Profile        Screen = "profile"
	EditProfile    Screen = "editProfile"
	NewFeedback    Screen = "newFeedback"
	FeedbackDetail Screen = "feedbackDetail"
	GradeFeedback  Screen = "gradeFeedback"
)

var screens = []Screen{
	Dashboard, Groups, GroupDetail, Attendance, Statistics,
	Profile, EditProfile, NewFeedback, FeedbackDetail, GradeFeedback,
}

// Tabs are the bottom navigation targets in display order.
var Tabs = []Screen{Dashboard, Groups, Statistics, Profile}

// TabLabel is the caption under a bottom navigation item.
func TabLabel(s Screen) string {
	switch s {
	case Dashboard:
		return "Bosh Sahifa"
	case Groups:
		return "Guruhlar"
	case Statistics:
		return "Statistika"
	case Profile:
		return "Profil"
	}
	return string(s)
}

// Valid reports whether s is a known screen.
func (s Screen) Valid() bool {
	for _, known := range screens {
		if s == known {
			return true
		}
	}
	return false
}

// Tab reports whether s is reachable from the bottom navigation.
func (s Screen) Tab() bool {
	for _, t := range Tabs {
		if s == t {
			return true
		}
	}
	return false
}

// ParseScreen returns the screen named v, or Dashboard for anything unknown.
func ParseScreen(v string) Screen {
	if s := Screen(v); s.Valid() {
		return s
	}
	return Dashboard
}

// State is the lifecycle of a controller.
type State int

const (
	CheckingAuth State = iota
	LoggedOut
	LoadingData
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case CheckingAuth:
		return "checkingAuth"
	case LoggedOut:
		return "loggedOut"
	case LoadingData:
		return "loadingData"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	}
	return "unknown"
}
