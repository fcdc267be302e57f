package domain

import (
	"time"
)

// TabSnapshot is a point-in-time view of one open browser tab as reported by
// the host. Snapshots are refetched on every run and never mutated by the
// engine.
type TabSnapshot struct {
	ID           int       `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	FavIconURL   string    `json:"fav_icon_url,omitempty"`
	Pinned       bool      `json:"pinned"`
	Active       bool      `json:"active"`
	Audible      bool      `json:"audible"`
	GroupID      int       `json:"group_id"` // 0 = not grouped
	LastAccessed time.Time `json:"last_accessed"`
}

// TimeOfDay buckets the clock into the four periods the pattern store
// tracks.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"   // 05:00 - 11:59
	TimeAfternoon TimeOfDay = "afternoon" // 12:00 - 16:59
	TimeEvening   TimeOfDay = "evening"   // 17:00 - 21:59
	TimeNight     TimeOfDay = "night"     // 22:00 - 04:59
)

// TimeOfDayFor buckets an instant into a TimeOfDay.
func TimeOfDayFor(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return TimeMorning
	case h >= 12 && h < 17:
		return TimeAfternoon
	case h >= 17 && h < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

// TabContext carries everything the classification pipeline may look at for
// a single tab: the tab itself plus the surrounding session.
type TabContext struct {
	Tab          TabSnapshot
	TimeOfDay    TimeOfDay
	DayOfWeek    time.Weekday
	SessionTabs  []TabSnapshot // all other tabs open in the same window
	UserActivity string        // free-form hint from the host ("browsing", "working", ...)
}
