// Package streak counts consecutive calendar days on which a user opened the app.
package streak

import (
	"time"
)

// State is a user's streak as stored. LastDate is nil until the first trigger and
// otherwise holds midnight of the last counted day.
type State struct {
	Current  int
	Longest  int
	LastDate *time.Time
}

// Advance applies one "opened the app" trigger at now. The returned bool is false
// when the day was already counted, in which case the state is returned unchanged.
//
// Days are calendar days in now's location: 23:59 and 00:01 the next minute are
// two different days.
func Advance(s State, now time.Time) (State, bool) {
	today := Day(now)

	if s.LastDate == nil {
		return State{Current: 1, Longest: max(s.Longest, 1), LastDate: &today}, true
	}

	switch days := DaysBetween(*s.LastDate, today); {
	case days <= 0:
		// same day, or a clock that moved backwards
		return s, false
	case days == 1:
		current := s.Current + 1
		return State{Current: current, Longest: max(s.Longest, current), LastDate: &today}, true
	default:
		return State{Current: 1, Longest: max(s.Longest, 1), LastDate: &today}, true
	}
}

// Day truncates t to midnight of its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b, each read in its own location.
// Comparing at UTC midnight keeps DST transitions from producing 23 or 25 hour days.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)

	return int(to.Sub(from).Hours() / 24)
}
