// Package timefmt renders post and comment timestamps the way the web client
// shows them.
package timefmt

import (
	"fmt"
	"time"
)

// RefreshInterval is how often clients should re-render relative timestamps.
const RefreshInterval = 10 * time.Second

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
	month  = 30 * day
)

// Relative renders t against now as a compact age like "45s ago" or "2d ago".
// Ages of thirty days or more fall back to a calendar date.
func Relative(t, now time.Time) string {
	secs := int64(now.Sub(t).Seconds())
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < minute:
		return fmt.Sprintf("%ds ago", secs)
	case secs < hour:
		return fmt.Sprintf("%dm ago", secs/minute)
	case secs < day:
		return fmt.Sprintf("%dh ago", secs/hour)
	case secs < week:
		return fmt.Sprintf("%dd ago", secs/day)
	case secs < month:
		return fmt.Sprintf("%dw ago", secs/week)
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Absolute renders a full date with time, e.g. "2 Jan 2006 · 3:04 PM".
func Absolute(t time.Time) string {
	return t.Format("2 Jan 2006 · 3:04 PM")
}

// Full renders a verbose timestamp for tooltips,
// e.g. "Monday, January 2, 2006 at 3:04:05 PM".
func Full(t time.Time) string {
	return t.Format("Monday, January 2, 2006 at 3:04:05 PM")
}

// IsToday reports whether t falls on the same calendar day as now.
func IsToday(t, now time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
