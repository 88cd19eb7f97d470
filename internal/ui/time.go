package ui

import "time"

// FormatMessageTime renders a message timestamp relative to now: clock time
// for today, "Yesterday", the weekday within the last week, else "Jan 2".
func FormatMessageTime(t, now time.Time) string {
	t = t.In(now.Location())

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch {
	case !t.Before(today):
		return t.Format("15:04")
	case !t.Before(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case !t.Before(today.AddDate(0, 0, -6)):
		return t.Weekday().String()
	default:
		return t.Format("Jan 2")
	}
}
