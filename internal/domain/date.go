package domain

import "time"

// DateOf returns the calendar day of t as midnight UTC. All "date" values in the
// domain (session dates, plan windows, streak days) use this representation so
// they compare with Equal and sort chronologically regardless of the zone the
// instant was observed in.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now as observed in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// AddDays shifts a date by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return DateOf(d).AddDate(0, 0, n)
}

// StartOfWeek returns the Monday of the week containing d.
func StartOfWeek(d time.Time) time.Time {
	d = DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
