package models

import "time"

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Covers reports whether day lies inside [start, end).
func Covers(start, end, day time.Time) bool {
	return !day.Before(start) && day.Before(end)
}

// NightsBetween returns the number of whole nights between two dates.
func NightsBetween(checkin, checkout time.Time, loc *time.Location) int {
	in := Midnight(checkin, loc)
	out := Midnight(checkout, loc)
	n := 0
	for d := in; d.Before(out); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Days lists every day of [start, end] inclusive, at midnight in loc.
func Days(start, end time.Time, loc *time.Location) []time.Time {
	start = Midnight(start, loc)
	end = Midnight(end, loc)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
