package engine

import "time"

// Clock supplies "now", the reporting timezone, and the first day of the week
// to the aggregation engine. Injecting it keeps window and streak math
// deterministic under test; no engine code calls time.Now directly.
type Clock struct {
	Now       func() time.Time
	Location  *time.Location
	WeekStart time.Weekday
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock(loc *time.Location, weekStart time.Weekday) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc, WeekStart: weekStart}
}

// now returns the current time in the configured location.
func (c Clock) now() time.Time {
	return c.Now().In(c.Location)
}

// dayStart truncates t to midnight in the clock's location.
func (c Clock) dayStart(t time.Time) time.Time {
	t = t.In(c.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location)
}

// weekStart returns the most recent WeekStart midnight at or before t.
func (c Clock) weekStart(t time.Time) time.Time {
	day := c.dayStart(t)
	offset := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// monthStart returns midnight on the first of t's month.
func (c Clock) monthStart(t time.Time) time.Time {
	t = t.In(c.Location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.Location)
}

// yearStart returns midnight on January 1st of t's year.
func (c Clock) yearStart(t time.Time) time.Time {
	t = t.In(c.Location)
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, c.Location)
}

// epochDay maps t to a calendar-day ordinal in the clock's location, so
// consecutive days differ by exactly one regardless of DST.
func (c Clock) epochDay(t time.Time) int {
	day := c.dayStart(t)
	return int(day.Unix()+int64(dayOffsetSeconds(day))) / 86400
}

func dayOffsetSeconds(t time.Time) int {
	_, off := t.Zone()
	return off
}
