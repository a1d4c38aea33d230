// Package worktime models the site's business-hours window.
package worktime

import (
	"fmt"
	"time"
)

// Window is a weekly processing window in a site-local timezone.
type Window struct {
	Location  *time.Location
	Days      []time.Weekday
	StartHour int
	EndHour   int
}

// BusinessWindow is Monday to Friday, 06:00 to 19:00 site-local.
func BusinessWindow(loc *time.Location) Window {
	return Window{
		Location:  loc,
		Days:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		StartHour: 6,
		EndHour:   19,
	}
}

func (w Window) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	local := t.In(w.location())

	workday := false
	for _, d := range w.Days {
		if local.Weekday() == d {
			workday = true
			break
		}
	}
	if !workday {
		return false
	}

	return local.Hour() >= w.StartHour && local.Hour() < w.EndHour
}

// ElapsedHours counts the whole hours between start and end that began inside
// the window. The span is walked hour by hour from start; an hour only counts
// once it has fully elapsed.
func (w Window) ElapsedHours(start, end time.Time) int {
	if start.IsZero() || !end.After(start) {
		return 0
	}

	hours := 0
	for t := start; !t.Add(time.Hour).After(end); t = t.Add(time.Hour) {
		if w.Contains(t) {
			hours++
		}
	}
	return hours
}

// ClockTime is an hour and minute of the day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Matches reports whether t, in loc, falls within minute c.
func (c ClockTime) Matches(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return local.Hour() == c.Hour && local.Minute() == c.Minute
}
