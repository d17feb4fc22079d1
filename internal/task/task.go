package task

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock HH:MM with no date or zone attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

var timeOfDayRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTimeOfDay accepts "H:MM" or "HH:MM", nothing looser.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	m := timeOfDayRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeOfDay{}, false
	}
	h := int(m[1][0] - '0')
	if len(m[1]) == 2 {
		h = h*10 + int(m[1][1]-'0')
	}
	min := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	if h > 23 || min > 59 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: h, Minute: min}, true
}

// TimeRange is the time part of an @[..]/[..] annotation. Start may be nil
// (location-only annotation) and End may be nil (instant event).
type TimeRange struct {
	Start *TimeOfDay
	End   *TimeOfDay
}

// DateValue is a calendar date extracted from a field, optionally carrying a
// time of day. It is zone-free; At pins it to a location.
type DateValue struct {
	Year    int
	Month   time.Month
	Day     int
	HasTime bool
	Hour    int
	Minute  int
}

func (d DateValue) At(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, d.Hour, d.Minute, 0, 0, loc)
}

// SameDay reports whether d falls on the calendar date of ref.
func (d DateValue) SameDay(ref time.Time) bool {
	y, m, day := ref.Date()
	return d.Year == y && d.Month == m && d.Day == day
}

type RecurUnit string

const (
	RecurDay   RecurUnit = "day"
	RecurWeek  RecurUnit = "week"
	RecurMonth RecurUnit = "month"
	RecurYear  RecurUnit = "year"
)

// Recurrence is the closed "every [N] unit" grammar. Anything outside it is
// treated as a skippable parse error upstream, not stored here.
type Recurrence struct {
	Every int
	Unit  RecurUnit
}

func (r Recurrence) String() string {
	if r.Every == 1 {
		return "every " + string(r.Unit)
	}
	return fmt.Sprintf("every %d %ss", r.Every, r.Unit)
}

// Task is one checkbox line after parsing and extraction. Values are built
// wholesale per scan; nothing mutates a Task after the pipeline returns it.
type Task struct {
	Title      string
	Completed  bool
	Source     string // file stem the line came from
	Due        *DateValue
	Scheduled  *DateValue
	Start      *DateValue
	Recurrence *Recurrence
	Times      *TimeRange
	Location   string
	Raw        string // original line, kept for diagnostics
}

// Primary returns the date field that drives bucketing: due > scheduled > start.
func (t Task) Primary() *DateValue {
	switch {
	case t.Due != nil:
		return t.Due
	case t.Scheduled != nil:
		return t.Scheduled
	case t.Start != nil:
		return t.Start
	}
	return nil
}

// HasTime reports whether the task has any time-of-day signal: an annotation
// start time or an explicit time on its primary date field.
func (t Task) HasTime() bool {
	if t.Times != nil && t.Times.Start != nil {
		return true
	}
	d := t.Primary()
	return d != nil && d.HasTime
}

// StartTime returns the time used for intra-day ordering. The annotation
// wins over a field time; ok is false for all-day tasks.
func (t Task) StartTime() (TimeOfDay, bool) {
	if t.Times != nil && t.Times.Start != nil {
		return *t.Times.Start, true
	}
	if d := t.Primary(); d != nil && d.HasTime {
		return TimeOfDay{Hour: d.Hour, Minute: d.Minute}, true
	}
	return TimeOfDay{}, false
}
