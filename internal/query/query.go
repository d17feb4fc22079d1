// Package query answers the view queries over a scanned task set: Today,
// Week, All-pending and Overdue. Every function takes the reference time and
// timezone explicitly; nothing here reads ambient state.
package query

import (
	"sort"
	"strings"
	"time"

	"schedbot/internal/task"
)

// Day is one calendar day of the Week view. Days with no tasks are kept so
// the rendered week always shows all seven rows.
type Day struct {
	Date  time.Time
	Tasks []task.Task
}

// WeekBounds returns the Monday and Sunday midnights of the week containing
// now, in now's location.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	today := task.Midnight(now)
	offset := (int(today.Weekday()) + 6) % 7 // Monday = 0
	monday := today.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return monday, sunday
}

// Today returns incomplete tasks whose effective date is now's calendar
// date, timed tasks first in ascending order, then all-day, titles breaking
// ties. Overdue and future tasks are excluded.
func Today(in []task.Task, now time.Time, loc *time.Location) []task.Task {
	today := task.Midnight(now.In(loc))
	var out []task.Task
	for _, t := range resolveAll(in, now, loc) {
		d := t.Primary()
		if d == nil || !d.SameDay(today) {
			continue
		}
		out = append(out, t)
	}
	sortDay(out)
	return out
}

// Week returns the Monday–Sunday week containing now, one Day per calendar
// day in chronological order. Both boundary days are inclusive.
func Week(in []task.Task, now time.Time, loc *time.Location) []Day {
	monday, _ := WeekBounds(now.In(loc))
	days := make([]Day, 7)
	for i := range days {
		days[i].Date = monday.AddDate(0, 0, i)
	}
	for _, t := range resolveAll(in, now, loc) {
		eff, ok := task.EffectiveDate(t, loc)
		if !ok {
			continue
		}
		for i := range days {
			if sameDate(days[i].Date, eff) {
				days[i].Tasks = append(days[i].Tasks, t)
				break
			}
		}
	}
	for i := range days {
		sortDay(days[i].Tasks)
	}
	return days
}

// AllPending returns every incomplete task: date-bearing tasks ordered by
// effective date ascending, then undated tasks ordered by title.
func AllPending(in []task.Task, now time.Time, loc *time.Location) (dated, undated []task.Task) {
	for _, t := range resolveAll(in, now, loc) {
		if t.Primary() == nil {
			undated = append(undated, t)
		} else {
			dated = append(dated, t)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		di, _ := task.EffectiveDate(dated[i], loc)
		dj, _ := task.EffectiveDate(dated[j], loc)
		if mi, mj := task.Midnight(di), task.Midnight(dj); !mi.Equal(mj) {
			return mi.Before(mj)
		}
		return lessWithinDay(dated[i], dated[j])
	})
	sort.SliceStable(undated, func(i, j int) bool {
		return lessTitle(undated[i], undated[j])
	})
	return dated, undated
}

// Overdue returns incomplete tasks whose effective date is strictly before
// now's calendar date, oldest first. Recurring tasks never land here: their
// dates are projected forward before the comparison.
func Overdue(in []task.Task, now time.Time, loc *time.Location) []task.Task {
	today := task.Midnight(now.In(loc))
	var out []task.Task
	for _, t := range resolveAll(in, now, loc) {
		eff, ok := task.EffectiveDate(t, loc)
		if !ok {
			continue
		}
		if task.Midnight(eff).Before(today) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := task.EffectiveDate(out[i], loc)
		dj, _ := task.EffectiveDate(out[j], loc)
		if mi, mj := task.Midnight(di), task.Midnight(dj); !mi.Equal(mj) {
			return mi.Before(mj)
		}
		return lessWithinDay(out[i], out[j])
	})
	return out
}

func resolveAll(in []task.Task, now time.Time, loc *time.Location) []task.Task {
	out := make([]task.Task, 0, len(in))
	for _, t := range in {
		if t.Completed {
			continue
		}
		out = append(out, task.Resolve(t, now, loc))
	}
	return out
}

func sortDay(tasks []task.Task) {
	sort.SliceStable(tasks, lessWithinDayFunc(tasks))
}

func lessWithinDayFunc(tasks []task.Task) func(i, j int) bool {
	return func(i, j int) bool { return lessWithinDay(tasks[i], tasks[j]) }
}

// lessWithinDay orders timed tasks ascending by start time before all-day
// tasks, with lexicographic titles as the deterministic tiebreak.
func lessWithinDay(a, b task.Task) bool {
	ta, aok := a.StartTime()
	tb, bok := b.StartTime()
	if aok != bok {
		return aok
	}
	if aok && ta.Minutes() != tb.Minutes() {
		return ta.Minutes() < tb.Minutes()
	}
	return lessTitle(a, b)
}

func lessTitle(a, b task.Task) bool {
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
