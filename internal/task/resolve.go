package task

import "time"

// Resolve projects a recurring task's date fields onto their next occurrence
// at or after now, in the given location. Non-recurring tasks come back
// unchanged: a literal past date stays past (overdue), it is never dropped.
// Resolve is a pure function of (task, now); resolving twice with the same
// now yields the same dates.
func Resolve(t Task, now time.Time, loc *time.Location) Task {
	if t.Recurrence == nil {
		return t
	}
	r := *t.Recurrence
	t.Due = nextOccurrence(t.Due, r, now, loc)
	t.Scheduled = nextOccurrence(t.Scheduled, r, now, loc)
	t.Start = nextOccurrence(t.Start, r, now, loc)
	return t
}

// nextOccurrence steps the anchor forward by the rule's unit and multiplier
// until it lands on or after now's calendar date. Comparison is at date
// granularity: an occurrence later today is still "next" even if its time of
// day has passed.
func nextOccurrence(anchor *DateValue, r Recurrence, now time.Time, loc *time.Location) *DateValue {
	if anchor == nil {
		return nil
	}
	floor := midnight(now.In(loc))
	cur := anchor.At(loc)
	years, months, days := 0, 0, 0
	switch r.Unit {
	case RecurDay:
		days = r.Every
	case RecurWeek:
		days = 7 * r.Every
	case RecurMonth:
		months = r.Every
	case RecurYear:
		years = r.Every
	default:
		return anchor
	}
	for midnight(cur).Before(floor) {
		cur = cur.AddDate(years, months, days)
	}
	next := DateValue{
		Year:    cur.Year(),
		Month:   cur.Month(),
		Day:     cur.Day(),
		HasTime: anchor.HasTime,
		Hour:    anchor.Hour,
		Minute:  anchor.Minute,
	}
	return &next
}

// EffectiveDate is the single point in time that buckets a task into the
// Today/Week views, chosen by field precedence (due > scheduled > start).
// All-day tasks resolve to midnight. ok is false for undated tasks.
func EffectiveDate(t Task, loc *time.Location) (time.Time, bool) {
	d := t.Primary()
	if d == nil {
		return time.Time{}, false
	}
	return d.At(loc), true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time { return midnight(t) }
