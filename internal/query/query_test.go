package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedbot/internal/task"
)

var seoul = mustLoad("Asia/Seoul")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Monday of the test week.
var now = time.Date(2026, time.August, 24, 10, 30, 0, 0, seoul)

func due(title string, y int, m time.Month, d int) task.Task {
	return task.Task{Title: title, Due: &task.DateValue{Year: y, Month: m, Day: d}}
}

func dueAt(title string, y int, m time.Month, d, hh, mm int) task.Task {
	return task.Task{Title: title, Due: &task.DateValue{
		Year: y, Month: m, Day: d, HasTime: true, Hour: hh, Minute: mm,
	}}
}

func TestWeekBounds(t *testing.T) {
	monday, sunday := WeekBounds(now)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, 24, monday.Day())
	assert.Equal(t, time.Sunday, sunday.Weekday())
	assert.Equal(t, 30, sunday.Day())

	// A Sunday reference still maps to the same Monday.
	sun := time.Date(2026, time.August, 30, 23, 59, 0, 0, seoul)
	monday2, _ := WeekBounds(sun)
	assert.Equal(t, monday, monday2)
}

func TestTodayFiltersAndOrders(t *testing.T) {
	in := []task.Task{
		due("zeta all-day", 2026, time.August, 24),
		dueAt("late meeting", 2026, time.August, 24, 16, 0),
		dueAt("early meeting", 2026, time.August, 24, 9, 0),
		due("alpha all-day", 2026, time.August, 24),
		due("tomorrow", 2026, time.August, 25),
		due("overdue", 2026, time.August, 20),
		{Title: "undated"},
	}
	got := Today(in, now, seoul)
	require.Len(t, got, 4)
	assert.Equal(t, "early meeting", got[0].Title)
	assert.Equal(t, "late meeting", got[1].Title)
	assert.Equal(t, "alpha all-day", got[2].Title)
	assert.Equal(t, "zeta all-day", got[3].Title)
}

func TestTodayExcludesCompleted(t *testing.T) {
	tk := dueAt("done already", 2026, time.August, 24, 9, 0)
	tk.Completed = true
	assert.Empty(t, Today([]task.Task{tk}, now, seoul))
}

func TestTodayIncludesProjectedRecurrence(t *testing.T) {
	tk := due("weekly sync", 2026, time.August, 17)
	tk.Recurrence = &task.Recurrence{Every: 1, Unit: task.RecurWeek}
	got := Today([]task.Task{tk}, now, seoul)
	require.Len(t, got, 1)
	assert.Equal(t, "weekly sync", got[0].Title)
}

func TestWeekBoundaryInclusion(t *testing.T) {
	in := []task.Task{
		dueAt("boundary sunday", 2026, time.August, 30, 23, 59),
		dueAt("next monday", 2026, time.August, 31, 0, 0),
		due("mid week", 2026, time.August, 26),
	}
	days := Week(in, now, seoul)
	require.Len(t, days, 7)

	var titles []string
	for _, d := range days {
		for _, tk := range d.Tasks {
			titles = append(titles, tk.Title)
		}
	}
	assert.Contains(t, titles, "boundary sunday")
	assert.Contains(t, titles, "mid week")
	assert.NotContains(t, titles, "next monday")

	assert.Equal(t, "mid week", days[2].Tasks[0].Title, "Wednesday bucket")
	assert.Equal(t, "boundary sunday", days[6].Tasks[0].Title, "Sunday bucket")
}

func TestAllPendingGrouping(t *testing.T) {
	in := []task.Task{
		{Title: "zulu undated"},
		{Title: "Alpha undated"},
		due("later", 2026, time.September, 10),
		due("sooner", 2026, time.August, 1),
	}
	dated, undated := AllPending(in, now, seoul)
	require.Len(t, dated, 2)
	require.Len(t, undated, 2)
	assert.Equal(t, "sooner", dated[0].Title)
	assert.Equal(t, "later", dated[1].Title)
	assert.Equal(t, "Alpha undated", undated[0].Title)
	assert.Equal(t, "zulu undated", undated[1].Title)
}

func TestOverdue(t *testing.T) {
	in := []task.Task{
		due("old", 2026, time.August, 10),
		due("older", 2026, time.July, 1),
		due("today", 2026, time.August, 24),
		{Title: "undated"},
	}
	got := Overdue(in, now, seoul)
	require.Len(t, got, 2)
	assert.Equal(t, "older", got[0].Title)
	assert.Equal(t, "old", got[1].Title)
}

func TestOverdueExcludesRecurring(t *testing.T) {
	tk := due("weekly", 2026, time.August, 10)
	tk.Recurrence = &task.Recurrence{Every: 1, Unit: task.RecurWeek}
	assert.Empty(t, Overdue([]task.Task{tk}, now, seoul))
}

func TestQueriesAreDeterministic(t *testing.T) {
	in := []task.Task{
		dueAt("b", 2026, time.August, 24, 9, 0),
		dueAt("a", 2026, time.August, 24, 9, 0),
	}
	first := Today(in, now, seoul)
	second := Today(in, now, seoul)
	assert.Equal(t, first, second)
	assert.Equal(t, "a", first[0].Title)
}
