// Package render turns query results into the fixed textual layout sent to
// the chat. Rendering is pure: no I/O, no clock reads, deterministic for
// identical input.
package render

import (
	"fmt"
	"strings"
	"time"

	"schedbot/internal/query"
	"schedbot/internal/task"
)

const maxChars = 3800 // Telegram message budget with headroom

// Renderer writes either Telegram HTML or plain text. The layout is the
// same; HTML mode adds escaping and bold section headers.
type Renderer struct {
	HTML bool
}

func (r Renderer) esc(s string) string {
	if !r.HTML {
		return s
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func (r Renderer) bold(s string) string {
	if !r.HTML {
		return s
	}
	return "<b>" + s + "</b>"
}

// timeLabel is the header's leading token: a range, a single time, or the
// literal all-day.
func timeLabel(t task.Task) string {
	if t.Times != nil && t.Times.Start != nil {
		if t.Times.End != nil {
			return t.Times.Start.String() + "-" + t.Times.End.String()
		}
		return t.Times.Start.String()
	}
	if d := t.Primary(); d != nil && d.HasTime {
		return task.TimeOfDay{Hour: d.Hour, Minute: d.Minute}.String()
	}
	return "all-day"
}

// Task renders one task as a two-line block: a header with the time label
// and dot-separated location/repeat tags, then the title behind a bar
// marker. withDate prefixes the header with MM/DD for cross-day lists.
func (r Renderer) Task(t task.Task, withDate bool) string {
	parts := make([]string, 0, 4)
	if withDate {
		if d := t.Primary(); d != nil {
			parts = append(parts, fmt.Sprintf("%02d/%02d", int(d.Month), d.Day))
		}
	}
	parts = append(parts, timeLabel(t))
	if t.Location != "" {
		parts = append(parts, r.esc(t.Location))
	}
	if t.Recurrence != nil {
		parts = append(parts, "repeat")
	}
	return strings.Join(parts, " · ") + "\n| " + r.esc(t.Title)
}

func (r Renderer) taskList(b *strings.Builder, tasks []task.Task, withDate bool) {
	for _, t := range tasks {
		b.WriteString(r.Task(t, withDate))
		b.WriteString("\n")
	}
}

// Daily is the scheduled notification body: date header, an Overdue section
// when non-empty, then Today.
func (r Renderer) Daily(now time.Time, overdue, today []task.Task) string {
	var b strings.Builder
	b.WriteString(r.bold(now.Format("2006.01.02")) + " | " + now.Format("15:04"))
	b.WriteString("\n\n")

	if len(overdue) > 0 {
		b.WriteString(r.bold("Overdue") + fmt.Sprintf(" (%d)\n", len(overdue)))
		r.taskList(&b, overdue, true)
		b.WriteString("\n")
	}

	b.WriteString(r.bold("Today"))
	if len(today) == 0 {
		b.WriteString("\nnone")
	} else {
		b.WriteString(fmt.Sprintf(" (%d)\n", len(today)))
		r.taskList(&b, today, false)
	}
	return truncate(b.String())
}

// Today is the on-demand /today reply: same shape as Daily.
func (r Renderer) Today(now time.Time, overdue, today []task.Task) string {
	return r.Daily(now, overdue, today)
}

// Week renders the Monday–Sunday view, one header per day in order, with a
// blank line between date groups. Empty days show a dash so the week always
// has seven rows.
func (r Renderer) Week(days []query.Day, now time.Time) string {
	var b strings.Builder
	if len(days) > 0 {
		first, last := days[0].Date, days[len(days)-1].Date
		b.WriteString(r.bold("This Week") + "\n")
		b.WriteString(first.Format("01/02") + " - " + last.Format("01/02"))
		b.WriteString("\n\n")
	}
	today := task.Midnight(now)
	for i, d := range days {
		if i > 0 {
			b.WriteString("\n")
		}
		header := d.Date.Format("01/02 Mon")
		if d.Date.Equal(today) {
			header += " (today)"
		}
		b.WriteString(r.bold(header) + "\n")
		if len(d.Tasks) == 0 {
			b.WriteString("-\n")
			continue
		}
		r.taskList(&b, d.Tasks, false)
	}
	return truncate(b.String())
}

// All renders every pending task: dated tasks first in ascending date
// order, then the undated bucket.
func (r Renderer) All(dated, undated []task.Task) string {
	total := len(dated) + len(undated)
	var b strings.Builder
	b.WriteString(r.bold("All Pending") + fmt.Sprintf("\ntotal %d\n\n", total))
	if total == 0 {
		b.WriteString("all done")
		return truncate(b.String())
	}
	if len(dated) > 0 {
		r.taskList(&b, dated, true)
	}
	if len(undated) > 0 {
		if len(dated) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.bold("(no date)") + "\n")
		r.taskList(&b, undated, false)
	}
	return truncate(b.String())
}

// Settings renders the current notification configuration.
func (r Renderer) Settings(times []string, timezone string, testMode bool) string {
	var b strings.Builder
	b.WriteString(r.bold("Settings") + "\n\n")
	b.WriteString(r.bold("Timezone:") + " " + r.esc(timezone) + "\n")
	mode := "OFF"
	if testMode {
		mode = "ON"
	}
	b.WriteString(r.bold("Test Mode:") + " " + mode + "\n\n")
	b.WriteString(r.bold("Notification Times:") + "\n")
	if len(times) == 0 {
		b.WriteString("(none)")
	} else {
		for _, t := range times {
			b.WriteString("  " + t + "\n")
		}
	}
	return truncate(b.String())
}

// Nothing is the explicit empty-state message used when a scan finds no
// tasks at all, instead of sending an empty reply.
func (r Renderer) Nothing() string {
	return "nothing to show (no tasks found)"
}

func truncate(s string) string {
	s = strings.TrimRight(s, "\n")
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	suffix := "\n… (truncated)"
	limit := maxChars - len([]rune(suffix))
	return string(runes[:limit]) + suffix
}
