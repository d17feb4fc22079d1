package task

import (
	"regexp"
	"strings"
	"time"
)

var (
	checkboxRe = regexp.MustCompile(`^\s*[-*]\s*\[([ xX])\]\s*(.+)$`)

	// Bracketed key-value fields in the Obsidian Tasks dialect.
	dueRe       = regexp.MustCompile(`\[due::\s*([^\]]*)\]`)
	scheduledRe = regexp.MustCompile(`\[scheduled::\s*([^\]]*)\]`)
	startRe     = regexp.MustCompile(`\[start::\s*([^\]]*)\]`)
	recurRe     = regexp.MustCompile(`\[(?:recurs|repeat)::\s*([^\]]*)\]`)

	// Fields we strip from the title but never act on.
	inertFieldRe = regexp.MustCompile(`\[(?:completion|created)::\s*[^\]]*\]`)

	// Tasks-plugin emoji recurrence, e.g. "🔁 every week".
	emojiRecurRe = regexp.MustCompile(`🔁\s*([^\[]*)`)

	// @[time]/[location] annotation: at least one bracket group must be
	// present, so a bare @word stays ordinary title text.
	annotationRe = regexp.MustCompile(`@\[([^\]]*)\](?:\s*/\[([^\]]*)\])?|@/\[([^\]]*)\]`)

	dateValueRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:\s+(\d{1,2}):(\d{2}))?$`)

	recurrenceRe = regexp.MustCompile(`^every(?:\s+(\d+))?\s+(day|week|month|year)s?$`)

	spacesRe = regexp.MustCompile(`\s+`)
)

// ParseLine turns one raw line into a Task. ok is false when the line is not
// a checkbox item at all. Extraction is best-effort: a malformed field value
// contributes nothing and its raw text stays in the title. ParseLine never
// fails on malformed input.
func ParseLine(line, source string) (Task, bool) {
	m := checkboxRe.FindStringSubmatch(line)
	if m == nil {
		return Task{}, false
	}

	t := Task{
		Completed: strings.EqualFold(m[1], "x"),
		Source:    source,
		Raw:       line,
	}
	rest := m[2]

	rest = extractDate(rest, dueRe, &t.Due)
	rest = extractDate(rest, scheduledRe, &t.Scheduled)
	rest = extractDate(rest, startRe, &t.Start)
	rest = extractRecurrence(rest, &t.Recurrence)
	rest = extractAnnotation(rest, &t)
	rest = inertFieldRe.ReplaceAllString(rest, "")

	t.Title = strings.TrimSpace(spacesRe.ReplaceAllString(rest, " "))
	if t.Title == "" {
		return Task{}, false
	}
	return t, true
}

func extractDate(text string, re *regexp.Regexp, dst **DateValue) string {
	return re.ReplaceAllStringFunc(text, func(tok string) string {
		if *dst != nil {
			return "" // repeated field: first valid one wins, rest are noise
		}
		val := re.FindStringSubmatch(tok)[1]
		d, ok := parseDateValue(val)
		if !ok {
			return tok // malformed value stays visible in the title
		}
		*dst = &d
		return ""
	})
}

func parseDateValue(s string) (DateValue, bool) {
	m := dateValueRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DateValue{}, false
	}
	d := DateValue{
		Year:  atoi(m[1]),
		Month: monthOf(atoi(m[2])),
		Day:   atoi(m[3]),
	}
	if d.Month == 0 || d.Day < 1 || d.Day > 31 {
		return DateValue{}, false
	}
	if m[4] != "" {
		h, min := atoi(m[4]), atoi(m[5])
		if h > 23 || min > 59 {
			return DateValue{}, false
		}
		d.HasTime = true
		d.Hour = h
		d.Minute = min
	}
	// time.Date normalizes overflow (Feb 31 becomes Mar 3); a date that
	// does not survive the round trip never existed on the calendar.
	if norm := d.At(time.UTC); norm.Year() != d.Year || norm.Month() != d.Month || norm.Day() != d.Day {
		return DateValue{}, false
	}
	return d, true
}

func extractRecurrence(text string, dst **Recurrence) string {
	text = recurRe.ReplaceAllStringFunc(text, func(tok string) string {
		val := recurRe.FindStringSubmatch(tok)[1]
		if r, ok := ParseRecurrence(val); ok && *dst == nil {
			*dst = &r
		}
		// An unrecognized rule means the task is simply non-recurring;
		// the plugin syntax itself is still recognized markup.
		return ""
	})
	return emojiRecurRe.ReplaceAllStringFunc(text, func(tok string) string {
		val := emojiRecurRe.FindStringSubmatch(tok)[1]
		if r, ok := ParseRecurrence(val); ok && *dst == nil {
			*dst = &r
		}
		return ""
	})
}

// ParseRecurrence parses the closed "every [N] day|week|month|year[s]"
// grammar. Unknown units are a skippable parse error: ok is false and the
// task stays non-recurring.
func ParseRecurrence(s string) (Recurrence, bool) {
	m := recurrenceRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Recurrence{}, false
	}
	every := 1
	if m[1] != "" {
		every = atoi(m[1])
		if every < 1 {
			return Recurrence{}, false
		}
	}
	return Recurrence{Every: every, Unit: RecurUnit(m[2])}, true
}

func extractAnnotation(text string, t *Task) string {
	return annotationRe.ReplaceAllStringFunc(text, func(tok string) string {
		if t.Times != nil || t.Location != "" {
			return tok
		}
		m := annotationRe.FindStringSubmatch(tok)
		timePart, loc := m[1], m[2]
		if m[3] != "" { // the @/[location] shape
			loc = m[3]
		}
		times, ok := parseTimeRange(timePart)
		if !ok {
			return tok // bad time text: leave the whole annotation alone
		}
		t.Times = times
		t.Location = strings.TrimSpace(loc)
		return ""
	})
}

// parseTimeRange handles "", "HH:MM" and "HH:MM-HH:MM". An empty bracket is
// valid and yields no time range.
func parseTimeRange(s string) (*TimeRange, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	from, to, hasEnd := s, "", false
	if i := strings.Index(s, "-"); i >= 0 {
		from, to, hasEnd = s[:i], s[i+1:], true
	}
	start, ok := ParseTimeOfDay(from)
	if !ok {
		return nil, false
	}
	tr := &TimeRange{Start: &start}
	if hasEnd {
		end, ok := ParseTimeOfDay(to)
		if !ok {
			return nil, false
		}
		tr.End = &end
	}
	return tr, true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func monthOf(n int) time.Month {
	if n < 1 || n > 12 {
		return 0
	}
	return time.Month(n)
}
