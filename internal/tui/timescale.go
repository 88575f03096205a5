package tui

import (
	"strings"
	"time"

	"github.com/h0rv/ghgantt/internal/domain"
)

const (
	barGlyph   = "█"
	todayGlyph = "│"
	tickGlyph  = "╵"
)

// timeScale maps calendar days onto a fixed number of terminal columns.
type timeScale struct {
	first domain.Date
	last  domain.Date
	days  int
	width int
	today domain.Date
}

// newTimeScale spans every start and end date in entries.
// entries must not be empty.
func newTimeScale(entries []domain.TimelineEntry, today domain.Date, width int) timeScale {
	first, last := entries[0].Start, entries[0].End
	for _, e := range entries {
		for _, d := range []domain.Date{e.Start, e.End} {
			if d.Before(first) {
				first = d
			}
			if last.Before(d) {
				last = d
			}
		}
	}
	return timeScale{
		first: first,
		last:  last,
		days:  first.DaysUntil(last) + 1,
		width: width,
		today: today,
	}
}

// column returns the column of d, clamped to the chart.
func (s timeScale) column(d domain.Date) int {
	c := s.first.DaysUntil(d) * s.width / s.days
	return min(max(c, 0), s.width-1)
}

// bar renders e as a run of blocks, with the today marker in the gaps.
func (s timeScale) bar(e domain.TimelineEntry) string {
	from, to := s.column(e.Start), s.column(e.End)
	if to < from {
		to = from
	}

	style := openBarStyle
	if e.Style == domain.IssueStateClosed {
		style = closedBarStyle
	}

	return s.gap(0, from) + style.Render(strings.Repeat(barGlyph, to-from+1)) + s.gap(to+1, s.width)
}

// gap renders blank columns [start, end), marking today if it falls inside.
func (s timeScale) gap(start, end int) string {
	if start >= end {
		return ""
	}
	todayCol := -1
	if !s.today.Before(s.first) && !s.last.Before(s.today) {
		todayCol = s.column(s.today)
	}
	if todayCol < start || todayCol >= end {
		return strings.Repeat(" ", end-start)
	}
	return strings.Repeat(" ", todayCol-start) + todayStyle.Render(todayGlyph) + strings.Repeat(" ", end-todayCol-1)
}

// axis labels each Monday with its month and day, skipping labels that would
// overlap the previous one. Ranges without a Monday show the first and last day.
func (s timeScale) axis() string {
	row := []rune(strings.Repeat(" ", s.width))
	next, labeled := 0, 0
	for d := 0; d < s.days; d++ {
		date := s.first.AddDays(d)
		if date.Time().Weekday() != time.Monday {
			continue
		}
		col := s.column(date)
		if col < next {
			continue
		}
		label := []rune(date.String()[5:])
		if col+len(label) > s.width {
			row[col] = []rune(tickGlyph)[0]
			next = col + 1
			continue
		}
		copy(row[col:], label)
		next = col + len(label) + 1
		labeled++
	}
	if labeled > 0 {
		return dimStyle.Render(string(row))
	}

	left, right := s.first.String(), s.last.String()
	if s.width < len(left)+len(right)+1 {
		return dimStyle.Render(left)
	}
	return dimStyle.Render(left + strings.Repeat(" ", s.width-len(left)-len(right)) + right)
}
