// Package timeline infers when work on an issue started and turns a batch of
// issues plus their event logs into Gantt timeline entries.
//
// The engine performs no I/O. Missing event data is treated as "no evidence of
// starting", never as an error.
package timeline

import (
	"slices"
	"strconv"
	"time"

	"github.com/h0rv/ghgantt/internal/domain"
)

// Engine classifies issues as started or unstarted.
type Engine struct {
	statuses Vocabulary
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithStatuses replaces the default status vocabulary.
func WithStatuses(v Vocabulary) Option {
	return func(e *Engine) {
		e.statuses = v
	}
}

// WithClock sets the clock used to compute today's date for open issues.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine using DefaultStatuses and the wall clock.
func New(opts ...Option) *Engine {
	e := &Engine{
		statuses: DefaultVocabulary(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Qualifies reports whether ev signals that work started: a label attached, or
// a project card moved into a column, whose name is in the vocabulary.
func (e *Engine) Qualifies(ev domain.Event) bool {
	switch ev.Kind {
	case domain.EventLabeled:
		return e.statuses.Contains(ev.Label)
	case domain.EventMovedColumns:
		return e.statuses.Contains(ev.Column)
	default:
		return false
	}
}

// FindStart returns the inferred start date of issue.
//
// The first qualifying event in creation order wins. Without one, a closed
// issue starts on its creation date and an open issue has no start.
// The events slice is not modified.
func (e *Engine) FindStart(issue domain.Issue, events []domain.Event) (domain.Date, bool) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b domain.Event) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	for _, ev := range sorted {
		if e.Qualifies(ev) {
			return domain.DateOf(ev.CreatedAt), true
		}
	}

	if issue.IsClosed() {
		return domain.DateOf(issue.CreatedAt), true
	}
	return domain.Date{}, false
}

// Infer builds the timeline for issues. eventsByIssue is keyed by issue number;
// an absent key means the issue has no events.
//
// Timeline entries are sorted by start date with ties kept in input order.
// Unstarted issues keep their input order.
func (e *Engine) Infer(issues []domain.Issue, eventsByIssue map[int][]domain.Event) domain.Result {
	today := domain.Today(e.now())
	result := domain.Result{
		Timeline:  make([]domain.TimelineEntry, 0, len(issues)),
		Unstarted: make([]domain.Issue, 0),
		Today:     today,
	}

	for _, issue := range issues {
		start, ok := e.FindStart(issue, eventsByIssue[issue.Number])
		if !ok {
			result.Unstarted = append(result.Unstarted, issue)
			continue
		}
		result.Timeline = append(result.Timeline, newEntry(issue, start, today))
	}

	slices.SortStableFunc(result.Timeline, func(a, b domain.TimelineEntry) int {
		return a.Start.Compare(b.Start)
	})

	return result
}

func newEntry(issue domain.Issue, start, today domain.Date) domain.TimelineEntry {
	end := today
	if issue.ClosedAt != nil {
		end = domain.DateOf(*issue.ClosedAt)
	}

	progress := domain.ProgressOpen
	if issue.IsClosed() {
		progress = domain.ProgressClosed
	}

	return domain.TimelineEntry{
		ID:           strconv.Itoa(issue.Number),
		Title:        issue.Title,
		URL:          issue.URL,
		Start:        start,
		End:          end,
		Progress:     progress,
		Style:        issue.State,
		Dependencies: []string{},
	}
}
