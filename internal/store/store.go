// Package store holds the timeline currently shown by the terminal UI.
// It keeps the last built report and answers filtered views of it, so
// the UI never re-runs inference to change what is visible.
package store

import (
	"errors"
	"strconv"
	"strings"

	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/report"
)

var (
	// ErrNoReport indicates no report has been loaded into the store.
	ErrNoReport = errors.New("no report loaded")
	// ErrEntryNotFound indicates the requested timeline entry does not exist.
	ErrEntryNotFound = errors.New("timeline entry not found")
)

// StateFilter restricts which lifecycle states are visible.
type StateFilter int

const (
	FilterAll StateFilter = iota
	FilterOpen
	FilterClosed
)

// Next cycles all -> open -> closed -> all.
func (f StateFilter) Next() StateFilter {
	return (f + 1) % 3
}

func (f StateFilter) String() string {
	switch f {
	case FilterOpen:
		return "open"
	case FilterClosed:
		return "closed"
	default:
		return "all"
	}
}

func (f StateFilter) allows(state domain.IssueState) bool {
	switch f {
	case FilterOpen:
		return state == domain.IssueStateOpen
	case FilterClosed:
		return state == domain.IssueStateClosed
	default:
		return true
	}
}

// Store manages the in-memory timeline session.
type Store struct {
	report *report.Report

	// Entries indexed by ID for detail lookups
	byID map[string]int

	// Authenticated user's login, shown in the header
	viewerLogin string

	stateFilter StateFilter
	textFilter  string
}

// New creates a new empty Store instance.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// SetReport replaces the loaded report. Filters are kept.
func (s *Store) SetReport(r *report.Report) {
	s.report = r
	s.byID = make(map[string]int)
	if r == nil {
		return
	}
	for i, e := range r.Result.Timeline {
		s.byID[e.ID] = i
	}
}

// Report returns the loaded report, or ErrNoReport.
func (s *Store) Report() (*report.Report, error) {
	if s.report == nil {
		return nil, ErrNoReport
	}
	return s.report, nil
}

// SetViewerLogin sets the current authenticated user's login.
func (s *Store) SetViewerLogin(login string) {
	s.viewerLogin = login
}

// ViewerLogin returns the current authenticated user's login.
func (s *Store) ViewerLogin() string {
	return s.viewerLogin
}

// SetStateFilter sets the lifecycle filter.
func (s *Store) SetStateFilter(f StateFilter) {
	s.stateFilter = f
}

// StateFilter returns the lifecycle filter.
func (s *Store) StateFilter() StateFilter {
	return s.stateFilter
}

// SetTextFilter sets a case-insensitive substring filter over "#number title".
func (s *Store) SetTextFilter(q string) {
	s.textFilter = strings.ToLower(strings.TrimSpace(q))
}

// TextFilter returns the normalized text filter.
func (s *Store) TextFilter() string {
	return s.textFilter
}

func (s *Store) matches(number, title string) bool {
	if s.textFilter == "" {
		return true
	}
	return strings.Contains(strings.ToLower("#"+number+" "+title), s.textFilter)
}

// Entries returns the visible timeline entries in timeline order.
// The returned slice is a copy.
func (s *Store) Entries() []domain.TimelineEntry {
	if s.report == nil {
		return []domain.TimelineEntry{}
	}
	out := make([]domain.TimelineEntry, 0, len(s.report.Result.Timeline))
	for _, e := range s.report.Result.Timeline {
		if s.stateFilter.allows(e.Style) && s.matches(e.ID, e.Title) {
			out = append(out, e)
		}
	}
	return out
}

// Unstarted returns the visible unstarted issues in input order.
// Unstarted issues are always open, so the closed filter hides all of them.
func (s *Store) Unstarted() []domain.Issue {
	if s.report == nil {
		return []domain.Issue{}
	}
	out := make([]domain.Issue, 0, len(s.report.Result.Unstarted))
	for _, i := range s.report.Result.Unstarted {
		if s.stateFilter.allows(i.State) && s.matches(strconv.Itoa(i.Number), i.Title) {
			out = append(out, i)
		}
	}
	return out
}

// Entry returns the timeline entry with the given ID, ignoring filters.
func (s *Store) Entry(id string) (domain.TimelineEntry, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.TimelineEntry{}, ErrEntryNotFound
	}
	return s.report.Result.Timeline[i], nil
}

// Counts returns the number of open and closed timeline entries, ignoring filters.
func (s *Store) Counts() (open, closed int) {
	if s.report == nil {
		return 0, 0
	}
	for _, e := range s.report.Result.Timeline {
		if e.Style == domain.IssueStateClosed {
			closed++
		} else {
			open++
		}
	}
	return open, closed
}

// Clear drops the loaded report, preserving filters and viewer.
func (s *Store) Clear() {
	s.SetReport(nil)
}

// Reset completely resets the store to initial state.
func (s *Store) Reset() {
	s.viewerLogin = ""
	s.stateFilter = FilterAll
	s.textFilter = ""
	s.Clear()
}
