// Package domain defines the normalized types used across ghgantt.
// These types represent issues, their activity events and the derived timeline
// independent of the GitHub REST payload structure.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// IssueState is the lifecycle state of an issue.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// Valid reports whether s is a known lifecycle state.
func (s IssueState) Valid() bool {
	return s == IssueStateOpen || s == IssueStateClosed
}

// Issue is a repository issue (pull requests are excluded before reaching the engine).
type Issue struct {
	Number    int        // Issue number, unique within a repository
	Title     string     // Issue title
	URL       string     // HTML URL of the issue
	State     IssueState // open or closed
	Author    string     // Login of the issue creator, may be empty
	CreatedAt time.Time  // When the issue was filed
	ClosedAt  *time.Time // When the issue was closed, nil while open
}

// IsClosed reports whether the issue is in the closed state.
func (i Issue) IsClosed() bool {
	return i.State == IssueStateClosed
}

// EventKind tags an issue event. The vocabulary is open: only labeled and
// moved_columns_in_project carry meaning for timeline inference.
type EventKind string

const (
	EventLabeled      EventKind = "labeled"
	EventMovedColumns EventKind = "moved_columns_in_project"
)

// Event is a single entry in an issue's activity log.
type Event struct {
	ID        int64     // GitHub event ID
	Issue     int       // Number of the issue the event belongs to
	Kind      EventKind // Event tag, e.g. "labeled", "assigned"
	Actor     string    // Login of the user who triggered the event, may be empty
	CreatedAt time.Time // When the event happened
	Label     string    // Label name, set only for EventLabeled
	Column    string    // Destination column name, set only for EventMovedColumns
}

// TimelineEntry is one issue's inferred work period, ready for a Gantt renderer.
type TimelineEntry struct {
	ID       string     // Issue number rendered as text
	Title    string     // Issue title
	URL      string     // HTML URL of the issue
	Start    Date       // Inferred start date
	End      Date       // Closure date, or today for open issues
	Progress int        // 100 when closed, 0 otherwise
	Style    IssueState // Mirrors the issue's lifecycle state

	// Dependencies is always empty; dependency inference is not performed.
	Dependencies []string
}

// Result is the output of timeline inference.
type Result struct {
	Timeline  []TimelineEntry // Sorted ascending by start date
	Unstarted []Issue         // Open issues with no inferable start, in input order
	Today     Date            // Day used as the end of still-open entries
}

// Progress values for TimelineEntry.
const (
	ProgressOpen   = 0
	ProgressClosed = 100
)

// ErrInvalidRepo indicates a repository reference not in owner/name form.
var ErrInvalidRepo = errors.New("repository must be in the format \"owner/repository\"")

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo parses "owner/repository".
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("%w: %q", ErrInvalidRepo, s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// String returns "owner/name".
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}
