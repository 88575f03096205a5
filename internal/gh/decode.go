package gh

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/h0rv/ghgantt/internal/domain"
)

// RecordKind names the payload a Rejection came from.
type RecordKind string

const (
	RecordIssue RecordKind = "issue"
	RecordEvent RecordKind = "event"
)

// Rejection is a record quarantined at the API boundary because it failed validation.
type Rejection struct {
	Kind   RecordKind
	Issue  int // Issue number, 0 if unknown
	Index  int // Position of the record in the collected sequence
	Reason string
}

// wireIssue is the REST shape of an issue list element.
type wireIssue struct {
	Number      *int             `json:"number"`
	Title       *string          `json:"title"`
	HTMLURL     string           `json:"html_url"`
	State       string           `json:"state"`
	CreatedAt   *time.Time       `json:"created_at"`
	ClosedAt    *time.Time       `json:"closed_at"`
	PullRequest *json.RawMessage `json:"pull_request"`
	User        *struct {
		Login string `json:"login"`
	} `json:"user"`
}

// wireEvent is the REST shape of an issue event.
type wireEvent struct {
	ID        int64      `json:"id"`
	Event     string     `json:"event"`
	CreatedAt *time.Time `json:"created_at"`
	Actor     *struct {
		Login string `json:"login"`
	} `json:"actor"`
	Label *struct {
		Name string `json:"name"`
	} `json:"label"`
	ProjectCard *struct {
		ColumnName string `json:"column_name"`
	} `json:"project_card"`
}

var errPullRequest = errors.New("pull request")

// DecodeIssues converts raw issue records into domain issues.
// Pull requests are dropped silently; malformed records are returned as rejections.
func DecodeIssues(records []json.RawMessage) ([]domain.Issue, []Rejection) {
	issues := make([]domain.Issue, 0, len(records))
	var rejected []Rejection

	for idx, raw := range records {
		issue, err := decodeIssue(raw)
		if errors.Is(err, errPullRequest) {
			continue
		}
		if err != nil {
			rejected = append(rejected, Rejection{
				Kind:   RecordIssue,
				Issue:  issue.Number,
				Index:  idx,
				Reason: err.Error(),
			})
			continue
		}
		issues = append(issues, issue)
	}

	return issues, rejected
}

func decodeIssue(raw json.RawMessage) (domain.Issue, error) {
	var w wireIssue
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Issue{}, fmt.Errorf("malformed issue: %w", err)
	}

	var issue domain.Issue
	if w.Number == nil {
		return issue, errors.New("missing number")
	}
	issue.Number = *w.Number

	if w.PullRequest != nil && string(*w.PullRequest) != "null" {
		return issue, errPullRequest
	}
	if w.Title == nil {
		return issue, errors.New("missing title")
	}
	if w.CreatedAt == nil {
		return issue, errors.New("missing created_at")
	}

	state := domain.IssueState(w.State)
	if !state.Valid() {
		return issue, fmt.Errorf("unknown state %q", w.State)
	}

	issue.Title = *w.Title
	issue.URL = w.HTMLURL
	issue.State = state
	issue.CreatedAt = *w.CreatedAt
	issue.ClosedAt = w.ClosedAt
	if w.User != nil {
		issue.Author = w.User.Login
	}

	return issue, nil
}

// DecodeEvents converts raw event records for one issue into domain events.
// Events of kinds other than labeled and moved_columns_in_project are kept
// (they are inert for inference) as long as they carry a kind and a timestamp.
func DecodeEvents(issueNumber int, records []json.RawMessage) ([]domain.Event, []Rejection) {
	events := make([]domain.Event, 0, len(records))
	var rejected []Rejection

	for idx, raw := range records {
		ev, err := decodeEvent(raw)
		if err != nil {
			rejected = append(rejected, Rejection{
				Kind:   RecordEvent,
				Issue:  issueNumber,
				Index:  idx,
				Reason: err.Error(),
			})
			continue
		}
		ev.Issue = issueNumber
		events = append(events, ev)
	}

	return events, rejected
}

func decodeEvent(raw json.RawMessage) (domain.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Event{}, fmt.Errorf("malformed event: %w", err)
	}

	if w.Event == "" {
		return domain.Event{}, errors.New("missing event kind")
	}
	if w.CreatedAt == nil {
		return domain.Event{}, errors.New("missing created_at")
	}

	ev := domain.Event{
		ID:        w.ID,
		Kind:      domain.EventKind(w.Event),
		CreatedAt: *w.CreatedAt,
	}
	if w.Actor != nil {
		ev.Actor = w.Actor.Login
	}

	switch ev.Kind {
	case domain.EventLabeled:
		if w.Label == nil {
			return domain.Event{}, errors.New("labeled event without label")
		}
		ev.Label = w.Label.Name
	case domain.EventMovedColumns:
		if w.ProjectCard == nil {
			return domain.Event{}, errors.New("moved_columns_in_project event without project_card")
		}
		ev.Column = w.ProjectCard.ColumnName
	}

	return ev, nil
}
