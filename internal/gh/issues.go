package gh

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the complete, validated input for timeline inference.
type Snapshot struct {
	Repo     domain.Repo
	Issues   []domain.Issue         // Pull requests excluded, API order
	Events   map[int][]domain.Event // Issue number -> full event log
	Rejected []Rejection            // Records quarantined at decode time
}

// IssuesPath returns the issue list endpoint for repo (all states, 100 per page).
func IssuesPath(repo domain.Repo) string {
	return fmt.Sprintf("/repos/%s/%s/issues?state=all&per_page=100",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
}

// EventsPath returns the event endpoint for one issue (100 per page).
func EventsPath(repo domain.Repo, number int) string {
	return fmt.Sprintf("/repos/%s/%s/issues/%d/events?per_page=100",
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name), number)
}

// ListIssues collects every issue of repo, excluding pull requests.
func (c *Client) ListIssues(ctx context.Context, repo domain.Repo, cred auth.Credential) ([]domain.Issue, []Rejection, error) {
	records, err := c.Collect(ctx, IssuesPath(repo), cred)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list issues for %s: %w", repo, err)
	}
	issues, rejected := DecodeIssues(records)
	return issues, rejected, nil
}

// ListIssueEvents collects the full event log of one issue.
func (c *Client) ListIssueEvents(ctx context.Context, repo domain.Repo, number int, cred auth.Credential) ([]domain.Event, []Rejection, error) {
	records, err := c.Collect(ctx, EventsPath(repo, number), cred)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list events for issue #%d: %w", number, err)
	}
	events, rejected := DecodeEvents(number, records)
	return events, rejected, nil
}

// FetchRepository collects the issue list and then every issue's event log.
//
// Event logs are retrieved concurrently; each one is complete (all pages)
// before it is stored. The first failure cancels outstanding retrievals and is
// returned without any partial snapshot.
func (c *Client) FetchRepository(ctx context.Context, repo domain.Repo, cred auth.Credential) (*Snapshot, error) {
	if cred.IsZero() {
		return nil, ErrUnauthenticated
	}

	issues, rejected, err := c.ListIssues(ctx, repo, cred)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Repo:     repo,
		Issues:   issues,
		Events:   make(map[int][]domain.Event, len(issues)),
		Rejected: rejected,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for _, issue := range issues {
		number := issue.Number
		g.Go(func() error {
			events, bad, err := c.ListIssueEvents(gctx, repo, number, cred)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			snap.Events[number] = events
			snap.Rejected = append(snap.Rejected, bad...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(snap.Rejected, func(a, b Rejection) int {
		if a.Issue != b.Issue {
			return cmp.Compare(a.Issue, b.Issue)
		}
		if a.Kind != b.Kind {
			return cmp.Compare(a.Kind, b.Kind)
		}
		return cmp.Compare(a.Index, b.Index)
	})

	for _, r := range snap.Rejected {
		c.log.Warn().
			Str("repo", repo.String()).
			Str("kind", string(r.Kind)).
			Int("issue", r.Issue).
			Int("index", r.Index).
			Str("reason", r.Reason).
			Msg("quarantined malformed record")
	}

	c.log.Info().
		Str("repo", repo.String()).
		Int("issues", len(snap.Issues)).
		Int("rejected", len(snap.Rejected)).
		Msg("fetched repository")

	return snap, nil
}
