// Package report composes retrieval and inference: it fetches a repository's
// issues and event logs, then runs the timeline engine over the complete snapshot.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/h0rv/ghgantt/internal/timeline"
	"github.com/rs/zerolog"
)

// Fetcher retrieves the complete inference input for a repository.
type Fetcher interface {
	FetchRepository(ctx context.Context, repo domain.Repo, cred auth.Credential) (*gh.Snapshot, error)
}

// Report is a generated timeline for one repository.
type Report struct {
	Repo        domain.Repo
	GeneratedAt time.Time
	IssueCount  int
	Result      domain.Result
	Rejected    []gh.Rejection
}

// Empty reports whether the repository had no issues at all.
func (r *Report) Empty() bool {
	return r.IssueCount == 0
}

// Builder produces reports.
type Builder struct {
	fetcher Fetcher
	engine  *timeline.Engine
	now     func() time.Time
	log     zerolog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(fetcher Fetcher, engine *timeline.Engine, log zerolog.Logger) *Builder {
	return &Builder{
		fetcher: fetcher,
		engine:  engine,
		now:     time.Now,
		log:     log,
	}
}

// Build fetches repo with cred and infers its timeline.
// Retrieval failures are returned as-is; inference itself cannot fail.
func (b *Builder) Build(ctx context.Context, repo domain.Repo, cred auth.Credential) (*Report, error) {
	started := b.now()

	snap, err := b.fetcher.FetchRepository(ctx, repo, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", repo, err)
	}

	result := b.engine.Infer(snap.Issues, snap.Events)

	b.log.Info().
		Str("repo", repo.String()).
		Int("issues", len(snap.Issues)).
		Int("timeline", len(result.Timeline)).
		Int("unstarted", len(result.Unstarted)).
		Dur("took", b.now().Sub(started)).
		Msg("built timeline")

	return &Report{
		Repo:        repo,
		GeneratedAt: b.now(),
		IssueCount:  len(snap.Issues),
		Result:      result,
		Rejected:    snap.Rejected,
	}, nil
}
