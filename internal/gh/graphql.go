package gh

import (
	"context"
	"fmt"

	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/machinebox/graphql"
)

// DefaultGraphQLURL is the GitHub GraphQL endpoint.
const DefaultGraphQLURL = "https://api.github.com/graphql"

// GraphQL answers small lookups (viewer, repository metadata) that the REST
// collector does not need pagination for.
type GraphQL struct {
	gql *graphql.Client
}

var _ auth.Verifier = (*GraphQL)(nil)

// NewGraphQL creates a GraphQL client for endpoint.
func NewGraphQL(endpoint string) *GraphQL {
	if endpoint == "" {
		endpoint = DefaultGraphQLURL
	}
	return &GraphQL{gql: graphql.NewClient(endpoint)}
}

// RepoInfo is repository metadata shown alongside the timeline.
type RepoInfo struct {
	NameWithOwner   string
	Description     string
	URL             string
	IsPrivate       bool
	OpenIssueCount  int
	TotalIssueCount int
}

// makeRequest executes a GraphQL request with authentication.
func (g *GraphQL) makeRequest(ctx context.Context, req *graphql.Request, cred auth.Credential, resp interface{}) error {
	if cred.IsZero() {
		return ErrUnauthenticated
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token())
	return g.gql.Run(ctx, req, resp)
}

// Viewer returns the login of the authenticated user.
func (g *GraphQL) Viewer(ctx context.Context, cred auth.Credential) (string, error) {
	req := graphql.NewRequest(`
		query {
			viewer {
				login
			}
		}
	`)

	var resp struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}

	if err := g.makeRequest(ctx, req, cred, &resp); err != nil {
		return "", fmt.Errorf("failed to get viewer: %w", err)
	}

	return resp.Viewer.Login, nil
}

// Repository fetches metadata for repo.
// Returns an error if the repository does not exist or is not visible.
func (g *GraphQL) Repository(ctx context.Context, repo domain.Repo, cred auth.Credential) (RepoInfo, error) {
	req := graphql.NewRequest(`
		query($owner: String!, $name: String!) {
			repository(owner: $owner, name: $name) {
				nameWithOwner
				description
				url
				isPrivate
				open: issues(states: OPEN) {
					totalCount
				}
				all: issues {
					totalCount
				}
			}
		}
	`)
	req.Var("owner", repo.Owner)
	req.Var("name", repo.Name)

	var resp struct {
		Repository *struct {
			NameWithOwner string `json:"nameWithOwner"`
			Description   string `json:"description"`
			URL           string `json:"url"`
			IsPrivate     bool   `json:"isPrivate"`
			Open          struct {
				TotalCount int `json:"totalCount"`
			} `json:"open"`
			All struct {
				TotalCount int `json:"totalCount"`
			} `json:"all"`
		} `json:"repository"`
	}

	if err := g.makeRequest(ctx, req, cred, &resp); err != nil {
		return RepoInfo{}, fmt.Errorf("failed to get repository: %w", err)
	}

	if resp.Repository == nil {
		return RepoInfo{}, fmt.Errorf("repository '%s' not found", repo)
	}

	return RepoInfo{
		NameWithOwner:   resp.Repository.NameWithOwner,
		Description:     resp.Repository.Description,
		URL:             resp.Repository.URL,
		IsPrivate:       resp.Repository.IsPrivate,
		OpenIssueCount:  resp.Repository.Open.TotalCount,
		TotalIssueCount: resp.Repository.All.TotalCount,
	}, nil
}
