// Package gh talks to the GitHub API. The REST side exhaustively collects
// cursor-paginated list endpoints; the GraphQL side answers small lookups.
package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/rs/zerolog"
)

const (
	// DefaultAPIURL is the GitHub REST API root.
	DefaultAPIURL = "https://api.github.com"
	// DefaultAPIVersion is sent as X-GitHub-Api-Version.
	DefaultAPIVersion = "2022-11-28"

	defaultTimeout = 30 * time.Second
)

// Client is a GitHub REST client that follows Link-header pagination.
// It holds no credential; every call receives one explicitly.
type Client struct {
	baseURL     string
	apiVersion  string
	http        *http.Client
	log         zerolog.Logger
	concurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the REST API root (used for GitHub Enterprise and tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIVersion overrides the X-GitHub-Api-Version header.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		c.apiVersion = v
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithConcurrency bounds concurrent per-issue event retrievals.
// Zero or negative means one goroutine per issue.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

// New creates a REST client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultAPIURL,
		apiVersion: DefaultAPIVersion,
		http:       &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect retrieves every record of a paginated list endpoint.
//
// path is relative to the API root (absolute URLs are used as-is). Pages are
// fetched one at a time, following the "next" Link relation until it is absent.
// A list body contributes all its elements; any other body contributes itself.
// Any failed page aborts the whole collection and no partial result is returned.
func (c *Client) Collect(ctx context.Context, path string, cred auth.Credential) ([]json.RawMessage, error) {
	if cred.IsZero() {
		return nil, ErrUnauthenticated
	}

	var records []json.RawMessage
	target := c.resolve(path)
	for page := 1; target != ""; page++ {
		body, next, err := c.fetchPage(ctx, target, cred)
		if err != nil {
			return nil, err
		}

		decoded, err := splitRecords(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode page %d of %s: %w", page, path, err)
		}
		records = append(records, decoded...)

		c.log.Debug().
			Str("path", path).
			Int("page", page).
			Int("records", len(decoded)).
			Bool("has_next", next != "").
			Msg("collected page")

		target = next
	}

	return records, nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// fetchPage performs one request and returns the body and the next page URL.
func (c *Client) fetchPage(ctx context.Context, target string, cred auth.Credential) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token())
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", c.apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to request %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", newAPIError(resp, target, body)
	}

	next, _ := NextLink(resp.Header.Get("Link"))
	return body, next, nil
}

func newAPIError(resp *http.Response, target string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode:         resp.StatusCode,
		Message:            http.StatusText(resp.StatusCode),
		URL:                target,
		RateLimitRemaining: strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining")),
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	}

	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
			apiErr.RateLimitReset = time.Unix(sec, 0)
		}
	}

	return apiErr
}

// splitRecords flattens a JSON array body into its elements; any other JSON
// value is returned as a single record.
func splitRecords(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("invalid JSON body")
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}
