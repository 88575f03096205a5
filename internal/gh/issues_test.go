package gh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRepo = domain.Repo{Owner: "octo", Name: "hello"}

// fakeGitHub serves an issue list split over two pages and per-issue events.
type fakeGitHub struct {
	srv          *httptest.Server
	eventsFailOn int // issue number whose events endpoint returns 500
	eventCalls   int32
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{}
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/octo/hello/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[
				{"number": 3, "title": "Third", "state": "open", "created_at": "2024-01-03T00:00:00Z"},
				{"number": 4, "title": "PR", "state": "open", "created_at": "2024-01-04T00:00:00Z", "pull_request": {}}
			]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/hello/issues?state=all&per_page=100&page=2>; rel="next"`, f.srv.URL))
		fmt.Fprint(w, `[
			{"number": 1, "title": "First", "state": "closed", "created_at": "2024-01-01T00:00:00Z", "closed_at": "2024-01-05T00:00:00Z"},
			{"number": 2, "title": "Second", "state": "open", "created_at": "2024-01-02T00:00:00Z"}
		]`)
	})

	mux.HandleFunc("/repos/octo/hello/issues/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.eventCalls, 1)
		rest := strings.TrimPrefix(r.URL.Path, "/repos/octo/hello/issues/")
		var number int
		if _, err := fmt.Sscanf(rest, "%d/events", &number); err != nil {
			http.NotFound(w, r)
			return
		}
		if number == f.eventsFailOn {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "boom"}`)
			return
		}
		switch number {
		case 2:
			fmt.Fprint(w, `[
				{"id": 1, "event": "labeled", "created_at": "2024-01-06T00:00:00Z", "label": {"name": "WIP"}},
				{"id": 2, "event": "labeled", "created_at": "2024-01-07T00:00:00Z"}
			]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func TestFetchRepository(t *testing.T) {
	f := newFakeGitHub(t)
	c := New(WithBaseURL(f.srv.URL))

	snap, err := c.FetchRepository(context.Background(), testRepo, testToken)
	require.NoError(t, err)

	require.Len(t, snap.Issues, 3, "pull request filtered out")
	assert.Equal(t, 1, snap.Issues[0].Number)
	assert.Equal(t, 2, snap.Issues[1].Number)
	assert.Equal(t, 3, snap.Issues[2].Number)

	// One events retrieval per issue, none for the pull request
	assert.Equal(t, int32(3), atomic.LoadInt32(&f.eventCalls))
	assert.Len(t, snap.Events, 3)
	require.Len(t, snap.Events[2], 1)
	assert.Equal(t, "WIP", snap.Events[2][0].Label)
	assert.Equal(t, 2, snap.Events[2][0].Issue)
	assert.Empty(t, snap.Events[1])

	require.Len(t, snap.Rejected, 1)
	assert.Equal(t, RecordEvent, snap.Rejected[0].Kind)
	assert.Equal(t, 2, snap.Rejected[0].Issue)
}

func TestFetchRepository_BoundedConcurrency(t *testing.T) {
	f := newFakeGitHub(t)
	c := New(WithBaseURL(f.srv.URL), WithConcurrency(1))

	snap, err := c.FetchRepository(context.Background(), testRepo, testToken)
	require.NoError(t, err)
	assert.Len(t, snap.Events, 3)
}

func TestFetchRepository_AllOrNothing(t *testing.T) {
	f := newFakeGitHub(t)
	f.eventsFailOn = 3
	c := New(WithBaseURL(f.srv.URL))

	snap, err := c.FetchRepository(context.Background(), testRepo, testToken)

	assert.Nil(t, snap)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
	assert.Contains(t, err.Error(), "issue #3")
}

func TestFetchRepository_Unauthenticated(t *testing.T) {
	f := newFakeGitHub(t)
	c := New(WithBaseURL(f.srv.URL))

	_, err := c.FetchRepository(context.Background(), testRepo, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.eventCalls))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/repos/octo/hello/issues?state=all&per_page=100", IssuesPath(testRepo))
	assert.Equal(t, "/repos/octo/hello/issues/42/events?per_page=100", EventsPath(testRepo, 42))
}
