package gh

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnauthenticated indicates a retrieval was attempted without a credential.
var ErrUnauthenticated = errors.New("not authenticated, please log in again")

// APIError is a non-success response from the GitHub REST API.
type APIError struct {
	StatusCode     int
	Message        string    // Server-provided message, or the status phrase
	URL            string    // Request URL that failed
	RateLimitReset time.Time // Zero unless the response carried X-RateLimit-Reset
	// Raw X-RateLimit-Remaining value; empty when the header was absent
	RateLimitRemaining string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error: %d %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the failure was caused by an exhausted rate limit.
// A 403 counts only when the remaining quota is zero.
func (e *APIError) RateLimited() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode == http.StatusForbidden && e.RateLimitRemaining == "0"
}
