package leaderboard

import (
	"fmt"
	"net/http"
)

// APIError is a structured error returned when the leaderboard service
// answered with a non-success status.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("leaderboard: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("leaderboard: unexpected status %d", e.Status)
}

// Retryable reports whether the failure is transient: rate limiting or a
// server-side error. Client errors (bad payload, auth) are permanent.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
