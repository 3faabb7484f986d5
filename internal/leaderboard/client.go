// Package leaderboard provides a client for the remote weekly-challenge
// score board.
//
// Submission is optional and best-effort from the caller's point of view: a
// failed submission is reported as an error but never rolls back local
// reward state. Transient upstream failures (rate limits, 5xx) are retried
// with exponential backoff before the error surfaces.
package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Config holds configuration for the leaderboard client.
type Config struct {
	// BaseURL is the leaderboard service root, e.g. "https://boards.example.com".
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// MaxRetries is the maximum number of retry attempts for retryable
	// errors. Defaults to 3 if zero.
	MaxRetries int

	// BaseRetryDelay is the initial delay before the first retry.
	// Defaults to 500ms if zero.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff delay. Defaults to 5s.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with a 15s timeout.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header. Optional.
	UserAgent string
}

// Client submits challenge scores to the remote board.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a leaderboard client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 500 * time.Millisecond
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 5 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Submission is the payload posted for a completed challenge.
type Submission struct {
	ChallengeID string  `json:"challengeId"`
	Week        int     `json:"week"`
	PlayerID    string  `json:"playerId"`
	Score       int     `json:"score"`
	Duration    float64 `json:"duration"`
	Hash        string  `json:"hash"`
}

// SubmitResult is the board's acknowledgement.
type SubmitResult struct {
	Success bool `json:"success"`
	Rank    int  `json:"rank"`
}

// SubmitScore posts a submission, stamping its integrity hash, and returns
// the acknowledged rank. Retryable upstream failures are retried with capped
// exponential backoff; the final error is an *APIError when the server
// answered at all.
func (c *Client) SubmitScore(ctx context.Context, sub Submission) (*SubmitResult, error) {
	if c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("leaderboard: base URL not configured")
	}
	sub.Hash = SubmissionHash(sub)

	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: marshal submission: %w", err)
	}

	backoff := retry.NewExponential(c.cfg.BaseRetryDelay)
	backoff = retry.WithCappedDuration(c.cfg.MaxRetryDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(c.cfg.MaxRetries), backoff)

	var result SubmitResult
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.BaseURL+"/api/v1/challenge-scores", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
		if c.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.cfg.UserAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// Network errors are worth retrying.
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			apiErr := parseAPIError(resp)
			if apiErr.Retryable() {
				return retry.RetryableError(apiErr)
			}
			return apiErr
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("leaderboard: decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}
