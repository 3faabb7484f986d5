package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		BaseRetryDelay: time.Millisecond,
		MaxRetryDelay:  5 * time.Millisecond,
	})
}

func testSubmission() Submission {
	return Submission{
		ChallengeID: "weekly-challenge-3",
		Week:        3,
		PlayerID:    "player-1",
		Score:       2800,
		Duration:    95.25,
	}
}

func TestSubmitScoreSuccess(t *testing.T) {
	var got Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/challenge-scores" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		json.NewEncoder(w).Encode(SubmitResult{Success: true, Rank: 17})
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).SubmitScore(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("SubmitScore error: %v", err)
	}
	if !result.Success || result.Rank != 17 {
		t.Errorf("result = %+v, want success with rank 17", result)
	}
	if want := SubmissionHash(testSubmission()); got.Hash != want {
		t.Errorf("submitted hash %q, want %q", got.Hash, want)
	}
}

func TestSubmitScoreRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(SubmitResult{Success: true, Rank: 5})
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).SubmitScore(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("SubmitScore error after retries: %v", err)
	}
	if result.Rank != 5 {
		t.Errorf("rank = %d, want 5", result.Rank)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
}

func TestSubmitScoreDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"code": "INVALID_HASH", "message": "hash mismatch"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SubmitScore(context.Background(), testSubmission())
	if err == nil {
		t.Fatal("SubmitScore succeeded on a 400")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "INVALID_HASH" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want exactly 1", n)
	}
}

func TestSubmitScoreExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SubmitScore(context.Background(), testSubmission())
	if err == nil {
		t.Fatal("SubmitScore succeeded while the server was down")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Errorf("error = %v, want *APIError with status 503", err)
	}
}

func TestSubmitScoreWithoutBaseURL(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.SubmitScore(context.Background(), testSubmission()); err == nil {
		t.Fatal("SubmitScore accepted an empty base URL")
	}
}

func TestAPIErrorRetryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		e := &APIError{Status: tt.status}
		if got := e.Retryable(); got != tt.want {
			t.Errorf("Retryable(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestSubmissionHashStable(t *testing.T) {
	a := SubmissionHash(testSubmission())
	b := SubmissionHash(testSubmission())
	if a != b {
		t.Error("hash is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}

	tampered := testSubmission()
	tampered.Score++
	if SubmissionHash(tampered) == a {
		t.Error("score change did not change the hash")
	}

	// The hash field itself does not feed the hash.
	stamped := testSubmission()
	stamped.Hash = a
	if SubmissionHash(stamped) != a {
		t.Error("hash field leaked into the canonical string")
	}
}
