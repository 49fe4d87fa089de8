package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/cache"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/httputil"
)

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
		sentinel  error
	}{
		{http.StatusTooManyRequests, true, ErrRateLimited},
		{http.StatusInternalServerError, true, ErrNetwork},
		{http.StatusBadGateway, true, ErrNetwork},
		{http.StatusForbidden, false, ErrNetwork},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		c := NewHTTPClient(cache.NewNullCache(), time.Hour, nil)
		var v struct{}
		err := c.GetJSON(context.Background(), "key", server.URL, &v)
		server.Close()

		if err == nil {
			t.Errorf("status %d: expected error", tt.status)
			continue
		}
		if !errors.Is(err, tt.sentinel) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.sentinel, err)
		}
		if got := httputil.IsRetryable(err); got != tt.retryable {
			t.Errorf("status %d: retryable=%v, want %v", tt.status, got, tt.retryable)
		}
	}
}

func TestHTTPClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := NewHTTPClient(cache.NewNullCache(), time.Hour, nil)
	var v struct{}
	err := c.GetJSON(context.Background(), "key", server.URL, &v)
	if !IsNotFound(err) {
		t.Fatalf("expected not-found signal, got %v", err)
	}
	if httputil.IsRetryable(err) {
		t.Error("not-found must not be retryable")
	}
}

func TestHTTPClient_HonorsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewHTTPClient(cache.NewNullCache(), time.Hour, nil)
	var v struct{}
	err := c.GetJSON(ctx, "key", server.URL, &v)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected timeout mapped to ErrNetwork, got %v", err)
	}
	if !httputil.IsRetryable(err) {
		t.Error("timeout should be retryable")
	}
}

// flakyClient fails with a retryable error a fixed number of times before
// succeeding.
type flakyClient struct {
	failures int
	calls    int
}

func (c *flakyClient) Name() string { return "flaky" }

func (c *flakyClient) Lookup(ctx context.Context, name string) (*Record, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, httputil.Retryable(ErrNetwork)
	}
	return &Record{Exists: true, LatestVersion: "1.0.0"}, nil
}

func TestWithRetry_RecoversFromTransientFailures(t *testing.T) {
	inner := &flakyClient{failures: 2}
	c := WithRetry(inner, httputil.Policy{MaxRetries: 2, Delay: time.Millisecond})

	rec, err := c.Lookup(context.Background(), "requests")
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if !rec.Exists {
		t.Error("expected record from final attempt")
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestWithRetry_Exhaustion(t *testing.T) {
	inner := &flakyClient{failures: 10}
	c := WithRetry(inner, httputil.Policy{MaxRetries: 2, Delay: time.Millisecond})

	_, err := c.Lookup(context.Background(), "requests")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork after exhaustion, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", inner.calls)
	}
}

// invalidNameClient always rejects the name before I/O.
type invalidNameClient struct{ calls int }

func (c *invalidNameClient) Name() string { return "strict" }

func (c *invalidNameClient) Lookup(ctx context.Context, name string) (*Record, error) {
	c.calls++
	return nil, &InvalidNameError{Name: name, Reason: "test"}
}

func TestWithRetry_DoesNotRetryInvalidNames(t *testing.T) {
	inner := &invalidNameClient{}
	c := WithRetry(inner, httputil.Policy{MaxRetries: 5, Delay: time.Millisecond})

	_, err := c.Lookup(context.Background(), "Bad Name")
	if !IsInvalidName(err) {
		t.Fatalf("expected InvalidNameError, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("invalid names must not be retried, got %d calls", inner.calls)
	}
}
