// Package registry defines the public-registry lookup abstraction used by
// the confusion checker.
//
// A [Client] answers one question: does a package name exist on a public
// registry, and with what metadata? "Not found" is a successful answer
// (a [Record] with Exists false), distinct from transport failures, which
// surface as errors wrapping [ErrNetwork] or [ErrRateLimited].
//
// Concrete clients live in the pypi and npm subpackages and share the HTTP,
// caching and status-mapping plumbing in [HTTPClient].
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/httputil"
)

// Sentinel errors for registry lookups.
var (
	// ErrNetwork is returned for HTTP failures (timeouts, connection
	// errors, 5xx responses). Usually wrapped as retryable.
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the registry throttles the client
	// (HTTP 429). Always wrapped as retryable.
	ErrRateLimited = errors.New("rate limited by registry")

	// errNotFound signals a 404 internally; concrete clients translate it
	// into a Record with Exists false rather than surfacing it.
	errNotFound = errors.New("not found")
)

// InvalidNameError reports a package name that violates the target
// registry's naming rules. It is raised before any network I/O.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid package name %q: %s", e.Name, e.Reason)
}

// IsInvalidName reports whether err is an [InvalidNameError].
func IsInvalidName(err error) bool {
	return errors.As(err, new(*InvalidNameError))
}

// Record is the normalized result of querying a public registry for a name.
// Zero values mean the registry did not expose that metadata.
type Record struct {
	Exists          bool       `json:"exists"`
	LatestVersion   string     `json:"latest_version,omitempty"`
	MaintainerCount int        `json:"maintainer_count,omitempty"`
	FirstPublished  *time.Time `json:"first_published,omitempty"`
}

// Client looks up package names on a single public registry.
// Implementations must be safe for concurrent use.
type Client interface {
	// Name returns the registry identifier (e.g., "pypi", "npm").
	Name() string

	// Lookup queries the registry for a package name. The name must
	// already be in the registry's canonical form; syntactically invalid
	// names are rejected with *InvalidNameError before any network call.
	// A missing package is a successful lookup with Exists false.
	Lookup(ctx context.Context, name string) (*Record, error)
}

// retryingClient decorates a Client with a retry policy.
type retryingClient struct {
	inner  Client
	policy httputil.Policy
}

// WithRetry wraps client so every Lookup is retried per policy. Only errors
// marked retryable (network failures, throttling) trigger retries; invalid
// names and other permanent errors return immediately.
func WithRetry(client Client, policy httputil.Policy) Client {
	return &retryingClient{inner: client, policy: policy}
}

func (c *retryingClient) Name() string { return c.inner.Name() }

func (c *retryingClient) Lookup(ctx context.Context, name string) (*Record, error) {
	var rec *Record
	err := c.policy.Do(ctx, func() error {
		var err error
		rec, err = c.inner.Lookup(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// timeoutClient bounds each Lookup attempt with a deadline.
type timeoutClient struct {
	inner Client
	d     time.Duration
}

// WithTimeout wraps client so every Lookup attempt runs under its own
// deadline, independent of any outer run-level deadline. Stack it inside
// [WithRetry] to give each retry attempt a fresh timeout.
func WithTimeout(client Client, d time.Duration) Client {
	return &timeoutClient{inner: client, d: d}
}

func (c *timeoutClient) Name() string { return c.inner.Name() }

func (c *timeoutClient) Lookup(ctx context.Context, name string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	return c.inner.Lookup(ctx, name)
}
