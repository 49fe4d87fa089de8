package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/cache"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/httputil"
)

const defaultUserAgent = "confcheck (+https://github.com/ShadowGuardAI/codeintel-dependency-confusion-checker)"

// HTTPClient provides shared HTTP functionality for registry clients:
// response caching, common headers, and mapping of HTTP outcomes onto the
// registry error taxonomy. It performs exactly one request per call; retry
// behavior belongs to the [WithRetry] decorator.
type HTTPClient struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewHTTPClient creates an HTTPClient backed by the given cache. Responses
// are cached for ttl; a nil backend disables caching. Pass nil headers if no
// extra default headers are needed.
func NewHTTPClient(backend cache.Cache, ttl time.Duration, headers map[string]string) *HTTPClient {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &HTTPClient{
		// Transport-level ceiling only; callers bound each lookup with a
		// context deadline.
		http:    &http.Client{},
		cache:   backend,
		ttl:     ttl,
		headers: headers,
	}
}

// GetJSON fetches url and decodes the response body into v, consulting the
// cache first under key. Only successful responses are cached; a package
// absent today may be claimed tomorrow.
func (c *HTTPClient) GetJSON(ctx context.Context, key, url string, v any) error {
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		return json.Unmarshal(data, v)
	}

	body, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", url, err)
	}

	_ = c.cache.Set(ctx, key, body, c.ttl)
	return nil
}

func (c *HTTPClient) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Covers connection failures and context deadline expiry.
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return errNotFound
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrRateLimited, code))
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// IsNotFound reports whether err is the internal not-found signal.
// Exposed for concrete clients in subpackages.
func IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}
