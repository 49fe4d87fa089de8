package pypi

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/cache"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry"
)

// DefaultBaseURL is the production PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org/pypi"

// canonicalNameRE matches PEP 503 normalized names: lowercase alphanumerics
// separated by single hyphens.
var canonicalNameRE = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Client queries PyPI for package existence and metadata.
// All methods are safe for concurrent use.
type Client struct {
	*registry.HTTPClient
	baseURL string
}

// NewClient creates a PyPI client. Responses are cached in backend for
// cacheTTL. An empty baseURL selects [DefaultBaseURL]; private mirrors that
// speak the same JSON API can be targeted by passing their base URL.
func NewClient(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		HTTPClient: registry.NewHTTPClient(backend, cacheTTL, nil),
		baseURL:    baseURL,
	}
}

// Name returns "pypi".
func (c *Client) Name() string { return "pypi" }

// Lookup queries PyPI for name. The name must be PEP 503 canonical; invalid
// names are rejected with *registry.InvalidNameError before any I/O.
// A missing package yields a Record with Exists false and a nil error.
func (c *Client) Lookup(ctx context.Context, name string) (*registry.Record, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	// The base URL is part of the key so entries from different endpoints
	// (mirrors, --registry-url) never serve each other.
	var data apiResponse
	err := c.GetJSON(ctx, "pypi:"+c.baseURL+":"+name, c.baseURL+"/"+name+"/json", &data)
	if registry.IsNotFound(err) {
		return &registry.Record{Exists: false}, nil
	}
	if err != nil {
		return nil, err
	}

	return &registry.Record{
		Exists:         true,
		LatestVersion:  data.Info.Version,
		FirstPublished: firstUpload(data.Releases),
	}, nil
}

func validateName(name string) error {
	switch {
	case name == "":
		return &registry.InvalidNameError{Name: name, Reason: "empty name"}
	case len(name) > 214:
		return &registry.InvalidNameError{Name: name, Reason: "name too long"}
	case !canonicalNameRE.MatchString(name):
		return &registry.InvalidNameError{Name: name, Reason: "not in PEP 503 canonical form"}
	}
	return nil
}

// firstUpload finds the earliest release upload time across all versions.
// Returns nil when PyPI exposes no usable timestamps.
func firstUpload(releases map[string][]releaseFile) *time.Time {
	var times []time.Time
	for _, files := range releases {
		for _, f := range files {
			if t, err := time.Parse(time.RFC3339, f.UploadTime); err == nil {
				times = append(times, t)
			}
		}
	}
	if len(times) == 0 {
		return nil
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return &times[0]
}

type apiResponse struct {
	Info     apiInfo                  `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type releaseFile struct {
	UploadTime string `json:"upload_time_iso_8601"`
}
