package npm

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/cache"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry"
)

// DefaultBaseURL is the production npm registry endpoint.
const DefaultBaseURL = "https://registry.npmjs.org"

var namePartRE = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Client queries the npm registry for package existence and metadata.
// All methods are safe for concurrent use.
type Client struct {
	*registry.HTTPClient
	baseURL string
}

// NewClient creates an npm client. Responses are cached in backend for
// cacheTTL. An empty baseURL selects [DefaultBaseURL].
func NewClient(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		HTTPClient: registry.NewHTTPClient(backend, cacheTTL, nil),
		baseURL:    baseURL,
	}
}

// Name returns "npm".
func (c *Client) Name() string { return "npm" }

// Lookup queries the registry for name. Scoped names (@scope/pkg) are
// URL-encoded as the registry requires. A missing package yields a Record
// with Exists false and a nil error.
func (c *Client) Lookup(ctx context.Context, name string) (*registry.Record, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	// The base URL is part of the key so entries from different endpoints
	// never serve each other.
	var data packument
	err := c.GetJSON(ctx, "npm:"+c.baseURL+":"+name, c.baseURL+"/"+url.PathEscape(name), &data)
	if registry.IsNotFound(err) {
		return &registry.Record{Exists: false}, nil
	}
	if err != nil {
		return nil, err
	}

	rec := &registry.Record{
		Exists:          true,
		LatestVersion:   data.DistTags.Latest,
		MaintainerCount: len(data.Maintainers),
	}
	if t, err := time.Parse(time.RFC3339, data.Time.Created); err == nil {
		rec.FirstPublished = &t
	}
	return rec, nil
}

func validateName(name string) error {
	if name == "" {
		return &registry.InvalidNameError{Name: name, Reason: "empty name"}
	}
	if len(name) > 214 {
		return &registry.InvalidNameError{Name: name, Reason: "name too long"}
	}

	part := name
	if strings.HasPrefix(name, "@") {
		scope, rest, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" || rest == "" {
			return &registry.InvalidNameError{Name: name, Reason: "malformed scope"}
		}
		if !namePartRE.MatchString(scope) {
			return &registry.InvalidNameError{Name: name, Reason: "invalid scope"}
		}
		part = rest
	}
	if !namePartRE.MatchString(part) {
		return &registry.InvalidNameError{Name: name, Reason: "invalid characters"}
	}
	return nil
}

type packument struct {
	Name     string `json:"name"`
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Maintainers []struct {
		Name string `json:"name"`
	} `json:"maintainers"`
	Time struct {
		Created string `json:"created"`
	} `json:"time"`
}
