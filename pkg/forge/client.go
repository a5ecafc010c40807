//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=client.go -destination=mock_client.gen.go -package=forge

package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/lerenn/forgecheck/pkg/logging"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public Puppet Forge API endpoint.
	DefaultBaseURL = "https://forgeapi.puppet.com"

	// excludedFields trims the module document down to the fields this tool
	// actually reads.
	excludedFields = "readme,changelog,license,reference,tasks,plans,metadata,tags"
)

var (
	// ErrRedirect is returned when the registry answers with a redirect
	// instead of a module document. Redirects are never followed.
	ErrRedirect = errors.New("forge API answered with a redirect")

	// ErrUnexpectedStatus is returned when the registry answers with a
	// non-redirect status other than 200.
	ErrUnexpectedStatus = errors.New("forge API answered with an unexpected status")

	// ErrInvalidVersion is returned when the registry reports a current
	// release version that is not valid semver.
	ErrInvalidVersion = errors.New("forge API returned a version that is not valid semver")
)

// ModuleMetadata is what the registry knows about a module: its latest
// released version and whether it has been deprecated.
type ModuleMetadata struct {
	Version    *semver.Version
	Deprecated bool
}

// Client fetches module documents from a forge registry.
type Client interface {
	Fetch(ctx context.Context, name string) (ModuleMetadata, error)
}

type client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a forge client against baseURL, or the public forge when
// baseURL is empty.
func NewClient(baseURL string, timeout time.Duration) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

var _ Client = (*client)(nil)

type moduleDocument struct {
	CurrentRelease struct {
		Version string `json:"version"`
	} `json:"current_release"`
	DeprecatedAt *string `json:"deprecated_at"`
}

func (c *client) Fetch(ctx context.Context, name string) (ModuleMetadata, error) {
	name = strings.ReplaceAll(name, "/", "-")
	url := fmt.Sprintf("%s/v3/modules/%s?exclude_fields=%s", c.baseURL, name, excludedFields)
	logging.C(ctx).Debug("Fetching module document", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ModuleMetadata{}, fmt.Errorf("building forge request for %q: %w", name, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ModuleMetadata{}, fmt.Errorf("querying forge for %q: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return ModuleMetadata{}, fmt.Errorf("%w: %q got %d to %q",
			ErrRedirect, name, resp.StatusCode, resp.Header.Get("Location"))
	case resp.StatusCode != http.StatusOK:
		return ModuleMetadata{}, fmt.Errorf("%w: %q got %d", ErrUnexpectedStatus, name, resp.StatusCode)
	}

	var doc moduleDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return ModuleMetadata{}, fmt.Errorf("decoding forge response for %q: %w", name, err)
	}

	version, err := semver.StrictNewVersion(doc.CurrentRelease.Version)
	if err != nil {
		return ModuleMetadata{}, fmt.Errorf("%w: %q reports %q", ErrInvalidVersion, name, doc.CurrentRelease.Version)
	}

	return ModuleMetadata{
		Version:    version,
		Deprecated: doc.DeprecatedAt != nil,
	}, nil
}
