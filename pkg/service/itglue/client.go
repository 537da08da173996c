package itglue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/utils/safe"
)

const (
	largePageSize = 1000
	smallPageSize = 100

	// maxPages bounds pagination against a server that never reports the last page
	maxPages = 100
)

// client implements Service interface
type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*client)

// WithBaseURL overrides DefaultBaseURL
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// New creates a new IT Glue service with the provided API key
func New(apiKey string, opts ...Option) (Service, error) {
	if apiKey == "" {
		return nil, goerr.New("IT Glue API key is required")
	}

	c := &client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client) get(ctx context.Context, name, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create IT Glue request", goerr.V("endpoint", name))
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/vnd.api+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call IT Glue API", goerr.V("endpoint", name))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("IT Glue "+name+" API error: "+resp.Status,
			goerr.V("endpoint", name),
			goerr.V("status", resp.StatusCode),
			goerr.V("path", path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "invalid JSON response from IT Glue "+name+" API", goerr.V("endpoint", name))
	}
	return nil
}

// list walks page[number] until the reported last page or total count is reached
func (c *client) list(ctx context.Context, name, path string, filters map[string]string, pageSize int) ([]Resource, error) {
	all := []Resource{}

	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		for k, v := range filters {
			q.Set("filter["+k+"]", v)
		}
		q.Set("page[size]", strconv.Itoa(pageSize))
		q.Set("page[number]", strconv.Itoa(page))

		var resp listResponse
		if err := c.get(ctx, name, path, q, &resp); err != nil {
			return nil, goerr.Wrap(err, "failed to list IT Glue resources", goerr.V("page", page))
		}
		all = append(all, resp.Data...)

		if resp.Meta == nil || len(resp.Data) == 0 {
			break
		}
		current := resp.Meta.current()
		if current == 0 {
			current = page
		}
		if current >= resp.Meta.pages() || len(all) >= resp.Meta.count() {
			break
		}
	}

	return all, nil
}

func orgFilter(orgID string) map[string]string {
	return map[string]string{
		"organization_id": orgID,
		"archived":        "false",
	}
}

func (c *client) ListOrganizations(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, "organizations", "/organizations", nil, smallPageSize)
}

func (c *client) GetOrganization(ctx context.Context, id string) (*Resource, error) {
	var resp singleResponse
	if err := c.get(ctx, "organization", "/organizations/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, goerr.New("organization not found in response", goerr.V("id", id))
	}
	return resp.Data, nil
}

func (c *client) ListConfigurations(ctx context.Context, orgID string) ([]Resource, error) {
	return c.list(ctx, "assets", "/configurations", orgFilter(orgID), largePageSize)
}

func (c *client) ListDomains(ctx context.Context, orgID string) ([]Resource, error) {
	return c.list(ctx, "domains", "/domains", orgFilter(orgID), largePageSize)
}

func (c *client) ListPasswords(ctx context.Context, orgID string) ([]Resource, error) {
	return c.list(ctx, "passwords", "/passwords", orgFilter(orgID), largePageSize)
}

func (c *client) ListSSLCertificates(ctx context.Context, orgID string) ([]Resource, error) {
	return c.list(ctx, "SSL certificates", "/ssl_certificates", orgFilter(orgID), largePageSize)
}

func (c *client) ListConfigurationTypes(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, "configuration_types", "/configuration_types", nil, largePageSize)
}

func (c *client) ListAssetTypes(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, "asset_types", "/asset_types", nil, largePageSize)
}

func (c *client) ListFlexibleAssetTypes(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, "flexible asset types", "/flexible_asset_types", nil, largePageSize)
}

func (c *client) ListFlexibleAssets(ctx context.Context, typeID, orgID string) ([]Resource, error) {
	filters := orgFilter(orgID)
	filters["flexible_asset_type_id"] = typeID
	return c.list(ctx, "flexible assets", "/flexible_assets", filters, largePageSize)
}

func (c *client) ListUsers(ctx context.Context) ([]Resource, error) {
	return c.list(ctx, "users", "/users", nil, smallPageSize)
}

func (c *client) ListActivities(ctx context.Context, orgID string) ([]Resource, error) {
	return c.list(ctx, "activities", "/activities", map[string]string{"organization_id": orgID}, smallPageSize)
}
