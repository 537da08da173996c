package cork

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

// eventsPageSize matches the largest page the events endpoint accepts
const eventsPageSize = 100

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

// New creates a new Cork service with the provided API key
func New(apiKey string, opts ...Option) (Service, error) {
	if apiKey == "" {
		return nil, goerr.New("Cork API key is required")
	}

	c := &client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

func (c *client) get(ctx context.Context, name, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create Cork request", goerr.V("endpoint", name))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call Cork API", goerr.V("endpoint", name))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.Wrap(ErrUnexpectedStatus, name+" API error: "+resp.Status,
			goerr.V("endpoint", name),
			goerr.V("status", resp.StatusCode),
			goerr.V("path", path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "invalid JSON response from "+name+" API", goerr.V("endpoint", name))
	}
	return nil
}

func listItems[T any](ctx context.Context, c *client, name, path string, query url.Values) ([]T, error) {
	var resp itemsResponse[T]
	if err := c.get(ctx, name, path, query, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []T{}, nil
	}
	return resp.Items, nil
}

func clientPath(clientUUID, resource string) string {
	return "/api/v1/clients/" + url.PathEscape(clientUUID) + "/" + resource
}

func (c *client) ListClients(ctx context.Context) (*ClientList, error) {
	var list ClientList
	if err := c.get(ctx, "clients", "/api/v1/clients", nil, &list); err != nil {
		return nil, err
	}
	if list.Items == nil {
		list.Items = []Client{}
	}
	return &list, nil
}

func (c *client) ListEvents(ctx context.Context, clientUUID string, since, until time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("created_after", since.UTC().Format(time.RFC3339Nano))
	q.Set("created_before", until.UTC().Format(time.RFC3339Nano))
	q.Set("page_size", strconv.Itoa(eventsPageSize))
	q.Set("show_resolved", "true")
	q.Set("show_silenced", "false")

	path := "/api/v1/compliance/client/" + url.PathEscape(clientUUID) + "/events"
	return listItems[Event](ctx, c, "security metrics", path, q)
}

func (c *client) ListDevices(ctx context.Context, clientUUID string) ([]Device, error) {
	return listItems[Device](ctx, c, "devices", clientPath(clientUUID, "devices"), nil)
}

func (c *client) ListDomains(ctx context.Context, clientUUID string) ([]Domain, error) {
	return listItems[Domain](ctx, c, "domains", clientPath(clientUUID, "domains"), nil)
}

func (c *client) ListInboxes(ctx context.Context, clientUUID string) ([]Inbox, error) {
	return listItems[Inbox](ctx, c, "inboxes", clientPath(clientUUID, "inboxes"), nil)
}

func (c *client) ListWarranties(ctx context.Context) ([]Warranty, error) {
	return listItems[Warranty](ctx, c, "warranties", "/api/v1/warranties", nil)
}

func (c *client) ListConnectedIntegrations(ctx context.Context) ([]Integration, error) {
	return listItems[Integration](ctx, c, "integrations", "/api/v1/integrations/connected", nil)
}
