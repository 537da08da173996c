package cork

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultBaseURL is the public Cork API endpoint
const DefaultBaseURL = "https://api.cork.dev"

// ErrUnexpectedStatus is returned when the API answers with a non-2xx status
var ErrUnexpectedStatus = goerr.New("unexpected Cork API status")

// Service provides interface to Cork API
type Service interface {
	// ListClients returns all clients visible to the API key
	ListClients(ctx context.Context) (*ClientList, error)
	// ListEvents returns compliance events of a client created in [since, until)
	ListEvents(ctx context.Context, clientUUID string, since, until time.Time) ([]Event, error)
	ListDevices(ctx context.Context, clientUUID string) ([]Device, error)
	ListDomains(ctx context.Context, clientUUID string) ([]Domain, error)
	ListInboxes(ctx context.Context, clientUUID string) ([]Inbox, error)
	// ListWarranties returns warranties across all clients
	ListWarranties(ctx context.Context) ([]Warranty, error)
	// ListConnectedIntegrations returns integrations connected to the tenant
	ListConnectedIntegrations(ctx context.Context) ([]Integration, error)
}

// Client is a Cork client (tenant customer)
type Client struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ClientList is the paged response of the clients endpoint
type ClientList struct {
	Items    []Client `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// Find returns the client with the given UUID
func (l *ClientList) Find(uuid string) (*Client, bool) {
	for i := range l.Items {
		if l.Items[i].UUID == uuid {
			return &l.Items[i], true
		}
	}
	return nil, false
}

// Event is a compliance event. ResolvedAt is empty while unresolved.
type Event struct {
	EventType  string `json:"event_type"`
	ResolvedAt string `json:"resolved_at"`
	AtRisk     bool   `json:"at_risk"`
}

// IsResolved reports whether the event has been resolved
func (e Event) IsResolved() bool {
	return e.ResolvedAt != ""
}

type Vendor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type EndpointIntegration struct {
	DisplayName string  `json:"display_name"`
	Vendor      *Vendor `json:"vendor"`
}

type Endpoint struct {
	Integration *EndpointIntegration `json:"integration"`
}

// Device is a managed device with the security tools reporting on it
type Device struct {
	AssociatedEndpoints []Endpoint `json:"associated_endpoints"`
}

// IsProtected reports whether at least one tool covers the device
func (d Device) IsProtected() bool {
	return len(d.AssociatedEndpoints) > 0
}

type Domain struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// DisplayName returns the domain name from whichever field carries it
func (d Domain) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Domain
}

type Inbox struct {
	UUID  string `json:"uuid"`
	Email string `json:"email"`
}

type Warranty struct {
	ClientName string `json:"client_name"`
	Package    string `json:"package"`
	Active     bool   `json:"active"`
	StartDate  string `json:"start_date"`
}

// ConnectionStatusOK is the connection_status of a healthy integration
const ConnectionStatusOK = "ok"

// Integration is a third-party tool connected to Cork
type Integration struct {
	DisplayName      string  `json:"display_name"`
	ConnectionStatus string  `json:"connection_status"`
	Vendor           *Vendor `json:"vendor"`
}

// VendorName returns the vendor name, or "" when absent
func (i Integration) VendorName() string {
	if i.Vendor == nil {
		return ""
	}
	return i.Vendor.Name
}

// IsActive reports whether the integration connection is healthy
func (i Integration) IsActive() bool {
	return strings.EqualFold(i.ConnectionStatus, ConnectionStatusOK)
}
