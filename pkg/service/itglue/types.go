package itglue

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public IT Glue API endpoint
const DefaultBaseURL = "https://api.itglue.com"

// Service provides interface to IT Glue JSON:API
type Service interface {
	ListOrganizations(ctx context.Context) ([]Resource, error)
	GetOrganization(ctx context.Context, id string) (*Resource, error)
	// ListConfigurations returns all non-archived configurations of an organization
	ListConfigurations(ctx context.Context, orgID string) ([]Resource, error)
	ListDomains(ctx context.Context, orgID string) ([]Resource, error)
	ListPasswords(ctx context.Context, orgID string) ([]Resource, error)
	ListSSLCertificates(ctx context.Context, orgID string) ([]Resource, error)
	ListConfigurationTypes(ctx context.Context) ([]Resource, error)
	// ListAssetTypes is the legacy name of configuration types on some tenants
	ListAssetTypes(ctx context.Context) ([]Resource, error)
	ListFlexibleAssetTypes(ctx context.Context) ([]Resource, error)
	ListFlexibleAssets(ctx context.Context, typeID, orgID string) ([]Resource, error)
	ListUsers(ctx context.Context) ([]Resource, error)
	ListActivities(ctx context.Context, orgID string) ([]Resource, error)
}

// Resource is a JSON:API resource object
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    Attributes              `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Name returns the name attribute
func (r Resource) Name() string {
	return r.Attributes.String("name")
}

// RelationshipID returns the id of a to-one relationship, or ""
func (r Resource) RelationshipID(name string) string {
	rel, ok := r.Relationships[name]
	if !ok || rel.Data == nil {
		return ""
	}
	return rel.Data.ID
}

type Relationship struct {
	Data *ResourceIdentifier `json:"data"`
}

type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Attributes holds resource attributes. IT Glue emits kebab-case keys but
// older payloads use snake_case, so lookups accept several candidate keys.
type Attributes map[string]any

// String returns the first non-empty string value among keys
func (a Attributes) String(keys ...string) string {
	for _, k := range keys {
		if s, ok := a[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ID returns the first non-zero string or numeric value among keys
// formatted as a string
func (a Attributes) ID(keys ...string) string {
	for _, k := range keys {
		switch v := a[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	return ""
}

// Float returns the first numeric value among keys. Numeric strings are
// accepted.
func (a Attributes) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := a[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// Time parses the first non-empty value among keys. Date-only values are
// accepted.
func (a Attributes) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		s := strings.TrimSpace(a.String(k))
		if s == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, time.DateOnly, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

type pageMeta struct {
	CurrentPage int `json:"current-page"`
	TotalPages  int `json:"total-pages"`
	TotalCount  int `json:"total-count"`

	CurrentPageSnake int `json:"current_page"`
	TotalPagesSnake  int `json:"total_pages"`
	TotalCountSnake  int `json:"total_count"`
}

func (m pageMeta) current() int { return max(m.CurrentPage, m.CurrentPageSnake) }
func (m pageMeta) pages() int   { return max(m.TotalPages, m.TotalPagesSnake) }
func (m pageMeta) count() int   { return max(m.TotalCount, m.TotalCountSnake) }

type listResponse struct {
	Data []Resource `json:"data"`
	Meta *pageMeta  `json:"meta"`
}

type singleResponse struct {
	Data *Resource `json:"data"`
}
