package cork_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/service/cork"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	_, err := cork.New("")
	gt.Error(t, err)

	svc, err := cork.New("key")
	gt.NoError(t, err)
	gt.Value(t, svc).NotNil()
}

func TestListClients(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v1/clients": `{"items":[{"uuid":"u1","name":"Acme","status":"active","created_at":"2025-01-01"}],"total":1,"page":1,"page_size":50}`,
	})

	svc, err := cork.New("test-key", cork.WithBaseURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	list, err := svc.ListClients(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, list.Total).Equal(1)
	gt.Array(t, list.Items).Length(1)

	c, ok := list.Find("u1")
	gt.B(t, ok).True()
	gt.Value(t, c.Name).Equal("Acme")

	_, ok = list.Find("u2")
	gt.B(t, ok).False()
}

func TestListEventsQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gt.Value(t, r.URL.Path).Equal("/api/v1/compliance/client/u1/events")
		_, _ = w.Write([]byte(`{"items":[{"event_type":"edr","resolved_at":"2025-01-02T00:00:00Z","at_risk":false},{"event_type":"mfa","resolved_at":null,"at_risk":true}]}`))
	}))
	defer srv.Close()

	svc, err := cork.New("test-key", cork.WithBaseURL(srv.URL))
	gt.NoError(t, err).Required()

	until := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	events, err := svc.ListEvents(context.Background(), "u1", until.AddDate(0, 0, -30), until)
	gt.NoError(t, err).Required()
	gt.Array(t, events).Length(2)
	gt.B(t, events[0].IsResolved()).True()
	gt.B(t, events[1].IsResolved()).False()

	gt.Value(t, gotQuery["created_after"]).Equal("2025-07-01T00:00:00Z")
	gt.Value(t, gotQuery["created_before"]).Equal("2025-07-31T00:00:00Z")
	gt.Value(t, gotQuery["page_size"]).Equal("100")
	gt.Value(t, gotQuery["show_resolved"]).Equal("true")
	gt.Value(t, gotQuery["show_silenced"]).Equal("false")
}

func TestListItemsEmptyAndErrors(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/v1/clients/u1/devices":     `{"items":[{"associated_endpoints":[{"integration":{"display_name":"SentinelOne"}}]},{"associated_endpoints":[]}]}`,
		"/api/v1/clients/u1/domains":     `{}`,
		"/api/v1/clients/u1/inboxes":     `{"items":[{"uuid":"i1","email":"a@example.com"}]}`,
		"/api/v1/integrations/connected": `{"items":[{"display_name":"Datto","connection_status":"ok","vendor":{"name":"Datto"}},{"connection_status":"error"}]}`,
		"/api/v1/warranties":             `not json`,
	})

	svc, err := cork.New("test-key", cork.WithBaseURL(srv.URL))
	gt.NoError(t, err).Required()
	ctx := context.Background()

	devices, err := svc.ListDevices(ctx, "u1")
	gt.NoError(t, err).Required()
	gt.B(t, devices[0].IsProtected()).True()
	gt.B(t, devices[1].IsProtected()).False()

	domains, err := svc.ListDomains(ctx, "u1")
	gt.NoError(t, err).Required()
	gt.Value(t, domains).NotNil()
	gt.Array(t, domains).Length(0)

	inboxes, err := svc.ListInboxes(ctx, "u1")
	gt.NoError(t, err).Required()
	gt.Array(t, inboxes).Length(1)

	integrations, err := svc.ListConnectedIntegrations(ctx)
	gt.NoError(t, err).Required()
	gt.B(t, integrations[0].IsActive()).True()
	gt.Value(t, integrations[0].VendorName()).Equal("Datto")
	gt.B(t, integrations[1].IsActive()).False()
	gt.Value(t, integrations[1].VendorName()).Equal("")

	_, err = svc.ListWarranties(ctx)
	gt.Error(t, err)

	_, err = svc.ListWarranties(ctx)
	gt.Bool(t, errors.Is(err, cork.ErrUnexpectedStatus)).False()

	_, err = svc.ListDevices(ctx, "missing")
	gt.Error(t, err).Is(cork.ErrUnexpectedStatus)
	gt.String(t, err.Error()).Contains("devices API error")
}

func TestUnauthorized(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/api/v1/clients": `{"items":[]}`})

	svc, err := cork.New("wrong-key", cork.WithBaseURL(srv.URL))
	gt.NoError(t, err).Required()

	_, err = svc.ListClients(context.Background())
	gt.Error(t, err).Is(cork.ErrUnexpectedStatus)
	gt.String(t, err.Error()).Contains("401")
}
