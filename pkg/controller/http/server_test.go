package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/secmon-lab/lmx/pkg/controller/http"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/repository"
	"github.com/secmon-lab/lmx/pkg/repository/memory"
	"github.com/secmon-lab/lmx/pkg/service/cork"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"github.com/secmon-lab/lmx/pkg/utils/errutil"
	"github.com/secmon-lab/lmx/pkg/utils/metrics"
)

var fixedNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func setupServer(t *testing.T, opts ...usecase.Option) (http.Handler, *repository.Catalog) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	repo := repository.New(memory.New(memory.WithClock(clock)))
	opts = append([]usecase.Option{usecase.WithClock(clock)}, opts...)
	return httpctrl.New(usecase.New(repo, opts...)), repo
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)).Required()
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := setupServer(t)
	rec := doRequest(t, h, http.MethodGet, "/healthz", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeBody[map[string]string](t, rec)["status"]).Equal("ok")
}

func TestAssessmentEndpoints(t *testing.T) {
	h, _ := setupServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/assessments", map[string]string{"name": "Test Coffee Assessment"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	added := decodeBody[map[string]any](t, rec)
	gt.Value(t, added["id"]).Equal(any("test-coffee-assessment"))
	gt.Value(t, added["success"]).Equal(any(true))

	t.Run("duplicate is a conflict", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/assessments", map[string]string{"name": "test coffee assessment"})
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
		gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Assessment already exists")
	})

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/assessments", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		cards := decodeBody[[]model.AssessmentCard](t, rec)
		gt.Array(t, cards).Length(1).Required()
		gt.Value(t, cards[0].DownloadJSONURL).Equal("/api/assessments/download/test-coffee-assessment")
	})

	t.Run("data", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/assessments/data/test-coffee-assessment", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		doc := decodeBody[model.AssessmentDocument](t, rec)
		gt.Value(t, doc.Template.Title).Equal("Test Coffee Assessment")
	})

	t.Run("download", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/assessments/download/test-coffee-assessment", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Header().Get("Content-Disposition")).
			Equal(`attachment; filename="assessment-test-coffee-assessment-data.json"`)
	})

	t.Run("score", func(t *testing.T) {
		body := map[string]any{"answers": map[string]string{"Sample Question": "Satisfactory"}}
		rec := doRequest(t, h, http.MethodPost, "/api/assessments/test-coffee-assessment/score", body)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		report := decodeBody[model.AssessmentReport](t, rec)
		gt.Value(t, report.Summary.OverallScore).Equal(100)
	})

	t.Run("score rejects unknown label", func(t *testing.T) {
		body := map[string]any{"answers": map[string]string{"Sample Question": "Great"}}
		rec := doRequest(t, h, http.MethodPost, "/api/assessments/test-coffee-assessment/score", body)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("submit and read results", func(t *testing.T) {
		body := map[string]any{"answers": map[string]string{"Sample Question": "At Risk"}}
		rec := doRequest(t, h, http.MethodPost, "/api/assessments/test-coffee-assessment/results", body)
		gt.Value(t, rec.Code).Equal(http.StatusCreated)
		result := decodeBody[model.AssessmentResult](t, rec)
		gt.Bool(t, result.ID.IsValid()).True()

		rec = doRequest(t, h, http.MethodGet, "/api/assessments/test-coffee-assessment/results", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeBody[[]model.AssessmentResult](t, rec)).Length(1)

		rec = doRequest(t, h, http.MethodGet, "/api/assessments/test-coffee-assessment/results/"+string(result.ID), nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decodeBody[model.AssessmentResult](t, rec).ID).Equal(result.ID)

		rec = doRequest(t, h, http.MethodGet, "/api/assessments/test-coffee-assessment/results/not-a-uuid", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("remove", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodDelete, "/api/assessments/test-coffee-assessment", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		rec = doRequest(t, h, http.MethodDelete, "/api/assessments/test-coffee-assessment", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
		gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Assessment not found")

		rec = doRequest(t, h, http.MethodGet, "/api/assessments/data/test-coffee-assessment", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestAddAssessmentValidation(t *testing.T) {
	h, _ := setupServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/assessments", map[string]string{"name": "  "})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Assessment name is required")

	rec = doRequest(t, h, http.MethodPost, "/api/assessments", "{broken")
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Invalid request body")
}

func TestDeliverableEndpoints(t *testing.T) {
	h, _ := setupServer(t)

	rec := doRequest(t, h, http.MethodGet, "/api/deliverables/qbr", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("QBR configuration file not found")

	rec = doRequest(t, h, http.MethodGet, "/api/deliverables", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Array(t, decodeBody[[]model.QBRCard](t, rec)).Length(0)

	rec = doRequest(t, h, http.MethodPost, "/api/deliverables", map[string]string{"id": "acme", "company": "Acme"})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	gt.Value(t, decodeBody[map[string]any](t, rec)["success"]).Equal(any(true))

	rec = doRequest(t, h, http.MethodPost, "/api/deliverables", map[string]string{"id": "acme", "company": "Acme"})
	gt.Value(t, rec.Code).Equal(http.StatusConflict)

	rec = doRequest(t, h, http.MethodPost, "/api/deliverables", map[string]string{"id": "../etc", "company": "Acme"})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

	rec = doRequest(t, h, http.MethodGet, "/api/deliverables/qbr", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	reports := decodeBody[map[string]map[string]any](t, rec)
	gt.Map(t, reports).HasKey("acme")
	gt.Value(t, reports["acme"]["company"]).Equal(any("ACME"))

	rec = doRequest(t, h, http.MethodGet, "/api/deliverables", nil)
	cards := decodeBody[[]model.QBRCard](t, rec)
	gt.Array(t, cards).Length(1).Required()
	gt.Value(t, cards[0].QBRURL).Equal("/lmx/deliverables/qbr/acme")

	rec = doRequest(t, h, http.MethodGet, "/api/deliverables/acme", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeBody[map[string]any](t, rec)["company"]).Equal(any("ACME"))

	rec = doRequest(t, h, http.MethodDelete, "/api/deliverables/acme", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doRequest(t, h, http.MethodDelete, "/api/deliverables/acme", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Report not found")

	rec = doRequest(t, h, http.MethodGet, "/api/deliverables/acme", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Report not found")
}

type stubCork struct {
	cork.Service
}

func (stubCork) ListClients(ctx context.Context) (*cork.ClientList, error) {
	return &cork.ClientList{Items: []cork.Client{{UUID: "c-1", Name: "Acme"}}, Total: 1}, nil
}

func (stubCork) ListEvents(ctx context.Context, clientUUID string, since, until time.Time) ([]cork.Event, error) {
	return []cork.Event{{EventType: "malware", ResolvedAt: "2025-06-30T00:00:00Z"}}, nil
}

func (stubCork) ListDevices(ctx context.Context, clientUUID string) ([]cork.Device, error) {
	return []cork.Device{{}}, nil
}

func (stubCork) ListDomains(ctx context.Context, clientUUID string) ([]cork.Domain, error) {
	return []cork.Domain{}, nil
}

func (stubCork) ListInboxes(ctx context.Context, clientUUID string) ([]cork.Inbox, error) {
	return []cork.Inbox{}, nil
}

func (stubCork) ListWarranties(ctx context.Context) ([]cork.Warranty, error) {
	return []cork.Warranty{}, nil
}

func (stubCork) ListConnectedIntegrations(ctx context.Context) ([]cork.Integration, error) {
	return []cork.Integration{}, nil
}

func TestVendorEndpoints_NotConfigured(t *testing.T) {
	h, _ := setupServer(t)

	rec := doRequest(t, h, http.MethodGet, "/api/deliverables/cork/clients", nil)
	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Cork API key not configured")

	rec = doRequest(t, h, http.MethodPost, "/api/deliverables/itglue/refresh", map[string]string{"clientUuid": "o1"})
	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("IT Glue API key not configured")

	rec = doRequest(t, h, http.MethodPost, "/api/deliverables/cork/refresh", map[string]string{})
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	gt.Value(t, decodeBody[errutil.ErrorResponse](t, rec).Error).Equal("Client UUID is required")
}

func TestCorkRefreshEndpoint(t *testing.T) {
	ctx := context.Background()
	h, repo := setupServer(t, usecase.WithCork(stubCork{}))

	rec := doRequest(t, h, http.MethodPost, "/api/deliverables/cork/refresh", map[string]string{"clientUuid": "c-1"})
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	gt.NoError(t, repo.Deliverable().CreateTemplate(ctx, "qbr-report-cork.json",
		[]byte(`{"title": "{selectedClientName} security review"}`))).Required()

	rec = doRequest(t, h, http.MethodPost, "/api/deliverables/cork/refresh", map[string]string{"clientUuid": "c-1"})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	resp := decodeBody[struct {
		Success bool               `json:"success"`
		Data    model.CorkLiveData `json:"data"`
		Message string             `json:"message"`
	}](t, rec)
	gt.Bool(t, resp.Success).True()
	gt.Value(t, resp.Data.SelectedClientName).Equal("Acme")
	gt.Value(t, resp.Data.OverallMetrics.EventResolutionRate).Equal(100)
	gt.Value(t, resp.Message).Equal("Cork data refreshed successfully")

	rec = doRequest(t, h, http.MethodGet, "/api/deliverables/cork/clients", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	clients := decodeBody[model.CorkClientList](t, rec)
	gt.Array(t, clients.Clients).Length(1)
}

func TestITGlueTestEndpoint(t *testing.T) {
	ctx := context.Background()
	h, repo := setupServer(t)

	gt.NoError(t, repo.Deliverable().CreateTemplate(ctx, "qbr-report-itglue.json",
		[]byte(`{"title": "{selectedClientName}", "users": "{activeUsers}"}`))).Required()

	rec := doRequest(t, h, http.MethodPost, "/api/deliverables/itglue/test", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	resp := decodeBody[map[string]any](t, rec)
	data := resp["data"].(map[string]any)
	gt.Value(t, data["title"]).Equal(any("Test Organization"))
	gt.Value(t, data["users"]).Equal(any("10"))
	gt.Map(t, resp).HasKey("mockData")
}

func TestMetricsEndpoint(t *testing.T) {
	clock := func() time.Time { return fixedNow }
	repo := repository.New(memory.New(memory.WithClock(clock)))
	m := metrics.New()
	h := httpctrl.New(usecase.New(repo, usecase.WithClock(clock), usecase.WithMetrics(m)), httpctrl.WithMetrics(m))

	gt.Value(t, doRequest(t, h, http.MethodGet, "/healthz", nil).Code).Equal(http.StatusOK)
	gt.Value(t, doRequest(t, h, http.MethodGet, "/api/assessments/data/missing", nil).Code).Equal(http.StatusNotFound)

	rec := doRequest(t, h, http.MethodGet, "/metrics", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	body := rec.Body.String()
	gt.String(t, body).Contains(`route="/healthz"`)
	gt.String(t, body).Contains(`route="/api/assessments/data/{id}"`)
	gt.String(t, body).Contains(`code="404"`)
}
