package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"github.com/secmon-lab/lmx/pkg/utils/errutil"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/secmon-lab/lmx/pkg/utils/metrics"
)

// maxBodySize bounds JSON request bodies
const maxBodySize = 1 << 20

type Server struct {
	router  *chi.Mux
	uc      *usecase.UseCases
	metrics *metrics.Metrics
}

type Options func(*Server)

// WithMetrics records request metrics and exposes them on /metrics
func WithMetrics(m *metrics.Metrics) Options {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(metricsMiddleware(s.metrics))
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", healthzHandler)

	r.Route("/api/assessments", func(r chi.Router) {
		r.Get("/", listAssessmentsHandler(uc.Assessment))
		r.Post("/", addAssessmentHandler(uc.Assessment))
		r.Get("/data/{id}", getAssessmentHandler(uc.Assessment))
		r.Get("/download/{id}", downloadAssessmentHandler(uc.Assessment))
		r.Delete("/{id}", removeAssessmentHandler(uc.Assessment))
		r.Post("/{id}/score", scoreAssessmentHandler(uc.Assessment))
		r.Post("/{id}/results", submitAssessmentHandler(uc.Assessment))
		r.Get("/{id}/results", listResultsHandler(uc.Assessment))
		r.Get("/{id}/results/{resultID}", getResultHandler(uc.Assessment))
	})

	r.Route("/api/deliverables", func(r chi.Router) {
		r.Get("/", listReportsHandler(uc.QBR))
		r.Post("/", addReportHandler(uc.QBR))
		r.Get("/qbr", loadReportsHandler(uc.QBR))
		r.Get("/cork/clients", corkClientsHandler(uc.Refresh))
		r.Post("/cork/refresh", corkRefreshHandler(uc.Refresh))
		r.Get("/itglue/clients", itglueClientsHandler(uc.Refresh))
		r.Post("/itglue/refresh", itglueRefreshHandler(uc.Refresh))
		r.Post("/itglue/test", itglueTestHandler(uc.Refresh))
		r.Get("/{id}", getReportHandler(uc.QBR))
		r.Delete("/{id}", removeReportHandler(uc.QBR))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// metricsMiddleware observes every request under its route pattern so that
// path parameters do not explode label cardinality
func metricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTP(route, r.Method, status, time.Since(start))
		})
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTPMessage(r.Context(), w, goerr.Wrap(err, "failed to marshal response"),
			http.StatusInternalServerError, "Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// decodeJSON reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return goerr.Wrap(usecase.ErrInvalidInput, "request body is not valid JSON", goerr.V("cause", err.Error()))
	}
	return nil
}
