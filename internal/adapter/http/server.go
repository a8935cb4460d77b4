package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
)

// AssessmentService assesses uploaded CSV datasets.
type AssessmentService interface {
	Assess(ctx context.Context, name string, body io.Reader) (report.Document, error)
	Thresholds() domain.Thresholds
}

// Server exposes health, readiness, metrics and the assessment API.
type Server struct {
	httpServer *http.Server
	svc        AssessmentService
	maxBody    int64
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 assessment routes. Upload bodies larger than maxBody are rejected.
func NewServer(addr string, ready sharedobs.ReadinessChecker, svc AssessmentService, maxBody int64, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		maxBody: maxBody,
		logger:  logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/assessments", s.handleAssess)
		r.Get("/thresholds", s.handleThresholds)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	doc, err := s.svc.Assess(r.Context(), name, r.Body)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("assessment rejected",
			"dataset", name,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleThresholds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Thresholds())
}

// statusFor maps an assessment error to an HTTP status: oversize bodies are
// 413, malformed input is 400, everything else is 500.
func statusFor(err error) int {
	var (
		maxBytes *http.MaxBytesError
		schema   *domain.SchemaError
		order    *domain.OrderError
		coerce   *ingest.CoercionError
		parse    *csv.ParseError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &schema), errors.As(err, &order), errors.As(err, &coerce), errors.As(err, &parse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
