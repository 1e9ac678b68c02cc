package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-br-dashboard/internal/dashboard"
	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
	"github.com/couchcryptid/covid-br-dashboard/internal/export"
	"github.com/couchcryptid/covid-br-dashboard/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// Runner produces a fresh report per call. *pipeline.Pipeline implements it.
type Runner interface {
	ReadinessChecker
	Run(ctx context.Context) (domain.Report, error)
}

// Server serves the dashboard page, the snapshot API and the health,
// readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	runner     Runner
	settings   dashboard.Settings
	logger     *slog.Logger
}

// NewServer creates an HTTP server. Every data route triggers one pipeline run.
func NewServer(addr string, runner Runner, settings dashboard.Settings, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		runner:   runner,
		settings: settings,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/snapshot.xlsx", s.handleSnapshotXLSX)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(runner))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	report, err := s.runner.Run(r.Context())
	if err != nil {
		status := statusFor(err)
		if renderErr := dashboard.RenderError(&buf, errorMessage(err), s.settings); renderErr != nil {
			s.logger.Error("render error page failed", "error", renderErr)
			http.Error(w, http.StatusText(status), status)
			return
		}
		writeHTML(w, status, buf.Bytes())
		return
	}

	if err := dashboard.Render(&buf, report, s.settings); err != nil {
		s.logger.Error("render dashboard failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSnapshotXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report.Snapshot, report.Aggregates); err != nil {
		s.logger.Error("xlsx export failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("covid-br-%s.xlsx", report.Aggregates.LatestReportDate.Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// statusFor maps a run error to a response status: upstream failures are
// 502, anything wrong with the data itself is 500.
func statusFor(err error) int {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorMessage(err error) string {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return "Não foi possível obter os dados do Brasil.io (" + err.Error() + ")."
	}
	return "Os dados recebidos do Brasil.io são inválidos (" + err.Error() + ")."
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error":   err.Error(),
		"outcome": pipeline.Outcome(err),
	})
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck // client may have gone away
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
