package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
	"github.com/couchcryptid/bom-hazard-etl/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotProvider serves the last good pipeline results.
type SnapshotProvider interface {
	CheckReadiness(ctx context.Context) error
	Observations() (pipeline.ObservationSnapshot, bool)
	Forecasts() (pipeline.ForecastSnapshot, bool)
	Summarize() (pipeline.Summaries, bool)
}

// Server exposes health, readiness, and metrics endpoints plus the snapshot
// API consumed by the dashboard layer.
type Server struct {
	httpServer *http.Server
	provider   SnapshotProvider
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, provider SnapshotProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/observations", s.handleObservations)
	mux.HandleFunc("GET /api/v1/forecasts", s.handleForecasts)
	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleObservations(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.provider.Observations()
	if !ok {
		writeNoData(w)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// forecastRow augments a forecast with its display glyph, resolved from the
// icon code with distinct fallbacks for missing and unmapped codes.
type forecastRow struct {
	domain.LocalityForecast
	Icon string `json:"icon"`
}

type forecastResponse struct {
	Rows      []forecastRow `json:"rows"`
	FetchedAt time.Time     `json:"fetched_at"`
}

func (s *Server) handleForecasts(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.provider.Forecasts()
	if !ok {
		writeNoData(w)
		return
	}
	resp := forecastResponse{FetchedAt: snap.FetchedAt, Rows: make([]forecastRow, len(snap.Rows))}
	for i, row := range snap.Rows {
		resp.Rows[i] = forecastRow{LocalityForecast: row, Icon: domain.WeatherIcon(row.IconCode)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	sum, ok := s.provider.Summarize()
	if !ok {
		writeNoData(w)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func writeNoData(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status": "no data",
		"error":  "no successful refresh yet",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
