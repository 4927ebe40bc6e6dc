package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
	"github.com/couchcryptid/bom-hazard-etl/internal/pipeline"
)

type stubProvider struct {
	ready bool
	obs   *pipeline.ObservationSnapshot
	fcst  *pipeline.ForecastSnapshot
	sums  *pipeline.Summaries
}

func (s *stubProvider) CheckReadiness(context.Context) error {
	if !s.ready {
		return errors.New("no successful observation refresh yet")
	}
	return nil
}

func (s *stubProvider) Observations() (pipeline.ObservationSnapshot, bool) {
	if s.obs == nil {
		return pipeline.ObservationSnapshot{}, false
	}
	return *s.obs, true
}

func (s *stubProvider) Forecasts() (pipeline.ForecastSnapshot, bool) {
	if s.fcst == nil {
		return pipeline.ForecastSnapshot{}, false
	}
	return *s.fcst, true
}

func (s *stubProvider) Summarize() (pipeline.Summaries, bool) {
	if s.sums == nil {
		return pipeline.Summaries{}, false
	}
	return *s.sums, true
}

func newTestServer(p SnapshotProvider) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", p, logger)
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(&stubProvider{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	p := &stubProvider{}
	srv := newTestServer(p)

	rec := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready")

	p.ready = true
	rec = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestObservationsEndpoint(t *testing.T) {
	p := &stubProvider{}
	srv := newTestServer(p)

	rec := get(t, srv, "/api/v1/observations")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	fetchedAt := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	p.obs = &pipeline.ObservationSnapshot{
		FetchedAt: fetchedAt,
		Rows: []domain.StationObservation{{
			StationID:      "009021",
			StationName:    "PERTH AIRPORT",
			AirTemperature: domain.Float(23.5),
			FireRiskBand:   domain.BandModerate,
		}},
	}

	rec = get(t, srv, "/api/v1/observations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got pipeline.ObservationSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "PERTH AIRPORT", got.Rows[0].StationName)
	assert.Equal(t, domain.BandModerate, got.Rows[0].FireRiskBand)
	assert.True(t, got.FetchedAt.Equal(fetchedAt))
	// Nil measurements serialize as explicit nulls, keeping the schema fixed.
	assert.Contains(t, rec.Body.String(), `"rel_humidity":null`)
}

func TestForecastsEndpoint(t *testing.T) {
	idx := 0
	p := &stubProvider{fcst: &pipeline.ForecastSnapshot{
		Rows: []domain.LocalityForecast{
			{LocalityName: "Perth", PeriodIndex: &idx, IconCode: domain.Float(11)},
			{LocalityName: "Albany", PeriodIndex: &idx},
		},
	}}
	rec := get(t, newTestServer(p), "/api/v1/forecasts")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"locality_name":"Perth"`)
	// Icon codes resolve to glyphs, with the missing-code fallback distinct
	// from the unmapped-code one.
	assert.Contains(t, body, `"icon":"🌧️"`)
	assert.Contains(t, body, `"icon":"❓"`)
}

func TestSummaryEndpoint(t *testing.T) {
	p := &stubProvider{}
	srv := newTestServer(p)

	rec := get(t, srv, "/api/v1/summary")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	p.sums = &pipeline.Summaries{
		Fire: &domain.ScoreSummary{
			HighestStation:   "inland",
			HighestScore:     2.1,
			HighestBand:      domain.BandExtreme,
			StationsWithData: 12,
			BandCounts:       map[domain.Band]int{domain.BandExtreme: 1, domain.BandLow: 11},
		},
	}
	rec = get(t, srv, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"highest_station":"inland"`)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubProvider{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/observations", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
