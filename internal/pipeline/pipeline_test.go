package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/bom-hazard-etl/internal/adapter/bom"
	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
	"github.com/couchcryptid/bom-hazard-etl/internal/observability"
	"github.com/couchcryptid/bom-hazard-etl/internal/pipeline"
)

// --- fakes ---

type fakeSource struct {
	mu       sync.Mutex
	obs      []domain.StationObservation
	obsErr   error
	fcst     []domain.LocalityForecast
	fcstErr  error
	obsCalls int
}

func (f *fakeSource) FetchObservations(context.Context) ([]domain.StationObservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obsCalls++
	if f.obsErr != nil {
		return nil, f.obsErr
	}
	return f.obs, nil
}

func (f *fakeSource) FetchForecasts(context.Context) ([]domain.LocalityForecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fcstErr != nil {
		return nil, f.fcstErr
	}
	return f.fcst, nil
}

func (f *fakeSource) set(obs []domain.StationObservation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs, f.obsErr = obs, err
}

type fakePublisher struct {
	mu        sync.Mutex
	published [][]domain.StationObservation
	fetchedAt time.Time
	err       error
}

func (p *fakePublisher) PublishObservations(_ context.Context, rows []domain.StationObservation, fetchedAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, rows)
	p.fetchedAt = fetchedAt
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stations(names ...string) []domain.StationObservation {
	rows := make([]domain.StationObservation, len(names))
	for i, n := range names {
		rows[i] = domain.StationObservation{
			StationID:      n,
			StationName:    n,
			AirTemperature: domain.Float(20 + float64(i)),
			RelHumidity:    domain.Float(50 - float64(i)),
			WindSpeedKmh:   domain.Float(10 * float64(i+1)),
			GustKmh:        domain.Float(15 * float64(i+1)),
			Rainfall:       domain.Float(float64(i)),
		}
	}
	return rows
}

func newRefresher(src pipeline.FeedSource, pub pipeline.Publisher, clock clockwork.Clock) *pipeline.Refresher {
	return pipeline.New(
		src, pub, domain.DefaultRiskConfig(),
		10*time.Minute, time.Hour,
		discardLogger(), observability.NewMetricsForTesting(), clock,
	)
}

// --- tests ---

func TestRefreshObservations_StoresDerivedSnapshot(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	src := &fakeSource{obs: stations("a", "b", "c")}

	r := newRefresher(src, nil, clock)
	require.NoError(t, r.RefreshObservations(context.Background()))

	snap, ok := r.Observations()
	require.True(t, ok)
	assert.Equal(t, now, snap.FetchedAt)
	require.Len(t, snap.Rows, 3)
	// The snapshot carries derived columns, not raw rows.
	for _, row := range snap.Rows {
		assert.NotNil(t, row.FireRiskScore)
		assert.NotEqual(t, domain.Band(""), row.FireRiskBand)
	}
}

func TestRefreshObservations_KeepsLastGoodOnFailure(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC))
	src := &fakeSource{obs: stations("a", "b")}
	r := newRefresher(src, nil, clock)

	require.NoError(t, r.RefreshObservations(context.Background()))
	first, ok := r.Observations()
	require.True(t, ok)

	src.set(nil, &bom.FetchError{URL: "http://example.test", Status: 503})
	err := r.RefreshObservations(context.Background())
	require.Error(t, err)

	// The previous snapshot is still served untouched.
	second, ok := r.Observations()
	require.True(t, ok)
	assert.Equal(t, first.FetchedAt, second.FetchedAt)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestCheckReadiness(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{obs: stations("a")}
	r := newRefresher(src, nil, clock)

	require.Error(t, r.CheckReadiness(context.Background()))
	require.NoError(t, r.RefreshObservations(context.Background()))
	assert.NoError(t, r.CheckReadiness(context.Background()))
}

func TestRefreshForecasts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	idx := 0
	src := &fakeSource{fcst: []domain.LocalityForecast{
		{LocalityName: "Perth", PeriodIndex: &idx},
	}}
	r := newRefresher(src, nil, clock)

	_, ok := r.Forecasts()
	assert.False(t, ok)

	require.NoError(t, r.RefreshForecasts(context.Background()))
	snap, ok := r.Forecasts()
	require.True(t, ok)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "Perth", snap.Rows[0].LocalityName)
}

func TestRefreshObservations_PublishesDerivedRows(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	src := &fakeSource{obs: stations("a", "b")}
	pub := &fakePublisher{}

	r := newRefresher(src, pub, clock)
	require.NoError(t, r.RefreshObservations(context.Background()))

	require.Len(t, pub.published, 1)
	assert.Len(t, pub.published[0], 2)
	assert.NotNil(t, pub.published[0][0].FireRiskScore)
	assert.Equal(t, now, pub.fetchedAt)
}

func TestRefreshObservations_PublishFailureKeepsSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{obs: stations("a")}
	pub := &fakePublisher{err: errors.New("broker down")}

	r := newRefresher(src, pub, clock)
	// Publishing is best-effort: the refresh itself still succeeds.
	require.NoError(t, r.RefreshObservations(context.Background()))
	_, ok := r.Observations()
	assert.True(t, ok)
}

func TestSummarize(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{obs: stations("calm", "mid", "windy")}
	r := newRefresher(src, nil, clock)

	_, ok := r.Summarize()
	assert.False(t, ok, "no data before first refresh")

	require.NoError(t, r.RefreshObservations(context.Background()))
	sum, ok := r.Summarize()
	require.True(t, ok)
	require.NotNil(t, sum.Fire)
	assert.Equal(t, 3, sum.Fire.StationsWithData)
	assert.Equal(t, 2, sum.Rainfall.StationsWithRain)
	require.NotNil(t, sum.Coastal.Exposure)
	assert.Equal(t, "windy", sum.Coastal.Exposure.HighestStation)
}

func TestRun_RefreshesImmediatelyAndStops(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{obs: stations("a"), fcst: []domain.LocalityForecast{{LocalityName: "Perth"}}}
	r := newRefresher(src, nil, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Both feeds refresh once at startup, without any tick.
	require.Eventually(t, func() bool {
		_, obsOK := r.Observations()
		_, fcstOK := r.Forecasts()
		return obsOK && fcstOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRun_TicksTriggerRefresh(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{obs: stations("a")}
	r := newRefresher(src, nil, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.obsCalls >= 1
	}, 2*time.Second, 10*time.Millisecond)

	clock.Advance(10 * time.Minute)

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.obsCalls >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
