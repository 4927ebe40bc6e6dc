// Package pipeline orchestrates the periodic fetch-parse-derive cycle and
// holds the last good result for each feed.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/bom-hazard-etl/internal/adapter/bom"
	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
	"github.com/couchcryptid/bom-hazard-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// FeedSource fetches and parses the two upstream feeds.
type FeedSource interface {
	FetchObservations(ctx context.Context) ([]domain.StationObservation, error)
	FetchForecasts(ctx context.Context) ([]domain.LocalityForecast, error)
}

// Publisher forwards derived observation rows to a sink. Pass nil to New to
// disable publishing.
type Publisher interface {
	PublishObservations(ctx context.Context, rows []domain.StationObservation, fetchedAt time.Time) error
}

// ObservationSnapshot is one complete derived observation table plus the time
// it was fetched.
type ObservationSnapshot struct {
	Rows      []domain.StationObservation `json:"rows"`
	FetchedAt time.Time                   `json:"fetched_at"`
}

// ForecastSnapshot is one complete forecast table plus its fetch time.
type ForecastSnapshot struct {
	Rows      []domain.LocalityForecast `json:"rows"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// Summaries bundles the per-agency reductions of the current observation
// snapshot. Fire is nil when no station has a usable fire risk score.
type Summaries struct {
	Fire      *domain.ScoreSummary   `json:"fire,omitempty"`
	Rainfall  domain.RainfallSummary `json:"rainfall"`
	Coastal   domain.CoastalSummary  `json:"coastal"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// Refresher runs one refresh loop per feed and serves consistent snapshots of
// the last successful run. A failed refresh keeps the previous snapshot; the
// refresher never serves a partially updated table because snapshots are
// replaced wholesale under the lock.
type Refresher struct {
	source    FeedSource
	publisher Publisher
	riskCfg   domain.RiskConfig
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	obsInterval  time.Duration
	fcstInterval time.Duration

	mu   sync.RWMutex
	obs  *ObservationSnapshot
	fcst *ForecastSnapshot
}

// New creates a Refresher. publisher may be nil.
func New(source FeedSource, publisher Publisher, riskCfg domain.RiskConfig, obsInterval, fcstInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Refresher {
	return &Refresher{
		source:       source,
		publisher:    publisher,
		riskCfg:      riskCfg,
		logger:       logger,
		metrics:      metrics,
		clock:        clock,
		obsInterval:  obsInterval,
		fcstInterval: fcstInterval,
	}
}

// CheckReadiness returns nil once at least one observation refresh has
// succeeded.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.obs == nil {
		return errors.New("no successful observation refresh yet")
	}
	return nil
}

// Observations returns a copy of the latest observation snapshot.
// ok is false before the first successful refresh.
func (r *Refresher) Observations() (ObservationSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.obs == nil {
		return ObservationSnapshot{}, false
	}
	rows := make([]domain.StationObservation, len(r.obs.Rows))
	copy(rows, r.obs.Rows)
	return ObservationSnapshot{Rows: rows, FetchedAt: r.obs.FetchedAt}, true
}

// Forecasts returns a copy of the latest forecast snapshot.
func (r *Refresher) Forecasts() (ForecastSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fcst == nil {
		return ForecastSnapshot{}, false
	}
	rows := make([]domain.LocalityForecast, len(r.fcst.Rows))
	copy(rows, r.fcst.Rows)
	return ForecastSnapshot{Rows: rows, FetchedAt: r.fcst.FetchedAt}, true
}

// Summarize reduces the current observation snapshot for presentation.
// ok is false before the first successful refresh.
func (r *Refresher) Summarize() (Summaries, bool) {
	snap, ok := r.Observations()
	if !ok {
		return Summaries{}, false
	}
	s := Summaries{
		Rainfall:  domain.SummarizeRainfall(snap.Rows),
		Coastal:   domain.SummarizeCoastal(snap.Rows, r.riskCfg),
		FetchedAt: snap.FetchedAt,
	}
	if fire, ok := domain.SummarizeScore(snap.Rows, domain.FireRisk); ok {
		s.Fire = &fire
	}
	return s, true
}

// RefreshObservations runs one fetch-parse-derive cycle for the observation
// feed and replaces the snapshot on success. The caller must not run two
// refreshes of the same feed concurrently.
func (r *Refresher) RefreshObservations(ctx context.Context) error {
	start := r.clock.Now()
	rows, err := r.source.FetchObservations(ctx)
	if err != nil {
		r.recordFailure(observability.FeedObservations, err)
		return err
	}

	derived := domain.ApplyDerived(rows, r.riskCfg)
	fetchedAt := r.clock.Now()

	r.mu.Lock()
	r.obs = &ObservationSnapshot{Rows: derived, FetchedAt: fetchedAt}
	r.mu.Unlock()

	r.recordSuccess(observability.FeedObservations, start, fetchedAt, len(derived))
	r.metrics.PressureAlerts.Set(float64(countPressureAlerts(derived)))

	if r.publisher != nil {
		if err := r.publisher.PublishObservations(ctx, derived, fetchedAt); err != nil {
			// Publishing is best-effort: the snapshot is already live and
			// the next cycle republishes the full table.
			r.logger.Warn("publish observations failed", "error", err, "rows", len(derived))
		} else {
			r.metrics.RowsPublished.Add(float64(len(derived)))
		}
	}
	return nil
}

// RefreshForecasts runs one fetch-parse cycle for the forecast feed.
func (r *Refresher) RefreshForecasts(ctx context.Context) error {
	start := r.clock.Now()
	rows, err := r.source.FetchForecasts(ctx)
	if err != nil {
		r.recordFailure(observability.FeedForecasts, err)
		return err
	}

	fetchedAt := r.clock.Now()
	r.mu.Lock()
	r.fcst = &ForecastSnapshot{Rows: rows, FetchedAt: fetchedAt}
	r.mu.Unlock()

	r.recordSuccess(observability.FeedForecasts, start, fetchedAt, len(rows))
	return nil
}

// Run drives both refresh loops until the context is cancelled. Each feed
// refreshes immediately, then on its own interval, with exponential backoff
// after failures. Feeds are independent; the same feed is never refreshed
// concurrently.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started",
		"obs_interval", r.obsInterval, "forecast_interval", r.fcstInterval)
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.runFeed(ctx, observability.FeedObservations, r.obsInterval, r.RefreshObservations)
	}()
	go func() {
		defer wg.Done()
		r.runFeed(ctx, observability.FeedForecasts, r.fcstInterval, r.RefreshForecasts)
	}()
	wg.Wait()

	r.logger.Info("refresher stopped", "reason", ctx.Err())
	return nil
}

// runFeed is the per-feed loop: refresh, then wait for the next tick.
// Failures retry with exponential backoff (200ms doubling to a 5s cap) so an
// upstream outage cannot produce a tight fetch loop; the backoff resets on
// the first success.
func (r *Refresher) runFeed(ctx context.Context, feed string, interval time.Duration, refresh func(context.Context) error) {
	const initialBackoff = 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	backoff := initialBackoff
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("refresh failed, keeping previous snapshot",
				"feed", feed, "error", err, "retry_in", backoff)
			if !r.sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

func (r *Refresher) recordSuccess(feed string, start, fetchedAt time.Time, rows int) {
	r.metrics.FetchesTotal.WithLabelValues(feed, "success").Inc()
	r.metrics.FetchDuration.WithLabelValues(feed).Observe(fetchedAt.Sub(start).Seconds())
	r.metrics.RowsParsed.WithLabelValues(feed).Observe(float64(rows))
	r.metrics.LastRefreshUnix.WithLabelValues(feed).Set(float64(fetchedAt.Unix()))
	r.logger.Info("feed refreshed", "feed", feed, "rows", rows)
}

func (r *Refresher) recordFailure(feed string, err error) {
	outcome := "fetch_error"
	var parseErr *bom.ParseError
	if errors.As(err, &parseErr) {
		outcome = "parse_error"
	}
	r.metrics.FetchesTotal.WithLabelValues(feed, outcome).Inc()
	r.metrics.RefreshFailures.WithLabelValues(feed).Inc()
}

func (r *Refresher) sleep(ctx context.Context, d time.Duration) bool {
	timer := r.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func countPressureAlerts(rows []domain.StationObservation) int {
	var n int
	for i := range rows {
		if rows[i].PressureAlert {
			n++
		}
	}
	return n
}
