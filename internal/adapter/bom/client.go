// Package bom fetches and parses Bureau of Meteorology XML feeds.
//
// All feed-structure knowledge lives here: if the BOM changes its XML layout,
// this is the only package that needs to follow.
package bom

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
)

// The BOM rejects requests without a browser-like User-Agent, so the client
// mimics a desktop Chrome request.
var requestHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// Client fetches the observation and forecast feeds. It does not retry;
// retry policy belongs to the refresh loop that owns the fetch cadence.
type Client struct {
	observationsURL string
	forecastsURL    string
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewClient creates a feed client with the given endpoints and timeout.
func NewClient(observationsURL, forecastsURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		observationsURL: observationsURL,
		forecastsURL:    forecastsURL,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          logger,
	}
}

// FetchObservations retrieves and parses the current station observations.
func (c *Client) FetchObservations(ctx context.Context) ([]domain.StationObservation, error) {
	body, err := c.fetch(ctx, c.observationsURL)
	if err != nil {
		return nil, err
	}
	rows, err := ParseObservations(body)
	if err != nil {
		return nil, &ParseError{URL: c.observationsURL, Err: err}
	}
	c.logger.Debug("observations fetched", "url", c.observationsURL, "rows", len(rows))
	return rows, nil
}

// FetchForecasts retrieves and parses the locality forecasts.
func (c *Client) FetchForecasts(ctx context.Context) ([]domain.LocalityForecast, error) {
	body, err := c.fetch(ctx, c.forecastsURL)
	if err != nil {
		return nil, err
	}
	rows, err := ParseForecasts(body)
	if err != nil {
		return nil, &ParseError{URL: c.forecastsURL, Err: err}
	}
	c.logger.Debug("forecasts fetched", "url", c.forecastsURL, "rows", len(rows))
	return rows, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for keep-alive
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}
