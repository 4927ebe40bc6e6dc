package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	ObservationsURL string
	ForecastsURL    string
	FetchTimeout    time.Duration

	ObsRefreshInterval      time.Duration
	ForecastRefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka sink configuration. The sink is enabled when a topic is set.
	KafkaBrokers   []string
	KafkaSinkTopic string
	SinkEnabled    bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	fetchTimeout, err := durationEnv("FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	obsInterval, err := durationEnv("OBS_REFRESH_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	fcstInterval, err := durationEnv("FORECAST_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	sinkTopic := os.Getenv("KAFKA_SINK_TOPIC")

	cfg := &Config{
		ObservationsURL: envOrDefault("OBS_FEED_URL", "http://www.bom.gov.au/fwo/IDW60920.xml"),
		ForecastsURL:    envOrDefault("FORECAST_FEED_URL", "http://www.bom.gov.au/fwo/IDW14199.xml"),
		FetchTimeout:    fetchTimeout,

		ObsRefreshInterval:      obsInterval,
		ForecastRefreshInterval: fcstInterval,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:   splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sinkTopic,
		SinkEnabled:    sinkTopic != "",
	}

	if cfg.ObservationsURL == "" {
		return nil, errors.New("OBS_FEED_URL is required")
	}
	if cfg.ForecastsURL == "" {
		return nil, errors.New("FORECAST_FEED_URL is required")
	}
	if cfg.SinkEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_SINK_TOPIC is set but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
