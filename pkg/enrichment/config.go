package enrichment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/netzplan/netzplan/pkg/util"
)

// Config is the enrichment stage's environment surface. Only the
// geocoder API key is mandatory, everything else has a default and
// the elevation service is optional outright.
type Config struct {
	GeocoderEndpoint  string
	GeocoderAPIKey    string
	ElevationEndpoint string

	Concurrency     int
	MaxRetries      uint64
	InitialInterval time.Duration
	RequestTimeout  time.Duration
	CacheExpiration time.Duration
}

func ConfigFromEnvironment() (*Config, error) {
	config := &Config{
		GeocoderEndpoint:  util.GetEnvironmentVariable("NETZPLAN_GEOCODER_ENDPOINT", "https://geocoder.netzplan.dev/v1/transform"),
		GeocoderAPIKey:    util.GetEnvironmentVariable("NETZPLAN_GEOCODER_API_KEY", ""),
		ElevationEndpoint: util.GetEnvironmentVariable("NETZPLAN_ELEVATION_ENDPOINT", ""),
	}

	if config.GeocoderAPIKey == "" {
		return nil, errors.New("NETZPLAN_GEOCODER_API_KEY must be set")
	}

	concurrency, err := strconv.Atoi(util.GetEnvironmentVariable("NETZPLAN_ENRICHMENT_CONCURRENCY", "8"))
	if err != nil || concurrency < 1 {
		return nil, errors.New("NETZPLAN_ENRICHMENT_CONCURRENCY must be a positive integer")
	}
	config.Concurrency = concurrency

	maxRetries, err := strconv.ParseUint(util.GetEnvironmentVariable("NETZPLAN_ENRICHMENT_MAX_RETRIES", "5"), 10, 64)
	if err != nil {
		return nil, errors.New("NETZPLAN_ENRICHMENT_MAX_RETRIES must be a non-negative integer")
	}
	config.MaxRetries = maxRetries

	config.InitialInterval, err = time.ParseDuration(util.GetEnvironmentVariable("NETZPLAN_ENRICHMENT_BACKOFF_INTERVAL", "500ms"))
	if err != nil {
		return nil, errors.New("NETZPLAN_ENRICHMENT_BACKOFF_INTERVAL must be a duration")
	}

	config.RequestTimeout, err = time.ParseDuration(util.GetEnvironmentVariable("NETZPLAN_ENRICHMENT_TIMEOUT", "10s"))
	if err != nil {
		return nil, errors.New("NETZPLAN_ENRICHMENT_TIMEOUT must be a duration")
	}

	config.CacheExpiration, err = time.ParseDuration(util.GetEnvironmentVariable("NETZPLAN_ENRICHMENT_CACHE_EXPIRATION", "720h"))
	if err != nil {
		return nil, errors.New("NETZPLAN_ENRICHMENT_CACHE_EXPIRATION must be a duration")
	}

	return config, nil
}

// NewEnricher wires the HTTP backed services up from a Config.
func NewEnricher(config *Config, positionCache Cache) *Enricher {
	retry := RetryPolicy{
		MaxRetries:      config.MaxRetries,
		InitialInterval: config.InitialInterval,
		RequestTimeout:  config.RequestTimeout,
	}

	httpClient := &http.Client{}

	enricher := &Enricher{
		Cache: positionCache,
		Geocoder: &HTTPGeocoder{
			Endpoint:   config.GeocoderEndpoint,
			APIKey:     config.GeocoderAPIKey,
			HTTPClient: httpClient,
			Retry:      retry,
		},
		Concurrency: config.Concurrency,
	}

	if config.ElevationEndpoint != "" {
		enricher.Elevation = &HTTPElevationService{
			Endpoint:   config.ElevationEndpoint,
			APIKey:     config.GeocoderAPIKey,
			HTTPClient: httpClient,
			Retry:      retry,
		}
	}

	return enricher
}
