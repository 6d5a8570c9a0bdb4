package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Geocoder converts a planar source coordinate into a geodetic one.
type Geocoder interface {
	ReverseProject(ctx context.Context, easting float64, northing float64) (latitude float64, longitude float64, err error)
}

// ElevationService looks up the elevation in metres for a geodetic
// coordinate. Optional collaborator, may be absent entirely.
type ElevationService interface {
	Elevation(ctx context.Context, latitude float64, longitude float64) (float64, error)
}

// RetryPolicy bounds the per call retry behaviour. Timeouts apply per
// external call, not per batch.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	RequestTimeout  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      5,
		InitialInterval: 500 * time.Millisecond,
		RequestTimeout:  10 * time.Second,
	}
}

func (policy RetryPolicy) backoff(ctx context.Context) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = policy.InitialInterval
	return backoff.WithMaxRetries(backoff.WithContext(exponential, ctx), policy.MaxRetries)
}

// classifyStatus maps an HTTP status to the error taxonomy. Auth and
// quota failures are fatal, server side trouble is worth retrying.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized,
		status == http.StatusPaymentRequired,
		status == http.StatusForbidden:
		return backoff.Permanent(&FatalError{Status: status})
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= 500:
		return &TransientError{Status: status}
	default:
		return backoff.Permanent(fmt.Errorf("unexpected status %d", status))
	}
}

// HTTPGeocoder calls an external reverse projection service.
type HTTPGeocoder struct {
	Endpoint string
	APIKey   string

	HTTPClient *http.Client
	Retry      RetryPolicy
}

type geocodeResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (g *HTTPGeocoder) ReverseProject(ctx context.Context, easting float64, northing float64) (float64, float64, error) {
	query := url.Values{}
	query.Set("x", fmt.Sprintf("%.3f", easting))
	query.Set("y", fmt.Sprintf("%.3f", northing))
	requestURL := fmt.Sprintf("%s?%s", g.Endpoint, query.Encode())

	response, err := backoff.RetryWithData(func() (*geocodeResponse, error) {
		return doJSONRequest[geocodeResponse](ctx, g.HTTPClient, requestURL, g.APIKey, g.Retry.RequestTimeout)
	}, g.Retry.backoff(ctx))
	if err != nil {
		return 0, 0, err
	}

	return response.Latitude, response.Longitude, nil
}

// HTTPElevationService calls an external elevation service.
type HTTPElevationService struct {
	Endpoint string
	APIKey   string

	HTTPClient *http.Client
	Retry      RetryPolicy
}

type elevationResponse struct {
	Elevation float64 `json:"elevation"`
}

func (s *HTTPElevationService) Elevation(ctx context.Context, latitude float64, longitude float64) (float64, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", latitude))
	query.Set("longitude", fmt.Sprintf("%.6f", longitude))
	requestURL := fmt.Sprintf("%s?%s", s.Endpoint, query.Encode())

	response, err := backoff.RetryWithData(func() (*elevationResponse, error) {
		return doJSONRequest[elevationResponse](ctx, s.HTTPClient, requestURL, s.APIKey, s.Retry.RequestTimeout)
	}, s.Retry.backoff(ctx))
	if err != nil {
		return 0, err
	}

	return response.Elevation, nil
}

func doJSONRequest[T any](ctx context.Context, client *http.Client, requestURL string, apiKey string, timeout time.Duration) (*T, error) {
	if client == nil {
		client = http.DefaultClient
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if apiKey != "" {
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}

	response, err := client.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		// Connection failures and per call timeouts are transient.
		return nil, &TransientError{Err: err}
	}
	defer response.Body.Close()

	if statusErr := classifyStatus(response.StatusCode); statusErr != nil {
		return nil, statusErr
	}

	var decoded T
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}

	return &decoded, nil
}
