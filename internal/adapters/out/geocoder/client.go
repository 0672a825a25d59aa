// Package geocoder turns delivery addresses into coordinates.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type geocodeResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocode calls GET {baseURL}/geocode?address=... . An address the service
// cannot place is reported as ObjectNotFoundError.
func (c *Client) Geocode(ctx context.Context, address string) (kernel.GeoPoint, error) {
	endpoint := c.baseURL + "/geocode?" + url.Values{"address": {address}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return kernel.GeoPoint{}, errs.NewObjectNotFoundError("address", address)
	default:
		return kernel.GeoPoint{}, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("decode body: %w", err)
	}

	at, err := kernel.NewGeoPoint(body.Lat, body.Lng)
	if err != nil {
		return kernel.GeoPoint{}, errs.NewIntegrityErrorWithCause("geocoded point", err)
	}
	return at, nil
}

// Disabled is used when no geocoding service is configured. Every address
// is unresolvable, so checkout asks for coordinates instead.
type Disabled struct{}

func (Disabled) Geocode(_ context.Context, address string) (kernel.GeoPoint, error) {
	return kernel.GeoPoint{}, errs.NewObjectNotFoundError("address", address)
}
