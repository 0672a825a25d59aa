// Package catalog resolves cart lines against the catalog service over HTTP.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 5 * time.Second

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type locationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type itemResponse struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	SellerID        string            `json:"sellerId"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	UnitPrice       decimal.Decimal   `json:"unitPrice"`
	Stock           *int              `json:"stock"`
	Location        *locationResponse `json:"location"`
	DurationMinutes *int              `json:"serviceDurationMinutes"`
}

// GetPriceableItem fetches GET {baseURL}/items/{id}.
func (c *Client) GetPriceableItem(ctx context.Context, id string) (ports.CatalogItem, error) {
	endpoint := fmt.Sprintf("%s/items/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.CatalogItem{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.CatalogItem{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ports.CatalogItem{}, errs.NewObjectNotFoundError("catalogItem", id)
	default:
		return ports.CatalogItem{}, fmt.Errorf("catalog: unexpected status %d for item %s", resp.StatusCode, id)
	}

	var body itemResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ports.CatalogItem{}, fmt.Errorf("decode body: %w", err)
	}
	return body.toPort()
}

func (r itemResponse) toPort() (ports.CatalogItem, error) {
	sellerID, err := kernel.UUIDFromString(r.SellerID)
	if err != nil {
		return ports.CatalogItem{}, errs.NewIntegrityErrorWithCause("catalog item seller", err)
	}

	item := ports.CatalogItem{
		ID:          r.ID,
		Kind:        r.Kind,
		SellerID:    sellerID,
		Name:        r.Name,
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
		Stock:       r.Stock,
	}
	if r.Location != nil {
		at, err := kernel.NewGeoPoint(r.Location.Lat, r.Location.Lng)
		if err != nil {
			return ports.CatalogItem{}, errs.NewIntegrityErrorWithCause("catalog item location", err)
		}
		item.Location = &at
	}
	if r.DurationMinutes != nil {
		d := time.Duration(*r.DurationMinutes) * time.Minute
		item.ServiceDuration = &d
	}
	return item, nil
}
