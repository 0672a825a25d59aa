package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// CatalogItem is a read-only snapshot of a product or place.
type CatalogItem struct {
	ID          string
	Kind        string
	SellerID    kernel.UUID
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	// Stock is nil for items that are not stock-tracked (places, services).
	Stock    *int
	Location *kernel.GeoPoint
	// ServiceDuration is set for bookable services.
	ServiceDuration *time.Duration
}

// Catalog resolves cart lines to priceable items.
type Catalog interface {
	// GetPriceableItem returns ObjectNotFoundError for an unknown id.
	GetPriceableItem(ctx context.Context, id string) (CatalogItem, error)
}

// EventKind names a notification sent to a party.
type EventKind string

const (
	EventOrderCreated       EventKind = "OrderCreated"
	EventOrderStatusChanged EventKind = "OrderStatusChanged"
	EventOrderCancelled     EventKind = "OrderCancelled"
	EventAssignmentOpened   EventKind = "AssignmentOpened"
	EventRoleAssigned       EventKind = "RoleAssigned"
	EventAssignmentExpired  EventKind = "AssignmentExpired"
)

// Notifier is a fire-and-forget sink. The engine never waits for delivery
// and treats a failed Notify as a logged warning, not an error.
type Notifier interface {
	Notify(ctx context.Context, partyID kernel.UUID, kind EventKind, orderID kernel.UUID) error
}

// ReviewSink is told once about every completed order.
type ReviewSink interface {
	RecordCompletion(ctx context.Context, orderID kernel.UUID) error
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (kernel.GeoPoint, error)
}

// IdempotencyStore remembers which order a checkout key produced.
type IdempotencyStore interface {
	// Reserve binds key within scope to orderID unless it is already bound.
	// It returns the bound order id and whether this call made the binding.
	Reserve(ctx context.Context, scope kernel.UUID, key string, orderID kernel.UUID) (kernel.UUID, bool, error)

	// Release drops a binding made by Reserve, used when checkout fails.
	Release(ctx context.Context, scope kernel.UUID, key string) error
}
