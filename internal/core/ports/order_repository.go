// Package ports defines the contracts between the order engine and its
// infrastructure: persistence, the party directory, and the external
// collaborators (catalog, notifications, reviews, geocoding).
package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order together with its items and transition log.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order as a compare-and-set on
	// its version: the write succeeds only if the stored version still equals
	// aggregate.ExpectedVersion(). A lost race is reported as a
	// VersionIsInvalidError and nothing is written.
	//
	// On success the aggregate is marked persisted.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its items and transition log.
	// Returns ObjectNotFoundError for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListOpenForAssignment returns non-terminal orders with an open window
	// for role whose pickup point lies inside box.
	ListOpenForAssignment(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*order.Order, error)

	// ListAssignmentExpired returns orders whose window for role was opened
	// before openedBefore and is still open.
	ListAssignmentExpired(ctx context.Context, role party.Role, openedBefore time.Time) ([]*order.Order, error)
}
