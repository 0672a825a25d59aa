package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"

	"github.com/shopspring/decimal"
)

// OrderFilter selects orders for a listing. Zero fields do not filter.
type OrderFilter struct {
	PartyID  *kernel.UUID
	Role     party.Role
	Statuses []order.Status
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// OrderSummary is one row of an order listing.
type OrderSummary struct {
	ID            kernel.UUID
	Number        string
	Type          order.Type
	Status        order.Status
	PaymentStatus order.PaymentStatus
	BuyerID       kernel.UUID
	SellerID      kernel.UUID
	CourierID     *kernel.UUID
	BrokerID      *kernel.UUID
	Total         decimal.Decimal
	CreatedAt     time.Time
}

// SalesSummary aggregates a seller's completed orders over a window.
type SalesSummary struct {
	SellerID   kernel.UUID
	From       time.Time
	To         time.Time
	OrderCount int
	Total      decimal.Decimal
}

// OrderReadModel serves the listing side. Listings are sorted by creation
// time descending, ties broken by id.
type OrderReadModel interface {
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderSummary, error)

	// SellerSales sums the total of orders completed in [from, to), keyed on
	// creation time.
	SellerSales(ctx context.Context, sellerID kernel.UUID, from, to time.Time) (SalesSummary, error)
}
