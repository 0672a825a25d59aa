package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrAvailableOrdersQueryIsNotConstructed = errors.New(
	"AvailableOrdersQuery must be created via NewAvailableOrdersQuery constructor",
)

// AvailableOrdersQuery is the feed a courier or broker browses: orders with
// an open window for role within radiusKm of the party's own location.
type AvailableOrdersQuery struct {
	role     party.Role
	partyID  kernel.UUID
	radiusKm float64
	limit    int

	guard guard.ConstructorGuard
}

// NewAvailableOrdersQuery validates the search. A zero limit means DefaultPageSize.
func NewAvailableOrdersQuery(role party.Role, partyID kernel.UUID, radiusKm float64, limit int) (AvailableOrdersQuery, error) {
	var idErr error
	if err := partyID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("partyId", err)
	}
	if err := errors.Join(idErr, checkSearch(role, radiusKm, limit)); err != nil {
		return AvailableOrdersQuery{}, err
	}

	return AvailableOrdersQuery{
		role:     role,
		partyID:  partyID,
		radiusKm: radiusKm,
		limit:    pageSize(limit),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q AvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrAvailableOrdersQueryIsNotConstructed)
}

func (q AvailableOrdersQuery) Role() party.Role     { return q.role }
func (q AvailableOrdersQuery) PartyID() kernel.UUID { return q.partyID }
func (q AvailableOrdersQuery) RadiusKm() float64    { return q.radiusKm }
func (q AvailableOrdersQuery) Limit() int           { return q.limit }

// AvailableOrder is one entry of the feed. Fee is what the party would earn
// by accepting: the delivery fee for couriers, the broker fee for brokers.
type AvailableOrder struct {
	OrderID      kernel.UUID
	Number       order.Number
	Type         order.Type
	Status       order.Status
	SubjectPoint kernel.GeoPoint
	Dropoff      *kernel.GeoPoint
	DistanceKm   float64
	Subtotal     decimal.Decimal
	Fee          decimal.Decimal
}
