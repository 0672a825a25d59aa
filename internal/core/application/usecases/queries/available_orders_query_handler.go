package queries

import (
	"context"
	"errors"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// AvailableOrdersQueryHandler builds the courier and broker feeds, nearest
// first.
//
// Business rules:
//   - the searching party must be registered, hold the role and be active
//   - the search is centred on the party's registered location
//   - orders the party is buyer or seller of are left out
type AvailableOrdersQueryHandler struct {
	parties  PartyReader
	matcher  *services.OrderMatcher
	schedule pricing.FeeSchedule
}

func NewAvailableOrdersQueryHandler(
	parties PartyReader,
	matcher *services.OrderMatcher,
	schedule pricing.FeeSchedule,
) AvailableOrdersQueryHandler {
	return AvailableOrdersQueryHandler{parties: parties, matcher: matcher, schedule: schedule}
}

func (h AvailableOrdersQueryHandler) Handle(ctx context.Context, query AvailableOrdersQuery) ([]AvailableOrder, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	searcher, err := h.parties.GetParty(ctx, query.PartyID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, errs.NewNotAuthorizedError(query.PartyID().String(), "browse "+query.Role().String()+" feed unregistered")
	}
	if err != nil {
		return nil, err
	}
	if !searcher.Roles().Has(query.Role()) || !searcher.IsActive() {
		return nil, errs.NewNotAuthorizedError(query.PartyID().String(), "browse "+query.Role().String()+" feed")
	}
	if searcher.Location() == nil {
		return nil, errs.NewValueIsRequiredError("party location")
	}

	matches, err := services.Take(
		h.matcher.FindOrders(ctx, query.Role(), query.PartyID(), *searcher.Location(), query.RadiusKm()),
		query.Limit(),
	)
	if err != nil {
		return nil, err
	}

	feed := make([]AvailableOrder, 0, len(matches))
	for _, m := range matches {
		feed = append(feed, h.toAvailable(m, query.Role()))
	}
	return feed, nil
}

func (h AvailableOrdersQueryHandler) toAvailable(m services.OrderMatch, role party.Role) AvailableOrder {
	o := m.Order
	entry := AvailableOrder{
		OrderID:    o.ID(),
		Number:     o.Number(),
		Type:       o.Type(),
		Status:     o.Status(),
		Dropoff:    o.Delivery().Dropoff,
		DistanceKm: m.DistanceKm,
		Subtotal:   o.Breakdown().Subtotal,
		Fee:        h.prospectiveFee(o, role),
	}
	if p := o.SubjectPoint(role); p != nil {
		entry.SubjectPoint = *p
	}
	return entry
}

func (h AvailableOrdersQueryHandler) prospectiveFee(o *order.Order, role party.Role) decimal.Decimal {
	if role == party.Courier {
		return pricing.Round(h.schedule.DeliveryFee(o.DeliveryDistanceKm()))
	}
	return pricing.Round(o.Breakdown().Subtotal.Mul(h.schedule.BrokerRate()))
}
