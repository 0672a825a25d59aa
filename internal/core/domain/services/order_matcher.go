package services

import (
	"context"
	"iter"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
)

// OpenOrderSource lists orders with an open assignment window for role whose
// subject point lies inside box.
type OpenOrderSource interface {
	ListOpenForAssignment(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*order.Order, error)
}

type OrderMatch struct {
	Order      *order.Order
	DistanceKm float64
}

// OrderMatcher is the proximity search turned around: instead of parties
// near an order it finds open orders near a party. It backs the courier and
// broker availability feeds.
type OrderMatcher struct {
	source OpenOrderSource
}

func NewOrderMatcher(source OpenOrderSource) *OrderMatcher {
	return &OrderMatcher{source: source}
}

// FindOrders yields orders open for role within radiusKm of origin, nearest
// first. Orders the searching party is already buyer or seller of are skipped.
func (m *OrderMatcher) FindOrders(
	ctx context.Context,
	role party.Role,
	searcher kernel.UUID,
	origin kernel.GeoPoint,
	radiusKm float64,
) iter.Seq2[OrderMatch, error] {
	return func(yield func(OrderMatch, error) bool) {
		if radiusKm < 0 || origin.Validate() != nil {
			return
		}

		orders, err := m.source.ListOpenForAssignment(ctx, role, kernel.BoundingBoxAround(origin, radiusKm))
		if err != nil {
			yield(OrderMatch{}, err)
			return
		}

		open := orders[:0:0]
		for _, o := range orders {
			if o.IsOpenFor(role) && !o.HasRole(searcher, party.Buyer) && !o.HasRole(searcher, party.Seller) {
				open = append(open, o)
			}
		}

		locate := func(o *order.Order) *kernel.GeoPoint { return o.SubjectPoint(role) }
		for r := range Nearest(origin, radiusKm, open, locate) {
			if !yield(OrderMatch{Order: r.Item, DistanceKm: r.DistanceKm}, nil) {
				return
			}
		}
	}
}
