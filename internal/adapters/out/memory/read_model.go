package memory

import (
	"context"
	"slices"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ReadModel answers listings from the committed orders of a Store.
type ReadModel struct {
	store *Store
}

func NewReadModel(store *Store) *ReadModel {
	return &ReadModel{store: store}
}

func (m *ReadModel) ListOrders(_ context.Context, filter ports.OrderFilter) ([]ports.OrderSummary, error) {
	if filter.PartyID != nil && filter.Role.Validate() != nil {
		return nil, errs.NewValueIsRequiredError("role")
	}

	var rows []order.Snapshot
	for _, snap := range m.store.orderSnapshots() {
		if matches(snap, filter) {
			rows = append(rows, snap)
		}
	}
	slices.SortFunc(rows, func(a, b order.Snapshot) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})

	rows = page(rows, filter.Offset, filter.Limit)
	out := make([]ports.OrderSummary, 0, len(rows))
	for _, snap := range rows {
		out = append(out, summaryOf(snap))
	}
	return out, nil
}

func (m *ReadModel) SellerSales(_ context.Context, sellerID kernel.UUID, from, to time.Time) (ports.SalesSummary, error) {
	sum := ports.SalesSummary{SellerID: sellerID, From: from, To: to, Total: decimal.Zero}
	for _, snap := range m.store.orderSnapshots() {
		if !snap.SellerID.IsEqual(sellerID) || snap.Status != order.Completed {
			continue
		}
		if snap.CreatedAt.Before(from) || !snap.CreatedAt.Before(to) {
			continue
		}
		sum.OrderCount++
		sum.Total = sum.Total.Add(snap.Breakdown.Total)
	}
	return sum, nil
}

func matches(snap order.Snapshot, f ports.OrderFilter) bool {
	if f.PartyID != nil && !holds(snap, *f.PartyID, f.Role) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, snap.Status) {
		return false
	}
	if f.From != nil && snap.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !snap.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}

func holds(snap order.Snapshot, id kernel.UUID, role party.Role) bool {
	switch role {
	case party.Buyer:
		return snap.BuyerID.IsEqual(id)
	case party.Seller:
		return snap.SellerID.IsEqual(id)
	case party.Courier:
		return snap.CourierID != nil && snap.CourierID.IsEqual(id)
	case party.Broker:
		return snap.BrokerID != nil && snap.BrokerID.IsEqual(id)
	default:
		return false
	}
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func summaryOf(snap order.Snapshot) ports.OrderSummary {
	return ports.OrderSummary{
		ID:            snap.ID,
		Number:        snap.Number.String(),
		Type:          snap.Type,
		Status:        snap.Status,
		PaymentStatus: snap.PaymentStatus,
		BuyerID:       snap.BuyerID,
		SellerID:      snap.SellerID,
		CourierID:     snap.CourierID,
		BrokerID:      snap.BrokerID,
		Total:         snap.Breakdown.Total,
		CreatedAt:     snap.CreatedAt,
	}
}
