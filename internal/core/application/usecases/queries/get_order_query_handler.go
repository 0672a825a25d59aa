package queries

import (
	"context"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
)

// GetOrderQueryHandler returns an order to one of its parties. Anyone else,
// including couriers browsing an open window, gets NotAuthorizedError; they
// see open orders through the AvailableOrders feed.
type GetOrderQueryHandler struct {
	orders OrderReader
}

func NewGetOrderQueryHandler(orders OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderDetail, error) {
	if err := query.Validate(); err != nil {
		return OrderDetail{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return OrderDetail{}, err
	}

	if !o.HasParty(query.RequesterID()) {
		return OrderDetail{}, errs.NewNotAuthorizedError(query.RequesterID().String(), "view order")
	}

	return toDetail(o), nil
}

func toDetail(o *order.Order) OrderDetail {
	s := o.Snapshot()
	return OrderDetail{
		ID:                 s.ID,
		Number:             s.Number,
		Type:               s.Type,
		Status:             s.Status,
		PaymentMethod:      s.PaymentMethod,
		PaymentStatus:      s.PaymentStatus,
		TransactionRef:     s.TransactionRef,
		BuyerID:            s.BuyerID,
		SellerID:           s.SellerID,
		CourierID:          s.CourierID,
		BrokerID:           s.BrokerID,
		Items:              s.Items,
		Breakdown:          s.Breakdown,
		Delivery:           s.Delivery,
		DeliveryDistanceKm: o.DeliveryDistanceKm(),
		DeliveredAt:        s.DeliveredAt,
		Service:            s.Service,
		CancelReason:       s.CancelReason,
		CourierWindowAt:    o.AssignmentWindowOpenedAt(party.Courier),
		BrokerWindowAt:     o.AssignmentWindowOpenedAt(party.Broker),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		Version:            s.Version,
		Transitions:        s.Transitions,
	}
}
