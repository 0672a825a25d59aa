package queries

import (
	"context"

	"marketplace/internal/core/ports"
)

// ListOrdersQueryHandler serves per-role order listings, newest first.
type ListOrdersQueryHandler struct {
	readModel ports.OrderReadModel
}

func NewListOrdersQueryHandler(readModel ports.OrderReadModel) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{readModel: readModel}
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]ports.OrderSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.readModel.ListOrders(ctx, query.Filter())
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = make([]ports.OrderSummary, 0)
	}
	return orders, nil
}
