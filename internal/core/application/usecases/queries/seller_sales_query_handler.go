package queries

import (
	"context"

	"marketplace/internal/core/ports"
)

// SellerSalesQueryHandler reports the completed sales of one seller. The
// inbound adapter only ever asks on behalf of the authenticated seller.
type SellerSalesQueryHandler struct {
	readModel ports.OrderReadModel
}

func NewSellerSalesQueryHandler(readModel ports.OrderReadModel) SellerSalesQueryHandler {
	return SellerSalesQueryHandler{readModel: readModel}
}

func (h SellerSalesQueryHandler) Handle(ctx context.Context, query SellerSalesQuery) (ports.SalesSummary, error) {
	if err := query.Validate(); err != nil {
		return ports.SalesSummary{}, err
	}
	return h.readModel.SellerSales(ctx, query.SellerID(), query.From(), query.To())
}
