// Package readmodel answers order listings and sales aggregates with plain
// SQL over sqlx. It reads the tables written by orderrepo and never writes.
package readmodel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const summaryColumns = "id, number, type, status, payment_status, buyer_id, seller_id, courier_id, broker_id, total, created_at"

type SQLOrderReadModel struct {
	db *sqlx.DB
}

func NewSQLOrderReadModel(db *sqlx.DB) *SQLOrderReadModel {
	return &SQLOrderReadModel{db: db}
}

type summaryRow struct {
	ID            uuid.UUID       `db:"id"`
	Number        string          `db:"number"`
	Type          string          `db:"type"`
	Status        string          `db:"status"`
	PaymentStatus string          `db:"payment_status"`
	BuyerID       uuid.UUID       `db:"buyer_id"`
	SellerID      uuid.UUID       `db:"seller_id"`
	CourierID     uuid.NullUUID   `db:"courier_id"`
	BrokerID      uuid.NullUUID   `db:"broker_id"`
	Total         decimal.Decimal `db:"total"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r *SQLOrderReadModel) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]ports.OrderSummary, error) {
	query, args, err := listQuery(filter)
	if err != nil {
		return nil, err
	}

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]ports.OrderSummary, 0, len(rows))
	for _, row := range rows {
		s, err := row.toSummary()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// listQuery builds the statement with ? placeholders; ListOrders rebinds
// them for the driver.
func listQuery(filter ports.OrderFilter) (string, []any, error) {
	var (
		where []string
		args  []any
	)

	if filter.PartyID != nil {
		column, err := partyColumn(filter.Role)
		if err != nil {
			return "", nil, err
		}
		where = append(where, column+" = ?")
		args = append(args, filter.PartyID.Bytes())
	}
	if len(filter.Statuses) > 0 {
		names := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			names = append(names, s.String())
		}
		where = append(where, "status = ANY(?)")
		args = append(args, pq.Array(names))
	}
	if filter.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "created_at < ?")
		args = append(args, *filter.To)
	}

	var b strings.Builder
	b.WriteString("SELECT " + summaryColumns + " FROM orders")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		b.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}
	return b.String(), args, nil
}

func partyColumn(role party.Role) (string, error) {
	switch role {
	case party.Buyer:
		return "buyer_id", nil
	case party.Seller:
		return "seller_id", nil
	case party.Courier:
		return "courier_id", nil
	case party.Broker:
		return "broker_id", nil
	default:
		return "", errs.NewValueIsRequiredError("role")
	}
}

const salesQuery = `SELECT COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS total
	FROM orders
	WHERE seller_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4`

type salesRow struct {
	OrderCount int             `db:"order_count"`
	Total      decimal.Decimal `db:"total"`
}

func (r *SQLOrderReadModel) SellerSales(
	ctx context.Context,
	sellerID kernel.UUID,
	from, to time.Time,
) (ports.SalesSummary, error) {
	var row salesRow
	err := r.db.GetContext(ctx, &row, salesQuery, sellerID.Bytes(), order.Completed.String(), from, to)
	if err != nil {
		return ports.SalesSummary{}, fmt.Errorf("seller sales: %w", err)
	}

	return ports.SalesSummary{
		SellerID:   sellerID,
		From:       from,
		To:         to,
		OrderCount: row.OrderCount,
		Total:      row.Total,
	}, nil
}

func (row summaryRow) toSummary() (ports.OrderSummary, error) {
	orderType, typeErr := order.ParseType(row.Type)
	status, statusErr := order.ParseStatus(row.Status)
	payment, paymentErr := order.ParsePaymentStatus(row.PaymentStatus)
	if err := errors.Join(typeErr, statusErr, paymentErr); err != nil {
		return ports.OrderSummary{}, errs.NewIntegrityErrorWithCause("stored order is valid", err)
	}

	id, idErr := kernel.UUIDFromBytes(row.ID[:])
	buyerID, buyerErr := kernel.UUIDFromBytes(row.BuyerID[:])
	sellerID, sellerErr := kernel.UUIDFromBytes(row.SellerID[:])
	courierID, courierErr := nullableID(row.CourierID)
	brokerID, brokerErr := nullableID(row.BrokerID)
	if err := errors.Join(idErr, buyerErr, sellerErr, courierErr, brokerErr); err != nil {
		return ports.OrderSummary{}, errs.NewIntegrityErrorWithCause("stored order is valid", err)
	}

	return ports.OrderSummary{
		ID:            id,
		Number:        row.Number,
		Type:          orderType,
		Status:        status,
		PaymentStatus: payment,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		CourierID:     courierID,
		BrokerID:      brokerID,
		Total:         row.Total,
		CreatedAt:     row.CreatedAt,
	}, nil
}

func nullableID(n uuid.NullUUID) (*kernel.UUID, error) {
	if !n.Valid {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(n.UUID[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
