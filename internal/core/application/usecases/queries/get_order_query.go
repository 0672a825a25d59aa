package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery asks for the full detail of one order on behalf of requester.
type GetOrderQuery struct {
	orderID     kernel.UUID
	requesterID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID, requesterID kernel.UUID) (GetOrderQuery, error) {
	var problems []error
	if err := orderID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("orderId", err))
	}
	if err := requesterID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("requesterId", err))
	}
	if err := errors.Join(problems...); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, requesterID: requesterID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID     { return q.orderID }
func (q GetOrderQuery) RequesterID() kernel.UUID { return q.requesterID }

// OrderDetail is the complete projection of an order: parties, items,
// financials and the transition log.
type OrderDetail struct {
	ID                 kernel.UUID
	Number             order.Number
	Type               order.Type
	Status             order.Status
	PaymentMethod      string
	PaymentStatus      order.PaymentStatus
	TransactionRef     string
	BuyerID            kernel.UUID
	SellerID           kernel.UUID
	CourierID          *kernel.UUID
	BrokerID           *kernel.UUID
	Items              []order.ItemParams
	Breakdown          pricing.Breakdown
	Delivery           order.DeliveryContext
	DeliveryDistanceKm *float64
	DeliveredAt        *time.Time
	Service            order.ServiceContext
	CancelReason       string
	CourierWindowAt    *time.Time
	BrokerWindowAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
	Transitions        []order.Transition
}
