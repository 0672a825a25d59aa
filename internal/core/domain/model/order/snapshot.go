package order

import (
	"errors"
	"slices"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/pkg/errs"
)

// Snapshot is the complete persisted state of an order. Adapters map it to
// and from their storage format; RestoreOrder turns it back into an aggregate.
type Snapshot struct {
	ID                    kernel.UUID
	Number                Number
	BuyerID               kernel.UUID
	SellerID              kernel.UUID
	CourierID             *kernel.UUID
	BrokerID              *kernel.UUID
	Type                  Type
	Items                 []ItemParams
	Breakdown             pricing.Breakdown
	PaymentMethod         string
	PaymentStatus         PaymentStatus
	TransactionRef        string
	Status                Status
	Delivery              DeliveryContext
	DeliveredAt           *time.Time
	Service               ServiceContext
	CancelReason          string
	CourierWindowOpenedAt *time.Time
	BrokerWindowOpenedAt  *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int64
	Transitions           []Transition
}

// Snapshot captures the current state. Slices are copied; pointer fields
// (party ids, delivery points, timestamps) are shared, which is safe because
// Order only ever replaces those pointers and never writes through them.
func (o *Order) Snapshot() Snapshot {
	items := make([]ItemParams, len(o.items))
	for i, it := range o.items {
		items[i] = it.Params()
	}

	return Snapshot{
		ID:                    o.id,
		Number:                o.number,
		BuyerID:               o.buyerID,
		SellerID:              o.sellerID,
		CourierID:             o.courierID,
		BrokerID:              o.brokerID,
		Type:                  o.orderType,
		Items:                 items,
		Breakdown:             o.breakdown,
		PaymentMethod:         o.paymentMethod,
		PaymentStatus:         o.paymentStatus,
		TransactionRef:        o.transactionRef,
		Status:                o.status,
		Delivery:              o.delivery,
		DeliveredAt:           o.deliveredAt,
		Service:               o.service,
		CancelReason:          o.cancelReason,
		CourierWindowOpenedAt: o.courierWindowOpenedAt,
		BrokerWindowOpenedAt:  o.brokerWindowOpenedAt,
		CreatedAt:             o.createdAt,
		UpdatedAt:             o.updatedAt,
		Version:               o.version,
		Transitions:           cloneTransitions(o.transitions),
	}
}

// RestoreOrder rebuilds an aggregate from storage. The restored order counts
// as persisted at s.Version. Stored state that breaks an invariant is
// reported as an IntegrityError.
func RestoreOrder(s Snapshot) (*Order, error) {
	items := make([]Item, 0, len(s.Items))
	var problems []error
	for _, p := range s.Items {
		it, err := NewItem(p)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		items = append(items, it)
	}

	problems = append(problems,
		s.ID.Validate(),
		s.Type.Validate(),
		s.Delivery.Type.Validate(),
		s.PaymentStatus.Validate(),
	)
	if s.Version < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("version", s.Version, 1, "unbounded"))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, errs.NewIntegrityErrorWithCause("stored order is valid", err)
	}

	transitions := cloneTransitions(s.Transitions)
	slices.SortFunc(transitions, func(a, b Transition) int { return a.Seq - b.Seq })

	o := &Order{
		id:                    s.ID,
		number:                s.Number,
		buyerID:               s.BuyerID,
		sellerID:              s.SellerID,
		courierID:             s.CourierID,
		brokerID:              s.BrokerID,
		orderType:             s.Type,
		items:                 items,
		breakdown:             s.Breakdown,
		paymentMethod:         s.PaymentMethod,
		paymentStatus:         s.PaymentStatus,
		transactionRef:        s.TransactionRef,
		status:                s.Status,
		delivery:              s.Delivery,
		deliveredAt:           s.DeliveredAt,
		service:               s.Service,
		cancelReason:          s.CancelReason,
		courierWindowOpenedAt: s.CourierWindowOpenedAt,
		brokerWindowOpenedAt:  s.BrokerWindowOpenedAt,
		createdAt:             s.CreatedAt,
		updatedAt:             s.UpdatedAt,
		version:               s.Version,
		persistedVersion:      s.Version,
		transitions:           transitions,
		persistedTransitions:  len(transitions),
		isConstructed:         true,
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}
	return o, nil
}
