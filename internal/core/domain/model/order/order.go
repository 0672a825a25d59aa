package order

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrEmptyCart is returned when checkout is attempted without items.
	ErrEmptyCart = errors.New("empty cart")

	// ErrSelfTrade is returned when the buyer and the seller are the same party.
	ErrSelfTrade = errors.New("self trade")
)

// DeliveryContext describes how and where the order is fulfilled. Pickup is
// the seller side point: the store for deliveries, the place for property
// orders. Dropoff is the buyer side point.
type DeliveryContext struct {
	Type         DeliveryType
	Pickup       *kernel.GeoPoint
	Dropoff      *kernel.GeoPoint
	Address      string
	Instructions string
	EstimatedAt  *time.Time
}

// ServiceContext carries the optional scheduling of services and leases.
type ServiceContext struct {
	Date       *time.Time
	Duration   *time.Duration
	LeaseStart *time.Time
	LeaseEnd   *time.Time
}

type NewOrderParams struct {
	ID            kernel.UUID
	Number        Number
	BuyerID       kernel.UUID
	SellerID      kernel.UUID
	Type          Type
	Items         []Item
	Delivery      DeliveryContext
	Service       ServiceContext
	PaymentMethod string
	Tax           decimal.Decimal
	CreatedAt     time.Time
}

// Order is the aggregate root of a marketplace transaction. It owns its line
// items and its transition log, and it can only be changed through the
// event methods below. Every event either applies completely (status,
// slots, financials, version and log entry) or leaves the order untouched.
//
// Invariants checked after every change:
//   - subtotal equals the rounded sum of item totals
//   - every money field is non-negative and total is the sum of the components
//   - a courier is only ever bound to a Delivery order
//   - a broker is only ever bound to a property order
//   - payment status Refunded implies status Cancelled
//   - buyer and seller differ
type Order struct {
	id             kernel.UUID
	number         Number
	buyerID        kernel.UUID
	sellerID       kernel.UUID
	courierID      *kernel.UUID
	brokerID       *kernel.UUID
	orderType      Type
	items          []Item
	breakdown      pricing.Breakdown
	paymentMethod  string
	paymentStatus  PaymentStatus
	transactionRef string
	status         Status
	delivery       DeliveryContext
	deliveredAt    *time.Time
	service        ServiceContext
	cancelReason   string

	courierWindowOpenedAt *time.Time
	brokerWindowOpenedAt  *time.Time

	createdAt time.Time
	updatedAt time.Time

	// version grows with every applied event; persistedVersion is the value
	// last read from or written to storage and drives the conditional update.
	version              int64
	persistedVersion     int64
	transitions          []Transition
	persistedTransitions int

	// pendingDetails is filled by a mutation and moved into its log entry.
	pendingDetails map[string]string

	isConstructed bool
}

// NewOrder validates a checkout and creates the order in status Pending with
// payment status Pending, priced under schedule.
//
// Every problem is reported at once (errors.Join). Notable failures:
//   - ErrEmptyCart when p.Items is empty
//   - ErrSelfTrade when buyer and seller are the same party
//   - pricing.ErrInvalidItem for a line with a bad quantity or price
//
// Property orders open the broker assignment window immediately.
//
// Example:
//
//	o, err := order.NewOrder(order.NewOrderParams{
//	    ID:        kernel.NewUUID(),
//	    Number:    order.NewNumber(now),
//	    BuyerID:   buyerID,
//	    SellerID:  sellerID,
//	    Type:      order.Product,
//	    Items:     items,
//	    Delivery:  order.DeliveryContext{Type: order.Pickup},
//	    CreatedAt: now,
//	}, schedule)
func NewOrder(p NewOrderParams, schedule pricing.FeeSchedule) (*Order, error) {
	if err := validateNewOrder(p); err != nil {
		return nil, err
	}

	o := &Order{
		id:            p.ID,
		number:        p.Number,
		buyerID:       p.BuyerID,
		sellerID:      p.SellerID,
		orderType:     p.Type,
		items:         slices.Clone(p.Items),
		paymentMethod: strings.TrimSpace(p.PaymentMethod),
		paymentStatus: PaymentPending,
		status:        Pending,
		delivery:      p.Delivery,
		service:       p.Service,
		createdAt:     p.CreatedAt,
		updatedAt:     p.CreatedAt,
		version:       1,
		isConstructed: true,
	}
	o.breakdown.Tax = p.Tax

	if err := o.reprice(schedule); err != nil {
		return nil, err
	}

	if o.orderType.RequiresBroker() {
		opened := p.CreatedAt
		o.brokerWindowOpenedAt = &opened
	}

	o.transitions = []Transition{{
		Seq:     1,
		From:    Unknown,
		To:      Pending,
		Event:   EventCreate,
		ActorID: uuidPtr(p.BuyerID),
		At:      p.CreatedAt,
		Details: map[string]string{"number": p.Number.String(), "total": o.breakdown.Total.StringFixed(2)},
	}}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}
	return o, nil
}

func validateNewOrder(p NewOrderParams) error {
	var problems []error

	if err := p.ID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if _, err := ParseNumber(p.Number.String()); err != nil {
		problems = append(problems, err)
	}
	if err := p.BuyerID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("buyerId", err))
	}
	if err := p.SellerID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("sellerId", err))
	}
	if !p.BuyerID.IsZero() && p.BuyerID.IsEqual(p.SellerID) {
		problems = append(problems, fmt.Errorf("%w: %w", ErrSelfTrade, errs.NewValueIsInvalidErrorWithCause(
			"sellerId", fmt.Errorf("party %s cannot buy from itself", p.BuyerID))))
	}
	if err := p.Type.Validate(); err != nil {
		problems = append(problems, err)
	}
	if err := p.Delivery.Type.Validate(); err != nil {
		problems = append(problems, err)
	}

	if len(p.Items) == 0 {
		problems = append(problems, fmt.Errorf("%w: %w", ErrEmptyCart, errs.NewValueIsRequiredError("items")))
	}
	for i, it := range p.Items {
		if err := it.ID().Validate(); err != nil {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err))
		}
	}

	for name, point := range map[string]*kernel.GeoPoint{"pickup": p.Delivery.Pickup, "dropoff": p.Delivery.Dropoff} {
		if point != nil {
			if err := point.Validate(); err != nil {
				problems = append(problems, errs.NewValueIsInvalidErrorWithCause(name, err))
			}
		}
	}
	if p.Delivery.Type == Delivery && p.Delivery.Pickup == nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("pickup",
			errors.New("couriers are matched around the pickup point")))
	}
	if p.Type.RequiresBroker() && p.Delivery.Pickup == nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("pickup",
			errors.New("brokers are matched around the place location")))
	}

	if s := p.Service; s.LeaseStart != nil && s.LeaseEnd != nil && !s.LeaseEnd.After(*s.LeaseStart) {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("leaseEnd",
			fmt.Errorf("%s is not after lease start %s", s.LeaseEnd.Format(time.RFC3339), s.LeaseStart.Format(time.RFC3339))))
	}
	if p.Service.Duration != nil && *p.Service.Duration <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("serviceDuration",
			fmt.Errorf("%s is not positive", *p.Service.Duration)))
	}
	if p.CreatedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("createdAt"))
	}

	return errors.Join(problems...)
}

// Validate ensures the Order instance was created through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID              { return o.id }
func (o *Order) Number() Number               { return o.number }
func (o *Order) BuyerID() kernel.UUID         { return o.buyerID }
func (o *Order) SellerID() kernel.UUID        { return o.sellerID }
func (o *Order) CourierID() *kernel.UUID      { return o.courierID }
func (o *Order) BrokerID() *kernel.UUID       { return o.brokerID }
func (o *Order) Type() Type                   { return o.orderType }
func (o *Order) Delivery() DeliveryContext    { return o.delivery }
func (o *Order) Service() ServiceContext      { return o.service }
func (o *Order) Breakdown() pricing.Breakdown { return o.breakdown }
func (o *Order) PaymentMethod() string        { return o.paymentMethod }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) TransactionRef() string       { return o.transactionRef }
func (o *Order) Status() Status               { return o.status }
func (o *Order) DeliveredAt() *time.Time      { return o.deliveredAt }
func (o *Order) CancelReason() string         { return o.cancelReason }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
func (o *Order) Version() int64               { return o.version }
func (o *Order) ExpectedVersion() int64       { return o.persistedVersion }
func (o *Order) Items() []Item                { return slices.Clone(o.items) }
func (o *Order) Transitions() []Transition    { return cloneTransitions(o.transitions) }

// UnsavedTransitions returns the log entries appended since the last MarkPersisted.
func (o *Order) UnsavedTransitions() []Transition {
	return cloneTransitions(o.transitions[o.persistedTransitions:])
}

// MarkPersisted records that the current version has been stored. The next
// conditional update expects this version.
func (o *Order) MarkPersisted() {
	o.persistedVersion = o.version
	o.persistedTransitions = len(o.transitions)
}

// IsNew reports whether the order has never been stored.
func (o *Order) IsNew() bool {
	return o.persistedVersion == 0
}

// HasParty reports whether id holds any role on the order.
func (o *Order) HasParty(id kernel.UUID) bool {
	for _, r := range []party.Role{party.Buyer, party.Seller, party.Courier, party.Broker} {
		if o.HasRole(id, r) {
			return true
		}
	}
	return false
}

// HasRole reports whether id holds role on the order.
func (o *Order) HasRole(id kernel.UUID, role party.Role) bool {
	if id.IsZero() {
		return false
	}
	switch role {
	case party.Buyer:
		return o.buyerID.IsEqual(id)
	case party.Seller:
		return o.sellerID.IsEqual(id)
	case party.Courier:
		return o.courierID != nil && o.courierID.IsEqual(id)
	case party.Broker:
		return o.brokerID != nil && o.brokerID.IsEqual(id)
	default:
		return false
	}
}

// AssignmentWindowOpenedAt returns when the order became open for role, or
// nil when no slot of that role is waiting for an acceptor.
func (o *Order) AssignmentWindowOpenedAt(role party.Role) *time.Time {
	switch role {
	case party.Courier:
		return o.courierWindowOpenedAt
	case party.Broker:
		return o.brokerWindowOpenedAt
	default:
		return nil
	}
}

// IsOpenFor reports whether the order currently accepts a party of role.
func (o *Order) IsOpenFor(role party.Role) bool {
	return o.AssignmentWindowOpenedAt(role) != nil
}

// SubjectPoint is the point candidates for role are matched around.
func (o *Order) SubjectPoint(role party.Role) *kernel.GeoPoint {
	if role.IsAssignable() {
		return o.delivery.Pickup
	}
	return nil
}

// DeliveryDistanceKm is the great-circle length of the trip, or nil when
// either end is unknown.
func (o *Order) DeliveryDistanceKm() *float64 {
	if o.delivery.Pickup == nil || o.delivery.Dropoff == nil {
		return nil
	}
	d, err := o.delivery.Pickup.DistanceKm(*o.delivery.Dropoff)
	if err != nil {
		return nil
	}
	return &d
}

// Accept confirms a pending order. Only the seller may accept.
func (o *Order) Accept(actor kernel.UUID, now time.Time) error {
	return o.apply(change{event: EventAccept, actor: actor}, now,
		o.advance(EventAccept, actor, "accept order", party.Seller))
}

// BeginPreparing moves a confirmed order to Preparing. Only the seller may do so.
func (o *Order) BeginPreparing(actor kernel.UUID, now time.Time) error {
	return o.apply(change{event: EventBeginPreparing, actor: actor}, now,
		o.advance(EventBeginPreparing, actor, "begin preparing", party.Seller))
}

// MarkReady finishes preparation. Pickup orders wait in ReadyForPickup; Delivery
// and Digital orders move to InTransit. A Delivery order without a courier
// opens the courier assignment window.
func (o *Order) MarkReady(actor kernel.UUID, now time.Time) error {
	advance := o.advance(EventMarkReady, actor, "mark ready", party.Seller)
	return o.apply(change{event: EventMarkReady, actor: actor}, now, func(next *Order) error {
		if err := advance(next); err != nil {
			return err
		}
		next.status = next.delivery.Type.ReadyStatus()
		if next.delivery.Type == Delivery && next.courierID == nil {
			opened := now
			next.courierWindowOpenedAt = &opened
		}
		return nil
	})
}

// MarkDelivered records the hand-over. From InTransit the assigned courier or
// the seller may report it; from ReadyForPickup only the seller.
func (o *Order) MarkDelivered(actor kernel.UUID, now time.Time) error {
	roles := []party.Role{party.Seller}
	if o.status == InTransit {
		roles = append(roles, party.Courier)
	}

	advance := o.advance(EventMarkDelivered, actor, "mark delivered", roles...)
	return o.apply(change{event: EventMarkDelivered, actor: actor}, now, func(next *Order) error {
		if err := advance(next); err != nil {
			return err
		}
		delivered := now
		next.deliveredAt = &delivered
		next.courierWindowOpenedAt = nil
		return nil
	})
}

// Complete closes a delivered order. Only the buyer may complete. Completed is
// terminal: a second call fails with a TerminalStateError.
func (o *Order) Complete(actor kernel.UUID, now time.Time) error {
	advance := o.advance(EventComplete, actor, "complete order", party.Buyer)
	return o.apply(change{event: EventComplete, actor: actor}, now, func(next *Order) error {
		if err := advance(next); err != nil {
			return err
		}
		next.closeWindows()
		return nil
	})
}

// Cancel stops the order from any non-terminal status. The buyer or the
// seller may cancel; a paid order is refunded.
func (o *Order) Cancel(actor kernel.UUID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	advance := o.advance(EventCancel, actor, "cancel order", party.Buyer, party.Seller)
	return o.apply(change{event: EventCancel, actor: actor, reason: reason}, now, func(next *Order) error {
		if err := advance(next); err != nil {
			return err
		}
		next.cancelReason = reason
		if next.paymentStatus == PaymentPaid {
			next.paymentStatus = PaymentRefunded
		}
		next.closeWindows()
		return nil
	})
}

// AssignRole binds candidate to the courier or broker slot and re-prices the
// order under schedule in the same change.
//
// Checks, in order:
//   - the order is not terminal (TerminalStateError)
//   - the order has a slot for role (RoleNotApplicableError)
//   - the slot is still empty (RoleAlreadyAssignedError)
//   - a courier slot is only filled in InTransit or ReadyForPickup (InvalidTransitionError)
//   - the candidate is neither buyer nor seller (NotAuthorizedError)
//
// Callers persist the result with a conditional update so that of two
// concurrent acceptors exactly one wins.
func (o *Order) AssignRole(role party.Role, candidate kernel.UUID, schedule pricing.FeeSchedule, now time.Time) error {
	event := assignEvent(role)
	c := change{event: event, actor: candidate}

	return o.apply(c, now, func(next *Order) error {
		if err := next.checkAssignable(role, event); err != nil {
			return err
		}
		if err := candidate.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause("candidateId", err)
		}
		if next.HasRole(candidate, party.Buyer) || next.HasRole(candidate, party.Seller) {
			return errs.NewNotAuthorizedError(candidate.String(), "accept "+role.String()+" on own order")
		}

		id := candidate
		var fee func(pricing.Breakdown) decimal.Decimal
		switch role {
		case party.Courier:
			next.courierID = &id
			next.courierWindowOpenedAt = nil
			fee = func(b pricing.Breakdown) decimal.Decimal { return b.DeliveryFee }
		default:
			next.brokerID = &id
			next.brokerWindowOpenedAt = nil
			fee = func(b pricing.Breakdown) decimal.Decimal { return b.BrokerFee }
		}

		if err := next.reprice(schedule); err != nil {
			return err
		}
		next.pendingDetails = map[string]string{
			"role":    role.String(),
			"partyId": candidate.String(),
			"fee":     fee(next.breakdown).StringFixed(2),
			"total":   next.breakdown.Total.StringFixed(2),
		}
		return nil
	})
}

// CheckAssignable runs the assignment checks of AssignRole without changing
// the order.
func (o *Order) CheckAssignable(role party.Role) error {
	if err := o.Validate(); err != nil {
		return err
	}
	return o.checkAssignable(role, assignEvent(role))
}

func (o *Order) checkAssignable(role party.Role, event Event) error {
	if err := o.status.guardTerminal(event); err != nil {
		return err
	}

	switch role {
	case party.Courier:
		if o.delivery.Type != Delivery {
			return errs.NewRoleNotApplicableError(role.String(), "delivery type is "+o.delivery.Type.String())
		}
		if o.courierID != nil {
			return errs.NewRoleAlreadyAssignedError(role.String(), o.id.String())
		}
		if !o.status.AwaitsCourier() {
			return errs.NewInvalidTransitionError(o.status.String(), event.String())
		}
	case party.Broker:
		if !o.orderType.RequiresBroker() {
			return errs.NewRoleNotApplicableError(role.String(), "order type is "+o.orderType.String())
		}
		if o.brokerID != nil {
			return errs.NewRoleAlreadyAssignedError(role.String(), o.id.String())
		}
	default:
		return errs.NewRoleNotApplicableError(role.String(), "role is not filled by acceptance")
	}
	return nil
}

// MarkPaid records a successful payment reported by the payment collaborator.
// Allowed from payment status Pending or Failed on any order that is not cancelled.
func (o *Order) MarkPaid(transactionRef string, now time.Time) error {
	transactionRef = strings.TrimSpace(transactionRef)
	return o.apply(change{event: EventMarkPaid}, now, func(next *Order) error {
		if next.status == Cancelled {
			return errs.NewTerminalStateError(next.status.String(), EventMarkPaid.String())
		}
		if next.paymentStatus != PaymentPending && next.paymentStatus != PaymentFailed {
			return errs.NewInvalidTransitionError("payment "+next.paymentStatus.String(), EventMarkPaid.String())
		}
		if transactionRef == "" {
			return errs.NewValueIsRequiredError("transactionRef")
		}
		next.paymentStatus = PaymentPaid
		next.transactionRef = transactionRef
		next.pendingDetails = map[string]string{"transactionRef": transactionRef}
		return nil
	})
}

// MarkPaymentFailed records a declined payment. Allowed from payment status
// Pending on any order that is not cancelled.
func (o *Order) MarkPaymentFailed(now time.Time) error {
	return o.apply(change{event: EventMarkPaymentFailed}, now, func(next *Order) error {
		if next.status == Cancelled {
			return errs.NewTerminalStateError(next.status.String(), EventMarkPaymentFailed.String())
		}
		if next.paymentStatus != PaymentPending {
			return errs.NewInvalidTransitionError("payment "+next.paymentStatus.String(), EventMarkPaymentFailed.String())
		}
		next.paymentStatus = PaymentFailed
		return nil
	})
}

// RenewAssignmentWindow restarts the clock of an open window, e.g. after the
// seller has been told that nobody accepted in time.
func (o *Order) RenewAssignmentWindow(role party.Role, now time.Time) error {
	return o.apply(change{event: EventRenewAssignmentWindow}, now, func(next *Order) error {
		if err := next.status.guardTerminal(EventRenewAssignmentWindow); err != nil {
			return err
		}
		if !next.IsOpenFor(role) {
			return errs.NewRoleNotApplicableError(role.String(), "no open assignment window")
		}
		opened := now
		if role == party.Courier {
			next.courierWindowOpenedAt = &opened
		} else {
			next.brokerWindowOpenedAt = &opened
		}
		next.pendingDetails = map[string]string{"role": role.String()}
		return nil
	})
}

type change struct {
	event  Event
	actor  kernel.UUID
	reason string
}

// apply runs mutate on a copy of the order, stamps the change, verifies the
// invariants and only then replaces the receiver. A failed check leaves the
// order exactly as it was.
func (o *Order) apply(c change, now time.Time, mutate func(next *Order) error) error {
	if err := o.Validate(); err != nil {
		return err
	}

	next := o.clone()
	from := next.status
	if err := mutate(next); err != nil {
		return err
	}

	next.updatedAt = now
	next.version++
	next.transitions = append(next.transitions, Transition{
		Seq:     len(next.transitions) + 1,
		From:    from,
		To:      next.status,
		Event:   c.event,
		ActorID: uuidPtr(c.actor),
		Reason:  c.reason,
		At:      now,
		Details: next.pendingDetails,
	})
	next.pendingDetails = nil

	if err := next.checkInvariants(); err != nil {
		return err
	}

	*o = *next
	return nil
}

// advance returns a mutation that moves the status along event, provided
// actor holds one of roles.
func (o *Order) advance(event Event, actor kernel.UUID, action string, roles ...party.Role) func(*Order) error {
	return func(next *Order) error {
		status, err := next.status.Next(event)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(roles, func(r party.Role) bool { return next.HasRole(actor, r) }) {
			return errs.NewNotAuthorizedError(actor.String(), action)
		}
		next.status = status
		return nil
	}
}

func (o *Order) reprice(schedule pricing.FeeSchedule) error {
	lines := make([]pricing.Line, len(o.items))
	for i, it := range o.items {
		lines[i] = it.line()
	}

	b, err := pricing.Price(lines, schedule, pricing.Extras{
		DeliveryAssigned:   o.courierID != nil,
		DeliveryDistanceKm: o.DeliveryDistanceKm(),
		BrokerAssigned:     o.brokerID != nil,
		Tax:                o.breakdown.Tax,
	})
	if err != nil {
		return err
	}

	o.breakdown = b
	return nil
}

func (o *Order) closeWindows() {
	o.courierWindowOpenedAt = nil
	o.brokerWindowOpenedAt = nil
}

func (o *Order) checkInvariants() error {
	if err := o.breakdown.Validate(); err != nil {
		return err
	}
	if len(o.items) == 0 {
		return errs.NewIntegrityError("order has at least one item")
	}

	sum := decimal.Zero
	for _, it := range o.items {
		sum = sum.Add(it.TotalPrice())
	}
	if !pricing.Round(sum).Equal(o.breakdown.Subtotal) {
		return errs.NewIntegrityErrorWithCause("subtotal equals sum of item totals",
			fmt.Errorf("subtotal %s, items sum to %s", o.breakdown.Subtotal, sum))
	}

	if err := o.status.Validate(); err != nil {
		return errs.NewIntegrityErrorWithCause("status is valid", err)
	}
	if o.courierID != nil && o.delivery.Type != Delivery {
		return errs.NewIntegrityError("courier is only assigned to Delivery orders")
	}
	if o.brokerID != nil && !o.orderType.RequiresBroker() {
		return errs.NewIntegrityError("broker is only assigned to property orders")
	}
	if o.paymentStatus == PaymentRefunded && o.status != Cancelled {
		return errs.NewIntegrityError("refunded orders are cancelled")
	}
	if o.buyerID.IsEqual(o.sellerID) {
		return errs.NewIntegrityError("buyer and seller differ")
	}
	return nil
}

func (o *Order) clone() *Order {
	c := *o
	c.items = slices.Clone(o.items)
	c.transitions = cloneTransitions(o.transitions)
	return &c
}

func cloneTransitions(ts []Transition) []Transition {
	out := make([]Transition, len(ts))
	for i, t := range ts {
		out[i] = t.clone()
	}
	return out
}

func assignEvent(role party.Role) Event {
	switch role {
	case party.Courier:
		return EventAssignDelivery
	case party.Broker:
		return EventAssignBroker
	default:
		return EventUnknown
	}
}

func uuidPtr(id kernel.UUID) *kernel.UUID {
	if id.IsZero() {
		return nil
	}
	return &id
}
