package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// MaxIdempotencyKeyLength bounds the Idempotency-Key a client may send.
const MaxIdempotencyKeyLength = 128

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CartLine is one line of the buyer's cart. A line either references a
// catalog item, whose name and price are then snapshotted at checkout, or
// carries its own name and unit price (services, ad-hoc offers).
type CartLine struct {
	CatalogItemID   string
	Quantity        int
	Name            string
	Description     string
	UnitPrice       *decimal.Decimal
	ServiceDate     *time.Time
	ServiceDuration *time.Duration
}

// DeliveryInput is the delivery part of a checkout request. Coordinates are
// optional and come in lat/lng pairs.
type DeliveryInput struct {
	Type         order.DeliveryType
	PickupLat    *float64
	PickupLng    *float64
	DropoffLat   *float64
	DropoffLng   *float64
	Address      string
	Instructions string
	EstimatedAt  *time.Time
}

type CreateOrderInput struct {
	OrderID        kernel.UUID
	BuyerID        kernel.UUID
	SellerID       kernel.UUID
	Type           order.Type
	Lines          []CartLine
	Delivery       DeliveryInput
	Service        order.ServiceContext
	PaymentMethod  string
	Tax            decimal.Decimal
	IdempotencyKey string
}

// CreateOrderCommand represents a buyer checking out a cart with one seller.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(CreateOrderInput{
//	    OrderID:  kernel.NewUUID(),
//	    BuyerID:  buyerID,
//	    SellerID: sellerID,
//	    Type:     order.Product,
//	    Lines:    []CartLine{{CatalogItemID: "sku-42", Quantity: 2}},
//	    Delivery: DeliveryInput{Type: order.Delivery, DropoffLat: &lat, DropoffLng: &lng},
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
//	orderID, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	in      CreateOrderInput
	pickup  *kernel.GeoPoint
	dropoff *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand checks the shape of a checkout request and reports
// every problem at once. Business rules that need the catalog or the party
// directory are left to the handler and the order aggregate.
//
// Errors:
//   - order.ErrEmptyCart for a cart without lines
//   - order.ErrSelfTrade when buyer and seller are the same party
//   - pricing.ErrInvalidItem for a line with a bad quantity or price
//   - kernel.ErrInvalidCoordinate for out of range coordinates
func NewCreateOrderCommand(in CreateOrderInput) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(in.OrderID, in.BuyerID, in.SellerID),
		cmd.setKinds(in.Type, in.Delivery.Type),
		cmd.setLines(in.Lines),
		cmd.setPoints(in.Delivery),
		cmd.setTax(in.Tax),
		cmd.setIdempotencyKey(in.IdempotencyKey),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	in.Lines = slices.Clone(in.Lines)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	cmd.in = in
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID          { return c.in.OrderID }
func (c CreateOrderCommand) BuyerID() kernel.UUID          { return c.in.BuyerID }
func (c CreateOrderCommand) SellerID() kernel.UUID         { return c.in.SellerID }
func (c CreateOrderCommand) Type() order.Type              { return c.in.Type }
func (c CreateOrderCommand) Lines() []CartLine             { return slices.Clone(c.in.Lines) }
func (c CreateOrderCommand) Service() order.ServiceContext { return c.in.Service }
func (c CreateOrderCommand) PaymentMethod() string         { return c.in.PaymentMethod }
func (c CreateOrderCommand) Tax() decimal.Decimal          { return c.in.Tax }
func (c CreateOrderCommand) IdempotencyKey() string        { return c.in.IdempotencyKey }

// Delivery returns the delivery context with the coordinates given by the
// caller. Pickup and dropoff may still be nil here.
func (c CreateOrderCommand) Delivery() order.DeliveryContext {
	return order.DeliveryContext{
		Type:         c.in.Delivery.Type,
		Pickup:       c.pickup,
		Dropoff:      c.dropoff,
		Address:      strings.TrimSpace(c.in.Delivery.Address),
		Instructions: strings.TrimSpace(c.in.Delivery.Instructions),
		EstimatedAt:  c.in.Delivery.EstimatedAt,
	}
}

func (c *CreateOrderCommand) setIDs(orderID, buyerID, sellerID kernel.UUID) error {
	var problems []error
	if err := orderID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("orderId", err))
	}
	if err := buyerID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("buyerId", err))
	}
	if err := sellerID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("sellerId", err))
	}
	if len(problems) == 0 && buyerID.IsEqual(sellerID) {
		problems = append(problems, fmt.Errorf("%w: %w", order.ErrSelfTrade, errs.NewValueIsInvalidErrorWithCause(
			"sellerId", fmt.Errorf("party %s cannot buy from itself", buyerID))))
	}
	return errors.Join(problems...)
}

func (c *CreateOrderCommand) setKinds(orderType order.Type, deliveryType order.DeliveryType) error {
	return errors.Join(orderType.Validate(), deliveryType.Validate())
}

func (c *CreateOrderCommand) setLines(lines []CartLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: %w", order.ErrEmptyCart, errs.NewValueIsRequiredError("items"))
	}

	var problems []error
	for i, l := range lines {
		if l.Quantity <= 0 {
			problems = append(problems, fmt.Errorf("%w: %w", pricing.ErrInvalidItem,
				errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d].quantity", i),
					fmt.Errorf("%d is not greater than 0", l.Quantity))))
		}
		if strings.TrimSpace(l.CatalogItemID) != "" {
			continue
		}
		if strings.TrimSpace(l.Name) == "" {
			problems = append(problems, errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("items[%d].name", i),
				errors.New("lines without a catalog item need a name")))
		}
		switch {
		case l.UnitPrice == nil:
			problems = append(problems, errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("items[%d].unitPrice", i),
				errors.New("lines without a catalog item need a price")))
		case l.UnitPrice.IsNegative():
			problems = append(problems, fmt.Errorf("%w: %w", pricing.ErrInvalidItem,
				errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d].unitPrice", i),
					fmt.Errorf("%s is negative", l.UnitPrice))))
		}
	}
	return errors.Join(problems...)
}

func (c *CreateOrderCommand) setPoints(d DeliveryInput) error {
	pickup, pickupErr := kernel.NewOptionalGeoPoint(d.PickupLat, d.PickupLng)
	if pickupErr != nil {
		pickupErr = fmt.Errorf("pickup: %w", pickupErr)
	}
	dropoff, dropoffErr := kernel.NewOptionalGeoPoint(d.DropoffLat, d.DropoffLng)
	if dropoffErr != nil {
		dropoffErr = fmt.Errorf("dropoff: %w", dropoffErr)
	}
	c.pickup, c.dropoff = pickup, dropoff
	return errors.Join(pickupErr, dropoffErr)
}

func (c *CreateOrderCommand) setTax(tax decimal.Decimal) error {
	if tax.IsNegative() {
		return errs.NewValueIsOutOfRangeError("tax", tax.String(), 0, "unbounded")
	}
	return nil
}

func (c *CreateOrderCommand) setIdempotencyKey(key string) error {
	if n := len(strings.TrimSpace(key)); n > MaxIdempotencyKeyLength {
		return errs.NewValueIsOutOfRangeError("idempotencyKey length", n, 0, MaxIdempotencyKeyLength)
	}
	return nil
}
