// Package pricing computes the financial breakdown of an order.
//
// Price is a pure function of the order lines, the fee schedule and the
// assignment extras. Intermediate sums keep full decimal precision; every
// component is rounded half-to-even to cents only when the Breakdown is
// produced, and the total is the sum of the rounded components.
package pricing

import (
	"errors"
	"fmt"

	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept in every Breakdown field.
const MoneyPlaces = 2

// ErrInvalidItem is returned for an empty line list or a line with a
// non-positive quantity or a negative unit price.
var ErrInvalidItem = errors.New("invalid item")

type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total is the unrounded line total.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Extras carries the inputs that exist only after a role is assigned, plus
// the caller supplied flat tax.
type Extras struct {
	DeliveryAssigned   bool
	DeliveryDistanceKm *float64
	BrokerAssigned     bool
	Tax                decimal.Decimal
}

type Breakdown struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	BrokerFee   decimal.Decimal
	Commission  decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Price computes the breakdown for lines under schedule.
//
//	subtotal   = Σ quantity × unitPrice
//	commission = subtotal × platformRate
//	delivery   = clamp(base + perKm × km, min, max)  once a courier is assigned
//	broker     = subtotal × brokerRate               once a broker is assigned
//	total      = subtotal + delivery + broker + commission + tax
func Price(lines []Line, schedule FeeSchedule, extras Extras) (Breakdown, error) {
	if err := schedule.Validate(); err != nil {
		return Breakdown{}, err
	}
	if err := ValidateLines(lines); err != nil {
		return Breakdown{}, err
	}
	if extras.Tax.IsNegative() {
		return Breakdown{}, errs.NewValueIsOutOfRangeError("tax", extras.Tax.String(), 0, "unbounded")
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}

	commission := subtotal.Mul(schedule.PlatformRate())

	deliveryFee := decimal.Zero
	if extras.DeliveryAssigned {
		deliveryFee = schedule.DeliveryFee(extras.DeliveryDistanceKm)
	}

	brokerFee := decimal.Zero
	if extras.BrokerAssigned {
		brokerFee = subtotal.Mul(schedule.BrokerRate())
	}

	b := Breakdown{
		Subtotal:    Round(subtotal),
		DeliveryFee: Round(deliveryFee),
		BrokerFee:   Round(brokerFee),
		Commission:  Round(commission),
		Tax:         Round(extras.Tax),
	}
	b.Total = b.sum()

	return b, nil
}

// ValidateLines reports every invalid line at once. Each failure matches ErrInvalidItem.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidItem, errs.NewValueIsRequiredError("items"))
	}

	var problems []error
	for i, l := range lines {
		if l.Quantity <= 0 {
			problems = append(problems, fmt.Errorf("%w: %w", ErrInvalidItem,
				errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d].quantity", i),
					fmt.Errorf("%d is not greater than 0", l.Quantity))))
		}
		if l.UnitPrice.IsNegative() {
			problems = append(problems, fmt.Errorf("%w: %w", ErrInvalidItem,
				errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d].unitPrice", i),
					fmt.Errorf("%s is negative", l.UnitPrice))))
		}
	}
	return errors.Join(problems...)
}

// Validate checks the money invariants of a breakdown: every component is
// non-negative and the total equals the sum of the components.
func (b Breakdown) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", b.Subtotal},
		{"deliveryFee", b.DeliveryFee},
		{"brokerFee", b.BrokerFee},
		{"commission", b.Commission},
		{"tax", b.Tax},
		{"total", b.Total},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return errs.NewIntegrityErrorWithCause("money is non-negative",
				fmt.Errorf("%s is %s", f.name, f.value))
		}
	}

	if !b.Total.Equal(b.sum()) {
		return errs.NewIntegrityErrorWithCause("total equals sum of components",
			fmt.Errorf("total %s, components sum to %s", b.Total, b.sum()))
	}
	return nil
}

// IsZero reports whether no component has been computed yet.
func (b Breakdown) IsZero() bool {
	return b.Subtotal.IsZero() && b.Total.IsZero()
}

func (b Breakdown) sum() decimal.Decimal {
	return b.Subtotal.Add(b.DeliveryFee).Add(b.BrokerFee).Add(b.Commission).Add(b.Tax)
}

// Round applies the boundary rounding used by Price: half-to-even to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}
