package pricing

import (
	"errors"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrFeeScheduleIsNotConstructed = errs.NewValueIsRequiredError(
	"fee schedule must be created via NewFeeSchedule")

// FeeScheduleParams carries the externally configured rates and fees.
// Rates are fractions (0.1 is ten percent). A zero DeliveryMaxFee leaves the
// delivery fee uncapped.
type FeeScheduleParams struct {
	PlatformRate    decimal.Decimal
	DeliveryBaseFee decimal.Decimal
	DeliveryPerKm   decimal.Decimal
	DeliveryMinFee  decimal.Decimal
	DeliveryMaxFee  decimal.Decimal
	BrokerRate      decimal.Decimal
}

// FeeSchedule is the validated, immutable form of FeeScheduleParams. It is
// built once at startup and passed explicitly to Price.
type FeeSchedule struct {
	params FeeScheduleParams
	guard  guard.ConstructorGuard
}

func NewFeeSchedule(p FeeScheduleParams) (FeeSchedule, error) {
	one := decimal.NewFromInt(1)

	err := errors.Join(
		rateInRange("platformRate", p.PlatformRate, one),
		rateInRange("brokerRate", p.BrokerRate, one),
		nonNegative("deliveryBaseFee", p.DeliveryBaseFee),
		nonNegative("deliveryPerKm", p.DeliveryPerKm),
		nonNegative("deliveryMinFee", p.DeliveryMinFee),
		nonNegative("deliveryMaxFee", p.DeliveryMaxFee),
	)
	if err != nil {
		return FeeSchedule{}, err
	}

	if p.DeliveryMaxFee.IsPositive() && p.DeliveryMaxFee.LessThan(p.DeliveryMinFee) {
		return FeeSchedule{}, errs.NewValueIsOutOfRangeError(
			"deliveryMaxFee", p.DeliveryMaxFee.String(), p.DeliveryMinFee.String(), "unbounded")
	}

	return FeeSchedule{params: p, guard: guard.NewConstructorGuard()}, nil
}

func (s FeeSchedule) Validate() error {
	return s.guard.Validate(ErrFeeScheduleIsNotConstructed)
}

func (s FeeSchedule) PlatformRate() decimal.Decimal {
	return s.params.PlatformRate
}

func (s FeeSchedule) BrokerRate() decimal.Decimal {
	return s.params.BrokerRate
}

// DeliveryFee derives the unrounded delivery fee for a trip of distanceKm.
// A nil distance (one end of the trip unknown) charges the base fee.
func (s FeeSchedule) DeliveryFee(distanceKm *float64) decimal.Decimal {
	fee := s.params.DeliveryBaseFee
	if distanceKm != nil && *distanceKm > 0 {
		fee = fee.Add(s.params.DeliveryPerKm.Mul(decimal.NewFromFloat(*distanceKm)))
	}

	if fee.LessThan(s.params.DeliveryMinFee) {
		fee = s.params.DeliveryMinFee
	}
	if s.params.DeliveryMaxFee.IsPositive() && fee.GreaterThan(s.params.DeliveryMaxFee) {
		fee = s.params.DeliveryMaxFee
	}
	return fee
}

func rateInRange(name string, rate, upper decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(upper) {
		return errs.NewValueIsOutOfRangeError(name, rate.String(), 0, 1)
	}
	return nil
}

func nonNegative(name string, v decimal.Decimal) error {
	if v.IsNegative() {
		return errs.NewValueIsOutOfRangeError(name, v.String(), 0, "unbounded")
	}
	return nil
}
