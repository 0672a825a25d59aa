package order

import (
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Type classifies what is being bought.
type Type int

const (
	TypeUnknown Type = iota
	Product
	Service
	PropertySale
	PropertyRent
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		TypeUnknown:  "Unknown",
		Product:      "Product",
		Service:      "Service",
		PropertySale: "PropertySale",
		PropertyRent: "PropertyRent",
	}
}

func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "Unknown"
}

func (t Type) Validate() error {
	if t < Product || t > PropertyRent {
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%d is not a valid order type", t))
	}
	return nil
}

// RequiresBroker reports whether orders of this type carry a broker slot.
func (t Type) RequiresBroker() bool {
	return t == PropertySale || t == PropertyRent
}

func ParseType(str string) (Type, error) {
	return parseEnum("type", str, getTypeStrings())
}

// DeliveryType decides how the goods reach the buyer.
type DeliveryType int

const (
	DeliveryTypeUnknown DeliveryType = iota
	Delivery
	Pickup
	Digital
)

func getDeliveryTypeStrings() map[DeliveryType]string {
	return map[DeliveryType]string{
		DeliveryTypeUnknown: "Unknown",
		Delivery:            "Delivery",
		Pickup:              "Pickup",
		Digital:             "Digital",
	}
}

func (d DeliveryType) String() string {
	if str, ok := getDeliveryTypeStrings()[d]; ok {
		return str
	}
	return "Unknown"
}

func (d DeliveryType) Validate() error {
	if d < Delivery || d > Digital {
		return errs.NewValueIsInvalidErrorWithCause("deliveryType", fmt.Errorf("%d is not a valid delivery type", d))
	}
	return nil
}

// ReadyStatus is the status an order of this delivery type enters on MarkReady.
func (d DeliveryType) ReadyStatus() Status {
	if d == Pickup {
		return ReadyForPickup
	}
	return InTransit
}

func ParseDeliveryType(str string) (DeliveryType, error) {
	return parseEnum("deliveryType", str, getDeliveryTypeStrings())
}

// PaymentStatus tracks settlement. No payment provider is involved; the
// status is reported by the payment collaborator through MarkPaid and
// MarkPaymentFailed and flipped to Refunded when a paid order is cancelled.
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	PaymentPending
	PaymentPaid
	PaymentFailed
	PaymentRefunded
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentUnknown:  "Unknown",
		PaymentPending:  "Pending",
		PaymentPaid:     "Paid",
		PaymentFailed:   "Failed",
		PaymentRefunded: "Refunded",
	}
}

func (p PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[p]; ok {
		return str
	}
	return "Unknown"
}

func (p PaymentStatus) Validate() error {
	if p < PaymentPending || p > PaymentRefunded {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%d is not a valid payment status", p))
	}
	return nil
}

func ParsePaymentStatus(str string) (PaymentStatus, error) {
	return parseEnum("paymentStatus", str, getPaymentStatusStrings())
}
