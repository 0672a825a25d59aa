package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// RefKind tells what kind of catalog entry an item was snapshotted from.
type RefKind int

const (
	RefNone RefKind = iota
	RefProduct
	RefPlace
)

func getRefKindStrings() map[RefKind]string {
	return map[RefKind]string{
		RefNone:    "None",
		RefProduct: "Product",
		RefPlace:   "Place",
	}
}

func (k RefKind) String() string {
	if str, ok := getRefKindStrings()[k]; ok {
		return str
	}
	return "None"
}

func ParseRefKind(str string) (RefKind, error) {
	if str == "" || strings.EqualFold(str, "None") {
		return RefNone, nil
	}
	return parseEnum("refKind", str, getRefKindStrings())
}

// ItemParams describes a line item. Name, description and unit price are a
// snapshot taken at checkout; later catalog changes do not reach the order.
type ItemParams struct {
	ID              kernel.UUID
	RefKind         RefKind
	RefID           string
	Name            string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	ServiceDate     *time.Time
	ServiceDuration *time.Duration
}

// Item is a line owned by exactly one order. It is a value: the aggregate
// copies it freely and never exposes a way to change it.
type Item struct {
	params ItemParams
}

// NewItem validates a line. Quantity and price failures match pricing.ErrInvalidItem.
func NewItem(p ItemParams) (Item, error) {
	var problems []error

	if err := p.ID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("item name"))
	}
	if p.RefKind != RefNone && p.RefID == "" {
		problems = append(problems, errs.NewValueIsRequiredError("item refId"))
	}
	if err := pricing.ValidateLines([]pricing.Line{{Quantity: p.Quantity, UnitPrice: p.UnitPrice}}); err != nil {
		problems = append(problems, err)
	}
	if p.ServiceDuration != nil && *p.ServiceDuration <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("serviceDuration",
			fmt.Errorf("%s is not positive", *p.ServiceDuration)))
	}

	if err := errors.Join(problems...); err != nil {
		return Item{}, err
	}
	return Item{params: p}, nil
}

func (i Item) ID() kernel.UUID                 { return i.params.ID }
func (i Item) RefKind() RefKind                { return i.params.RefKind }
func (i Item) RefID() string                   { return i.params.RefID }
func (i Item) Name() string                    { return i.params.Name }
func (i Item) Description() string             { return i.params.Description }
func (i Item) Quantity() int                   { return i.params.Quantity }
func (i Item) UnitPrice() decimal.Decimal      { return i.params.UnitPrice }
func (i Item) ServiceDate() *time.Time         { return i.params.ServiceDate }
func (i Item) ServiceDuration() *time.Duration { return i.params.ServiceDuration }

// TotalPrice is quantity × unit price at full precision.
func (i Item) TotalPrice() decimal.Decimal {
	return i.line().Total()
}

// Params returns a copy of the values the item was built from.
func (i Item) Params() ItemParams {
	return i.params
}

func (i Item) line() pricing.Line {
	return pricing.Line{Quantity: i.params.Quantity, UnitPrice: i.params.UnitPrice}
}
