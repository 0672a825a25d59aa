package queries

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrSellerSalesQueryIsNotConstructed = errors.New(
	"SellerSalesQuery must be created via NewSellerSalesQuery constructor",
)

// SellerSalesQuery sums a seller's completed orders created in [from, to).
type SellerSalesQuery struct {
	sellerID kernel.UUID
	from     time.Time
	to       time.Time

	guard guard.ConstructorGuard
}

func NewSellerSalesQuery(sellerID kernel.UUID, from, to time.Time) (SellerSalesQuery, error) {
	var problems []error
	if err := sellerID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("sellerId", err))
	}
	if from.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("from"))
	}
	if to.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("to"))
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("to",
			fmt.Errorf("%s is not after %s", to.Format(time.RFC3339), from.Format(time.RFC3339))))
	}
	if err := errors.Join(problems...); err != nil {
		return SellerSalesQuery{}, err
	}

	return SellerSalesQuery{sellerID: sellerID, from: from.UTC(), to: to.UTC(), guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q SellerSalesQuery) Validate() error {
	return q.guard.Validate(ErrSellerSalesQueryIsNotConstructed)
}

func (q SellerSalesQuery) SellerID() kernel.UUID { return q.sellerID }
func (q SellerSalesQuery) From() time.Time       { return q.from }
func (q SellerSalesQuery) To() time.Time         { return q.to }
