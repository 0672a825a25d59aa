package queries

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery lists the orders where requester holds role. A party only
// ever lists its own orders.
//
// Example:
//
//	q, err := NewListOrdersQuery(sellerID, party.Seller, []order.Status{order.Pending}, nil, nil, 20, 0)
//	page, err := handler.Handle(ctx, q)
type ListOrdersQuery struct {
	filter ports.OrderFilter

	guard guard.ConstructorGuard
}

// NewListOrdersQuery builds the filter. A zero limit means DefaultPageSize;
// from is inclusive and to exclusive.
func NewListOrdersQuery(
	requesterID kernel.UUID,
	role party.Role,
	statuses []order.Status,
	from, to *time.Time,
	limit, offset int,
) (ListOrdersQuery, error) {
	var problems []error

	if err := requesterID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("requesterId", err))
	}
	if err := role.Validate(); err != nil {
		problems = append(problems, err)
	}
	for i, s := range statuses {
		if err := s.Validate(); err != nil {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("status[%d]", i), err))
		}
	}
	if from != nil && to != nil && !to.After(*from) {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("to",
			fmt.Errorf("%s is not after %s", to.Format(time.RFC3339), from.Format(time.RFC3339))))
	}
	if limit < 0 || limit > MaxPageSize {
		problems = append(problems, errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxPageSize))
	}
	if offset < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("offset", offset, 0, "unbounded"))
	}
	if err := errors.Join(problems...); err != nil {
		return ListOrdersQuery{}, err
	}

	if limit == 0 {
		limit = DefaultPageSize
	}
	return ListOrdersQuery{
		filter: ports.OrderFilter{
			PartyID:  &requesterID,
			Role:     role,
			Statuses: slices.Clone(statuses),
			From:     from,
			To:       to,
			Limit:    limit,
			Offset:   offset,
		},
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Filter returns the read model filter the query stands for.
func (q ListOrdersQuery) Filter() ports.OrderFilter {
	f := q.filter
	f.Statuses = slices.Clone(q.filter.Statuses)
	return f
}
