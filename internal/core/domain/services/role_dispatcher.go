package services

import (
	"context"
	"errors"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
)

// ErrCandidateNotFound is returned when nobody eligible is near an open order.
var ErrCandidateNotFound = errors.New("candidate not found")

// RoleDispatcher chooses who an open courier or broker slot is offered to.
// It does not bind anyone: the slot goes to whoever accepts first.
//
// Business rules:
//   - the order must have an open window for the role
//   - candidates are searched around the order's subject point
//   - the order's own buyer and seller are never offered the slot
//   - at most limit candidates, nearest first
type RoleDispatcher struct {
	index    *ProximityIndex
	radiusKm float64
	limit    int
}

func NewRoleDispatcher(index *ProximityIndex, radiusKm float64, limit int) RoleDispatcher {
	return RoleDispatcher{index: index, radiusKm: radiusKm, limit: limit}
}

// Dispatch returns the candidates to announce o to.
//
// Errors:
//   - the assignment errors of order.CheckAssignable
//   - RoleNotApplicableError when the window is not open
//   - ErrCandidateNotFound when the search comes back empty
func (d RoleDispatcher) Dispatch(ctx context.Context, o *order.Order, role party.Role) ([]Candidate, error) {
	if err := o.CheckAssignable(role); err != nil {
		return nil, err
	}
	if !o.IsOpenFor(role) {
		return nil, errs.NewRoleNotApplicableError(role.String(), "no open assignment window")
	}

	subject := o.SubjectPoint(role)
	if subject == nil {
		return nil, errs.NewValueIsRequiredError("pickup")
	}

	var picked []Candidate
	for c, err := range d.index.FindCandidates(ctx, role, *subject, d.radiusKm) {
		if err != nil {
			return nil, err
		}
		if o.HasRole(c.PartyID, party.Buyer) || o.HasRole(c.PartyID, party.Seller) {
			continue
		}
		picked = append(picked, c)
		if len(picked) == d.limit {
			break
		}
	}

	if len(picked) == 0 {
		return nil, ErrCandidateNotFound
	}
	return picked, nil
}
