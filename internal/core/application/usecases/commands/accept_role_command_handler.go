package commands

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/metrics"
)

// AcceptRoleCommandHandler binds a courier or broker to an order.
//
// Acceptance is a single compare-and-set on the order version: the slot is
// bound only if nobody changed the order since it was read. Of two concurrent
// acceptances exactly one commits; the other is told RoleAlreadyAssigned and
// never retried. Re-pricing happens inside the same change.
//
// Business rules:
//   - the candidate must be in the party directory, hold the role and be active
//   - the candidate may not be the order's buyer or seller
//   - the slot rules of order.AssignRole apply
type AcceptRoleCommandHandler struct {
	uowFactory UoWFactory
	schedule   pricing.FeeSchedule
	announcer  *Announcer
}

func NewAcceptRoleCommandHandler(
	uowFactory UoWFactory,
	schedule pricing.FeeSchedule,
	announcer *Announcer,
) AcceptRoleCommandHandler {
	return AcceptRoleCommandHandler{
		uowFactory: uowFactory,
		schedule:   schedule,
		announcer:  announcer,
	}
}

func (h AcceptRoleCommandHandler) Handle(ctx context.Context, cmd AcceptRoleCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "AcceptRole", cmd.OrderID())
	defer func() {
		metrics.RecordAcceptance(cmd.Role().String(), outcomeOf(err))
		end(err)
	}()

	o, err := h.assign(ctx, cmd)
	if errors.Is(err, errs.ErrVersionIsInvalid) {
		return h.explainLostRace(ctx, cmd, err)
	}
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventRoleAssigned, o.ID(), o.BuyerID(), o.SellerID(), cmd.CandidateID())
	return nil
}

func (h AcceptRoleCommandHandler) assign(ctx context.Context, cmd AcceptRoleCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	candidate, err := uow.PartyRegistry().GetParty(ctx, cmd.CandidateID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, errs.NewNotAuthorizedError(cmd.CandidateID().String(), "accept "+cmd.Role().String()+" unregistered")
	}
	if err != nil {
		return nil, err
	}
	if !candidate.Roles().Has(cmd.Role()) || !candidate.IsActive() {
		return nil, errs.NewNotAuthorizedError(cmd.CandidateID().String(), "accept "+cmd.Role().String())
	}

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = o.AssignRole(cmd.Role(), cmd.CandidateID(), h.schedule, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// explainLostRace turns a version conflict into the definitive answer the
// caller needs: if the slot is taken now, somebody else won it.
func (h AcceptRoleCommandHandler) explainLostRace(ctx context.Context, cmd AcceptRoleCommand, conflict error) error {
	current, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return conflict
	}
	if slotErr := current.CheckAssignable(cmd.Role()); errors.Is(slotErr, errs.ErrRoleAlreadyAssigned) {
		return slotErr
	}
	return conflict
}
