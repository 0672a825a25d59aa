package commands

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrAcceptRoleCommandIsNotConstructed = errors.New(
	"AcceptRoleCommand must be created via NewAcceptRoleCommand constructor",
)

// AcceptRoleCommand is a courier or broker claiming the open slot of an order.
//
// Example:
//
//	cmd, err := NewAcceptRoleCommand(orderID, party.Courier, courierID)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrRoleAlreadyAssigned) {
//	    // somebody else was first: try another order
//	}
type AcceptRoleCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	role        party.Role
	candidateID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptRoleCommand(orderID kernel.UUID, role party.Role, candidateID kernel.UUID) (AcceptRoleCommand, error) {
	cmd := AcceptRoleCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setRole(role),
		cmd.setCandidateID(candidateID),
	); err != nil {
		return AcceptRoleCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptRoleCommand) Validate() error {
	return c.guard.Validate(ErrAcceptRoleCommandIsNotConstructed)
}

func (c AcceptRoleCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AcceptRoleCommand) Role() party.Role {
	return c.role
}

func (c AcceptRoleCommand) CandidateID() kernel.UUID {
	return c.candidateID
}

func (c *AcceptRoleCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	c.orderID = id
	return nil
}

func (c *AcceptRoleCommand) setRole(role party.Role) error {
	if !role.IsAssignable() {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%s is not filled by acceptance", role))
	}
	c.role = role
	return nil
}

func (c *AcceptRoleCommand) setCandidateID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("candidateId", err)
	}
	c.candidateID = id
	return nil
}
