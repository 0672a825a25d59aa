package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrTerminalState       = errors.New("terminal state")
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
	ErrRoleNotApplicable   = errors.New("role not applicable")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrIntegrity           = errors.New("integrity violation")
)

// InvalidTransitionError is returned when an event is not allowed from the current status.
type InvalidTransitionError struct {
	Status string
	Event  string
}

func NewInvalidTransitionError(status, event string) *InvalidTransitionError {
	return &InvalidTransitionError{Status: status, Event: event}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s is not allowed from %s", ErrInvalidTransition, e.Event, e.Status)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// TerminalStateError is returned for any event attempted on a finished order.
type TerminalStateError struct {
	Status string
	Event  string
}

func NewTerminalStateError(status, event string) *TerminalStateError {
	return &TerminalStateError{Status: status, Event: event}
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s: order is %s, %s rejected", ErrTerminalState, e.Status, e.Event)
}

func (e *TerminalStateError) Unwrap() error {
	return ErrTerminalState
}

// RoleAlreadyAssignedError is the definitive rejection handed to every losing
// acceptor of a courier or broker slot.
type RoleAlreadyAssignedError struct {
	Role    string
	OrderID string
}

func NewRoleAlreadyAssignedError(role, orderID string) *RoleAlreadyAssignedError {
	return &RoleAlreadyAssignedError{Role: role, OrderID: orderID}
}

func (e *RoleAlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s: %s on order %s", ErrRoleAlreadyAssigned, e.Role, e.OrderID)
}

func (e *RoleAlreadyAssignedError) Unwrap() error {
	return ErrRoleAlreadyAssigned
}

// RoleNotApplicableError is returned when an order has no slot for the requested role.
type RoleNotApplicableError struct {
	Role   string
	Reason string
}

func NewRoleNotApplicableError(role, reason string) *RoleNotApplicableError {
	return &RoleNotApplicableError{Role: role, Reason: reason}
}

func (e *RoleNotApplicableError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrRoleNotApplicable, e.Role, e.Reason)
}

func (e *RoleNotApplicableError) Unwrap() error {
	return ErrRoleNotApplicable
}

// NotAuthorizedError is returned when the acting party holds no matching role on the order.
type NotAuthorizedError struct {
	PartyID string
	Action  string
}

func NewNotAuthorizedError(partyID, action string) *NotAuthorizedError {
	return &NotAuthorizedError{PartyID: partyID, Action: action}
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s: party %s may not %s", ErrNotAuthorized, e.PartyID, e.Action)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// IntegrityError signals a broken aggregate invariant. The mutation that
// produced it is discarded.
type IntegrityError struct {
	Invariant string
	Cause     error
}

func NewIntegrityError(invariant string) *IntegrityError {
	return &IntegrityError{Invariant: invariant}
}

func NewIntegrityErrorWithCause(invariant string, cause error) *IntegrityError {
	return &IntegrityError{Invariant: invariant, Cause: cause}
}

func (e *IntegrityError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrIntegrity, e.Invariant), e.Cause)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// IsExpected reports whether err is a normal business outcome: bad input, an
// unknown id, a refused transition or a lost race. Such errors are returned to
// the caller and never logged as failures.
func IsExpected(err error) bool {
	return IsValidation(err) ||
		errors.Is(err, ErrObjectNotFound) ||
		errors.Is(err, ErrVersionIsInvalid) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrTerminalState) ||
		errors.Is(err, ErrRoleAlreadyAssigned) ||
		errors.Is(err, ErrRoleNotApplicable) ||
		errors.Is(err, ErrNotAuthorized)
}
