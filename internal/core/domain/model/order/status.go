package order

import (
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
)

// Status is the fulfillment state of an order.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Preparing ──┬──> InTransit ──────┬──> Delivered ──> Completed
//	                                      └──> ReadyForPickup ─┘
//
// Cancel leads to Cancelled from every state except Completed and Cancelled,
// which are terminal.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota
	Pending
	Confirmed
	Preparing
	ReadyForPickup
	InTransit
	Delivered
	Completed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "Unknown",
		Pending:        "Pending",
		Confirmed:      "Confirmed",
		Preparing:      "Preparing",
		ReadyForPickup: "ReadyForPickup",
		InTransit:      "InTransit",
		Delivered:      "Delivered",
		Completed:      "Completed",
		Cancelled:      "Cancelled",
	}
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Validate rejects Unknown and out of range values, e.g. ones read from storage.
func (s Status) Validate() error {
	if s < Pending || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// AwaitsCourier reports whether a courier may be bound in this status.
func (s Status) AwaitsCourier() bool {
	return s == InTransit || s == ReadyForPickup
}

func ParseStatus(str string) (Status, error) {
	return parseEnum("status", str, getStatusStrings())
}

// Event is a named input to the state machine. Every applied event is
// recorded in the transition log.
type Event int

const (
	EventUnknown Event = iota
	EventCreate
	EventAccept
	EventBeginPreparing
	EventMarkReady
	EventAssignDelivery
	EventAssignBroker
	EventMarkDelivered
	EventComplete
	EventCancel
	EventMarkPaid
	EventMarkPaymentFailed
	EventRenewAssignmentWindow
)

func getEventStrings() map[Event]string {
	return map[Event]string{
		EventUnknown:               "Unknown",
		EventCreate:                "Create",
		EventAccept:                "Accept",
		EventBeginPreparing:        "BeginPreparing",
		EventMarkReady:             "MarkReady",
		EventAssignDelivery:        "AssignDelivery",
		EventAssignBroker:          "AssignBroker",
		EventMarkDelivered:         "MarkDelivered",
		EventComplete:              "Complete",
		EventCancel:                "Cancel",
		EventMarkPaid:              "MarkPaid",
		EventMarkPaymentFailed:     "MarkPaymentFailed",
		EventRenewAssignmentWindow: "RenewAssignmentWindow",
	}
}

func (e Event) String() string {
	if str, ok := getEventStrings()[e]; ok {
		return str
	}
	return "Unknown"
}

func ParseEvent(str string) (Event, error) {
	return parseEnum("event", str, getEventStrings())
}

// statusEdges lists the status changing events allowed from each state.
// MarkReady resolves its target by delivery type, see Order.MarkReady.
var statusEdges = map[Status]map[Event]Status{
	Pending: {
		EventAccept: Confirmed,
		EventCancel: Cancelled,
	},
	Confirmed: {
		EventBeginPreparing: Preparing,
		EventCancel:         Cancelled,
	},
	Preparing: {
		EventMarkReady: InTransit,
		EventCancel:    Cancelled,
	},
	ReadyForPickup: {
		EventMarkDelivered: Delivered,
		EventCancel:        Cancelled,
	},
	InTransit: {
		EventMarkDelivered: Delivered,
		EventCancel:        Cancelled,
	},
	Delivered: {
		EventComplete: Completed,
		EventCancel:   Cancelled,
	},
}

// Next returns the status reached by applying e to s.
//
// Errors:
//   - TerminalStateError for any event from Cancelled, and for anything but
//     Cancel from Completed
//   - InvalidTransitionError for Cancel from Completed and for events the
//     current state does not accept
func (s Status) Next(e Event) (Status, error) {
	if err := s.guardTerminal(e); err != nil {
		return Unknown, err
	}

	next, ok := statusEdges[s][e]
	if !ok {
		return Unknown, errs.NewInvalidTransitionError(s.String(), e.String())
	}
	return next, nil
}

// guardTerminal applies the terminal state rules shared by status changing
// and status preserving events.
func (s Status) guardTerminal(e Event) error {
	switch s {
	case Cancelled:
		return errs.NewTerminalStateError(s.String(), e.String())
	case Completed:
		if e == EventCancel {
			return errs.NewInvalidTransitionError(s.String(), e.String())
		}
		return errs.NewTerminalStateError(s.String(), e.String())
	default:
		return nil
	}
}

func parseEnum[T comparable](param, str string, names map[T]string) (T, error) {
	var zero T
	for v, name := range names {
		if name != "Unknown" && strings.EqualFold(name, str) {
			return v, nil
		}
	}
	return zero, errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%q is not a valid %s", str, param))
}
