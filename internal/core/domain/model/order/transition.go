package order

import (
	"maps"
	"time"

	"marketplace/internal/core/domain/model/kernel"
)

// Transition is one entry of the order's audit trail. Seq starts at 1 and
// grows by one with every applied event.
type Transition struct {
	Seq     int
	From    Status
	To      Status
	Event   Event
	ActorID *kernel.UUID // nil for system events
	Reason  string
	At      time.Time
	Details map[string]string
}

func (t Transition) clone() Transition {
	t.Details = maps.Clone(t.Details)
	return t
}
