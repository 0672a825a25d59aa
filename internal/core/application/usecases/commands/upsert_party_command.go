package commands

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrUpsertPartyCommandIsNotConstructed = errors.New(
	"UpsertPartyCommand must be created via NewUpsertPartyCommand constructor",
)

// UpsertPartyCommand carries a party snapshot pushed by the identity service.
type UpsertPartyCommand struct {
	snapshot *party.Party

	guard guard.ConstructorGuard
}

// NewUpsertPartyCommand validates the snapshot. Coordinates are optional but
// must come as a pair; an out of range pair fails with kernel.ErrInvalidCoordinate.
func NewUpsertPartyCommand(
	id kernel.UUID,
	roles party.RoleSet,
	active, availableNow bool,
	lat, lng *float64,
	updatedAt time.Time,
) (UpsertPartyCommand, error) {
	location, locErr := kernel.NewOptionalGeoPoint(lat, lng)
	var timeErr error
	if updatedAt.IsZero() {
		timeErr = errs.NewValueIsRequiredError("updatedAt")
	}
	if err := errors.Join(locErr, timeErr); err != nil {
		return UpsertPartyCommand{}, err
	}

	p, err := party.NewParty(party.Params{
		ID:           id,
		Roles:        roles,
		Active:       active,
		AvailableNow: availableNow,
		Location:     location,
		UpdatedAt:    updatedAt.UTC(),
	})
	if err != nil {
		return UpsertPartyCommand{}, err
	}

	return UpsertPartyCommand{snapshot: p, guard: guard.NewConstructorGuard()}, nil
}

func (c UpsertPartyCommand) Validate() error {
	return c.guard.Validate(ErrUpsertPartyCommandIsNotConstructed)
}

// Party returns the validated snapshot.
func (c UpsertPartyCommand) Party() *party.Party {
	return c.snapshot
}
