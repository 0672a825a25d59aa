// Package party models the local snapshot of a marketplace participant as
// supplied by the identity service: which roles it holds, whether it is
// active and available right now, and where it currently is.
package party

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// Role is a capacity in which a party acts on an order.
type Role int

const (
	RoleUnknown Role = iota
	Buyer
	Seller
	Courier
	Broker
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown: "Unknown",
		Buyer:       "Buyer",
		Seller:      "Seller",
		Courier:     "Courier",
		Broker:      "Broker",
	}
}

func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "Unknown"
}

func (r Role) Validate() error {
	if r < Buyer || r > Broker {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// IsAssignable reports whether the role is filled by the acceptance protocol.
func (r Role) IsAssignable() bool {
	return r == Courier || r == Broker
}

// ParseRole accepts the role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for r, name := range getRoleStrings() {
		if r != RoleUnknown && strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

// RoleSet is a bitmask of the roles a party holds.
type RoleSet uint8

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

func (s RoleSet) With(r Role) RoleSet {
	if r.Validate() != nil {
		return s
	}
	return s | 1<<uint(r)
}

func (s RoleSet) Has(r Role) bool {
	return r.Validate() == nil && s&(1<<uint(r)) != 0
}

func (s RoleSet) Roles() []Role {
	var out []Role
	for r := Buyer; r <= Broker; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Party is a read-only snapshot from the party registry.
type Party struct {
	id            kernel.UUID
	roles         RoleSet
	active        bool
	availableNow  bool
	location      *kernel.GeoPoint
	updatedAt     time.Time
	isConstructed bool
}

var ErrPartyIsNotConstructed = errors.New("Party must be created via NewParty or RestoreParty")

type Params struct {
	ID           kernel.UUID
	Roles        RoleSet
	Active       bool
	AvailableNow bool
	Location     *kernel.GeoPoint
	UpdatedAt    time.Time
}

// NewParty validates the snapshot. A present location must be a constructed GeoPoint.
func NewParty(p Params) (*Party, error) {
	err := p.ID.Validate()
	if p.Location != nil {
		err = errors.Join(err, p.Location.Validate())
	}
	if err != nil {
		return nil, err
	}

	return RestoreParty(p), nil
}

// RestoreParty rebuilds a party from storage without validation.
func RestoreParty(p Params) *Party {
	return &Party{
		id:            p.ID,
		roles:         p.Roles,
		active:        p.Active,
		availableNow:  p.AvailableNow,
		location:      p.Location,
		updatedAt:     p.UpdatedAt,
		isConstructed: true,
	}
}

func (p *Party) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrPartyIsNotConstructed
	}
	return nil
}

func (p *Party) ID() kernel.UUID {
	return p.id
}

func (p *Party) Roles() RoleSet {
	return p.roles
}

func (p *Party) IsActive() bool {
	return p.active
}

func (p *Party) IsAvailableNow() bool {
	return p.availableNow
}

func (p *Party) Location() *kernel.GeoPoint {
	return p.location
}

func (p *Party) UpdatedAt() time.Time {
	return p.updatedAt
}

// IsEligible reports whether the party may be offered a role slot: it holds
// the role, is active, is available now and has a known location.
func (p *Party) IsEligible(role Role) bool {
	return p.roles.Has(role) && p.active && p.availableNow && p.location != nil
}

// Snapshot returns the constructor parameters that reproduce p.
func (p *Party) Snapshot() Params {
	return Params{
		ID:           p.id,
		Roles:        p.roles,
		Active:       p.active,
		AvailableNow: p.availableNow,
		Location:     p.location,
		UpdatedAt:    p.updatedAt,
	}
}
