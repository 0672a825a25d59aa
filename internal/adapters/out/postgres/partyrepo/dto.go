// Package partyrepo stores the party directory snapshots pushed by the
// identity service. Roles are kept as a bitmask so a role lookup is a single
// bitwise test.
package partyrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"

	"github.com/google/uuid"
)

type PartyDTO struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Roles        int16       `gorm:"type:smallint;not null"`
	Active       bool        `gorm:"not null"`
	AvailableNow bool        `gorm:"not null"`
	Location     LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	UpdatedAt    time.Time   `gorm:"type:timestamptz;not null"`
}

func (PartyDTO) TableName() string {
	return "parties"
}

type LocationDTO struct {
	Lat *float64 `gorm:"type:double precision"`
	Lng *float64 `gorm:"type:double precision"`
}

func fromDomain(p *party.Party) PartyDTO {
	dto := PartyDTO{
		ID:           p.ID().Bytes(),
		Roles:        int16(p.Roles()),
		Active:       p.IsActive(),
		AvailableNow: p.IsAvailableNow(),
		UpdatedAt:    p.UpdatedAt(),
	}
	if loc := p.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.Location = LocationDTO{Lat: &lat, Lng: &lng}
	}
	return dto
}

// toDomain goes through NewParty so that a stored location outside the
// coordinate range is reported instead of silently restored.
func toDomain(dto PartyDTO) (*party.Party, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	loc, err := kernel.NewOptionalGeoPoint(dto.Location.Lat, dto.Location.Lng)
	if err != nil {
		return nil, err
	}

	return party.NewParty(party.Params{
		ID:           id,
		Roles:        party.RoleSet(dto.Roles),
		Active:       dto.Active,
		AvailableNow: dto.AvailableNow,
		Location:     loc,
		UpdatedAt:    dto.UpdatedAt,
	})
}
