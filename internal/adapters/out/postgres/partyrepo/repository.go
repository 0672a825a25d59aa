package partyrepo

import (
	"context"
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPartyRegistry implements ports.PartyRegistry using GORM.
type GormPartyRegistry struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormPartyRegistry(db *gorm.DB, tracker aggregateTracker) *GormPartyRegistry {
	return &GormPartyRegistry{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormPartyRegistry) GetParty(ctx context.Context, id kernel.UUID) (*party.Party, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto PartyDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("party", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListByRole returns parties holding role with a location inside box, in id
// order so that ties in distance resolve the same way on every call.
func (r *GormPartyRegistry) ListByRole(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*party.Party, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where("roles & ? <> 0", int16(party.NewRoleSet(role))).
		Where("location_lat IS NOT NULL AND location_lng IS NOT NULL")
	if !box.IsWholeGlobe() {
		q = q.Where("location_lat BETWEEN ? AND ? AND location_lng BETWEEN ? AND ?",
			box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	}

	var dtos []PartyDTO
	if err := q.Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	parties := make([]*party.Party, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, nil
}

// Upsert inserts the snapshot or overwrites the stored one when it is not
// newer. Snapshots delivered out of order are dropped by the database.
func (r *GormPartyRegistry) Upsert(ctx context.Context, p *party.Party) error {
	if err := p.Validate(); err != nil {
		return err
	}

	dto := fromDomain(p)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"roles", "active", "available_now", "location_lat", "location_lng", "updated_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "parties.updated_at <= excluded.updated_at"},
		}},
	}).Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(p.ID(), p)
	return nil
}
