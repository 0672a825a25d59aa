package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the order row, its items and its whole transition log.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update rewrites the mutable columns of the order row guarded by the version
// the aggregate was loaded at, then appends the new log entries. Items never
// change after checkout and are not touched.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.ExpectedVersion()).
		Select("*").
		Omit(clause.Associations, "id", "number", "buyer_id", "seller_id", "type", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.explainMissedUpdate(ctx, aggregate)
	}

	if unsaved := aggregate.UnsavedTransitions(); len(unsaved) > 0 {
		rows := transitionsFromDomain(dto.ID, unsaved)
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) explainMissedUpdate(ctx context.Context, aggregate *order.Order) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", aggregate.ID().Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	return errs.NewVersionIsInvalidErrorWithCause("order",
		fmt.Errorf("stored version is not %d", aggregate.ExpectedVersion()))
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.withChildren(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListOpenForAssignment filters on the window column and the pickup box. The
// caller still applies the exact radius.
func (r *GormOrderRepository) ListOpenForAssignment(
	ctx context.Context,
	role party.Role,
	box kernel.BoundingBox,
) ([]*order.Order, error) {
	column, err := windowColumn(role)
	if err != nil {
		return nil, err
	}

	q := r.withChildren(ctx).
		Where(column+" IS NOT NULL").
		Where("status NOT IN ?", terminalStatuses())
	if !box.IsWholeGlobe() {
		q = q.Where("pickup_lat BETWEEN ? AND ? AND pickup_lng BETWEEN ? AND ?",
			box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	}

	var dtos []OrderDTO
	if err := q.Order(column).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormOrderRepository) ListAssignmentExpired(
	ctx context.Context,
	role party.Role,
	openedBefore time.Time,
) ([]*order.Order, error) {
	column, err := windowColumn(role)
	if err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	err = r.withChildren(ctx).
		Where(column+" < ?", openedBefore).
		Where("status NOT IN ?", terminalStatuses()).
		Order(column).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormOrderRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Transitions", func(db *gorm.DB) *gorm.DB { return db.Order("seq") })
}

func windowColumn(role party.Role) (string, error) {
	switch role {
	case party.Courier:
		return "courier_window_opened_at", nil
	case party.Broker:
		return "broker_window_opened_at", nil
	default:
		return "", errs.NewRoleNotApplicableError(role.String(), "role is not filled by acceptance")
	}
}

func terminalStatuses() []string {
	return []string{order.Completed.String(), order.Cancelled.String()}
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
