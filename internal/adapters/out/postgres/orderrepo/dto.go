// Package orderrepo persists order aggregates with GORM. An order is spread
// over three tables: the order row with its financial breakdown and
// fulfillment context, its immutable line items, and its append-only
// transition log. Enum values are stored by name so the rows stay readable
// for the read model and for ad-hoc SQL.
package orderrepo

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number         string     `gorm:"type:varchar(40);not null;uniqueIndex"`
	BuyerID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	SellerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	CourierID      *uuid.UUID `gorm:"type:uuid;index"`
	BrokerID       *uuid.UUID `gorm:"type:uuid;index"`
	Type           string     `gorm:"type:varchar(20);not null"`
	Status         string     `gorm:"type:varchar(20);not null;index"`
	PaymentMethod  string     `gorm:"type:varchar(40);not null"`
	PaymentStatus  string     `gorm:"type:varchar(20);not null"`
	TransactionRef string     `gorm:"type:varchar(255);not null;default:''"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	BrokerFee   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Commission  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Tax         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	DeliveryType         string     `gorm:"type:varchar(20);not null"`
	Pickup               PointDTO   `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff              PointDTO   `gorm:"embedded;embeddedPrefix:dropoff_"`
	DeliveryAddress      string     `gorm:"type:text;not null;default:''"`
	DeliveryInstructions string     `gorm:"type:text;not null;default:''"`
	EstimatedDeliveryAt  *time.Time `gorm:"type:timestamptz"`
	DeliveredAt          *time.Time `gorm:"type:timestamptz"`

	ServiceDate            *time.Time `gorm:"type:timestamptz"`
	ServiceDurationSeconds *int64
	LeaseStart             *time.Time `gorm:"type:timestamptz"`
	LeaseEnd               *time.Time `gorm:"type:timestamptz"`

	CancelReason          string     `gorm:"type:text;not null;default:''"`
	CourierWindowOpenedAt *time.Time `gorm:"type:timestamptz;index"`
	BrokerWindowOpenedAt  *time.Time `gorm:"type:timestamptz;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
	Version   int64     `gorm:"not null"`

	Items       []ItemDTO       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Transitions []TransitionDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// PointDTO keeps both coordinates nullable: a point is either fully present
// or absent.
type PointDTO struct {
	Lat *float64 `gorm:"type:double precision"`
	Lng *float64 `gorm:"type:double precision"`
}

type ItemDTO struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position               int             `gorm:"not null"`
	RefKind                string          `gorm:"type:varchar(20);not null"`
	RefID                  string          `gorm:"type:varchar(255);not null;default:''"`
	Name                   string          `gorm:"type:varchar(255);not null"`
	Description            string          `gorm:"type:text;not null;default:''"`
	Quantity               int             `gorm:"not null"`
	UnitPrice              decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ServiceDate            *time.Time      `gorm:"type:timestamptz"`
	ServiceDurationSeconds *int64
}

func (ItemDTO) TableName() string {
	return "order_items"
}

type TransitionDTO struct {
	OrderID uuid.UUID                             `gorm:"type:uuid;primaryKey"`
	Seq     int                                   `gorm:"primaryKey;autoIncrement:false"`
	From    string                                `gorm:"column:from_status;type:varchar(20);not null"`
	To      string                                `gorm:"column:to_status;type:varchar(20);not null"`
	Event   string                                `gorm:"type:varchar(40);not null"`
	ActorID *uuid.UUID                            `gorm:"type:uuid"`
	Reason  string                                `gorm:"type:text;not null;default:''"`
	At      time.Time                             `gorm:"type:timestamptz;not null"`
	Details datatypes.JSONType[map[string]string] `gorm:"type:jsonb"`
}

func (TransitionDTO) TableName() string {
	return "order_transitions"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	id := s.ID.Bytes()

	items := make([]ItemDTO, 0, len(s.Items))
	for i, it := range s.Items {
		items = append(items, ItemDTO{
			ID:                     it.ID.Bytes(),
			OrderID:                id,
			Position:               i,
			RefKind:                it.RefKind.String(),
			RefID:                  it.RefID,
			Name:                   it.Name,
			Description:            it.Description,
			Quantity:               it.Quantity,
			UnitPrice:              it.UnitPrice,
			ServiceDate:            it.ServiceDate,
			ServiceDurationSeconds: durationSeconds(it.ServiceDuration),
		})
	}

	return OrderDTO{
		ID:                     id,
		Number:                 s.Number.String(),
		BuyerID:                s.BuyerID.Bytes(),
		SellerID:               s.SellerID.Bytes(),
		CourierID:              uuidPtr(s.CourierID),
		BrokerID:               uuidPtr(s.BrokerID),
		Type:                   s.Type.String(),
		Status:                 s.Status.String(),
		PaymentMethod:          s.PaymentMethod,
		PaymentStatus:          s.PaymentStatus.String(),
		TransactionRef:         s.TransactionRef,
		Subtotal:               s.Breakdown.Subtotal,
		DeliveryFee:            s.Breakdown.DeliveryFee,
		BrokerFee:              s.Breakdown.BrokerFee,
		Commission:             s.Breakdown.Commission,
		Tax:                    s.Breakdown.Tax,
		Total:                  s.Breakdown.Total,
		DeliveryType:           s.Delivery.Type.String(),
		Pickup:                 pointFromDomain(s.Delivery.Pickup),
		Dropoff:                pointFromDomain(s.Delivery.Dropoff),
		DeliveryAddress:        s.Delivery.Address,
		DeliveryInstructions:   s.Delivery.Instructions,
		EstimatedDeliveryAt:    s.Delivery.EstimatedAt,
		DeliveredAt:            s.DeliveredAt,
		ServiceDate:            s.Service.Date,
		ServiceDurationSeconds: durationSeconds(s.Service.Duration),
		LeaseStart:             s.Service.LeaseStart,
		LeaseEnd:               s.Service.LeaseEnd,
		CancelReason:           s.CancelReason,
		CourierWindowOpenedAt:  s.CourierWindowOpenedAt,
		BrokerWindowOpenedAt:   s.BrokerWindowOpenedAt,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		Version:                s.Version,
		Items:                  items,
		Transitions:            transitionsFromDomain(id, s.Transitions),
	}
}

func transitionsFromDomain(orderID uuid.UUID, ts []order.Transition) []TransitionDTO {
	out := make([]TransitionDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, TransitionDTO{
			OrderID: orderID,
			Seq:     t.Seq,
			From:    t.From.String(),
			To:      t.To.String(),
			Event:   t.Event.String(),
			ActorID: uuidPtr(t.ActorID),
			Reason:  t.Reason,
			At:      t.At,
			Details: datatypes.NewJSONType(t.Details),
		})
	}
	return out
}

// toDomain rebuilds the aggregate. Every decoding problem is collected so a
// corrupt row is reported in one error.
func toDomain(dto OrderDTO) (*order.Order, error) {
	var problems []error
	collect := func(err error) {
		if err != nil {
			problems = append(problems, err)
		}
	}

	id, err := kernel.UUIDFromBytes(dto.ID[:])
	collect(err)
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	collect(err)
	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	collect(err)
	courierID, err := uuidFromPtr(dto.CourierID)
	collect(err)
	brokerID, err := uuidFromPtr(dto.BrokerID)
	collect(err)
	number, err := order.ParseNumber(dto.Number)
	collect(err)
	orderType, err := order.ParseType(dto.Type)
	collect(err)
	status, err := order.ParseStatus(dto.Status)
	collect(err)
	paymentStatus, err := order.ParsePaymentStatus(dto.PaymentStatus)
	collect(err)
	deliveryType, err := order.ParseDeliveryType(dto.DeliveryType)
	collect(err)
	pickup, err := dto.Pickup.toDomain()
	collect(err)
	dropoff, err := dto.Dropoff.toDomain()
	collect(err)

	items := make([]order.ItemParams, 0, len(dto.Items))
	for _, it := range dto.Items {
		p, itemErr := itemToDomain(it)
		collect(itemErr)
		items = append(items, p)
	}

	transitions := make([]order.Transition, 0, len(dto.Transitions))
	for _, t := range dto.Transitions {
		tr, trErr := transitionToDomain(t)
		collect(trErr)
		transitions = append(transitions, tr)
	}

	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:        id,
		Number:    number,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CourierID: courierID,
		BrokerID:  brokerID,
		Type:      orderType,
		Items:     items,
		Breakdown: pricing.Breakdown{
			Subtotal:    dto.Subtotal,
			DeliveryFee: dto.DeliveryFee,
			BrokerFee:   dto.BrokerFee,
			Commission:  dto.Commission,
			Tax:         dto.Tax,
			Total:       dto.Total,
		},
		PaymentMethod:  dto.PaymentMethod,
		PaymentStatus:  paymentStatus,
		TransactionRef: dto.TransactionRef,
		Status:         status,
		Delivery: order.DeliveryContext{
			Type:         deliveryType,
			Pickup:       pickup,
			Dropoff:      dropoff,
			Address:      dto.DeliveryAddress,
			Instructions: dto.DeliveryInstructions,
			EstimatedAt:  dto.EstimatedDeliveryAt,
		},
		DeliveredAt: dto.DeliveredAt,
		Service: order.ServiceContext{
			Date:       dto.ServiceDate,
			Duration:   secondsDuration(dto.ServiceDurationSeconds),
			LeaseStart: dto.LeaseStart,
			LeaseEnd:   dto.LeaseEnd,
		},
		CancelReason:          dto.CancelReason,
		CourierWindowOpenedAt: dto.CourierWindowOpenedAt,
		BrokerWindowOpenedAt:  dto.BrokerWindowOpenedAt,
		CreatedAt:             dto.CreatedAt,
		UpdatedAt:             dto.UpdatedAt,
		Version:               dto.Version,
		Transitions:           transitions,
	})
}

func itemToDomain(dto ItemDTO) (order.ItemParams, error) {
	id, idErr := kernel.UUIDFromBytes(dto.ID[:])
	refKind, kindErr := order.ParseRefKind(dto.RefKind)
	if err := errors.Join(idErr, kindErr); err != nil {
		return order.ItemParams{}, err
	}

	return order.ItemParams{
		ID:              id,
		RefKind:         refKind,
		RefID:           dto.RefID,
		Name:            dto.Name,
		Description:     dto.Description,
		Quantity:        dto.Quantity,
		UnitPrice:       dto.UnitPrice,
		ServiceDate:     dto.ServiceDate,
		ServiceDuration: secondsDuration(dto.ServiceDurationSeconds),
	}, nil
}

func transitionToDomain(dto TransitionDTO) (order.Transition, error) {
	from, fromErr := order.ParseStatus(dto.From)
	to, toErr := order.ParseStatus(dto.To)
	event, eventErr := order.ParseEvent(dto.Event)
	actorID, actorErr := uuidFromPtr(dto.ActorID)
	if err := errors.Join(fromErr, toErr, eventErr, actorErr); err != nil {
		return order.Transition{}, err
	}

	return order.Transition{
		Seq:     dto.Seq,
		From:    from,
		To:      to,
		Event:   event,
		ActorID: actorID,
		Reason:  dto.Reason,
		At:      dto.At,
		Details: dto.Details.Data(),
	}, nil
}

func pointFromDomain(p *kernel.GeoPoint) PointDTO {
	if p == nil {
		return PointDTO{}
	}
	lat, lng := p.Lat(), p.Lng()
	return PointDTO{Lat: &lat, Lng: &lng}
}

func (p PointDTO) toDomain() (*kernel.GeoPoint, error) {
	return kernel.NewOptionalGeoPoint(p.Lat, p.Lng)
}

func uuidPtr(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func uuidFromPtr(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func durationSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	s := int64(d.Seconds())
	return &s
}

func secondsDuration(s *int64) *time.Duration {
	if s == nil {
		return nil
	}
	d := time.Duration(*s) * time.Second
	return &d
}
