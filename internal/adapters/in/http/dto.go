package http

import (
	"time"

	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"

	"github.com/shopspring/decimal"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Created struct {
	ID string `json:"id"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CartLine struct {
	CatalogItemID          string           `json:"catalogItemId"`
	Quantity               int              `json:"quantity"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	UnitPrice              *decimal.Decimal `json:"unitPrice"`
	ServiceDate            *time.Time       `json:"serviceDate"`
	ServiceDurationMinutes *int             `json:"serviceDurationMinutes"`
}

type NewDelivery struct {
	Type         string     `json:"type"`
	Pickup       *Location  `json:"pickup"`
	Dropoff      *Location  `json:"dropoff"`
	Address      string     `json:"address"`
	Instructions string     `json:"instructions"`
	EstimatedAt  *time.Time `json:"estimatedAt"`
}

type NewService struct {
	Date            *time.Time `json:"date"`
	DurationMinutes *int       `json:"durationMinutes"`
	LeaseStart      *time.Time `json:"leaseStart"`
	LeaseEnd        *time.Time `json:"leaseEnd"`
}

type NewOrder struct {
	SellerID      string          `json:"sellerId"`
	Type          string          `json:"type"`
	Lines         []CartLine      `json:"lines"`
	Delivery      NewDelivery     `json:"delivery"`
	Service       NewService      `json:"service"`
	PaymentMethod string          `json:"paymentMethod"`
	Tax           decimal.Decimal `json:"tax"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type PaidRequest struct {
	TransactionRef string `json:"transactionRef"`
}

type PartySnapshot struct {
	Roles        []string  `json:"roles"`
	Active       bool      `json:"active"`
	AvailableNow bool      `json:"availableNow"`
	Location     *Location `json:"location"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type OrderSummary struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	BuyerID       string          `json:"buyerId"`
	SellerID      string          `json:"sellerId"`
	CourierID     *string         `json:"courierId,omitempty"`
	BrokerID      *string         `json:"brokerId,omitempty"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type Item struct {
	ID          string          `json:"id"`
	RefKind     string          `json:"refKind"`
	RefID       string          `json:"refId,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	BrokerFee   decimal.Decimal `json:"brokerFee"`
	Commission  decimal.Decimal `json:"commission"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

type Transition struct {
	Seq     int               `json:"seq"`
	From    string            `json:"from"`
	To      string            `json:"to"`
	Event   string            `json:"event"`
	ActorID *string           `json:"actorId,omitempty"`
	Reason  string            `json:"reason,omitempty"`
	At      time.Time         `json:"at"`
	Details map[string]string `json:"details,omitempty"`
}

type OrderDetail struct {
	OrderSummary
	PaymentMethod         string       `json:"paymentMethod,omitempty"`
	TransactionRef        string       `json:"transactionRef,omitempty"`
	Items                 []Item       `json:"items"`
	Breakdown             Breakdown    `json:"breakdown"`
	DeliveryType          string       `json:"deliveryType"`
	Pickup                *Location    `json:"pickup,omitempty"`
	Dropoff               *Location    `json:"dropoff,omitempty"`
	DeliveryAddress       string       `json:"deliveryAddress,omitempty"`
	DeliveryDistanceKm    *float64     `json:"deliveryDistanceKm,omitempty"`
	DeliveredAt           *time.Time   `json:"deliveredAt,omitempty"`
	CancelReason          string       `json:"cancelReason,omitempty"`
	CourierWindowOpenedAt *time.Time   `json:"courierWindowOpenedAt,omitempty"`
	BrokerWindowOpenedAt  *time.Time   `json:"brokerWindowOpenedAt,omitempty"`
	UpdatedAt             time.Time    `json:"updatedAt"`
	Version               int64        `json:"version"`
	Transitions           []Transition `json:"transitions"`
}

type AvailableOrder struct {
	OrderID      string          `json:"orderId"`
	Number       string          `json:"number"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	SubjectPoint Location        `json:"subjectPoint"`
	Dropoff      *Location       `json:"dropoff,omitempty"`
	DistanceKm   float64         `json:"distanceKm"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Fee          decimal.Decimal `json:"fee"`
}

type Candidate struct {
	PartyID    string   `json:"partyId"`
	Location   Location `json:"location"`
	DistanceKm float64  `json:"distanceKm"`
}

type SalesSummary struct {
	SellerID   string          `json:"sellerId"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	OrderCount int             `json:"orderCount"`
	Total      decimal.Decimal `json:"total"`
}

func locationOf(p *kernel.GeoPoint) *Location {
	if p == nil {
		return nil
	}
	return &Location{Lat: p.Lat(), Lng: p.Lng()}
}

func idString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toOrderSummary(s ports.OrderSummary) OrderSummary {
	return OrderSummary{
		ID:            s.ID.String(),
		Number:        s.Number,
		Type:          s.Type.String(),
		Status:        s.Status.String(),
		PaymentStatus: s.PaymentStatus.String(),
		BuyerID:       s.BuyerID.String(),
		SellerID:      s.SellerID.String(),
		CourierID:     idString(s.CourierID),
		BrokerID:      idString(s.BrokerID),
		Total:         s.Total,
		CreatedAt:     s.CreatedAt,
	}
}

func toOrderDetail(d queries.OrderDetail) OrderDetail {
	items := make([]Item, len(d.Items))
	for i, it := range d.Items {
		items[i] = Item{
			ID:          it.ID.String(),
			RefKind:     it.RefKind.String(),
			RefID:       it.RefID,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  pricing.Round(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		}
	}

	transitions := make([]Transition, len(d.Transitions))
	for i, t := range d.Transitions {
		transitions[i] = toTransition(t)
	}

	return OrderDetail{
		OrderSummary: OrderSummary{
			ID:            d.ID.String(),
			Number:        d.Number.String(),
			Type:          d.Type.String(),
			Status:        d.Status.String(),
			PaymentStatus: d.PaymentStatus.String(),
			BuyerID:       d.BuyerID.String(),
			SellerID:      d.SellerID.String(),
			CourierID:     idString(d.CourierID),
			BrokerID:      idString(d.BrokerID),
			Total:         d.Breakdown.Total,
			CreatedAt:     d.CreatedAt,
		},
		PaymentMethod:  d.PaymentMethod,
		TransactionRef: d.TransactionRef,
		Items:          items,
		Breakdown: Breakdown{
			Subtotal:    d.Breakdown.Subtotal,
			DeliveryFee: d.Breakdown.DeliveryFee,
			BrokerFee:   d.Breakdown.BrokerFee,
			Commission:  d.Breakdown.Commission,
			Tax:         d.Breakdown.Tax,
			Total:       d.Breakdown.Total,
		},
		DeliveryType:          d.Delivery.Type.String(),
		Pickup:                locationOf(d.Delivery.Pickup),
		Dropoff:               locationOf(d.Delivery.Dropoff),
		DeliveryAddress:       d.Delivery.Address,
		DeliveryDistanceKm:    d.DeliveryDistanceKm,
		DeliveredAt:           d.DeliveredAt,
		CancelReason:          d.CancelReason,
		CourierWindowOpenedAt: d.CourierWindowAt,
		BrokerWindowOpenedAt:  d.BrokerWindowAt,
		UpdatedAt:             d.UpdatedAt,
		Version:               d.Version,
		Transitions:           transitions,
	}
}

func toTransition(t order.Transition) Transition {
	return Transition{
		Seq:     t.Seq,
		From:    t.From.String(),
		To:      t.To.String(),
		Event:   t.Event.String(),
		ActorID: idString(t.ActorID),
		Reason:  t.Reason,
		At:      t.At,
		Details: t.Details,
	}
}

func toAvailableOrder(a queries.AvailableOrder) AvailableOrder {
	return AvailableOrder{
		OrderID:      a.OrderID.String(),
		Number:       a.Number.String(),
		Type:         a.Type.String(),
		Status:       a.Status.String(),
		SubjectPoint: Location{Lat: a.SubjectPoint.Lat(), Lng: a.SubjectPoint.Lng()},
		Dropoff:      locationOf(a.Dropoff),
		DistanceKm:   a.DistanceKm,
		Subtotal:     a.Subtotal,
		Fee:          a.Fee,
	}
}

func toCandidate(c services.Candidate) Candidate {
	return Candidate{
		PartyID:    c.PartyID.String(),
		Location:   Location{Lat: c.Location.Lat(), Lng: c.Location.Lng()},
		DistanceKm: c.DistanceKm,
	}
}
