package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/metrics"
)

// CreateOrderCommandHandler turns a cart into a Pending order.
//
// Steps:
//  1. Reserve the idempotency key, if any. A key that already produced an
//     order returns that order's id and does nothing else.
//  2. Snapshot every catalog line: name, description and unit price are
//     copied so later catalog edits do not change the order.
//  3. Resolve missing points: the dropoff from the address through the
//     geocoder, the pickup from the first located catalog item and then
//     from the seller's registered location.
//  4. Create and persist the order in one unit of work.
//  5. Tell the seller and, for property orders, the nearest brokers.
//
// A failed checkout releases the idempotency key so the client may retry.
type CreateOrderCommandHandler struct {
	uowFactory  UoWFactory
	catalog     ports.Catalog
	geocoder    ports.Geocoder
	idempotency ports.IdempotencyStore
	schedule    pricing.FeeSchedule
	announcer   *Announcer
}

func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	catalog ports.Catalog,
	geocoder ports.Geocoder,
	idempotency ports.IdempotencyStore,
	schedule pricing.FeeSchedule,
	announcer *Announcer,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:  uowFactory,
		catalog:     catalog,
		geocoder:    geocoder,
		idempotency: idempotency,
		schedule:    schedule,
		announcer:   announcer,
	}
}

// Handle returns the id of the created order, or of the order an earlier
// call with the same idempotency key created.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (_ kernel.UUID, err error) {
	if err = cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	ctx, end := startSpan(ctx, "CreateOrder", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventCreate.String(), outcomeOf(err))
		end(err)
	}()

	if key := cmd.IdempotencyKey(); key != "" {
		existing, reserved, reserveErr := h.idempotency.Reserve(ctx, cmd.BuyerID(), key, cmd.OrderID())
		if reserveErr != nil {
			return kernel.UUID{}, fmt.Errorf("reserve idempotency key: %w", reserveErr)
		}
		if !reserved {
			return existing, nil
		}
		defer func() {
			if err != nil {
				if releaseErr := h.idempotency.Release(ctx, cmd.BuyerID(), key); releaseErr != nil {
					err = errors.Join(err, fmt.Errorf("release idempotency key: %w", releaseErr))
				}
			}
		}()
	}

	o, err := h.create(ctx, cmd)
	if err != nil {
		return kernel.UUID{}, err
	}

	metrics.ObserveCheckoutTotal(o.Type().String(), o.Breakdown().Total.InexactFloat64())
	h.announcer.Notify(ctx, ports.EventOrderCreated, o.ID(), o.SellerID())
	if o.IsOpenFor(party.Broker) {
		h.announcer.OpenAssignment(ctx, o, party.Broker)
	}
	return o.ID(), nil
}

func (h CreateOrderCommandHandler) create(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	items, itemPoint, err := h.snapshotLines(ctx, cmd)
	if err != nil {
		return nil, err
	}

	delivery := cmd.Delivery()
	if delivery.Pickup == nil {
		delivery.Pickup = itemPoint
	}
	if delivery.Dropoff == nil && delivery.Type == order.Delivery && delivery.Address != "" {
		point, geoErr := h.geocoder.Geocode(ctx, delivery.Address)
		switch {
		case errs.IsExpected(geoErr):
			return nil, errs.NewValueIsInvalidErrorWithCause("address", geoErr)
		case geoErr != nil:
			return nil, fmt.Errorf("geocode address: %w", geoErr)
		}
		delivery.Dropoff = &point
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if delivery.Pickup == nil && needsPickup(cmd.Type(), delivery.Type) {
		seller, lookupErr := uow.PartyRegistry().GetParty(ctx, cmd.SellerID())
		switch {
		case errors.Is(lookupErr, errs.ErrObjectNotFound):
		case lookupErr != nil:
			return nil, lookupErr
		default:
			delivery.Pickup = seller.Location()
		}
	}

	now := time.Now().UTC()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:            cmd.OrderID(),
		Number:        order.NewNumber(now),
		BuyerID:       cmd.BuyerID(),
		SellerID:      cmd.SellerID(),
		Type:          cmd.Type(),
		Items:         items,
		Delivery:      delivery,
		Service:       cmd.Service(),
		PaymentMethod: cmd.PaymentMethod(),
		Tax:           cmd.Tax(),
		CreatedAt:     now,
	}, h.schedule)
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// snapshotLines builds the order items and returns the location of the
// first located catalog item. Validation problems of all lines are joined;
// a catalog outage aborts at once.
func (h CreateOrderCommandHandler) snapshotLines(
	ctx context.Context,
	cmd CreateOrderCommand,
) ([]order.Item, *kernel.GeoPoint, error) {
	lines := cmd.Lines()
	items := make([]order.Item, 0, len(lines))
	var (
		location *kernel.GeoPoint
		problems []error
	)

	for i, line := range lines {
		params := order.ItemParams{
			ID:              kernel.NewUUID(),
			Name:            line.Name,
			Description:     line.Description,
			Quantity:        line.Quantity,
			ServiceDate:     line.ServiceDate,
			ServiceDuration: line.ServiceDuration,
		}
		if line.UnitPrice != nil {
			params.UnitPrice = *line.UnitPrice
		}

		if id := strings.TrimSpace(line.CatalogItemID); id != "" {
			item, err := h.catalog.GetPriceableItem(ctx, id)
			switch {
			case errs.IsExpected(err):
				problems = append(problems, err)
				continue
			case err != nil:
				return nil, nil, fmt.Errorf("catalog item %s: %w", id, err)
			}

			if err = checkCatalogItem(i, item, line, cmd.SellerID()); err != nil {
				problems = append(problems, err)
				continue
			}

			params.RefKind = refKindOf(item.Kind)
			params.RefID = item.ID
			params.Name = item.Name
			params.Description = item.Description
			params.UnitPrice = item.UnitPrice
			if params.ServiceDuration == nil {
				params.ServiceDuration = item.ServiceDuration
			}
			if location == nil {
				location = item.Location
			}
		}

		it, err := order.NewItem(params)
		if err != nil {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err))
			continue
		}
		items = append(items, it)
	}

	if err := errors.Join(problems...); err != nil {
		return nil, nil, err
	}
	return items, location, nil
}

func checkCatalogItem(i int, item ports.CatalogItem, line CartLine, sellerID kernel.UUID) error {
	if !item.SellerID.IsZero() && !item.SellerID.IsEqual(sellerID) {
		return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d].catalogItemId", i),
			fmt.Errorf("item %s is not sold by %s", item.ID, sellerID))
	}
	if item.Stock != nil && *item.Stock < line.Quantity {
		return errs.NewValueIsOutOfRangeError(fmt.Sprintf("items[%d].quantity", i), line.Quantity, 1, *item.Stock)
	}
	return nil
}

func refKindOf(kind string) order.RefKind {
	if strings.EqualFold(kind, order.RefPlace.String()) {
		return order.RefPlace
	}
	return order.RefProduct
}

func needsPickup(orderType order.Type, deliveryType order.DeliveryType) bool {
	return deliveryType == order.Delivery || orderType.RequiresBroker()
}
