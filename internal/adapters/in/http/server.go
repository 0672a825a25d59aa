package http

import (
	"log/slog"
	"net/http"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Handlers groups the use cases the HTTP API exposes.
type Handlers struct {
	CreateOrder    commands.CreateOrderCommandHandler
	AcceptOrder    commands.AcceptOrderCommandHandler
	BeginPreparing commands.BeginPreparingCommandHandler
	MarkReady      commands.MarkReadyCommandHandler
	MarkDelivered  commands.MarkDeliveredCommandHandler
	CompleteOrder  commands.CompleteOrderCommandHandler
	CancelOrder    commands.CancelOrderCommandHandler
	AcceptRole     commands.AcceptRoleCommandHandler
	Payment        commands.PaymentCommandHandler
	UpsertParty    commands.UpsertPartyCommandHandler

	GetOrder        queries.GetOrderQueryHandler
	ListOrders      queries.ListOrdersQueryHandler
	AvailableOrders queries.AvailableOrdersQueryHandler
	SellerSales     queries.SellerSalesQueryHandler
	FindCandidates  queries.FindCandidatesQueryHandler
}

// Server translates HTTP requests into commands and queries. Every
// operation acts on behalf of the party resolved by the Identity middleware.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "http")}
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var body NewOrder
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	in, err := checkoutInput(requester(c), body, c.Request().Header.Get("Idempotency-Key"))
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(in)
	if err != nil {
		return s.writeError(c, err)
	}

	id, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/orders/"+id.String())
	return c.JSON(http.StatusCreated, Created{ID: id.String()})
}

func checkoutInput(buyerID kernel.UUID, body NewOrder, idempotencyKey string) (commands.CreateOrderInput, error) {
	sellerID, err := kernel.ParseUUIDParam("sellerId", body.SellerID)
	if err != nil {
		return commands.CreateOrderInput{}, err
	}
	orderType, err := order.ParseType(body.Type)
	if err != nil {
		return commands.CreateOrderInput{}, err
	}
	deliveryType, err := order.ParseDeliveryType(body.Delivery.Type)
	if err != nil {
		return commands.CreateOrderInput{}, err
	}

	lines := make([]commands.CartLine, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = commands.CartLine{
			CatalogItemID:   l.CatalogItemID,
			Quantity:        l.Quantity,
			Name:            l.Name,
			Description:     l.Description,
			UnitPrice:       l.UnitPrice,
			ServiceDate:     l.ServiceDate,
			ServiceDuration: minutes(l.ServiceDurationMinutes),
		}
	}

	delivery := commands.DeliveryInput{
		Type:         deliveryType,
		Address:      body.Delivery.Address,
		Instructions: body.Delivery.Instructions,
		EstimatedAt:  body.Delivery.EstimatedAt,
	}
	if p := body.Delivery.Pickup; p != nil {
		delivery.PickupLat, delivery.PickupLng = &p.Lat, &p.Lng
	}
	if p := body.Delivery.Dropoff; p != nil {
		delivery.DropoffLat, delivery.DropoffLng = &p.Lat, &p.Lng
	}

	return commands.CreateOrderInput{
		OrderID:  kernel.NewUUID(),
		BuyerID:  buyerID,
		SellerID: sellerID,
		Type:     orderType,
		Lines:    lines,
		Delivery: delivery,
		Service: order.ServiceContext{
			Date:       body.Service.Date,
			Duration:   minutes(body.Service.DurationMinutes),
			LeaseStart: body.Service.LeaseStart,
			LeaseEnd:   body.Service.LeaseEnd,
		},
		PaymentMethod:  body.PaymentMethod,
		Tax:            body.Tax,
		IdempotencyKey: idempotencyKey,
	}, nil
}

func minutes(m *int) *time.Duration {
	if m == nil {
		return nil
	}
	d := time.Duration(*m) * time.Minute
	return &d
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, requester(c))
	if err != nil {
		return s.writeError(c, err)
	}

	detail, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, toOrderDetail(detail))
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(c echo.Context) error {
	var (
		roleName      string
		statusNames   []string
		from, to      *time.Time
		limit, offset int
	)
	params := c.QueryParams()
	if err := bindQuery(params, "role", true, &roleName); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(params, "status", false, &statusNames); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(params, "from", false, &from); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(params, "to", false, &to); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(params, "limit", false, &limit); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(params, "offset", false, &offset); err != nil {
		return s.writeError(c, err)
	}

	role, err := party.ParseRole(roleName)
	if err != nil {
		return s.writeError(c, err)
	}
	statuses := make([]order.Status, 0, len(statusNames))
	for _, name := range statusNames {
		st, parseErr := order.ParseStatus(name)
		if parseErr != nil {
			return s.writeError(c, parseErr)
		}
		statuses = append(statuses, st)
	}

	query, err := queries.NewListOrdersQuery(requester(c), role, statuses, from, to, limit, offset)
	if err != nil {
		return s.writeError(c, err)
	}

	page, err := s.h.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	response := make([]OrderSummary, len(page))
	for i, summary := range page {
		response[i] = toOrderSummary(summary)
	}
	return c.JSON(http.StatusOK, response)
}

// AcceptOrder handles POST /api/v1/orders/{orderId}/accept.
func (s *Server) AcceptOrder(c echo.Context) error {
	return s.orderAction(c, func(orderID, actorID kernel.UUID) error {
		cmd, err := commands.NewAcceptOrderCommand(orderID, actorID)
		if err != nil {
			return err
		}
		return s.h.AcceptOrder.Handle(c.Request().Context(), cmd)
	})
}

// BeginPreparing handles POST /api/v1/orders/{orderId}/begin-preparing.
func (s *Server) BeginPreparing(c echo.Context) error {
	return s.orderAction(c, func(orderID, actorID kernel.UUID) error {
		cmd, err := commands.NewBeginPreparingCommand(orderID, actorID)
		if err != nil {
			return err
		}
		return s.h.BeginPreparing.Handle(c.Request().Context(), cmd)
	})
}

// MarkReady handles POST /api/v1/orders/{orderId}/ready.
func (s *Server) MarkReady(c echo.Context) error {
	return s.orderAction(c, func(orderID, actorID kernel.UUID) error {
		cmd, err := commands.NewMarkReadyCommand(orderID, actorID)
		if err != nil {
			return err
		}
		return s.h.MarkReady.Handle(c.Request().Context(), cmd)
	})
}

// MarkDelivered handles POST /api/v1/orders/{orderId}/delivered.
func (s *Server) MarkDelivered(c echo.Context) error {
	return s.orderAction(c, func(orderID, actorID kernel.UUID) error {
		cmd, err := commands.NewMarkDeliveredCommand(orderID, actorID)
		if err != nil {
			return err
		}
		return s.h.MarkDelivered.Handle(c.Request().Context(), cmd)
	})
}

// CompleteOrder handles POST /api/v1/orders/{orderId}/complete.
func (s *Server) CompleteOrder(c echo.Context) error {
	return s.orderAction(c, func(orderID, actorID kernel.UUID) error {
		cmd, err := commands.NewCompleteOrderCommand(orderID, actorID)
		if err != nil {
			return err
		}
		return s.h.CompleteOrder.Handle(c.Request().Context(), cmd)
	})
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	var body CancelRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	return s.orderAction(c, func(orderID, actorID kernel.UUID) error {
		cmd, err := commands.NewCancelOrderCommand(orderID, actorID, body.Reason)
		if err != nil {
			return err
		}
		return s.h.CancelOrder.Handle(c.Request().Context(), cmd)
	})
}

// AcceptRole handles POST /api/v1/orders/{orderId}/roles/{role}/accept.
// The requesting party is the candidate.
func (s *Server) AcceptRole(c echo.Context) error {
	var roleName string
	if err := bindPath(c, "role", &roleName); err != nil {
		return s.writeError(c, err)
	}
	role, err := party.ParseRole(roleName)
	if err != nil {
		return s.writeError(c, err)
	}

	return s.orderAction(c, func(orderID, candidateID kernel.UUID) error {
		cmd, cmdErr := commands.NewAcceptRoleCommand(orderID, role, candidateID)
		if cmdErr != nil {
			return cmdErr
		}
		return s.h.AcceptRole.Handle(c.Request().Context(), cmd)
	})
}

// MarkPaid handles POST /api/v1/orders/{orderId}/payment/paid. Routed behind
// SystemAuth, so there is no requesting party.
func (s *Server) MarkPaid(c echo.Context) error {
	var body PaidRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	return s.orderAction(c, func(orderID, _ kernel.UUID) error {
		cmd, err := commands.NewMarkPaidCommand(orderID, body.TransactionRef)
		if err != nil {
			return err
		}
		return s.h.Payment.MarkPaid(c.Request().Context(), cmd)
	})
}

// MarkPaymentFailed handles POST /api/v1/orders/{orderId}/payment/failed.
func (s *Server) MarkPaymentFailed(c echo.Context) error {
	return s.orderAction(c, func(orderID, _ kernel.UUID) error {
		cmd, err := commands.NewMarkPaymentFailedCommand(orderID)
		if err != nil {
			return err
		}
		return s.h.Payment.MarkPaymentFailed(c.Request().Context(), cmd)
	})
}

// AvailableOrders handles GET /api/v1/feeds/{role}.
func (s *Server) AvailableOrders(c echo.Context) error {
	var (
		roleName string
		radiusKm float64
		limit    int
	)
	if err := bindPath(c, "role", &roleName); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(c.QueryParams(), "radiusKm", true, &radiusKm); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(c.QueryParams(), "limit", false, &limit); err != nil {
		return s.writeError(c, err)
	}

	role, err := party.ParseRole(roleName)
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewAvailableOrdersQuery(role, requester(c), radiusKm, limit)
	if err != nil {
		return s.writeError(c, err)
	}

	feed, err := s.h.AvailableOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	response := make([]AvailableOrder, len(feed))
	for i, entry := range feed {
		response[i] = toAvailableOrder(entry)
	}
	return c.JSON(http.StatusOK, response)
}

// FindCandidates handles GET /api/v1/candidates.
func (s *Server) FindCandidates(c echo.Context) error {
	var (
		roleName           string
		lat, lng, radiusKm float64
		limit              int
	)
	params := c.QueryParams()
	for _, b := range []struct {
		name     string
		required bool
		dest     any
	}{
		{"role", true, &roleName},
		{"lat", true, &lat},
		{"lng", true, &lng},
		{"radiusKm", true, &radiusKm},
		{"limit", false, &limit},
	} {
		if err := bindQuery(params, b.name, b.required, b.dest); err != nil {
			return s.writeError(c, err)
		}
	}

	role, err := party.ParseRole(roleName)
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewFindCandidatesQuery(role, lat, lng, radiusKm, limit)
	if err != nil {
		return s.writeError(c, err)
	}

	candidates, err := s.h.FindCandidates.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	response := make([]Candidate, len(candidates))
	for i, candidate := range candidates {
		response[i] = toCandidate(candidate)
	}
	return c.JSON(http.StatusOK, response)
}

// SellerSales handles GET /api/v1/sellers/me/sales.
func (s *Server) SellerSales(c echo.Context) error {
	var from, to time.Time
	if err := bindQuery(c.QueryParams(), "from", true, &from); err != nil {
		return s.writeError(c, err)
	}
	if err := bindQuery(c.QueryParams(), "to", true, &to); err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewSellerSalesQuery(requester(c), from, to)
	if err != nil {
		return s.writeError(c, err)
	}

	sales, err := s.h.SellerSales.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, SalesSummary{
		SellerID:   sales.SellerID.String(),
		From:       sales.From,
		To:         sales.To,
		OrderCount: sales.OrderCount,
		Total:      sales.Total,
	})
}

// UpsertParty handles PUT /api/v1/parties/{partyId}, the identity service
// pushing a party snapshot.
func (s *Server) UpsertParty(c echo.Context) error {
	var rawID openapi_types.UUID
	if err := bindPath(c, "partyId", &rawID); err != nil {
		return s.writeError(c, err)
	}
	partyID, err := kernel.ParseUUIDParam("partyId", rawID.String())
	if err != nil {
		return s.writeError(c, err)
	}

	var body PartySnapshot
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	var roles party.RoleSet
	for _, name := range body.Roles {
		role, parseErr := party.ParseRole(name)
		if parseErr != nil {
			return s.writeError(c, parseErr)
		}
		roles = roles.With(role)
	}

	var lat, lng *float64
	if body.Location != nil {
		lat, lng = &body.Location.Lat, &body.Location.Lng
	}

	cmd, err := commands.NewUpsertPartyCommand(partyID, roles, body.Active, body.AvailableNow, lat, lng, body.UpdatedAt)
	if err != nil {
		return s.writeError(c, err)
	}

	if err = s.h.UpsertParty.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// orderAction runs a state change on the order named in the path on behalf
// of the requesting party and answers 204 on success.
func (s *Server) orderAction(c echo.Context, run func(orderID, actorID kernel.UUID) error) error {
	orderID, err := orderIDParam(c)
	if err != nil {
		return s.writeError(c, err)
	}
	if err = run(orderID, requester(c)); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func orderIDParam(c echo.Context) (kernel.UUID, error) {
	var raw openapi_types.UUID
	if err := bindPath(c, "orderId", &raw); err != nil {
		return kernel.UUID{}, err
	}
	return kernel.ParseUUIDParam("orderId", raw.String())
}
