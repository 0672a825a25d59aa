package http

import (
	"net/http"

	"marketplace/internal/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouteOptions carries what the routes need besides the server itself.
type RouteOptions struct {
	Doc       *openapi3.T
	JWTSecret []byte
	// ServiceToken authenticates the payment and identity services on the
	// system routes.
	ServiceToken string
	// AcceptLimiter throttles role acceptance per party. Nil disables it.
	AcceptLimiter *PartyRateLimiter
}

// RegisterRoutes mounts the API, the operational endpoints and the
// interactive docs on e.
func RegisterRoutes(e *echo.Echo, s *Server, opts RouteOptions) error {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	if err := registerSwaggerDoc(opts.Doc); err != nil {
		return err
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	validate, err := ValidateRequests(opts.Doc)
	if err != nil {
		return err
	}

	api := e.Group("/api/v1", Identity(opts.JWTSecret), validate)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/accept", s.AcceptOrder)
	api.POST("/orders/:orderId/begin-preparing", s.BeginPreparing)
	api.POST("/orders/:orderId/ready", s.MarkReady)
	api.POST("/orders/:orderId/delivered", s.MarkDelivered)
	api.POST("/orders/:orderId/complete", s.CompleteOrder)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)

	var acceptMiddleware []echo.MiddlewareFunc
	if opts.AcceptLimiter != nil {
		acceptMiddleware = append(acceptMiddleware, opts.AcceptLimiter.Middleware())
	}
	api.POST("/orders/:orderId/roles/:role/accept", s.AcceptRole, acceptMiddleware...)

	api.GET("/feeds/:role", s.AvailableOrders)
	api.GET("/candidates", s.FindCandidates)
	api.GET("/sellers/me/sales", s.SellerSales)

	// Payment results and party snapshots come from platform services, never
	// from a party.
	system := e.Group("/api/v1")
	systemOnly := []echo.MiddlewareFunc{SystemAuth(opts.ServiceToken, opts.JWTSecret), validate}
	system.POST("/orders/:orderId/payment/paid", s.MarkPaid, systemOnly...)
	system.POST("/orders/:orderId/payment/failed", s.MarkPaymentFailed, systemOnly...)
	system.PUT("/parties/:partyId", s.UpsertParty, systemOnly...)

	return nil
}
