package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	partyIDKey         = "partyID"
	partyIDHeader      = "X-Party-ID"
	serviceTokenHeader = "X-Service-Token"

	// SystemSubject is the bearer token subject of the payment and identity
	// services.
	SystemSubject = "system"
)

// Identity resolves the requesting party. With a secret the party id is the
// subject of an HS256 bearer token; without one the X-Party-ID header is
// trusted, which is meant for deployments behind an authenticating gateway.
func Identity(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := partySubject(c.Request(), secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Error{Code: http.StatusUnauthorized, Message: err.Error()})
			}

			id, err := kernel.UUIDFromString(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Error{Code: http.StatusUnauthorized, Message: "party id is not a uuid"})
			}

			c.Set(partyIDKey, id)
			return next(c)
		}
	}
}

func partySubject(r *http.Request, secret []byte) (string, error) {
	if len(secret) == 0 {
		if id := r.Header.Get(partyIDHeader); id != "" {
			return id, nil
		}
		return "", errors.New("missing " + partyIDHeader + " header")
	}

	auth := r.Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", errors.New("missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// SystemAuth admits only the platform services that report payments and
// push party snapshots. They present either the shared service token or, when
// a secret is set, a bearer token whose subject is SystemSubject. With
// neither configured every request is refused.
func SystemAuth(serviceToken string, secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isSystemCaller(c.Request(), serviceToken, secret) {
				return c.JSON(http.StatusForbidden, Error{
					Code:    http.StatusForbidden,
					Message: "system credentials required",
				})
			}
			return next(c)
		}
	}
}

func isSystemCaller(r *http.Request, serviceToken string, secret []byte) bool {
	if presented := r.Header.Get(serviceTokenHeader); serviceToken != "" && presented != "" {
		return subtle.ConstantTimeCompare([]byte(presented), []byte(serviceToken)) == 1
	}
	if len(secret) == 0 {
		return false
	}
	subject, err := partySubject(r, secret)
	return err == nil && subject == SystemSubject
}

// requester is the party resolved by Identity.
func requester(c echo.Context) kernel.UUID {
	id, _ := c.Get(partyIDKey).(kernel.UUID)
	return id
}

// PartyRateLimiter keeps one token bucket per requesting party.
type PartyRateLimiter struct {
	mu       sync.Mutex
	limiters map[kernel.UUID]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewPartyRateLimiter(perSecond float64, burst int) *PartyRateLimiter {
	return &PartyRateLimiter{
		limiters: make(map[kernel.UUID]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *PartyRateLimiter) limiter(id kernel.UUID) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[id]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[id] = limiter
	}
	return limiter
}

// Middleware must run after Identity.
func (l *PartyRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.limiter(requester(c)).Allow() {
				return c.JSON(http.StatusTooManyRequests, Error{
					Code:    http.StatusTooManyRequests,
					Message: "too many requests",
				})
			}
			return next(c)
		}
	}
}

// ValidateRequests checks every request that matches an operation of doc
// against its parameters and body schema. Unknown routes pass through.
func ValidateRequests(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         true,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := router.FindRoute(req)
			if isPathNotFound(err) {
				return next(c)
			}
			if err != nil {
				return c.JSON(http.StatusMethodNotAllowed, Error{Code: http.StatusMethodNotAllowed, Message: err.Error()})
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return badRequest(c, err.Error())
			}
			return next(c)
		}
	}, nil
}

func isPathNotFound(err error) bool {
	var routeErr *routers.RouteError
	return errors.As(err, &routeErr) && routeErr.Reason == routers.ErrPathNotFound.Error()
}
