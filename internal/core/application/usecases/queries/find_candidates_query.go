package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/guard"
)

var ErrFindCandidatesQueryIsNotConstructed = errors.New(
	"FindCandidatesQuery must be created via NewFindCandidatesQuery constructor",
)

// FindCandidatesQuery asks for the nearest eligible couriers or brokers
// around a point. It is an operator tool; dispatch itself goes through the
// assignment window.
type FindCandidatesQuery struct {
	role     party.Role
	origin   kernel.GeoPoint
	radiusKm float64
	limit    int

	guard guard.ConstructorGuard
}

// NewFindCandidatesQuery validates the search. A zero limit means DefaultPageSize.
func NewFindCandidatesQuery(role party.Role, lat, lng, radiusKm float64, limit int) (FindCandidatesQuery, error) {
	origin, pointErr := kernel.NewGeoPoint(lat, lng)
	if err := errors.Join(pointErr, checkSearch(role, radiusKm, limit)); err != nil {
		return FindCandidatesQuery{}, err
	}

	return FindCandidatesQuery{
		role:     role,
		origin:   origin,
		radiusKm: radiusKm,
		limit:    pageSize(limit),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q FindCandidatesQuery) Validate() error {
	return q.guard.Validate(ErrFindCandidatesQueryIsNotConstructed)
}

func (q FindCandidatesQuery) Role() party.Role        { return q.role }
func (q FindCandidatesQuery) Origin() kernel.GeoPoint { return q.origin }
func (q FindCandidatesQuery) RadiusKm() float64       { return q.radiusKm }
func (q FindCandidatesQuery) Limit() int              { return q.limit }
