package services

import (
	"context"
	"iter"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
)

// PartySource lists the parties holding role whose last known location lies
// inside box. It may return more than that (the box is only a pre-filter)
// but must not return less.
type PartySource interface {
	ListByRole(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*party.Party, error)
}

// Candidate is a party eligible for a role slot, ranked by distance to the
// subject point. It is never persisted.
type Candidate struct {
	PartyID    kernel.UUID
	Location   kernel.GeoPoint
	DistanceKm float64
}

// ProximityIndex answers "which parties of role R are within K km of P".
//
// The rectangular pre-filter runs in the source; the radius cutoff and the
// ordering always use the haversine distance. Parties that are inactive, not
// available now, or have no location are never returned.
type ProximityIndex struct {
	source PartySource
}

func NewProximityIndex(source PartySource) *ProximityIndex {
	return &ProximityIndex{source: source}
}

// FindCandidates returns a lazy sequence of candidates, nearest first. The
// source is queried when iteration starts, so every range over the result
// observes fresh registry data. Nothing matching yields an empty sequence;
// only a failing source yields an error, as the single element.
//
// Example:
//
//	for c, err := range index.FindCandidates(ctx, party.Courier, pickup, 5) {
//	    if err != nil {
//	        return err
//	    }
//	    notify(c.PartyID)
//	}
func (x *ProximityIndex) FindCandidates(
	ctx context.Context,
	role party.Role,
	origin kernel.GeoPoint,
	radiusKm float64,
) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		if radiusKm < 0 || origin.Validate() != nil {
			return
		}

		parties, err := x.source.ListByRole(ctx, role, kernel.BoundingBoxAround(origin, radiusKm))
		if err != nil {
			yield(Candidate{}, err)
			return
		}

		eligible := parties[:0:0]
		for _, p := range parties {
			if p.Validate() == nil && p.IsEligible(role) {
				eligible = append(eligible, p)
			}
		}

		for r := range Nearest(origin, radiusKm, eligible, (*party.Party).Location) {
			c := Candidate{PartyID: r.Item.ID(), Location: *r.Item.Location(), DistanceKm: r.DistanceKm}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// Take collects at most n elements of seq, stopping at the first error.
func Take[T any](seq iter.Seq2[T, error], n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]T, 0, n)
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out, nil
}
