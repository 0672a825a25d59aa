package queries

import (
	"context"

	"marketplace/internal/core/domain/services"
)

type FindCandidatesQueryHandler struct {
	index *services.ProximityIndex
}

func NewFindCandidatesQueryHandler(index *services.ProximityIndex) FindCandidatesQueryHandler {
	return FindCandidatesQueryHandler{index: index}
}

// Handle returns at most query.Limit() candidates, nearest first. An empty
// result is not an error.
func (h FindCandidatesQueryHandler) Handle(ctx context.Context, query FindCandidatesQuery) ([]services.Candidate, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	candidates, err := services.Take(
		h.index.FindCandidates(ctx, query.Role(), query.Origin(), query.RadiusKm()),
		query.Limit(),
	)
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = make([]services.Candidate, 0)
	}
	return candidates, nil
}
