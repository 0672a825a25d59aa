package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
)

// PartyRegistry is the local directory of party snapshots pushed by the
// identity service. It backs the proximity search and the eligibility check
// on role acceptance.
type PartyRegistry interface {
	// GetParty returns ObjectNotFoundError for an unknown id.
	GetParty(ctx context.Context, id kernel.UUID) (*party.Party, error)

	// ListByRole returns parties holding role whose location lies inside
	// box. Parties without a location are never returned.
	ListByRole(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*party.Party, error)

	// Upsert stores the snapshot unless a newer one is already stored.
	Upsert(ctx context.Context, p *party.Party) error
}
