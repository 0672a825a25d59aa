package memory

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
)

type PartyRegistry struct {
	uow *UnitOfWork
}

func (r *PartyRegistry) GetParty(_ context.Context, id kernel.UUID) (*party.Party, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	p, ok := r.uow.lookupParty(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("party", id.String())
	}
	return party.RestoreParty(p), nil
}

func (r *PartyRegistry) ListByRole(_ context.Context, role party.Role, box kernel.BoundingBox) ([]*party.Party, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	var out []*party.Party
	for _, p := range r.uow.visibleParties() {
		if !p.Roles.Has(role) || p.Location == nil || !box.Contains(*p.Location) {
			continue
		}
		out = append(out, party.RestoreParty(p))
	}
	sortParties(out)
	return out, nil
}

func (r *PartyRegistry) Upsert(_ context.Context, p *party.Party) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.uow.stageParty(p.Snapshot())
}
