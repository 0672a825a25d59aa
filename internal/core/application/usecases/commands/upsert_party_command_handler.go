package commands

import (
	"context"
)

// UpsertPartyCommandHandler stores party snapshots in the local directory.
type UpsertPartyCommandHandler struct {
	uowFactory PartyUoWFactory
}

func NewUpsertPartyCommandHandler(uowFactory PartyUoWFactory) UpsertPartyCommandHandler {
	return UpsertPartyCommandHandler{uowFactory: uowFactory}
}

func (h UpsertPartyCommandHandler) Handle(ctx context.Context, cmd UpsertPartyCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.PartyRegistry().Upsert(ctx, cmd.Party()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
