// Package queries contains read operations. Handlers never change state and
// never open a unit of work; they read through ports directly.
package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
)

type (
	// OrderReader loads a single order aggregate.
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
	}

	// PartyReader looks up a party directory entry.
	PartyReader interface {
		GetParty(ctx context.Context, id kernel.UUID) (*party.Party, error)
	}
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)
