package ports

import (
	"context"
)

// UnitOfWorkFactory hands out one UnitOfWork per command. Units of work are
// never shared between goroutines.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork groups the order and party writes of one command into a single
// atomic change. Repositories obtained before Begin, or after Commit or
// Rollback, read and write outside any transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	// Commit fails when no transaction is open. A version conflict is
	// reported by OrderRepository().Update or, at the latest, by Commit.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	PartyRegistry() PartyRegistry
}
