// Package commands holds the write side of the order engine. Every operation
// is a command built by its constructor plus a handler that validates it,
// applies one order transition inside a unit of work and announces the result
// once the change is committed.
package commands

import (
	"context"

	"marketplace/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// PartyRegistryFactory provides access to the party directory within a transaction.
	PartyRegistryFactory interface {
		PartyRegistry() ports.PartyRegistry
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// PartyUoW manages transactions for party directory writes.
	PartyUoW interface {
		TxManager
		PartyRegistryFactory
	}

	// PartyUoWFactory creates new party unit of work instances.
	PartyUoWFactory interface {
		Create() PartyUoW
	}

	// UoW spans orders and the party directory. Used where an order change
	// depends on a party lookup made in the same transaction.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   candidate, err := uow.PartyRegistry().GetParty(ctx, id)
	//   // ... assign the role
	//   err = uow.OrderRepository().Update(ctx, o)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		PartyRegistryFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// Func adapters let a plain constructor, typically a closure over
// ports.UnitOfWorkFactory, serve as a factory.
type (
	UoWFactoryFunc      func() UoW
	OrderUoWFactoryFunc func() OrderUoW
	PartyUoWFactoryFunc func() PartyUoW
)

func (f UoWFactoryFunc) Create() UoW           { return f() }
func (f OrderUoWFactoryFunc) Create() OrderUoW { return f() }
func (f PartyUoWFactoryFunc) Create() PartyUoW { return f() }

// Factories narrows one ports.UnitOfWorkFactory to the factories the
// command handlers depend on.
func Factories(f ports.UnitOfWorkFactory) (UoWFactory, OrderUoWFactory, PartyUoWFactory) {
	return UoWFactoryFunc(func() UoW { return f.Create() }),
		OrderUoWFactoryFunc(func() OrderUoW { return f.Create() }),
		PartyUoWFactoryFunc(func() PartyUoW { return f.Create() })
}
