package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("marketplace/commands")

// startSpan opens the span and the duration timer of one command execution.
// The returned func must be called with the command's final error.
func startSpan(ctx context.Context, command string, orderID kernel.UUID) (context.Context, func(error)) {
	stop := metrics.Timer(command)
	ctx, span := tracer.Start(ctx, command, trace.WithAttributes(attribute.String("order.id", orderID.String())))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			if !errs.IsExpected(err) {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.End()
		stop()
	}
}

func outcomeOf(err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errs.IsExpected(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

// changeOrder loads an order, applies mutate and writes it back within one
// unit of work. Nothing is written when mutate fails.
func changeOrder(
	ctx context.Context,
	factory OrderUoWFactory,
	id kernel.UUID,
	mutate func(o *order.Order, now time.Time) error,
) (*order.Order, error) {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = mutate(o, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
