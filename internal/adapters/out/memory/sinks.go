package memory

import (
	"context"
	"log/slog"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
)

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "LogNotifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, partyID kernel.UUID, kind ports.EventKind, orderID kernel.UUID) error {
	n.logger.InfoContext(ctx, "notification",
		"party_id", partyID.String(),
		"kind", string(kind),
		"order_id", orderID.String(),
	)
	return nil
}

// LogReviewSink records completions in the log.
type LogReviewSink struct {
	logger *slog.Logger
}

func NewLogReviewSink(logger *slog.Logger) *LogReviewSink {
	return &LogReviewSink{logger: logger.With("component", "LogReviewSink")}
}

func (s *LogReviewSink) RecordCompletion(ctx context.Context, orderID kernel.UUID) error {
	s.logger.InfoContext(ctx, "order completed, review can be requested", "order_id", orderID.String())
	return nil
}
