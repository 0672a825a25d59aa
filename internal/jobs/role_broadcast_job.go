package jobs

import (
	"context"
	"log/slog"

	"marketplace/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultBroadcastSchedule re-announces open windows every 30 seconds.
const DefaultBroadcastSchedule = "*/30 * * * * *"

type broadcaster interface {
	Broadcast(ctx context.Context, cmd commands.BroadcastAssignmentsCommand) (int, error)
}

// RoleBroadcastJob periodically re-announces open courier and broker
// windows to the candidates currently nearby, so parties that came online
// after the window opened still hear about it.
type RoleBroadcastJob struct {
	handler  broadcaster
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewRoleBroadcastJob(handler broadcaster, schedule string, logger *slog.Logger) *RoleBroadcastJob {
	if schedule == "" {
		schedule = DefaultBroadcastSchedule
	}
	return &RoleBroadcastJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "role_broadcast_job"),
	}
}

func (j *RoleBroadcastJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Role broadcast job started", "schedule", j.schedule)
	return nil
}

func (j *RoleBroadcastJob) run(ctx context.Context) {
	notified, err := j.handler.Broadcast(ctx, commands.NewBroadcastAssignmentsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Role broadcast job failed", "error", err)
		return
	}
	if notified > 0 {
		j.logger.InfoContext(ctx, "Open windows re-announced", "notified", notified)
	}
}

// Stop waits for a running broadcast to finish.
func (j *RoleBroadcastJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Role broadcast job stopped")
}
