package jobs

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const expirySchedule = "0 * * * * *"

type expirer interface {
	Expire(ctx context.Context, cmd commands.ExpireAssignmentWindowsCommand) (int, error)
}

// AssignmentExpiryJob tells sellers about courier and broker windows that
// stayed open longer than ttl. It runs once a minute.
type AssignmentExpiryJob struct {
	handler expirer
	cmd     commands.ExpireAssignmentWindowsCommand
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewAssignmentExpiryJob(handler expirer, ttl time.Duration, logger *slog.Logger) (*AssignmentExpiryJob, error) {
	cmd, err := commands.NewExpireAssignmentWindowsCommand(ttl)
	if err != nil {
		return nil, err
	}
	return &AssignmentExpiryJob{
		handler: handler,
		cmd:     cmd,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "assignment_expiry_job"),
	}, nil
}

func (j *AssignmentExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(expirySchedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Assignment expiry job started", "ttl", j.cmd.TTL())
	return nil
}

func (j *AssignmentExpiryJob) run(ctx context.Context) {
	expired, err := j.handler.Expire(ctx, j.cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Assignment expiry job failed", "error", err)
		return
	}
	if expired > 0 {
		j.logger.InfoContext(ctx, "Expired assignment windows reported", "windows", expired)
	}
}

func (j *AssignmentExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Assignment expiry job stopped")
}
