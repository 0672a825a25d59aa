package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"marketplace/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	roleBroadcastJob    *RoleBroadcastJob
	assignmentExpiryJob *AssignmentExpiryJob
}

// NewJobManager creates a new job manager with all required jobs.
// Both jobs drive the same assignment windows handler.
func NewJobManager(
	windowsHandler commands.AssignmentWindowsCommandHandler,
	broadcastSchedule string,
	windowTTL time.Duration,
	logger *slog.Logger,
) (*JobManager, error) {
	expiryJob, err := NewAssignmentExpiryJob(windowsHandler, windowTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment expiry job: %w", err)
	}
	return &JobManager{
		roleBroadcastJob:    NewRoleBroadcastJob(windowsHandler, broadcastSchedule, logger),
		assignmentExpiryJob: expiryJob,
	}, nil
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.assignmentExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start assignment expiry job: %w", err)
	}

	if err := jm.roleBroadcastJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.assignmentExpiryJob.Stop()
		return fmt.Errorf("failed to start role broadcast job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.roleBroadcastJob.Stop()
	jm.assignmentExpiryJob.Stop()
}
