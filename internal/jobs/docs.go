// Package jobs runs the periodic side of role assignment on
// github.com/robfig/cron/v3 schedules with second precision.
//
// # Jobs
//
//   - RoleBroadcastJob re-announces every open courier and broker window to
//     the candidates currently around its subject point. The schedule comes
//     from BROADCAST_SCHEDULE, by default every 30 seconds.
//   - AssignmentExpiryJob runs once a minute and notifies the seller of every
//     window open longer than ASSIGNMENT_WINDOW_TTL, then restarts that
//     window's clock so the seller hears about it once per TTL.
//
// Both drive commands.AssignmentWindowsCommandHandler and are owned by a
// JobManager:
//
//	jobManager, err := jobs.NewJobManager(windowsHandler, "*/30 * * * * *", 15*time.Minute, logger)
//	if err != nil {
//		return err
//	}
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// A failed run is logged and the next tick tries again. StopAll waits for
// runs in progress.
package jobs
