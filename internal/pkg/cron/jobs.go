package cron

import (
	"context"
	"time"
)

// SessionReaper drops report sessions left idle.
type SessionReaper interface {
	ReapJob(maxIdle time.Duration) func(ctx context.Context) error
}

// ActionSweeper drops expired pending confirmations.
type ActionSweeper interface {
	SweepJob() func(ctx context.Context) error
}

// RegisterMaintenanceJobs schedules the in-memory housekeeping of the desk.
func RegisterMaintenanceJobs(s *Scheduler, sessions SessionReaper, idleTimeout time.Duration, actions ActionSweeper, sweepInterval time.Duration) {
	// An idle session outlives the timeout by at most a quarter of it.
	s.AddJob("reap_idle_report_sessions", idleTimeout/4, sessions.ReapJob(idleTimeout))
	s.AddJob("sweep_expired_confirmations", sweepInterval, actions.SweepJob())
}
