package observation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
)

// Registry keeps one open report session per user.
type Registry struct {
	repo report.ReportRepository

	mu       sync.Mutex
	sessions map[string]*Buffer
	now      func() time.Time
}

func NewRegistry(repo report.ReportRepository) *Registry {
	return &Registry{
		repo:     repo,
		sessions: make(map[string]*Buffer),
		now:      time.Now,
	}
}

// Open fetches the report for the filters. Reopening the same filters refreshes the snapshot and
// keeps pending edits; any other filters abandon the previous session.
func (r *Registry) Open(ctx context.Context, userID, employeeID, startDate, endDate string) (*Buffer, error) {
	snapshot, err := r.repo.GetPayrollReport(ctx, employeeID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payroll report: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[userID]; ok {
		if existing.Snapshot().SameFilters(employeeID, startDate, endDate) {
			if err := existing.ReplaceSnapshot(snapshot); err == nil {
				return existing, nil
			}
		}
		existing.Abandon()
		delete(r.sessions, userID)
	}

	buf := NewBuffer(r.repo, snapshot)
	buf.now = r.now
	buf.lastUsed = r.now()
	r.sessions[userID] = buf

	slog.Debug("Report session opened",
		"user_id", userID,
		"employee_id", employeeID,
		"start_date", startDate,
		"end_date", endDate,
		"days", len(snapshot.Days),
		"unmatched_advances", len(snapshot.UnmatchedAdvances()),
	)
	return buf, nil
}

func (r *Registry) Get(userID string) (*Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.sessions[userID]
	if !ok {
		return nil, report.ErrNoActiveSession
	}
	return buf, nil
}

// Close abandons the session of userID and its pending edits.
func (r *Registry) Close(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.sessions[userID]
	if !ok {
		return report.ErrNoActiveSession
	}
	buf.Abandon()
	delete(r.sessions, userID)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ReapIdle abandons sessions unused for longer than maxIdle. Sessions that are flushing are kept.
func (r *Registry) ReapIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	reaped := 0
	for userID, buf := range r.sessions {
		if !buf.idleSince(cutoff) {
			continue
		}
		buf.Abandon()
		delete(r.sessions, userID)
		reaped++
	}
	return reaped
}

// ReapJob adapts ReapIdle to the cron scheduler.
func (r *Registry) ReapJob(maxIdle time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if n := r.ReapIdle(maxIdle); n > 0 {
			slog.Info("Idle report sessions reaped", "count", n, "remaining", r.Len())
		}
		return nil
	}
}
