package observation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"golang.org/x/sync/errgroup"
)

// maxParallelSaves bounds the observation writes issued by one flush.
const maxParallelSaves = 8

type pendingEdit struct {
	value    string
	revision uint64
}

// Buffer holds the observation edits made against one report snapshot until they are flushed.
// All methods are safe for concurrent use.
type Buffer struct {
	repo report.ReportRepository

	mu        sync.Mutex
	snapshot  report.ReportSnapshot
	pending   map[report.RowKey]pendingEdit
	revision  uint64
	flushing  bool
	stale     bool
	abandoned bool
	lastUsed  time.Time
	now       func() time.Time
}

func NewBuffer(repo report.ReportRepository, snapshot report.ReportSnapshot) *Buffer {
	b := &Buffer{
		repo:     repo,
		snapshot: snapshot,
		pending:  make(map[report.RowKey]pendingEdit),
		now:      time.Now,
	}
	b.lastUsed = b.now()
	return b
}

// SetEdit records value as the pending observation for key, replacing any earlier edit.
// The value is not compared with the stored observation until the next flush.
func (b *Buffer) SetEdit(key report.RowKey, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.abandoned {
		return ErrSessionAbandoned
	}
	if _, ok := b.snapshot.Row(key); !ok {
		return fmt.Errorf("%w: %s %s", report.ErrRowNotInReport, key.EmployeeID, key.Date)
	}

	b.revision++
	b.pending[key] = pendingEdit{value: value, revision: b.revision}
	b.lastUsed = b.now()
	return nil
}

// Flush saves every pending edit that differs from the snapshot, then reloads the report.
//
// Only one flush runs at a time; a concurrent call gets ErrFlushInProgress. If any save fails the
// whole flush fails with report.ErrPersistenceFailure and every edit stays pending. On success the
// edits captured at the start are cleared unless they were overwritten while the flush ran.
func (b *Buffer) Flush(ctx context.Context) (report.ReportSnapshot, error) {
	b.mu.Lock()
	if b.abandoned {
		b.mu.Unlock()
		return report.ReportSnapshot{}, ErrSessionAbandoned
	}
	if b.flushing {
		b.mu.Unlock()
		return report.ReportSnapshot{}, ErrFlushInProgress
	}
	b.flushing = true
	b.lastUsed = b.now()
	captured := make(map[report.RowKey]pendingEdit, len(b.pending))
	for k, v := range b.pending {
		captured[k] = v
	}
	snapshot := b.snapshot
	stale := b.stale
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.flushing = false
		b.mu.Unlock()
	}()

	// A stale snapshot predates saves that already happened, so it cannot tell which edits are no-ops.
	if stale {
		fresh, err := b.reload(ctx, snapshot)
		if err != nil {
			return report.ReportSnapshot{}, err
		}
		snapshot = fresh
	}

	changed := make([]report.RowKey, 0, len(captured))
	for key, edit := range captured {
		if row, ok := snapshot.Row(key); ok && row.Observation == edit.value {
			continue
		}
		changed = append(changed, key)
	}
	sortKeys(changed)

	if err := b.persist(ctx, changed, captured); err != nil {
		return report.ReportSnapshot{}, err
	}

	b.mu.Lock()
	if b.abandoned {
		b.mu.Unlock()
		return report.ReportSnapshot{}, ErrSessionAbandoned
	}
	for key, edit := range captured {
		if current, ok := b.pending[key]; ok && current.revision == edit.revision {
			delete(b.pending, key)
		}
	}
	if len(changed) > 0 {
		b.stale = true
	}
	b.mu.Unlock()

	if len(changed) == 0 {
		slog.Debug("Observation flush had nothing to save", "employee_id", snapshot.EmployeeID)
		return snapshot, nil
	}

	fresh, err := b.reload(ctx, snapshot)
	if err != nil {
		slog.Warn("Observations saved but report reload failed",
			"employee_id", snapshot.EmployeeID,
			"saved", len(changed),
			"error", err,
		)
		return report.ReportSnapshot{}, err
	}

	slog.Info("Observations flushed",
		"employee_id", snapshot.EmployeeID,
		"saved", len(changed),
		"still_pending", b.pendingCount(),
	)
	return fresh, nil
}

// reload fetches the report for the filters of current and installs it as the buffer's snapshot.
func (b *Buffer) reload(ctx context.Context, current report.ReportSnapshot) (report.ReportSnapshot, error) {
	fresh, err := b.repo.GetPayrollReport(ctx, current.EmployeeID, current.StartDate, current.EndDate)
	if err != nil {
		return report.ReportSnapshot{}, fmt.Errorf("failed to reload report after saving observations: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.abandoned {
		return report.ReportSnapshot{}, ErrSessionAbandoned
	}
	b.snapshot = fresh
	b.stale = false
	return fresh, nil
}

func (b *Buffer) pendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// persist issues one write per key. Writes run in parallel and a failing write does not cancel
// the others; every failure is reported.
func (b *Buffer) persist(ctx context.Context, keys []report.RowKey, edits map[report.RowKey]pendingEdit) error {
	if len(keys) == 0 {
		return nil
	}

	var (
		g      errgroup.Group
		errMu  sync.Mutex
		failed []error
	)
	g.SetLimit(maxParallelSaves)

	for _, key := range keys {
		value := edits[key].value
		g.Go(func() error {
			if err := b.repo.SetDailyObservation(ctx, key.EmployeeID, key.Date, value); err != nil {
				errMu.Lock()
				failed = append(failed, fmt.Errorf("%s: %w", key.Date, err))
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		slog.Error("Observation flush failed",
			"attempted", len(keys),
			"failed", len(failed),
		)
		return fmt.Errorf("%w: %w", report.ErrPersistenceFailure, errors.Join(failed...))
	}
	return nil
}

// Dirty reports whether any edit is pending.
func (b *Buffer) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) > 0
}

// NeedsFlush reports whether an export must flush first: edits are pending, or saved edits
// are not yet reflected in the snapshot.
func (b *Buffer) NeedsFlush() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) > 0 || b.stale
}

func (b *Buffer) Stale() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stale
}

func (b *Buffer) DirtyKeys() []report.RowKey {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]report.RowKey, 0, len(b.pending))
	for k := range b.pending {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func (b *Buffer) Pending(key report.RowKey) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	edit, ok := b.pending[key]
	return edit.value, ok
}

// PendingEdits returns a copy of every pending value.
func (b *Buffer) PendingEdits() map[report.RowKey]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[report.RowKey]string, len(b.pending))
	for k, v := range b.pending {
		out[k] = v.value
	}
	return out
}

func (b *Buffer) Snapshot() report.ReportSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot
}

// ReplaceSnapshot installs a refreshed snapshot for the same filters. Pending edits are kept.
func (b *Buffer) ReplaceSnapshot(s report.ReportSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.abandoned {
		return ErrSessionAbandoned
	}
	if !b.snapshot.SameFilters(s.EmployeeID, s.StartDate, s.EndDate) {
		return ErrFilterMismatch
	}
	b.snapshot = s
	b.stale = false
	b.lastUsed = b.now()
	return nil
}

// Abandon discards every pending edit. A flush still running will not install its result.
func (b *Buffer) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) > 0 {
		slog.Warn("Discarding unsaved observations",
			"employee_id", b.snapshot.EmployeeID,
			"pending", len(b.pending),
		)
	}
	b.abandoned = true
	b.pending = make(map[report.RowKey]pendingEdit)
}

func (b *Buffer) idleSince(t time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.flushing && b.lastUsed.Before(t)
}

func sortKeys(keys []report.RowKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].EmployeeID < keys[j].EmployeeID
	})
}
