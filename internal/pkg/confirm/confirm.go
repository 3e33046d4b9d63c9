package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrActionNotFound = errors.New("pending action not found")
	ErrActionExpired  = errors.New("pending action expired")
	ErrNotOwner       = errors.New("pending action belongs to another user")
)

// Action is the deferred operation run when a request is confirmed.
type Action func(ctx context.Context) (interface{}, error)

// PendingAction is an operation waiting for its owner to confirm or cancel it.
type PendingAction struct {
	ID          string      `json:"id"`
	Owner       string      `json:"-"`
	Description string      `json:"description"`
	Payload     interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`

	action Action
}

// Manager holds pending actions. Each one runs at most once: a confirmed action is removed
// before it executes.
type Manager struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]*PendingAction
	now     func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:     ttl,
		pending: make(map[string]*PendingAction),
		now:     time.Now,
	}
}

// Request registers action for owner and returns it unexecuted.
func (m *Manager) Request(owner, description string, payload interface{}, action Action) (PendingAction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return PendingAction{}, fmt.Errorf("failed to generate action id: %w", err)
	}

	now := m.now()
	p := &PendingAction{
		ID:          id.String(),
		Owner:       owner,
		Description: description,
		Payload:     payload,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
		action:      action,
	}

	m.mu.Lock()
	m.pending[p.ID] = p
	m.mu.Unlock()

	return *p, nil
}

// take removes and returns the action if owner may act on it.
func (m *Manager) take(owner, id string) (*PendingAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[id]
	if !ok {
		return nil, ErrActionNotFound
	}
	if p.Owner != owner {
		return nil, ErrNotOwner
	}
	delete(m.pending, id)
	if !m.now().Before(p.ExpiresAt) {
		return nil, ErrActionExpired
	}
	return p, nil
}

// Confirm runs the pending action and returns its result.
func (m *Manager) Confirm(ctx context.Context, owner, id string) (interface{}, error) {
	p, err := m.take(owner, id)
	if err != nil {
		return nil, err
	}
	slog.Info("Pending action confirmed", "id", id, "owner", owner, "description", p.Description)
	return p.action(ctx)
}

// Cancel drops the pending action without running it.
func (m *Manager) Cancel(owner, id string) error {
	p, err := m.take(owner, id)
	if err != nil && !errors.Is(err, ErrActionExpired) {
		return err
	}
	if p != nil {
		slog.Debug("Pending action cancelled", "id", id, "owner", owner)
	}
	return nil
}

// Sweep removes expired actions and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for id, p := range m.pending {
		if !now.Before(p.ExpiresAt) {
			delete(m.pending, id)
			dropped++
		}
	}
	return dropped
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// SweepJob adapts Sweep to the cron scheduler.
func (m *Manager) SweepJob() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if n := m.Sweep(); n > 0 {
			slog.Info("Expired pending actions dropped", "count", n)
		}
		return nil
	}
}
