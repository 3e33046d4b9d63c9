package confirm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) (*Manager, *time.Time) {
	clock := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	m := NewManager(ttl)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func countingAction(n *atomic.Int32, result interface{}, err error) Action {
	return func(ctx context.Context) (interface{}, error) {
		n.Add(1)
		return result, err
	}
}

func TestConfirm_RunsOnce(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	var runs atomic.Int32

	p, err := m.Request("user-1", "submit jornada", map[string]string{"date": "2024-03-04"}, countingAction(&runs, "done", nil))
	require.NoError(t, err)
	assert.Equal(t, int32(0), runs.Load())

	result, err := m.Confirm(context.Background(), "user-1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", result)

	_, err = m.Confirm(context.Background(), "user-1", p.ID)
	assert.ErrorIs(t, err, ErrActionNotFound)
	assert.Equal(t, int32(1), runs.Load())
}

func TestConfirm_ConcurrentConfirmsRunOnce(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	var runs atomic.Int32
	p, err := m.Request("user-1", "x", nil, countingAction(&runs, nil, nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Confirm(context.Background(), "user-1", p.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), runs.Load())
}

func TestConfirm_ActionErrorIsReturned(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	boom := errors.New("boom")
	var runs atomic.Int32
	p, err := m.Request("user-1", "x", nil, countingAction(&runs, nil, boom))
	require.NoError(t, err)

	_, err = m.Confirm(context.Background(), "user-1", p.ID)
	assert.ErrorIs(t, err, boom)
}

func TestConfirm_OtherOwner(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	var runs atomic.Int32
	p, err := m.Request("user-1", "x", nil, countingAction(&runs, nil, nil))
	require.NoError(t, err)

	_, err = m.Confirm(context.Background(), "user-2", p.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, m.Cancel("user-2", p.ID), ErrNotOwner)

	_, err = m.Confirm(context.Background(), "user-1", p.ID)
	assert.NoError(t, err)
}

func TestConfirm_Expired(t *testing.T) {
	m, clock := newTestManager(time.Minute)
	var runs atomic.Int32
	p, err := m.Request("user-1", "x", nil, countingAction(&runs, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, clock.Add(time.Minute), p.ExpiresAt)

	*clock = clock.Add(time.Minute)
	_, err = m.Confirm(context.Background(), "user-1", p.ID)

	assert.ErrorIs(t, err, ErrActionExpired)
	assert.Equal(t, int32(0), runs.Load())
	assert.Equal(t, 0, m.Len())
}

func TestCancel(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	var runs atomic.Int32
	p, err := m.Request("user-1", "x", nil, countingAction(&runs, nil, nil))
	require.NoError(t, err)

	require.NoError(t, m.Cancel("user-1", p.ID))
	assert.ErrorIs(t, m.Cancel("user-1", p.ID), ErrActionNotFound)

	_, err = m.Confirm(context.Background(), "user-1", p.ID)
	assert.ErrorIs(t, err, ErrActionNotFound)
	assert.Equal(t, int32(0), runs.Load())
}

func TestSweep(t *testing.T) {
	m, clock := newTestManager(time.Minute)
	var runs atomic.Int32

	_, err := m.Request("user-1", "old", nil, countingAction(&runs, nil, nil))
	require.NoError(t, err)
	*clock = clock.Add(45 * time.Second)
	_, err = m.Request("user-1", "new", nil, countingAction(&runs, nil, nil))
	require.NoError(t, err)

	*clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())

	*clock = clock.Add(time.Minute)
	require.NoError(t, m.SweepJob()(context.Background()))
	assert.Equal(t, 0, m.Len())
}
