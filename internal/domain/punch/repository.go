package punch

import "context"

// PunchRepository is the time-clock side of the HR API.
type PunchRepository interface {
	// SubmitPunch records one clock event
	SubmitPunch(ctx context.Context, event PunchEvent) (PunchAck, error)

	// UpdatePunch corrects a single existing clock event
	UpdatePunch(ctx context.Context, punchID string, event PunchEvent) (PunchAck, error)
}
