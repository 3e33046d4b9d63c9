package hrapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/google/uuid"
)

type punchPayload struct {
	EmployeeID    string `json:"employee_id"`
	Kind          string `json:"kind"`
	LocalDateTime string `json:"local_date_time"`
	NominalDate   string `json:"nominal_date"`
}

type punchData struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	Kind          string `json:"kind"`
	LocalDateTime string `json:"local_date_time"`
}

func newPunchPayload(e punch.PunchEvent) punchPayload {
	return punchPayload{
		EmployeeID:    e.EmployeeID,
		Kind:          string(e.Kind),
		LocalDateTime: e.ISOLocal(),
		NominalDate:   e.NominalDate.Format(punch.DateLayout),
	}
}

func (d punchData) ack() punch.PunchAck {
	return punch.PunchAck{
		PunchID:       d.ID,
		EmployeeID:    d.EmployeeID,
		Kind:          punch.Kind(d.Kind),
		LocalDateTime: d.LocalDateTime,
	}
}

// SubmitPunch implements punch.PunchRepository.
// Every call carries a fresh Idempotency-Key so a retried request is not recorded twice.
func (c *Client) SubmitPunch(ctx context.Context, e punch.PunchEvent) (punch.PunchAck, error) {
	key, err := uuid.NewV7()
	if err != nil {
		return punch.PunchAck{}, fmt.Errorf("failed to generate idempotency key: %w", err)
	}

	var data punchData
	err = c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/v1/attendance/punches",
		body:    newPunchPayload(e),
		headers: map[string]string{"Idempotency-Key": key.String()},
	}, &data)
	if err != nil {
		return punch.PunchAck{}, fmt.Errorf("%w: %w", report.ErrPersistenceFailure, err)
	}
	return data.ack(), nil
}

// UpdatePunch implements punch.PunchRepository.
func (c *Client) UpdatePunch(ctx context.Context, punchID string, e punch.PunchEvent) (punch.PunchAck, error) {
	var data punchData
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/v1/attendance/punches/" + url.PathEscape(punchID),
		body:   newPunchPayload(e),
	}, &data)
	if err != nil {
		if IsNotFound(err) {
			return punch.PunchAck{}, punch.ErrPunchNotFound
		}
		return punch.PunchAck{}, fmt.Errorf("%w: %w", report.ErrPersistenceFailure, err)
	}
	return data.ack(), nil
}
