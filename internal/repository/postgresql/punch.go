package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type punchRepository struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) punch.PunchRepository {
	return &punchRepository{db: db}
}

// SubmitPunch implements punch.PunchRepository.
func (r *punchRepository) SubmitPunch(ctx context.Context, event punch.PunchEvent) (punch.PunchAck, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO punches (employee_id, kind, nominal_date, local_datetime, day_offset)
		VALUES ($1, $2, $3::date, $4::timestamp, $5)
		RETURNING id::text, employee_id, kind, to_char(local_datetime, 'YYYY-MM-DD"T"HH24:MI:SS')
	`

	var ack punch.PunchAck
	err := q.QueryRow(ctx, query,
		event.EmployeeID,
		string(event.Kind),
		event.NominalDate.Format(punch.DateLayout),
		event.ISOLocal(),
		event.DayOffset,
	).Scan(&ack.PunchID, &ack.EmployeeID, &ack.Kind, &ack.LocalDateTime)
	if err != nil {
		return punch.PunchAck{}, fmt.Errorf("%w: insert punch: %w", report.ErrPersistenceFailure, err)
	}

	return ack, nil
}

// UpdatePunch implements punch.PunchRepository.
func (r *punchRepository) UpdatePunch(ctx context.Context, punchID string, event punch.PunchEvent) (punch.PunchAck, error) {
	id, err := uuid.Parse(punchID)
	if err != nil {
		return punch.PunchAck{}, punch.ErrPunchNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE punches
		SET kind = $2,
			nominal_date = $3::date,
			local_datetime = $4::timestamp,
			day_offset = $5,
			updated_at = NOW()
		WHERE id = $1 AND employee_id = $6
		RETURNING id::text, employee_id, kind, to_char(local_datetime, 'YYYY-MM-DD"T"HH24:MI:SS')
	`

	var ack punch.PunchAck
	err = q.QueryRow(ctx, query,
		id,
		string(event.Kind),
		event.NominalDate.Format(punch.DateLayout),
		event.ISOLocal(),
		event.DayOffset,
		event.EmployeeID,
	).Scan(&ack.PunchID, &ack.EmployeeID, &ack.Kind, &ack.LocalDateTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return punch.PunchAck{}, punch.ErrPunchNotFound
		}
		return punch.PunchAck{}, fmt.Errorf("%w: update punch: %w", report.ErrPersistenceFailure, err)
	}

	return ack, nil
}
