package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

// GetPayrollReport implements report.ReportRepository.
func (r *reportRepository) GetPayrollReport(ctx context.Context, employeeID, startDate, endDate string) (report.ReportSnapshot, error) {
	snapshot := report.ReportSnapshot{
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
	}

	err := WithTransaction(ctx, r.db, readSnapshot, func(ctx context.Context) error {
		name, err := r.employeeName(ctx, employeeID)
		if err != nil {
			return err
		}
		snapshot.EmployeeName = name

		if snapshot.Days, err = r.dailyRows(ctx, employeeID, startDate, endDate); err != nil {
			return err
		}
		snapshot.Advances, err = r.advances(ctx, employeeID, startDate, endDate)
		return err
	})
	if err != nil {
		if errors.Is(err, report.ErrEmployeeNotFound) {
			return report.ReportSnapshot{}, err
		}
		return report.ReportSnapshot{}, fmt.Errorf("%w: %w", report.ErrUpstream, err)
	}

	snapshot.FetchedAt = time.Now()
	return snapshot, nil
}

func (r *reportRepository) employeeName(ctx context.Context, employeeID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var name string
	err := q.QueryRow(ctx, `
		SELECT full_name FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`, employeeID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", report.ErrEmployeeNotFound
		}
		return "", fmt.Errorf("failed to get employee: %w", err)
	}
	return name, nil
}

func (r *reportRepository) dailyRows(ctx context.Context, employeeID, startDate, endDate string) ([]report.DailyAggregateRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, to_char(date, 'YYYY-MM-DD'),
			   base_pay, daytime_overtime_minutes, daytime_overtime_pay,
			   nighttime_overtime_minutes, nighttime_overtime_pay,
			   deficit_minutes, deductions, net_pay,
			   COALESCE(observation, ''), COALESCE(entry_clock, ''), COALESCE(exit_clock, '')
		FROM payroll_daily
		WHERE employee_id = $1
		  AND date >= $2::date AND date <= $3::date
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll days: %w", err)
	}
	defer rows.Close()

	days := []report.DailyAggregateRow{}
	for rows.Next() {
		var d report.DailyAggregateRow
		if err := rows.Scan(
			&d.EmployeeID, &d.Date,
			&d.BasePay, &d.DaytimeOvertimeMinutes, &d.DaytimeOvertimePay,
			&d.NighttimeOvertimeMinutes, &d.NighttimeOvertimePay,
			&d.DeficitMinutes, &d.Deductions, &d.NetPayForDay,
			&d.Observation, &d.EntryClock, &d.ExitClock,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll days: %w", err)
	}
	return days, nil
}

// advances returns the advances requested within the range. Their dates are kept as
// stored so projection can match them against report days exactly.
func (r *reportRepository) advances(ctx context.Context, employeeID, startDate, endDate string) ([]report.AdvanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::text, employee_id, to_char(request_date, 'YYYY-MM-DD'), amount, COALESCE(description, '')
		FROM salary_advances
		WHERE employee_id = $1
		  AND request_date >= $2::date AND request_date <= $3::date
		ORDER BY request_date, created_at
	`

	rows, err := q.Query(ctx, query, employeeID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary advances: %w", err)
	}
	defer rows.Close()

	advances := []report.AdvanceRecord{}
	for rows.Next() {
		var a report.AdvanceRecord
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.RequestDate, &a.Amount, &a.Description); err != nil {
			return nil, fmt.Errorf("failed to scan salary advance: %w", err)
		}
		advances = append(advances, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary advances: %w", err)
	}
	return advances, nil
}

// SetDailyObservation implements report.ReportRepository.
func (r *reportRepository) SetDailyObservation(ctx context.Context, employeeID, date, text string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_daily
		SET observation = $3, updated_at = NOW()
		WHERE employee_id = $1 AND date = $2::date
	`, employeeID, date, text)
	if err != nil {
		return fmt.Errorf("%w: update observation: %w", report.ErrPersistenceFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", report.ErrRowNotInReport, employeeID, date)
	}
	return nil
}
