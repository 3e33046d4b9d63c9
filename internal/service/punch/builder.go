package punch

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
)

// BuildEvents turns a shift into punch events, one per present kind, in kind order.
// Two kinds with the same timestamp keep that order; events are never sorted by time.
func BuildEvents(shift punch.Shift) ([]punch.PunchEvent, error) {
	resolved, err := Infer(shift.Inputs)
	if err != nil {
		return nil, err
	}

	y, m, d := shift.NominalDate.Date()
	events := make([]punch.PunchEvent, 0, len(resolved))
	for _, r := range resolved {
		events = append(events, punch.PunchEvent{
			Kind:          r.Kind,
			EmployeeID:    shift.EmployeeID,
			NominalDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			LocalDateTime: time.Date(y, m, d+r.DayOffset, r.Minutes/60, r.Minutes%60, 0, 0, time.UTC),
			DayOffset:     r.DayOffset,
		})
	}
	return events, nil
}
