package observation

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/shopspring/decimal"
)

type setCall struct {
	employeeID string
	date       string
	text       string
}

// fakeReportRepository stores observations in memory the way the HR API would.
type fakeReportRepository struct {
	mu        sync.Mutex
	days      []report.DailyAggregateRow
	advances  []report.AdvanceRecord
	setCalls  []setCall
	getCalls  int
	failDates map[string]error
	getErr    error

	started chan struct{} // receives one value per SetDailyObservation call
	release chan struct{} // when set, SetDailyObservation waits for it
}

func newFakeRepo(dates ...string) *fakeReportRepository {
	repo := &fakeReportRepository{failDates: map[string]error{}}
	for _, d := range dates {
		repo.days = append(repo.days, report.DailyAggregateRow{
			EmployeeID:   "emp-1",
			Date:         d,
			BasePay:      decimal.RequireFromString("40.00"),
			NetPayForDay: decimal.RequireFromString("40.00"),
			Observation:  "",
		})
	}
	return repo
}

func (f *fakeReportRepository) GetPayrollReport(ctx context.Context, employeeID, startDate, endDate string) (report.ReportSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	if f.getErr != nil {
		return report.ReportSnapshot{}, f.getErr
	}

	days := make([]report.DailyAggregateRow, 0, len(f.days))
	for _, d := range f.days {
		if d.EmployeeID == employeeID && d.Date >= startDate && d.Date <= endDate {
			days = append(days, d)
		}
	}
	return report.ReportSnapshot{
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
		Days:       days,
		Advances:   append([]report.AdvanceRecord(nil), f.advances...),
		FetchedAt:  time.Now(),
	}, nil
}

func (f *fakeReportRepository) SetDailyObservation(ctx context.Context, employeeID, date, text string) error {
	f.mu.Lock()
	f.setCalls = append(f.setCalls, setCall{employeeID, date, text})
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failDates[date]; err != nil {
		return err
	}
	for i := range f.days {
		if f.days[i].EmployeeID == employeeID && f.days[i].Date == date {
			f.days[i].Observation = text
		}
	}
	return nil
}

func (f *fakeReportRepository) calls() []setCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]setCall(nil), f.setCalls...)
}

func (f *fakeReportRepository) gets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

func (f *fakeReportRepository) observation(date string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.days {
		if d.Date == date {
			return d.Observation
		}
	}
	return ""
}
