package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/sse"
	exportsvc "github.com/cmlabs-hris/hris-payroll-desk/internal/service/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/service/observation"
)

// ReportServiceImpl serves both the report session and its exports; they share one buffer per user.
type ReportServiceImpl struct {
	sessions    *observation.Registry
	coordinator *exportsvc.Coordinator
	events      sse.Publisher
}

var (
	_ report.ReportService = (*ReportServiceImpl)(nil)
	_ export.ExportService = (*ReportServiceImpl)(nil)
)

// NewReportService wires the service. events may be nil.
func NewReportService(sessions *observation.Registry, coordinator *exportsvc.Coordinator, events sse.Publisher) *ReportServiceImpl {
	return &ReportServiceImpl{
		sessions:    sessions,
		coordinator: coordinator,
		events:      events,
	}
}

// OpenPayrollReport implements report.ReportService.
func (s *ReportServiceImpl) OpenPayrollReport(ctx context.Context, req report.PayrollReportRequest) (report.PayrollReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.PayrollReportResponse{}, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return report.PayrollReportResponse{}, err
	}

	buf, err := s.sessions.Open(ctx, userID, req.EmployeeID, req.StartDate, req.EndDate)
	if err != nil {
		return report.PayrollReportResponse{}, err
	}

	return render(buf), nil
}

// EditObservation implements report.ReportService.
func (s *ReportServiceImpl) EditObservation(ctx context.Context, req report.ObservationEditRequest) (report.ObservationEditResponse, error) {
	if err := req.Validate(); err != nil {
		return report.ObservationEditResponse{}, err
	}

	_, buf, err := s.session(ctx)
	if err != nil {
		return report.ObservationEditResponse{}, err
	}

	key := report.RowKey{EmployeeID: buf.Snapshot().EmployeeID, Date: req.Date}
	if err := buf.SetEdit(key, req.Observation); err != nil {
		return report.ObservationEditResponse{}, err
	}

	return report.ObservationEditResponse{
		Date:       req.Date,
		Pending:    req.Observation,
		DirtyDates: dirtyDates(buf),
	}, nil
}

// FlushObservations implements report.ReportService.
func (s *ReportServiceImpl) FlushObservations(ctx context.Context) (report.PayrollReportResponse, error) {
	userID, buf, err := s.session(ctx)
	if err != nil {
		return report.PayrollReportResponse{}, err
	}

	pending := dirtyDates(buf)
	if _, err := buf.Flush(ctx); err != nil {
		if !errors.Is(err, observation.ErrFlushInProgress) {
			sse.Notify(s.events, userID, sse.EventObservationsFlushFailed, map[string]interface{}{
				"employee_id": buf.Snapshot().EmployeeID,
				"dates":       pending,
				"stale":       buf.Stale(),
				"error":       err.Error(),
			})
		}
		return report.PayrollReportResponse{}, err
	}

	snapshot := buf.Snapshot()
	sse.Notify(s.events, userID, sse.EventObservationsFlushed, map[string]interface{}{
		"employee_id": snapshot.EmployeeID,
		"dates":       pending,
	})
	return render(buf), nil
}

// ClosePayrollReport implements report.ReportService.
func (s *ReportServiceImpl) ClosePayrollReport(ctx context.Context) error {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.sessions.Close(userID)
}

// ExportPayrollReport implements export.ExportService.
func (s *ReportServiceImpl) ExportPayrollReport(ctx context.Context, format export.Format) (export.Document, error) {
	userID, buf, err := s.session(ctx)
	if err != nil {
		return export.Document{}, err
	}

	current := buf.Snapshot()
	doc, err := s.coordinator.Export(ctx, format, current, buf)
	if err != nil {
		if errors.Is(err, export.ErrExportAborted) {
			sse.Notify(s.events, userID, sse.EventReportExportAborted, map[string]interface{}{
				"employee_id": current.EmployeeID,
				"format":      format,
				"error":       err.Error(),
			})
		}
		return export.Document{}, err
	}

	sse.Notify(s.events, userID, sse.EventReportExported, map[string]interface{}{
		"employee_id":  current.EmployeeID,
		"format":       format,
		"filename":     doc.Filename,
		"archive_path": doc.ArchivePath,
	})
	return doc, nil
}

// ArchivedExport implements export.ExportService.
func (s *ReportServiceImpl) ArchivedExport(ctx context.Context, archivePath string) (export.Document, error) {
	if _, err := jwt.UserIDFromContext(ctx); err != nil {
		return export.Document{}, err
	}
	return s.coordinator.Archived(ctx, archivePath)
}

// DeleteArchivedExport implements export.ExportService.
func (s *ReportServiceImpl) DeleteArchivedExport(ctx context.Context, archivePath string) error {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.coordinator.DeleteArchived(ctx, archivePath); err != nil {
		return err
	}
	slog.Info("Archived export removed", "user_id", userID, "path", archivePath)
	return nil
}

func (s *ReportServiceImpl) session(ctx context.Context) (string, *observation.Buffer, error) {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return "", nil, err
	}
	buf, err := s.sessions.Get(userID)
	if err != nil {
		return "", nil, fmt.Errorf("open a payroll report first: %w", err)
	}
	return userID, buf, nil
}

func render(buf *observation.Buffer) report.PayrollReportResponse {
	resp := report.NewPayrollReportResponse(buf.Snapshot(), buf.PendingEdits(), buf.Stale())
	if n := len(resp.UnmatchedAdvances); n > 0 {
		slog.Debug("Advances outside report days",
			"employee_id", resp.EmployeeID,
			"count", n,
		)
	}
	return resp
}

func dirtyDates(buf *observation.Buffer) []string {
	keys := buf.DirtyKeys()
	dates := make([]string, 0, len(keys))
	for _, k := range keys {
		dates = append(dates, k.Date)
	}
	return dates
}
