package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/storage"
)

// Flusher is the part of an observation buffer an export depends on.
type Flusher interface {
	NeedsFlush() bool
	Flush(ctx context.Context) (report.ReportSnapshot, error)
}

// Coordinator guarantees an export never shows observations older than the user's edits:
// pending edits are flushed first, and a failed flush aborts the export.
type Coordinator struct {
	generators map[export.Format]export.Generator
	archive    storage.FileStorage
	now        func() time.Time
}

// NewCoordinator registers one generator per format. archive may be nil.
func NewCoordinator(archive storage.FileStorage, generators ...export.Generator) *Coordinator {
	c := &Coordinator{
		generators: make(map[export.Format]export.Generator, len(generators)),
		archive:    archive,
		now:        time.Now,
	}
	for _, g := range generators {
		c.generators[g.Format()] = g
	}
	return c
}

func (c *Coordinator) ExportPDF(ctx context.Context, current report.ReportSnapshot, buf Flusher) (export.Document, error) {
	return c.Export(ctx, export.FormatPDF, current, buf)
}

func (c *Coordinator) ExportExcel(ctx context.Context, current report.ReportSnapshot, buf Flusher) (export.Document, error) {
	return c.Export(ctx, export.FormatExcel, current, buf)
}

// Export renders the report in format. buf may be nil when there is no edit session.
func (c *Coordinator) Export(ctx context.Context, format export.Format, current report.ReportSnapshot, buf Flusher) (export.Document, error) {
	if !format.IsValid() {
		return export.Document{}, fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, format)
	}
	generator, ok := c.generators[format]
	if !ok {
		return export.Document{}, fmt.Errorf("%w: %s", export.ErrNoGeneratorForType, format)
	}

	snapshot := current
	if buf != nil && buf.NeedsFlush() {
		fresh, err := buf.Flush(ctx)
		if err != nil {
			slog.Warn("Export aborted, observations not saved",
				"employee_id", current.EmployeeID,
				"format", format,
				"error", err,
			)
			return export.Document{}, fmt.Errorf("%w: %w", export.ErrExportAborted, err)
		}
		snapshot = fresh
	}

	var out bytes.Buffer
	if err := generator.Generate(snapshot, &out); err != nil {
		return export.Document{}, fmt.Errorf("%w: %w", export.ErrGenerationFailed, err)
	}

	doc := export.Document{
		Filename:    Filename(snapshot, format),
		ContentType: format.ContentType(),
		Content:     out.Bytes(),
	}

	if c.archive != nil {
		archivePath := ArchivePath(snapshot, format, c.now())
		stored, err := c.archive.Upload(ctx, bytes.NewReader(doc.Content), archivePath, doc.ContentType)
		if err != nil {
			slog.Error("Failed to archive export", "path", archivePath, "error", err)
		} else {
			doc.ArchivePath = stored
		}
	}

	slog.Info("Report exported",
		"employee_id", snapshot.EmployeeID,
		"format", format,
		"rows", len(snapshot.Days),
		"bytes", len(doc.Content),
	)
	return doc, nil
}

// Filename is the download name of an export.
func Filename(s report.ReportSnapshot, format export.Format) string {
	return fmt.Sprintf("payroll_%s_%s_%s.%s", s.EmployeeID, s.StartDate, s.EndDate, format)
}

// ArchivePath is where an export is stored: exports/{employee}/{start}_{end}/{timestamp}.{ext}
func ArchivePath(s report.ReportSnapshot, format export.Format, at time.Time) string {
	return path.Join("exports", s.EmployeeID, s.StartDate+"_"+s.EndDate,
		at.UTC().Format("20060102T150405Z")+"."+string(format))
}

// Archived reads back a document stored by an earlier export.
func (c *Coordinator) Archived(ctx context.Context, archivePath string) (export.Document, error) {
	format, err := c.checkArchived(ctx, archivePath)
	if err != nil {
		return export.Document{}, err
	}

	rc, err := c.archive.Download(ctx, archivePath)
	if err != nil {
		return export.Document{}, fmt.Errorf("failed to open archived export: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return export.Document{}, fmt.Errorf("failed to read archived export: %w", err)
	}
	return export.Document{
		Filename:    path.Base(archivePath),
		ContentType: format.ContentType(),
		Content:     content,
		ArchivePath: archivePath,
	}, nil
}

// DeleteArchived removes a document stored by an earlier export.
func (c *Coordinator) DeleteArchived(ctx context.Context, archivePath string) error {
	if _, err := c.checkArchived(ctx, archivePath); err != nil {
		return err
	}
	if err := c.archive.Delete(ctx, archivePath); err != nil {
		return fmt.Errorf("failed to delete archived export: %w", err)
	}
	slog.Info("Archived export deleted", "path", archivePath)
	return nil
}

// checkArchived accepts only existing paths of the exports/ tree and returns their format.
func (c *Coordinator) checkArchived(ctx context.Context, archivePath string) (export.Format, error) {
	if c.archive == nil {
		return "", export.ErrArchiveDisabled
	}
	clean := path.Clean(archivePath)
	format := export.Format(strings.TrimPrefix(path.Ext(clean), "."))
	if clean != archivePath || !strings.HasPrefix(clean, "exports/") || !format.IsValid() {
		return "", fmt.Errorf("%w: %q", export.ErrInvalidArchivePath, archivePath)
	}

	exists, err := c.archive.Exists(ctx, clean)
	if err != nil {
		return "", fmt.Errorf("failed to check archived export: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", export.ErrArchiveNotFound, clean)
	}
	return format, nil
}
