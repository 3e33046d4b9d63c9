package export

import (
	"context"
	"io"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
)

func (f Format) IsValid() bool {
	return f == FormatPDF || f == FormatExcel
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Document is a fully rendered export.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
	ArchivePath string // empty when archiving is disabled
}

// Generator renders a snapshot into a document. It is a pure sink: no I/O besides w.
type Generator interface {
	Format() Format
	Generate(snapshot report.ReportSnapshot, w io.Writer) error
}

// ExportService exports the payroll report of the authenticated user
type ExportService interface {
	ExportPayrollReport(ctx context.Context, format Format) (Document, error)

	// ArchivedExport returns a previously archived document by its archive path
	ArchivedExport(ctx context.Context, archivePath string) (Document, error)

	// DeleteArchivedExport removes an archived document
	DeleteArchivedExport(ctx context.Context, archivePath string) error
}
