package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/service/observation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingGenerator writes one line per row: "date|observation".
type recordingGenerator struct {
	format export.Format
	calls  int
	seen   report.ReportSnapshot
	err    error
}

func (g *recordingGenerator) Format() export.Format { return g.format }

func (g *recordingGenerator) Generate(s report.ReportSnapshot, w io.Writer) error {
	g.calls++
	g.seen = s
	if g.err != nil {
		_, _ = io.WriteString(w, "partial")
		return g.err
	}
	for _, row := range s.Rows() {
		if _, err := io.WriteString(w, row.Date+"|"+row.Observation+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type stubFlusher struct {
	needs    bool
	snapshot report.ReportSnapshot
	err      error
	flushes  int
}

func (f *stubFlusher) NeedsFlush() bool { return f.needs }

func (f *stubFlusher) Flush(ctx context.Context) (report.ReportSnapshot, error) {
	f.flushes++
	return f.snapshot, f.err
}

// memoryReportRepository is a minimal in-memory HR API.
type memoryReportRepository struct {
	mu       sync.Mutex
	days     []report.DailyAggregateRow
	failNext error
}

func (m *memoryReportRepository) GetPayrollReport(ctx context.Context, employeeID, startDate, endDate string) (report.ReportSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return report.ReportSnapshot{
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
		Days:       append([]report.DailyAggregateRow(nil), m.days...),
		FetchedAt:  time.Now(),
	}, nil
}

func (m *memoryReportRepository) SetDailyObservation(ctx context.Context, employeeID, date, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	for i := range m.days {
		if m.days[i].Date == date {
			m.days[i].Observation = text
		}
	}
	return nil
}

func snapshotWith(observation string) report.ReportSnapshot {
	return report.ReportSnapshot{
		EmployeeID: "emp-1",
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-31",
		Days: []report.DailyAggregateRow{{
			EmployeeID:   "emp-1",
			Date:         "2024-03-04",
			NetPayForDay: decimal.RequireFromString("10"),
			Observation:  observation,
		}},
	}
}

func TestExport_NothingPendingUsesCurrentSnapshot(t *testing.T) {
	gen := &recordingGenerator{format: export.FormatExcel}
	c := NewCoordinator(nil, gen)
	flusher := &stubFlusher{}

	doc, err := c.ExportExcel(context.Background(), snapshotWith("as loaded"), flusher)
	require.NoError(t, err)

	assert.Equal(t, 0, flusher.flushes)
	assert.Equal(t, "2024-03-04|as loaded\n", string(doc.Content))
	assert.Equal(t, "payroll_emp-1_2024-03-01_2024-03-31.xlsx", doc.Filename)
	assert.Equal(t, export.FormatExcel.ContentType(), doc.ContentType)
	assert.Empty(t, doc.ArchivePath)
}

func TestExport_FlushesFirstAndUsesFreshSnapshot(t *testing.T) {
	gen := &recordingGenerator{format: export.FormatPDF}
	c := NewCoordinator(nil, gen)
	flusher := &stubFlusher{needs: true, snapshot: snapshotWith("edited")}

	doc, err := c.ExportPDF(context.Background(), snapshotWith("stale"), flusher)
	require.NoError(t, err)

	assert.Equal(t, 1, flusher.flushes)
	assert.Equal(t, "edited", gen.seen.Days[0].Observation)
	assert.Contains(t, string(doc.Content), "edited")
}

func TestExport_FlushFailureAborts(t *testing.T) {
	gen := &recordingGenerator{format: export.FormatPDF}
	c := NewCoordinator(nil, gen)
	cause := errors.New("observation write rejected")
	flusher := &stubFlusher{needs: true, err: cause}

	doc, err := c.ExportPDF(context.Background(), snapshotWith("stale"), flusher)

	assert.ErrorIs(t, err, export.ErrExportAborted)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, doc.Content)
}

func TestExport_GeneratorFailureLeaksNothing(t *testing.T) {
	gen := &recordingGenerator{format: export.FormatExcel, err: errors.New("disk full")}
	c := NewCoordinator(nil, gen)

	doc, err := c.ExportExcel(context.Background(), snapshotWith("x"), nil)

	assert.ErrorIs(t, err, export.ErrGenerationFailed)
	assert.Nil(t, doc.Content)
}

func TestExport_UnknownFormat(t *testing.T) {
	c := NewCoordinator(nil, &recordingGenerator{format: export.FormatPDF})

	_, err := c.Export(context.Background(), "docx", snapshotWith("x"), nil)
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)

	_, err = c.ExportExcel(context.Background(), snapshotWith("x"), nil)
	assert.ErrorIs(t, err, export.ErrNoGeneratorForType)
}

func TestExport_Archives(t *testing.T) {
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	c := NewCoordinator(archive, &recordingGenerator{format: export.FormatPDF})
	c.now = func() time.Time { return time.Date(2024, 4, 1, 12, 30, 0, 0, time.UTC) }

	doc, err := c.ExportPDF(context.Background(), snapshotWith("x"), nil)
	require.NoError(t, err)

	assert.Equal(t, "exports/emp-1/2024-03-01_2024-03-31/20240401T123000Z.pdf", doc.ArchivePath)
	exists, err := archive.Exists(context.Background(), doc.ArchivePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExport_WithBufferReflectsLastSavedObservation(t *testing.T) {
	ctx := context.Background()
	repo := &memoryReportRepository{days: snapshotWith("original").Days}
	initial, err := repo.GetPayrollReport(ctx, "emp-1", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	buf := observation.NewBuffer(repo, initial)
	gen := &recordingGenerator{format: export.FormatExcel}
	c := NewCoordinator(nil, gen)

	require.NoError(t, buf.SetEdit(report.RowKey{EmployeeID: "emp-1", Date: "2024-03-04"}, "typed but unsaved"))
	repo.failNext = errors.New("503")

	_, err = c.ExportExcel(ctx, buf.Snapshot(), buf)
	require.ErrorIs(t, err, export.ErrExportAborted)
	assert.Equal(t, 0, gen.calls)

	doc, err := c.ExportExcel(ctx, buf.Snapshot(), buf)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(doc.Content), "typed but unsaved"))
	assert.False(t, buf.NeedsFlush())
}

func TestArchived_ReadsBackAndDeletes(t *testing.T) {
	ctx := context.Background()
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	c := NewCoordinator(archive, &recordingGenerator{format: export.FormatPDF})

	doc, err := c.ExportPDF(ctx, snapshotWith("medical"), nil)
	require.NoError(t, err)

	got, err := c.Archived(ctx, doc.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, "application/pdf", got.ContentType)
	assert.True(t, strings.HasSuffix(doc.ArchivePath, got.Filename))

	require.NoError(t, c.DeleteArchived(ctx, doc.ArchivePath))
	_, err = c.Archived(ctx, doc.ArchivePath)
	assert.ErrorIs(t, err, export.ErrArchiveNotFound)
	assert.ErrorIs(t, c.DeleteArchived(ctx, doc.ArchivePath), export.ErrArchiveNotFound)
}

func TestArchived_RejectsPathsOutsideExports(t *testing.T) {
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	c := NewCoordinator(archive)

	for _, p := range []string{"", "../etc/passwd.pdf", "exports/../x.pdf", "other/a.pdf", "exports/a.docx", "/exports/a.pdf"} {
		_, err := c.Archived(context.Background(), p)
		assert.ErrorIs(t, err, export.ErrInvalidArchivePath, p)
	}
}

func TestArchived_Disabled(t *testing.T) {
	c := NewCoordinator(nil)

	_, err := c.Archived(context.Background(), "exports/emp-1/a.pdf")
	assert.ErrorIs(t, err, export.ErrArchiveDisabled)
	assert.ErrorIs(t, c.DeleteArchived(context.Background(), "exports/emp-1/a.pdf"), export.ErrArchiveDisabled)
}
