package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/config"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/confirm"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/document"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/repository/postgresql"
	exportService "github.com/cmlabs-hris/hris-payroll-desk/internal/service/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/service/observation"
	punchService "github.com/cmlabs-hris/hris-payroll-desk/internal/service/punch"
	reportService "github.com/cmlabs-hris/hris-payroll-desk/internal/service/report"
)

// App holds the services shared by the HTTP server and the CLI.
type App struct {
	Config        *config.Config
	JWT           jwt.Service
	Hub           *sse.Hub
	Confirmations *confirm.Manager
	Sessions      *observation.Registry
	Punches       punch.PunchService
	Reports       *reportService.ReportServiceImpl
	Scheduler     *cron.Scheduler

	closers []func()
}

// New builds every service for cfg. The scheduler is created but not started.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	a.JWT = jwtService

	punchRepo, reportRepo, err := a.gateways(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	layout, err := document.LoadLayout(cfg.Export.LayoutFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load export layout: %w", err)
	}

	var archive storage.FileStorage
	if cfg.Export.ArchivePath != "" {
		local, err := storage.NewLocalStorage(cfg.Export.ArchivePath)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize export archive: %w", err)
		}
		archive = local
	}

	a.Hub = sse.NewHub()
	a.Confirmations = confirm.NewManager(cfg.Session.ConfirmationTTL)
	a.Sessions = observation.NewRegistry(reportRepo)
	a.Punches = punchService.NewPunchService(punchRepo, a.Hub)

	coordinator := exportService.NewCoordinator(archive,
		document.NewPDFGenerator(layout),
		document.NewExcelGenerator(layout),
	)
	a.Reports = reportService.NewReportService(a.Sessions, coordinator, a.Hub)

	a.Scheduler = cron.NewScheduler()
	cron.RegisterMaintenanceJobs(a.Scheduler, a.Sessions, cfg.Session.IdleTimeout, a.Confirmations, cfg.Session.ConfirmationTTL)

	return a, nil
}

func (a *App) gateways(ctx context.Context) (punch.PunchRepository, report.ReportRepository, error) {
	cfg := a.Config
	switch cfg.App.Backend {
	case config.BackendREST:
		client, err := hrapi.NewClient(ctx, hrapi.Config{
			BaseURL:      cfg.HRAPI.BaseURL,
			Token:        cfg.HRAPI.Token,
			TokenURL:     cfg.HRAPI.TokenURL,
			ClientID:     cfg.HRAPI.ClientID,
			ClientSecret: cfg.HRAPI.ClientSecret,
			Scopes:       cfg.HRAPI.Scopes,
			Timeout:      cfg.HRAPI.Timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize HR API client: %w", err)
		}
		slog.Info("Using HR API backend", "base_url", cfg.HRAPI.BaseURL)
		return client, client, nil

	case config.BackendPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		slog.Info("Using PostgreSQL backend", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return postgresql.NewPunchRepository(db), postgresql.NewReportRepository(db), nil
	}
	return nil, nil, fmt.Errorf("unsupported backend %q", cfg.App.Backend)
}

// Close stops the scheduler and releases connections.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
