package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	jornadaHandler JornadaHandler,
	confirmationHandler ConfirmationHandler,
	reportHandler ReportHandler,
	eventHandler EventHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll-desk"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Archive-Path"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with a query token
		r.Get("/events", eventHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/events/token", eventHandler.Token)

			r.Route("/jornadas", func(r chi.Router) {
				r.Post("/", jornadaHandler.Submit)
				r.Post("/preview", jornadaHandler.Preview)
				r.Post("/import", jornadaHandler.Import)
			})
			r.Put("/punches/{id}", jornadaHandler.CorrectPunch)

			r.Route("/confirmations/{id}", func(r chi.Router) {
				r.Post("/confirm", confirmationHandler.Confirm)
				r.Delete("/", confirmationHandler.Cancel)
			})

			r.Route("/reports/payroll", func(r chi.Router) {
				r.Get("/", reportHandler.Open)
				r.Delete("/", reportHandler.Close)
				r.Get("/export", reportHandler.Export)
				r.Get("/archive", reportHandler.Archived)
				r.Delete("/archive", reportHandler.DeleteArchived)
				r.Post("/observations/flush", reportHandler.FlushObservations)
				r.Put("/observations/{date}", reportHandler.EditObservation)
			})
		})
	})
	return r
}
