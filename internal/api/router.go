package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/video-stream/subreflow/internal/api/handlers"
	"github.com/video-stream/subreflow/internal/api/middleware"
	"github.com/video-stream/subreflow/internal/auth"
	"github.com/video-stream/subreflow/internal/config"
	"github.com/video-stream/subreflow/internal/db"
	"github.com/video-stream/subreflow/internal/job"
	"github.com/video-stream/subreflow/internal/subtitle/translate"
)

// Version is reported by /api/health.
var Version = "dev"

const (
	jsonBodyLimit   = 1 << 20  // 1 MiB
	reflowBodyLimit = 16 << 20 // whole SRT documents
)

// Deps bundles what the HTTP layer needs.
type Deps struct {
	Config     *config.Config
	Database   *db.Database
	JWT        *auth.JWTService
	Jobs       *job.JobQueue
	Translator *translate.Service
	Logger     *zap.Logger
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(cors.Handler(middleware.CORSHandler(d.Config.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(d.Database, d.JWT)
	filesHandler := handlers.NewFilesHandler(d.Config.MediaPath, d.Config.OutputPath)
	reflowHandler := handlers.NewReflowHandler(d.Translator, d.Jobs, d.Config.MediaPath, d.Logger)
	jobHandler := handlers.NewJobHandler(d.Jobs)
	settingsHandler := handlers.NewSettingsHandler(d.Database)
	healthHandler := handlers.NewHealthHandler(d.Database, Version)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.With(loginLimiter.Handler, middleware.MaxBodySize(jsonBodyLimit)).
			Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.JWT))

			r.Get("/auth/me", authHandler.Me)

			// Files
			r.Get("/files/tree", filesHandler.GetTree)
			r.Get("/files/tree/*", filesHandler.GetTree)
			r.Get("/files/search", filesHandler.Search)
			r.Get("/files/output/*", filesHandler.GetOutput)

			// Reflow
			r.Get("/engines", reflowHandler.Engines)
			r.With(middleware.MaxBodySize(reflowBodyLimit)).Post("/reflow", reflowHandler.Reflow)
			r.With(middleware.MaxBodySize(jsonBodyLimit)).Post("/reflow/file/*", reflowHandler.ReflowFile)
			r.With(middleware.MaxBodySize(jsonBodyLimit)).Post("/translate", reflowHandler.Translate)

			// Jobs
			r.Get("/jobs", jobHandler.ListJobs)
			r.Get("/jobs/{id}", jobHandler.GetJob)
			r.Delete("/jobs/{id}", jobHandler.CancelJob)
			r.Post("/jobs/{id}/retry", jobHandler.RetryJob)

			// Settings
			r.Get("/settings", settingsHandler.GetSettings)
			r.With(middleware.RequireRole("admin"), middleware.MaxBodySize(jsonBodyLimit)).
				Put("/settings", settingsHandler.UpdateSettings)
		})
	})

	return r
}
