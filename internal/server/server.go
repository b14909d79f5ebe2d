package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/video-stream/subreflow/internal/api"
	"github.com/video-stream/subreflow/internal/auth"
	"github.com/video-stream/subreflow/internal/config"
	"github.com/video-stream/subreflow/internal/db"
	"github.com/video-stream/subreflow/internal/job"
	"github.com/video-stream/subreflow/internal/logging"
	"github.com/video-stream/subreflow/internal/subtitle/translate"
)

// Run starts the HTTP server and the job worker and blocks until ctx is
// cancelled or the listener fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	log := logging.OrNop(logger)

	for _, dir := range []string{cfg.DataPath, cfg.OutputPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info("admin user ensured", zap.String("username", cfg.AdminUsername))
	if cfg.AdminPassword == "admin" {
		log.Warn("admin password is the default; set ADMIN_PASSWORD")
	}
	if cfg.GeneratedSecret {
		log.Warn("JWT_SECRET not set, generated a random one; tokens will not survive a restart")
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	svc := translate.NewService(cfg, database.GetSetting, database, log)
	for name, ok := range svc.Engines() {
		if ok {
			log.Info("translation engine available", zap.String("engine", name))
		}
	}

	queue := job.NewJobQueue(database.DB(), log)
	defer queue.Stop()
	queue.RegisterHandler(job.JobReflow, svc.HandleJob)

	router := api.NewRouter(api.Deps{
		Config:     cfg,
		Database:   database,
		JWT:        jwtService,
		Jobs:       queue,
		Translator: svc,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("media", cfg.MediaPath),
			zap.String("output", cfg.OutputPath),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
