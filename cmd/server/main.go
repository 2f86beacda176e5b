package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"office-panel/internal/api/routes"
	"office-panel/internal/audit"
	"office-panel/internal/cache"
	"office-panel/internal/config"
	"office-panel/internal/logging"
	"office-panel/internal/models"
	"office-panel/internal/services"
	"office-panel/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("office-panel stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(cfg.Logging)
	slog.SetDefault(log)

	// Initialize database
	db, err := models.InitDB(cfg, log)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	feedCache, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer feedCache.Close()

	notifier := webhook.New(cfg.Webhook.URL, config.Duration(cfg.Webhook.Timeout, 2*time.Second))
	observer := audit.NewObserver(db, notifier, log)
	svc := services.New(cfg, db, observer, feedCache, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create default user if database is empty
	if err := svc.Auth.CreateDefaultUser(ctx); err != nil {
		log.Warn("failed to create default user", slog.Any("error", err))
	}

	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	routes.SetupRoutes(r, cfg, routes.Deps{DB: db, Services: svc, Log: log})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", slog.String("addr", addr), slog.String("database", cfg.Database.Type))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sweep(gctx, svc, config.Duration(cfg.Notices.ExpirySweepInterval, 10*time.Minute), log)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sweep expires notices past their expiry date and drops dead sessions until
// ctx is cancelled.
func sweep(ctx context.Context, svc *services.Services, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		expired, err := svc.Notices.ExpireDue(ctx)
		if err != nil {
			log.Error("notice expiry sweep failed", slog.Any("error", err))
		} else if expired > 0 {
			log.Info("expired notices", slog.Int("count", expired))
		}

		if n, err := svc.Auth.DeleteExpiredSessions(ctx); err != nil {
			log.Error("session cleanup failed", slog.Any("error", err))
		} else if n > 0 {
			log.Debug("removed expired sessions", slog.Int64("count", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
