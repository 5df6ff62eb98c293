package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/challenge-service/internal/config"
	"github.com/Dan9191/challenge-service/internal/handler"
	"github.com/Dan9191/challenge-service/internal/middleware"
	"github.com/Dan9191/challenge-service/internal/realtime"
	"github.com/Dan9191/challenge-service/internal/repository"
	"github.com/Dan9191/challenge-service/internal/scheduler"
	"github.com/Dan9191/challenge-service/internal/service"
	"github.com/Dan9191/challenge-service/internal/storage"
	"github.com/Dan9191/challenge-service/internal/utils/email"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	shutdownTimeout = 10 * time.Second

	throttleEvictSchedule = "@every 10m"
	throttleIdle          = 30 * time.Minute
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize storage
	uploads, err := storage.NewUploads(cfg.UploadDir)
	if err != nil {
		logger.Fatalf("Failed to prepare uploads: %v", err)
	}
	repo := repository.NewRepository()
	if cfg.SeedFile != "" {
		challenges, submissions, err := repo.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logger.Fatalf("Failed to seed store: %v", err)
		}
		logger.Infof("Seeded %d challenges and %d submissions from %s", challenges, submissions, cfg.SeedFile)
	}

	// Initialize layers
	var notifier service.Notifier
	if cfg.MailEnabled() {
		notifier = email.NewSender(cfg, logger)
	}
	svc := service.NewService(repo, uploads, notifier, logger, cfg)
	h := handler.NewHandler(svc, logger, cfg.MaxUploadMemory)
	listener := realtime.NewListener(cfg.AllowedOrigins, logger)

	loginThrottle := middleware.NewThrottle(cfg.LoginRatePerSecond, cfg.LoginBurst, "Too many login attempts")

	jobs := scheduler.NewScheduler(logger)
	if err := jobs.AddThrottleEviction(throttleEvictSchedule, throttleIdle, loginThrottle); err != nil {
		logger.Fatalf("Failed to schedule throttle eviction: %v", err)
	}
	if cfg.SweepSchedule != "" {
		if err := jobs.AddUploadSweep(cfg.SweepSchedule, cfg.SweepGrace, uploads, repo); err != nil {
			logger.Fatalf("Failed to schedule upload sweep: %v", err)
		}
	}
	jobs.Start()

	// Setup router
	router := handler.NewRouter(h, handler.RouterConfig{
		UploadDir:      cfg.UploadDir,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginThrottle:  loginThrottle,
		Realtime:       listener,
		Log:            logger,
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server is running on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Fatalf("Server failed: %v", err)
	case sig := <-stop:
		logger.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	if err := listener.Shutdown(shutdownTimeout); err != nil {
		logger.Errorf("WebSocket shutdown error: %v", err)
	}
	if err := jobs.Stop(ctx); err != nil {
		logger.Errorf("Scheduler shutdown error: %v", err)
	}
	logger.Info("Shutdown complete")
}
