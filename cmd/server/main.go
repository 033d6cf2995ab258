package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/moodlens/aura-tracker/internal/api"
	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/monitoring"
	"github.com/moodlens/aura-tracker/internal/notifications"
	"github.com/moodlens/aura-tracker/internal/scheduler"
	"github.com/moodlens/aura-tracker/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	analysis, err := config.LoadAnalysis(cfg.AnalysisConfigPath)
	if err != nil {
		logrus.Fatalf("Failed to load analysis configuration: %v", err)
	}

	logrus.Info("Starting aura tracker")

	cache, err := storage.New(cfg.CacheBackend, cfg.CacheDir, cfg.StorageAccount, cfg.StorageContainer)
	if err != nil {
		logrus.Fatalf("Failed to initialize content cache: %v", err)
	}

	notificationService := notifications.NewService(cfg)
	monitoringService := monitoring.NewService(cfg, analysis, cache, notificationService)
	logrus.Infof("Fetching user posts from %s", monitoringService.SourceName())

	schedulerService := scheduler.NewService(cfg, monitoringService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	router := api.NewRouter(monitoringService, monitoringService.Recorder().Handler(), api.Defaults{
		AlertThreshold: analysis.AlertThreshold,
		TrendDays:      analysis.TrendDays,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // aura and emotion requests may fetch and call models
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
