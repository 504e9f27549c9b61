package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/sm8ta/users_crud_service/docs"
	"github.com/sm8ta/users_crud_service/internal/adapter/logger"
	"github.com/sm8ta/users_crud_service/internal/app"
	"github.com/sm8ta/users_crud_service/internal/config"
)

// @title Users API
// @version 1.0
// @description CRUD de usuários

// @host localhost:3000
// @BasePath /
func main() {
	// Loading environment
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app":    cfg.App.Name,
		"env":    cfg.App.Env,
		"driver": cfg.DB.Driver,
	})

	ctx := context.Background()
	application, err := app.New(ctx, cfg, loggerAdapter, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		loggerAdapter.Error("Error initializing application", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	errc := make(chan error, 1)
	application.Run(errc)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	loggerAdapter.Info("Application is running", nil)

	exitCode := 0
	select {
	case sig := <-stop:
		loggerAdapter.Info("Shutting down", map[string]interface{}{
			"signal": sig.String(),
		})
	case err := <-errc:
		loggerAdapter.Error("HTTP server failed", map[string]interface{}{
			"error": err.Error(),
		})
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := application.Stop(shutdownCtx); err != nil {
		loggerAdapter.Error("Error during shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		exitCode = 1
	}

	loggerAdapter.Info("Application stopped", nil)
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
