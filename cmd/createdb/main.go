package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/sm8ta/users_crud_service/internal/adapter/logger"
	"github.com/sm8ta/users_crud_service/internal/adapter/mysql"
	"github.com/sm8ta/users_crud_service/internal/config"
)

func main() {
	cfg, err := config.LoadDB()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	loggerAdapter := logger.NewLoggerAdapter(os.Getenv("APP_ENV"))

	db, err := mysql.OpenServer(cfg)
	if err != nil {
		loggerAdapter.Error("Failed to open MySQL connection", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = mysql.CreateDatabase(ctx, db, cfg.Name)
	cancel()
	db.Close()

	if err != nil {
		loggerAdapter.Error("Failed to create database", map[string]interface{}{
			"database": cfg.Name,
			"error":    err.Error(),
		})
		os.Exit(1)
	}
	loggerAdapter.Info("Database ready", map[string]interface{}{
		"database": cfg.Name,
	})
}
