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

	pool := mysql.NewPool(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = pool.Check(ctx)
	cancel()
	pool.Close()

	if err != nil {
		loggerAdapter.Error("DB check failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	loggerAdapter.Info("DB ok", nil)
}
