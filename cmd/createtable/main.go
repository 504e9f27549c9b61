package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/sm8ta/users_crud_service/internal/adapter/logger"
	"github.com/sm8ta/users_crud_service/internal/adapter/mysql"
	"github.com/sm8ta/users_crud_service/internal/config"
)

func main() {
	migrations := flag.String("migrations", "", "apply goose migrations from this directory instead of the embedded DDL")
	flag.Parse()

	cfg, err := config.LoadDB()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	loggerAdapter := logger.NewLoggerAdapter(os.Getenv("APP_ENV"))

	pool := mysql.NewPool(cfg)
	if err := createTable(pool, *migrations); err != nil {
		pool.Close()
		loggerAdapter.Error("Failed to create users table", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	pool.Close()

	loggerAdapter.Info("Table users ready", map[string]interface{}{
		"database": cfg.Name,
	})
}

func createTable(pool *mysql.Pool, dir string) error {
	if dir != "" {
		db, err := pool.DB()
		if err != nil {
			return err
		}
		return mysql.Migrate(db, dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return mysql.CreateUsersTable(ctx, pool)
}
