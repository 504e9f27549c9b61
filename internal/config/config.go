package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDBPort          = "3306"
	defaultDBName          = "dbmysql"
	defaultHTTPPort        = "3000"
	defaultAppName         = "users-service"
	defaultAppEnv          = "local"
	defaultShutdownTimeout = 10 * time.Second
	defaultCacheTTL        = 15 * time.Minute
)

// Storage drivers accepted in DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type (
	Container struct {
		App   *App
		DB    *DB
		HTTP  *HTTP
		Redis *Redis
	}

	App struct {
		Name string
		Env  string
	}

	DB struct {
		Driver          string
		Host            string
		Port            string
		User            string
		Password        string
		Name            string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}

	HTTP struct {
		Env             string
		Port            string
		AllowedOrigins  string
		URL             string
		ShutdownTimeout time.Duration
	}

	// Redis is optional: an empty Address disables the user cache.
	Redis struct {
		Address  string
		Password string
		TTL      time.Duration
	}
)

func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "prod" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	app := &App{
		Name: getEnv("APP_NAME", defaultAppName),
		Env:  getEnv("APP_ENV", defaultAppEnv),
	}

	db, err := loadDB()
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	http := &HTTP{
		Port:            getEnv("PORT", defaultHTTPPort),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "*"),
		URL:             os.Getenv("HTTP_URL"),
		Env:             app.Env,
		ShutdownTimeout: shutdownTimeout,
	}

	ttl, err := getDuration("CACHE_TTL", defaultCacheTTL)
	if err != nil {
		return nil, err
	}

	redis := &Redis{
		Address:  os.Getenv("REDIS_ADDRESS"),
		Password: os.Getenv("REDIS_PASSWORD"),
		TTL:      ttl,
	}

	return &Container{
		App:   app,
		DB:    db,
		HTTP:  http,
		Redis: redis,
	}, nil
}

// LoadDB reads only the database settings. Used by the provisioning commands.
func LoadDB() (*DB, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return loadDB()
}

func loadDB() (*DB, error) {
	password := os.Getenv("DB_PASS")
	if password == "" {
		password = os.Getenv("DB_PASSWORD")
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 0)
	if err != nil {
		return nil, err
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 0)
	if err != nil {
		return nil, err
	}
	lifetime, err := getDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return nil, err
	}

	driver := getEnv("DB_DRIVER", DriverMySQL)
	if driver != DriverMySQL && driver != DriverMemory {
		return nil, fmt.Errorf("invalid DB_DRIVER %q", driver)
	}

	return &DB{
		Driver:          driver,
		Host:            os.Getenv("DB_HOST"),
		Port:            getEnv("DB_PORT", defaultDBPort),
		User:            os.Getenv("DB_USER"),
		Password:        password,
		Name:            getEnv("DB_NAME", defaultDBName),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: lifetime,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
