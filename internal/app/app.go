package app

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	handlers "github.com/sm8ta/users_crud_service/internal/adapter/handler/http"
	"github.com/sm8ta/users_crud_service/internal/adapter/memory"
	"github.com/sm8ta/users_crud_service/internal/adapter/mysql"
	"github.com/sm8ta/users_crud_service/internal/adapter/mysql/repository"
	promadapter "github.com/sm8ta/users_crud_service/internal/adapter/prometheus"
	"github.com/sm8ta/users_crud_service/internal/adapter/redis"
	"github.com/sm8ta/users_crud_service/internal/config"
	"github.com/sm8ta/users_crud_service/internal/core/ports"
	"github.com/sm8ta/users_crud_service/internal/core/services"
)

type App struct {
	Router *handlers.Router

	log   ports.LoggerPort
	cache ports.CachePort
	pool  *mysql.Pool
}

// New wires the users service. The MySQL pool is opened lazily so startup
// succeeds even when the database is not reachable yet.
func New(
	ctx context.Context,
	cfg *config.Container,
	log ports.LoggerPort,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
) (*App, error) {
	a := &App{log: log}

	var userRepo ports.UserRepository
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn("Using in-memory storage, data is lost on restart", nil)
		userRepo = memory.NewUserRepository()
	default:
		a.pool = mysql.NewPool(cfg.DB)
		userRepo = repository.NewUserRepository(a.pool)
	}

	cache, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		a.closePool()
		return nil, err
	}
	a.cache = cache

	userService := services.NewUserService(userRepo, log, validator.New(), cache, cfg.Redis.TTL)
	metrics := promadapter.NewPrometheusAdapter(reg, cfg.App.Name)
	userHandler := handlers.NewUserHandler(userService, log, metrics)

	router, err := handlers.NewRouter(cfg.HTTP, log, gatherer, userHandler)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Router = router

	return a, nil
}

// Run starts the HTTP server. Errors other than a clean shutdown go to errc.
func (a *App) Run(errc chan<- error) {
	go func() {
		a.log.Info("Starting the HTTP server", map[string]interface{}{
			"addr": a.Router.Addr(),
		})
		if err := a.Router.Serve(); err != nil {
			errc <- err
		}
	}()
}

// Stop drains the HTTP server, then releases the cache and the pool.
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if a.Router != nil {
		if err := a.Router.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.closePool(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closePool() error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Close()
}
