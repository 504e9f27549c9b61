package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/users_crud_service/internal/config"
)

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{}) {}
func (nopLogger) Error(string, map[string]interface{}) {}
func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{}) {}
func (nopLogger) InfoCtx(context.Context, string, map[string]interface{}) {}
func (nopLogger) ErrorCtx(context.Context, string, map[string]interface{}) {}

func testConfig(driver string) *config.Container {
	return &config.Container{
		App: &config.App{Name: "users-test", Env: "local"},
		DB: &config.DB{
			Driver: driver,
			Host:   "127.0.0.1",
			Port:   "1",
			User:   "root",
			Name:   "dbmysql",
		},
		HTTP:  &config.HTTP{Port: "0", AllowedOrigins: "*", ShutdownTimeout: time.Second},
		Redis: &config.Redis{TTL: time.Minute},
	}
}

func newTestApp(t *testing.T, driver string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	a, err := New(context.Background(), testConfig(driver), nopLogger{}, reg, reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAppWithMemoryDriver(t *testing.T) {
	a := newTestApp(t, config.DriverMemory)

	body := `{"name":"Ana","birthDate":"15-06-1990","cpf":"1","nickname":"a","gender":"Outros",` +
		`"email":"a@b.c","telephone":"1","state":"SP","country":"BR"}`
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"birthDate":"15-06-1990"`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, a.Stop(ctx))
}

func TestAppStartsWithoutDatabase(t *testing.T) {
	a := newTestApp(t, config.DriverMySQL)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestAppFailsOnUnreachableCache(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.Redis.Address = "127.0.0.1:1"

	reg := prometheus.NewRegistry()
	_, err := New(context.Background(), cfg, nopLogger{}, reg, reg)
	assert.Error(t, err)
}
