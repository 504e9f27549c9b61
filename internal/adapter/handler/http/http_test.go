package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/users_crud_service/internal/adapter/memory"
	metricsAdapter "github.com/sm8ta/users_crud_service/internal/adapter/prometheus"
	"github.com/sm8ta/users_crud_service/internal/adapter/redis"
	"github.com/sm8ta/users_crud_service/internal/config"
	"github.com/sm8ta/users_crud_service/internal/core/domain"
	"github.com/sm8ta/users_crud_service/internal/core/ports"
	"github.com/sm8ta/users_crud_service/internal/core/services"
)

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{}) {}
func (nopLogger) Error(string, map[string]interface{}) {}
func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{}) {}
func (nopLogger) InfoCtx(context.Context, string, map[string]interface{}) {}
func (nopLogger) ErrorCtx(context.Context, string, map[string]interface{}) {}

const validBody = `{
	"name": "Ana Souza",
	"birthDate": "15-06-1990",
	"cpf": "123.456.789-00",
	"nickname": "aninha",
	"gender": "Feminino",
	"email": "ana@example.com",
	"telephone": "+55 11 99999-0000",
	"state": "SP",
	"country": "Brasil"
}`

func newTestRouter(t *testing.T, repo ports.UserRepository) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	log := nopLogger{}
	svc := services.NewUserService(repo, log, validator.New(), redis.NopCache{}, time.Minute)
	handler := NewUserHandler(svc, log, metricsAdapter.NewPrometheusAdapter(reg, "users-test"))

	router, err := NewRouter(&config.HTTP{Port: "0", AllowedOrigins: "*"}, log, reg, handler)
	require.NoError(t, err)
	return router
}

func do(t *testing.T, router *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var user map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user), rec.Body.String())
	return user
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func createUser(t *testing.T, router *Router, body string) map[string]any {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeUser(t, rec)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())

	created := createUser(t, router, validBody)
	id, ok := created["id"].(float64)
	require.True(t, ok)
	assert.Positive(t, id)
	assert.Equal(t, "15-06-1990", created["birthDate"])
	assert.NotEmpty(t, created["createdAt"])
	assert.NotEmpty(t, created["updatedAt"])

	rec := do(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeUser(t, rec))
}

func TestListUsers(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())

	rec := do(t, router, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	createUser(t, router, validBody)
	createUser(t, router, strings.NewReplacer("123.456.789-00", "2", "ana@example.com", "b@example.com").Replace(validBody))

	rec = do(t, router, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "15-06-1990", users[0]["birthDate"])
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", services.MsgMissingFields},
		{"missing field", `{"name":"Ana"}`, services.MsgMissingFields},
		{"bad gender", strings.Replace(validBody, "Feminino", "Female", 1), services.MsgInvalidGender},
		{"impossible date", strings.Replace(validBody, "15-06-1990", "31-02-2020", 1), services.MsgInvalidDate},
		{"iso date", strings.Replace(validBody, "15-06-1990", "2020-01-01", 1), services.MsgInvalidDate},
		{"garbage date", strings.Replace(validBody, "15-06-1990", "abc", 1), services.MsgInvalidDate},
		{"malformed json", `{"name":`, msgInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, memory.NewUserRepository())

			rec := do(t, router, http.MethodPost, "/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorMessage(t, rec))

			list := do(t, router, http.MethodGet, "/users", "")
			assert.JSONEq(t, `[]`, list.Body.String())
		})
	}
}

func TestCreateDuplicate(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())
	first := createUser(t, router, validBody)

	sameCPF := strings.Replace(validBody, "ana@example.com", "other@example.com", 1)
	rec := do(t, router, http.MethodPost, "/users", sameCPF)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgDuplicate, errorMessage(t, rec))

	sameEmail := strings.Replace(validBody, "123.456.789-00", "999", 1)
	rec = do(t, router, http.MethodPost, "/users", sameEmail)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgDuplicate, errorMessage(t, rec))

	rec = do(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, decodeUser(t, rec))
}

func TestGetUserErrors(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())

	for _, path := range []string{"/users/abc", "/users/12abc", "/users/1.5"} {
		rec := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, msgInvalidID, errorMessage(t, rec))
	}

	rec := do(t, router, http.MethodGet, "/users/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgNotFound, errorMessage(t, rec))
}

func TestPartialUpdate(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())
	created := createUser(t, router, validBody)

	rec := do(t, router, http.MethodPut, "/users/1", `{"nickname":"X"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeUser(t, rec)

	assert.Equal(t, "X", updated["nickname"])
	for _, field := range []string{"id", "name", "birthDate", "cpf", "gender", "email", "telephone", "state", "country", "createdAt"} {
		assert.Equal(t, created[field], updated[field], field)
	}
}

func TestUpdateBirthDateRoundTrip(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())
	createUser(t, router, validBody)

	rec := do(t, router, http.MethodPut, "/users/1", `{"birthDate":"29-02-2000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "29-02-2000", decodeUser(t, rec)["birthDate"])

	rec = do(t, router, http.MethodGet, "/users/1", "")
	assert.Equal(t, "29-02-2000", decodeUser(t, rec)["birthDate"])
}

func TestUpdateErrors(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())
	created := createUser(t, router, validBody)
	createUser(t, router, strings.NewReplacer("123.456.789-00", "2", "ana@example.com", "b@example.com").Replace(validBody))

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		want   string
	}{
		{"invalid id", "/users/x", `{"nickname":"X"}`, http.StatusBadRequest, msgInvalidID},
		{"no fields", "/users/1", `{}`, http.StatusBadRequest, services.MsgNothingToUpdate},
		{"empty body", "/users/1", "", http.StatusBadRequest, services.MsgNothingToUpdate},
		{"bad gender", "/users/1", `{"gender":"X"}`, http.StatusBadRequest, services.MsgInvalidGender},
		{"bad date", "/users/1", `{"birthDate":"31-02-2020"}`, http.StatusBadRequest, services.MsgInvalidDate},
		{"duplicate email", "/users/1", `{"email":"b@example.com"}`, http.StatusBadRequest, msgDuplicate},
		{"missing user", "/users/999999", `{"nickname":"X"}`, http.StatusNotFound, msgNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, errorMessage(t, rec))
		})
	}

	rec := do(t, router, http.MethodGet, "/users/1", "")
	assert.Equal(t, created, decodeUser(t, rec))
}

func TestDeleteUser(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())
	createUser(t, router, validBody)

	rec := do(t, router, http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Usuário deletado."}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgNotFound, errorMessage(t, rec))

	rec = do(t, router, http.MethodDelete, "/users/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingRepo struct {
	*memory.UserRepository
}

func (failingRepo) ListUsers(context.Context) ([]domain.User, error) {
	return nil, &domain.StorageError{Op: "ListUsers", Err: errors.New("connection refused")}
}

func TestStorageFailureIs500(t *testing.T) {
	router := newTestRouter(t, failingRepo{memory.NewUserRepository()})

	rec := do(t, router, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "connection refused", errorMessage(t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, memory.NewUserRepository())
	do(t, router, http.MethodGet, "/users/7", "")

	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{app_name="users-test",method="GET",path="/users/:id",status="404"} 1`)
}
