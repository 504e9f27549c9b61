package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusAdapter(reg, "users-test")

	router := gin.New()
	router.GET("/users/:id", func(c *gin.Context) {
		start := time.Now()
		defer metrics.RecordMetrics(c, start)
		c.Status(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	}

	adapter := metrics.(*PrometheusAdapter)
	got := testutil.ToFloat64(adapter.httpRequestsTotal.WithLabelValues("/users/:id", "GET", "404", "users-test"))
	assert.Equal(t, float64(2), got)

	n, err := testutil.GatherAndCount(reg, "api_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
