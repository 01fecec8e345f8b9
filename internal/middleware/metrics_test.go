package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"project-tracker-api/internal/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

func setupMetricsRouter(m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(m))
	return router
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	m := newTestMetrics()
	router := setupMetricsRouter(m)
	router.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.DELETE("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/projects/x", nil))

	assert.Equal(t, float64(3), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/projects/:id", "PROJECT", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("DELETE", "/api/projects/:id", "PROJECT", "4xx")))
}

func TestMetricsMiddleware_LabelsKindAndUnmatchedRoutes(t *testing.T) {
	m := newTestMetrics()
	router := setupMetricsRouter(m)
	router.POST("/api/tracker/backlog-items", func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.GET("/api/tracker/notifications/unread-count", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })

	requests := []struct{ method, path string }{
		{http.MethodPost, "/api/tracker/backlog-items"},
		{http.MethodGet, "/api/tracker/notifications/unread-count"},
		{http.MethodGet, "/swagger/index.html"},
		{http.MethodGet, "/api/tracker/widgets/1"},
	}
	for _, r := range requests {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(r.method, r.path, nil))
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/tracker/backlog-items", "BACKLOG_ITEM", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/tracker/notifications/unread-count", "NOTIFICATION", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/swagger/*any", metrics.NoKind, "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", metrics.UnmatchedRoute, metrics.NoKind, "4xx")))
}

func TestMetricsMiddleware_ExcludedEndpoints(t *testing.T) {
	m := newTestMetrics()
	router := setupMetricsRouter(m)
	paths := []string{"/metrics", "/health", "/ready", "/api/tracker/health", "/api/tracker/ws"}
	for _, path := range paths {
		router.GET(path, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	for _, path := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Zero(t, testutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestProperty_StatusCategory(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("every request lands in its status class", prop.ForAll(
		func(code int) bool {
			m := newTestMetrics()
			router := setupMetricsRouter(m)
			router.GET("/api/tasks", func(c *gin.Context) { c.Status(code) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

			class := string(rune('0'+code/100)) + "xx"
			return w.Code == code &&
				testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/tasks", "TASK", class)) == 1
		},
		gen.IntRange(200, 599),
	))

	properties.TestingRun(t)
}
