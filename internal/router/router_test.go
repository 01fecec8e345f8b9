package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project-tracker-api/internal/client"
	"project-tracker-api/internal/database"
	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/metrics"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestRouter creates a test router configuration over an in-memory database
func setupTestRouter(t *testing.T, basePath string, m *metrics.Metrics) *Config {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	return &Config{
		DB:        db,
		Logger:    zap.NewNop(),
		JWTSecret: testSecret,
		BasePath:  basePath,
		Metrics:   m,
	}
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

func TestMetricsEndpoint_RootPath(t *testing.T) {
	for _, basePath := range []string{"", "/"} {
		t.Run("base="+basePath, func(t *testing.T) {
			cfg := setupTestRouter(t, basePath, newTestMetrics())
			var router *gin.Engine
			require.NotPanics(t, func() { router = Setup(*cfg) })

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

			body := w.Body.String()
			assert.Contains(t, body, "# HELP")
			assert.Contains(t, body, "# TYPE")
			// the default registry always carries Go runtime metrics
			assert.Contains(t, body, "go_goroutines")
		})
	}
}

func TestRootBasePath_ServesHealthAndResources(t *testing.T) {
	for _, basePath := range []string{"", "/"} {
		t.Run("base="+basePath, func(t *testing.T) {
			cfg := setupTestRouter(t, basePath, newTestMetrics())
			router := Setup(*cfg)

			for _, path := range []string{"/health", "/ready"} {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, http.StatusOK, w.Code, path)
			}

			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New()))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}

func TestMetricsEndpoint_WithBasePath(t *testing.T) {
	basePath := "/api/tracker"
	cfg := setupTestRouter(t, basePath, newTestMetrics())
	router := Setup(*cfg)

	for _, path := range []string{"/metrics", basePath + "/metrics"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, "metrics should not require authentication")
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		})
	}
}

func TestMetricsEndpoint_ContainsAllMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	_ = metrics.NewWithRegistry(registry, zap.NewNop())

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}

	// Vec metrics only appear once a label set is observed
	expected := []string{
		"tracker_api_db_connections_open",
		"tracker_api_db_connections_in_use",
		"tracker_api_db_connections_idle",
		"tracker_api_db_connections_max",
		"tracker_api_db_connection_wait_total",
		"tracker_api_projects_total",
		"tracker_api_project_created_total",
		"tracker_api_task_created_total",
		"tracker_api_ws_connections_active",
		"tracker_api_events_dropped_total",
	}
	for _, name := range expected {
		assert.True(t, names[name], "registry should contain %s", name)
	}
}

func TestMetricsEndpoint_PrometheusFormat(t *testing.T) {
	cfg := setupTestRouter(t, "", newTestMetrics())
	router := Setup(*cfg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var hasHelp, hasType, hasSample bool
	for _, line := range strings.Split(w.Body.String(), "\n") {
		switch {
		case strings.HasPrefix(line, "# HELP"):
			hasHelp = true
		case strings.HasPrefix(line, "# TYPE"):
			hasType = true
		case line != "" && !strings.HasPrefix(line, "#") && strings.Contains(line, " "):
			hasSample = true
		}
	}
	assert.True(t, hasHelp)
	assert.True(t, hasType)
	assert.True(t, hasSample)
}

func TestHealthEndpoints(t *testing.T) {
	cfg := setupTestRouter(t, "/api", newTestMetrics())
	router := Setup(*cfg)

	for _, path := range []string{"/health", "/ready", "/api/health", "/api/ready"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAPIRequiresAuthentication(t *testing.T) {
	cfg := setupTestRouter(t, "/api", newTestMetrics())
	router := Setup(*cfg)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"bad signature", "Bearer " + func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": uuid.NewString()})
			s, _ := tok.SignedString([]byte("other-secret"))
			return s
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestEveryKindIsRouted(t *testing.T) {
	cfg := setupTestRouter(t, "/api", newTestMetrics())
	router := Setup(*cfg)
	token := signToken(t, uuid.New())

	for _, kind := range domain.Kinds() {
		if kind == domain.KindAttachment {
			continue
		}
		t.Run(kind.Plural(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/"+kind.Plural(), nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}

func TestAttachmentRoutesFollowStorageConfig(t *testing.T) {
	token := signToken(t, uuid.New())
	request := func(router *gin.Engine) int {
		req := httptest.NewRequest(http.MethodGet, "/api/attachments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	cfg := setupTestRouter(t, "/api", newTestMetrics())
	assert.Equal(t, http.StatusNotFound, request(Setup(*cfg)))

	cfg = setupTestRouter(t, "/api", newTestMetrics())
	cfg.S3Client = client.NewMockS3Client()
	assert.Equal(t, http.StatusOK, request(Setup(*cfg)))
}

func TestMutationsArePublished(t *testing.T) {
	recorder := events.NewRecorder()
	cfg := setupTestRouter(t, "/api", newTestMetrics())
	cfg.Publisher = recorder
	router := Setup(*cfg)

	body, err := json.Marshal(map[string]string{"name": "Launch"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []events.Type{"PROJECT_CREATED"}, recorder.Types())
}

func TestCORSPreflight(t *testing.T) {
	cfg := setupTestRouter(t, "/api", newTestMetrics())
	cfg.CORSOrigins = []string{"http://localhost:5173"}
	router := Setup(*cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
