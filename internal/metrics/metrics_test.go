package metrics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

func getTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	collectors := map[string]interface{}{
		"HTTPRequestsTotal":          m.HTTPRequestsTotal,
		"HTTPRequestDuration":        m.HTTPRequestDuration,
		"DBConnectionsOpen":          m.DBConnectionsOpen,
		"DBQueryDuration":            m.DBQueryDuration,
		"ExternalAPIRequestsTotal":   m.ExternalAPIRequestsTotal,
		"ExternalAPIRequestDuration": m.ExternalAPIRequestDuration,
		"ProjectsTotal":              m.ProjectsTotal,
		"TasksTotal":                 m.TasksTotal,
		"TaskCreatedTotal":           m.TaskCreatedTotal,
		"WSConnectionsActive":        m.WSConnectionsActive,
		"EventsPublishedTotal":       m.EventsPublishedTotal,
		"EventsDroppedTotal":         m.EventsDroppedTotal,
		"JobRunsTotal":               m.JobRunsTotal,
	}
	for name, c := range collectors {
		if c == nil {
			t.Errorf("%s should not be nil", name)
		}
	}
}

// TestMetricHelpDescription checks every registered metric carries help text
func TestMetricHelpDescription(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry, zap.NewNop())

	// vectors only show up once a label set exists
	m.RecordHTTPRequest("GET", "/api/projects", "PROJECT", 200, 0)
	m.RecordDBQuery("select", "projects", 0, nil)
	m.RecordExternalAPICall("s3://bucket/key", "PUT", 200, 0, nil)
	m.SetTasksTotal("TODO", 1)
	m.RecordEventPublished("TASK", "CREATED")
	m.RecordJobRun("attachment_cleanup", nil)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected metrics to be registered")
	}
	for _, mf := range families {
		if mf.GetHelp() == "" {
			t.Errorf("Metric '%s' has an empty help description", mf.GetName())
		}
		if len(mf.GetName()) <= len(namespace) || mf.GetName()[:len(namespace)] != namespace {
			t.Errorf("Metric '%s' is missing the %s namespace", mf.GetName(), namespace)
		}
	}
}

func TestRealtimeMetrics(t *testing.T) {
	m := getTestMetrics()

	m.SetWSConnections(3)
	if v := getGaugeValue(t, m.WSConnectionsActive); v != 3 {
		t.Errorf("Expected 3 connections, got %f", v)
	}

	m.RecordEventPublished("TASK", "UPDATED")
	m.RecordEventPublished("TASK", "UPDATED")
	if v := getCounterValue(t, m.EventsPublishedTotal.WithLabelValues("TASK", "UPDATED")); v != 2 {
		t.Errorf("Expected 2 events, got %f", v)
	}

	m.IncrementEventsDropped()
	if v := getCounterValue(t, m.EventsDroppedTotal); v != 1 {
		t.Errorf("Expected 1 dropped event, got %f", v)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordEventPublished("TASK", "CREATED")
	m.SetWSConnections(1)
	m.RecordHTTPRequest("GET", "/", "", 200, 0)
}

// Helper function to get counter value
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("Failed to write counter metric: %v", err)
	}
	return metric.Counter.GetValue()
}

// Helper function to get gauge value
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := gauge.Write(metric); err != nil {
		t.Fatalf("Failed to write gauge metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestShouldSkipEndpoint(t *testing.T) {
	tests := map[string]bool{
		"/metrics":            true,
		"/health":             true,
		"/api/tracker/ready":  true,
		"/api/ws":             true,
		"/api/projects":       false,
		"/api/tasks/1/status": false,
	}
	for path, want := range tests {
		if got := ShouldSkipEndpoint(path); got != want {
			t.Errorf("ShouldSkipEndpoint(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestUpdateDBStats_CountsGrowthOnly(t *testing.T) {
	m := getTestMetrics()

	for i := 0; i < 3; i++ {
		m.UpdateDBStats(sql.DBStats{WaitCount: 5, WaitDuration: 2 * time.Second})
	}
	if v := getCounterValue(t, m.DBConnectionWaitTotal); v != 5 {
		t.Errorf("wait total after repeated snapshot = %v, want 5", v)
	}
	if v := getCounterValue(t, m.DBConnectionWaitDuration); v != 2 {
		t.Errorf("wait duration after repeated snapshot = %v, want 2", v)
	}

	m.UpdateDBStats(sql.DBStats{WaitCount: 8, WaitDuration: 3 * time.Second})
	if v := getCounterValue(t, m.DBConnectionWaitTotal); v != 8 {
		t.Errorf("wait total after growth = %v, want 8", v)
	}

	// a reopened pool restarts its counters
	m.UpdateDBStats(sql.DBStats{WaitCount: 2, WaitDuration: time.Second})
	if v := getCounterValue(t, m.DBConnectionWaitTotal); v != 10 {
		t.Errorf("wait total after reset = %v, want 10", v)
	}
	if v := getGaugeValue(t, m.DBConnectionsOpen); v != 0 {
		t.Errorf("open connections = %v, want 0", v)
	}
}

func TestRecordHTTPRequest_Labels(t *testing.T) {
	m := getTestMetrics()

	m.RecordHTTPRequest("GET", "/api/tasks/:id", "TASK", 200, time.Millisecond)
	m.RecordHTTPRequest("GET", "", "", 404, time.Millisecond)
	m.RecordHTTPRequest("PATCH", "/api/tasks/:id/status", "TASK", 503, time.Millisecond)

	if v := getCounterValue(t, m.HTTPRequestsTotal.WithLabelValues("GET", "/api/tasks/:id", "TASK", "2xx")); v != 1 {
		t.Errorf("matched route count = %v, want 1", v)
	}
	if v := getCounterValue(t, m.HTTPRequestsTotal.WithLabelValues("GET", UnmatchedRoute, NoKind, "4xx")); v != 1 {
		t.Errorf("unmatched route count = %v, want 1", v)
	}
	if v := getCounterValue(t, m.HTTPRequestsTotal.WithLabelValues("PATCH", "/api/tasks/:id/status", "TASK", "5xx")); v != 1 {
		t.Errorf("status route count = %v, want 1", v)
	}
}
