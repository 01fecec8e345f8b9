package metrics

import (
	"path"
	"time"
)

// Label values for requests that do not map onto a route or a resource kind
const (
	UnmatchedRoute = "unmatched"
	NoKind         = "none"
)

// RecordHTTPRequest counts one request by route pattern, resource kind and
// status class, and observes its latency per kind
func (m *Metrics) RecordHTTPRequest(method, route, kind string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		if route == "" {
			route = UnmatchedRoute
		}
		if kind == "" {
			kind = NoKind
		}
		m.HTTPRequestsTotal.WithLabelValues(method, route, kind, statusClass(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, kind).Observe(duration.Seconds())
	})
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return string(rune('0'+code/100)) + "xx"
}

// ShouldSkipEndpoint reports whether a probe, scrape or websocket route is
// being served, under the root or any base path.
func ShouldSkipEndpoint(p string) bool {
	switch path.Base(p) {
	case "metrics", "health", "ready", "ws":
		return true
	}
	return false
}
