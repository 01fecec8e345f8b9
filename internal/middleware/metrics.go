package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/metrics"
)

// Metrics records every API request under its matched route pattern and the
// entity kind the route serves. Probe, scrape and websocket routes are skipped.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		m.RecordHTTPRequest(c.Request.Method, route, routeKind(route), c.Writer.Status(), time.Since(start))
	}
}

// routeKind returns the kind of the first collection segment in a route
// pattern, or "" when the route serves no entity kind
func routeKind(route string) string {
	for _, segment := range strings.Split(route, "/") {
		if kind, ok := domain.KindFromPlural(segment); ok {
			return string(kind)
		}
	}
	return ""
}
