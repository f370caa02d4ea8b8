package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels CPU samples taken while a request runs with its method,
// route pattern and API area, so profiles can be split per endpoint
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		labels := pyroscope.Labels(
			"method", c.Request.Method,
			"route", route,
			"area", areaFromRoute(route),
		)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// areaFromRoute returns the first segment after the API version,
// e.g. /api/v1/matching/comparisons/:id gives matching
func areaFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for _, p := range parts {
		if p == "api" || (len(p) > 1 && p[0] == 'v' && strings.Trim(p[1:], "0123456789") == "") {
			continue
		}
		if strings.HasPrefix(p, ":") {
			return ""
		}
		return p
	}
	return ""
}
