package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestDomainGroup(t *testing.T) {
	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test").
			GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			POST("/items", func(c *gin.Context) { c.String(http.StatusCreated, "created") }).
			DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method string
			path   string
			want   int
		}{
			{http.MethodGet, "/api/v1/test/items", http.StatusOK},
			{http.MethodPost, "/api/v1/test/items", http.StatusCreated},
			{http.MethodDelete, "/api/v1/test/items/42", http.StatusNoContent},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("group middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("matching", "/matching").Use(func(c *gin.Context) {
			c.Header("X-Group", "matching")
			c.Next()
		})
		g.Group("comparisons", "/comparisons").GET("", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/matching/comparisons", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "matching", w.Header().Get("X-Group"))
		assert.Equal(t, "matching", g.Name())
		assert.Equal(t, "/matching", g.Prefix())
	})
}

func TestRouterMiddlewareScopedToAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "up") })

	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	NewRouter(engine, WithMiddleware(deny)).
		Register(NewDomainGroup("test", "/test").GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })).
		Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAll(t *testing.T) {
	engine := gin.New()
	// handler method values on nil receivers are never called here
	NewRouter(engine).RegisterAll(Handlers{}).Setup()

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		"POST /api/v1/procurement/purchase-orders",
		"GET /api/v1/procurement/purchase-orders",
		"GET /api/v1/procurement/purchase-orders/:id",
		"POST /api/v1/procurement/purchase-orders/:id/close",
		"DELETE /api/v1/procurement/purchase-orders/:id",
		"POST /api/v1/procurement/invoices",
		"GET /api/v1/procurement/invoices",
		"GET /api/v1/procurement/invoices/:id",
		"DELETE /api/v1/procurement/invoices/:id",
		"POST /api/v1/matching/compare",
		"GET /api/v1/matching/invoices/:id/candidates",
		"POST /api/v1/matching/auto-match",
		"GET /api/v1/matching/comparisons",
		"GET /api/v1/matching/comparisons/:id",
		"POST /api/v1/matching/comparisons/:id/approve",
		"POST /api/v1/matching/comparisons/:id/reject",
		"POST /api/v1/documents",
		"GET /api/v1/documents/:id",
		"POST /api/v1/documents/:id/extract",
		"POST /api/v1/documents/:id/import",
		"GET /api/v1/documents/:id/download-url",
		"GET /api/v1/documents/sources",
		"GET /api/v1/documents/sources/:id",
		"DELETE /api/v1/documents/sources/:id",
		"POST /api/v1/documents/sources/:id/compare",
		"GET /api/v1/connectors",
		"GET /api/v1/connectors/:provider/authorize",
		"POST /api/v1/connectors/oauth/exchange",
		"DELETE /api/v1/connectors/:id",
	}
	for _, route := range want {
		assert.True(t, registered[route], "missing route %s", route)
	}
	require.Len(t, engine.Routes(), len(want))
}
