package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/application/extraction"
	matchingapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/matching"
	procurementapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence/models"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/storage"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/dto"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// stubExtractor returns a fixed extraction for every document
type stubExtractor struct {
	result *document.Extraction
	err    error
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte, _ string, docType document.Type) (*document.Extraction, error) {
	if s.err != nil {
		return nil, s.err
	}
	e := *s.result
	if e.DocumentType == "" {
		e.DocumentType = docType
	}
	return &e, nil
}

// testAPI wires the handlers over SQLite repositories and an in-memory store
type testAPI struct {
	engine    *gin.Engine
	userID    uuid.UUID
	store     *storage.MemoryDocumentStore
	extractor *stubExtractor
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := setupTestDB(t)

	poRepo := persistence.NewGormPurchaseOrderRepository(db)
	invRepo := persistence.NewGormInvoiceRepository(db)
	matcher := matching.NewMatcher(matching.DefaultComparisonConfig())

	api := &testAPI{
		engine:    gin.New(),
		userID:    uuid.New(),
		store:     storage.NewMemoryDocumentStore(),
		extractor: &stubExtractor{result: &document.Extraction{}},
	}

	poHandler := NewPurchaseOrderHandler(procurementapp.NewPurchaseOrderService(poRepo))
	invHandler := NewInvoiceHandler(procurementapp.NewInvoiceService(invRepo))
	matchHandler := NewMatchingHandler(matchingapp.NewService(poRepo, invRepo, persistence.NewGormComparisonRepository(db), matcher))
	docService := extraction.NewService(extraction.Repositories{
		Sources:        persistence.NewGormSourceDocumentRepository(db),
		Targets:        persistence.NewGormTargetDocumentRepository(db),
		Tables:         persistence.NewGormExtractedTableRepository(db),
		PurchaseOrders: poRepo,
		Invoices:       invRepo,
	}, api.store, api.extractor, matcher, extraction.Config{MaxUploadSize: 1 << 20})
	docHandler := NewDocumentHandler(docService, 1<<20)

	api.engine.Use(middleware.RequestID(), func(c *gin.Context) {
		if id := c.GetHeader(middleware.UserIDHeader); id != "" {
			c.Set(middleware.JWTUserIDKey, id)
		}
		c.Next()
	})
	v1 := api.engine.Group("/api/v1")
	v1.POST("/procurement/purchase-orders", poHandler.Create)
	v1.GET("/procurement/purchase-orders", poHandler.List)
	v1.GET("/procurement/purchase-orders/:id", poHandler.GetByID)
	v1.POST("/procurement/purchase-orders/:id/close", poHandler.Close)
	v1.DELETE("/procurement/purchase-orders/:id", poHandler.Delete)
	v1.POST("/procurement/invoices", invHandler.Create)
	v1.GET("/procurement/invoices", invHandler.List)
	v1.GET("/procurement/invoices/:id", invHandler.GetByID)
	v1.DELETE("/procurement/invoices/:id", invHandler.Delete)
	v1.POST("/matching/compare", matchHandler.Compare)
	v1.GET("/matching/invoices/:id/candidates", matchHandler.Candidates)
	v1.POST("/matching/auto-match", matchHandler.AutoMatch)
	v1.GET("/matching/comparisons", matchHandler.ListComparisons)
	v1.GET("/matching/comparisons/:id", matchHandler.GetComparison)
	v1.POST("/matching/comparisons/:id/approve", matchHandler.Approve)
	v1.POST("/matching/comparisons/:id/reject", matchHandler.Reject)
	v1.POST("/documents", docHandler.Upload)
	v1.GET("/documents/sources", docHandler.ListSources)
	v1.GET("/documents/sources/:id", docHandler.GetSource)
	v1.DELETE("/documents/sources/:id", docHandler.DeleteSource)
	v1.POST("/documents/sources/:id/compare", docHandler.CompareSource)
	v1.GET("/documents/:id", docHandler.Get)
	v1.POST("/documents/:id/extract", docHandler.Extract)
	v1.POST("/documents/:id/import", docHandler.Import)
	v1.GET("/documents/:id/download-url", docHandler.DownloadURL)
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req)
}

func (a *testAPI) send(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(middleware.UserIDHeader, a.userID.String())
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// envelope decodes the response and its data into out when out is non-nil
func envelope(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// serveAnonymous sends a request without any user identity
func serveAnonymous(a *testAPI, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}
