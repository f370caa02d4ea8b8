package router

import (
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/handler"
)

// Handlers holds every API handler the routes are bound to
type Handlers struct {
	PurchaseOrders *handler.PurchaseOrderHandler
	Invoices       *handler.InvoiceHandler
	Matching       *handler.MatchingHandler
	Documents      *handler.DocumentHandler
	Connectors     *handler.ConnectorHandler
}

// RegisterAll adds one domain group per area to the router
func (r *Router) RegisterAll(h Handlers) *Router {
	return r.
		Register(ProcurementRoutes(h.PurchaseOrders, h.Invoices)).
		Register(MatchingRoutes(h.Matching)).
		Register(DocumentRoutes(h.Documents)).
		Register(ConnectorRoutes(h.Connectors))
}

// ProcurementRoutes mounts purchase orders and invoices under /procurement
func ProcurementRoutes(pos *handler.PurchaseOrderHandler, invs *handler.InvoiceHandler) *DomainGroup {
	g := NewDomainGroup("procurement", "/procurement")

	g.Group("purchase-orders", "/purchase-orders").
		POST("", pos.Create).
		GET("", pos.List).
		GET("/:id", pos.GetByID).
		POST("/:id/close", pos.Close).
		DELETE("/:id", pos.Delete)

	g.Group("invoices", "/invoices").
		POST("", invs.Create).
		GET("", invs.List).
		GET("/:id", invs.GetByID).
		DELETE("/:id", invs.Delete)

	return g
}

// MatchingRoutes mounts comparison, ranking and review under /matching
func MatchingRoutes(h *handler.MatchingHandler) *DomainGroup {
	g := NewDomainGroup("matching", "/matching").
		POST("/compare", h.Compare).
		GET("/invoices/:id/candidates", h.Candidates).
		POST("/auto-match", h.AutoMatch)

	g.Group("comparisons", "/comparisons").
		GET("", h.ListComparisons).
		GET("/:id", h.GetComparison).
		POST("/:id/approve", h.Approve).
		POST("/:id/reject", h.Reject)

	return g
}

// DocumentRoutes mounts the document pipeline under /documents
func DocumentRoutes(h *handler.DocumentHandler) *DomainGroup {
	g := NewDomainGroup("documents", "/documents").
		POST("", h.Upload).
		GET("/:id", h.Get).
		POST("/:id/extract", h.Extract).
		POST("/:id/import", h.Import).
		GET("/:id/download-url", h.DownloadURL)

	g.Group("sources", "/sources").
		GET("", h.ListSources).
		GET("/:id", h.GetSource).
		DELETE("/:id", h.DeleteSource).
		POST("/:id/compare", h.CompareSource)

	return g
}

// ConnectorRoutes mounts the OAuth connector flow under /connectors
func ConnectorRoutes(h *handler.ConnectorHandler) *DomainGroup {
	return NewDomainGroup("connectors", "/connectors").
		GET("", h.List).
		GET("/:provider/authorize", h.Authorize).
		POST("/oauth/exchange", h.Exchange).
		DELETE("/:id", h.Disconnect)
}
