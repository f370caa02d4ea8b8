package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	matchingapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/matching"
)

// MatchingHandler handles comparison and review endpoints
type MatchingHandler struct {
	BaseHandler
	service *matchingapp.Service
}

// NewMatchingHandler creates a new MatchingHandler
func NewMatchingHandler(service *matchingapp.Service) *MatchingHandler {
	return &MatchingHandler{service: service}
}

// Compare godoc
// @Summary      Compare a purchase order with an invoice
// @Description  Scores the pair, stores the result and returns it
// @Tags         matching
// @Accept       json
// @Produce      json
// @Param        request body matchingapp.CompareRequest true "Pair to compare"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /matching/compare [post]
func (h *MatchingHandler) Compare(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req matchingapp.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Compare(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Candidates godoc
// @Summary      Rank purchase orders for an invoice
// @Tags         matching
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        limit query int false "Number of candidates"
// @Success      200 {object} dto.Response
// @Router       /matching/invoices/{id}/candidates [get]
func (h *MatchingHandler) Candidates(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	invoiceID, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}
	// 0 lets the service apply the configured candidate limit
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		h.BadRequest(c, "limit must be a positive integer")
		return
	}

	candidates, err := h.service.FindCandidates(c.Request.Context(), userID, invoiceID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, candidates)
}

// AutoMatch godoc
// @Summary      Run the workflow engine
// @Description  Compares every unmatched invoice with its best candidate
// @Tags         matching
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /matching/auto-match [post]
func (h *MatchingHandler) AutoMatch(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	summary, err := h.service.AutoMatch(c.Request.Context(), userID, matchingapp.TriggerManual)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListComparisons godoc
// @Summary      List stored comparisons
// @Tags         matching
// @Produce      json
// @Param        status query string false "Comparison status"
// @Param        pending query bool false "Only results awaiting review"
// @Param        purchase_order_id query string false "Purchase order ID" format(uuid)
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        min_score query int false "Minimum confidence score"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Router       /matching/comparisons [get]
func (h *MatchingHandler) ListComparisons(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var filter matchingapp.ComparisonListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	var err error
	if filter.PurchaseOrderID, err = parseOptionalID(c, "purchase_order_id"); err != nil {
		h.BadRequest(c, "Invalid purchase_order_id format")
		return
	}
	if filter.InvoiceID, err = parseOptionalID(c, "invoice_id"); err != nil {
		h.BadRequest(c, "Invalid invoice_id format")
		return
	}

	results, total, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// GetComparison godoc
// @Summary      Get a stored comparison
// @Tags         matching
// @Produce      json
// @Param        id path string true "Comparison ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /matching/comparisons/{id} [get]
func (h *MatchingHandler) GetComparison(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid comparison ID format")
		return
	}

	result, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Approve godoc
// @Summary      Approve a comparison
// @Description  Reviewer defaults to the caller when omitted
// @Tags         matching
// @Accept       json
// @Produce      json
// @Param        id path string true "Comparison ID" format(uuid)
// @Param        request body matchingapp.ReviewRequest false "Review decision"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /matching/comparisons/{id}/approve [post]
func (h *MatchingHandler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

// Reject godoc
// @Summary      Reject a comparison
// @Tags         matching
// @Accept       json
// @Produce      json
// @Param        id path string true "Comparison ID" format(uuid)
// @Param        request body matchingapp.ReviewRequest false "Review decision"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /matching/comparisons/{id}/reject [post]
func (h *MatchingHandler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

type reviewFunc func(ctx context.Context, userID, id uuid.UUID, req matchingapp.ReviewRequest) (*matchingapp.ComparisonResponse, error)

func (h *MatchingHandler) review(c *gin.Context, decide reviewFunc) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid comparison ID format")
		return
	}

	var req matchingapp.ReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	req.Reviewer = reviewerFor(c, req.Reviewer)

	result, err := decide(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
