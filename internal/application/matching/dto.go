package matching

import (
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/shopspring/decimal"
)

// CompareRequest represents a request to compare one purchase order with one invoice
type CompareRequest struct {
	PurchaseOrderID uuid.UUID `json:"purchase_order_id" binding:"required"`
	InvoiceID       uuid.UUID `json:"invoice_id" binding:"required"`
}

// ReviewRequest represents an approve or reject decision
type ReviewRequest struct {
	Reviewer string `json:"reviewer" binding:"max=200"`
	Comment  string `json:"comment" binding:"max=2000"`
}

// ComparisonListFilter represents filter options for the comparison list.
// The id filters are parsed by the HTTP layer.
type ComparisonListFilter struct {
	Search          string     `form:"search"`
	Status          string     `form:"status" binding:"omitempty,oneof=AUTO_APPROVED NEEDS_REVIEW MISMATCHED APPROVED REJECTED"`
	Pending         bool       `form:"pending"`
	PurchaseOrderID *uuid.UUID `form:"-"`
	InvoiceID       *uuid.UUID `form:"-"`
	MinScore        *int       `form:"min_score" binding:"omitempty,min=0,max=100"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string     `form:"order_by"`
	OrderDir        string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ComparisonResponse represents a stored comparison in API responses
type ComparisonResponse struct {
	ID              uuid.UUID              `json:"id"`
	PurchaseOrderID uuid.UUID              `json:"purchase_order_id"`
	InvoiceID       uuid.UUID              `json:"invoice_id"`
	PONumber        string                 `json:"po_number"`
	InvoiceNumber   string                 `json:"invoice_number"`
	Scores          matching.FieldScores   `json:"scores"`
	Score           int                    `json:"confidence_score"`
	Status          string                 `json:"status"`
	Discrepancies   []matching.Discrepancy `json:"discrepancies"`
	ReviewedBy      string                 `json:"reviewed_by,omitempty"`
	ReviewComment   string                 `json:"review_comment,omitempty"`
	ReviewedAt      *time.Time             `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Version         int                    `json:"version"`
}

// CandidateResponse represents a ranked purchase order for an invoice
type CandidateResponse struct {
	PurchaseOrderID uuid.UUID              `json:"purchase_order_id"`
	PONumber        string                 `json:"po_number"`
	VendorName      string                 `json:"vendor_name"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	Score           int                    `json:"confidence_score"`
	Status          string                 `json:"status"`
	Scores          matching.FieldScores   `json:"scores"`
	Discrepancies   []matching.Discrepancy `json:"discrepancies"`
}

// CandidatesResponse lists the best purchase orders for an invoice
type CandidatesResponse struct {
	InvoiceID     uuid.UUID           `json:"invoice_id"`
	InvoiceNumber string              `json:"invoice_number"`
	Candidates    []CandidateResponse `json:"candidates"`
}

// AutoMatchFailure describes an invoice the workflow engine could not process
type AutoMatchFailure struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Error         string    `json:"error"`
}

// AutoMatchSummary is the outcome of one workflow engine run
type AutoMatchSummary struct {
	Processed    int                `json:"processed"`
	AutoApproved int                `json:"auto_approved"`
	NeedsReview  int                `json:"needs_review"`
	Mismatched   int                `json:"mismatched"`
	NoCandidate  int                `json:"no_candidate"`
	Failed       int                `json:"failed"`
	Failures     []AutoMatchFailure `json:"failures,omitempty"`
	Duration     string             `json:"duration"`
}

// ToComparisonResponse converts a domain Result to ComparisonResponse
func ToComparisonResponse(r *matching.Result) ComparisonResponse {
	discrepancies := r.Discrepancies
	if discrepancies == nil {
		discrepancies = make([]matching.Discrepancy, 0)
	}
	return ComparisonResponse{
		ID:              r.ID,
		PurchaseOrderID: r.PurchaseOrderID,
		InvoiceID:       r.InvoiceID,
		PONumber:        r.PONumber,
		InvoiceNumber:   r.InvoiceNumber,
		Scores:          r.Scores,
		Score:           r.Score,
		Status:          r.Status.String(),
		Discrepancies:   discrepancies,
		ReviewedBy:      r.ReviewedBy,
		ReviewComment:   r.ReviewComment,
		ReviewedAt:      r.ReviewedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Version:         r.Version,
	}
}
