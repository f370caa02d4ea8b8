package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// Result is a stored PO/invoice comparison in compare_po_invoice_table
type Result struct {
	shared.OwnedAggregate
	PurchaseOrderID uuid.UUID
	InvoiceID       uuid.UUID
	PONumber        string
	InvoiceNumber   string
	Scores          FieldScores
	Score           int
	Status          Status
	Discrepancies   []Discrepancy
	ReviewedBy      string
	ReviewComment   string
	ReviewedAt      *time.Time
}

// NewResult records the outcome of comparing one purchase order with one invoice
func NewResult(userID, poID, invoiceID uuid.UUID, cmp Comparison, score int, status Status) (*Result, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if poID == uuid.Nil || invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAIR", "Both purchase order and invoice are required")
	}
	if score < 0 || score > 100 {
		return nil, shared.NewDomainError("INVALID_SCORE", "Score must be between 0 and 100")
	}
	if !status.IsValid() || status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Cannot create a comparison in status %s", status))
	}
	discrepancies := cmp.Discrepancies
	if discrepancies == nil {
		discrepancies = make([]Discrepancy, 0)
	}
	return &Result{
		OwnedAggregate:  shared.NewOwnedAggregate(userID),
		PurchaseOrderID: poID,
		InvoiceID:       invoiceID,
		Scores:          cmp.Scores,
		Score:           score,
		Status:          status,
		Discrepancies:   discrepancies,
	}, nil
}

// Refresh overwrites the scores of an undecided comparison after a re-run
func (r *Result) Refresh(cmp Comparison, score int, status Status) error {
	if r.Status.IsTerminal() {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("Comparison was already %s", r.Status))
	}
	r.Scores = cmp.Scores
	r.Score = score
	r.Status = status
	r.Discrepancies = cmp.Discrepancies
	if r.Discrepancies == nil {
		r.Discrepancies = make([]Discrepancy, 0)
	}
	r.IncrementVersion()
	r.Touch()
	return nil
}

// Approve records a reviewer's approval
func (r *Result) Approve(reviewer, comment string) error {
	return r.decide(StatusApproved, reviewer, comment)
}

// Reject records a reviewer's rejection
func (r *Result) Reject(reviewer, comment string) error {
	return r.decide(StatusRejected, reviewer, comment)
}

func (r *Result) decide(target Status, reviewer, comment string) error {
	if reviewer == "" {
		return shared.NewDomainError("REVIEWER_REQUIRED", "Reviewer cannot be empty")
	}
	if !r.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot move comparison from %s to %s", r.Status, target))
	}
	now := time.Now()
	r.Status = target
	r.ReviewedBy = reviewer
	r.ReviewComment = comment
	r.ReviewedAt = &now
	r.IncrementVersion()
	r.Touch()
	return nil
}
