package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// candidatePoolSize bounds how many recent purchase orders join the
// number and vendor lookups when ranking candidates
const candidatePoolSize = shared.MaxPageSize

// Trigger names used in auto-match metrics
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// Service runs comparisons between purchase orders and invoices and drives
// the review workflow
type Service struct {
	purchaseOrders procurement.PurchaseOrderRepository
	invoices       procurement.InvoiceRepository
	results        matching.ResultRepository
	matcher        *matching.Matcher
	metrics        *telemetry.MatchingMetrics
	logger         *zap.Logger
	batchSize      int
}

// NewService creates a new matching Service
func NewService(
	purchaseOrders procurement.PurchaseOrderRepository,
	invoices procurement.InvoiceRepository,
	results matching.ResultRepository,
	matcher *matching.Matcher,
) *Service {
	return &Service{
		purchaseOrders: purchaseOrders,
		invoices:       invoices,
		results:        results,
		matcher:        matcher,
		logger:         zap.NewNop(),
	}
}

// SetMetrics sets the metrics recorder
func (s *Service) SetMetrics(m *telemetry.MatchingMetrics) {
	s.metrics = m
}

// SetLogger sets the service logger
func (s *Service) SetLogger(logger *zap.Logger) {
	s.logger = logger.Named("matching")
}

// SetBatchSize caps how many invoices one AutoMatch run stores or fails.
// Zero means no cap.
func (s *Service) SetBatchSize(n int) {
	s.batchSize = max(n, 0)
}

// Compare scores one purchase order against one invoice and stores the result.
// Comparing the same pair again refreshes the stored row.
func (s *Service) Compare(ctx context.Context, userID uuid.UUID, req CompareRequest) (*ComparisonResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "compare",
		attribute.String("purchase_order_id", req.PurchaseOrderID.String()),
		attribute.String("invoice_id", req.InvoiceID.String()))
	defer span.End()

	po, err := s.purchaseOrders.FindByIDForUser(ctx, userID, req.PurchaseOrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, notFoundAs(err, "Purchase order not found")
	}
	inv, err := s.invoices.FindByIDForUser(ctx, userID, req.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, notFoundAs(err, "Invoice not found")
	}

	candidate := s.matcher.Match(matching.RecordFromPurchaseOrder(po), matching.RecordFromInvoice(inv))
	result, err := s.store(ctx, userID, po, inv, candidate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("confidence_score", result.Score), attribute.String("status", result.Status.String()))
	telemetry.SetOK(span)

	resp := ToComparisonResponse(result)
	return &resp, nil
}

// FindCandidates ranks the user's purchase orders against an invoice and
// returns at most limit of them, best first
func (s *Service) FindCandidates(ctx context.Context, userID, invoiceID uuid.UUID, limit int) (*CandidatesResponse, error) {
	inv, err := s.invoices.FindByIDForUser(ctx, userID, invoiceID)
	if err != nil {
		return nil, notFoundAs(err, "Invoice not found")
	}
	if limit <= 0 {
		limit = s.matcher.Config().CandidateLimit
	}

	ranked, byID, err := s.rank(ctx, userID, inv, limit)
	if err != nil {
		return nil, err
	}

	resp := &CandidatesResponse{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Candidates:    make([]CandidateResponse, 0, len(ranked)),
	}
	for _, c := range ranked {
		po := byID[c.Record.ID]
		discrepancies := c.Comparison.Discrepancies
		if discrepancies == nil {
			discrepancies = make([]matching.Discrepancy, 0)
		}
		resp.Candidates = append(resp.Candidates, CandidateResponse{
			PurchaseOrderID: po.ID,
			PONumber:        po.PONumber,
			VendorName:      po.VendorName,
			TotalAmount:     po.TotalAmount,
			Score:           c.Score,
			Status:          c.Status.String(),
			Scores:          c.Comparison.Scores,
			Discrepancies:   discrepancies,
		})
	}
	return resp, nil
}

// AutoMatch pairs every invoice without a stored comparison with its best
// purchase order. Invoices are processed one at a time and a failing
// invoice is counted without stopping the run. The batch size caps stored
// and failed invoices; invoices without a candidate are passed over so they
// cannot starve newer ones.
func (s *Service) AutoMatch(ctx context.Context, userID uuid.UUID, trigger string) (*AutoMatchSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "auto_match",
		attribute.String("user_id", userID.String()),
		attribute.String("trigger", trigger))
	defer span.End()
	start := time.Now()

	summary := &AutoMatchSummary{}
	var cursor *procurement.InvoiceCursor
	for {
		page, err := s.invoices.FindUnmatched(ctx, userID, cursor, s.batchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("load unmatched invoices: %w", err)
		}
		for i := range page {
			if err := ctx.Err(); err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
			s.autoMatchOne(ctx, userID, &page[i], summary)
			if s.batchFull(summary) {
				break
			}
		}
		if s.batchSize == 0 || len(page) < s.batchSize || s.batchFull(summary) {
			break
		}
		cursor = procurement.CursorOf(&page[len(page)-1])
	}
	summary.Duration = time.Since(start).Round(time.Millisecond).String()

	s.metrics.RecordAutoMatchRun(ctx, trigger, summary.Failed)
	s.logger.Info("Auto-match finished",
		zap.String("user_id", userID.String()),
		zap.String("trigger", trigger),
		zap.Int("processed", summary.Processed),
		zap.Int("auto_approved", summary.AutoApproved),
		zap.Int("needs_review", summary.NeedsReview),
		zap.Int("mismatched", summary.Mismatched),
		zap.Int("no_candidate", summary.NoCandidate),
		zap.Int("failed", summary.Failed))
	span.SetAttributes(attribute.Int("processed", summary.Processed), attribute.Int("failed", summary.Failed))
	telemetry.SetOK(span)
	return summary, nil
}

func (s *Service) batchFull(summary *AutoMatchSummary) bool {
	return s.batchSize > 0 && summary.Processed-summary.NoCandidate >= s.batchSize
}

func (s *Service) autoMatchOne(ctx context.Context, userID uuid.UUID, inv *procurement.Invoice, summary *AutoMatchSummary) {
	summary.Processed++
	status, err := s.autoMatchInvoice(ctx, userID, inv)
	if err != nil {
		summary.Failed++
		summary.Failures = append(summary.Failures, AutoMatchFailure{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Error:         err.Error(),
		})
		s.logger.Warn("Auto-match failed for invoice",
			zap.String("user_id", userID.String()),
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return
	}
	switch status {
	case matching.StatusAutoApproved:
		summary.AutoApproved++
	case matching.StatusNeedsReview:
		summary.NeedsReview++
	case matching.StatusMismatched:
		summary.Mismatched++
	default:
		summary.NoCandidate++
	}
}

// autoMatchInvoice stores the best candidate for one invoice. An empty status
// means the user has no purchase orders to compare against.
func (s *Service) autoMatchInvoice(ctx context.Context, userID uuid.UUID, inv *procurement.Invoice) (matching.Status, error) {
	ranked, byID, err := s.rank(ctx, userID, inv, 1)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return "", nil
	}
	best := ranked[0]
	result, err := s.store(ctx, userID, byID[best.Record.ID], inv, best)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

// Approve records a reviewer's approval of a comparison
func (s *Service) Approve(ctx context.Context, userID, comparisonID uuid.UUID, req ReviewRequest) (*ComparisonResponse, error) {
	return s.review(ctx, userID, comparisonID, req, (*matching.Result).Approve)
}

// Reject records a reviewer's rejection of a comparison
func (s *Service) Reject(ctx context.Context, userID, comparisonID uuid.UUID, req ReviewRequest) (*ComparisonResponse, error) {
	return s.review(ctx, userID, comparisonID, req, (*matching.Result).Reject)
}

func (s *Service) review(ctx context.Context, userID, comparisonID uuid.UUID, req ReviewRequest, decide func(*matching.Result, string, string) error) (*ComparisonResponse, error) {
	result, err := s.results.FindByIDForUser(ctx, userID, comparisonID)
	if err != nil {
		return nil, notFoundAs(err, "Comparison not found")
	}
	if err := decide(result, req.Reviewer, req.Comment); err != nil {
		return nil, err
	}
	if err := s.results.Save(ctx, result); err != nil {
		return nil, err
	}
	s.metrics.RecordReviewDecision(ctx, result.Status.String())
	s.logger.Info("Comparison reviewed",
		zap.String("comparison_id", result.ID.String()),
		zap.String("status", result.Status.String()),
		zap.String("reviewer", result.ReviewedBy))

	resp := ToComparisonResponse(result)
	return &resp, nil
}

// Get retrieves a stored comparison
func (s *Service) Get(ctx context.Context, userID, comparisonID uuid.UUID) (*ComparisonResponse, error) {
	result, err := s.results.FindByIDForUser(ctx, userID, comparisonID)
	if err != nil {
		return nil, notFoundAs(err, "Comparison not found")
	}
	resp := ToComparisonResponse(result)
	return &resp, nil
}

// List retrieves a page of stored comparisons
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ComparisonListFilter) ([]ComparisonResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}.Normalize()

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Pending {
		domainFilter.Filters["statuses"] = []string{
			matching.StatusNeedsReview.String(),
			matching.StatusMismatched.String(),
		}
	}
	if filter.PurchaseOrderID != nil {
		domainFilter.Filters["purchase_order_id"] = *filter.PurchaseOrderID
	}
	if filter.InvoiceID != nil {
		domainFilter.Filters["invoice_id"] = *filter.InvoiceID
	}
	if filter.MinScore != nil {
		domainFilter.Filters["min_score"] = fmt.Sprintf("%d", *filter.MinScore)
	}

	results, err := s.results.FindAllForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.results.CountForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ComparisonResponse, len(results))
	for i := range results {
		responses[i] = ToComparisonResponse(&results[i])
	}
	return responses, total, nil
}

// store creates or refreshes the comparison row of a scored pair
func (s *Service) store(ctx context.Context, userID uuid.UUID, po *procurement.PurchaseOrder, inv *procurement.Invoice, c matching.Candidate) (*matching.Result, error) {
	result, err := s.results.FindByPair(ctx, userID, po.ID, inv.ID)
	switch {
	case err == nil:
		if err := result.Refresh(c.Comparison, c.Score, c.Status); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		result, err = matching.NewResult(userID, po.ID, inv.ID, c.Comparison, c.Score, c.Status)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	result.PONumber = po.PONumber
	result.InvoiceNumber = inv.InvoiceNumber

	if err := s.results.Save(ctx, result); err != nil {
		return nil, err
	}
	s.metrics.RecordComparison(ctx, result.Status.String(), result.Score)
	s.logger.Debug("Comparison stored",
		zap.String("user_id", userID.String()),
		zap.String("po_number", po.PONumber),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("confidence_score", result.Score),
		zap.String("status", result.Status.String()))
	return result, nil
}

// rank loads the candidate pool for an invoice and scores it
func (s *Service) rank(ctx context.Context, userID uuid.UUID, inv *procurement.Invoice, limit int) ([]matching.Candidate, map[uuid.UUID]*procurement.PurchaseOrder, error) {
	pool, err := s.candidatePool(ctx, userID, inv)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]*procurement.PurchaseOrder, len(pool))
	records := make([]matching.Record, 0, len(pool))
	for _, po := range pool {
		byID[po.ID] = po
		records = append(records, matching.RecordFromPurchaseOrder(po))
	}
	return s.matcher.Rank(matching.RecordFromInvoice(inv), records, limit), byID, nil
}

// candidatePool gathers the PO with the referenced number, POs of the same
// vendor and the most recent open POs, without duplicates
func (s *Service) candidatePool(ctx context.Context, userID uuid.UUID, inv *procurement.Invoice) ([]*procurement.PurchaseOrder, error) {
	seen := make(map[uuid.UUID]bool)
	pool := make([]*procurement.PurchaseOrder, 0)
	add := func(po *procurement.PurchaseOrder) {
		if !seen[po.ID] {
			seen[po.ID] = true
			pool = append(pool, po)
		}
	}

	if inv.HasPOReference() {
		po, err := s.purchaseOrders.FindByPONumber(ctx, userID, inv.PONumber)
		switch {
		case err == nil:
			add(po)
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("find purchase order %s: %w", inv.PONumber, err)
		}
	}
	if inv.VendorName != "" {
		byVendor, err := s.purchaseOrders.FindByVendor(ctx, userID, inv.VendorName)
		if err != nil {
			return nil, fmt.Errorf("find purchase orders by vendor: %w", err)
		}
		for i := range byVendor {
			add(&byVendor[i])
		}
	}

	recent, err := s.purchaseOrders.FindAllForUser(ctx, userID, shared.Filter{
		Page:     1,
		PageSize: candidatePoolSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]any{"status": string(procurement.PurchaseOrderStatusOpen)},
	})
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	for i := range recent {
		add(&recent[i])
	}
	return pool, nil
}

func notFoundAs(err error, message string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrNotFound.WithMessage(message)
	}
	return err
}
