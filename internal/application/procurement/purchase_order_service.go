package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order records
type PurchaseOrderService struct {
	repo   procurement.PurchaseOrderRepository
	logger *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(repo procurement.PurchaseOrderRepository) *PurchaseOrderService {
	return &PurchaseOrderService{repo: repo, logger: zap.NewNop()}
}

// SetLogger sets the service logger
func (s *PurchaseOrderService) SetLogger(logger *zap.Logger) {
	s.logger = logger.Named("procurement")
}

// Create stores a purchase order. A PO with the same number replaces the
// existing one and keeps its ID.
func (s *PurchaseOrderService) Create(ctx context.Context, userID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	po, err := BuildPurchaseOrder(userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, po); err != nil {
		return nil, err
	}
	s.logger.Debug("Purchase order saved",
		zap.String("user_id", userID.String()),
		zap.String("po_number", po.PONumber),
		zap.Int("lines", len(po.LineItems)))

	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, userID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.repo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// List retrieves a page of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, userID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	domainFilter, err := newDomainFilter(filter.Search, filter.Page, filter.PageSize,
		filter.OrderBy, filter.OrderDir, dateRange{start: filter.StartDate, end: filter.EndDate})
	if err != nil {
		return nil, 0, err
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.VendorName != "" {
		domainFilter.Filters["vendor_name"] = filter.VendorName
	}

	pos, err := s.repo.FindAllForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PurchaseOrderResponse, len(pos))
	for i := range pos {
		responses[i] = ToPurchaseOrderResponse(&pos[i])
	}
	return responses, total, nil
}

// Close marks a purchase order as fully matched
func (s *PurchaseOrderService) Close(ctx context.Context, userID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.repo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := po.Close(); err != nil {
		return nil, err
	}
	po.IncrementVersion()
	if err := s.repo.Save(ctx, po); err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Delete deletes a purchase order and its comparisons
func (s *PurchaseOrderService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteForUser(ctx, userID, id)
}

// BuildPurchaseOrder validates a request and turns it into a purchase order
// without storing it
func BuildPurchaseOrder(userID uuid.UUID, req CreatePurchaseOrderRequest) (*procurement.PurchaseOrder, error) {
	poDate, err := parseDate("po_date", req.PODate)
	if err != nil {
		return nil, err
	}
	lines, err := buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	po, err := procurement.NewPurchaseOrder(userID, req.PONumber, req.VendorName, poDate, req.TotalAmount)
	if err != nil {
		return nil, err
	}
	if err := po.SetCurrency(req.Currency); err != nil {
		return nil, err
	}
	po.SetLineItems(lines)
	return po, nil
}
