package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"go.uber.org/zap"
)

// InvoiceService handles invoice records
type InvoiceService struct {
	repo   procurement.InvoiceRepository
	logger *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(repo procurement.InvoiceRepository) *InvoiceService {
	return &InvoiceService{repo: repo, logger: zap.NewNop()}
}

// SetLogger sets the service logger
func (s *InvoiceService) SetLogger(logger *zap.Logger) {
	s.logger = logger.Named("procurement")
}

// Create stores an invoice. An invoice with the same number replaces the
// existing one and keeps its ID.
func (s *InvoiceService) Create(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := BuildInvoice(userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Debug("Invoice saved",
		zap.String("user_id", userID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Bool("has_po_reference", inv.HasPOReference()))

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.repo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List retrieves a page of invoices
func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter, err := newDomainFilter(filter.Search, filter.Page, filter.PageSize,
		filter.OrderBy, filter.OrderDir, dateRange{start: filter.StartDate, end: filter.EndDate})
	if err != nil {
		return nil, 0, err
	}
	if filter.PONumber != "" {
		domainFilter.Filters["po_number"] = filter.PONumber
	}
	if filter.VendorName != "" {
		domainFilter.Filters["vendor_name"] = filter.VendorName
	}
	if filter.Unmatched != nil {
		domainFilter.Filters["unmatched"] = *filter.Unmatched
	}

	invoices, err := s.repo.FindAllForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// Delete deletes an invoice and its comparisons
func (s *InvoiceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteForUser(ctx, userID, id)
}

// BuildInvoice validates a request and turns it into an invoice without
// storing it
func BuildInvoice(userID uuid.UUID, req CreateInvoiceRequest) (*procurement.Invoice, error) {
	invoiceDate, err := parseDate("invoice_date", req.InvoiceDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	lines, err := buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	inv, err := procurement.NewInvoice(userID, req.InvoiceNumber, req.VendorName, invoiceDate, req.TotalAmount)
	if err != nil {
		return nil, err
	}
	inv.SetPONumber(req.PONumber)
	if err := inv.SetDueDate(dueDate); err != nil {
		return nil, err
	}
	if err := inv.SetCurrency(req.Currency); err != nil {
		return nil, err
	}
	if err := inv.SetAmounts(req.Subtotal, req.TaxAmount); err != nil {
		return nil, err
	}
	inv.SetLineItems(lines)
	return inv, nil
}
