package procurement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the lifecycle of a purchase order record
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen   PurchaseOrderStatus = "OPEN"
	PurchaseOrderStatusClosed PurchaseOrderStatus = "CLOSED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	return s == PurchaseOrderStatusOpen || s == PurchaseOrderStatusClosed
}

// PurchaseOrder is a purchase order row in po_table, owned by one user
type PurchaseOrder struct {
	shared.OwnedAggregate
	PONumber         string
	VendorName       string
	PODate           *time.Time
	Currency         string
	TotalAmount      decimal.Decimal
	Status           PurchaseOrderStatus
	SourceDocumentID *uuid.UUID
	RawData          []byte
	LineItems        []LineItem
}

// NewPurchaseOrder creates a purchase order for a user
func NewPurchaseOrder(userID uuid.UUID, poNumber, vendorName string, poDate *time.Time, total decimal.Decimal) (*PurchaseOrder, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	poNumber = strings.TrimSpace(poNumber)
	if poNumber == "" {
		return nil, shared.NewDomainError("PO_NUMBER_REQUIRED", "PO number cannot be empty")
	}
	if len(poNumber) > 100 {
		return nil, shared.NewDomainError("PO_NUMBER_TOO_LONG", "PO number cannot exceed 100 characters")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
	}

	return &PurchaseOrder{
		OwnedAggregate: shared.NewOwnedAggregate(userID),
		PONumber:       poNumber,
		VendorName:     strings.TrimSpace(vendorName),
		PODate:         poDate,
		Currency:       DefaultCurrency,
		TotalAmount:    total,
		Status:         PurchaseOrderStatusOpen,
		LineItems:      make([]LineItem, 0),
	}, nil
}

// SetCurrency sets the ISO 4217 currency code
func (p *PurchaseOrder) SetCurrency(code string) error {
	normalized, err := NormalizeCurrency(code)
	if err != nil {
		return err
	}
	p.Currency = normalized
	p.Touch()
	return nil
}

// SetLineItems replaces the line items. When the header total is zero the
// total is derived from the lines.
func (p *PurchaseOrder) SetLineItems(items []LineItem) {
	p.LineItems = items
	if p.TotalAmount.IsZero() {
		p.TotalAmount = sumLines(items)
	}
	p.Touch()
}

// LinkSourceDocument records the document this PO was extracted from
func (p *PurchaseOrder) LinkSourceDocument(documentID uuid.UUID) {
	p.SourceDocumentID = &documentID
	p.Touch()
}

// Close marks the purchase order as fully matched
func (p *PurchaseOrder) Close() error {
	if p.Status == PurchaseOrderStatusClosed {
		return shared.ErrInvalidState.WithMessage("Purchase order is already closed")
	}
	p.Status = PurchaseOrderStatusClosed
	p.Touch()
	return nil
}

// LineItemsTotal returns the sum of all line amounts
func (p *PurchaseOrder) LineItemsTotal() decimal.Decimal {
	return sumLines(p.LineItems)
}
