package procurement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice is a vendor invoice row in invoice_table, owned by one user
type Invoice struct {
	shared.OwnedAggregate
	InvoiceNumber    string
	PONumber         string
	VendorName       string
	InvoiceDate      *time.Time
	DueDate          *time.Time
	Currency         string
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	SourceDocumentID *uuid.UUID
	RawData          []byte
	LineItems        []LineItem
}

// NewInvoice creates an invoice for a user
func NewInvoice(userID uuid.UUID, invoiceNumber, vendorName string, invoiceDate *time.Time, total decimal.Decimal) (*Invoice, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVOICE_NUMBER_REQUIRED", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 100 {
		return nil, shared.NewDomainError("INVOICE_NUMBER_TOO_LONG", "Invoice number cannot exceed 100 characters")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
	}

	return &Invoice{
		OwnedAggregate: shared.NewOwnedAggregate(userID),
		InvoiceNumber:  invoiceNumber,
		VendorName:     strings.TrimSpace(vendorName),
		InvoiceDate:    invoiceDate,
		Currency:       DefaultCurrency,
		TotalAmount:    total,
		LineItems:      make([]LineItem, 0),
	}, nil
}

// SetPONumber records the purchase order number printed on the invoice
func (i *Invoice) SetPONumber(poNumber string) {
	i.PONumber = strings.TrimSpace(poNumber)
	i.Touch()
}

// SetDueDate sets the payment due date. It cannot precede the invoice date.
func (i *Invoice) SetDueDate(due *time.Time) error {
	if due != nil && i.InvoiceDate != nil && due.Before(*i.InvoiceDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}
	i.DueDate = due
	i.Touch()
	return nil
}

// SetCurrency sets the ISO 4217 currency code
func (i *Invoice) SetCurrency(code string) error {
	normalized, err := NormalizeCurrency(code)
	if err != nil {
		return err
	}
	i.Currency = normalized
	i.Touch()
	return nil
}

// SetAmounts sets subtotal and tax. A zero total is derived from them once
// the subtotal is known.
func (i *Invoice) SetAmounts(subtotal, tax decimal.Decimal) error {
	if subtotal.IsNegative() || tax.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Subtotal and tax cannot be negative")
	}
	i.Subtotal = subtotal
	i.TaxAmount = tax
	if i.TotalAmount.IsZero() && !subtotal.IsZero() {
		i.TotalAmount = subtotal.Add(tax)
	}
	i.Touch()
	return nil
}

// SetLineItems replaces the line items. When both subtotal and total are zero
// they are derived from the lines.
func (i *Invoice) SetLineItems(items []LineItem) {
	i.LineItems = items
	if i.Subtotal.IsZero() {
		i.Subtotal = sumLines(items)
	}
	if i.TotalAmount.IsZero() {
		i.TotalAmount = i.Subtotal.Add(i.TaxAmount)
	}
	i.Touch()
}

// LinkSourceDocument records the document this invoice was extracted from
func (i *Invoice) LinkSourceDocument(documentID uuid.UUID) {
	i.SourceDocumentID = &documentID
	i.Touch()
}

// HasPOReference reports whether the invoice names a purchase order
func (i *Invoice) HasPOReference() bool {
	return i.PONumber != ""
}
