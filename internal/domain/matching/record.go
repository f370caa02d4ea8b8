package matching

import (
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// Line is a line item flattened for comparison
type Line struct {
	Description string
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
}

// Record is a purchase order or an invoice flattened into the fields the
// comparator looks at. Zero values mean the field is missing.
type Record struct {
	ID        uuid.UUID
	Vendor    string
	PONumber  string
	Amount    decimal.Decimal
	Date      *time.Time
	LineItems []Line
}

func linesOf(items []procurement.LineItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			Description: item.Description,
			Quantity:    item.Quantity,
			Amount:      item.Amount,
		})
	}
	return lines
}

// RecordFromPurchaseOrder flattens a purchase order
func RecordFromPurchaseOrder(po *procurement.PurchaseOrder) Record {
	return Record{
		ID:        po.ID,
		Vendor:    po.VendorName,
		PONumber:  po.PONumber,
		Amount:    po.TotalAmount,
		Date:      po.PODate,
		LineItems: linesOf(po.LineItems),
	}
}

// RecordFromInvoice flattens an invoice
func RecordFromInvoice(inv *procurement.Invoice) Record {
	return Record{
		ID:        inv.ID,
		Vendor:    inv.VendorName,
		PONumber:  inv.PONumber,
		Amount:    inv.TotalAmount,
		Date:      inv.InvoiceDate,
		LineItems: linesOf(inv.LineItems),
	}
}

// RecordFromExtraction flattens the extracted content of a document
func RecordFromExtraction(id uuid.UUID, e *document.Extraction) Record {
	lines := make([]Line, 0, len(e.LineItems))
	for _, item := range e.LineItems {
		lines = append(lines, Line{
			Description: item.Description,
			Quantity:    item.Quantity,
			Amount:      item.Amount,
		})
	}
	return Record{
		ID:        id,
		Vendor:    e.VendorName,
		PONumber:  e.ReferencedPONumber(),
		Amount:    e.TotalAmount,
		Date:      e.DocumentDate,
		LineItems: lines,
	}
}
