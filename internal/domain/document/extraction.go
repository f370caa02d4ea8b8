package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExtractedLine is a line item read from a document
type ExtractedLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// TableData is a table read from a document before it is stored
type TableData struct {
	Title      string     `json:"title"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	Confidence float64    `json:"confidence"`
}

// Extraction is the structured content the vision model read from a
// document. It is stored as the document's extracted_data.
type Extraction struct {
	DocumentType Type `json:"document_type"`
	// DocumentNumber is the invoice number of an invoice or the PO number of a purchase order
	DocumentNumber string          `json:"document_number"`
	PONumber       string          `json:"po_number,omitempty"`
	VendorName     string          `json:"vendor_name"`
	DocumentDate   *time.Time      `json:"document_date,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Currency       string          `json:"currency"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	LineItems      []ExtractedLine `json:"line_items"`
	Tables         []TableData     `json:"tables"`
	Confidence     float64         `json:"confidence"`
}

// ReferencedPONumber returns the purchase order number the document is about:
// its own number for a purchase order, the printed reference otherwise
func (e *Extraction) ReferencedPONumber() string {
	if e.DocumentType == TypePurchaseOrder && e.DocumentNumber != "" {
		return e.DocumentNumber
	}
	return e.PONumber
}

// LineItemTable renders the line items as a table, or returns false when there are none
func (e *Extraction) LineItemTable() (TableData, bool) {
	if len(e.LineItems) == 0 {
		return TableData{}, false
	}
	rows := make([][]string, 0, len(e.LineItems))
	for _, l := range e.LineItems {
		rows = append(rows, []string{l.Description, l.Quantity.String(), l.UnitPrice.StringFixed(2), l.Amount.StringFixed(2)})
	}
	return TableData{
		Title:      "Line Items",
		Headers:    []string{"Description", "Quantity", "Unit Price", "Amount"},
		Rows:       rows,
		Confidence: e.Confidence,
	}, true
}

// Marshal encodes the extraction for storage
func (e *Extraction) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extraction: %w", err)
	}
	return data, nil
}

// UnmarshalExtraction decodes stored extracted_data
func UnmarshalExtraction(data []byte) (*Extraction, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("NOT_EXTRACTED", "Document has no extracted data")
	}
	var e Extraction
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode extraction: %w", err)
	}
	if e.LineItems == nil {
		e.LineItems = make([]ExtractedLine, 0)
	}
	return &e, nil
}
