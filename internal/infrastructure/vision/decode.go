package vision

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

type rawLine struct {
	Description string          `mapstructure:"description"`
	Quantity    decimal.Decimal `mapstructure:"quantity"`
	UnitPrice   decimal.Decimal `mapstructure:"unit_price"`
	Amount      decimal.Decimal `mapstructure:"amount"`
}

type rawTable struct {
	Title      string     `mapstructure:"title"`
	Headers    []string   `mapstructure:"headers"`
	Rows       [][]string `mapstructure:"rows"`
	Confidence float64    `mapstructure:"confidence"`
}

type rawExtraction struct {
	DocumentType   string          `mapstructure:"document_type"`
	DocumentNumber string          `mapstructure:"document_number"`
	PONumber       string          `mapstructure:"po_number"`
	VendorName     string          `mapstructure:"vendor_name"`
	DocumentDate   string          `mapstructure:"document_date"`
	DueDate        string          `mapstructure:"due_date"`
	Currency       string          `mapstructure:"currency"`
	Subtotal       decimal.Decimal `mapstructure:"subtotal"`
	TaxAmount      decimal.Decimal `mapstructure:"tax_amount"`
	TotalAmount    decimal.Decimal `mapstructure:"total_amount"`
	LineItems      []rawLine       `mapstructure:"line_items"`
	Tables         []rawTable      `mapstructure:"tables"`
	Confidence     float64         `mapstructure:"confidence"`
}

// Alternative spellings models use for top-level keys, in lookup order
var keyAliases = map[string][]string{
	"document_number": {"invoice_number", "invoice_no", "number"},
	"po_number":       {"purchase_order_number", "po_reference", "po_no", "order_number"},
	"vendor_name":     {"vendor", "supplier", "supplier_name", "seller"},
	"document_date":   {"invoice_date", "po_date", "order_date", "date"},
	"due_date":        {"payment_due", "due"},
	"subtotal":        {"sub_total", "net_amount"},
	"tax_amount":      {"tax", "vat", "gst"},
	"total_amount":    {"total", "grand_total", "amount_due", "invoice_total"},
	"line_items":      {"items", "lines", "products"},
}

var lineAliases = map[string][]string{
	"description": {"item", "name", "product", "details"},
	"quantity":    {"qty", "units"},
	"unit_price":  {"price", "rate", "unit_cost"},
	"amount":      {"total", "line_total", "value"},
}

// DecodeExtraction turns model JSON into an Extraction. Numbers may arrive
// as strings with currency symbols and thousands separators.
func DecodeExtraction(raw string, fallback document.Type) (*document.Extraction, error) {
	root := gjson.Parse(raw)
	if root.IsArray() {
		root = root.Get("0")
	}
	if !root.IsObject() {
		return nil, ErrNoJSON
	}
	root = unwrap(root)

	fields, ok := root.Value().(map[string]any)
	if !ok {
		return nil, ErrNoJSON
	}
	applyAliases(fields, keyAliases)
	if items, ok := fields["line_items"].([]any); ok {
		for _, item := range items {
			if line, ok := item.(map[string]any); ok {
				applyAliases(line, lineAliases)
			}
		}
	}
	// A purchase order often labels its own number po_number
	if _, ok := fields["document_number"]; !ok && isPurchaseOrder(fields, fallback) {
		if po, ok := fields["po_number"]; ok {
			fields["document_number"] = po
		}
	}

	var out rawExtraction
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decimalHook,
		WeaklyTypedInput: true,
		Result:           &out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	return out.toExtraction(fallback), nil
}

func isPurchaseOrder(fields map[string]any, fallback document.Type) bool {
	if raw, ok := fields["document_type"].(string); ok && raw != "" {
		t, err := document.ParseType(raw)
		return err == nil && t == document.TypePurchaseOrder
	}
	return fallback == document.TypePurchaseOrder
}

// unwrap descends into {"invoice": {...}} style envelopes
func unwrap(root gjson.Result) gjson.Result {
	for range 2 {
		if root.Get("document_number").Exists() || root.Get("line_items").Exists() || root.Get("vendor_name").Exists() {
			return root
		}
		var only gjson.Result
		count := 0
		root.ForEach(func(_, value gjson.Result) bool {
			count++
			only = value
			return count < 2
		})
		if count != 1 || !only.IsObject() {
			return root
		}
		root = only
	}
	return root
}

// applyAliases copies the first present alias into each missing canonical key
func applyAliases(fields map[string]any, aliases map[string][]string) {
	for canonical, names := range aliases {
		if v, ok := fields[canonical]; ok && v != nil {
			continue
		}
		for _, name := range names {
			if v, ok := fields[name]; ok && v != nil {
				fields[canonical] = v
				break
			}
		}
	}
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(from, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		return ParseAmount(v)
	}
	return data, nil
}

// ParseAmount reads amounts such as "1,234.50", "$12", "(5.00)" or "12 EUR".
// Blank and "n/a" read as zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "n/a", "na", "none", "null":
		return decimal.Zero, nil
	}
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			negative = true
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// ParseDate reads a date in one of the layouts invoices commonly print.
// Unreadable dates return nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

func (r rawExtraction) toExtraction(fallback document.Type) *document.Extraction {
	docType, err := document.ParseType(r.DocumentType)
	if err != nil || r.DocumentType == "" {
		docType = fallback
	}
	e := &document.Extraction{
		DocumentType:   docType,
		DocumentNumber: strings.TrimSpace(r.DocumentNumber),
		PONumber:       strings.TrimSpace(r.PONumber),
		VendorName:     strings.TrimSpace(r.VendorName),
		DocumentDate:   ParseDate(r.DocumentDate),
		DueDate:        ParseDate(r.DueDate),
		Currency:       strings.TrimSpace(r.Currency),
		Subtotal:       r.Subtotal,
		TaxAmount:      r.TaxAmount,
		TotalAmount:    r.TotalAmount,
		LineItems:      make([]document.ExtractedLine, 0, len(r.LineItems)),
		Tables:         make([]document.TableData, 0, len(r.Tables)),
		Confidence:     min(max(r.Confidence, 0), 1),
	}
	for _, l := range r.LineItems {
		amount := l.Amount
		if amount.IsZero() && !l.Quantity.IsZero() {
			amount = l.Quantity.Mul(l.UnitPrice)
		}
		e.LineItems = append(e.LineItems, document.ExtractedLine{
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      amount,
		})
	}
	for _, t := range r.Tables {
		if len(t.Headers) == 0 && len(t.Rows) == 0 {
			continue
		}
		confidence := t.Confidence
		if confidence == 0 {
			confidence = e.Confidence
		}
		e.Tables = append(e.Tables, document.TableData{
			Title:      t.Title,
			Headers:    t.Headers,
			Rows:       t.Rows,
			Confidence: confidence,
		})
	}
	return e
}
