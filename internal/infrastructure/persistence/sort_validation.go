package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"po_number":    true,
	"vendor_name":  true,
	"po_date":      true,
	"total_amount": true,
	"status":       true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"po_number":      true,
	"vendor_name":    true,
	"invoice_date":   true,
	"due_date":       true,
	"total_amount":   true,
}

// ComparisonSortFields contains allowed sort fields for comparison results
var ComparisonSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"po_number":        true,
	"invoice_number":   true,
	"confidence_score": true,
	"status":           true,
	"reviewed_at":      true,
}

// DocumentSortFields contains allowed sort fields for source documents
var DocumentSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"file_name":     true,
	"document_type": true,
	"status":        true,
	"size_bytes":    true,
	"processed_at":  true,
}
