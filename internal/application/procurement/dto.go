package procurement

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// LineItemRequest represents one line of a purchase order or invoice
type LineItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreatePurchaseOrderRequest represents a request to create or replace a purchase order
type CreatePurchaseOrderRequest struct {
	PONumber    string            `json:"po_number" binding:"required,po_number"`
	VendorName  string            `json:"vendor_name" binding:"max=200"`
	PODate      string            `json:"po_date" binding:"omitempty,datetime=2006-01-02"`
	Currency    string            `json:"currency" binding:"omitempty,currency"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	LineItems   []LineItemRequest `json:"line_items" binding:"omitempty,dive"`
}

// CreateInvoiceRequest represents a request to create or replace an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string            `json:"invoice_number" binding:"required,min=1,max=100"`
	PONumber      string            `json:"po_number" binding:"omitempty,po_number"`
	VendorName    string            `json:"vendor_name" binding:"max=200"`
	InvoiceDate   string            `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate       string            `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Currency      string            `json:"currency" binding:"omitempty,currency"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	TaxAmount     decimal.Decimal   `json:"tax_amount"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	LineItems     []LineItemRequest `json:"line_items" binding:"omitempty,dive"`
}

// PurchaseOrderListFilter represents filter options for the purchase order list
type PurchaseOrderListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=OPEN CLOSED"`
	VendorName string `form:"vendor_name"`
	StartDate  string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search     string `form:"search"`
	PONumber   string `form:"po_number"`
	VendorName string `form:"vendor_name"`
	Unmatched  *bool  `form:"unmatched"`
	StartDate  string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID               uuid.UUID          `json:"id"`
	PONumber         string             `json:"po_number"`
	VendorName       string             `json:"vendor_name"`
	PODate           *time.Time         `json:"po_date,omitempty"`
	Currency         string             `json:"currency"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	Status           string             `json:"status"`
	SourceDocumentID *uuid.UUID         `json:"source_document_id,omitempty"`
	RawData          json.RawMessage    `json:"raw_data,omitempty"`
	LineItems        []LineItemResponse `json:"line_items"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Version          int                `json:"version"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID               uuid.UUID          `json:"id"`
	InvoiceNumber    string             `json:"invoice_number"`
	PONumber         string             `json:"po_number,omitempty"`
	VendorName       string             `json:"vendor_name"`
	InvoiceDate      *time.Time         `json:"invoice_date,omitempty"`
	DueDate          *time.Time         `json:"due_date,omitempty"`
	Currency         string             `json:"currency"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	TaxAmount        decimal.Decimal    `json:"tax_amount"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	SourceDocumentID *uuid.UUID         `json:"source_document_id,omitempty"`
	RawData          json.RawMessage    `json:"raw_data,omitempty"`
	LineItems        []LineItemResponse `json:"line_items"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Version          int                `json:"version"`
}

func toLineItemResponses(items []procurement.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, item := range items {
		out[i] = LineItemResponse{
			ID:          item.ID,
			LineNumber:  item.LineNumber,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return out
}

func rawJSON(data []byte) json.RawMessage {
	if len(data) == 0 || !json.Valid(data) {
		return nil
	}
	return json.RawMessage(data)
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to PurchaseOrderResponse
func ToPurchaseOrderResponse(po *procurement.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:               po.ID,
		PONumber:         po.PONumber,
		VendorName:       po.VendorName,
		PODate:           po.PODate,
		Currency:         po.Currency,
		TotalAmount:      po.TotalAmount,
		Status:           string(po.Status),
		SourceDocumentID: po.SourceDocumentID,
		RawData:          rawJSON(po.RawData),
		LineItems:        toLineItemResponses(po.LineItems),
		CreatedAt:        po.CreatedAt,
		UpdatedAt:        po.UpdatedAt,
		Version:          po.Version,
	}
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *procurement.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		PONumber:         inv.PONumber,
		VendorName:       inv.VendorName,
		InvoiceDate:      inv.InvoiceDate,
		DueDate:          inv.DueDate,
		Currency:         inv.Currency,
		Subtotal:         inv.Subtotal,
		TaxAmount:        inv.TaxAmount,
		TotalAmount:      inv.TotalAmount,
		SourceDocumentID: inv.SourceDocumentID,
		RawData:          rawJSON(inv.RawData),
		LineItems:        toLineItemResponses(inv.LineItems),
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
}
