package handler

import (
	"net/http"
	"testing"

	procurementapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePO(number string) map[string]any {
	return map[string]any{
		"po_number":    number,
		"vendor_name":  "Acme Corp",
		"po_date":      "2024-03-01",
		"currency":     "usd",
		"total_amount": "100.00",
		"line_items": []map[string]any{
			{"description": "Widget", "quantity": "2", "unit_price": "50", "amount": "100"},
		},
	}
}

func sampleInvoice(number, poNumber string) map[string]any {
	return map[string]any{
		"invoice_number": number,
		"po_number":      poNumber,
		"vendor_name":    "Acme Corp",
		"invoice_date":   "2024-03-10",
		"currency":       "USD",
		"total_amount":   "100.00",
		"line_items": []map[string]any{
			{"description": "Widget", "quantity": "2", "unit_price": "50", "amount": "100"},
		},
	}
}

func TestPurchaseOrderHandler_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/procurement/purchase-orders", samplePO("PO-1001"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created procurementapp.PurchaseOrderResponse
	resp := envelope(t, w, &created)
	assert.True(t, resp.Success)
	assert.Equal(t, "PO-1001", created.PONumber)
	assert.Equal(t, "USD", created.Currency)
	assert.Len(t, created.LineItems, 1)

	w = api.do(t, http.MethodGet, "/api/v1/procurement/purchase-orders/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched procurementapp.PurchaseOrderResponse
	envelope(t, w, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestPurchaseOrderHandler_CreateUpsertsByNumber(t *testing.T) {
	api := newTestAPI(t)

	first := samplePO("PO-2001")
	w := api.do(t, http.MethodPost, "/api/v1/procurement/purchase-orders", first)
	require.Equal(t, http.StatusCreated, w.Code)
	var a procurementapp.PurchaseOrderResponse
	envelope(t, w, &a)

	second := samplePO("PO-2001")
	second["vendor_name"] = "Acme Corporation"
	w = api.do(t, http.MethodPost, "/api/v1/procurement/purchase-orders", second)
	require.Equal(t, http.StatusCreated, w.Code)
	var b procurementapp.PurchaseOrderResponse
	envelope(t, w, &b)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "Acme Corporation", b.VendorName)

	w = api.do(t, http.MethodGet, "/api/v1/procurement/purchase-orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []procurementapp.PurchaseOrderResponse
	resp := envelope(t, w, &list)
	assert.Len(t, list, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
}

func TestPurchaseOrderHandler_Validation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing number", map[string]any{"vendor_name": "Acme"}, "po_number"},
		{"bad date", map[string]any{"po_number": "PO-1", "po_date": "03/01/2024"}, "po_date"},
		{"bad currency", map[string]any{"po_number": "PO-1", "currency": "dollars"}, "currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/api/v1/procurement/purchase-orders", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := envelope(t, w, nil)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Details)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
		})
	}
}

func TestPurchaseOrderHandler_CloseAndDelete(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/procurement/purchase-orders", samplePO("PO-3001"))
	require.Equal(t, http.StatusCreated, w.Code)
	var po procurementapp.PurchaseOrderResponse
	envelope(t, w, &po)

	w = api.do(t, http.MethodPost, "/api/v1/procurement/purchase-orders/"+po.ID.String()+"/close", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var closed procurementapp.PurchaseOrderResponse
	envelope(t, w, &closed)
	assert.Equal(t, "CLOSED", closed.Status)

	w = api.do(t, http.MethodDelete, "/api/v1/procurement/purchase-orders/"+po.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/procurement/purchase-orders/"+po.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := envelope(t, w, nil)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestPurchaseOrderHandler_InvalidID(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/procurement/purchase-orders/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := envelope(t, w, nil)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestInvoiceHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/procurement/invoices", sampleInvoice("INV-1", "PO-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var inv procurementapp.InvoiceResponse
	envelope(t, w, &inv)
	assert.Equal(t, "INV-1", inv.InvoiceNumber)
	assert.Equal(t, "PO-1", inv.PONumber)

	w = api.do(t, http.MethodGet, "/api/v1/procurement/invoices?po_number=PO-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []procurementapp.InvoiceResponse
	envelope(t, w, &list)
	assert.Len(t, list, 1)

	w = api.do(t, http.MethodGet, "/api/v1/procurement/invoices/"+inv.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/v1/procurement/invoices/"+inv.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodDelete, "/api/v1/procurement/invoices/"+inv.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_PageSizeCapped(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/procurement/invoices?page_size=500", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := envelope(t, w, nil)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func TestProcurementHandler_RequiresUser(t *testing.T) {
	api := newTestAPI(t)

	req := newRequest(http.MethodGet, "/api/v1/procurement/invoices")
	w := serveAnonymous(api, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	resp := envelope(t, w, nil)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
}
