package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromExtraction(t *testing.T) {
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	po := &document.Extraction{
		DocumentType:   document.TypePurchaseOrder,
		DocumentNumber: "PO-100",
		VendorName:     "Acme",
		DocumentDate:   &date,
		TotalAmount:    decimal.NewFromInt(500),
		LineItems: []document.ExtractedLine{
			{Description: "Cable", Quantity: decimal.NewFromInt(5), Amount: decimal.NewFromInt(500)},
		},
	}

	rec := RecordFromExtraction(id, po)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "PO-100", rec.PONumber)
	assert.Equal(t, "Acme", rec.Vendor)
	require.Len(t, rec.LineItems, 1)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(500)))

	inv := &document.Extraction{DocumentType: document.TypeInvoice, DocumentNumber: "INV-1", PONumber: "PO-100"}
	assert.Equal(t, "PO-100", RecordFromExtraction(id, inv).PONumber)
	assert.Empty(t, RecordFromExtraction(id, inv).LineItems)
}
