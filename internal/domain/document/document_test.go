package document

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{
		"invoice": TypeInvoice, "Bill": TypeInvoice, "PO": TypePurchaseOrder,
		"purchase-order": TypePurchaseOrder, "": TypeOther,
	} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseType("receipt")
	assert.Error(t, err)
}

func TestIsSupportedContentType(t *testing.T) {
	assert.True(t, IsSupportedContentType("application/pdf"))
	assert.True(t, IsSupportedContentType("image/JPEG"))
	assert.True(t, IsSupportedContentType("image/png; charset=binary"))
	assert.False(t, IsSupportedContentType("text/html"))
	assert.False(t, IsSupportedContentType(""))
}

func TestNewSourceDocument(t *testing.T) {
	userID := uuid.New()

	doc, err := NewSourceDocument(userID, "po.pdf", "application/pdf", 1024, TypePurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, doc.Status)
	assert.True(t, doc.BelongsTo(userID))

	_, err = NewSourceDocument(userID, "po.exe", "application/octet-stream", 10, TypeOther)
	assert.Error(t, err)
	_, err = NewSourceDocument(userID, "po.pdf", "application/pdf", 0, TypeOther)
	assert.Error(t, err)
	_, err = NewSourceDocument(userID, " ", "application/pdf", 1, TypeOther)
	assert.Error(t, err)
}

func TestNewTargetDocument(t *testing.T) {
	_, err := NewTargetDocument(uuid.New(), uuid.Nil, "inv.png", "image/png", 10, TypeInvoice)
	assert.Error(t, err)

	target, err := NewTargetDocument(uuid.New(), uuid.New(), "inv.png", "image/png", 10, TypeInvoice)
	require.NoError(t, err)
	target.RecordMatch(88, "NEEDS_REVIEW", []byte(`[]`))
	require.NotNil(t, target.MatchScore)
	assert.Equal(t, 88, *target.MatchScore)
}

func TestDocument_Lifecycle(t *testing.T) {
	doc, err := NewSourceDocument(uuid.New(), "inv.pdf", "application/pdf", 10, TypeInvoice)
	require.NoError(t, err)

	assert.ErrorIs(t, doc.Complete([]byte(`{}`)), shared.ErrInvalidState)

	require.NoError(t, doc.StartProcessing())
	assert.ErrorIs(t, doc.StartProcessing(), shared.ErrInvalidState)
	require.NoError(t, doc.Fail("model timeout"))
	assert.Equal(t, StatusFailed, doc.Status)
	assert.False(t, doc.IsExtracted())

	require.NoError(t, doc.StartProcessing())
	assert.Empty(t, doc.ErrorMessage)
	require.NoError(t, doc.Complete([]byte(`{"invoice_number":"1"}`)))
	assert.True(t, doc.IsExtracted())
	assert.NotNil(t, doc.ProcessedAt)
}

func TestDocument_StaleProcessingRestarts(t *testing.T) {
	doc, err := NewSourceDocument(uuid.New(), "po.pdf", "application/pdf", 10, TypePurchaseOrder)
	require.NoError(t, err)
	require.NoError(t, doc.StartProcessing())

	doc.UpdatedAt = time.Now().Add(-StaleProcessingAfter + time.Minute)
	assert.ErrorIs(t, doc.StartProcessing(), shared.ErrInvalidState)

	doc.UpdatedAt = time.Now().Add(-StaleProcessingAfter - time.Minute)
	require.NoError(t, doc.StartProcessing())
	assert.Equal(t, StatusProcessing, doc.Status)
	assert.WithinDuration(t, time.Now(), doc.UpdatedAt, time.Second)
}

func TestNewExtractedTable(t *testing.T) {
	table := NewExtractedTable(uuid.New(), uuid.New(), 0, "Items",
		[]string{"Description", "Qty", "Price"},
		[][]string{{"Bolt", "2"}, {"Nut", "1", "0.10"}}, 1.4)
	assert.Len(t, table.Rows[0], 3)
	assert.Equal(t, "", table.Rows[0][2])
	assert.Equal(t, 1.0, table.Confidence)
}
