package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestScoreFiles(t *testing.T) {
	matcher := matching.NewMatcher(matching.DefaultComparisonConfig())

	t.Run("matching pair", func(t *testing.T) {
		po := writeFile(t, "po.json", `{
			"po_number": "PO-1001", "vendor_name": "Acme Corp", "po_date": "2026-03-01",
			"total_amount": "100",
			"line_items": [{"description": "Widget", "quantity": "2", "unit_price": "50"}]
		}`)
		inv := writeFile(t, "inv.json", `{
			"invoice_number": "INV-9", "po_number": "PO-1001", "vendor_name": "Acme Corp",
			"invoice_date": "2026-03-10", "total_amount": "100",
			"line_items": [{"description": "Widget", "quantity": "2", "unit_price": "50"}]
		}`)

		out, err := scoreFiles(matcher, po, inv)
		require.NoError(t, err)
		assert.Equal(t, "PO-1001", out.PONumber)
		assert.True(t, out.Scores.PONumberMatch)
		assert.GreaterOrEqual(t, out.Score, 90)
		assert.Equal(t, string(matching.StatusAutoApproved), out.Status)
		assert.NotNil(t, out.Discrepancies)

		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, out))
		assert.Contains(t, buf.String(), `"confidence_score"`)
	})

	t.Run("invalid record", func(t *testing.T) {
		po := writeFile(t, "po.json", `{"po_number": "", "total_amount": "10"}`)
		inv := writeFile(t, "inv.json", `{"invoice_number": "INV-1", "total_amount": "10"}`)
		_, err := scoreFiles(matcher, po, inv)
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		po := writeFile(t, "po.json", `{`)
		_, err := scoreFiles(matcher, po, po)
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := scoreFiles(matcher, filepath.Join(t.TempDir(), "nope.json"), "x")
		assert.Error(t, err)
	})
}

func TestContentTypeOf(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeOf("invoice.pdf", nil))
	assert.Equal(t, "image/png", contentTypeOf("scan", []byte("\x89PNG\r\n\x1a\n0000")))
}
