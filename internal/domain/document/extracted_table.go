package document

import (
	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// ExtractedTable is a table the vision model found in a document,
// stored in extracted_tables
type ExtractedTable struct {
	shared.BaseEntity
	UserID     uuid.UUID
	DocumentID uuid.UUID
	TableIndex int
	Title      string
	Headers    []string
	Rows       [][]string
	Confidence float64
}

// NewExtractedTable creates a table row. Rows shorter than the header are
// padded so every row has one cell per column.
func NewExtractedTable(userID, documentID uuid.UUID, index int, title string, headers []string, rows [][]string, confidence float64) *ExtractedTable {
	width := len(headers)
	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		normalized = append(normalized, row)
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return &ExtractedTable{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		DocumentID: documentID,
		TableIndex: index,
		Title:      title,
		Headers:    headers,
		Rows:       normalized,
		Confidence: confidence,
	}
}
