package extraction

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
)

// Role says which side of a document comparison an upload is on
type Role string

const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
)

// ParseRole validates a role, defaulting to source
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleSource:
		return RoleSource, nil
	case RoleTarget:
		return RoleTarget, nil
	}
	return "", ErrInvalidRole
}

// UploadInput holds an uploaded file
type UploadInput struct {
	Role         Role
	SourceID     *uuid.UUID
	FileName     string
	ContentType  string
	DocumentType string
	Data         []byte
}

// SourceListFilter represents filter options for the source document list
type SourceListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status" binding:"omitempty,oneof=PENDING PROCESSING COMPLETED FAILED"`
	DocumentType string `form:"document_type" binding:"omitempty,oneof=invoice purchase_order other"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TableResponse represents an extracted table in API responses
type TableResponse struct {
	ID         uuid.UUID  `json:"id"`
	TableIndex int        `json:"table_index"`
	Title      string     `json:"title"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	Confidence float64    `json:"confidence"`
}

// DocumentResponse represents a source or target document in API responses
type DocumentResponse struct {
	ID            uuid.UUID            `json:"id"`
	Role          Role                 `json:"role"`
	SourceID      *uuid.UUID           `json:"source_id,omitempty"`
	FileName      string               `json:"file_name"`
	ContentType   string               `json:"content_type"`
	SizeBytes     int64                `json:"size_bytes"`
	Checksum      string               `json:"checksum"`
	DocumentType  string               `json:"document_type"`
	Status        string               `json:"status"`
	ErrorMessage  string               `json:"error_message,omitempty"`
	Extraction    *document.Extraction `json:"extracted_data,omitempty"`
	ProcessedAt   *time.Time           `json:"processed_at,omitempty"`
	MatchScore    *int                 `json:"match_score,omitempty"`
	MatchStatus   string               `json:"match_status,omitempty"`
	Discrepancies json.RawMessage      `json:"discrepancies,omitempty"`
	Tables        []TableResponse      `json:"tables,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// SourceDocumentResponse is a source document with its targets
type SourceDocumentResponse struct {
	DocumentResponse
	Targets []DocumentResponse `json:"targets"`
}

// ImportResponse describes the record created from a document
type ImportResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	RecordType string    `json:"record_type"`
	RecordID   uuid.UUID `json:"record_id"`
	Number     string    `json:"number"`
	LineCount  int       `json:"line_count"`
}

// TargetMatchResponse is the comparison outcome of one target document
type TargetMatchResponse struct {
	TargetID      uuid.UUID              `json:"target_id"`
	FileName      string                 `json:"file_name"`
	Score         int                    `json:"score"`
	Status        string                 `json:"status"`
	Scores        matching.FieldScores   `json:"scores"`
	Discrepancies []matching.Discrepancy `json:"discrepancies"`
}

// SourceComparisonResponse summarizes comparing a source with its targets
type SourceComparisonResponse struct {
	SourceID uuid.UUID             `json:"source_id"`
	Compared int                   `json:"compared"`
	Skipped  int                   `json:"skipped"`
	Results  []TargetMatchResponse `json:"results"`
}

// DownloadURLResponse holds a presigned download link
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toDocumentResponse(doc *document.Document, role Role) DocumentResponse {
	resp := DocumentResponse{
		ID:           doc.ID,
		Role:         role,
		FileName:     doc.FileName,
		ContentType:  doc.ContentType,
		SizeBytes:    doc.SizeBytes,
		Checksum:     doc.Checksum,
		DocumentType: string(doc.DocumentType),
		Status:       string(doc.Status),
		ErrorMessage: doc.ErrorMessage,
		ProcessedAt:  doc.ProcessedAt,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	if doc.IsExtracted() {
		if e, err := document.UnmarshalExtraction(doc.ExtractedData); err == nil {
			resp.Extraction = e
		}
	}
	return resp
}

func toSourceResponse(src *document.SourceDocument) DocumentResponse {
	return toDocumentResponse(&src.Document, RoleSource)
}

func toTargetResponse(tgt *document.TargetDocument) DocumentResponse {
	resp := toDocumentResponse(&tgt.Document, RoleTarget)
	sourceID := tgt.SourceID
	resp.SourceID = &sourceID
	resp.MatchScore = tgt.MatchScore
	resp.MatchStatus = tgt.MatchStatus
	if len(tgt.Discrepancies) > 0 {
		resp.Discrepancies = json.RawMessage(tgt.Discrepancies)
	}
	return resp
}

func toTableResponses(tables []document.ExtractedTable) []TableResponse {
	out := make([]TableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, TableResponse{
			ID:         t.ID,
			TableIndex: t.TableIndex,
			Title:      t.Title,
			Headers:    t.Headers,
			Rows:       t.Rows,
			Confidence: t.Confidence,
		})
	}
	return out
}
