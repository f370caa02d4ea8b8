package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// Type is the business kind of an uploaded document
type Type string

const (
	TypeInvoice       Type = "invoice"
	TypePurchaseOrder Type = "purchase_order"
	TypeOther         Type = "other"
)

// IsValid checks if the type is a known Type
func (t Type) IsValid() bool {
	return t == TypeInvoice || t == TypePurchaseOrder || t == TypeOther
}

// ParseType parses a document type, accepting a few common spellings
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invoice", "bill":
		return TypeInvoice, nil
	case "purchase_order", "po", "purchase-order":
		return TypePurchaseOrder, nil
	case "other", "":
		return TypeOther, nil
	}
	return "", shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Document type must be invoice, purchase_order or other")
}

// Status is the extraction state of a document
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// CanTransitionTo checks if the status can move to target
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending, StatusFailed, StatusCompleted:
		// completed and failed documents may be re-extracted
		return target == StatusProcessing
	case StatusProcessing:
		return target == StatusCompleted || target == StatusFailed
	}
	return false
}

// Document holds the fields shared by source and target documents
type Document struct {
	shared.OwnedAggregate
	FileName      string
	ContentType   string
	StorageKey    string
	SizeBytes     int64
	Checksum      string
	DocumentType  Type
	Status        Status
	ErrorMessage  string
	ExtractedData []byte
	ProcessedAt   *time.Time
}

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"image/heic":      true,
}

// IsSupportedContentType reports whether the vision model can read the content type
func IsSupportedContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return allowedContentTypes[ct]
}

func newDocument(userID uuid.UUID, fileName, contentType string, size int64, docType Type) (Document, error) {
	if userID == uuid.Nil {
		return Document{}, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, shared.NewDomainError("FILE_NAME_REQUIRED", "File name cannot be empty")
	}
	if !IsSupportedContentType(contentType) {
		return Document{}, shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE", "Only PDF and image documents are supported")
	}
	if size <= 0 {
		return Document{}, shared.NewDomainError("EMPTY_DOCUMENT", "Document is empty")
	}
	if !docType.IsValid() {
		return Document{}, shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Unknown document type")
	}
	return Document{
		OwnedAggregate: shared.NewOwnedAggregate(userID),
		FileName:       fileName,
		ContentType:    contentType,
		SizeBytes:      size,
		DocumentType:   docType,
		Status:         StatusPending,
	}, nil
}

// AttachObject records where the bytes were stored
func (d *Document) AttachObject(storageKey, checksum string) {
	d.StorageKey = storageKey
	d.Checksum = checksum
	d.Touch()
}

// StaleProcessingAfter is how long a PROCESSING document may go untouched
// before another extraction may take it over
var StaleProcessingAfter = 15 * time.Minute

// StartProcessing marks the document as being extracted. A PROCESSING
// document whose run was lost can be restarted once it is stale.
func (d *Document) StartProcessing() error {
	stale := d.Status == StatusProcessing && time.Since(d.UpdatedAt) > StaleProcessingAfter
	if !stale && !d.Status.CanTransitionTo(StatusProcessing) {
		return shared.ErrInvalidState.WithMessage("Document is already being processed")
	}
	d.Status = StatusProcessing
	d.ErrorMessage = ""
	d.Touch()
	return nil
}

// Complete stores the extraction output
func (d *Document) Complete(extracted []byte) error {
	if !d.Status.CanTransitionTo(StatusCompleted) {
		return shared.ErrInvalidState.WithMessage("Document is not being processed")
	}
	now := time.Now()
	d.Status = StatusCompleted
	d.ExtractedData = extracted
	d.ProcessedAt = &now
	d.Touch()
	return nil
}

// Fail records an extraction error
func (d *Document) Fail(message string) error {
	if !d.Status.CanTransitionTo(StatusFailed) {
		return shared.ErrInvalidState.WithMessage("Document is not being processed")
	}
	now := time.Now()
	d.Status = StatusFailed
	d.ErrorMessage = message
	d.ProcessedAt = &now
	d.Touch()
	return nil
}

// IsExtracted reports whether extraction output is available
func (d *Document) IsExtracted() bool {
	return d.Status == StatusCompleted && len(d.ExtractedData) > 0
}

// SourceDocument is the reference side of a document comparison,
// stored in compare_source_document
type SourceDocument struct {
	Document
}

// NewSourceDocument creates a pending source document
func NewSourceDocument(userID uuid.UUID, fileName, contentType string, size int64, docType Type) (*SourceDocument, error) {
	doc, err := newDocument(userID, fileName, contentType, size, docType)
	if err != nil {
		return nil, err
	}
	return &SourceDocument{Document: doc}, nil
}

// TargetDocument is compared against a source document,
// stored in compare_target_docs
type TargetDocument struct {
	Document
	SourceID      uuid.UUID
	MatchScore    *int
	MatchStatus   string
	Discrepancies []byte
}

// NewTargetDocument creates a pending target attached to a source
func NewTargetDocument(userID, sourceID uuid.UUID, fileName, contentType string, size int64, docType Type) (*TargetDocument, error) {
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("SOURCE_REQUIRED", "Target documents must reference a source document")
	}
	doc, err := newDocument(userID, fileName, contentType, size, docType)
	if err != nil {
		return nil, err
	}
	return &TargetDocument{Document: doc, SourceID: sourceID}, nil
}

// RecordMatch stores the outcome of comparing the target with its source
func (t *TargetDocument) RecordMatch(score int, status string, discrepancies []byte) {
	t.MatchScore = &score
	t.MatchStatus = status
	t.Discrepancies = discrepancies
	t.Touch()
}
