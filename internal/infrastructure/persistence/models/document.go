package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
)

// DocumentColumns holds the columns shared by source and target documents
type DocumentColumns struct {
	FileName      string          `gorm:"type:varchar(255);not null"`
	ContentType   string          `gorm:"type:varchar(100);not null"`
	StorageKey    string          `gorm:"type:varchar(512)"`
	SizeBytes     int64           `gorm:"not null;default:0"`
	Checksum      string          `gorm:"type:varchar(64);index"`
	DocumentType  document.Type   `gorm:"type:varchar(30);not null"`
	Status        document.Status `gorm:"type:varchar(20);not null;index"`
	ErrorMessage  string          `gorm:"type:text"`
	ExtractedData []byte          `gorm:"type:jsonb"`
	ProcessedAt   *time.Time
}

func documentToDomain(owned OwnedModel, c DocumentColumns) document.Document {
	return document.Document{
		OwnedAggregate: owned.ToDomainOwned(),
		FileName:       c.FileName,
		ContentType:    c.ContentType,
		StorageKey:     c.StorageKey,
		SizeBytes:      c.SizeBytes,
		Checksum:       c.Checksum,
		DocumentType:   c.DocumentType,
		Status:         c.Status,
		ErrorMessage:   c.ErrorMessage,
		ExtractedData:  c.ExtractedData,
		ProcessedAt:    c.ProcessedAt,
	}
}

func documentColumnsFromDomain(d *document.Document) DocumentColumns {
	return DocumentColumns{
		FileName:      d.FileName,
		ContentType:   d.ContentType,
		StorageKey:    d.StorageKey,
		SizeBytes:     d.SizeBytes,
		Checksum:      d.Checksum,
		DocumentType:  d.DocumentType,
		Status:        d.Status,
		ErrorMessage:  d.ErrorMessage,
		ExtractedData: jsonColumn(d.ExtractedData),
		ProcessedAt:   d.ProcessedAt,
	}
}

// SourceDocumentModel is the persistence model for compare_source_document
type SourceDocumentModel struct {
	OwnedModel
	DocumentColumns
}

// TableName returns the table name for GORM
func (SourceDocumentModel) TableName() string {
	return "compare_source_document"
}

// ToDomain converts the model to a domain SourceDocument
func (m *SourceDocumentModel) ToDomain() *document.SourceDocument {
	return &document.SourceDocument{Document: documentToDomain(m.OwnedModel, m.DocumentColumns)}
}

// SourceDocumentModelFromDomain creates a model from a domain SourceDocument
func SourceDocumentModelFromDomain(d *document.SourceDocument) *SourceDocumentModel {
	m := &SourceDocumentModel{DocumentColumns: documentColumnsFromDomain(&d.Document)}
	m.FromDomainOwned(d.OwnedAggregate)
	return m
}

// TargetDocumentModel is the persistence model for compare_target_docs
type TargetDocumentModel struct {
	OwnedModel
	DocumentColumns
	SourceID      uuid.UUID `gorm:"type:uuid;not null;index"`
	MatchScore    *int
	MatchStatus   string `gorm:"type:varchar(20)"`
	Discrepancies []byte `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (TargetDocumentModel) TableName() string {
	return "compare_target_docs"
}

// ToDomain converts the model to a domain TargetDocument
func (m *TargetDocumentModel) ToDomain() *document.TargetDocument {
	return &document.TargetDocument{
		Document:      documentToDomain(m.OwnedModel, m.DocumentColumns),
		SourceID:      m.SourceID,
		MatchScore:    m.MatchScore,
		MatchStatus:   m.MatchStatus,
		Discrepancies: m.Discrepancies,
	}
}

// TargetDocumentModelFromDomain creates a model from a domain TargetDocument
func TargetDocumentModelFromDomain(d *document.TargetDocument) *TargetDocumentModel {
	m := &TargetDocumentModel{
		DocumentColumns: documentColumnsFromDomain(&d.Document),
		SourceID:        d.SourceID,
		MatchScore:      d.MatchScore,
		MatchStatus:     d.MatchStatus,
		Discrepancies:   jsonColumn(d.Discrepancies),
	}
	m.FromDomainOwned(d.OwnedAggregate)
	return m
}

// ExtractedTableModel is the persistence model for extracted_tables
type ExtractedTableModel struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID  `gorm:"type:uuid;not null;index"`
	TableIndex int        `gorm:"not null;default:0"`
	Title      string     `gorm:"type:varchar(255)"`
	Headers    []string   `gorm:"type:jsonb;serializer:json"`
	Rows       [][]string `gorm:"type:jsonb;serializer:json"`
	Confidence float64    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ExtractedTableModel) TableName() string {
	return "extracted_tables"
}

// ToDomain converts the model to a domain ExtractedTable
func (m *ExtractedTableModel) ToDomain() *document.ExtractedTable {
	return &document.ExtractedTable{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		DocumentID: m.DocumentID,
		TableIndex: m.TableIndex,
		Title:      m.Title,
		Headers:    m.Headers,
		Rows:       m.Rows,
		Confidence: m.Confidence,
	}
}

// ExtractedTableModelFromDomain creates a model from a domain ExtractedTable
func ExtractedTableModelFromDomain(t *document.ExtractedTable) *ExtractedTableModel {
	m := &ExtractedTableModel{
		UserID:     t.UserID,
		DocumentID: t.DocumentID,
		TableIndex: t.TableIndex,
		Title:      t.Title,
		Headers:    t.Headers,
		Rows:       t.Rows,
		Confidence: t.Confidence,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
