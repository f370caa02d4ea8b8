package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// SourceDocumentRepository persists source documents
type SourceDocumentRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*SourceDocument, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]SourceDocument, error)
	CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, doc *SourceDocument) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}

// TargetDocumentRepository persists target documents
type TargetDocumentRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*TargetDocument, error)
	FindBySource(ctx context.Context, userID, sourceID uuid.UUID) ([]TargetDocument, error)
	Save(ctx context.Context, doc *TargetDocument) error
}

// ExtractedTableRepository persists tables pulled out of documents
type ExtractedTableRepository interface {
	// ReplaceForDocument deletes the document's previous tables and stores the new set
	ReplaceForDocument(ctx context.Context, userID, documentID uuid.UUID, tables []ExtractedTable) error
	FindByDocument(ctx context.Context, userID, documentID uuid.UUID) ([]ExtractedTable, error)
}
