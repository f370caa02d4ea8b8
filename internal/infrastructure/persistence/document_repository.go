package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSourceDocumentRepository implements SourceDocumentRepository using GORM
type GormSourceDocumentRepository struct {
	db *gorm.DB
}

// NewGormSourceDocumentRepository creates a new GormSourceDocumentRepository
func NewGormSourceDocumentRepository(db *gorm.DB) *GormSourceDocumentRepository {
	return &GormSourceDocumentRepository{db: db}
}

var _ document.SourceDocumentRepository = (*GormSourceDocumentRepository)(nil)

// FindByIDForUser finds a source document by ID
func (r *GormSourceDocumentRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*document.SourceDocument, error) {
	var model models.SourceDocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's source documents
func (r *GormSourceDocumentRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]document.SourceDocument, error) {
	var docModels []models.SourceDocumentModel
	query := r.db.WithContext(ctx).Model(&models.SourceDocumentModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter, DocumentSortFields)

	if err := query.Find(&docModels).Error; err != nil {
		return nil, err
	}
	docs := make([]document.SourceDocument, len(docModels))
	for i := range docModels {
		docs[i] = *docModels[i].ToDomain()
	}
	return docs, nil
}

// CountForUser counts a user's source documents matching the filter
func (r *GormSourceDocumentRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.SourceDocumentModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a source document
func (r *GormSourceDocumentRepository) Save(ctx context.Context, doc *document.SourceDocument) error {
	return r.db.WithContext(ctx).Save(models.SourceDocumentModelFromDomain(doc)).Error
}

// DeleteForUser deletes a source document with its targets and extracted tables
func (r *GormSourceDocumentRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(UserScope(userID)).Delete(&models.SourceDocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		var targetIDs []uuid.UUID
		if err := tx.Model(&models.TargetDocumentModel{}).
			Scopes(UserScope(userID)).
			Where("source_id = ?", id).
			Pluck("id", &targetIDs).Error; err != nil {
			return err
		}
		docIDs := append(targetIDs, id)
		if err := tx.Scopes(UserScope(userID)).
			Where("document_id IN ?", docIDs).
			Delete(&models.ExtractedTableModel{}).Error; err != nil {
			return err
		}
		return tx.Scopes(UserScope(userID)).
			Where("source_id = ?", id).
			Delete(&models.TargetDocumentModel{}).Error
	})
}

func (r *GormSourceDocumentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where(`LOWER(file_name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	if status, ok := filterString(filter.Filters, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if docType, ok := filterString(filter.Filters, "document_type"); ok {
		query = query.Where("document_type = ?", docType)
	}
	return query
}

// GormTargetDocumentRepository implements TargetDocumentRepository using GORM
type GormTargetDocumentRepository struct {
	db *gorm.DB
}

// NewGormTargetDocumentRepository creates a new GormTargetDocumentRepository
func NewGormTargetDocumentRepository(db *gorm.DB) *GormTargetDocumentRepository {
	return &GormTargetDocumentRepository{db: db}
}

var _ document.TargetDocumentRepository = (*GormTargetDocumentRepository)(nil)

// FindByIDForUser finds a target document by ID
func (r *GormTargetDocumentRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*document.TargetDocument, error) {
	var model models.TargetDocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySource returns the targets uploaded against a source, oldest first
func (r *GormTargetDocumentRepository) FindBySource(ctx context.Context, userID, sourceID uuid.UUID) ([]document.TargetDocument, error) {
	var docModels []models.TargetDocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("source_id = ?", sourceID).
		Order("created_at ASC").
		Find(&docModels).Error; err != nil {
		return nil, err
	}
	docs := make([]document.TargetDocument, len(docModels))
	for i := range docModels {
		docs[i] = *docModels[i].ToDomain()
	}
	return docs, nil
}

// Save creates or updates a target document
func (r *GormTargetDocumentRepository) Save(ctx context.Context, doc *document.TargetDocument) error {
	return r.db.WithContext(ctx).Save(models.TargetDocumentModelFromDomain(doc)).Error
}

// GormExtractedTableRepository implements ExtractedTableRepository using GORM
type GormExtractedTableRepository struct {
	db *gorm.DB
}

// NewGormExtractedTableRepository creates a new GormExtractedTableRepository
func NewGormExtractedTableRepository(db *gorm.DB) *GormExtractedTableRepository {
	return &GormExtractedTableRepository{db: db}
}

var _ document.ExtractedTableRepository = (*GormExtractedTableRepository)(nil)

// ReplaceForDocument swaps a document's tables for a new set in one transaction
func (r *GormExtractedTableRepository) ReplaceForDocument(ctx context.Context, userID, documentID uuid.UUID, tables []document.ExtractedTable) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(UserScope(userID)).
			Where("document_id = ?", documentID).
			Delete(&models.ExtractedTableModel{}).Error; err != nil {
			return err
		}
		if len(tables) == 0 {
			return nil
		}
		tableModels := make([]*models.ExtractedTableModel, len(tables))
		for i := range tables {
			tables[i].UserID = userID
			tables[i].DocumentID = documentID
			tableModels[i] = models.ExtractedTableModelFromDomain(&tables[i])
		}
		return tx.Create(&tableModels).Error
	})
}

// FindByDocument returns a document's tables in extraction order
func (r *GormExtractedTableRepository) FindByDocument(ctx context.Context, userID, documentID uuid.UUID) ([]document.ExtractedTable, error) {
	var tableModels []models.ExtractedTableModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("document_id = ?", documentID).
		Order("table_index ASC").
		Find(&tableModels).Error; err != nil {
		return nil, err
	}
	tables := make([]document.ExtractedTable, len(tableModels))
	for i := range tableModels {
		tables[i] = *tableModels[i].ToDomain()
	}
	return tables, nil
}
