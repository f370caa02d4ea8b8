package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormComparisonRepository implements matching.ResultRepository using GORM
type GormComparisonRepository struct {
	db *gorm.DB
}

// NewGormComparisonRepository creates a new GormComparisonRepository
func NewGormComparisonRepository(db *gorm.DB) *GormComparisonRepository {
	return &GormComparisonRepository{db: db}
}

var _ matching.ResultRepository = (*GormComparisonRepository)(nil)

// FindByIDForUser finds a comparison result by ID
func (r *GormComparisonRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*matching.Result, error) {
	var model models.ComparisonModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByPair finds the stored comparison of a PO and an invoice
func (r *GormComparisonRepository) FindByPair(ctx context.Context, userID, poID, invoiceID uuid.UUID) (*matching.Result, error) {
	var model models.ComparisonModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("purchase_order_id = ? AND invoice_id = ?", poID, invoiceID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's comparison results
func (r *GormComparisonRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]matching.Result, error) {
	var resultModels []models.ComparisonModel
	query := r.db.WithContext(ctx).Model(&models.ComparisonModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter, ComparisonSortFields)

	if err := query.Find(&resultModels).Error; err != nil {
		return nil, err
	}
	results := make([]matching.Result, len(resultModels))
	for i := range resultModels {
		results[i] = *resultModels[i].ToDomain()
	}
	return results, nil
}

// CountForUser counts a user's comparison results matching the filter
func (r *GormComparisonRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ComparisonModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a result keyed by (user_id, purchase_order_id, invoice_id)
func (r *GormComparisonRepository) Save(ctx context.Context, result *matching.Result) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ComparisonModel
		err := tx.Select("id", "created_at", "version").
			Where("user_id = ? AND purchase_order_id = ? AND invoice_id = ?",
				result.UserID, result.PurchaseOrderID, result.InvoiceID).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.ID != result.ID {
				result.ID = existing.ID
				result.CreatedAt = existing.CreatedAt
				result.Version = existing.Version + 1
			}
			result.UpdatedAt = time.Now()
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Save(models.ComparisonModelFromDomain(result)).Error
	})
}

// DeleteForUser deletes a comparison result
func (r *GormComparisonRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(UserScope(userID)).Delete(&models.ComparisonModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilterWithoutPagination applies search and filters without paging
func (r *GormComparisonRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(po_number) LIKE ? ESCAPE '\' OR LOWER(invoice_number) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	if status, ok := filterString(filter.Filters, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if statuses, ok := filter.Filters["statuses"].([]string); ok && len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if v, ok := filter.Filters["purchase_order_id"].(uuid.UUID); ok {
		query = query.Where("purchase_order_id = ?", v)
	}
	if v, ok := filter.Filters["invoice_id"].(uuid.UUID); ok {
		query = query.Where("invoice_id = ?", v)
	}
	if v, ok := filterString(filter.Filters, "min_score"); ok {
		if score, err := strconv.Atoi(v); err == nil {
			query = query.Where("confidence_score >= ?", score)
		}
	}
	return query
}
