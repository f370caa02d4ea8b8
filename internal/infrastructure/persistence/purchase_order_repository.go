package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}

// FindByIDForUser finds a purchase order by ID within a user's records
func (r *GormPurchaseOrderRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Preload("LineItems", preloadLines).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByPONumber finds a purchase order by its PO number
func (r *GormPurchaseOrderRepository) FindByPONumber(ctx context.Context, userID uuid.UUID, poNumber string) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Preload("LineItems", preloadLines).
		Where("po_number = ?", poNumber).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's purchase orders with filtering and paging
func (r *GormPurchaseOrderRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var poModels []models.PurchaseOrderModel
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter, PurchaseOrderSortFields)

	if err := query.Preload("LineItems", preloadLines).Find(&poModels).Error; err != nil {
		return nil, err
	}
	return toPurchaseOrders(poModels), nil
}

// FindByVendor returns POs whose vendor name contains vendor, case-insensitively
func (r *GormPurchaseOrderRepository) FindByVendor(ctx context.Context, userID uuid.UUID, vendor string) ([]procurement.PurchaseOrder, error) {
	var poModels []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Preload("LineItems", preloadLines).
		Where(`LOWER(vendor_name) LIKE ? ESCAPE '\'`, likePattern(vendor)).
		Order("created_at DESC").
		Find(&poModels).Error; err != nil {
		return nil, err
	}
	return toPurchaseOrders(poModels), nil
}

// CountForUser counts a user's purchase orders matching the filter
func (r *GormPurchaseOrderRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a purchase order keyed by (user_id, po_number).
// An existing row keeps its ID and creation time; its line items are replaced.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PurchaseOrderModel
		err := tx.Select("id", "created_at", "version").
			Where("user_id = ? AND po_number = ?", po.UserID, po.PONumber).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.ID != po.ID {
				po.ID = existing.ID
				po.CreatedAt = existing.CreatedAt
				po.Version = existing.Version + 1
			}
			po.UpdatedAt = time.Now()
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		model := models.PurchaseOrderModelFromDomain(po)
		if err := tx.Omit("LineItems").Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_order_id = ?", po.ID).Delete(&models.POLineItemModel{}).Error; err != nil {
			return err
		}
		if len(model.LineItems) > 0 {
			if err := tx.Create(&model.LineItems).Error; err != nil {
				return err
			}
		}
		for i := range po.LineItems {
			po.LineItems[i].ID = model.LineItems[i].ID
		}
		return nil
	})
}

// DeleteForUser deletes a purchase order, its lines and comparisons that reference it
func (r *GormPurchaseOrderRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(UserScope(userID)).Delete(&models.PurchaseOrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Where("purchase_order_id = ?", id).Delete(&models.POLineItemModel{}).Error; err != nil {
			return err
		}
		return tx.Scopes(UserScope(userID)).
			Where("purchase_order_id = ?", id).
			Delete(&models.ComparisonModel{}).Error
	})
}

// applyFilterWithoutPagination applies search and filters without paging
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(po_number) LIKE ? ESCAPE '\' OR LOWER(vendor_name) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	if status, ok := filterString(filter.Filters, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if vendor, ok := filterString(filter.Filters, "vendor_name"); ok {
		query = query.Where(`LOWER(vendor_name) LIKE ? ESCAPE '\'`, likePattern(vendor))
	}
	if v, ok := filter.Filters["start_date"].(time.Time); ok {
		query = query.Where("po_date >= ?", v)
	}
	if v, ok := filter.Filters["end_date"].(time.Time); ok {
		query = query.Where("po_date <= ?", v)
	}
	if v, ok := filter.Filters["source_document_id"].(uuid.UUID); ok {
		query = query.Where("source_document_id = ?", v)
	}
	return query
}

func toPurchaseOrders(poModels []models.PurchaseOrderModel) []procurement.PurchaseOrder {
	pos := make([]procurement.PurchaseOrder, len(poModels))
	for i := range poModels {
		pos[i] = *poModels[i].ToDomain()
	}
	return pos
}
