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

// noComparison selects invoices without a stored comparison row
const noComparison = `NOT EXISTS (SELECT 1 FROM compare_po_invoice_table c WHERE c.invoice_id = invoice_table.id AND c.user_id = invoice_table.user_id)`

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

var _ procurement.InvoiceRepository = (*GormInvoiceRepository)(nil)

// FindByIDForUser finds an invoice by ID within a user's records
func (r *GormInvoiceRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*procurement.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Preload("LineItems", preloadLines).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, userID uuid.UUID, invoiceNumber string) (*procurement.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Preload("LineItems", preloadLines).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's invoices with filtering and paging
func (r *GormInvoiceRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]procurement.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter, InvoiceSortFields)

	if err := query.Preload("LineItems", preloadLines).Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// FindUnmatched returns up to limit invoices with no comparison yet, oldest
// first. Paging is keyset on (created_at, id) so rows that stay unmatched do
// not hide the ones behind them.
func (r *GormInvoiceRepository) FindUnmatched(ctx context.Context, userID uuid.UUID, after *procurement.InvoiceCursor, limit int) ([]procurement.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Preload("LineItems", preloadLines).
		Where(noComparison)
	if after != nil {
		query = query.Where("(created_at > ? OR (created_at = ? AND id > ?))",
			after.CreatedAt, after.CreatedAt, after.ID)
	}
	query = query.Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// UsersWithUnmatched returns every user that owns at least one unmatched invoice
func (r *GormInvoiceRepository) UsersWithUnmatched(ctx context.Context) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where(noComparison).
		Distinct().
		Order("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

// CountForUser counts a user's invoices matching the filter
func (r *GormInvoiceRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(UserScope(userID))
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice keyed by (user_id, invoice_number).
// An existing row keeps its ID and creation time; its line items are replaced.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *procurement.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.InvoiceModel
		err := tx.Select("id", "created_at", "version").
			Where("user_id = ? AND invoice_number = ?", invoice.UserID, invoice.InvoiceNumber).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.ID != invoice.ID {
				invoice.ID = existing.ID
				invoice.CreatedAt = existing.CreatedAt
				invoice.Version = existing.Version + 1
			}
			invoice.UpdatedAt = time.Now()
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		model := models.InvoiceModelFromDomain(invoice)
		if err := tx.Omit("LineItems").Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
			return err
		}
		if len(model.LineItems) > 0 {
			if err := tx.Create(&model.LineItems).Error; err != nil {
				return err
			}
		}
		for i := range invoice.LineItems {
			invoice.LineItems[i].ID = model.LineItems[i].ID
		}
		return nil
	})
}

// DeleteForUser deletes an invoice, its lines and comparisons that reference it
func (r *GormInvoiceRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(UserScope(userID)).Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
			return err
		}
		return tx.Scopes(UserScope(userID)).
			Where("invoice_id = ?", id).
			Delete(&models.ComparisonModel{}).Error
	})
}

// applyFilterWithoutPagination applies search and filters without paging
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`LOWER(invoice_number) LIKE ? ESCAPE '\' OR LOWER(po_number) LIKE ? ESCAPE '\' OR LOWER(vendor_name) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}

	if poNumber, ok := filterString(filter.Filters, "po_number"); ok {
		query = query.Where("po_number = ?", poNumber)
	}
	if vendor, ok := filterString(filter.Filters, "vendor_name"); ok {
		query = query.Where(`LOWER(vendor_name) LIKE ? ESCAPE '\'`, likePattern(vendor))
	}
	if v, ok := filter.Filters["start_date"].(time.Time); ok {
		query = query.Where("invoice_date >= ?", v)
	}
	if v, ok := filter.Filters["end_date"].(time.Time); ok {
		query = query.Where("invoice_date <= ?", v)
	}
	if v, ok := filter.Filters["unmatched"].(bool); ok && v {
		query = query.Where(noComparison)
	}
	return query
}

func toInvoices(invoiceModels []models.InvoiceModel) []procurement.Invoice {
	invoices := make([]procurement.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices
}
