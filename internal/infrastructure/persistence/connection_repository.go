package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormConnectionRepository implements ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

var _ connector.ConnectionRepository = (*GormConnectionRepository)(nil)

// FindByIDForUser finds a connection by ID
func (r *GormConnectionRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*connector.Connection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByProvider finds the user's connection to a provider
func (r *GormConnectionRepository) FindByProvider(ctx context.Context, userID uuid.UUID, provider connector.Provider) (*connector.Connection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Where("provider = ?", provider).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's connections
func (r *GormConnectionRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]connector.Connection, error) {
	var connModels []models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Scopes(UserScope(userID)).
		Order("provider ASC").
		Find(&connModels).Error; err != nil {
		return nil, err
	}
	conns := make([]connector.Connection, len(connModels))
	for i := range connModels {
		conns[i] = *connModels[i].ToDomain()
	}
	return conns, nil
}

// Save creates or updates a connection keyed by (user_id, provider)
func (r *GormConnectionRepository) Save(ctx context.Context, conn *connector.Connection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ConnectionModel
		err := tx.Select("id", "created_at", "version").
			Where("user_id = ? AND provider = ?", conn.UserID, conn.Provider).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.ID != conn.ID {
				conn.ID = existing.ID
				conn.CreatedAt = existing.CreatedAt
				conn.Version = existing.Version + 1
			}
			conn.UpdatedAt = time.Now()
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Save(models.ConnectionModelFromDomain(conn)).Error
	})
}

// DeleteForUser deletes a connection and with it the stored tokens
func (r *GormConnectionRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(UserScope(userID)).Delete(&models.ConnectionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
