package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to a domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from a domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// OwnedModel holds the columns of a user-scoped aggregate root
type OwnedModel struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Version int       `gorm:"not null;default:1"`
}

// FromDomainOwned populates OwnedModel from a domain OwnedAggregate
func (m *OwnedModel) FromDomainOwned(a shared.OwnedAggregate) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.UserID = a.UserID
	m.Version = a.Version
}

// ToDomainOwned converts OwnedModel to a domain OwnedAggregate
func (m *OwnedModel) ToDomainOwned() shared.OwnedAggregate {
	return shared.OwnedAggregate{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Version:    m.Version,
	}
}

// jsonColumn maps an empty payload to NULL so jsonb columns never receive ""
func jsonColumn(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
