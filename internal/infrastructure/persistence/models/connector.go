package models

import (
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/connector"
)

// ConnectionModel is the persistence model for source_connections
type ConnectionModel struct {
	OwnedModel
	Provider              connector.Provider `gorm:"type:varchar(30);not null;index"`
	AccountEmail          string             `gorm:"type:varchar(255)"`
	Scopes                []string           `gorm:"type:jsonb;serializer:json"`
	EncryptedAccessToken  []byte             `gorm:"type:bytea;not null"`
	EncryptedRefreshToken []byte             `gorm:"type:bytea"`
	TokenExpiresAt        *time.Time
	LastSyncedAt          *time.Time
}

// TableName returns the table name for GORM
func (ConnectionModel) TableName() string {
	return "source_connections"
}

// ToDomain converts the model to a domain Connection
func (m *ConnectionModel) ToDomain() *connector.Connection {
	scopes := m.Scopes
	if scopes == nil {
		scopes = make([]string, 0)
	}
	return &connector.Connection{
		OwnedAggregate:        m.ToDomainOwned(),
		Provider:              m.Provider,
		AccountEmail:          m.AccountEmail,
		Scopes:                scopes,
		EncryptedAccessToken:  m.EncryptedAccessToken,
		EncryptedRefreshToken: m.EncryptedRefreshToken,
		TokenExpiresAt:        m.TokenExpiresAt,
		LastSyncedAt:          m.LastSyncedAt,
	}
}

// ConnectionModelFromDomain creates a model from a domain Connection
func ConnectionModelFromDomain(c *connector.Connection) *ConnectionModel {
	m := &ConnectionModel{
		Provider:              c.Provider,
		AccountEmail:          c.AccountEmail,
		Scopes:                c.Scopes,
		EncryptedAccessToken:  c.EncryptedAccessToken,
		EncryptedRefreshToken: c.EncryptedRefreshToken,
		TokenExpiresAt:        c.TokenExpiresAt,
		LastSyncedAt:          c.LastSyncedAt,
	}
	m.FromDomainOwned(c.OwnedAggregate)
	return m
}

// All returns every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&SourceDocumentModel{},
		&TargetDocumentModel{},
		&ExtractedTableModel{},
		&PurchaseOrderModel{},
		&POLineItemModel{},
		&InvoiceModel{},
		&InvoiceLineItemModel{},
		&ComparisonModel{},
		&ConnectionModel{},
	}
}
