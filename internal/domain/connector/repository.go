package connector

import (
	"context"

	"github.com/google/uuid"
)

// ConnectionRepository persists source connections
type ConnectionRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Connection, error)
	FindByProvider(ctx context.Context, userID uuid.UUID, provider Provider) (*Connection, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Connection, error)
	// Save upserts on (user_id, provider)
	Save(ctx context.Context, conn *Connection) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}
