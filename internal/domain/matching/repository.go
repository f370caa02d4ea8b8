package matching

import (
	"context"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// ResultRepository persists comparison results
type ResultRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Result, error)
	FindByPair(ctx context.Context, userID, poID, invoiceID uuid.UUID) (*Result, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Result, error)
	CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	// Save upserts on (user_id, purchase_order_id, invoice_id)
	Save(ctx context.Context, result *Result) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}
