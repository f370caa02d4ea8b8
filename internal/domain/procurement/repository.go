package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*PurchaseOrder, error)
	FindByPONumber(ctx context.Context, userID uuid.UUID, poNumber string) (*PurchaseOrder, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)
	FindByVendor(ctx context.Context, userID uuid.UUID, vendor string) ([]PurchaseOrder, error)
	CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	// Save upserts on (user_id, po_number) and replaces the line items
	Save(ctx context.Context, po *PurchaseOrder) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}

// InvoiceCursor marks a position in creation order. CreatedAt ties are
// broken by ID.
type InvoiceCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// CursorOf returns the cursor just past inv
func CursorOf(inv *Invoice) *InvoiceCursor {
	return &InvoiceCursor{CreatedAt: inv.CreatedAt, ID: inv.ID}
}

// InvoiceRepository defines persistence for invoices
type InvoiceRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNumber(ctx context.Context, userID uuid.UUID, invoiceNumber string) (*Invoice, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	// FindUnmatched returns up to limit invoices with no stored comparison,
	// ordered by creation and starting after the cursor when one is given
	FindUnmatched(ctx context.Context, userID uuid.UUID, after *InvoiceCursor, limit int) ([]Invoice, error)
	// UsersWithUnmatched returns the owners of invoices without a comparison
	UsersWithUnmatched(ctx context.Context) ([]uuid.UUID, error)
	CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
	// Save upserts on (user_id, invoice_number) and replaces the line items
	Save(ctx context.Context, invoice *Invoice) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}
