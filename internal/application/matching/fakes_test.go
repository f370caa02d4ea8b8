package matching

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

type fakePurchaseOrders struct {
	mu        sync.Mutex
	items     []*procurement.PurchaseOrder
	vendorErr map[string]error
}

func (f *fakePurchaseOrders) add(po *procurement.PurchaseOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, po)
}

func (f *fakePurchaseOrders) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, po := range f.items {
		if po.UserID == userID && po.ID == id {
			return po, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakePurchaseOrders) FindByPONumber(_ context.Context, userID uuid.UUID, poNumber string) (*procurement.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, po := range f.items {
		if po.UserID == userID && po.PONumber == poNumber {
			return po, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakePurchaseOrders) FindAllForUser(_ context.Context, userID uuid.UUID, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]procurement.PurchaseOrder, 0)
	status, _ := filter.Filters["status"].(string)
	for _, po := range f.items {
		if po.UserID != userID || (status != "" && string(po.Status) != status) {
			continue
		}
		out = append(out, *po)
	}
	return out, nil
}

func (f *fakePurchaseOrders) FindByVendor(_ context.Context, userID uuid.UUID, vendor string) ([]procurement.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.vendorErr[vendor]; err != nil {
		return nil, err
	}
	out := make([]procurement.PurchaseOrder, 0)
	for _, po := range f.items {
		if po.UserID == userID && strings.Contains(strings.ToLower(po.VendorName), strings.ToLower(vendor)) {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (f *fakePurchaseOrders) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	items, err := f.FindAllForUser(ctx, userID, filter)
	return int64(len(items)), err
}

func (f *fakePurchaseOrders) Save(_ context.Context, po *procurement.PurchaseOrder) error {
	f.add(po)
	return nil
}

func (f *fakePurchaseOrders) DeleteForUser(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type fakeInvoices struct {
	items          []*procurement.Invoice
	unmatchedErr   error
	unmatchedCalls int
	results        *fakeResults
}

func (f *fakeInvoices) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*procurement.Invoice, error) {
	for _, inv := range f.items {
		if inv.UserID == userID && inv.ID == id {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeInvoices) FindByInvoiceNumber(_ context.Context, userID uuid.UUID, number string) (*procurement.Invoice, error) {
	for _, inv := range f.items {
		if inv.UserID == userID && inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeInvoices) FindAllForUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]procurement.Invoice, error) {
	out := make([]procurement.Invoice, 0)
	for _, inv := range f.items {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvoices) FindUnmatched(_ context.Context, userID uuid.UUID, after *procurement.InvoiceCursor, limit int) ([]procurement.Invoice, error) {
	if f.unmatchedErr != nil {
		return nil, f.unmatchedErr
	}
	f.unmatchedCalls++
	ordered := slices.Clone(f.items)
	slices.SortStableFunc(ordered, func(a, b *procurement.Invoice) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	out := make([]procurement.Invoice, 0)
	for _, inv := range ordered {
		if inv.UserID != userID || f.results.hasInvoice(inv.ID) {
			continue
		}
		if after != nil && !afterCursor(inv, after) {
			continue
		}
		out = append(out, *inv)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func afterCursor(inv *procurement.Invoice, c *procurement.InvoiceCursor) bool {
	if !inv.CreatedAt.Equal(c.CreatedAt) {
		return inv.CreatedAt.After(c.CreatedAt)
	}
	return inv.ID.String() > c.ID.String()
}

func (f *fakeInvoices) UsersWithUnmatched(context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeInvoices) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	items, err := f.FindAllForUser(ctx, userID, filter)
	return int64(len(items)), err
}

func (f *fakeInvoices) Save(_ context.Context, inv *procurement.Invoice) error {
	f.items = append(f.items, inv)
	return nil
}

func (f *fakeInvoices) DeleteForUser(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type fakeResults struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]matching.Result
	lastFilter  shared.Filter
	saveErr     error
	saveCounter int
}

func newFakeResults() *fakeResults {
	return &fakeResults{rows: make(map[uuid.UUID]matching.Result)}
}

func (f *fakeResults) hasInvoice(invoiceID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.InvoiceID == invoiceID {
			return true
		}
	}
	return false
}

func (f *fakeResults) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*matching.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return &r, nil
}

func (f *fakeResults) FindByPair(_ context.Context, userID, poID, invoiceID uuid.UUID) (*matching.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID && r.PurchaseOrderID == poID && r.InvoiceID == invoiceID {
			return &r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeResults) FindAllForUser(_ context.Context, userID uuid.UUID, filter shared.Filter) ([]matching.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := make([]matching.Result, 0)
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResults) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	items, err := f.FindAllForUser(ctx, userID, filter)
	return int64(len(items)), err
}

func (f *fakeResults) Save(_ context.Context, r *matching.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCounter++
	f.rows[r.ID] = *r
	return nil
}

func (f *fakeResults) DeleteForUser(_ context.Context, _, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}
