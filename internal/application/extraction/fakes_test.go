package extraction

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type fakeSources struct {
	mu   sync.Mutex
	docs map[uuid.UUID]document.SourceDocument
	// failCompleted is returned once by the next save of a COMPLETED document
	failCompleted error
}

func (f *fakeSources) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*document.SourceDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return &d, nil
}

func (f *fakeSources) FindAllForUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]document.SourceDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []document.SourceDocument
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSources) CountForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	all, _ := f.FindAllForUser(ctx, userID, filter)
	return int64(len(all)), nil
}

func (f *fakeSources) Save(ctx context.Context, doc *document.SourceDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCompleted != nil && doc.Status == document.StatusCompleted {
		err := f.failCompleted
		f.failCompleted = nil
		return err
	}
	f.docs[doc.ID] = *doc
	return nil
}

func (f *fakeSources) DeleteForUser(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.UserID != userID {
		return shared.ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

type fakeTargets struct {
	mu   sync.Mutex
	docs map[uuid.UUID]document.TargetDocument
}

func (f *fakeTargets) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*document.TargetDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return &d, nil
}

func (f *fakeTargets) FindBySource(_ context.Context, userID, sourceID uuid.UUID) ([]document.TargetDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []document.TargetDocument
	for _, d := range f.docs {
		if d.UserID == userID && d.SourceID == sourceID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeTargets) Save(_ context.Context, doc *document.TargetDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = *doc
	return nil
}

type fakeTables struct {
	mu     sync.Mutex
	tables map[uuid.UUID][]document.ExtractedTable
	// failNext is returned once by the next replace
	failNext error
}

func (f *fakeTables) ReplaceForDocument(_ context.Context, _, documentID uuid.UUID, tables []document.ExtractedTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.tables[documentID] = tables
	return nil
}

func (f *fakeTables) FindByDocument(_ context.Context, _, documentID uuid.UUID) ([]document.ExtractedTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[documentID], nil
}

// recordingPORepo and recordingInvoiceRepo only implement Save; the pipeline
// never reads procurement rows
type recordingPORepo struct {
	procurement.PurchaseOrderRepository
	saved []*procurement.PurchaseOrder
}

func (r *recordingPORepo) Save(_ context.Context, po *procurement.PurchaseOrder) error {
	r.saved = append(r.saved, po)
	return nil
}

type recordingInvoiceRepo struct {
	procurement.InvoiceRepository
	saved []*procurement.Invoice
}

func (r *recordingInvoiceRepo) Save(_ context.Context, inv *procurement.Invoice) error {
	r.saved = append(r.saved, inv)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func (f *fakeStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://storage.test/" + key, time.Now().Add(expiresIn), nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

// MockExtractor is a mock implementation of DocumentExtractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte, mimeType string, docType document.Type) (*document.Extraction, error) {
	args := m.Called(ctx, data, mimeType, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Extraction), args.Error(1)
}
