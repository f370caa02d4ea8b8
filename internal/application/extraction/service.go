package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// failureSaveTimeout bounds the write of a FAILED status after the request is gone
const failureSaveTimeout = 10 * time.Second

// Config holds the limits of the document pipeline
type Config struct {
	MaxUploadSize int64
	CacheTTL      time.Duration
	URLExpiry     time.Duration
}

// Repositories groups the persistence the pipeline writes to
type Repositories struct {
	Sources        document.SourceDocumentRepository
	Targets        document.TargetDocumentRepository
	Tables         document.ExtractedTableRepository
	PurchaseOrders procurement.PurchaseOrderRepository
	Invoices       procurement.InvoiceRepository
}

// Service handles document upload, extraction, import and comparison
type Service struct {
	repos     Repositories
	store     DocumentStore
	extractor DocumentExtractor
	matcher   *matching.Matcher
	cfg       Config
	cache     ExtractionCache
	metrics   *telemetry.MatchingMetrics
	logger    *zap.Logger
}

// NewService creates a new extraction Service
func NewService(repos Repositories, store DocumentStore, extractor DocumentExtractor, matcher *matching.Matcher, cfg Config) *Service {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 20 << 20
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	return &Service{
		repos:     repos,
		store:     store,
		extractor: extractor,
		matcher:   matcher,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
}

// SetCache enables the extraction cache. A nil cache disables it.
func (s *Service) SetCache(cache ExtractionCache) {
	s.cache = cache
}

// SetMetrics sets the business metrics collector
func (s *Service) SetMetrics(m *telemetry.MatchingMetrics) {
	s.metrics = m
}

// SetLogger sets the service logger
func (s *Service) SetLogger(logger *zap.Logger) {
	s.logger = logger.Named("extraction")
}

// CacheKey identifies an extraction by content hash and document type
func CacheKey(data []byte, docType document.Type) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ":" + string(docType)
}

// Upload stores the file and creates a pending source or target document
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, in UploadInput) (*DocumentResponse, error) {
	if int64(len(in.Data)) > s.cfg.MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(in.Data)
	}
	docType, err := documentTypeFor(in.Role, in.DocumentType)
	if err != nil {
		return nil, err
	}

	ref, err := s.newDocument(ctx, userID, in, contentType, docType)
	if err != nil {
		return nil, err
	}
	doc := ref.doc()

	key := document.StorageKey(userID, doc.ID, doc.FileName)
	if err := s.store.Upload(ctx, key, in.Data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	sum := sha256.Sum256(in.Data)
	doc.AttachObject(key, hex.EncodeToString(sum[:]))

	if err := s.save(ctx, ref); err != nil {
		if delErr := s.store.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("role", string(ref.role())),
		zap.Int64("size_bytes", doc.SizeBytes),
	)
	resp := ref.response()
	return &resp, nil
}

func documentTypeFor(role Role, raw string) (document.Type, error) {
	if raw == "" {
		if role == RoleTarget {
			return document.TypeInvoice, nil
		}
		return document.TypePurchaseOrder, nil
	}
	return document.ParseType(raw)
}

func (s *Service) newDocument(ctx context.Context, userID uuid.UUID, in UploadInput, contentType string, docType document.Type) (docRef, error) {
	size := int64(len(in.Data))
	switch in.Role {
	case "", RoleSource:
		src, err := document.NewSourceDocument(userID, in.FileName, contentType, size, docType)
		if err != nil {
			return docRef{}, err
		}
		return docRef{source: src}, nil
	case RoleTarget:
		if in.SourceID == nil {
			return docRef{}, shared.NewDomainError("SOURCE_REQUIRED", "Target documents must reference a source document")
		}
		if _, err := s.repos.Sources.FindByIDForUser(ctx, userID, *in.SourceID); err != nil {
			return docRef{}, err
		}
		tgt, err := document.NewTargetDocument(userID, *in.SourceID, in.FileName, contentType, size, docType)
		if err != nil {
			return docRef{}, err
		}
		return docRef{target: tgt}, nil
	}
	return docRef{}, ErrInvalidRole
}

// Extract runs the vision model over a document and stores the result.
// Once the document is marked PROCESSING every error ends in a persisted
// FAILED status, so the document can be extracted again.
func (s *Service) Extract(ctx context.Context, userID, documentID uuid.UUID) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "extraction", "extract",
		attribute.String("document_id", documentID.String()))
	defer span.End()

	ref, err := s.find(ctx, userID, documentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	doc := ref.doc()
	if err := doc.StartProcessing(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, ref); err != nil {
		return nil, err
	}
	processing := *doc

	if err := s.complete(ctx, ref); err != nil {
		telemetry.RecordError(span, err)
		*doc = processing
		s.fail(ctx, ref, err)
		var de *shared.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, ErrExtractionFailed.WithMessage("Document extraction failed: " + err.Error())
	}

	s.metrics.RecordExtraction(ctx, string(doc.DocumentType), "completed")
	telemetry.SetOK(span)

	resp := ref.response()
	tables, err := s.repos.Tables.FindByDocument(ctx, userID, doc.ID)
	if err != nil {
		return nil, err
	}
	resp.Tables = toTableResponses(tables)
	return &resp, nil
}

// complete extracts a PROCESSING document and persists the tables and the
// COMPLETED status
func (s *Service) complete(ctx context.Context, ref docRef) error {
	doc := ref.doc()
	extracted, err := s.runExtraction(ctx, doc)
	if err != nil {
		return err
	}
	if err := s.repos.Tables.ReplaceForDocument(ctx, doc.UserID, doc.ID, tablesOf(doc.UserID, doc.ID, extracted)); err != nil {
		return fmt.Errorf("failed to store extracted tables: %w", err)
	}
	data, err := extracted.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode extraction: %w", err)
	}
	if err := doc.Complete(data); err != nil {
		return err
	}
	if err := s.save(ctx, ref); err != nil {
		return fmt.Errorf("failed to store extraction: %w", err)
	}
	return nil
}

// fail records cause on the document. The write outlives a cancelled
// request so the document does not stay PROCESSING.
func (s *Service) fail(ctx context.Context, ref docRef, cause error) {
	doc := ref.doc()
	s.logger.Warn("Extraction failed",
		zap.String("document_id", doc.ID.String()),
		zap.Error(cause),
	)
	s.metrics.RecordExtraction(ctx, string(doc.DocumentType), "failed")
	if err := doc.Fail(cause.Error()); err != nil {
		s.logger.Error("Failed to mark extraction failure", zap.Error(err))
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureSaveTimeout)
	defer cancel()
	if err := s.save(saveCtx, ref); err != nil {
		s.logger.Error("Failed to record extraction failure",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) runExtraction(ctx context.Context, doc *document.Document) (*document.Extraction, error) {
	data, err := s.store.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download document: %w", err)
	}

	key := CacheKey(data, doc.DocumentType)
	if cached, ok := s.cachedExtraction(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	extracted, err := s.extractor.Extract(ctx, data, doc.ContentType, doc.DocumentType)
	s.metrics.RecordModelLatency(ctx, string(doc.DocumentType), time.Since(start))
	if err != nil {
		return nil, err
	}
	if extracted.DocumentType == "" || !extracted.DocumentType.IsValid() {
		extracted.DocumentType = doc.DocumentType
	}

	if s.cache != nil {
		if encoded, err := extracted.Marshal(); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("Failed to cache extraction", zap.Error(err))
			}
		}
	}
	return extracted, nil
}

func (s *Service) cachedExtraction(ctx context.Context, key string) (*document.Extraction, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Extraction cache lookup failed", zap.Error(err))
		return nil, false
	}
	s.metrics.RecordCacheLookup(ctx, ok)
	if !ok {
		return nil, false
	}
	extracted, err := document.UnmarshalExtraction(data)
	if err != nil {
		s.logger.Warn("Discarding unreadable cached extraction", zap.Error(err))
		return nil, false
	}
	s.logger.Debug("Extraction cache hit", zap.String("key", key))
	return extracted, true
}

func tablesOf(userID, documentID uuid.UUID, e *document.Extraction) []document.ExtractedTable {
	data := e.Tables
	if len(data) == 0 {
		if lines, ok := e.LineItemTable(); ok {
			data = []document.TableData{lines}
		}
	}
	tables := make([]document.ExtractedTable, 0, len(data))
	for i, t := range data {
		tables = append(tables, *document.NewExtractedTable(userID, documentID, i, t.Title, t.Headers, t.Rows, t.Confidence))
	}
	return tables
}

// Import turns a completed extraction into a purchase order or invoice row.
// Re-importing the same document number updates the existing row.
func (s *Service) Import(ctx context.Context, userID, documentID uuid.UUID) (*ImportResponse, error) {
	ref, err := s.find(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	doc := ref.doc()
	if !doc.IsExtracted() {
		return nil, ErrNotExtracted
	}
	extracted, err := document.UnmarshalExtraction(doc.ExtractedData)
	if err != nil {
		return nil, err
	}
	if extracted.DocumentNumber == "" {
		return nil, ErrDocumentNumberEmpty
	}

	lines := s.lineItemsOf(extracted)
	switch extracted.DocumentType {
	case document.TypePurchaseOrder:
		po, err := procurement.NewPurchaseOrder(userID, extracted.DocumentNumber, extracted.VendorName, extracted.DocumentDate, extracted.TotalAmount)
		if err != nil {
			return nil, err
		}
		if err := po.SetCurrency(extracted.Currency); err != nil {
			return nil, err
		}
		po.SetLineItems(lines)
		po.LinkSourceDocument(doc.ID)
		po.RawData = doc.ExtractedData
		if err := s.repos.PurchaseOrders.Save(ctx, po); err != nil {
			return nil, err
		}
		return &ImportResponse{DocumentID: doc.ID, RecordType: string(document.TypePurchaseOrder),
			RecordID: po.ID, Number: po.PONumber, LineCount: len(po.LineItems)}, nil

	case document.TypeInvoice:
		inv, err := procurement.NewInvoice(userID, extracted.DocumentNumber, extracted.VendorName, extracted.DocumentDate, extracted.TotalAmount)
		if err != nil {
			return nil, err
		}
		inv.SetPONumber(extracted.PONumber)
		if err := inv.SetDueDate(extracted.DueDate); err != nil {
			return nil, err
		}
		if err := inv.SetCurrency(extracted.Currency); err != nil {
			return nil, err
		}
		if err := inv.SetAmounts(extracted.Subtotal, extracted.TaxAmount); err != nil {
			return nil, err
		}
		inv.SetLineItems(lines)
		inv.LinkSourceDocument(doc.ID)
		inv.RawData = doc.ExtractedData
		if err := s.repos.Invoices.Save(ctx, inv); err != nil {
			return nil, err
		}
		return &ImportResponse{DocumentID: doc.ID, RecordType: string(document.TypeInvoice),
			RecordID: inv.ID, Number: inv.InvoiceNumber, LineCount: len(inv.LineItems)}, nil
	}
	return nil, ErrUnsupportedImport
}

// lineItemsOf converts extracted lines, skipping ones that fail validation
func (s *Service) lineItemsOf(e *document.Extraction) []procurement.LineItem {
	items := make([]procurement.LineItem, 0, len(e.LineItems))
	for _, l := range e.LineItems {
		item, err := procurement.NewLineItem(len(items)+1, l.Description, l.Quantity, l.UnitPrice, l.Amount)
		if err != nil {
			s.logger.Debug("Skipping extracted line", zap.String("description", l.Description), zap.Error(err))
			continue
		}
		items = append(items, *item)
	}
	return items
}

// CompareDocuments scores every extracted target of a source against the
// source and stores the outcome on each target
func (s *Service) CompareDocuments(ctx context.Context, userID, sourceID uuid.UUID) (*SourceComparisonResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "extraction", "compare_documents")
	defer span.End()

	src, err := s.repos.Sources.FindByIDForUser(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}
	if !src.IsExtracted() {
		return nil, ErrNotExtracted.WithMessage("Source document has not been extracted yet")
	}
	srcExtraction, err := document.UnmarshalExtraction(src.ExtractedData)
	if err != nil {
		return nil, err
	}
	srcRecord := matching.RecordFromExtraction(src.ID, srcExtraction)

	targets, err := s.repos.Targets.FindBySource(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}

	resp := &SourceComparisonResponse{SourceID: sourceID, Results: make([]TargetMatchResponse, 0, len(targets))}
	for i := range targets {
		tgt := &targets[i]
		if !tgt.IsExtracted() {
			resp.Skipped++
			continue
		}
		tgtExtraction, err := document.UnmarshalExtraction(tgt.ExtractedData)
		if err != nil {
			s.logger.Warn("Skipping target with unreadable extraction", zap.String("target_id", tgt.ID.String()), zap.Error(err))
			resp.Skipped++
			continue
		}
		candidate := s.matcher.Match(srcRecord, matching.RecordFromExtraction(tgt.ID, tgtExtraction))
		discrepancies := candidate.Comparison.Discrepancies
		if discrepancies == nil {
			discrepancies = make([]matching.Discrepancy, 0)
		}
		encoded, err := json.Marshal(discrepancies)
		if err != nil {
			return nil, err
		}
		tgt.RecordMatch(candidate.Score, string(candidate.Status), encoded)
		if err := s.repos.Targets.Save(ctx, tgt); err != nil {
			return nil, err
		}
		resp.Compared++
		resp.Results = append(resp.Results, TargetMatchResponse{
			TargetID:      tgt.ID,
			FileName:      tgt.FileName,
			Score:         candidate.Score,
			Status:        string(candidate.Status),
			Scores:        candidate.Comparison.Scores,
			Discrepancies: discrepancies,
		})
	}
	telemetry.SetOK(span)
	return resp, nil
}

// DownloadURL returns a presigned link to the stored bytes
func (s *Service) DownloadURL(ctx context.Context, userID, documentID uuid.UUID) (*DownloadURLResponse, error) {
	ref, err := s.find(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.store.GenerateDownloadURL(ctx, ref.doc().StorageKey, s.cfg.URLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}
	return &DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// GetDocument returns a source or target document with its tables
func (s *Service) GetDocument(ctx context.Context, userID, documentID uuid.UUID) (*DocumentResponse, error) {
	ref, err := s.find(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	resp := ref.response()
	tables, err := s.repos.Tables.FindByDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	resp.Tables = toTableResponses(tables)
	return &resp, nil
}

// GetSource returns a source document with its tables and targets
func (s *Service) GetSource(ctx context.Context, userID, sourceID uuid.UUID) (*SourceDocumentResponse, error) {
	src, err := s.repos.Sources.FindByIDForUser(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}
	targets, err := s.repos.Targets.FindBySource(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}
	tables, err := s.repos.Tables.FindByDocument(ctx, userID, sourceID)
	if err != nil {
		return nil, err
	}

	resp := &SourceDocumentResponse{
		DocumentResponse: toSourceResponse(src),
		Targets:          make([]DocumentResponse, 0, len(targets)),
	}
	resp.Tables = toTableResponses(tables)
	for i := range targets {
		resp.Targets = append(resp.Targets, toTargetResponse(&targets[i]))
	}
	return resp, nil
}

// ListSources lists the user's source documents
func (s *Service) ListSources(ctx context.Context, userID uuid.UUID, filter SourceListFilter) ([]DocumentResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}.Normalize()
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.DocumentType != "" {
		domainFilter.Filters["document_type"] = filter.DocumentType
	}

	sources, err := s.repos.Sources.FindAllForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Sources.CountForUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DocumentResponse, 0, len(sources))
	for i := range sources {
		out = append(out, toSourceResponse(&sources[i]))
	}
	return out, total, nil
}

// DeleteSource removes a source document, its targets and their stored bytes
func (s *Service) DeleteSource(ctx context.Context, userID, sourceID uuid.UUID) error {
	src, err := s.repos.Sources.FindByIDForUser(ctx, userID, sourceID)
	if err != nil {
		return err
	}
	targets, err := s.repos.Targets.FindBySource(ctx, userID, sourceID)
	if err != nil {
		return err
	}
	if err := s.repos.Sources.DeleteForUser(ctx, userID, sourceID); err != nil {
		return err
	}

	keys := []string{src.StorageKey}
	for _, t := range targets {
		keys = append(keys, t.StorageKey)
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// docRef is a document loaded by id without knowing its role
type docRef struct {
	source *document.SourceDocument
	target *document.TargetDocument
}

func (r docRef) doc() *document.Document {
	if r.source != nil {
		return &r.source.Document
	}
	return &r.target.Document
}

func (r docRef) role() Role {
	if r.source != nil {
		return RoleSource
	}
	return RoleTarget
}

func (r docRef) response() DocumentResponse {
	if r.source != nil {
		return toSourceResponse(r.source)
	}
	return toTargetResponse(r.target)
}

func (s *Service) find(ctx context.Context, userID, id uuid.UUID) (docRef, error) {
	src, err := s.repos.Sources.FindByIDForUser(ctx, userID, id)
	if err == nil {
		return docRef{source: src}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return docRef{}, err
	}
	tgt, err := s.repos.Targets.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return docRef{}, err
	}
	return docRef{target: tgt}, nil
}

func (s *Service) save(ctx context.Context, r docRef) error {
	if r.source != nil {
		return s.repos.Sources.Save(ctx, r.source)
	}
	return s.repos.Targets.Save(ctx, r.target)
}
