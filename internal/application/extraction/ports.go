// Package extraction runs the document pipeline: upload to object storage,
// vision extraction, import into procurement records and document comparison.
package extraction

import (
	"context"
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
)

// DocumentStore holds the uploaded document bytes
type DocumentStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

// ExtractionCache stores encoded extractions keyed by content hash and document type
type ExtractionCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DocumentExtractor reads structured content from a document image or PDF
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string, docType document.Type) (*document.Extraction, error)
}
