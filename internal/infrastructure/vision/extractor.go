package vision

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/application/extraction"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type contentGenerator interface {
	Generate(ctx context.Context, data []byte, mimeType, prompt string) (string, error)
}

const defaultMaxLogLength = 200

// Extractor reads documents with a vision model
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ extraction.DocumentExtractor = (*Extractor)(nil)

// NewExtractor creates an Extractor. maxLogLength bounds prompt and response previews in debug logs.
func NewExtractor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Extractor{
		generator: generator,
		logger:    logger.Named("vision"),
		maxLogLen: maxLogLength,
	}
}

// Extract sends the document to the model and decodes its answer
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string, docType document.Type) (*document.Extraction, error) {
	prompt := PromptFor(docType)

	e.logger.Debug("Vision request",
		zap.String("document_type", string(docType)),
		zap.String("mime_type", mimeType),
		zap.Int("size_bytes", len(data)),
		zap.String("prompt_preview", logger.Truncate(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.Generate(ctx, data, mimeType, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Vision response",
		zap.String("document_type", string(docType)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.Truncate(raw, e.maxLogLen)),
	)

	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	result, err := DecodeExtraction(payload, docType)
	if err != nil {
		return nil, fmt.Errorf("parse vision response: %w", err)
	}
	return result, nil
}
