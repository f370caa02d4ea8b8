package extraction

import "github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"

var (
	ErrInvalidRole         = shared.NewDomainError("INVALID_ROLE", "Role must be source or target")
	ErrFileTooLarge        = shared.NewDomainError("FILE_TOO_LARGE", "Document exceeds the maximum upload size")
	ErrExtractionFailed    = shared.NewDomainError("EXTRACTION_FAILED", "Document extraction failed")
	ErrNotExtracted        = shared.NewDomainError("NOT_EXTRACTED", "Document has not been extracted yet")
	ErrUnsupportedImport   = shared.NewDomainError("UNSUPPORTED_IMPORT_TYPE", "Only invoices and purchase orders can be imported")
	ErrDocumentNumberEmpty = shared.NewDomainError("DOCUMENT_NUMBER_MISSING", "No document number was extracted")
)
