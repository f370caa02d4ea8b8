package vision

import (
	"embed"
	"strings"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/document"
)

//go:embed prompts/*.md
var promptFS embed.FS

const fallbackPrompt = "Extract the document into JSON with document_type, document_number, vendor_name, document_date, total_amount and line_items. Respond with JSON only."

// PromptFor returns the extraction prompt for a document type
func PromptFor(docType document.Type) string {
	if !docType.IsValid() {
		docType = document.TypeOther
	}
	data, err := promptFS.ReadFile("prompts/" + string(docType) + ".md")
	if err != nil || strings.TrimSpace(string(data)) == "" {
		return fallbackPrompt
	}
	return string(data)
}
