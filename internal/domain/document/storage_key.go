package document

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// StorageKey builds the object key documents/{user}/{document}/{file name}.
// Directory parts of the file name are dropped.
func StorageKey(userID, documentID uuid.UUID, fileName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return path.Join("documents", userID.String(), documentID.String(), name)
}
