package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

// UserScope restricts a query to rows owned by userID
func UserScope(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// paginate applies limit/offset and a whitelisted ORDER BY
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	filter = filter.Normalize()
	query = query.Offset(filter.Offset()).Limit(filter.PageSize)

	sortField := ValidateSortField(filter.OrderBy, allowed, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// likePattern builds a lowercase containment pattern, escaping LIKE wildcards.
// Callers use LOWER(col) LIKE ? ESCAPE rather than ILIKE so queries also run on sqlite.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

func filterString(filters map[string]any, key string) (string, bool) {
	v, ok := filters[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
