package shared

import "github.com/google/uuid"

// OwnedAggregate is an aggregate root that belongs to a single user account.
// Every record in the store is scoped by the owning user, and repositories
// never return rows across users.
type OwnedAggregate struct {
	BaseEntity
	UserID  uuid.UUID
	Version int
}

// GetUserID returns the owning user
func (a *OwnedAggregate) GetUserID() uuid.UUID {
	return a.UserID
}

// GetVersion returns the aggregate version for optimistic locking
func (a *OwnedAggregate) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *OwnedAggregate) IncrementVersion() {
	a.Version++
}

// BelongsTo reports whether the aggregate is owned by userID
func (a *OwnedAggregate) BelongsTo(userID uuid.UUID) bool {
	return a.UserID == userID
}

// NewOwnedAggregate creates a new user-scoped aggregate root
func NewOwnedAggregate(userID uuid.UUID) OwnedAggregate {
	return OwnedAggregate{
		BaseEntity: NewBaseEntity(),
		UserID:     userID,
		Version:    1,
	}
}
