package connector

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
)

// Provider identifies an external document source
type Provider string

const (
	ProviderGoogleDrive Provider = "google_drive"
	ProviderGmail       Provider = "gmail"
)

// ParseProvider validates a provider name
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p != ProviderGoogleDrive && p != ProviderGmail {
		return "", shared.NewDomainError("UNSUPPORTED_PROVIDER", "Provider must be google_drive or gmail")
	}
	return p, nil
}

// Connection is an OAuth-authorized account a user linked as a document source.
// Tokens are held encrypted; the domain never sees them in plaintext.
type Connection struct {
	shared.OwnedAggregate
	Provider              Provider
	AccountEmail          string
	Scopes                []string
	EncryptedAccessToken  []byte
	EncryptedRefreshToken []byte
	TokenExpiresAt        *time.Time
	LastSyncedAt          *time.Time
}

// NewConnection creates a connection for a user and provider
func NewConnection(userID uuid.UUID, provider Provider) (*Connection, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if provider != ProviderGoogleDrive && provider != ProviderGmail {
		return nil, shared.NewDomainError("UNSUPPORTED_PROVIDER", "Provider must be google_drive or gmail")
	}
	return &Connection{
		OwnedAggregate: shared.NewOwnedAggregate(userID),
		Provider:       provider,
		Scopes:         make([]string, 0),
	}, nil
}

// UpdateTokens stores a fresh token set. An empty refresh token keeps the
// previous one, since providers only send it on first consent.
func (c *Connection) UpdateTokens(access, refresh []byte, expiresAt *time.Time, scopes []string) error {
	if len(access) == 0 {
		return shared.NewDomainError("ACCESS_TOKEN_REQUIRED", "Access token cannot be empty")
	}
	c.EncryptedAccessToken = access
	if len(refresh) > 0 {
		c.EncryptedRefreshToken = refresh
	}
	c.TokenExpiresAt = expiresAt
	if len(scopes) > 0 {
		c.Scopes = scopes
	}
	c.IncrementVersion()
	c.Touch()
	return nil
}

// IsExpired reports whether the access token has expired at now
func (c *Connection) IsExpired(now time.Time) bool {
	return c.TokenExpiresAt != nil && !now.Before(*c.TokenExpiresAt)
}

// CanRefresh reports whether a refresh token is on file
func (c *Connection) CanRefresh() bool {
	return len(c.EncryptedRefreshToken) > 0
}
