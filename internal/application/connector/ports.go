package connector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/auth"
)

// OAuthToken is the token set a provider returns from a code exchange
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scopes       []string
}

// OAuthRelay builds provider authorization URLs and redeems codes at the
// provider token endpoint
type OAuthRelay interface {
	AuthCodeURL(provider connector.Provider, state string) (string, error)
	Exchange(ctx context.Context, provider connector.Provider, code string) (*OAuthToken, error)
}

// StateSigner issues and verifies the OAuth state parameter
type StateSigner interface {
	Sign(userID uuid.UUID, provider string) (string, error)
	Verify(state string) (*auth.StateClaims, error)
	TTL() time.Duration
}

// TokenCipher seals tokens at rest
type TokenCipher interface {
	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(sealed, additionalData []byte) ([]byte, error)
}
