package connector

import (
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/connector"
)

// AuthorizationResponse carries the URL the user is sent to for consent
type AuthorizationResponse struct {
	Provider  string    `json:"provider"`
	URL       string    `json:"url"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExchangeRequest is the OAuth callback payload relayed by the frontend
type ExchangeRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

// ConnectionResponse represents a connection in API responses. Tokens are never returned.
type ConnectionResponse struct {
	ID             uuid.UUID  `json:"id"`
	Provider       string     `json:"provider"`
	AccountEmail   string     `json:"account_email,omitempty"`
	Scopes         []string   `json:"scopes"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	CanRefresh     bool       `json:"can_refresh"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToConnectionResponse converts a domain Connection to a ConnectionResponse
func ToConnectionResponse(c *connector.Connection) ConnectionResponse {
	scopes := c.Scopes
	if scopes == nil {
		scopes = make([]string, 0)
	}
	return ConnectionResponse{
		ID:             c.ID,
		Provider:       string(c.Provider),
		AccountEmail:   c.AccountEmail,
		Scopes:         scopes,
		TokenExpiresAt: c.TokenExpiresAt,
		CanRefresh:     c.CanRefresh(),
		LastSyncedAt:   c.LastSyncedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
