package connector

import "github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"

var (
	ErrInvalidStateToken     = shared.NewDomainError("INVALID_STATE_TOKEN", "OAuth state is invalid or has expired")
	ErrOAuthExchangeFailed   = shared.NewDomainError("OAUTH_EXCHANGE_FAILED", "The provider rejected the authorization code")
	ErrProviderNotConfigured = shared.NewDomainError("PROVIDER_NOT_CONFIGURED", "OAuth is not configured for this provider")
)
