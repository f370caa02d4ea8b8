package connector

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/auth"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service links external document sources through an OAuth relay
type Service struct {
	repo    connector.ConnectionRepository
	relay   OAuthRelay
	states  StateSigner
	cipher  TokenCipher
	used    auth.StateStore
	metrics *telemetry.MatchingMetrics
	logger  *zap.Logger
}

// NewService creates a new connector Service
func NewService(repo connector.ConnectionRepository, relay OAuthRelay, states StateSigner, cipher TokenCipher) *Service {
	return &Service{
		repo:   repo,
		relay:  relay,
		states: states,
		cipher: cipher,
		logger: zap.NewNop(),
	}
}

// SetStateStore rejects replayed state tokens. Without one a state can be
// redeemed until it expires.
func (s *Service) SetStateStore(store auth.StateStore) {
	s.used = store
}

// SetMetrics sets the business metrics collector
func (s *Service) SetMetrics(m *telemetry.MatchingMetrics) {
	s.metrics = m
}

// SetLogger sets the service logger
func (s *Service) SetLogger(logger *zap.Logger) {
	s.logger = logger.Named("connector")
}

// AuthorizationURL returns the provider consent URL with a signed state
func (s *Service) AuthorizationURL(userID uuid.UUID, providerName string) (*AuthorizationResponse, error) {
	provider, err := connector.ParseProvider(providerName)
	if err != nil {
		return nil, err
	}
	state, err := s.states.Sign(userID, string(provider))
	if err != nil {
		return nil, err
	}
	url, err := s.relay.AuthCodeURL(provider, state)
	if err != nil {
		return nil, err
	}
	return &AuthorizationResponse{
		Provider:  string(provider),
		URL:       url,
		State:     state,
		ExpiresAt: time.Now().Add(s.states.TTL()),
	}, nil
}

// Exchange verifies the state, redeems the code and stores the encrypted tokens.
// userID is the authenticated caller and must match the user the state was issued to.
func (s *Service) Exchange(ctx context.Context, userID uuid.UUID, code, state string) (*ConnectionResponse, error) {
	claims, err := s.states.Verify(state)
	if err != nil {
		s.logger.Debug("Rejected oauth state", zap.Error(err))
		return nil, ErrInvalidStateToken
	}
	if claims.UserID() != userID {
		return nil, ErrInvalidStateToken
	}
	provider, err := connector.ParseProvider(claims.Provider)
	if err != nil {
		return nil, ErrInvalidStateToken
	}
	if s.used != nil {
		first, err := s.used.MarkUsed(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
		if err != nil {
			return nil, err
		}
		if !first {
			return nil, ErrInvalidStateToken.WithMessage("OAuth state was already used")
		}
	}

	token, err := s.relay.Exchange(ctx, provider, code)
	if err != nil {
		s.metrics.RecordConnectorExchange(ctx, string(provider), "failed")
		s.logger.Warn("OAuth code exchange failed",
			zap.String("provider", string(provider)),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		if errors.Is(err, ErrProviderNotConfigured) {
			return nil, err
		}
		return nil, ErrOAuthExchangeFailed
	}

	conn, err := s.repo.FindByProvider(ctx, userID, provider)
	if errors.Is(err, shared.ErrNotFound) {
		conn, err = connector.NewConnection(userID, provider)
	}
	if err != nil {
		return nil, err
	}

	aad := additionalData(userID, provider)
	access, err := s.cipher.Encrypt([]byte(token.AccessToken), aad)
	if err != nil {
		return nil, err
	}
	refresh, err := s.cipher.Encrypt([]byte(token.RefreshToken), aad)
	if err != nil {
		return nil, err
	}
	var expiresAt *time.Time
	if !token.Expiry.IsZero() {
		exp := token.Expiry
		expiresAt = &exp
	}
	if err := conn.UpdateTokens(access, refresh, expiresAt, token.Scopes); err != nil {
		return nil, ErrOAuthExchangeFailed.WithMessage(err.Error())
	}
	if err := s.repo.Save(ctx, conn); err != nil {
		return nil, err
	}

	s.metrics.RecordConnectorExchange(ctx, string(provider), "connected")
	s.logger.Info("Source connected",
		zap.String("provider", string(provider)),
		zap.String("connection_id", conn.ID.String()),
	)
	resp := ToConnectionResponse(conn)
	return &resp, nil
}

// AccessToken decrypts the stored access token of a connection
func (s *Service) AccessToken(ctx context.Context, userID, connectionID uuid.UUID) (string, error) {
	conn, err := s.repo.FindByIDForUser(ctx, userID, connectionID)
	if err != nil {
		return "", err
	}
	plain, err := s.cipher.Decrypt(conn.EncryptedAccessToken, additionalData(userID, conn.Provider))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// List returns the user's connections
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]ConnectionResponse, error) {
	conns, err := s.repo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ConnectionResponse, 0, len(conns))
	for i := range conns {
		out = append(out, ToConnectionResponse(&conns[i]))
	}
	return out, nil
}

// Disconnect removes a connection and its tokens
func (s *Service) Disconnect(ctx context.Context, userID, connectionID uuid.UUID) error {
	if err := s.repo.DeleteForUser(ctx, userID, connectionID); err != nil {
		return err
	}
	s.logger.Info("Source disconnected", zap.String("connection_id", connectionID.String()))
	return nil
}

// additionalData binds sealed tokens to their owner and provider
func additionalData(userID uuid.UUID, provider connector.Provider) []byte {
	return []byte(userID.String() + ":" + string(provider))
}
