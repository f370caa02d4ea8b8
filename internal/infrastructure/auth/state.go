package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateAudience = "nexus-oauth-state"

var ErrInvalidState = errors.New("invalid oauth state")

// StateClaims is the payload of the OAuth state parameter
type StateClaims struct {
	jwt.RegisteredClaims
	Provider string `json:"provider"`
}

// StateSigner issues and verifies short-lived OAuth state tokens
type StateSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewStateSigner creates a StateSigner. A non-positive ttl defaults to ten minutes.
func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl}
}

// TTL returns how long a state stays valid
func (s *StateSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns a state token binding the user to the provider
func (s *StateSigner) Sign(userID uuid.UUID, provider string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	return signHS256(&StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{stateAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Provider: provider,
	}, s.secret)
}

// Verify checks the signature, expiry and audience of a state token
func (s *StateSigner) Verify(state string) (*StateClaims, error) {
	if state == "" {
		return nil, ErrInvalidState
	}
	claims := &StateClaims{}
	err := parseHS256(state, claims, s.secret,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(stateAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, err
		}
		return nil, ErrInvalidState
	}
	if claims.Provider == "" || claims.ID == "" {
		return nil, ErrInvalidState
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidState
	}
	return claims, nil
}

// UserID returns the user the state was issued to
func (c *StateClaims) UserID() uuid.UUID {
	id, _ := uuid.Parse(c.Subject)
	return id
}
