package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:   testSecret,
		Issuer:   "test-issuer",
		Audience: "authenticated",
	})
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, err := svc.IssueToken(userID, "ap@example.com", 15*time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "ap@example.com", claims.Email)
	assert.True(t, claims.GetExpiresAtTime().After(time.Now()))
}

func TestValidateAccessToken_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.IssueToken(uuid.New(), "", -1*time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_InvalidToken(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateAccessToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_DifferentSecret(t *testing.T) {
	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", Issuer: "test-issuer", Audience: "authenticated"})
	token, err := other.IssueToken(uuid.New(), "", time.Minute)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongIssuerOrAudience(t *testing.T) {
	wrongIssuer := NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "elsewhere", Audience: "authenticated"})
	token, err := wrongIssuer.IssueToken(uuid.New(), "", time.Minute)
	require.NoError(t, err)
	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAudience := NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "test-issuer", Audience: "anon"})
	token, err = wrongAudience.IssueToken(uuid.New(), "", time.Minute)
	require.NoError(t, err)
	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RequiresUserSubject(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: testSecret})

	token, err := signHS256(&Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}, []byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrMissingUserID)

	token, err = signHS256(&Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}, []byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	svc := newTestJWTService()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "test-issuer",
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsStateToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: testSecret})
	state, err := NewStateSigner(testSecret, time.Minute).Sign(uuid.New(), "gmail")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(state)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_MissingSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{})

	_, err := svc.IssueToken(uuid.New(), "", time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecret)
	_, err = svc.ValidateAccessToken("x.y.z")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func jwtConfigForTest() config.JWTConfig {
	return config.JWTConfig{Secret: testSecret}
}
