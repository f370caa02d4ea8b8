package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/auth"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/config"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/logger"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing-32chars"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "nexus-test"})
}

// setupJWTRouter echoes the identity the middleware resolved
func setupJWTRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), JWTAuthMiddleware(cfg))
	r.GET("/api/v1/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/v1/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    GetJWTUserID(c),
			"email":      GetJWTEmail(c),
			"has_claims": GetJWTClaims(c) != nil,
			"log_user":   logger.GetUserID(c.Request.Context()),
		})
	})
	return r
}

func doGet(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()
	token, err := svc.IssueToken(userID, "ap@example.com", time.Hour)
	require.NoError(t, err)

	r := setupJWTRouter(DefaultJWTConfig(svc))
	w := doGet(r, "/api/v1/me", map[string]string{AuthHeaderKey: BearerPrefix + token})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, "ap@example.com", body["email"])
	assert.Equal(t, true, body["has_claims"])
	assert.Equal(t, userID.String(), body["log_user"])
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	expired, err := svc.IssueToken(uuid.New(), "", -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-another-secret-123"}).
		IssueToken(uuid.New(), "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		code    string
	}{
		{"missing header", nil, dto.ErrCodeTokenInvalid},
		{"not bearer", map[string]string{AuthHeaderKey: "Basic abc"}, dto.ErrCodeTokenInvalid},
		{"empty token", map[string]string{AuthHeaderKey: BearerPrefix}, dto.ErrCodeTokenInvalid},
		{"garbage", map[string]string{AuthHeaderKey: BearerPrefix + "not.a.jwt"}, dto.ErrCodeTokenInvalid},
		{"expired", map[string]string{AuthHeaderKey: BearerPrefix + expired}, dto.ErrCodeTokenExpired},
		{"wrong secret", map[string]string{AuthHeaderKey: BearerPrefix + foreign}, dto.ErrCodeTokenInvalid},
		{"user header when not allowed", map[string]string{UserIDHeader: uuid.NewString()}, dto.ErrCodeTokenInvalid},
	}

	r := setupJWTRouter(DefaultJWTConfig(svc))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, "/api/v1/me", tt.headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_UserHeaderFallback(t *testing.T) {
	cfg := DefaultJWTConfig(newTestJWTService())
	cfg.AllowUserHeader = true
	r := setupJWTRouter(cfg)

	t.Run("valid id", func(t *testing.T) {
		userID := uuid.New()
		w := doGet(r, "/api/v1/me", map[string]string{UserIDHeader: userID.String()})
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, false, body["has_claims"])
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doGet(r, "/api/v1/me", map[string]string{UserIDHeader: "user-1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer token wins", func(t *testing.T) {
		w := doGet(r, "/api/v1/me", map[string]string{
			AuthHeaderKey: BearerPrefix + "bad",
			UserIDHeader:  uuid.NewString(),
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	r := setupJWTRouter(DefaultJWTConfig(newTestJWTService()))
	w := doGet(r, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetJWTHelpers_Empty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTEmail(c))
}
