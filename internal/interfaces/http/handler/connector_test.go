package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	connectorapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/auth"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/crypto"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRelay struct{}

func (stubRelay) AuthCodeURL(provider connector.Provider, state string) (string, error) {
	return "https://accounts.example.com/o/oauth2/auth?provider=" + string(provider) + "&state=" + state, nil
}

func (stubRelay) Exchange(_ context.Context, _ connector.Provider, code string) (*connectorapp.OAuthToken, error) {
	if code != "good-code" {
		return nil, assert.AnError
	}
	return &connectorapp.OAuthToken{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       []string{"drive.readonly"},
	}, nil
}

func newConnectorAPI(t *testing.T) (*gin.Engine, uuid.UUID) {
	t.Helper()
	cipher, err := crypto.NewTokenCipher("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	service := connectorapp.NewService(
		persistence.NewGormConnectionRepository(setupTestDB(t)),
		stubRelay{},
		auth.NewStateSigner("state-signing-secret-for-tests-only", 10*time.Minute),
		cipher,
	)
	service.SetStateStore(auth.NewInMemoryStateStore())
	h := NewConnectorHandler(service)

	userID := uuid.New()
	r := gin.New()
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Next()
	})
	r.GET("/connectors/:provider/authorize", h.Authorize)
	r.POST("/connectors/oauth/exchange", h.Exchange)
	r.GET("/connectors", h.List)
	r.DELETE("/connectors/:id", h.Disconnect)
	return r, userID
}

func TestConnectorHandler_OAuthFlow(t *testing.T) {
	r, _ := newConnectorAPI(t)
	api := &testAPI{engine: r}

	w := api.do(t, http.MethodGet, "/connectors/google_drive/authorize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var authz connectorapp.AuthorizationResponse
	envelope(t, w, &authz)
	assert.Equal(t, "google_drive", authz.Provider)
	assert.Contains(t, authz.URL, authz.State)
	assert.True(t, authz.ExpiresAt.After(time.Now()))

	w = api.do(t, http.MethodPost, "/connectors/oauth/exchange", map[string]string{"code": "good-code", "state": authz.State})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var conn connectorapp.ConnectionResponse
	envelope(t, w, &conn)
	assert.Equal(t, "google_drive", conn.Provider)
	assert.True(t, conn.CanRefresh)
	assert.NotContains(t, w.Body.String(), "access-token")

	// a state is single use
	w = api.do(t, http.MethodPost, "/connectors/oauth/exchange", map[string]string{"code": "good-code", "state": authz.State})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_STATE_TOKEN", envelope(t, w, nil).Error.Code)

	w = api.do(t, http.MethodGet, "/connectors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conns []connectorapp.ConnectionResponse
	envelope(t, w, &conns)
	require.Len(t, conns, 1)

	w = api.do(t, http.MethodDelete, "/connectors/"+conn.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodDelete, "/connectors/"+conn.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConnectorHandler_Errors(t *testing.T) {
	r, _ := newConnectorAPI(t)
	api := &testAPI{engine: r}

	w := api.do(t, http.MethodGet, "/connectors/dropbox/authorize", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_PROVIDER", envelope(t, w, nil).Error.Code)

	w = api.do(t, http.MethodPost, "/connectors/oauth/exchange", map[string]string{"code": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/connectors/oauth/exchange", map[string]string{"code": "x", "state": "forged"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_STATE_TOKEN", envelope(t, w, nil).Error.Code)

	w = api.do(t, http.MethodGet, "/connectors/gmail/authorize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var authz connectorapp.AuthorizationResponse
	envelope(t, w, &authz)
	w = api.do(t, http.MethodPost, "/connectors/oauth/exchange", map[string]string{"code": "bad-code", "state": authz.State})
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "OAUTH_EXCHANGE_FAILED", envelope(t, w, nil).Error.Code)
}
