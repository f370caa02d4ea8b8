package handler

import (
	"github.com/gin-gonic/gin"
	connectorapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/connector"
)

// ConnectorHandler handles the OAuth flow for external document sources
type ConnectorHandler struct {
	BaseHandler
	service *connectorapp.Service
}

// NewConnectorHandler creates a new ConnectorHandler
func NewConnectorHandler(service *connectorapp.Service) *ConnectorHandler {
	return &ConnectorHandler{service: service}
}

// Authorize godoc
// @Summary      Build the OAuth consent URL for a provider
// @Tags         connectors
// @Produce      json
// @Param        provider path string true "google_drive or gmail"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /connectors/{provider}/authorize [get]
func (h *ConnectorHandler) Authorize(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	resp, err := h.service.AuthorizationURL(userID, c.Param("provider"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Exchange godoc
// @Summary      Redeem an OAuth authorization code
// @Description  Verifies the signed state and stores the encrypted tokens
// @Tags         connectors
// @Accept       json
// @Produce      json
// @Param        request body connectorapp.ExchangeRequest true "Code and state from the provider callback"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /connectors/oauth/exchange [post]
func (h *ConnectorHandler) Exchange(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req connectorapp.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	conn, err := h.service.Exchange(c.Request.Context(), userID, req.Code, req.State)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, conn)
}

// List godoc
// @Summary      List connected sources
// @Tags         connectors
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /connectors [get]
func (h *ConnectorHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	conns, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conns)
}

// Disconnect godoc
// @Summary      Disconnect a source
// @Tags         connectors
// @Param        id path string true "Connection ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Router       /connectors/{id} [delete]
func (h *ConnectorHandler) Disconnect(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid connection ID format")
		return
	}

	if err := h.service.Disconnect(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
