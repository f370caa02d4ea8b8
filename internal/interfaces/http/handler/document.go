package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/application/extraction"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/dto"
)

// DocumentHandler handles upload, extraction, import and document comparison
type DocumentHandler struct {
	BaseHandler
	service       *extraction.Service
	maxUploadSize int64
}

// NewDocumentHandler creates a new DocumentHandler. Uploads larger than
// maxUploadSize bytes are refused before they reach the service.
func NewDocumentHandler(service *extraction.Service, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{service: service, maxUploadSize: maxUploadSize}
}

// Upload godoc
// @Summary      Upload a source or target document
// @Description  Stores the file and creates a pending document. Targets must name their source.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "PDF or image"
// @Param        role formData string false "source (default) or target"
// @Param        source_id formData string false "Source document for a target" format(uuid)
// @Param        document_type formData string false "invoice, purchase_order or other"
// @Success      201 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Router       /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "A file form field is required")
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		h.HandleError(c, extraction.ErrFileTooLarge)
		return
	}

	role, err := extraction.ParseRole(c.PostForm("role"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var sourceID *uuid.UUID
	if raw := c.PostForm("source_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid source_id format")
			return
		}
		sourceID = &id
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	doc, err := h.service.Upload(c.Request.Context(), userID, extraction.UploadInput{
		Role:         role,
		SourceID:     sourceID,
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		DocumentType: c.PostForm("document_type"),
		Data:         data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// ListSources godoc
// @Summary      List source documents
// @Tags         documents
// @Produce      json
// @Param        status query string false "PENDING, PROCESSING, COMPLETED or FAILED"
// @Param        document_type query string false "invoice, purchase_order or other"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response
// @Router       /documents/sources [get]
func (h *DocumentHandler) ListSources(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var filter extraction.SourceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	docs, total, err := h.service.ListSources(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// GetSource godoc
// @Summary      Get a source document with its targets
// @Tags         documents
// @Produce      json
// @Param        id path string true "Source document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /documents/sources/{id} [get]
func (h *DocumentHandler) GetSource(c *gin.Context) {
	userID, id, ok := h.documentRequest(c)
	if !ok {
		return
	}

	src, err := h.service.GetSource(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, src)
}

// DeleteSource godoc
// @Summary      Delete a source document
// @Description  Removes its targets and the stored files as well
// @Tags         documents
// @Param        id path string true "Source document ID" format(uuid)
// @Success      204
// @Router       /documents/sources/{id} [delete]
func (h *DocumentHandler) DeleteSource(c *gin.Context) {
	userID, id, ok := h.documentRequest(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSource(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CompareSource godoc
// @Summary      Compare a source document with its targets
// @Tags         documents
// @Produce      json
// @Param        id path string true "Source document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /documents/sources/{id}/compare [post]
func (h *DocumentHandler) CompareSource(c *gin.Context) {
	userID, id, ok := h.documentRequest(c)
	if !ok {
		return
	}

	resp, err := h.service.CompareDocuments(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get godoc
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	userID, id, ok := h.documentRequest(c)
	if !ok {
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Extract godoc
// @Summary      Run vision extraction on a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /documents/{id}/extract [post]
func (h *DocumentHandler) Extract(c *gin.Context) {
	userID, id, ok := h.documentRequest(c)
	if !ok {
		return
	}

	doc, err := h.service.Extract(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Import godoc
// @Summary      Import an extracted document as a purchase order or invoice
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      201 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /documents/{id}/import [post]
func (h *DocumentHandler) Import(c *gin.Context) {
	userID, id, ok := h.documentRequest(c)
	if !ok {
		return
	}

	resp, err := h.service.Import(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// DownloadURL godoc
// @Summary      Presign a download link for a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /documents/{id}/download-url [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	userID, id, ok := h.documentRequest(c)
	if !ok {
		return
	}

	resp, err := h.service.DownloadURL(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *DocumentHandler) documentRequest(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid document ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
