package http

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eclatderm/visage/internal/domain/analysis"
	apperrors "github.com/eclatderm/visage/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	analysisSvc analysis.Service
	resolver    analysis.ProductResolver
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(analysisSvc analysis.Service, resolver analysis.ProductResolver, logger *slog.Logger) *Handler {
	return &Handler{
		analysisSvc: analysisSvc,
		resolver:    resolver,
		logger:      logger.With("component", "http.handler"),
	}
}

// Analyze runs the full skin analysis pipeline for the submitted profile
// and photo references.
func (h *Handler) Analyze(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.analysisSvc.Analyze(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "analysis_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "storage_error"):
			status = http.StatusBadGateway
			code = "storage_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAnalysis returns a previously computed analysis by id.
func (h *Handler) GetAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be a valid UUID", err))
		return
	}

	resp, found, err := h.analysisSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadGateway, "storage_error", errMessage(err), err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "analysis not found or expired", nil))
		return
	}

	c.JSON(http.StatusOK, resp)
}

type uploadPhotoRequest struct {
	Role     string `json:"role"`
	Data     string `json:"data" binding:"required"`
	MimeType string `json:"mimeType"`
}

// UploadPhoto stores a base64 encoded photo and returns its reference.
func (h *Handler) UploadPhoto(c *gin.Context) {
	var req uploadPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	payload := req.Data
	// Accept both raw base64 and full data URIs from the frontend.
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		if req.MimeType == "" {
			req.MimeType = strings.TrimPrefix(payload[:idx], "data:")
		}
		payload = payload[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "data must be base64 encoded", err))
		return
	}

	ref, err := h.analysisSvc.StorePhoto(c.Request.Context(), analysis.PhotoRole(req.Role), data, req.MimeType)
	if err != nil {
		status := http.StatusInternalServerError
		code := "photo_upload_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusCreated, ref)
}

type deletePhotosRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

// DeletePhotos removes stored photos once the session is over.
func (h *Handler) DeletePhotos(c *gin.Context) {
	var req deletePhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	if err := h.analysisSvc.DeletePhotos(c.Request.Context(), req.Keys); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadGateway, "storage_error", errMessage(err), err))
		return
	}

	c.Status(http.StatusNoContent)
}

// ResolveProduct lets the frontend enrich a product reference lazily.
func (h *Handler) ResolveProduct(c *gin.Context) {
	identifier := strings.TrimSpace(c.Query("identifier"))
	name := strings.TrimSpace(c.Query("name"))
	if identifier == "" && name == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "identifier or name is required", nil))
		return
	}

	product := h.resolver.Resolve(c.Request.Context(), identifier, name)
	c.JSON(http.StatusOK, product)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
