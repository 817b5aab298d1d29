package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/service"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadMB     int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadMB:     maxUploadMB,
		logger:          logger,
	}
}

// @Summary Upload quotation document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param file formData file true "Document to upload"
// @Success 201 {object} domain.FileDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 413 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	quotationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	// Limit request size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	fileDTO, err := h.documentService.UploadToQuotation(r.Context(), quotationID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, service.ErrQuotationNotFound) {
			respondWithError(w, http.StatusNotFound, "Quotation not found")
			return
		}
		h.logger.Error("failed to upload document", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	respondJSON(w, http.StatusCreated, fileDTO)
}

// @Summary List quotation documents
// @Tags Documents
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Success 200 {array} domain.FileDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/documents [get]
func (h *DocumentHandler) ListByQuotation(w http.ResponseWriter, r *http.Request) {
	quotationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	documents, err := h.documentService.ListByQuotation(r.Context(), quotationID)
	if err != nil {
		if errors.Is(err, service.ErrQuotationNotFound) {
			respondWithError(w, http.StatusNotFound, "Quotation not found")
			return
		}
		h.logger.Error("failed to list documents", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, documents)
}

// @Summary Get document metadata
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {object} domain.FileDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	fileDTO, err := h.documentService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to get document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get document")
		return
	}

	respondJSON(w, http.StatusOK, fileDTO)
}

// @Summary Download document
// @Tags Documents
// @Produce application/octet-stream
// @Param id path string true "Document ID" format(uuid)
// @Success 200
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	reader, filename, contentType, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to download document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to download document")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}

// @Summary Delete document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to delete document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
