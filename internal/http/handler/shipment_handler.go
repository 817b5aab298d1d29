package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/service"
	"go.uber.org/zap"
)

type ShipmentHandler struct {
	shipmentService *service.ShipmentService
	logger          *zap.Logger
}

func NewShipmentHandler(shipmentService *service.ShipmentService, logger *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
		logger:          logger,
	}
}

// List godoc
// @Summary List shipments
// @Description Get paginated list of shipments
// @Tags Shipments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(booked, in_transit, delivered, cancelled)
// @Param search query string false "Search by reference or route"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ShipmentDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipments [get]
func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	status := domain.ShipmentStatus(r.URL.Query().Get("status"))
	search := r.URL.Query().Get("search")

	result, err := h.shipmentService.List(r.Context(), page, pageSize, status, search)
	if err != nil {
		h.logger.Error("failed to list shipments", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list shipments",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get shipment by ID
// @Description Get a single shipment
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID" format(uuid)
// @Success 200 {object} domain.ShipmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipments/{id} [get]
func (h *ShipmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid shipment ID format",
		})
		return
	}

	shipment, err := h.shipmentService.GetByID(r.Context(), id)
	if err != nil {
		h.respondShipmentError(w, err, "Failed to get shipment")
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

// GetByReference godoc
// @Summary Get shipment by reference
// @Description Look up a shipment by its booking reference
// @Tags Shipments
// @Accept json
// @Produce json
// @Param reference path string true "Shipment reference"
// @Success 200 {object} domain.ShipmentDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipments/reference/{reference} [get]
func (h *ShipmentHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Missing shipment reference",
		})
		return
	}

	shipment, err := h.shipmentService.GetByReference(r.Context(), reference)
	if err != nil {
		h.respondShipmentError(w, err, "Failed to get shipment")
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

// UpdateStatus godoc
// @Summary Update shipment status
// @Description Update the operational status of a shipment
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID" format(uuid)
// @Param request body domain.UpdateShipmentStatusRequest true "Target status"
// @Success 200 {object} domain.ShipmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipments/{id}/status [patch]
func (h *ShipmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid shipment ID format",
		})
		return
	}

	var req domain.UpdateShipmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	shipment, err := h.shipmentService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		h.respondShipmentError(w, err, "Failed to update shipment status")
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

// SetERPReference godoc
// @Summary Set ERP reference
// @Description Link a shipment to its booking in the ERP system for cost sync
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID" format(uuid)
// @Param request body domain.SetERPReferenceRequest true "ERP reference"
// @Success 200 {object} domain.ShipmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipments/{id}/erp-reference [put]
func (h *ShipmentHandler) SetERPReference(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid shipment ID format",
		})
		return
	}

	var req domain.SetERPReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	shipment, err := h.shipmentService.SetERPReference(r.Context(), id, req.ERPReference)
	if err != nil {
		h.respondShipmentError(w, err, "Failed to set ERP reference")
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

func (h *ShipmentHandler) respondShipmentError(w http.ResponseWriter, err error, failureMessage string) {
	switch {
	case errors.Is(err, service.ErrShipmentNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: "Shipment not found",
		})
	case errors.Is(err, service.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
	default:
		h.logger.Error(failureMessage, zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: failureMessage,
		})
	}
}
