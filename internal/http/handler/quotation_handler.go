package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	activityService  *service.ActivityService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, activityService *service.ActivityService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		activityService:  activityService,
		logger:           logger,
	}
}

// List godoc
// @Summary List quotations
// @Description Get paginated list of quotations with optional filters
// @Tags Quotations
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, rejected, expired, converted)
// @Param shipmentType query string false "Filter by shipment type" Enums(air, ocean, road)
// @Param search query string false "Search by quote number, route or cargo"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuotationDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := repository.QuotationFilter{
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid customerId format",
			})
			return
		}
		filter.CustomerID = &customerID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.QuotationStatus(raw)
		if !status.IsValid() {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid status filter",
			})
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("shipmentType"); raw != "" {
		filter.ShipmentType = domain.ShipmentType(raw)
	}

	result, err := h.quotationService.List(r.Context(), page, pageSize, filter)
	if err != nil {
		h.logger.Error("failed to list quotations", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list quotations",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get quotation by ID
// @Description Get a single quotation including cost breakdown and allowed transitions
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid quotation ID format",
		})
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		h.respondQuotationError(w, err, "Failed to get quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Create godoc
// @Summary Create quotation
// @Description Create a manually priced draft quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuotationRequest
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

	quotation, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Customer not found",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to create quotation", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create quotation",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// Generate godoc
// @Summary Generate quotation
// @Description Price a shipment against current rate cards and create a draft quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.GenerateQuotationRequest true "Shipment details to price"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Customer unknown or no rate card covers the route"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/generate [post]
func (h *QuotationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateQuotationRequest
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

	quotation, err := h.quotationService.Generate(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Customer not found",
			})
			return
		}
		if errors.Is(err, service.ErrNoRateForRoute) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "No active rate card covers the requested route and weight",
			})
			return
		}
		if errors.Is(err, service.ErrInconsistentRateCard) {
			// The route matched a card whose slabs don't cover the
			// weight: bad rate card data, not a bad request.
			h.logger.Error("rate card inconsistency during pricing", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
				Error:   "Internal Server Error",
				Message: "Rate card data is inconsistent for this route",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to generate quotation", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to generate quotation",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// Update godoc
// @Summary Update quotation
// @Description Update a draft quotation. Non-draft quotations are immutable.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param request body domain.UpdateQuotationRequest true "Quotation data"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Quotation is no longer a draft"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid quotation ID format",
		})
		return
	}

	var req domain.UpdateQuotationRequest
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

	quotation, err := h.quotationService.Update(r.Context(), id, &req)
	if err != nil {
		h.respondQuotationError(w, err, "Failed to update quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Delete godoc
// @Summary Delete quotation
// @Description Permanently delete a quotation. This is a hard delete with no undo.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid quotation ID format",
		})
		return
	}

	if err := h.quotationService.Delete(r.Context(), id); err != nil {
		h.respondQuotationError(w, err, "Failed to delete quotation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus godoc
// @Summary Update quotation status
// @Description Transition a quotation to a new lifecycle status
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param request body domain.UpdateQuotationStatusRequest true "Target status and optional note"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed from current status"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/status [patch]
func (h *QuotationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid quotation ID format",
		})
		return
	}

	var req domain.UpdateQuotationStatusRequest
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

	quotation, err := h.quotationService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		h.respondQuotationError(w, err, "Failed to update quotation status")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Send godoc
// @Summary Send quotation
// @Description Mark a draft quotation as sent to the customer. Assigns the quote number on first send.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param request body domain.QuotationActionRequest false "Optional note"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/send [post]
func (h *QuotationHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.quotationService.Send, "Failed to send quotation")
}

// Accept godoc
// @Summary Accept quotation
// @Description Mark a sent quotation as accepted by the customer
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param request body domain.QuotationActionRequest false "Optional note"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/accept [post]
func (h *QuotationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.quotationService.Accept, "Failed to accept quotation")
}

// Reject godoc
// @Summary Reject quotation
// @Description Mark a sent quotation as rejected by the customer
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param request body domain.QuotationActionRequest false "Rejection reason"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.quotationService.Reject, "Failed to reject quotation")
}

// Expire godoc
// @Summary Expire quotation
// @Description Mark a sent quotation as expired
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/expire [post]
func (h *QuotationHandler) Expire(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid quotation ID format",
		})
		return
	}

	quotation, err := h.quotationService.Expire(r.Context(), id)
	if err != nil {
		h.respondQuotationError(w, err, "Failed to expire quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Convert godoc
// @Summary Convert quotation to shipment
// @Description Convert an accepted quotation into a booked shipment
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param request body domain.QuotationActionRequest false "Optional note"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/convert [post]
func (h *QuotationHandler) Convert(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.quotationService.Convert, "Failed to convert quotation")
}

// ListActivities godoc
// @Summary List quotation activities
// @Description Get the recent activity feed for a quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/activities [get]
func (h *QuotationHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid quotation ID format",
		})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	activities, err := h.activityService.ListByTarget(r.Context(), domain.ActivityTargetQuotation, id, limit)
	if err != nil {
		h.logger.Error("failed to list quotation activities", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list activities",
		})
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// lifecycleAction handles the shared shape of the status action
// endpoints: parse ID, read an optional note body, call the service.
func (h *QuotationHandler) lifecycleAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id uuid.UUID, note string) (*domain.QuotationDTO, error),
	failureMessage string,
) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid quotation ID format",
		})
		return
	}

	var req domain.QuotationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	quotation, err := action(r.Context(), id, req.Note)
	if err != nil {
		h.respondQuotationError(w, err, failureMessage)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

func (h *QuotationHandler) respondQuotationError(w http.ResponseWriter, err error, failureMessage string) {
	switch {
	case errors.Is(err, service.ErrQuotationNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: "Quotation not found",
		})
	case service.IsInvalidTransition(err):
		respondJSON(w, http.StatusConflict, domain.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrConflict):
		respondJSON(w, http.StatusConflict, domain.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
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
