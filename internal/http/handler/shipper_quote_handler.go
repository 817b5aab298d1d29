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

type ShipperQuoteHandler struct {
	shipperQuoteService *service.ShipperQuoteService
	logger              *zap.Logger
}

func NewShipperQuoteHandler(shipperQuoteService *service.ShipperQuoteService, logger *zap.Logger) *ShipperQuoteHandler {
	return &ShipperQuoteHandler{
		shipperQuoteService: shipperQuoteService,
		logger:              logger,
	}
}

// List godoc
// @Summary List shipper quote requests
// @Description Get paginated list of outbound shipper quote requests
// @Tags ShipperQuotes
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(pending, received)
// @Param search query string false "Search by shipper name or route"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ShipperQuoteRequestDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipper-quotes [get]
func (h *ShipperQuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	status := domain.ShipperQuoteStatus(r.URL.Query().Get("status"))
	search := r.URL.Query().Get("search")

	result, err := h.shipperQuoteService.List(r.Context(), page, pageSize, status, search)
	if err != nil {
		h.logger.Error("failed to list shipper quotes", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list shipper quotes",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get shipper quote request by ID
// @Description Get a single shipper quote request
// @Tags ShipperQuotes
// @Accept json
// @Produce json
// @Param id path string true "Shipper quote request ID" format(uuid)
// @Success 200 {object} domain.ShipperQuoteRequestDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipper-quotes/{id} [get]
func (h *ShipperQuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid shipper quote ID format",
		})
		return
	}

	request, err := h.shipperQuoteService.GetByID(r.Context(), id)
	if err != nil {
		h.respondShipperQuoteError(w, err, "Failed to get shipper quote")
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Create godoc
// @Summary Create shipper quote request
// @Description Record an outbound quote request sent to a shipper
// @Tags ShipperQuotes
// @Accept json
// @Produce json
// @Param request body domain.CreateShipperQuoteRequest true "Shipper quote request data"
// @Success 201 {object} domain.ShipperQuoteRequestDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipper-quotes [post]
func (h *ShipperQuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateShipperQuoteRequest
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

	request, err := h.shipperQuoteService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Customer not found",
			})
			return
		}
		h.logger.Error("failed to create shipper quote", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create shipper quote",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/shipper-quotes/"+request.ID.String())
	respondJSON(w, http.StatusCreated, request)
}

// RecordReply godoc
// @Summary Record shipper reply
// @Description Record the price a shipper quoted back for a pending request
// @Tags ShipperQuotes
// @Accept json
// @Produce json
// @Param id path string true "Shipper quote request ID" format(uuid)
// @Param request body domain.RecordShipperReplyRequest true "Quoted price"
// @Success 200 {object} domain.ShipperQuoteRequestDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Reply already recorded"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipper-quotes/{id}/reply [post]
func (h *ShipperQuoteHandler) RecordReply(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid shipper quote ID format",
		})
		return
	}

	var req domain.RecordShipperReplyRequest
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

	request, err := h.shipperQuoteService.RecordReply(r.Context(), id, &req)
	if err != nil {
		h.respondShipperQuoteError(w, err, "Failed to record shipper reply")
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Convert godoc
// @Summary Convert shipper quote to quotation
// @Description Build a draft customer quotation from a received shipper quote
// @Tags ShipperQuotes
// @Accept json
// @Produce json
// @Param id path string true "Shipper quote request ID" format(uuid)
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Not received yet or already converted"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipper-quotes/{id}/convert [post]
func (h *ShipperQuoteHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid shipper quote ID format",
		})
		return
	}

	quotation, err := h.shipperQuoteService.ConvertToQuotation(r.Context(), id)
	if err != nil {
		h.respondShipperQuoteError(w, err, "Failed to convert shipper quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// Delete godoc
// @Summary Delete shipper quote request
// @Description Delete a shipper quote request that has not been converted
// @Tags ShipperQuotes
// @Accept json
// @Produce json
// @Param id path string true "Shipper quote request ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /shipper-quotes/{id} [delete]
func (h *ShipperQuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid shipper quote ID format",
		})
		return
	}

	if err := h.shipperQuoteService.Delete(r.Context(), id); err != nil {
		h.respondShipperQuoteError(w, err, "Failed to delete shipper quote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShipperQuoteHandler) respondShipperQuoteError(w http.ResponseWriter, err error, failureMessage string) {
	switch {
	case errors.Is(err, service.ErrShipperQuoteNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: "Shipper quote not found",
		})
	case errors.Is(err, service.ErrShipperQuoteAlreadyReceived),
		errors.Is(err, service.ErrShipperQuoteNotReceived),
		errors.Is(err, service.ErrShipperQuoteAlreadyConverted),
		errors.Is(err, service.ErrConflict):
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
