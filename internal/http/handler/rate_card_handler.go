package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"go.uber.org/zap"
)

type RateCardHandler struct {
	rateCardService *service.RateCardService
	logger          *zap.Logger
}

func NewRateCardHandler(rateCardService *service.RateCardService, logger *zap.Logger) *RateCardHandler {
	return &RateCardHandler{
		rateCardService: rateCardService,
		logger:          logger,
	}
}

// List godoc
// @Summary List rate cards
// @Description Get paginated list of rate cards with optional filters
// @Tags RateCards
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param originCode query string false "Filter by origin code"
// @Param destinationCode query string false "Filter by destination code"
// @Param shipmentType query string false "Filter by shipment type" Enums(air, ocean, road)
// @Param status query string false "Filter by status" Enums(active, inactive)
// @Param search query string false "Search by name or route"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.RateCardDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rate-cards [get]
func (h *RateCardHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := repository.RateCardFilter{
		OriginCode:      strings.ToUpper(r.URL.Query().Get("originCode")),
		DestinationCode: strings.ToUpper(r.URL.Query().Get("destinationCode")),
		ShipmentType:    domain.ShipmentType(r.URL.Query().Get("shipmentType")),
		Status:          domain.RateCardStatus(r.URL.Query().Get("status")),
		Search:          r.URL.Query().Get("search"),
	}

	result, err := h.rateCardService.List(r.Context(), page, pageSize, filter)
	if err != nil {
		h.logger.Error("failed to list rate cards", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list rate cards",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get rate card by ID
// @Description Get a single rate card including its weight slabs
// @Tags RateCards
// @Accept json
// @Produce json
// @Param id path string true "Rate card ID" format(uuid)
// @Success 200 {object} domain.RateCardDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rate-cards/{id} [get]
func (h *RateCardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid rate card ID format",
		})
		return
	}

	card, err := h.rateCardService.GetByID(r.Context(), id)
	if err != nil {
		h.respondRateCardError(w, err, "Failed to get rate card")
		return
	}

	respondJSON(w, http.StatusOK, card)
}

// Create godoc
// @Summary Create rate card
// @Description Create a rate card with its weight slabs. Slabs must not overlap.
// @Tags RateCards
// @Accept json
// @Produce json
// @Param request body domain.CreateRateCardRequest true "Rate card data"
// @Success 201 {object} domain.RateCardDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rate-cards [post]
func (h *RateCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRateCardRequest
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

	card, err := h.rateCardService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("failed to create rate card", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create rate card",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/rate-cards/"+card.ID.String())
	respondJSON(w, http.StatusCreated, card)
}

// Update godoc
// @Summary Update rate card
// @Description Update a rate card and replace its weight slabs. Existing quotations keep their persisted breakdowns.
// @Tags RateCards
// @Accept json
// @Produce json
// @Param id path string true "Rate card ID" format(uuid)
// @Param request body domain.UpdateRateCardRequest true "Rate card data"
// @Success 200 {object} domain.RateCardDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rate-cards/{id} [put]
func (h *RateCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid rate card ID format",
		})
		return
	}

	var req domain.UpdateRateCardRequest
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

	card, err := h.rateCardService.Update(r.Context(), id, &req)
	if err != nil {
		h.respondRateCardError(w, err, "Failed to update rate card")
		return
	}

	respondJSON(w, http.StatusOK, card)
}

// Delete godoc
// @Summary Delete rate card
// @Description Delete a rate card and its weight slabs
// @Tags RateCards
// @Accept json
// @Produce json
// @Param id path string true "Rate card ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /rate-cards/{id} [delete]
func (h *RateCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid rate card ID format",
		})
		return
	}

	if err := h.rateCardService.Delete(r.Context(), id); err != nil {
		h.respondRateCardError(w, err, "Failed to delete rate card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RateCardHandler) respondRateCardError(w http.ResponseWriter, err error, failureMessage string) {
	switch {
	case errors.Is(err, service.ErrRateCardNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: "Rate card not found",
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
