package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/service"
	"go.uber.org/zap"
)

// ActivityHandler serves the read-only activity feed recorded against
// customers, quotations, rate cards and shipments.
type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// List godoc
// @Summary List activities
// @Description Get paginated list of activity entries with optional target filters
// @Tags Activities
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param targetType query string false "Filter by target type" Enums(customer, quotation, rate_card, shipment, shipper_quote)
// @Param targetId query string false "Filter by target entity ID" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ActivityDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	var targetType *domain.ActivityTargetType
	if raw := r.URL.Query().Get("targetType"); raw != "" {
		tt := domain.ActivityTargetType(raw)
		targetType = &tt
	}

	var targetID *uuid.UUID
	if raw := r.URL.Query().Get("targetId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid targetId format, must be a valid UUID",
			})
			return
		}
		targetID = &id
	}

	result, err := h.activityService.List(r.Context(), page, pageSize, targetType, targetID)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list activities",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get activity by ID
// @Description Get a single activity entry
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Success 200 {object} domain.ActivityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid activity ID format",
		})
		return
	}

	activity, err := h.activityService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Activity not found",
			})
			return
		}
		h.logger.Error("failed to get activity", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get activity",
		})
		return
	}

	respondJSON(w, http.StatusOK, activity)
}
