package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"go.uber.org/zap"
)

// AuditHandler handles audit log related HTTP requests. Routes are
// mounted behind the admin role check.
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List audit logs
// @Description Returns a paginated list of audit log entries with optional filters
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (default: 50, max: 200)"
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action type"
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID" format(uuid)
// @Param requestId query string false "Filter by request ID"
// @Param startTime query string false "Filter by start time (RFC3339)"
// @Param endTime query string false "Filter by end time (RFC3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AuditLogDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 50)

	filter := &repository.AuditLogFilter{
		UserID:     r.URL.Query().Get("userId"),
		EntityType: r.URL.Query().Get("entityType"),
		RequestID:  r.URL.Query().Get("requestId"),
	}

	if actionStr := r.URL.Query().Get("action"); actionStr != "" {
		action := domain.AuditAction(actionStr)
		filter.Action = &action
	}

	if entityIDStr := r.URL.Query().Get("entityId"); entityIDStr != "" {
		entityID, err := uuid.Parse(entityIDStr)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid entityId format, must be a valid UUID",
			})
			return
		}
		filter.EntityID = &entityID
	}

	if startStr := r.URL.Query().Get("startTime"); startStr != "" {
		startTime, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid startTime format, expected RFC3339",
			})
			return
		}
		filter.StartTime = &startTime
	}

	if endStr := r.URL.Query().Get("endTime"); endStr != "" {
		endTime, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid endTime format, expected RFC3339",
			})
			return
		}
		filter.EndTime = &endTime
	}

	result, err := h.auditService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to retrieve audit logs",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByEntity godoc
// @Summary Get audit logs for an entity
// @Description Returns recent audit logs for a specific entity
// @Tags Audit
// @Produce json
// @Param entityType path string true "Entity type (e.g. Quotation, RateCard)"
// @Param entityId path string true "Entity ID" format(uuid)
// @Param limit query int false "Maximum number of entries" default(100)
// @Success 200 {array} domain.AuditLogDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit/entity/{entityType}/{entityId} [get]
func (h *AuditHandler) GetByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID, err := uuid.Parse(chi.URLParam(r, "entityId"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid entity ID format",
		})
		return
	}

	limit := parseIntQuery(r, "limit", 100)

	logs, err := h.auditService.ListByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		h.logger.Error("failed to get entity audit logs",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to retrieve audit logs",
		})
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}
