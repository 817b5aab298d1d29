package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/mapper"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"go.uber.org/zap"
)

// AuditLogService handles audit logging operations
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// LogEntry represents the input for creating an audit log entry
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	EntityName string
	Changes    interface{}
}

// Log creates an audit log entry from context and request. Audit
// failures are logged but never fail the request that triggered them.
func (s *AuditLogService) Log(ctx context.Context, r *http.Request, entry LogEntry) error {
	auditLog := &domain.AuditLog{
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		EntityName:  entry.EntityName,
		PerformedAt: time.Now(),
	}

	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		auditLog.UserID = userCtx.UserID
		auditLog.UserEmail = userCtx.Email
		auditLog.UserName = userCtx.DisplayName
	}

	if r != nil {
		auditLog.IPAddress = s.getClientIP(r)
		auditLog.RequestID = r.Header.Get("X-Request-ID")
	}

	// Serialize changes (use "null" for JSONB compatibility when no value)
	auditLog.Changes = "null"
	if entry.Changes != nil {
		if changesJSON, err := json.Marshal(entry.Changes); err == nil {
			auditLog.Changes = string(changesJSON)
		}
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err))
		return err
	}

	return nil
}

func (s *AuditLogService) List(ctx context.Context, filter *repository.AuditLogFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	logs, total, err := s.auditRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = mapper.ToAuditLogDTO(&log)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListByEntity returns the audit trail for a single entity
func (s *AuditLogService) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]domain.AuditLogDTO, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	logs, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs for entity: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = mapper.ToAuditLogDTO(&log)
	}

	return dtos, nil
}

// PurgeOlderThan removes audit log entries older than the retention
// window. Returns the number of rows removed.
func (s *AuditLogService) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	before := time.Now().Add(-retention)
	deleted, err := s.auditRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("purged old audit logs",
			zap.Int64("deleted", deleted),
			zap.Time("before", before))
	}

	return deleted, nil
}

// getClientIP extracts the client IP, honoring proxies
func (s *AuditLogService) getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
