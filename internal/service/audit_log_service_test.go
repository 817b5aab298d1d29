package service_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"github.com/nordcargo/forwarding-api/internal/testutil"
)

func newAuditLogService(db *gorm.DB) *service.AuditLogService {
	return service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
}

// =============================================================================
// Audit Log Service Tests
// =============================================================================

func TestAuditLogService_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuditLogService(db)
	ctx := testutil.TestUserContext()

	t.Run("records user, request and changes", func(t *testing.T) {
		entityID := uuid.New()
		req := httptest.NewRequest("POST", "/api/v1/customers", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.10, 10.0.0.5")
		req.Header.Set("X-Request-ID", "req-4711")

		err := svc.Log(ctx, req, service.LogEntry{
			Action:     domain.AuditActionCreate,
			EntityType: "customer",
			EntityID:   &entityID,
			EntityName: "Borealis Trading AS",
			Changes:    map[string]string{"name": "Borealis Trading AS"},
		})
		require.NoError(t, err)

		var log domain.AuditLog
		require.NoError(t, db.First(&log, "entity_id = ?", entityID).Error)
		assert.Equal(t, domain.AuditActionCreate, log.Action)
		assert.Equal(t, "customer", log.EntityType)
		assert.Equal(t, "Borealis Trading AS", log.EntityName)
		assert.Equal(t, "test-user", log.UserID)
		assert.Equal(t, "operator@example.com", log.UserEmail)
		assert.Equal(t, "Test Operator", log.UserName)
		assert.Equal(t, "203.0.113.10", log.IPAddress)
		assert.Equal(t, "req-4711", log.RequestID)
		assert.JSONEq(t, `{"name":"Borealis Trading AS"}`, log.Changes)
		assert.False(t, log.PerformedAt.IsZero())
	})

	t.Run("falls back to remote addr and null changes", func(t *testing.T) {
		entityID := uuid.New()
		req := httptest.NewRequest("DELETE", "/api/v1/rate-cards", nil)
		req.RemoteAddr = "192.0.2.44:52110"

		err := svc.Log(ctx, req, service.LogEntry{
			Action:     domain.AuditActionDelete,
			EntityType: "rate_card",
			EntityID:   &entityID,
		})
		require.NoError(t, err)

		var log domain.AuditLog
		require.NoError(t, db.First(&log, "entity_id = ?", entityID).Error)
		assert.Equal(t, "192.0.2.44", log.IPAddress)
		assert.Equal(t, "null", log.Changes)
	})

	t.Run("tolerates missing request and anonymous context", func(t *testing.T) {
		entityID := uuid.New()
		err := svc.Log(context.Background(), nil, service.LogEntry{
			Action:     domain.AuditActionUpdate,
			EntityType: "shipment",
			EntityID:   &entityID,
		})
		require.NoError(t, err)

		var log domain.AuditLog
		require.NoError(t, db.First(&log, "entity_id = ?", entityID).Error)
		assert.Empty(t, log.UserID)
		assert.Empty(t, log.IPAddress)
	})
}

func TestAuditLogService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuditLogService(db)
	ctx := testutil.TestUserContext()

	customerID := uuid.New()
	quotationID := uuid.New()
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "customer", EntityID: &customerID}))
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionUpdate, EntityType: "customer", EntityID: &customerID}))
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "quotation", EntityID: &quotationID}))

	t.Run("lists all", func(t *testing.T) {
		result, err := svc.List(ctx, nil, 1, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
	})

	t.Run("filters by entity type", func(t *testing.T) {
		result, err := svc.List(ctx, &repository.AuditLogFilter{EntityType: "customer"}, 1, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("filters by action", func(t *testing.T) {
		action := domain.AuditActionUpdate
		result, err := svc.List(ctx, &repository.AuditLogFilter{Action: &action}, 1, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
	})

	t.Run("filters by user", func(t *testing.T) {
		result, err := svc.List(ctx, &repository.AuditLogFilter{UserID: "someone-else"}, 1, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Total)
	})
}

func TestAuditLogService_ListByEntity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuditLogService(db)
	ctx := testutil.TestUserContext()

	entityID := uuid.New()
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionUpdate, EntityType: "quotation", EntityID: &entityID}))
	}
	otherID := uuid.New()
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "quotation", EntityID: &otherID}))

	t.Run("returns entries for the entity", func(t *testing.T) {
		dtos, err := svc.ListByEntity(ctx, "quotation", entityID, 10)
		require.NoError(t, err)
		assert.Len(t, dtos, 4)
	})

	t.Run("honors limit", func(t *testing.T) {
		dtos, err := svc.ListByEntity(ctx, "quotation", entityID, 2)
		require.NoError(t, err)
		assert.Len(t, dtos, 2)
	})

	t.Run("clamps out of range limit", func(t *testing.T) {
		dtos, err := svc.ListByEntity(ctx, "quotation", entityID, -5)
		require.NoError(t, err)
		assert.Len(t, dtos, 4)
	})
}

func TestAuditLogService_PurgeOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuditLogService(db)
	ctx := testutil.TestUserContext()

	oldID := uuid.New()
	freshID := uuid.New()
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "customer", EntityID: &oldID}))
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "customer", EntityID: &freshID}))

	// Age one entry beyond the retention window
	require.NoError(t, db.Model(&domain.AuditLog{}).
		Where("entity_id = ?", oldID).
		Update("performed_at", time.Now().Add(-100*24*time.Hour)).Error)

	deleted, err := svc.PurgeOlderThan(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	deleted, err = svc.PurgeOlderThan(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
