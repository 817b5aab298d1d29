package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/erp"
	"github.com/nordcargo/forwarding-api/internal/mapper"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// costSyncBatchSize bounds how many shipments one sync pass touches
const costSyncBatchSize = 200

type ShipmentService struct {
	shipmentRepo *repository.ShipmentRepository
	activityRepo *repository.ActivityRepository
	erpClient    *erp.Client
	logger       *zap.Logger
}

func NewShipmentService(
	shipmentRepo *repository.ShipmentRepository,
	activityRepo *repository.ActivityRepository,
	erpClient *erp.Client,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		activityRepo: activityRepo,
		erpClient:    erpClient,
		logger:       logger,
	}
}

func (s *ShipmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipmentDTO, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	dto := mapper.ToShipmentDTO(shipment)
	return &dto, nil
}

func (s *ShipmentService) GetByReference(ctx context.Context, reference string) (*domain.ShipmentDTO, error) {
	shipment, err := s.shipmentRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	dto := mapper.ToShipmentDTO(shipment)
	return &dto, nil
}

func (s *ShipmentService) List(ctx context.Context, page, pageSize int, status domain.ShipmentStatus, search string) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	shipments, total, err := s.shipmentRepo.List(ctx, page, pageSize, status, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}

	dtos := make([]domain.ShipmentDTO, len(shipments))
	for i, shipment := range shipments {
		dtos[i] = mapper.ToShipmentDTO(&shipment)
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

// UpdateStatus moves a shipment through its operational states
func (s *ShipmentService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateShipmentStatusRequest) (*domain.ShipmentDTO, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid shipment status %q", ErrInvalidInput, req.Status)
	}

	oldStatus := shipment.Status
	shipment.Status = req.Status

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to update shipment status: %w", err)
	}

	s.logActivity(ctx, shipment.ID, "Shipment status changed",
		fmt.Sprintf("Shipment %s changed status: %s -> %s", shipment.Reference, oldStatus, req.Status))

	dto := mapper.ToShipmentDTO(shipment)
	return &dto, nil
}

// SetERPReference links a shipment to its record in the legacy ERP so
// the cost sync can find its landed cost
func (s *ShipmentService) SetERPReference(ctx context.Context, id uuid.UUID, erpReference string) (*domain.ShipmentDTO, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	shipment.ERPReference = erpReference
	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to update shipment: %w", err)
	}

	dto := mapper.ToShipmentDTO(shipment)
	return &dto, nil
}

// SyncActualCosts pulls landed costs from the legacy ERP for shipments
// that have an ERP reference but no actual cost yet. Returns the
// number of shipments updated. ERP failures on one shipment do not
// stop the rest of the batch.
func (s *ShipmentService) SyncActualCosts(ctx context.Context) (int, error) {
	if s.erpClient == nil || !s.erpClient.IsEnabled() {
		s.logger.Debug("ERP sync skipped, client not enabled")
		return 0, nil
	}

	shipments, err := s.shipmentRepo.ListPendingCostSync(ctx, costSyncBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list shipments pending cost sync: %w", err)
	}

	synced := 0
	for i := range shipments {
		shipment := &shipments[i]
		if shipment.ERPReference == "" {
			continue
		}

		landed, err := s.erpClient.GetLandedCost(ctx, shipment.ERPReference)
		if err != nil {
			s.logger.Error("failed to fetch landed cost from ERP",
				zap.String("shipmentID", shipment.ID.String()),
				zap.String("erpReference", shipment.ERPReference),
				zap.Error(err))
			continue
		}
		if landed == nil {
			// Not landed in the ERP yet
			continue
		}

		now := time.Now()
		amount := landed.Amount
		shipment.ActualCost = &amount
		shipment.ActualCostSyncedAt = &now

		if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
			s.logger.Error("failed to persist synced cost",
				zap.String("shipmentID", shipment.ID.String()),
				zap.Error(err))
			continue
		}

		synced++
		s.logger.Info("synced actual cost from ERP",
			zap.String("shipmentID", shipment.ID.String()),
			zap.String("reference", shipment.Reference),
			zap.Float64("actualCost", amount),
			zap.Float64("quotedCost", shipment.QuotedCost))
	}

	return synced, nil
}

func (s *ShipmentService) logActivity(ctx context.Context, shipmentID uuid.UUID, title, body string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetShipment,
		TargetID:    shipmentID,
		Title:       title,
		Body:        body,
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
