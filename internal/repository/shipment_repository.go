package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"gorm.io/gorm"
)

type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.db.WithContext(ctx).
		Preload("Quotation").
		Where("id = ?", id).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *ShipmentRepository) GetByReference(ctx context.Context, reference string) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.db.WithContext(ctx).
		Preload("Quotation").
		Where("reference = ?", reference).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *ShipmentRepository) GetByQuotationID(ctx context.Context, quotationID uuid.UUID) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *ShipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	return r.db.WithContext(ctx).Save(shipment).Error
}

func (r *ShipmentRepository) List(ctx context.Context, page, pageSize int, status domain.ShipmentStatus, search string) ([]domain.Shipment, int64, error) {
	var shipments []domain.Shipment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Shipment{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(reference) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(erp_reference) LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&shipments).Error

	return shipments, total, err
}

// ListPendingCostSync returns shipments with an ERP reference but no
// actual cost recorded yet. The nightly sync job works through these.
func (r *ShipmentRepository) ListPendingCostSync(ctx context.Context, limit int) ([]domain.Shipment, error) {
	var shipments []domain.Shipment
	err := r.db.WithContext(ctx).
		Where("erp_reference <> '' AND actual_cost IS NULL AND status <> ?", domain.ShipmentStatusCancelled).
		Order("created_at ASC").
		Limit(limit).
		Find(&shipments).Error
	return shipments, err
}
