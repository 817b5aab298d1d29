package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"gorm.io/gorm"
)

// QuotationFilter narrows quotation listings
type QuotationFilter struct {
	CustomerID   *uuid.UUID
	Status       domain.QuotationStatus
	ShipmentType domain.ShipmentType
	Search       string
}

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Documents").
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) GetByQuoteNumber(ctx context.Context, quoteNumber string) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("quote_number = ?", quoteNumber).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Save(quotation).Error
}

func (r *QuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quotation{}, "id = ?", id).Error
}

func (r *QuotationRepository) List(ctx context.Context, page, pageSize int, filter QuotationFilter) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quotation{})

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ShipmentType != "" {
		query = query.Where("shipment_type = ?", filter.ShipmentType)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(quote_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(origin_location) LIKE ? OR LOWER(destination_location) LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&quotations).Error

	return quotations, total, err
}

// ListExpirable returns sent quotations whose validity window ended
// before the cutoff. Used by the expiry sweep.
func (r *QuotationRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Where("status = ? AND valid_until < ?", domain.QuotationStatusSent, cutoff).
		Order("valid_until ASC").
		Find(&quotations).Error
	return quotations, err
}

func (r *QuotationRepository) CountByStatus(ctx context.Context, status domain.QuotationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
