package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"gorm.io/gorm"
)

type ShipperQuoteRepository struct {
	db *gorm.DB
}

func NewShipperQuoteRepository(db *gorm.DB) *ShipperQuoteRepository {
	return &ShipperQuoteRepository{db: db}
}

func (r *ShipperQuoteRepository) Create(ctx context.Context, request *domain.ShipperQuoteRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *ShipperQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipperQuoteRequest, error) {
	var request domain.ShipperQuoteRequest
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ShipperQuoteRepository) Update(ctx context.Context, request *domain.ShipperQuoteRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *ShipperQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ShipperQuoteRequest{}, "id = ?", id).Error
}

func (r *ShipperQuoteRepository) List(ctx context.Context, page, pageSize int, status domain.ShipperQuoteStatus, search string) ([]domain.ShipperQuoteRequest, int64, error) {
	var requests []domain.ShipperQuoteRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ShipperQuoteRequest{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(shipper_name) LIKE ? OR LOWER(origin_location) LIKE ? OR LOWER(destination_location) LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&requests).Error

	return requests, total, err
}
