package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"gorm.io/gorm"
)

// RateCardFilter narrows rate card listings
type RateCardFilter struct {
	OriginCode      string
	DestinationCode string
	ShipmentType    domain.ShipmentType
	Status          domain.RateCardStatus
	Search          string
}

type RateCardRepository struct {
	db *gorm.DB
}

func NewRateCardRepository(db *gorm.DB) *RateCardRepository {
	return &RateCardRepository{db: db}
}

func (r *RateCardRepository) Create(ctx context.Context, card *domain.RateCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *RateCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RateCard, error) {
	var card domain.RateCard
	err := r.db.WithContext(ctx).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, min_kg ASC")
		}).
		Where("id = ?", id).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *RateCardRepository) Update(ctx context.Context, card *domain.RateCard) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(card).Error
}

// ReplaceSlabs swaps the card's slab set inside one transaction
func (r *RateCardRepository) ReplaceSlabs(ctx context.Context, cardID uuid.UUID, slabs []domain.WeightSlab) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.WeightSlab{}, "rate_card_id = ?", cardID).Error; err != nil {
			return err
		}
		for i := range slabs {
			slabs[i].RateCardID = cardID
		}
		return tx.Create(&slabs).Error
	})
}

func (r *RateCardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Slabs").Delete(&domain.RateCard{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *RateCardRepository) List(ctx context.Context, page, pageSize int, filter RateCardFilter) ([]domain.RateCard, int64, error) {
	var cards []domain.RateCard
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.RateCard{})

	if filter.OriginCode != "" {
		query = query.Where("origin_code = ?", strings.ToUpper(filter.OriginCode))
	}
	if filter.DestinationCode != "" {
		query = query.Where("destination_code = ?", strings.ToUpper(filter.DestinationCode))
	}
	if filter.ShipmentType != "" {
		query = query.Where("shipment_type = ?", filter.ShipmentType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(shipper_name) LIKE ?", searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Slabs", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC, min_kg ASC")
	}).
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&cards).Error

	return cards, total, err
}

// ListForRoute returns active cards for an exact origin/destination
// pair and shipment type, slabs preloaded in display order. Candidate
// filtering beyond route scope happens in the pricing package.
func (r *RateCardRepository) ListForRoute(ctx context.Context, originCode, destinationCode string, shipmentType domain.ShipmentType) ([]domain.RateCard, error) {
	var cards []domain.RateCard
	err := r.db.WithContext(ctx).
		Preload("Slabs", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, min_kg ASC")
		}).
		Where("origin_code = ? AND destination_code = ? AND shipment_type = ? AND status = ?",
			strings.ToUpper(originCode), strings.ToUpper(destinationCode), shipmentType, domain.RateCardStatusActive).
		Find(&cards).Error
	return cards, err
}
