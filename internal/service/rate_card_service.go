package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/mapper"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rateCardDateLayout = "2006-01-02"

type RateCardService struct {
	rateCardRepo *repository.RateCardRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewRateCardService(
	rateCardRepo *repository.RateCardRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *RateCardService {
	return &RateCardService{
		rateCardRepo: rateCardRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *RateCardService) Create(ctx context.Context, req *domain.CreateRateCardRequest) (*domain.RateCardDTO, error) {
	validFrom, validUntil, err := parseValidityDates(req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}

	slabs, err := buildSlabs(req.Slabs)
	if err != nil {
		return nil, err
	}

	card := &domain.RateCard{
		ShipperName:               req.ShipperName,
		OriginCode:                strings.ToUpper(req.OriginCode),
		DestinationCode:           strings.ToUpper(req.DestinationCode),
		ShipmentType:              req.ShipmentType,
		Slabs:                     slabs,
		FuelSurchargePercent:      req.FuelSurchargePercent,
		SecuritySurchargePercent:  req.SecuritySurchargePercent,
		DangerousGoodsSurcharge:   req.DangerousGoodsSurcharge,
		OriginHandlingCharge:      req.OriginHandlingCharge,
		DestinationHandlingCharge: req.DestinationHandlingCharge,
		MarginPercent:             req.MarginPercent,
		MinWeightKg:               req.MinWeightKg,
		MaxWeightKg:               req.MaxWeightKg,
		ValidFrom:                 validFrom,
		ValidUntil:                validUntil,
		Status:                    domain.RateCardStatusActive,
		Notes:                     req.Notes,
	}

	if err := s.rateCardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create rate card: %w", err)
	}

	s.logActivity(ctx, card.ID, "Rate card created",
		fmt.Sprintf("Rate card for '%s' on %s-%s (%s) was created",
			card.ShipperName, card.OriginCode, card.DestinationCode, card.ShipmentType))

	dto := mapper.ToRateCardDTO(card)
	return &dto, nil
}

func (s *RateCardService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RateCardDTO, error) {
	card, err := s.rateCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateCardNotFound
		}
		return nil, fmt.Errorf("failed to get rate card: %w", err)
	}

	dto := mapper.ToRateCardDTO(card)
	return &dto, nil
}

func (s *RateCardService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateRateCardRequest) (*domain.RateCardDTO, error) {
	card, err := s.rateCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateCardNotFound
		}
		return nil, fmt.Errorf("failed to get rate card: %w", err)
	}

	validFrom, validUntil, err := parseValidityDates(req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}

	slabs, err := buildSlabs(req.Slabs)
	if err != nil {
		return nil, err
	}

	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid rate card status %q", ErrInvalidInput, req.Status)
	}

	card.ShipperName = req.ShipperName
	card.OriginCode = strings.ToUpper(req.OriginCode)
	card.DestinationCode = strings.ToUpper(req.DestinationCode)
	card.ShipmentType = req.ShipmentType
	card.FuelSurchargePercent = req.FuelSurchargePercent
	card.SecuritySurchargePercent = req.SecuritySurchargePercent
	card.DangerousGoodsSurcharge = req.DangerousGoodsSurcharge
	card.OriginHandlingCharge = req.OriginHandlingCharge
	card.DestinationHandlingCharge = req.DestinationHandlingCharge
	card.MarginPercent = req.MarginPercent
	card.MinWeightKg = req.MinWeightKg
	card.MaxWeightKg = req.MaxWeightKg
	card.ValidFrom = validFrom
	card.ValidUntil = validUntil
	card.Notes = req.Notes
	if req.Status != "" {
		card.Status = req.Status
	}

	// Slabs are replaced wholesale; existing quotations keep their
	// persisted breakdown and are not repriced
	if err := s.rateCardRepo.ReplaceSlabs(ctx, card.ID, slabs); err != nil {
		return nil, fmt.Errorf("failed to replace weight slabs: %w", err)
	}
	card.Slabs = nil
	if err := s.rateCardRepo.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update rate card: %w", err)
	}

	// Reload with slabs
	card, err = s.rateCardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload rate card: %w", err)
	}

	s.logActivity(ctx, card.ID, "Rate card updated",
		fmt.Sprintf("Rate card for '%s' on %s-%s was updated",
			card.ShipperName, card.OriginCode, card.DestinationCode))

	dto := mapper.ToRateCardDTO(card)
	return &dto, nil
}

func (s *RateCardService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.rateCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRateCardNotFound
		}
		return fmt.Errorf("failed to get rate card: %w", err)
	}

	if err := s.rateCardRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete rate card: %w", err)
	}

	return nil
}

func (s *RateCardService) List(ctx context.Context, page, pageSize int, filter repository.RateCardFilter) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	cards, total, err := s.rateCardRepo.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate cards: %w", err)
	}

	dtos := make([]domain.RateCardDTO, len(cards))
	for i, card := range cards {
		dtos[i] = mapper.ToRateCardDTO(&card)
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

// buildSlabs validates the requested slabs as a set: sorted by lower
// bound they must not overlap, and only the last slab may be unbounded
func buildSlabs(reqs []domain.CreateWeightSlabRequest) ([]domain.WeightSlab, error) {
	slabs := make([]domain.WeightSlab, len(reqs))
	for i, req := range reqs {
		if req.MaxKg != nil && *req.MaxKg <= req.MinKg {
			return nil, fmt.Errorf("%w: slab %d has maxKg <= minKg", ErrInvalidInput, i)
		}
		currency := strings.ToUpper(req.Currency)
		if currency == "" {
			currency = "USD"
		}
		slabs[i] = domain.WeightSlab{
			MinKg:     req.MinKg,
			MaxKg:     req.MaxKg,
			RatePerKg: req.RatePerKg,
			Currency:  currency,
		}
	}

	sort.Slice(slabs, func(i, j int) bool { return slabs[i].MinKg < slabs[j].MinKg })
	for i := range slabs {
		slabs[i].DisplayOrder = i
	}

	for i := 1; i < len(slabs); i++ {
		prev, cur := slabs[i-1], slabs[i]
		if prev.MaxKg == nil {
			return nil, fmt.Errorf("%w: unbounded slab must be last", ErrInvalidInput)
		}
		if cur.MinKg < *prev.MaxKg {
			return nil, fmt.Errorf("%w: slab %d overlaps previous slab", ErrInvalidInput, i)
		}
	}

	return slabs, nil
}

func parseValidityDates(from, until string) (time.Time, time.Time, error) {
	validFrom, err := time.Parse(rateCardDateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid validFrom date %q", ErrInvalidInput, from)
	}
	validUntil, err := time.Parse(rateCardDateLayout, until)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid validUntil date %q", ErrInvalidInput, until)
	}
	if !validUntil.After(validFrom) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: validUntil must be after validFrom", ErrInvalidInput)
	}
	return validFrom, validUntil, nil
}

func (s *RateCardService) logActivity(ctx context.Context, cardID uuid.UUID, title, body string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetRateCard,
		TargetID:    cardID,
		Title:       title,
		Body:        body,
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
