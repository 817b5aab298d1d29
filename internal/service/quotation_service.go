package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/mapper"
	"github.com/nordcargo/forwarding-api/internal/pricing"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const quotationDateLayout = "2006-01-02"

type QuotationService struct {
	db            *gorm.DB
	quotationRepo *repository.QuotationRepository
	customerRepo  *repository.CustomerRepository
	rateCardRepo  *repository.RateCardRepository
	shipmentRepo  *repository.ShipmentRepository
	activityRepo  *repository.ActivityRepository
	numberService *QuoteNumberService
	pricingCfg    pricing.Config
	logger        *zap.Logger
}

func NewQuotationService(
	db *gorm.DB,
	quotationRepo *repository.QuotationRepository,
	customerRepo *repository.CustomerRepository,
	rateCardRepo *repository.RateCardRepository,
	shipmentRepo *repository.ShipmentRepository,
	activityRepo *repository.ActivityRepository,
	numberService *QuoteNumberService,
	pricingCfg pricing.Config,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		db:            db,
		quotationRepo: quotationRepo,
		customerRepo:  customerRepo,
		rateCardRepo:  rateCardRepo,
		shipmentRepo:  shipmentRepo,
		activityRepo:  activityRepo,
		numberService: numberService,
		pricingCfg:    pricingCfg,
		logger:        logger,
	}
}

// Create creates a draft quotation with manually supplied pricing
func (s *QuotationService) Create(ctx context.Context, req *domain.CreateQuotationRequest) (*domain.QuotationDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	validFrom, validUntil, err := s.resolveValidityWindow(req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	quotation := &domain.Quotation{
		CustomerID:          customer.ID,
		CustomerName:        customer.Name,
		OriginLocation:      req.OriginLocation,
		OriginCountry:       req.OriginCountry,
		OriginCode:          strings.ToUpper(req.OriginCode),
		DestinationLocation: req.DestinationLocation,
		DestinationCountry:  req.DestinationCountry,
		DestinationCode:     strings.ToUpper(req.DestinationCode),
		ShipmentType:        req.ShipmentType,
		WeightKg:            req.WeightKg,
		VolumeCbm:           req.VolumeCbm,
		Dimensions:          req.Dimensions,
		CargoDescription:    req.CargoDescription,
		Status:              domain.QuotationStatusDraft,
		TotalCost:           req.TotalCost,
		Currency:            currency,
		ValidFrom:           validFrom,
		ValidUntil:          validUntil,
		ContactEmail:        req.ContactEmail,
		Notes:               req.Notes,
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		quotation.CreatedByID = userCtx.UserID
		quotation.CreatedByName = userCtx.DisplayName
		quotation.UpdatedByID = userCtx.UserID
		quotation.UpdatedByName = userCtx.DisplayName
	}

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	s.logActivity(ctx, quotation.ID, "Quotation created",
		fmt.Sprintf("Draft quotation for %s -> %s created for customer '%s'",
			quotation.OriginLocation, quotation.DestinationLocation, customer.Name))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// Generate creates a fully priced draft quotation by resolving the
// best rate card for the route and running the cost build-up.
func (s *QuotationService) Generate(ctx context.Context, req *domain.GenerateQuotationRequest) (*domain.QuotationDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	originCode := strings.ToUpper(req.OriginCode)
	destinationCode := strings.ToUpper(req.DestinationCode)

	cards, err := s.rateCardRepo.ListForRoute(ctx, originCode, destinationCode, req.ShipmentType)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate cards for route: %w", err)
	}

	now := time.Now()
	chargeable := pricing.ChargeableWeight(req.WeightKg, req.VolumeCbm, s.pricingCfg.VolumetricDivisor)

	card, err := pricing.SelectRateCard(cards, req.ShipmentType, chargeable, now, s.pricingCfg)
	if err != nil {
		if errors.Is(err, pricing.ErrNoMatchingRateCard) {
			return nil, ErrNoRateForRoute
		}
		return nil, fmt.Errorf("failed to select rate card: %w", err)
	}

	breakdown, err := pricing.CalculateCost(card, pricing.Input{
		WeightKg:       req.WeightKg,
		VolumeCbm:      req.VolumeCbm,
		DangerousGoods: req.DangerousGoods,
	}, s.pricingCfg)
	if err != nil {
		if errors.Is(err, pricing.ErrInconsistentRateCard) {
			return nil, fmt.Errorf("%w: %v", ErrInconsistentRateCard, err)
		}
		return nil, fmt.Errorf("failed to calculate cost: %w", err)
	}

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize cost breakdown: %w", err)
	}

	validFrom := now.Truncate(24 * time.Hour)
	validUntil := validFrom.AddDate(0, 0, s.pricingCfg.DefaultValidityDays)

	quotation := &domain.Quotation{
		CustomerID:          customer.ID,
		CustomerName:        customer.Name,
		OriginLocation:      req.OriginLocation,
		OriginCountry:       req.OriginCountry,
		OriginCode:          originCode,
		DestinationLocation: req.DestinationLocation,
		DestinationCountry:  req.DestinationCountry,
		DestinationCode:     destinationCode,
		ShipmentType:        req.ShipmentType,
		WeightKg:            req.WeightKg,
		VolumeCbm:           req.VolumeCbm,
		Dimensions:          req.Dimensions,
		CargoDescription:    req.CargoDescription,
		Status:              domain.QuotationStatusDraft,
		TotalCost:           breakdown.TotalCost,
		Currency:            breakdown.Currency,
		CostBreakdown:       string(breakdownJSON),
		RateCardID:          &card.ID,
		ValidFrom:           validFrom,
		ValidUntil:          validUntil,
		ContactEmail:        req.ContactEmail,
		Notes:               req.Notes,
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		quotation.CreatedByID = userCtx.UserID
		quotation.CreatedByName = userCtx.DisplayName
		quotation.UpdatedByID = userCtx.UserID
		quotation.UpdatedByName = userCtx.DisplayName
	}

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	s.logger.Info("generated priced quotation",
		zap.String("quotationID", quotation.ID.String()),
		zap.String("route", originCode+"-"+destinationCode),
		zap.String("rateCardID", card.ID.String()),
		zap.Float64("chargeableWeightKg", breakdown.ChargeableWeightKg),
		zap.Float64("totalCost", breakdown.TotalCost))

	s.logActivity(ctx, quotation.ID, "Quotation generated",
		fmt.Sprintf("Quotation priced at %.2f %s against rate card from '%s'",
			breakdown.TotalCost, breakdown.Currency, card.ShipperName))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// Update edits a quotation. Only draft quotations can be edited; once
// sent the quoted terms are frozen.
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuotationRequest) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if quotation.Status != domain.QuotationStatusDraft {
		return nil, fmt.Errorf("%w: only draft quotations can be edited (current status: %s)",
			ErrConflict, quotation.Status)
	}

	validFrom, validUntil, err := s.resolveValidityWindow(req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}

	quotation.OriginLocation = req.OriginLocation
	quotation.OriginCountry = req.OriginCountry
	quotation.OriginCode = strings.ToUpper(req.OriginCode)
	quotation.DestinationLocation = req.DestinationLocation
	quotation.DestinationCountry = req.DestinationCountry
	quotation.DestinationCode = strings.ToUpper(req.DestinationCode)
	quotation.ShipmentType = req.ShipmentType
	quotation.WeightKg = req.WeightKg
	quotation.VolumeCbm = req.VolumeCbm
	quotation.Dimensions = req.Dimensions
	quotation.CargoDescription = req.CargoDescription
	quotation.TotalCost = req.TotalCost
	quotation.ValidFrom = validFrom
	quotation.ValidUntil = validUntil
	quotation.ContactEmail = req.ContactEmail
	quotation.Notes = req.Notes
	if req.Currency != "" {
		quotation.Currency = strings.ToUpper(req.Currency)
	}

	// Manual edits invalidate any previously computed breakdown
	quotation.CostBreakdown = ""
	quotation.RateCardID = nil

	if userCtx, ok := auth.FromContext(ctx); ok {
		quotation.UpdatedByID = userCtx.UserID
		quotation.UpdatedByName = userCtx.DisplayName
	}

	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to update quotation: %w", err)
	}

	s.logActivity(ctx, quotation.ID, "Quotation updated",
		fmt.Sprintf("Quotation %s was updated", s.describe(quotation)))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// Delete hard-deletes a quotation regardless of status. There is no
// soft-undo; an activity row is the only trace left behind.
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuotationNotFound
		}
		return fmt.Errorf("failed to get quotation: %w", err)
	}

	if err := s.quotationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}

	s.logActivity(ctx, quotation.ID, "Quotation deleted",
		fmt.Sprintf("Quotation %s was deleted (status was %s)", s.describe(quotation), quotation.Status))

	return nil
}

func (s *QuotationService) List(ctx context.Context, page, pageSize int, filter repository.QuotationFilter) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	quotations, total, err := s.quotationRepo.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}

	dtos := make([]domain.QuotationDTO, len(quotations))
	for i, quotation := range quotations {
		dtos[i] = mapper.ToQuotationDTO(&quotation)
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

// resolveValidityWindow parses the optional validity dates, defaulting
// to today plus the configured validity period
func (s *QuotationService) resolveValidityWindow(from, until string) (time.Time, time.Time, error) {
	validFrom := time.Now().Truncate(24 * time.Hour)
	validUntil := validFrom.AddDate(0, 0, s.pricingCfg.DefaultValidityDays)

	if from != "" {
		parsed, err := time.Parse(quotationDateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid validFrom date %q", ErrInvalidInput, from)
		}
		validFrom = parsed
		validUntil = parsed.AddDate(0, 0, s.pricingCfg.DefaultValidityDays)
	}
	if until != "" {
		parsed, err := time.Parse(quotationDateLayout, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid validUntil date %q", ErrInvalidInput, until)
		}
		validUntil = parsed
	}
	if !validUntil.After(validFrom) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: validUntil must be after validFrom", ErrInvalidInput)
	}

	return validFrom, validUntil, nil
}

func (s *QuotationService) describe(quotation *domain.Quotation) string {
	if quotation.QuoteNumber != "" {
		return quotation.QuoteNumber
	}
	return quotation.ID.String()
}

func (s *QuotationService) logActivity(ctx context.Context, quotationID uuid.UUID, title, body string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetQuotation,
		TargetID:    quotationID,
		Title:       title,
		Body:        body,
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
