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

// ShipperQuoteService handles on-demand quote requests to shippers for
// routes not covered by any rate card
type ShipperQuoteService struct {
	shipperQuoteRepo *repository.ShipperQuoteRepository
	quotationRepo    *repository.QuotationRepository
	customerRepo     *repository.CustomerRepository
	activityRepo     *repository.ActivityRepository
	pricingCfg       pricing.Config
	logger           *zap.Logger
}

func NewShipperQuoteService(
	shipperQuoteRepo *repository.ShipperQuoteRepository,
	quotationRepo *repository.QuotationRepository,
	customerRepo *repository.CustomerRepository,
	activityRepo *repository.ActivityRepository,
	pricingCfg pricing.Config,
	logger *zap.Logger,
) *ShipperQuoteService {
	return &ShipperQuoteService{
		shipperQuoteRepo: shipperQuoteRepo,
		quotationRepo:    quotationRepo,
		customerRepo:     customerRepo,
		activityRepo:     activityRepo,
		pricingCfg:       pricingCfg,
		logger:           logger,
	}
}

func (s *ShipperQuoteService) Create(ctx context.Context, req *domain.CreateShipperQuoteRequest) (*domain.ShipperQuoteRequestDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	request := &domain.ShipperQuoteRequest{
		ShipperName:         req.ShipperName,
		CustomerID:          customer.ID,
		OriginLocation:      req.OriginLocation,
		OriginCode:          strings.ToUpper(req.OriginCode),
		DestinationLocation: req.DestinationLocation,
		DestinationCode:     strings.ToUpper(req.DestinationCode),
		ShipmentType:        req.ShipmentType,
		WeightKg:            req.WeightKg,
		VolumeCbm:           req.VolumeCbm,
		CargoDescription:    req.CargoDescription,
		Status:              domain.ShipperQuoteStatusPending,
		Notes:               req.Notes,
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		request.CreatedByID = userCtx.UserID
		request.CreatedByName = userCtx.DisplayName
	}

	if err := s.shipperQuoteRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create shipper quote request: %w", err)
	}

	s.logActivity(ctx, request.ID, "Shipper quote requested",
		fmt.Sprintf("Quote requested from '%s' for %s -> %s",
			request.ShipperName, request.OriginLocation, request.DestinationLocation))

	request.Customer = customer
	dto := mapper.ToShipperQuoteRequestDTO(request)
	return &dto, nil
}

func (s *ShipperQuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipperQuoteRequestDTO, error) {
	request, err := s.shipperQuoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipperQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get shipper quote request: %w", err)
	}

	dto := mapper.ToShipperQuoteRequestDTO(request)
	return &dto, nil
}

// RecordReply records the price a shipper quoted back. A reply can be
// recorded exactly once; the request moves from pending to received.
func (s *ShipperQuoteService) RecordReply(ctx context.Context, id uuid.UUID, req *domain.RecordShipperReplyRequest) (*domain.ShipperQuoteRequestDTO, error) {
	request, err := s.shipperQuoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipperQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get shipper quote request: %w", err)
	}

	if request.Status != domain.ShipperQuoteStatusPending {
		return nil, ErrShipperQuoteAlreadyReceived
	}

	now := time.Now()
	amount := req.QuotedAmount
	request.Status = domain.ShipperQuoteStatusReceived
	request.QuotedAmount = &amount
	request.QuotedCurrency = strings.ToUpper(req.QuotedCurrency)
	request.ReceivedAt = &now
	request.MarginPercent = req.MarginPercent
	if req.Notes != "" {
		if request.Notes != "" {
			request.Notes = request.Notes + "\n\n" + req.Notes
		} else {
			request.Notes = req.Notes
		}
	}

	if err := s.shipperQuoteRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to record shipper reply: %w", err)
	}

	s.logActivity(ctx, request.ID, "Shipper reply recorded",
		fmt.Sprintf("'%s' quoted %.2f %s", request.ShipperName, amount, request.QuotedCurrency))

	dto := mapper.ToShipperQuoteRequestDTO(request)
	return &dto, nil
}

// ConvertToQuotation builds a draft quotation from a received shipper
// quote. The quoted amount becomes the shipper cost and margin is
// applied on top. A request can only be converted once.
func (s *ShipperQuoteService) ConvertToQuotation(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	request, err := s.shipperQuoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipperQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get shipper quote request: %w", err)
	}

	if request.Status != domain.ShipperQuoteStatusReceived || request.QuotedAmount == nil {
		return nil, ErrShipperQuoteNotReceived
	}
	if request.QuotationID != nil {
		return nil, ErrShipperQuoteAlreadyConverted
	}

	breakdown := pricing.PriceFromShipperQuote(*request.QuotedAmount, request.QuotedCurrency, request.MarginPercent, s.pricingCfg)
	breakdown.ShipperName = request.ShipperName
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize cost breakdown: %w", err)
	}

	validFrom := time.Now().Truncate(24 * time.Hour)
	validUntil := validFrom.AddDate(0, 0, s.pricingCfg.DefaultValidityDays)

	quotation := &domain.Quotation{
		CustomerID:          request.CustomerID,
		OriginLocation:      request.OriginLocation,
		OriginCode:          request.OriginCode,
		DestinationLocation: request.DestinationLocation,
		DestinationCode:     request.DestinationCode,
		ShipmentType:        request.ShipmentType,
		WeightKg:            request.WeightKg,
		VolumeCbm:           request.VolumeCbm,
		CargoDescription:    request.CargoDescription,
		Status:              domain.QuotationStatusDraft,
		TotalCost:           breakdown.TotalCost,
		Currency:            breakdown.Currency,
		CostBreakdown:       string(breakdownJSON),
		ValidFrom:           validFrom,
		ValidUntil:          validUntil,
	}
	if request.Customer != nil {
		quotation.CustomerName = request.Customer.Name
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

	request.QuotationID = &quotation.ID
	if err := s.shipperQuoteRepo.Update(ctx, request); err != nil {
		s.logger.Warn("failed to link shipper quote to quotation",
			zap.String("shipperQuoteID", request.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("converted shipper quote to quotation",
		zap.String("shipperQuoteID", request.ID.String()),
		zap.String("quotationID", quotation.ID.String()),
		zap.Float64("totalCost", breakdown.TotalCost))

	s.logActivity(ctx, request.ID, "Shipper quote converted",
		fmt.Sprintf("Quote from '%s' was converted to a draft quotation priced at %.2f %s",
			request.ShipperName, breakdown.TotalCost, breakdown.Currency))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

func (s *ShipperQuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	request, err := s.shipperQuoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShipperQuoteNotFound
		}
		return fmt.Errorf("failed to get shipper quote request: %w", err)
	}

	if request.QuotationID != nil {
		return ErrShipperQuoteAlreadyConverted
	}

	if err := s.shipperQuoteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shipper quote request: %w", err)
	}

	return nil
}

func (s *ShipperQuoteService) List(ctx context.Context, page, pageSize int, status domain.ShipperQuoteStatus, search string) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	requests, total, err := s.shipperQuoteRepo.List(ctx, page, pageSize, status, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipper quote requests: %w", err)
	}

	dtos := make([]domain.ShipperQuoteRequestDTO, len(requests))
	for i, request := range requests {
		dtos[i] = mapper.ToShipperQuoteRequestDTO(&request)
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

func (s *ShipperQuoteService) logActivity(ctx context.Context, requestID uuid.UUID, title, body string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetShipperQuote,
		TargetID:    requestID,
		Title:       title,
		Body:        body,
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
