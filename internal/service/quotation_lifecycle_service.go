package service

// This file contains quotation lifecycle methods extracted from
// quotation_service.go. They handle status transitions (Send, Accept,
// Reject, Expire) and conversion of accepted quotations into shipments.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/mapper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UpdateStatus drives an arbitrary lifecycle transition. Every
// transition is validated against the permitted edge table; a rejected
// transition leaves the quotation untouched.
func (s *QuotationService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateQuotationStatusRequest) (*domain.QuotationDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid quotation status %q", ErrInvalidInput, req.Status)
	}

	switch req.Status {
	case domain.QuotationStatusSent:
		return s.Send(ctx, id, req.Note)
	case domain.QuotationStatusAccepted:
		return s.Accept(ctx, id, req.Note)
	case domain.QuotationStatusRejected:
		return s.Reject(ctx, id, req.Note)
	case domain.QuotationStatusExpired:
		return s.Expire(ctx, id)
	case domain.QuotationStatusConverted:
		return s.Convert(ctx, id, req.Note)
	case domain.QuotationStatusDraft:
		return s.transition(ctx, id, domain.QuotationStatusDraft, "Quotation revised", req.Note, nil)
	default:
		return nil, fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, req.Status)
	}
}

// Send transitions a quotation to sent, assigning its quote number on
// the first send
func (s *QuotationService) Send(ctx context.Context, id uuid.UUID, note string) (*domain.QuotationDTO, error) {
	return s.transition(ctx, id, domain.QuotationStatusSent, "Quotation sent", note,
		func(ctx context.Context, quotation *domain.Quotation) error {
			if quotation.QuoteNumber == "" {
				number, err := s.numberService.GenerateQuoteNumber(ctx)
				if err != nil {
					return err
				}
				quotation.QuoteNumber = number
			}
			if quotation.SentAt == nil {
				now := time.Now()
				quotation.SentAt = &now
			}
			return nil
		})
}

// Accept marks a sent quotation as accepted by the customer
func (s *QuotationService) Accept(ctx context.Context, id uuid.UUID, note string) (*domain.QuotationDTO, error) {
	return s.transition(ctx, id, domain.QuotationStatusAccepted, "Quotation accepted", note, nil)
}

// Reject marks a sent quotation as rejected by the customer
func (s *QuotationService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.QuotationDTO, error) {
	return s.transition(ctx, id, domain.QuotationStatusRejected, "Quotation rejected", reason,
		func(ctx context.Context, quotation *domain.Quotation) error {
			if reason != "" {
				if quotation.Notes != "" {
					quotation.Notes = fmt.Sprintf("%s\n\nRejection reason: %s", quotation.Notes, reason)
				} else {
					quotation.Notes = fmt.Sprintf("Rejection reason: %s", reason)
				}
			}
			return nil
		})
}

// Expire marks a sent quotation as expired. Used both by the API and
// by the periodic expiry sweep; expiring an already expired quotation
// fails like any other invalid transition.
func (s *QuotationService) Expire(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	return s.transition(ctx, id, domain.QuotationStatusExpired, "Quotation expired", "", nil)
}

// Convert turns an accepted quotation into a booked shipment. The
// status change and the shipment insert commit atomically; on any
// failure the quotation stays accepted and no shipment exists.
func (s *QuotationService) Convert(ctx context.Context, id uuid.UUID, note string) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if !quotation.Status.CanTransitionTo(domain.QuotationStatusConverted) {
		return nil, NewInvalidTransitionError(quotation.Status, domain.QuotationStatusConverted)
	}

	now := time.Now()
	shipment := &domain.Shipment{
		Reference:       s.shipmentReference(quotation),
		QuotationID:     quotation.ID,
		CustomerID:      quotation.CustomerID,
		CustomerName:    quotation.CustomerName,
		OriginCode:      quotation.OriginCode,
		DestinationCode: quotation.DestinationCode,
		ShipmentType:    quotation.ShipmentType,
		WeightKg:        quotation.WeightKg,
		QuotedCost:      quotation.TotalCost,
		Currency:        quotation.Currency,
		Status:          domain.ShipmentStatusBooked,
	}

	oldStatus := quotation.Status
	quotation.Status = domain.QuotationStatusConverted
	quotation.ConvertedAt = &now
	if userCtx, ok := auth.FromContext(ctx); ok {
		quotation.UpdatedByID = userCtx.UserID
		quotation.UpdatedByName = userCtx.DisplayName
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shipment).Error; err != nil {
			return fmt.Errorf("failed to create shipment: %w", err)
		}
		if err := tx.Save(quotation).Error; err != nil {
			return fmt.Errorf("failed to update quotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("converted quotation to shipment",
		zap.String("quotationID", quotation.ID.String()),
		zap.String("shipmentID", shipment.ID.String()),
		zap.String("reference", shipment.Reference))

	body := fmt.Sprintf("Quotation %s was converted to shipment %s (status: %s -> converted)",
		s.describe(quotation), shipment.Reference, oldStatus)
	if note != "" {
		body = fmt.Sprintf("%s. Notes: %s", body, note)
	}
	s.logActivity(ctx, quotation.ID, "Quotation converted", body)
	s.logActivityOnTarget(ctx, domain.ActivityTargetShipment, shipment.ID, "Shipment booked",
		fmt.Sprintf("Shipment %s was booked from quotation %s", shipment.Reference, s.describe(quotation)))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// ExpireOverdue marks every sent quotation whose validity window has
// passed as expired. Returns the number of quotations expired.
func (s *QuotationService) ExpireOverdue(ctx context.Context, cutoff time.Time) (int, error) {
	quotations, err := s.quotationRepo.ListExpirable(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expirable quotations: %w", err)
	}

	expired := 0
	for i := range quotations {
		quotation := &quotations[i]
		if !quotation.Status.CanTransitionTo(domain.QuotationStatusExpired) {
			continue
		}
		quotation.Status = domain.QuotationStatusExpired
		if err := s.quotationRepo.Update(ctx, quotation); err != nil {
			s.logger.Error("failed to expire quotation",
				zap.String("quotationID", quotation.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired overdue quotations",
			zap.Int("count", expired),
			zap.Time("cutoff", cutoff))
	}

	return expired, nil
}

// transition applies a validated status change. The prepare hook runs
// after validation but before persisting, so it can mutate the
// quotation (assign numbers, stamp timestamps) as part of the same save.
func (s *QuotationService) transition(
	ctx context.Context,
	id uuid.UUID,
	target domain.QuotationStatus,
	activityTitle string,
	note string,
	prepare func(ctx context.Context, quotation *domain.Quotation) error,
) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if !quotation.Status.CanTransitionTo(target) {
		return nil, NewInvalidTransitionError(quotation.Status, target)
	}

	oldStatus := quotation.Status

	if prepare != nil {
		if err := prepare(ctx, quotation); err != nil {
			return nil, err
		}
	}

	quotation.Status = target
	if userCtx, ok := auth.FromContext(ctx); ok {
		quotation.UpdatedByID = userCtx.UserID
		quotation.UpdatedByName = userCtx.DisplayName
	}

	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to update quotation status: %w", err)
	}

	body := fmt.Sprintf("Quotation %s changed status: %s -> %s", s.describe(quotation), oldStatus, target)
	if note != "" {
		body = fmt.Sprintf("%s. Notes: %s", body, note)
	}
	s.logActivity(ctx, quotation.ID, activityTitle, body)

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// shipmentReference derives the shipment reference from the quote
// number, e.g. Q-2026-014 becomes S-2026-014
func (s *QuotationService) shipmentReference(quotation *domain.Quotation) string {
	if quotation.QuoteNumber != "" {
		return "S" + quotation.QuoteNumber[1:]
	}
	return "S-" + quotation.ID.String()[:8]
}

func (s *QuotationService) logActivityOnTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	activity := &domain.Activity{
		TargetType:  targetType,
		TargetID:    targetID,
		Title:       title,
		Body:        body,
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
