package mapper

import (
	"encoding/json"
	"time"

	"github.com/nordcargo/forwarding-api/internal/domain"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:            customer.ID,
		Name:          customer.Name,
		OrgNumber:     customer.OrgNumber,
		Email:         customer.Email,
		Phone:         customer.Phone,
		Address:       customer.Address,
		City:          customer.City,
		PostalCode:    customer.PostalCode,
		Country:       customer.Country,
		ContactPerson: customer.ContactPerson,
		ContactEmail:  customer.ContactEmail,
		ContactPhone:  customer.ContactPhone,
		Status:        customer.Status,
		Notes:         customer.Notes,
		CreatedAt:     formatTimestamp(customer.CreatedAt),
		UpdatedAt:     formatTimestamp(customer.UpdatedAt),
	}
}

// ToQuotationDTO converts Quotation to QuotationDTO. The persisted cost
// breakdown JSON is decoded back into its structured form; a breakdown
// that fails to decode is omitted rather than failing the whole mapping.
func ToQuotationDTO(quotation *domain.Quotation) domain.QuotationDTO {
	dto := domain.QuotationDTO{
		ID:                  quotation.ID,
		QuoteNumber:         quotation.QuoteNumber,
		CustomerID:          quotation.CustomerID,
		CustomerName:        quotation.CustomerName,
		OriginLocation:      quotation.OriginLocation,
		OriginCountry:       quotation.OriginCountry,
		OriginCode:          quotation.OriginCode,
		DestinationLocation: quotation.DestinationLocation,
		DestinationCountry:  quotation.DestinationCountry,
		DestinationCode:     quotation.DestinationCode,
		ShipmentType:        quotation.ShipmentType,
		WeightKg:            quotation.WeightKg,
		VolumeCbm:           quotation.VolumeCbm,
		Dimensions:          quotation.Dimensions,
		CargoDescription:    quotation.CargoDescription,
		Status:              quotation.Status,
		AllowedTransitions:  quotation.Status.AllowedTransitions(),
		TotalCost:           quotation.TotalCost,
		Currency:            quotation.Currency,
		RateCardID:          quotation.RateCardID,
		ValidFrom:           quotation.ValidFrom.Format(dateLayout),
		ValidUntil:          quotation.ValidUntil.Format(dateLayout),
		ContactEmail:        quotation.ContactEmail,
		Notes:               quotation.Notes,
		SentAt:              formatTimestampPtr(quotation.SentAt),
		ConvertedAt:         formatTimestampPtr(quotation.ConvertedAt),
		CreatedByID:         quotation.CreatedByID,
		CreatedByName:       quotation.CreatedByName,
		UpdatedByID:         quotation.UpdatedByID,
		UpdatedByName:       quotation.UpdatedByName,
		CreatedAt:           formatTimestamp(quotation.CreatedAt),
		UpdatedAt:           formatTimestamp(quotation.UpdatedAt),
	}

	if quotation.Customer != nil {
		dto.CustomerName = quotation.Customer.Name
	}

	if quotation.CostBreakdown != "" {
		var breakdown domain.CostBreakdown
		if err := json.Unmarshal([]byte(quotation.CostBreakdown), &breakdown); err == nil {
			dto.CostBreakdown = &breakdown
		}
	}

	if len(quotation.Documents) > 0 {
		dto.Documents = make([]domain.FileDTO, len(quotation.Documents))
		for i, doc := range quotation.Documents {
			dto.Documents[i] = ToFileDTO(&doc)
		}
	}

	return dto
}

// ToWeightSlabDTO converts WeightSlab to WeightSlabDTO
func ToWeightSlabDTO(slab *domain.WeightSlab) domain.WeightSlabDTO {
	return domain.WeightSlabDTO{
		ID:           slab.ID,
		MinKg:        slab.MinKg,
		MaxKg:        slab.MaxKg,
		RatePerKg:    slab.RatePerKg,
		Currency:     slab.Currency,
		DisplayOrder: slab.DisplayOrder,
	}
}

// ToRateCardDTO converts RateCard to RateCardDTO
func ToRateCardDTO(card *domain.RateCard) domain.RateCardDTO {
	slabs := make([]domain.WeightSlabDTO, len(card.Slabs))
	for i, slab := range card.Slabs {
		slabs[i] = ToWeightSlabDTO(&slab)
	}

	return domain.RateCardDTO{
		ID:                        card.ID,
		ShipperName:               card.ShipperName,
		OriginCode:                card.OriginCode,
		DestinationCode:           card.DestinationCode,
		ShipmentType:              card.ShipmentType,
		Slabs:                     slabs,
		FuelSurchargePercent:      card.FuelSurchargePercent,
		SecuritySurchargePercent:  card.SecuritySurchargePercent,
		DangerousGoodsSurcharge:   card.DangerousGoodsSurcharge,
		OriginHandlingCharge:      card.OriginHandlingCharge,
		DestinationHandlingCharge: card.DestinationHandlingCharge,
		MarginPercent:             card.MarginPercent,
		MinWeightKg:               card.MinWeightKg,
		MaxWeightKg:               card.MaxWeightKg,
		ValidFrom:                 card.ValidFrom.Format(dateLayout),
		ValidUntil:                card.ValidUntil.Format(dateLayout),
		Status:                    card.Status,
		Notes:                     card.Notes,
		CreatedAt:                 formatTimestamp(card.CreatedAt),
		UpdatedAt:                 formatTimestamp(card.UpdatedAt),
	}
}

// ToShipperQuoteRequestDTO converts ShipperQuoteRequest to its DTO
func ToShipperQuoteRequestDTO(request *domain.ShipperQuoteRequest) domain.ShipperQuoteRequestDTO {
	dto := domain.ShipperQuoteRequestDTO{
		ID:                  request.ID,
		ShipperName:         request.ShipperName,
		CustomerID:          request.CustomerID,
		OriginLocation:      request.OriginLocation,
		OriginCode:          request.OriginCode,
		DestinationLocation: request.DestinationLocation,
		DestinationCode:     request.DestinationCode,
		ShipmentType:        request.ShipmentType,
		WeightKg:            request.WeightKg,
		VolumeCbm:           request.VolumeCbm,
		CargoDescription:    request.CargoDescription,
		Status:              request.Status,
		QuotedAmount:        request.QuotedAmount,
		QuotedCurrency:      request.QuotedCurrency,
		ReceivedAt:          formatTimestampPtr(request.ReceivedAt),
		MarginPercent:       request.MarginPercent,
		Notes:               request.Notes,
		QuotationID:         request.QuotationID,
		CreatedByID:         request.CreatedByID,
		CreatedByName:       request.CreatedByName,
		CreatedAt:           formatTimestamp(request.CreatedAt),
		UpdatedAt:           formatTimestamp(request.UpdatedAt),
	}

	if request.Customer != nil {
		dto.CustomerName = request.Customer.Name
	}

	return dto
}

// ToShipmentDTO converts Shipment to ShipmentDTO
func ToShipmentDTO(shipment *domain.Shipment) domain.ShipmentDTO {
	dto := domain.ShipmentDTO{
		ID:                 shipment.ID,
		Reference:          shipment.Reference,
		QuotationID:        shipment.QuotationID,
		CustomerID:         shipment.CustomerID,
		CustomerName:       shipment.CustomerName,
		OriginCode:         shipment.OriginCode,
		DestinationCode:    shipment.DestinationCode,
		ShipmentType:       shipment.ShipmentType,
		WeightKg:           shipment.WeightKg,
		QuotedCost:         shipment.QuotedCost,
		Currency:           shipment.Currency,
		ActualCost:         shipment.ActualCost,
		ActualCostSyncedAt: formatTimestampPtr(shipment.ActualCostSyncedAt),
		ERPReference:       shipment.ERPReference,
		Status:             shipment.Status,
		CreatedAt:          formatTimestamp(shipment.CreatedAt),
		UpdatedAt:          formatTimestamp(shipment.UpdatedAt),
	}

	if shipment.Quotation != nil {
		dto.QuoteNumber = shipment.Quotation.QuoteNumber
	}

	return dto
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          activity.ID,
		TargetType:  activity.TargetType,
		TargetID:    activity.TargetID,
		Title:       activity.Title,
		Body:        activity.Body,
		OccurredAt:  formatTimestamp(activity.OccurredAt),
		CreatorID:   activity.CreatorID,
		CreatorName: activity.CreatorName,
		CreatedAt:   formatTimestamp(activity.CreatedAt),
	}
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(log *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:          log.ID,
		UserID:      log.UserID,
		UserEmail:   log.UserEmail,
		UserName:    log.UserName,
		Action:      log.Action,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		EntityName:  log.EntityName,
		Changes:     log.Changes,
		IPAddress:   log.IPAddress,
		RequestID:   log.RequestID,
		PerformedAt: formatTimestamp(log.PerformedAt),
	}
}

// ToFileDTO converts File to FileDTO
func ToFileDTO(file *domain.File) domain.FileDTO {
	return domain.FileDTO{
		ID:          file.ID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		QuotationID: file.QuotationID,
		CreatedAt:   formatTimestamp(file.CreatedAt),
	}
}
