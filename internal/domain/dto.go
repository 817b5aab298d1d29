package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

type CustomerDTO struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	OrgNumber     string         `json:"orgNumber"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	City          string         `json:"city,omitempty"`
	PostalCode    string         `json:"postalCode,omitempty"`
	Country       string         `json:"country"`
	ContactPerson string         `json:"contactPerson,omitempty"`
	ContactEmail  string         `json:"contactEmail,omitempty"`
	ContactPhone  string         `json:"contactPhone,omitempty"`
	Status        CustomerStatus `json:"status"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     string         `json:"createdAt"` // ISO 8601
	UpdatedAt     string         `json:"updatedAt"` // ISO 8601
}

type QuotationDTO struct {
	ID                  uuid.UUID         `json:"id"`
	QuoteNumber         string            `json:"quoteNumber,omitempty"`
	CustomerID          uuid.UUID         `json:"customerId"`
	CustomerName        string            `json:"customerName,omitempty"`
	OriginLocation      string            `json:"originLocation"`
	OriginCountry       string            `json:"originCountry,omitempty"`
	OriginCode          string            `json:"originCode,omitempty"`
	DestinationLocation string            `json:"destinationLocation"`
	DestinationCountry  string            `json:"destinationCountry,omitempty"`
	DestinationCode     string            `json:"destinationCode,omitempty"`
	ShipmentType        ShipmentType      `json:"shipmentType"`
	WeightKg            float64           `json:"weightKg"`
	VolumeCbm           *float64          `json:"volumeCbm,omitempty"`
	Dimensions          string            `json:"dimensions,omitempty"`
	CargoDescription    string            `json:"cargoDescription,omitempty"`
	Status              QuotationStatus   `json:"status"`
	AllowedTransitions  []QuotationStatus `json:"allowedTransitions"`
	TotalCost           float64           `json:"totalCost"`
	Currency            string            `json:"currency"`
	CostBreakdown       *CostBreakdown    `json:"costBreakdown,omitempty"`
	RateCardID          *uuid.UUID        `json:"rateCardId,omitempty"`
	ValidFrom           string            `json:"validFrom"`
	ValidUntil          string            `json:"validUntil"`
	ContactEmail        string            `json:"contactEmail,omitempty"`
	Notes               string            `json:"notes,omitempty"`
	SentAt              *string           `json:"sentAt,omitempty"`
	ConvertedAt         *string           `json:"convertedAt,omitempty"`
	CreatedByID         string            `json:"createdById,omitempty"`
	CreatedByName       string            `json:"createdByName,omitempty"`
	UpdatedByID         string            `json:"updatedById,omitempty"`
	UpdatedByName       string            `json:"updatedByName,omitempty"`
	Documents           []FileDTO         `json:"documents,omitempty"`
	CreatedAt           string            `json:"createdAt"`
	UpdatedAt           string            `json:"updatedAt"`
}

type WeightSlabDTO struct {
	ID           uuid.UUID `json:"id"`
	MinKg        float64   `json:"minKg"`
	MaxKg        *float64  `json:"maxKg,omitempty"`
	RatePerKg    float64   `json:"ratePerKg"`
	Currency     string    `json:"currency"`
	DisplayOrder int       `json:"displayOrder"`
}

type RateCardDTO struct {
	ID                        uuid.UUID       `json:"id"`
	ShipperName               string          `json:"shipperName"`
	OriginCode                string          `json:"originCode"`
	DestinationCode           string          `json:"destinationCode"`
	ShipmentType              ShipmentType    `json:"shipmentType"`
	Slabs                     []WeightSlabDTO `json:"slabs"`
	FuelSurchargePercent      float64         `json:"fuelSurchargePercent"`
	SecuritySurchargePercent  float64         `json:"securitySurchargePercent"`
	DangerousGoodsSurcharge   float64         `json:"dangerousGoodsSurcharge"`
	OriginHandlingCharge      float64         `json:"originHandlingCharge"`
	DestinationHandlingCharge float64         `json:"destinationHandlingCharge"`
	MarginPercent             *float64        `json:"marginPercent,omitempty"`
	MinWeightKg               *float64        `json:"minWeightKg,omitempty"`
	MaxWeightKg               *float64        `json:"maxWeightKg,omitempty"`
	ValidFrom                 string          `json:"validFrom"`
	ValidUntil                string          `json:"validUntil"`
	Status                    RateCardStatus  `json:"status"`
	Notes                     string          `json:"notes,omitempty"`
	CreatedAt                 string          `json:"createdAt"`
	UpdatedAt                 string          `json:"updatedAt"`
}

type ShipperQuoteRequestDTO struct {
	ID                  uuid.UUID          `json:"id"`
	ShipperName         string             `json:"shipperName"`
	CustomerID          uuid.UUID          `json:"customerId"`
	CustomerName        string             `json:"customerName,omitempty"`
	OriginLocation      string             `json:"originLocation"`
	OriginCode          string             `json:"originCode,omitempty"`
	DestinationLocation string             `json:"destinationLocation"`
	DestinationCode     string             `json:"destinationCode,omitempty"`
	ShipmentType        ShipmentType       `json:"shipmentType"`
	WeightKg            float64            `json:"weightKg"`
	VolumeCbm           *float64           `json:"volumeCbm,omitempty"`
	CargoDescription    string             `json:"cargoDescription,omitempty"`
	Status              ShipperQuoteStatus `json:"status"`
	QuotedAmount        *float64           `json:"quotedAmount,omitempty"`
	QuotedCurrency      string             `json:"quotedCurrency,omitempty"`
	ReceivedAt          *string            `json:"receivedAt,omitempty"`
	MarginPercent       *float64           `json:"marginPercent,omitempty"`
	Notes               string             `json:"notes,omitempty"`
	QuotationID         *uuid.UUID         `json:"quotationId,omitempty"`
	CreatedByID         string             `json:"createdById,omitempty"`
	CreatedByName       string             `json:"createdByName,omitempty"`
	CreatedAt           string             `json:"createdAt"`
	UpdatedAt           string             `json:"updatedAt"`
}

type ShipmentDTO struct {
	ID                 uuid.UUID      `json:"id"`
	Reference          string         `json:"reference"`
	QuotationID        uuid.UUID      `json:"quotationId"`
	QuoteNumber        string         `json:"quoteNumber,omitempty"`
	CustomerID         uuid.UUID      `json:"customerId"`
	CustomerName       string         `json:"customerName,omitempty"`
	OriginCode         string         `json:"originCode,omitempty"`
	DestinationCode    string         `json:"destinationCode,omitempty"`
	ShipmentType       ShipmentType   `json:"shipmentType"`
	WeightKg           float64        `json:"weightKg"`
	QuotedCost         float64        `json:"quotedCost"`
	Currency           string         `json:"currency"`
	ActualCost         *float64       `json:"actualCost,omitempty"`
	ActualCostSyncedAt *string        `json:"actualCostSyncedAt,omitempty"`
	ERPReference       string         `json:"erpReference,omitempty"`
	Status             ShipmentStatus `json:"status"`
	CreatedAt          string         `json:"createdAt"`
	UpdatedAt          string         `json:"updatedAt"`
}

type ActivityDTO struct {
	ID          uuid.UUID          `json:"id"`
	TargetType  ActivityTargetType `json:"targetType"`
	TargetID    uuid.UUID          `json:"targetId"`
	Title       string             `json:"title"`
	Body        string             `json:"body,omitempty"`
	OccurredAt  string             `json:"occurredAt"`
	CreatorID   string             `json:"creatorId,omitempty"`
	CreatorName string             `json:"creatorName,omitempty"`
	CreatedAt   string             `json:"createdAt"`
}

type AuditLogDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      string      `json:"userId,omitempty"`
	UserEmail   string      `json:"userEmail,omitempty"`
	UserName    string      `json:"userName,omitempty"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entityType"`
	EntityID    *uuid.UUID  `json:"entityId,omitempty"`
	EntityName  string      `json:"entityName,omitempty"`
	Changes     string      `json:"changes,omitempty"`
	IPAddress   string      `json:"ipAddress,omitempty"`
	RequestID   string      `json:"requestId,omitempty"`
	PerformedAt string      `json:"performedAt"`
}

type FileDTO struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	QuotationID *uuid.UUID `json:"quotationId,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// API Response wrapper
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// Request DTOs

type CreateCustomerRequest struct {
	Name          string         `json:"name" validate:"required,max=200"`
	OrgNumber     string         `json:"orgNumber" validate:"required,max=20"`
	Email         string         `json:"email" validate:"required,email"`
	Phone         string         `json:"phone,omitempty" validate:"max=50"`
	Address       string         `json:"address,omitempty" validate:"max=500"`
	City          string         `json:"city,omitempty" validate:"max=100"`
	PostalCode    string         `json:"postalCode,omitempty" validate:"max=20"`
	Country       string         `json:"country" validate:"required,max=100"`
	ContactPerson string         `json:"contactPerson,omitempty" validate:"max=200"`
	ContactEmail  string         `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone  string         `json:"contactPhone,omitempty" validate:"max=50"`
	Status        CustomerStatus `json:"status,omitempty"`
	Notes         string         `json:"notes,omitempty" validate:"max=5000"`
}

type UpdateCustomerRequest struct {
	Name          string         `json:"name" validate:"required,max=200"`
	OrgNumber     string         `json:"orgNumber" validate:"required,max=20"`
	Email         string         `json:"email" validate:"required,email"`
	Phone         string         `json:"phone,omitempty" validate:"max=50"`
	Address       string         `json:"address,omitempty" validate:"max=500"`
	City          string         `json:"city,omitempty" validate:"max=100"`
	PostalCode    string         `json:"postalCode,omitempty" validate:"max=20"`
	Country       string         `json:"country" validate:"required,max=100"`
	ContactPerson string         `json:"contactPerson,omitempty" validate:"max=200"`
	ContactEmail  string         `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone  string         `json:"contactPhone,omitempty" validate:"max=50"`
	Status        CustomerStatus `json:"status,omitempty"`
	Notes         string         `json:"notes,omitempty" validate:"max=5000"`
}

type CreateQuotationRequest struct {
	CustomerID          uuid.UUID    `json:"customerId" validate:"required"`
	OriginLocation      string       `json:"originLocation" validate:"required,max=200"`
	OriginCountry       string       `json:"originCountry,omitempty" validate:"max=100"`
	OriginCode          string       `json:"originCode,omitempty" validate:"max=10"`
	DestinationLocation string       `json:"destinationLocation" validate:"required,max=200"`
	DestinationCountry  string       `json:"destinationCountry,omitempty" validate:"max=100"`
	DestinationCode     string       `json:"destinationCode,omitempty" validate:"max=10"`
	ShipmentType        ShipmentType `json:"shipmentType" validate:"required,oneof=air ocean road"`
	WeightKg            float64      `json:"weightKg" validate:"required,gt=0"`
	VolumeCbm           *float64     `json:"volumeCbm,omitempty" validate:"omitempty,gt=0"`
	Dimensions          string       `json:"dimensions,omitempty" validate:"max=200"`
	CargoDescription    string       `json:"cargoDescription,omitempty" validate:"max=500"`
	TotalCost           float64      `json:"totalCost" validate:"gte=0"`
	Currency            string       `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidFrom           string       `json:"validFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil          string       `json:"validUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ContactEmail        string       `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Notes               string       `json:"notes,omitempty" validate:"max=5000"`
}

type UpdateQuotationRequest struct {
	OriginLocation      string       `json:"originLocation" validate:"required,max=200"`
	OriginCountry       string       `json:"originCountry,omitempty" validate:"max=100"`
	OriginCode          string       `json:"originCode,omitempty" validate:"max=10"`
	DestinationLocation string       `json:"destinationLocation" validate:"required,max=200"`
	DestinationCountry  string       `json:"destinationCountry,omitempty" validate:"max=100"`
	DestinationCode     string       `json:"destinationCode,omitempty" validate:"max=10"`
	ShipmentType        ShipmentType `json:"shipmentType" validate:"required,oneof=air ocean road"`
	WeightKg            float64      `json:"weightKg" validate:"required,gt=0"`
	VolumeCbm           *float64     `json:"volumeCbm,omitempty" validate:"omitempty,gt=0"`
	Dimensions          string       `json:"dimensions,omitempty" validate:"max=200"`
	CargoDescription    string       `json:"cargoDescription,omitempty" validate:"max=500"`
	TotalCost           float64      `json:"totalCost" validate:"gte=0"`
	Currency            string       `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidFrom           string       `json:"validFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil          string       `json:"validUntil,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ContactEmail        string       `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Notes               string       `json:"notes,omitempty" validate:"max=5000"`
}

// UpdateQuotationStatusRequest drives a lifecycle transition
type UpdateQuotationStatusRequest struct {
	Status QuotationStatus `json:"status" validate:"required,oneof=draft sent accepted rejected expired converted"`
	Note   string          `json:"note,omitempty" validate:"max=2000"`
}

// GenerateQuotationRequest asks the pricing engine to resolve a rate
// card for the route and produce a fully priced draft quotation
type GenerateQuotationRequest struct {
	CustomerID          uuid.UUID    `json:"customerId" validate:"required"`
	OriginLocation      string       `json:"originLocation" validate:"required,max=200"`
	OriginCountry       string       `json:"originCountry,omitempty" validate:"max=100"`
	OriginCode          string       `json:"originCode" validate:"required,max=10"`
	DestinationLocation string       `json:"destinationLocation" validate:"required,max=200"`
	DestinationCountry  string       `json:"destinationCountry,omitempty" validate:"max=100"`
	DestinationCode     string       `json:"destinationCode" validate:"required,max=10"`
	ShipmentType        ShipmentType `json:"shipmentType" validate:"required,oneof=air ocean road"`
	WeightKg            float64      `json:"weightKg" validate:"required,gt=0"`
	VolumeCbm           *float64     `json:"volumeCbm,omitempty" validate:"omitempty,gt=0"`
	Dimensions          string       `json:"dimensions,omitempty" validate:"max=200"`
	CargoDescription    string       `json:"cargoDescription,omitempty" validate:"max=500"`
	DangerousGoods      bool         `json:"dangerousGoods,omitempty"`
	ContactEmail        string       `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Notes               string       `json:"notes,omitempty" validate:"max=5000"`
}

type CreateWeightSlabRequest struct {
	MinKg     float64  `json:"minKg" validate:"gte=0"`
	MaxKg     *float64 `json:"maxKg,omitempty" validate:"omitempty,gt=0"`
	RatePerKg float64  `json:"ratePerKg" validate:"required,gt=0"`
	Currency  string   `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type CreateRateCardRequest struct {
	ShipperName               string                    `json:"shipperName" validate:"required,max=200"`
	OriginCode                string                    `json:"originCode" validate:"required,max=10"`
	DestinationCode           string                    `json:"destinationCode" validate:"required,max=10"`
	ShipmentType              ShipmentType              `json:"shipmentType" validate:"required,oneof=air ocean road"`
	Slabs                     []CreateWeightSlabRequest `json:"slabs" validate:"required,min=1,dive"`
	FuelSurchargePercent      float64                   `json:"fuelSurchargePercent" validate:"gte=0"`
	SecuritySurchargePercent  float64                   `json:"securitySurchargePercent" validate:"gte=0"`
	DangerousGoodsSurcharge   float64                   `json:"dangerousGoodsSurcharge" validate:"gte=0"`
	OriginHandlingCharge      float64                   `json:"originHandlingCharge" validate:"gte=0"`
	DestinationHandlingCharge float64                   `json:"destinationHandlingCharge" validate:"gte=0"`
	MarginPercent             *float64                  `json:"marginPercent,omitempty" validate:"omitempty,gte=0"`
	MinWeightKg               *float64                  `json:"minWeightKg,omitempty" validate:"omitempty,gte=0"`
	MaxWeightKg               *float64                  `json:"maxWeightKg,omitempty" validate:"omitempty,gt=0"`
	ValidFrom                 string                    `json:"validFrom" validate:"required,datetime=2006-01-02"`
	ValidUntil                string                    `json:"validUntil" validate:"required,datetime=2006-01-02"`
	Notes                     string                    `json:"notes,omitempty" validate:"max=5000"`
}

type UpdateRateCardRequest struct {
	ShipperName               string                    `json:"shipperName" validate:"required,max=200"`
	OriginCode                string                    `json:"originCode" validate:"required,max=10"`
	DestinationCode           string                    `json:"destinationCode" validate:"required,max=10"`
	ShipmentType              ShipmentType              `json:"shipmentType" validate:"required,oneof=air ocean road"`
	Slabs                     []CreateWeightSlabRequest `json:"slabs" validate:"required,min=1,dive"`
	FuelSurchargePercent      float64                   `json:"fuelSurchargePercent" validate:"gte=0"`
	SecuritySurchargePercent  float64                   `json:"securitySurchargePercent" validate:"gte=0"`
	DangerousGoodsSurcharge   float64                   `json:"dangerousGoodsSurcharge" validate:"gte=0"`
	OriginHandlingCharge      float64                   `json:"originHandlingCharge" validate:"gte=0"`
	DestinationHandlingCharge float64                   `json:"destinationHandlingCharge" validate:"gte=0"`
	MarginPercent             *float64                  `json:"marginPercent,omitempty" validate:"omitempty,gte=0"`
	MinWeightKg               *float64                  `json:"minWeightKg,omitempty" validate:"omitempty,gte=0"`
	MaxWeightKg               *float64                  `json:"maxWeightKg,omitempty" validate:"omitempty,gt=0"`
	ValidFrom                 string                    `json:"validFrom" validate:"required,datetime=2006-01-02"`
	ValidUntil                string                    `json:"validUntil" validate:"required,datetime=2006-01-02"`
	Status                    RateCardStatus            `json:"status,omitempty"`
	Notes                     string                    `json:"notes,omitempty" validate:"max=5000"`
}

type CreateShipperQuoteRequest struct {
	ShipperName         string       `json:"shipperName" validate:"required,max=200"`
	CustomerID          uuid.UUID    `json:"customerId" validate:"required"`
	OriginLocation      string       `json:"originLocation" validate:"required,max=200"`
	OriginCode          string       `json:"originCode,omitempty" validate:"max=10"`
	DestinationLocation string       `json:"destinationLocation" validate:"required,max=200"`
	DestinationCode     string       `json:"destinationCode,omitempty" validate:"max=10"`
	ShipmentType        ShipmentType `json:"shipmentType" validate:"required,oneof=air ocean road"`
	WeightKg            float64      `json:"weightKg" validate:"required,gt=0"`
	VolumeCbm           *float64     `json:"volumeCbm,omitempty" validate:"omitempty,gt=0"`
	CargoDescription    string       `json:"cargoDescription,omitempty" validate:"max=500"`
	Notes               string       `json:"notes,omitempty" validate:"max=5000"`
}

// RecordShipperReplyRequest records the price a shipper quoted back
type RecordShipperReplyRequest struct {
	QuotedAmount   float64  `json:"quotedAmount" validate:"required,gt=0"`
	QuotedCurrency string   `json:"quotedCurrency" validate:"required,len=3"`
	MarginPercent  *float64 `json:"marginPercent,omitempty" validate:"omitempty,gte=0"`
	Notes          string   `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateShipmentStatusRequest struct {
	Status ShipmentStatus `json:"status" validate:"required,oneof=booked in_transit delivered cancelled"`
}

// AuthUserDTO describes the authenticated principal for /auth/me
type AuthUserDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"isAdmin"`
}

type SetERPReferenceRequest struct {
	ERPReference string `json:"erpReference" validate:"required,max=100"`
}

// QuotationActionRequest is the optional body for lifecycle actions
// such as send, accept, reject and convert
type QuotationActionRequest struct {
	Note string `json:"note,omitempty" validate:"max=2000"`
}
