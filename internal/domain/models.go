package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not. Postgres
// defaults the column via gen_random_uuid(); the sqlite test driver
// has no equivalent.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ShipmentType represents the transport mode of a shipment or quotation
type ShipmentType string

const (
	ShipmentTypeAir   ShipmentType = "air"
	ShipmentTypeOcean ShipmentType = "ocean"
	ShipmentTypeRoad  ShipmentType = "road"
)

// IsValid checks if the ShipmentType is a valid enum value
func (st ShipmentType) IsValid() bool {
	switch st {
	case ShipmentTypeAir, ShipmentTypeOcean, ShipmentTypeRoad:
		return true
	}
	return false
}

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusLead     CustomerStatus = "lead"
)

// IsValid checks if the CustomerStatus is a valid enum value
func (cs CustomerStatus) IsValid() bool {
	switch cs {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusLead:
		return true
	}
	return false
}

// Customer represents an organization that requests freight services
type Customer struct {
	BaseModel
	Name          string         `gorm:"type:varchar(200);not null;index"`
	OrgNumber     string         `gorm:"type:varchar(20);unique;index;column:org_number"`
	Email         string         `gorm:"type:varchar(255);not null"`
	Phone         string         `gorm:"type:varchar(50)"`
	Address       string         `gorm:"type:varchar(500)"`
	City          string         `gorm:"type:varchar(100)"`
	PostalCode    string         `gorm:"type:varchar(20);column:postal_code"`
	Country       string         `gorm:"type:varchar(100);not null;default:'Norway'"`
	ContactPerson string         `gorm:"type:varchar(200);column:contact_person"`
	ContactEmail  string         `gorm:"type:varchar(255);column:contact_email"`
	ContactPhone  string         `gorm:"type:varchar(50);column:contact_phone"`
	Status        CustomerStatus `gorm:"type:varchar(50);not null;default:'active';index"`
	Notes         string         `gorm:"type:text"`
	Quotations    []Quotation    `gorm:"foreignKey:CustomerID"`
}

// QuotationStatus represents the lifecycle status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "draft"
	QuotationStatusSent      QuotationStatus = "sent"
	QuotationStatusAccepted  QuotationStatus = "accepted"
	QuotationStatusRejected  QuotationStatus = "rejected"
	QuotationStatusExpired   QuotationStatus = "expired"
	QuotationStatusConverted QuotationStatus = "converted"
)

// quotationTransitions is the permitted edge table for the quotation
// lifecycle. Self-loops are listed explicitly; terminal statuses have
// no outgoing edges.
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:     {QuotationStatusSent, QuotationStatusDraft},
	QuotationStatusSent:      {QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired, QuotationStatusSent},
	QuotationStatusAccepted:  {QuotationStatusConverted},
	QuotationStatusRejected:  {},
	QuotationStatusExpired:   {},
	QuotationStatusConverted: {},
}

// IsValid checks if the QuotationStatus is a valid enum value
func (qs QuotationStatus) IsValid() bool {
	_, ok := quotationTransitions[qs]
	return ok
}

// IsTerminal reports whether the status has no outgoing transitions
func (qs QuotationStatus) IsTerminal() bool {
	edges, ok := quotationTransitions[qs]
	return ok && len(edges) == 0
}

// CanTransitionTo reports whether the edge qs -> target is permitted
func (qs QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	for _, s := range quotationTransitions[qs] {
		if s == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the permitted target statuses from qs
func (qs QuotationStatus) AllowedTransitions() []QuotationStatus {
	return quotationTransitions[qs]
}

// Quotation represents a priced freight offer to a customer
type Quotation struct {
	BaseModel
	QuoteNumber         string          `gorm:"type:varchar(50);unique;index;column:quote_number"`
	CustomerID          uuid.UUID       `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer            *Customer       `gorm:"foreignKey:CustomerID"`
	CustomerName        string          `gorm:"type:varchar(200);column:customer_name"`
	OriginLocation      string          `gorm:"type:varchar(200);not null;column:origin_location"`
	OriginCountry       string          `gorm:"type:varchar(100);column:origin_country"`
	OriginCode          string          `gorm:"type:varchar(10);index;column:origin_code"`
	DestinationLocation string          `gorm:"type:varchar(200);not null;column:destination_location"`
	DestinationCountry  string          `gorm:"type:varchar(100);column:destination_country"`
	DestinationCode     string          `gorm:"type:varchar(10);index;column:destination_code"`
	ShipmentType        ShipmentType    `gorm:"type:varchar(20);not null;index;column:shipment_type"`
	WeightKg            float64         `gorm:"type:decimal(12,3);not null;column:weight_kg"`
	VolumeCbm           *float64        `gorm:"type:decimal(12,4);column:volume_cbm"`
	Dimensions          string          `gorm:"type:varchar(200)"`
	CargoDescription    string          `gorm:"type:varchar(500);column:cargo_description"`
	Status              QuotationStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	TotalCost           float64         `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	Currency            string          `gorm:"type:varchar(3);not null;default:'USD'"`
	CostBreakdown       string          `gorm:"type:jsonb;column:cost_breakdown"`
	RateCardID          *uuid.UUID      `gorm:"type:uuid;index;column:rate_card_id"`
	RateCard            *RateCard       `gorm:"foreignKey:RateCardID"`
	ValidFrom           time.Time       `gorm:"type:date;not null;column:valid_from"`
	ValidUntil          time.Time       `gorm:"type:date;not null;column:valid_until"`
	ContactEmail        string          `gorm:"type:varchar(255);column:contact_email"`
	Notes               string          `gorm:"type:text"`
	SentAt              *time.Time      `gorm:"column:sent_at"`
	ConvertedAt         *time.Time      `gorm:"column:converted_at"`
	CreatedByID         string          `gorm:"type:varchar(100);column:created_by_id"`
	CreatedByName       string          `gorm:"type:varchar(200);column:created_by_name"`
	UpdatedByID         string          `gorm:"type:varchar(100);column:updated_by_id"`
	UpdatedByName       string          `gorm:"type:varchar(200);column:updated_by_name"`
	Documents           []File          `gorm:"foreignKey:QuotationID"`
}

// RateCardStatus represents the status of a rate card
type RateCardStatus string

const (
	RateCardStatusActive   RateCardStatus = "active"
	RateCardStatusInactive RateCardStatus = "inactive"
	RateCardStatusExpired  RateCardStatus = "expired"
)

// IsValid checks if the RateCardStatus is a valid enum value
func (rs RateCardStatus) IsValid() bool {
	switch rs {
	case RateCardStatusActive, RateCardStatusInactive, RateCardStatusExpired:
		return true
	}
	return false
}

// RateCard represents a pre-negotiated pricing agreement with a shipper
// for a specific origin/destination pair and shipment type
type RateCard struct {
	BaseModel
	ShipperName               string         `gorm:"type:varchar(200);not null;column:shipper_name"`
	OriginCode                string         `gorm:"type:varchar(10);not null;index;column:origin_code"`
	DestinationCode           string         `gorm:"type:varchar(10);not null;index;column:destination_code"`
	ShipmentType              ShipmentType   `gorm:"type:varchar(20);not null;index;column:shipment_type"`
	Slabs                     []WeightSlab   `gorm:"foreignKey:RateCardID;constraint:OnDelete:CASCADE"`
	FuelSurchargePercent      float64        `gorm:"type:decimal(6,3);not null;default:0;column:fuel_surcharge_percent"`
	SecuritySurchargePercent  float64        `gorm:"type:decimal(6,3);not null;default:0;column:security_surcharge_percent"`
	DangerousGoodsSurcharge   float64        `gorm:"type:decimal(12,2);not null;default:0;column:dangerous_goods_surcharge"`
	OriginHandlingCharge      float64        `gorm:"type:decimal(12,2);not null;default:0;column:origin_handling_charge"`
	DestinationHandlingCharge float64        `gorm:"type:decimal(12,2);not null;default:0;column:destination_handling_charge"`
	MarginPercent             *float64       `gorm:"type:decimal(6,3);column:margin_percent"`
	MinWeightKg               *float64       `gorm:"type:decimal(12,3);column:min_weight_kg"`
	MaxWeightKg               *float64       `gorm:"type:decimal(12,3);column:max_weight_kg"`
	ValidFrom                 time.Time      `gorm:"type:date;not null;column:valid_from"`
	ValidUntil                time.Time      `gorm:"type:date;not null;column:valid_until"`
	Status                    RateCardStatus `gorm:"type:varchar(50);not null;default:'active';index"`
	Notes                     string         `gorm:"type:text"`
}

// IsCurrentAt reports whether the card is active and its validity
// window contains the given instant
func (rc *RateCard) IsCurrentAt(t time.Time) bool {
	if rc.Status != RateCardStatusActive {
		return false
	}
	return !t.Before(rc.ValidFrom) && !t.After(rc.ValidUntil)
}

// CoversWeight reports whether the chargeable weight falls within the
// card's optional min/max weight bounds
func (rc *RateCard) CoversWeight(weightKg float64) bool {
	if rc.MinWeightKg != nil && weightKg < *rc.MinWeightKg {
		return false
	}
	if rc.MaxWeightKg != nil && weightKg > *rc.MaxWeightKg {
		return false
	}
	return true
}

// WeightSlab represents one contiguous weight range within a rate card.
// Slabs within a card are non-overlapping; a nil MaxKg means the slab
// is unbounded ("and above").
type WeightSlab struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	RateCardID   uuid.UUID `gorm:"type:uuid;not null;index;column:rate_card_id"`
	MinKg        float64   `gorm:"type:decimal(12,3);not null;column:min_kg"`
	MaxKg        *float64  `gorm:"type:decimal(12,3);column:max_kg"`
	RatePerKg    float64   `gorm:"type:decimal(12,4);not null;column:rate_per_kg"`
	Currency     string    `gorm:"type:varchar(3);not null;default:'USD'"`
	DisplayOrder int       `gorm:"not null;default:0;column:display_order"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ws *WeightSlab) BeforeCreate(_ *gorm.DB) error {
	if ws.ID == uuid.Nil {
		ws.ID = uuid.New()
	}
	return nil
}

// Covers reports whether the chargeable weight falls in [MinKg, MaxKg).
// The lower bound is inclusive, the upper bound exclusive; an unbounded
// slab covers everything at or above its lower bound.
func (ws *WeightSlab) Covers(weightKg float64) bool {
	if weightKg < ws.MinKg {
		return false
	}
	if ws.MaxKg != nil && weightKg >= *ws.MaxKg {
		return false
	}
	return true
}

// CostBreakdown is the itemized result of pricing a cargo against a
// rate card. It is persisted verbatim on the quotation so the pricing
// of historical quotes stays auditable without recomputation.
type CostBreakdown struct {
	ChargeableWeightKg        float64   `json:"chargeableWeightKg"`
	ActualWeightKg            float64   `json:"actualWeightKg"`
	VolumetricWeightKg        float64   `json:"volumetricWeightKg"`
	AppliedRatePerKg          float64   `json:"appliedRatePerKg"`
	FreightCost               float64   `json:"freightCost"`
	FuelSurcharge             float64   `json:"fuelSurcharge"`
	SecuritySurcharge         float64   `json:"securitySurcharge"`
	DangerousGoodsSurcharge   float64   `json:"dangerousGoodsSurcharge"`
	SurchargeTotal            float64   `json:"surchargeTotal"`
	OriginHandlingCharge      float64   `json:"originHandlingCharge"`
	DestinationHandlingCharge float64   `json:"destinationHandlingCharge"`
	HandlingTotal             float64   `json:"handlingTotal"`
	ShipperCost               float64   `json:"shipperCost"`
	MarginPercent             float64   `json:"marginPercent"`
	MarginAmount              float64   `json:"marginAmount"`
	TotalCost                 float64   `json:"totalCost"`
	Currency                  string    `json:"currency"`
	RateCardID                uuid.UUID `json:"rateCardId"`
	ShipperName               string    `json:"shipperName,omitempty"`
}

// ShipperQuoteStatus represents the status of an on-demand quote request
type ShipperQuoteStatus string

const (
	ShipperQuoteStatusPending  ShipperQuoteStatus = "pending"
	ShipperQuoteStatusReceived ShipperQuoteStatus = "received"
)

// IsValid checks if the ShipperQuoteStatus is a valid enum value
func (ss ShipperQuoteStatus) IsValid() bool {
	switch ss {
	case ShipperQuoteStatusPending, ShipperQuoteStatusReceived:
		return true
	}
	return false
}

// ShipperQuoteRequest represents an on-demand price request sent to a
// shipper for a route not covered by any rate card. Once a reply is
// recorded it can be converted into a draft quotation.
type ShipperQuoteRequest struct {
	BaseModel
	ShipperName         string             `gorm:"type:varchar(200);not null;column:shipper_name"`
	CustomerID          uuid.UUID          `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer            *Customer          `gorm:"foreignKey:CustomerID"`
	OriginLocation      string             `gorm:"type:varchar(200);not null;column:origin_location"`
	OriginCode          string             `gorm:"type:varchar(10);column:origin_code"`
	DestinationLocation string             `gorm:"type:varchar(200);not null;column:destination_location"`
	DestinationCode     string             `gorm:"type:varchar(10);column:destination_code"`
	ShipmentType        ShipmentType       `gorm:"type:varchar(20);not null;column:shipment_type"`
	WeightKg            float64            `gorm:"type:decimal(12,3);not null;column:weight_kg"`
	VolumeCbm           *float64           `gorm:"type:decimal(12,4);column:volume_cbm"`
	CargoDescription    string             `gorm:"type:varchar(500);column:cargo_description"`
	Status              ShipperQuoteStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	QuotedAmount        *float64           `gorm:"type:decimal(15,2);column:quoted_amount"`
	QuotedCurrency      string             `gorm:"type:varchar(3);column:quoted_currency"`
	ReceivedAt          *time.Time         `gorm:"column:received_at"`
	MarginPercent       *float64           `gorm:"type:decimal(6,3);column:margin_percent"`
	Notes               string             `gorm:"type:text"`
	QuotationID         *uuid.UUID         `gorm:"type:uuid;column:quotation_id"`
	CreatedByID         string             `gorm:"type:varchar(100);column:created_by_id"`
	CreatedByName       string             `gorm:"type:varchar(200);column:created_by_name"`
}

// ShipmentStatus represents the operational status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusBooked    ShipmentStatus = "booked"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

// IsValid checks if the ShipmentStatus is a valid enum value
func (ss ShipmentStatus) IsValid() bool {
	switch ss {
	case ShipmentStatusBooked, ShipmentStatusInTransit, ShipmentStatusDelivered, ShipmentStatusCancelled:
		return true
	}
	return false
}

// Shipment is created when an accepted quotation is converted. It
// carries a snapshot of the quoted route, cargo, and cost. Actual
// landed costs are read-only and synced from the legacy ERP.
type Shipment struct {
	BaseModel
	Reference          string         `gorm:"type:varchar(50);unique;index"`
	QuotationID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:quotation_id"`
	Quotation          *Quotation     `gorm:"foreignKey:QuotationID"`
	CustomerID         uuid.UUID      `gorm:"type:uuid;not null;index;column:customer_id"`
	CustomerName       string         `gorm:"type:varchar(200);column:customer_name"`
	OriginCode         string         `gorm:"type:varchar(10);column:origin_code"`
	DestinationCode    string         `gorm:"type:varchar(10);column:destination_code"`
	ShipmentType       ShipmentType   `gorm:"type:varchar(20);not null;column:shipment_type"`
	WeightKg           float64        `gorm:"type:decimal(12,3);not null;column:weight_kg"`
	QuotedCost         float64        `gorm:"type:decimal(15,2);not null;column:quoted_cost"`
	Currency           string         `gorm:"type:varchar(3);not null;default:'USD'"`
	ActualCost         *float64       `gorm:"type:decimal(15,2);column:actual_cost"`
	ActualCostSyncedAt *time.Time     `gorm:"column:actual_cost_synced_at"`
	ERPReference       string         `gorm:"type:varchar(100);column:erp_reference"`
	Status             ShipmentStatus `gorm:"type:varchar(50);not null;default:'booked';index"`
}

// ActivityTargetType represents the type of entity an activity is associated with
type ActivityTargetType string

const (
	ActivityTargetCustomer     ActivityTargetType = "Customer"
	ActivityTargetQuotation    ActivityTargetType = "Quotation"
	ActivityTargetRateCard     ActivityTargetType = "RateCard"
	ActivityTargetShipperQuote ActivityTargetType = "ShipperQuote"
	ActivityTargetShipment     ActivityTargetType = "Shipment"
	ActivityTargetFile         ActivityTargetType = "File"
)

// Activity represents an event log entry for any entity
type Activity struct {
	BaseModel
	TargetType  ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID    uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title       string             `gorm:"type:varchar(200);not null"`
	Body        string             `gorm:"type:varchar(2000)"`
	OccurredAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	CreatorID   string             `gorm:"type:varchar(100);column:creator_id"`
	CreatorName string             `gorm:"type:varchar(200);column:creator_name"`
}

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog represents an audit trail entry for a mutating request
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	UserID      string      `gorm:"type:varchar(100);column:user_id"`
	UserEmail   string      `gorm:"type:varchar(255);column:user_email"`
	UserName    string      `gorm:"type:varchar(200);column:user_name"`
	Action      AuditAction `gorm:"type:varchar(50);not null"`
	EntityType  string      `gorm:"type:varchar(50);not null;column:entity_type"`
	EntityID    *uuid.UUID  `gorm:"type:uuid;column:entity_id"`
	EntityName  string      `gorm:"type:varchar(200);column:entity_name"`
	Changes     string      `gorm:"type:jsonb"`
	IPAddress   string      `gorm:"type:inet;column:ip_address"`
	RequestID   string      `gorm:"type:varchar(100);column:request_id"`
	PerformedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:performed_at"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// File represents an uploaded quotation document
type File struct {
	BaseModel
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique;column:storage_path"`
	QuotationID *uuid.UUID `gorm:"type:uuid;index;column:quotation_id"`
	Quotation   *Quotation `gorm:"foreignKey:QuotationID"`
}

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleOperator   UserRoleType = "operator"
	RoleSales      UserRoleType = "sales"
	RoleViewer     UserRoleType = "viewer"
	RoleAPIService UserRoleType = "api_service"
)

// User represents a back-office user
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// HasRole reports whether the user carries the given role
func (u *User) HasRole(role UserRoleType) bool {
	for _, r := range u.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// NumberSequence tracks the last issued quote number per year
type NumberSequence struct {
	Year         int       `gorm:"primaryKey"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (NumberSequence) TableName() string {
	return "number_sequences"
}
