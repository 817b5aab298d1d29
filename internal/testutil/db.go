// Package testutil provides shared helpers for tests that need a real
// database. Tests run against an in-memory SQLite database so they
// need no external services; the schema is auto-migrated from the
// domain models.
package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
)

// SetupTestDB opens an in-memory SQLite database and migrates the
// schema. Connections are capped at one so every query sees the same
// in-memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.Customer{},
		&domain.RateCard{},
		&domain.WeightSlab{},
		&domain.Quotation{},
		&domain.ShipperQuoteRequest{},
		&domain.Shipment{},
		&domain.Activity{},
		&domain.AuditLog{},
		&domain.File{},
		&domain.NumberSequence{},
	)
	require.NoError(t, err)

	return db
}

// TestUserContext returns a context carrying an authenticated operator,
// so services attribute writes and log activities.
func TestUserContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "test-user",
		DisplayName: "Test Operator",
		Email:       "operator@example.com",
		Roles:       []domain.UserRoleType{domain.RoleOperator},
	})
}

// CreateTestCustomer inserts a customer with a unique org number
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()

	customer := &domain.Customer{
		Name:      name,
		OrgNumber: fmt.Sprintf("%09d", rand.Intn(1000000000)),
		Email:     "freight@example.com",
		Country:   "Norway",
		Status:    domain.CustomerStatusActive,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestRateCard inserts an active rate card for the given route
// with a single unbounded slab, valid for a month around now.
func CreateTestRateCard(t *testing.T, db *gorm.DB, originCode, destinationCode string, shipmentType domain.ShipmentType, ratePerKg float64) *domain.RateCard {
	t.Helper()

	now := time.Now()
	card := &domain.RateCard{
		ShipperName:     "Test Shipper",
		OriginCode:      originCode,
		DestinationCode: destinationCode,
		ShipmentType:    shipmentType,
		ValidFrom:       now.AddDate(0, -1, 0),
		ValidUntil:      now.AddDate(0, 1, 0),
		Status:          domain.RateCardStatusActive,
		Slabs: []domain.WeightSlab{
			{MinKg: 0, RatePerKg: ratePerKg, Currency: "USD"},
		},
	}
	require.NoError(t, db.Create(card).Error)
	return card
}

var quoteCounter atomic.Int64

// CreateTestQuotation inserts a quotation in the given status. The
// quote number is pre-assigned so lifecycle transitions never touch
// the number sequence.
func CreateTestQuotation(t *testing.T, db *gorm.DB, customer *domain.Customer, status domain.QuotationStatus) *domain.Quotation {
	t.Helper()

	now := time.Now()
	quotation := &domain.Quotation{
		QuoteNumber:         fmt.Sprintf("Q-%d-%03d", now.Year(), quoteCounter.Add(1)),
		CustomerID:          customer.ID,
		CustomerName:        customer.Name,
		OriginLocation:      "Oslo",
		OriginCode:          "OSL",
		DestinationLocation: "New York",
		DestinationCode:     "JFK",
		ShipmentType:        domain.ShipmentTypeAir,
		WeightKg:            250,
		Status:              status,
		TotalCost:           1250.50,
		Currency:            "USD",
		ValidFrom:           now.AddDate(0, 0, -1),
		ValidUntil:          now.AddDate(0, 0, 6),
	}
	require.NoError(t, db.Create(quotation).Error)
	return quotation
}
