package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"github.com/nordcargo/forwarding-api/internal/testutil"
)

func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// Create Tests
// =============================================================================

func TestQuotationService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuotationService(db)
	ctx := testutil.TestUserContext()
	customer := testutil.CreateTestCustomer(t, db, "Acme Logistics")

	t.Run("creates a draft with manual pricing", func(t *testing.T) {
		dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
			CustomerID:          customer.ID,
			OriginLocation:      "Oslo",
			OriginCode:          "osl",
			DestinationLocation: "Hamburg",
			DestinationCode:     "ham",
			ShipmentType:        domain.ShipmentTypeRoad,
			WeightKg:            1200,
			TotalCost:           890.00,
			Currency:            "eur",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.QuotationStatusDraft, dto.Status)
		assert.Empty(t, dto.QuoteNumber)
		assert.Equal(t, "OSL", dto.OriginCode)
		assert.Equal(t, "HAM", dto.DestinationCode)
		assert.Equal(t, "EUR", dto.Currency)
		assert.Equal(t, customer.Name, dto.CustomerName)
		assert.InDelta(t, 890.00, dto.TotalCost, 1e-9)
		assert.Equal(t, "test-user", dto.CreatedByID)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateQuotationRequest{
			CustomerID:          uuid.New(),
			OriginLocation:      "Oslo",
			DestinationLocation: "Hamburg",
			ShipmentType:        domain.ShipmentTypeRoad,
			WeightKg:            10,
		})
		assert.ErrorIs(t, err, service.ErrCustomerNotFound)
	})

	t.Run("rejects inverted validity window", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateQuotationRequest{
			CustomerID:          customer.ID,
			OriginLocation:      "Oslo",
			DestinationLocation: "Hamburg",
			ShipmentType:        domain.ShipmentTypeRoad,
			WeightKg:            10,
			ValidFrom:           "2026-05-10",
			ValidUntil:          "2026-05-01",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

// =============================================================================
// Generate Tests
// =============================================================================

func TestQuotationService_Generate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuotationService(db)
	ctx := testutil.TestUserContext()
	customer := testutil.CreateTestCustomer(t, db, "Acme Logistics")
	card := testutil.CreateTestRateCard(t, db, "OSL", "JFK", domain.ShipmentTypeAir, 4.0)

	t.Run("prices against the matched rate card", func(t *testing.T) {
		dto, err := svc.Generate(ctx, &domain.GenerateQuotationRequest{
			CustomerID:          customer.ID,
			OriginLocation:      "Oslo",
			OriginCode:          "osl",
			DestinationLocation: "New York",
			DestinationCode:     "jfk",
			ShipmentType:        domain.ShipmentTypeAir,
			WeightKg:            250,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.QuotationStatusDraft, dto.Status)
		require.NotNil(t, dto.RateCardID)
		assert.Equal(t, card.ID, *dto.RateCardID)
		require.NotNil(t, dto.CostBreakdown)
		assert.InDelta(t, 250, dto.CostBreakdown.ChargeableWeightKg, 1e-9)
		assert.InDelta(t, 4.0, dto.CostBreakdown.AppliedRatePerKg, 1e-9)
		// freight 1000 + default margin 15% = 1150
		assert.InDelta(t, 1150, dto.TotalCost, 1e-9)
		assert.Equal(t, "USD", dto.Currency)
	})

	t.Run("volumetric weight drives the price", func(t *testing.T) {
		dto, err := svc.Generate(ctx, &domain.GenerateQuotationRequest{
			CustomerID:          customer.ID,
			OriginLocation:      "Oslo",
			OriginCode:          "OSL",
			DestinationLocation: "New York",
			DestinationCode:     "JFK",
			ShipmentType:        domain.ShipmentTypeAir,
			WeightKg:            50,
			VolumeCbm:           floatPtr(2),
		})
		require.NoError(t, err)
		require.NotNil(t, dto.CostBreakdown)
		assert.InDelta(t, 334, dto.CostBreakdown.ChargeableWeightKg, 1e-9)
		assert.InDelta(t, 50, dto.CostBreakdown.ActualWeightKg, 1e-9)
	})

	t.Run("no card for route writes nothing", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&domain.Quotation{}).Count(&before).Error)

		_, err := svc.Generate(ctx, &domain.GenerateQuotationRequest{
			CustomerID:          customer.ID,
			OriginLocation:      "Oslo",
			OriginCode:          "OSL",
			DestinationLocation: "Tokyo",
			DestinationCode:     "NRT",
			ShipmentType:        domain.ShipmentTypeAir,
			WeightKg:            250,
		})
		assert.ErrorIs(t, err, service.ErrNoRateForRoute)

		var after int64
		require.NoError(t, db.Model(&domain.Quotation{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})

	t.Run("wrong shipment type for route", func(t *testing.T) {
		_, err := svc.Generate(ctx, &domain.GenerateQuotationRequest{
			CustomerID:          customer.ID,
			OriginLocation:      "Oslo",
			OriginCode:          "OSL",
			DestinationLocation: "New York",
			DestinationCode:     "JFK",
			ShipmentType:        domain.ShipmentTypeOcean,
			WeightKg:            250,
		})
		assert.ErrorIs(t, err, service.ErrNoRateForRoute)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.Generate(ctx, &domain.GenerateQuotationRequest{
			CustomerID:          uuid.New(),
			OriginLocation:      "Oslo",
			OriginCode:          "OSL",
			DestinationLocation: "New York",
			DestinationCode:     "JFK",
			ShipmentType:        domain.ShipmentTypeAir,
			WeightKg:            250,
		})
		assert.ErrorIs(t, err, service.ErrCustomerNotFound)
	})
}

// =============================================================================
// Update / Delete Tests
// =============================================================================

func TestQuotationService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuotationService(db)
	ctx := testutil.TestUserContext()
	customer := testutil.CreateTestCustomer(t, db, "Acme Logistics")

	t.Run("draft can be edited and loses stale breakdown", func(t *testing.T) {
		card := testutil.CreateTestRateCard(t, db, "OSL", "JFK", domain.ShipmentTypeAir, 4.0)
		quotation := testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusDraft)
		require.NoError(t, db.Model(quotation).Updates(map[string]interface{}{
			"cost_breakdown": `{"totalCost":1}`,
			"rate_card_id":   card.ID,
		}).Error)

		dto, err := svc.Update(ctx, quotation.ID, &domain.UpdateQuotationRequest{
			OriginLocation:      "Bergen",
			OriginCode:          "BGO",
			DestinationLocation: "Rotterdam",
			DestinationCode:     "RTM",
			ShipmentType:        domain.ShipmentTypeOcean,
			WeightKg:            5000,
			TotalCost:           2350,
			Currency:            "eur",
		})
		require.NoError(t, err)

		assert.Equal(t, "Bergen", dto.OriginLocation)
		assert.Equal(t, "EUR", dto.Currency)
		assert.Nil(t, dto.CostBreakdown)
		assert.Nil(t, dto.RateCardID)
	})

	t.Run("sent quotation is frozen", func(t *testing.T) {
		quotation := testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusSent)

		_, err := svc.Update(ctx, quotation.ID, &domain.UpdateQuotationRequest{
			OriginLocation:      "Bergen",
			DestinationLocation: "Rotterdam",
			ShipmentType:        domain.ShipmentTypeOcean,
			WeightKg:            5000,
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestQuotationService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuotationService(db)
	ctx := testutil.TestUserContext()
	customer := testutil.CreateTestCustomer(t, db, "Acme Logistics")

	t.Run("draft is hard-deleted", func(t *testing.T) {
		quotation := testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusDraft)

		require.NoError(t, svc.Delete(ctx, quotation.ID))

		_, err := svc.GetByID(ctx, quotation.ID)
		assert.ErrorIs(t, err, service.ErrQuotationNotFound)
	})

	t.Run("sent quotation can also be deleted", func(t *testing.T) {
		quotation := testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusSent)

		require.NoError(t, svc.Delete(ctx, quotation.ID))

		_, err := svc.GetByID(ctx, quotation.ID)
		assert.ErrorIs(t, err, service.ErrQuotationNotFound)
	})

	t.Run("deletion leaves an activity trace", func(t *testing.T) {
		quotation := testutil.CreateTestQuotation(t, db, customer, domain.QuotationStatusAccepted)

		require.NoError(t, svc.Delete(ctx, quotation.ID))

		var activities []domain.Activity
		require.NoError(t, db.
			Where("target_type = ? AND target_id = ?", domain.ActivityTargetQuotation, quotation.ID).
			Find(&activities).Error)
		require.Len(t, activities, 1)
		assert.Equal(t, "Quotation deleted", activities[0].Title)
		assert.Contains(t, activities[0].Body, string(domain.QuotationStatusAccepted))
	})

	t.Run("unknown quotation", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), service.ErrQuotationNotFound)
	})
}

// =============================================================================
// List Tests
// =============================================================================

func TestQuotationService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuotationService(db)
	ctx := testutil.TestUserContext()
	customerA := testutil.CreateTestCustomer(t, db, "Acme Logistics")
	customerB := testutil.CreateTestCustomer(t, db, "Borealis Freight")

	testutil.CreateTestQuotation(t, db, customerA, domain.QuotationStatusDraft)
	testutil.CreateTestQuotation(t, db, customerA, domain.QuotationStatusSent)
	testutil.CreateTestQuotation(t, db, customerB, domain.QuotationStatusSent)

	t.Run("unfiltered", func(t *testing.T) {
		resp, err := svc.List(ctx, 1, 20, repository.QuotationFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, resp.Total)
	})

	t.Run("filter by customer", func(t *testing.T) {
		resp, err := svc.List(ctx, 1, 20, repository.QuotationFilter{CustomerID: &customerA.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, resp.Total)
	})

	t.Run("filter by status", func(t *testing.T) {
		resp, err := svc.List(ctx, 1, 20, repository.QuotationFilter{Status: domain.QuotationStatusSent})
		require.NoError(t, err)
		assert.EqualValues(t, 2, resp.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		resp, err := svc.List(ctx, 1, 2, repository.QuotationFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, resp.Total)
		assert.Equal(t, 2, resp.TotalPages)
	})
}
