package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"github.com/nordcargo/forwarding-api/internal/testutil"
)

func newRateCardService(db *gorm.DB) *service.RateCardService {
	return service.NewRateCardService(
		repository.NewRateCardRepository(db),
		repository.NewActivityRepository(db),
		zap.NewNop(),
	)
}

func validRateCardRequest() *domain.CreateRateCardRequest {
	return &domain.CreateRateCardRequest{
		ShipperName:     "Nordic Air Cargo",
		OriginCode:      "osl",
		DestinationCode: "jfk",
		ShipmentType:    domain.ShipmentTypeAir,
		Slabs: []domain.CreateWeightSlabRequest{
			{MinKg: 100, MaxKg: floatPtr(500), RatePerKg: 3.80, Currency: "usd"},
			{MinKg: 0, MaxKg: floatPtr(100), RatePerKg: 4.50, Currency: "usd"},
			{MinKg: 500, RatePerKg: 3.20, Currency: "usd"},
		},
		FuelSurchargePercent: 10,
		ValidFrom:            "2026-01-01",
		ValidUntil:           "2026-12-31",
	}
}

func TestRateCardService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRateCardService(db)
	ctx := testutil.TestUserContext()

	t.Run("creates card with normalized slabs", func(t *testing.T) {
		dto, err := svc.Create(ctx, validRateCardRequest())
		require.NoError(t, err)

		assert.Equal(t, "OSL", dto.OriginCode)
		assert.Equal(t, "JFK", dto.DestinationCode)
		assert.Equal(t, domain.RateCardStatusActive, dto.Status)

		// Slabs come back sorted by lower bound regardless of request order
		require.Len(t, dto.Slabs, 3)
		assert.InDelta(t, 0, dto.Slabs[0].MinKg, 1e-9)
		assert.InDelta(t, 100, dto.Slabs[1].MinKg, 1e-9)
		assert.InDelta(t, 500, dto.Slabs[2].MinKg, 1e-9)
		assert.Nil(t, dto.Slabs[2].MaxKg)
		assert.Equal(t, "USD", dto.Slabs[0].Currency)
	})

	t.Run("rejects overlapping slabs", func(t *testing.T) {
		req := validRateCardRequest()
		req.Slabs = []domain.CreateWeightSlabRequest{
			{MinKg: 0, MaxKg: floatPtr(100), RatePerKg: 4.50},
			{MinKg: 50, MaxKg: floatPtr(200), RatePerKg: 4.00},
		}
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects inverted slab bounds", func(t *testing.T) {
		req := validRateCardRequest()
		req.Slabs = []domain.CreateWeightSlabRequest{
			{MinKg: 100, MaxKg: floatPtr(50), RatePerKg: 4.50},
		}
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects unbounded slab that is not last", func(t *testing.T) {
		req := validRateCardRequest()
		req.Slabs = []domain.CreateWeightSlabRequest{
			{MinKg: 0, RatePerKg: 4.50},
			{MinKg: 100, MaxKg: floatPtr(500), RatePerKg: 4.00},
		}
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects inverted validity window", func(t *testing.T) {
		req := validRateCardRequest()
		req.ValidFrom = "2026-12-31"
		req.ValidUntil = "2026-01-01"
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("adjacent slab bounds are not an overlap", func(t *testing.T) {
		req := validRateCardRequest()
		req.Slabs = []domain.CreateWeightSlabRequest{
			{MinKg: 0, MaxKg: floatPtr(100), RatePerKg: 4.50},
			{MinKg: 100, MaxKg: floatPtr(500), RatePerKg: 4.00},
		}
		_, err := svc.Create(ctx, req)
		assert.NoError(t, err)
	})
}

func TestRateCardService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRateCardService(db)
	ctx := testutil.TestUserContext()

	created, err := svc.Create(ctx, validRateCardRequest())
	require.NoError(t, err)

	t.Run("replaces slabs wholesale", func(t *testing.T) {
		dto, err := svc.Update(ctx, created.ID, &domain.UpdateRateCardRequest{
			ShipperName:     "Nordic Air Cargo",
			OriginCode:      "OSL",
			DestinationCode: "JFK",
			ShipmentType:    domain.ShipmentTypeAir,
			Slabs: []domain.CreateWeightSlabRequest{
				{MinKg: 0, RatePerKg: 4.10, Currency: "USD"},
			},
			ValidFrom:  "2026-01-01",
			ValidUntil: "2026-12-31",
			Status:     domain.RateCardStatusInactive,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.RateCardStatusInactive, dto.Status)
		require.Len(t, dto.Slabs, 1)
		assert.InDelta(t, 4.10, dto.Slabs[0].RatePerKg, 1e-9)
	})

	t.Run("unknown card", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), &domain.UpdateRateCardRequest{
			ShipperName:     "Nordic Air Cargo",
			OriginCode:      "OSL",
			DestinationCode: "JFK",
			ShipmentType:    domain.ShipmentTypeAir,
			Slabs: []domain.CreateWeightSlabRequest{
				{MinKg: 0, RatePerKg: 4.10},
			},
			ValidFrom:  "2026-01-01",
			ValidUntil: "2026-12-31",
		})
		assert.ErrorIs(t, err, service.ErrRateCardNotFound)
	})
}

func TestRateCardService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRateCardService(db)
	ctx := testutil.TestUserContext()

	created, err := svc.Create(ctx, validRateCardRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrRateCardNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), service.ErrRateCardNotFound)
}

func TestRateCardService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRateCardService(db)
	ctx := testutil.TestUserContext()

	_, err := svc.Create(ctx, validRateCardRequest())
	require.NoError(t, err)

	other := validRateCardRequest()
	other.OriginCode = "BGO"
	other.ShipmentType = domain.ShipmentTypeOcean
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	resp, err := svc.List(ctx, 1, 20, repository.RateCardFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Total)

	resp, err = svc.List(ctx, 1, 20, repository.RateCardFilter{OriginCode: "OSL"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total)

	resp, err = svc.List(ctx, 1, 20, repository.RateCardFilter{ShipmentType: domain.ShipmentTypeOcean})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Total)
}
