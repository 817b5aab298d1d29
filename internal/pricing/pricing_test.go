package pricing_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/pricing"
)

func floatPtr(v float64) *float64 { return &v }

// airCard returns an active air rate card with two bounded slabs and an
// unbounded tail, valid around the given instant.
func airCard(now time.Time) domain.RateCard {
	return domain.RateCard{
		BaseModel:                 domain.BaseModel{ID: uuid.New()},
		ShipperName:               "Nordic Air Cargo",
		OriginCode:                "OSL",
		DestinationCode:           "JFK",
		ShipmentType:              domain.ShipmentTypeAir,
		FuelSurchargePercent:      10,
		SecuritySurchargePercent:  5,
		DangerousGoodsSurcharge:   250,
		OriginHandlingCharge:      50,
		DestinationHandlingCharge: 75,
		ValidFrom:                 now.AddDate(0, -1, 0),
		ValidUntil:                now.AddDate(0, 1, 0),
		Status:                    domain.RateCardStatusActive,
		Slabs: []domain.WeightSlab{
			{MinKg: 0, MaxKg: floatPtr(100), RatePerKg: 4.50, Currency: "USD", DisplayOrder: 0},
			{MinKg: 100, MaxKg: floatPtr(500), RatePerKg: 3.80, Currency: "USD", DisplayOrder: 1},
			{MinKg: 500, MaxKg: nil, RatePerKg: 3.20, Currency: "USD", DisplayOrder: 2},
		},
	}
}

// =============================================================================
// Chargeable Weight Tests
// =============================================================================

func TestVolumetricWeight(t *testing.T) {
	tests := []struct {
		name      string
		volumeCbm *float64
		expected  float64
	}{
		{"nil volume", nil, 0},
		{"zero volume", floatPtr(0), 0},
		{"negative volume", floatPtr(-1), 0},
		{"one cubic meter", floatPtr(1), 167},
		{"fractional volume", floatPtr(2.5), 417.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, pricing.VolumetricWeight(tt.volumeCbm, 167), 1e-9)
		})
	}
}

func TestChargeableWeight(t *testing.T) {
	tests := []struct {
		name      string
		weightKg  float64
		volumeCbm *float64
		expected  float64
	}{
		{"actual weight wins", 500, floatPtr(1), 500},
		{"volumetric weight wins", 100, floatPtr(1), 167},
		{"no volume uses actual", 42, nil, 42},
		{"exact tie", 167, floatPtr(1), 167},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, pricing.ChargeableWeight(tt.weightKg, tt.volumeCbm, 167), 1e-9)
		})
	}
}

// =============================================================================
// Rate Card Selection Tests
// =============================================================================

func TestSelectRateCard_FiltersCandidates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()

	matching := airCard(now)

	wrongType := airCard(now)
	wrongType.ShipmentType = domain.ShipmentTypeOcean

	lapsed := airCard(now)
	lapsed.ValidUntil = now.AddDate(0, 0, -1)

	inactive := airCard(now)
	inactive.Status = domain.RateCardStatusInactive

	tooHeavy := airCard(now)
	tooHeavy.MaxWeightKg = floatPtr(50)

	noSlabCoverage := airCard(now)
	noSlabCoverage.Slabs = []domain.WeightSlab{
		{MinKg: 1000, RatePerKg: 2.0, Currency: "USD"},
	}

	cards := []domain.RateCard{wrongType, lapsed, inactive, tooHeavy, noSlabCoverage, matching}

	selected, err := pricing.SelectRateCard(cards, domain.ShipmentTypeAir, 200, now, cfg)
	require.NoError(t, err)
	assert.Equal(t, matching.ID, selected.ID)
}

func TestSelectRateCard_NoMatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()

	_, err := pricing.SelectRateCard(nil, domain.ShipmentTypeAir, 200, now, cfg)
	assert.ErrorIs(t, err, pricing.ErrNoMatchingRateCard)

	ocean := airCard(now)
	ocean.ShipmentType = domain.ShipmentTypeOcean
	_, err = pricing.SelectRateCard([]domain.RateCard{ocean}, domain.ShipmentTypeAir, 200, now, cfg)
	assert.ErrorIs(t, err, pricing.ErrNoMatchingRateCard)
}

func TestSelectRateCard_PrefersHighestMargin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()

	lowMargin := airCard(now)
	lowMargin.MarginPercent = floatPtr(10)

	highMargin := airCard(now)
	highMargin.MarginPercent = floatPtr(20)

	// Default margin (15%) sits between the two explicit ones.
	defaultMargin := airCard(now)

	selected, err := pricing.SelectRateCard(
		[]domain.RateCard{lowMargin, defaultMargin, highMargin},
		domain.ShipmentTypeAir, 200, now, cfg)
	require.NoError(t, err)
	assert.Equal(t, highMargin.ID, selected.ID)
}

func TestSelectRateCard_EqualMarginTieBreaksOnID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()

	a := airCard(now)
	a.MarginPercent = floatPtr(15)
	b := airCard(now)
	b.MarginPercent = floatPtr(15)

	wantID := a.ID
	if b.ID.String() < a.ID.String() {
		wantID = b.ID
	}

	// Selection must not depend on input order.
	first, err := pricing.SelectRateCard([]domain.RateCard{a, b}, domain.ShipmentTypeAir, 200, now, cfg)
	require.NoError(t, err)
	second, err := pricing.SelectRateCard([]domain.RateCard{b, a}, domain.ShipmentTypeAir, 200, now, cfg)
	require.NoError(t, err)

	assert.Equal(t, wantID, first.ID)
	assert.Equal(t, wantID, second.ID)
}

// =============================================================================
// Cost Calculation Tests
// =============================================================================

func TestCalculateCost_FullBreakdown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()
	card := airCard(now)

	// 200 kg actual, 0.5 cbm volumetric (83.5 kg) -> chargeable 200 kg,
	// second slab at 3.80/kg.
	bd, err := pricing.CalculateCost(&card, pricing.Input{
		WeightKg:  200,
		VolumeCbm: floatPtr(0.5),
	}, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 200, bd.ChargeableWeightKg, 1e-9)
	assert.InDelta(t, 200, bd.ActualWeightKg, 1e-9)
	assert.InDelta(t, 83.5, bd.VolumetricWeightKg, 1e-9)
	assert.InDelta(t, 3.80, bd.AppliedRatePerKg, 1e-9)

	// freight = 200 * 3.80 = 760
	assert.InDelta(t, 760, bd.FreightCost, 1e-9)
	// fuel 10% = 76, security 5% = 38, no dangerous goods
	assert.InDelta(t, 76, bd.FuelSurcharge, 1e-9)
	assert.InDelta(t, 38, bd.SecuritySurcharge, 1e-9)
	assert.Zero(t, bd.DangerousGoodsSurcharge)
	assert.InDelta(t, 114, bd.SurchargeTotal, 1e-9)
	// handling 50 + 75
	assert.InDelta(t, 125, bd.HandlingTotal, 1e-9)
	// shipper cost = 760 + 114 + 125 = 999
	assert.InDelta(t, 999, bd.ShipperCost, 1e-9)
	// default margin 15% = 149.85; total = 1148.85
	assert.InDelta(t, 15, bd.MarginPercent, 1e-9)
	assert.InDelta(t, 149.85, bd.MarginAmount, 1e-9)
	assert.InDelta(t, 1148.85, bd.TotalCost, 1e-9)

	assert.Equal(t, "USD", bd.Currency)
	assert.Equal(t, card.ID, bd.RateCardID)
	assert.Equal(t, "Nordic Air Cargo", bd.ShipperName)
}

func TestCalculateCost_WorkedExample(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()

	card := airCard(now)
	card.FuelSurchargePercent = 12
	card.SecuritySurchargePercent = 0
	card.OriginHandlingCharge = 50
	card.DestinationHandlingCharge = 0
	card.Slabs = []domain.WeightSlab{
		{MinKg: 0, RatePerKg: 4.20, Currency: "USD"},
	}

	bd, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 150}, cfg)
	require.NoError(t, err)

	// 150 kg * 4.20 = 630 freight, +12% surcharge = 75.60, +50 handling
	// = 755.60 shipper cost, +15% margin = 113.34, total 868.94.
	assert.InDelta(t, 630, bd.FreightCost, 1e-9)
	assert.InDelta(t, 75.60, bd.SurchargeTotal, 1e-9)
	assert.InDelta(t, 50, bd.HandlingTotal, 1e-9)
	assert.InDelta(t, 755.60, bd.ShipperCost, 1e-9)
	assert.InDelta(t, 113.34, bd.MarginAmount, 1e-6)
	assert.InDelta(t, 868.94, bd.TotalCost, 1e-9)
}

func TestCalculateCost_VolumetricWeightDrivesSlab(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()
	card := airCard(now)

	// 50 kg actual but 1 cbm -> 167 kg volumetric, so the second slab
	// applies, not the first.
	bd, err := pricing.CalculateCost(&card, pricing.Input{
		WeightKg:  50,
		VolumeCbm: floatPtr(1),
	}, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 167, bd.ChargeableWeightKg, 1e-9)
	assert.InDelta(t, 3.80, bd.AppliedRatePerKg, 1e-9)
}

func TestCalculateCost_SlabBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()
	card := airCard(now)

	tests := []struct {
		name         string
		weightKg     float64
		expectedRate float64
	}{
		{"just below first boundary", 99.999, 4.50},
		{"boundary weight lands in upper slab", 100, 3.80},
		{"just below second boundary", 499.999, 3.80},
		{"second boundary lands in tail", 500, 3.20},
		{"deep into unbounded tail", 12000, 3.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: tt.weightKg}, cfg)
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedRate, bd.AppliedRatePerKg, 1e-9)
		})
	}
}

func TestCalculateCost_DangerousGoods(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()
	card := airCard(now)

	plain, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 200}, cfg)
	require.NoError(t, err)
	dg, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 200, DangerousGoods: true}, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 250, dg.DangerousGoodsSurcharge, 1e-9)
	assert.InDelta(t, plain.SurchargeTotal+250, dg.SurchargeTotal, 1e-9)
	// The flat surcharge also attracts margin.
	assert.Greater(t, dg.TotalCost-plain.TotalCost, 250.0)
}

func TestCalculateCost_CardMarginOverridesDefault(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()
	card := airCard(now)
	card.MarginPercent = floatPtr(22.5)

	bd, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 200}, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 22.5, bd.MarginPercent, 1e-9)
}

func TestCalculateCost_OnlyFinalTotalIsRounded(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.Config{DefaultMarginPercent: 13.7, VolumetricDivisor: 167, DefaultValidityDays: 7}

	card := airCard(now)
	card.FuelSurchargePercent = 7.3
	card.SecuritySurchargePercent = 2.9
	card.Slabs = []domain.WeightSlab{
		{MinKg: 0, RatePerKg: 3.333, Currency: "USD"},
	}

	bd, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 123.456}, cfg)
	require.NoError(t, err)

	freight := 123.456 * 3.333
	fuel := freight * 7.3 / 100
	security := freight * 2.9 / 100
	shipper := freight + fuel + security + 125
	total := shipper * 1.137

	// Intermediate figures keep full precision.
	assert.InDelta(t, freight, bd.FreightCost, 1e-9)
	assert.InDelta(t, fuel, bd.FuelSurcharge, 1e-9)
	assert.InDelta(t, shipper, bd.ShipperCost, 1e-9)

	// The total is rounded exactly once, to two decimals.
	assert.InDelta(t, math.Round(total*100)/100, bd.TotalCost, 1e-9)
	assert.NotEqual(t, total, bd.TotalCost)
}

func TestCalculateCost_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()
	card := airCard(now)

	first, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 317.5, VolumeCbm: floatPtr(1.9)}, cfg)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 317.5, VolumeCbm: floatPtr(1.9)}, cfg)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateCost_NoCoveringSlab(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := pricing.DefaultConfig()
	card := airCard(now)
	card.Slabs = []domain.WeightSlab{
		{MinKg: 0, MaxKg: floatPtr(100), RatePerKg: 4.50, Currency: "USD"},
	}

	_, err := pricing.CalculateCost(&card, pricing.Input{WeightKg: 5000}, cfg)
	assert.ErrorIs(t, err, pricing.ErrInconsistentRateCard)
}

// =============================================================================
// Shipper Quote Pricing Tests
// =============================================================================

func TestPriceFromShipperQuote(t *testing.T) {
	cfg := pricing.DefaultConfig()

	t.Run("default margin", func(t *testing.T) {
		bd := pricing.PriceFromShipperQuote(1000, "EUR", nil, cfg)
		assert.InDelta(t, 1000, bd.ShipperCost, 1e-9)
		assert.InDelta(t, 15, bd.MarginPercent, 1e-9)
		assert.InDelta(t, 150, bd.MarginAmount, 1e-9)
		assert.InDelta(t, 1150, bd.TotalCost, 1e-9)
		assert.Equal(t, "EUR", bd.Currency)
	})

	t.Run("explicit margin", func(t *testing.T) {
		bd := pricing.PriceFromShipperQuote(847.33, "USD", floatPtr(12), cfg)
		assert.InDelta(t, 12, bd.MarginPercent, 1e-9)
		assert.InDelta(t, 949.01, bd.TotalCost, 1e-9)
	})

	t.Run("zero margin", func(t *testing.T) {
		bd := pricing.PriceFromShipperQuote(500, "USD", floatPtr(0), cfg)
		assert.Zero(t, bd.MarginAmount)
		assert.InDelta(t, 500, bd.TotalCost, 1e-9)
	})
}
