// Package pricing resolves rate cards and computes quotation costs.
// All monetary arithmetic runs at full float64 precision; rounding to
// two decimals happens exactly once, on the final total.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nordcargo/forwarding-api/internal/domain"
)

var (
	// ErrNoMatchingRateCard is returned when no active rate card covers
	// the requested route, shipment type, and chargeable weight.
	ErrNoMatchingRateCard = errors.New("no matching rate card for route")

	// ErrInconsistentRateCard is returned when a card passed route and
	// weight filtering but none of its slabs covers the chargeable
	// weight. This indicates corrupt rate card data, not bad input.
	ErrInconsistentRateCard = errors.New("rate card has no slab covering chargeable weight")
)

// Config carries the tunable pricing constants. Zero values are not
// usable; construct via DefaultConfig or from app configuration.
type Config struct {
	// DefaultMarginPercent applies when a rate card has no margin of its own.
	DefaultMarginPercent float64
	// VolumetricDivisor converts cubic meters to volumetric kilograms.
	VolumetricDivisor float64
	// DefaultValidityDays is the validity window stamped on generated quotations.
	DefaultValidityDays int
}

// DefaultConfig returns the standard pricing constants
func DefaultConfig() Config {
	return Config{
		DefaultMarginPercent: 15.0,
		VolumetricDivisor:    167.0,
		DefaultValidityDays:  7,
	}
}

// VolumetricWeight converts a volume in cubic meters to volumetric
// kilograms. A nil or non-positive volume yields zero.
func VolumetricWeight(volumeCbm *float64, divisor float64) float64 {
	if volumeCbm == nil || *volumeCbm <= 0 {
		return 0
	}
	return *volumeCbm * divisor
}

// ChargeableWeight returns the greater of actual and volumetric weight
func ChargeableWeight(weightKg float64, volumeCbm *float64, divisor float64) float64 {
	return math.Max(weightKg, VolumetricWeight(volumeCbm, divisor))
}

// EffectiveMargin returns the card's margin, falling back to the
// configured default when the card carries none
func EffectiveMargin(card *domain.RateCard, cfg Config) float64 {
	if card.MarginPercent != nil {
		return *card.MarginPercent
	}
	return cfg.DefaultMarginPercent
}

// SelectRateCard picks the best card for the shipment from candidates
// already scoped to the route. A card qualifies when it is current at
// now, matches the shipment type, its weight bounds admit the
// chargeable weight, and at least one of its slabs covers it. Among
// qualifying cards the one with the highest effective margin wins;
// equal margins break ties by lowest card ID so selection is
// deterministic.
func SelectRateCard(cards []domain.RateCard, shipmentType domain.ShipmentType, chargeableWeightKg float64, now time.Time, cfg Config) (*domain.RateCard, error) {
	candidates := make([]*domain.RateCard, 0, len(cards))
	for i := range cards {
		card := &cards[i]
		if card.ShipmentType != shipmentType {
			continue
		}
		if !card.IsCurrentAt(now) {
			continue
		}
		if !card.CoversWeight(chargeableWeightKg) {
			continue
		}
		if findSlab(card, chargeableWeightKg) == nil {
			continue
		}
		candidates = append(candidates, card)
	}
	if len(candidates) == 0 {
		return nil, ErrNoMatchingRateCard
	}

	sort.Slice(candidates, func(i, j int) bool {
		mi, mj := EffectiveMargin(candidates[i], cfg), EffectiveMargin(candidates[j], cfg)
		if mi != mj {
			return mi > mj
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	return candidates[0], nil
}

// findSlab returns the first slab covering the weight, in display
// order. Slabs are expected non-overlapping, so first match is the
// only match.
func findSlab(card *domain.RateCard, weightKg float64) *domain.WeightSlab {
	slabs := make([]domain.WeightSlab, len(card.Slabs))
	copy(slabs, card.Slabs)
	sort.SliceStable(slabs, func(i, j int) bool {
		if slabs[i].DisplayOrder != slabs[j].DisplayOrder {
			return slabs[i].DisplayOrder < slabs[j].DisplayOrder
		}
		return slabs[i].MinKg < slabs[j].MinKg
	})
	for i := range slabs {
		if slabs[i].Covers(weightKg) {
			s := slabs[i]
			return &s
		}
	}
	return nil
}

// Input describes the cargo to be priced
type Input struct {
	WeightKg       float64
	VolumeCbm      *float64
	DangerousGoods bool
}

// CalculateCost prices the cargo against the given rate card and
// returns the itemized breakdown. The cost build-up is ordered:
// freight from the matched slab, percentage surcharges on freight,
// the flat dangerous goods surcharge when applicable, handling
// charges, then margin on the shipper cost. Only the final total is
// rounded.
func CalculateCost(card *domain.RateCard, in Input, cfg Config) (*domain.CostBreakdown, error) {
	volumetric := VolumetricWeight(in.VolumeCbm, cfg.VolumetricDivisor)
	chargeable := math.Max(in.WeightKg, volumetric)

	slab := findSlab(card, chargeable)
	if slab == nil {
		return nil, fmt.Errorf("rate card %s: %w", card.ID, ErrInconsistentRateCard)
	}

	freight := chargeable * slab.RatePerKg
	fuel := freight * card.FuelSurchargePercent / 100
	security := freight * card.SecuritySurchargePercent / 100
	var dangerous float64
	if in.DangerousGoods {
		dangerous = card.DangerousGoodsSurcharge
	}
	surcharges := fuel + security + dangerous
	handling := card.OriginHandlingCharge + card.DestinationHandlingCharge

	shipperCost := freight + surcharges + handling
	margin := EffectiveMargin(card, cfg)
	marginAmount := shipperCost * margin / 100
	total := round2(shipperCost + marginAmount)

	return &domain.CostBreakdown{
		ChargeableWeightKg:        chargeable,
		ActualWeightKg:            in.WeightKg,
		VolumetricWeightKg:        volumetric,
		AppliedRatePerKg:          slab.RatePerKg,
		FreightCost:               freight,
		FuelSurcharge:             fuel,
		SecuritySurcharge:         security,
		DangerousGoodsSurcharge:   dangerous,
		SurchargeTotal:            surcharges,
		OriginHandlingCharge:      card.OriginHandlingCharge,
		DestinationHandlingCharge: card.DestinationHandlingCharge,
		HandlingTotal:             handling,
		ShipperCost:               shipperCost,
		MarginPercent:             margin,
		MarginAmount:              marginAmount,
		TotalCost:                 total,
		Currency:                  slab.Currency,
		RateCardID:                card.ID,
		ShipperName:               card.ShipperName,
	}, nil
}

// PriceFromShipperQuote builds a breakdown for a quotation derived
// from an on-demand shipper quote: the quoted amount is the shipper
// cost and margin is applied on top.
func PriceFromShipperQuote(quotedAmount float64, currency string, marginPercent *float64, cfg Config) *domain.CostBreakdown {
	margin := cfg.DefaultMarginPercent
	if marginPercent != nil {
		margin = *marginPercent
	}
	marginAmount := quotedAmount * margin / 100
	return &domain.CostBreakdown{
		ShipperCost:   quotedAmount,
		MarginPercent: margin,
		MarginAmount:  marginAmount,
		TotalCost:     round2(quotedAmount + marginAmount),
		Currency:      currency,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
