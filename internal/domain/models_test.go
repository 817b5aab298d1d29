package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nordcargo/forwarding-api/internal/domain"
)

// =============================================================================
// QuotationStatus Tests
// =============================================================================

func TestQuotationStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.QuotationStatus
		expected bool
	}{
		{"draft is valid", domain.QuotationStatusDraft, true},
		{"sent is valid", domain.QuotationStatusSent, true},
		{"accepted is valid", domain.QuotationStatusAccepted, true},
		{"rejected is valid", domain.QuotationStatusRejected, true},
		{"expired is valid", domain.QuotationStatusExpired, true},
		{"converted is valid", domain.QuotationStatusConverted, true},
		{"invalid status", domain.QuotationStatus("invalid"), false},
		{"empty status", domain.QuotationStatus(""), false},
		{"uppercase is invalid", domain.QuotationStatus("DRAFT"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsValid())
		})
	}
}

func TestQuotationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     domain.QuotationStatus
		to       domain.QuotationStatus
		expected bool
	}{
		// From draft
		{"draft to sent", domain.QuotationStatusDraft, domain.QuotationStatusSent, true},
		{"draft to draft (re-edit)", domain.QuotationStatusDraft, domain.QuotationStatusDraft, true},
		{"draft to accepted", domain.QuotationStatusDraft, domain.QuotationStatusAccepted, false},
		{"draft to rejected", domain.QuotationStatusDraft, domain.QuotationStatusRejected, false},
		{"draft to expired", domain.QuotationStatusDraft, domain.QuotationStatusExpired, false},
		{"draft to converted", domain.QuotationStatusDraft, domain.QuotationStatusConverted, false},

		// From sent
		{"sent to accepted", domain.QuotationStatusSent, domain.QuotationStatusAccepted, true},
		{"sent to rejected", domain.QuotationStatusSent, domain.QuotationStatusRejected, true},
		{"sent to expired", domain.QuotationStatusSent, domain.QuotationStatusExpired, true},
		{"sent to sent (resend)", domain.QuotationStatusSent, domain.QuotationStatusSent, true},
		{"sent to draft", domain.QuotationStatusSent, domain.QuotationStatusDraft, false},
		{"sent to converted", domain.QuotationStatusSent, domain.QuotationStatusConverted, false},

		// From accepted
		{"accepted to converted", domain.QuotationStatusAccepted, domain.QuotationStatusConverted, true},
		{"accepted to accepted", domain.QuotationStatusAccepted, domain.QuotationStatusAccepted, false},
		{"accepted to sent", domain.QuotationStatusAccepted, domain.QuotationStatusSent, false},
		{"accepted to rejected", domain.QuotationStatusAccepted, domain.QuotationStatusRejected, false},
		{"accepted to expired", domain.QuotationStatusAccepted, domain.QuotationStatusExpired, false},
		{"accepted to draft", domain.QuotationStatusAccepted, domain.QuotationStatusDraft, false},

		// Terminal statuses have no outgoing edges
		{"rejected to draft", domain.QuotationStatusRejected, domain.QuotationStatusDraft, false},
		{"rejected to sent", domain.QuotationStatusRejected, domain.QuotationStatusSent, false},
		{"rejected to rejected", domain.QuotationStatusRejected, domain.QuotationStatusRejected, false},
		{"expired to sent", domain.QuotationStatusExpired, domain.QuotationStatusSent, false},
		{"expired to expired", domain.QuotationStatusExpired, domain.QuotationStatusExpired, false},
		{"converted to accepted", domain.QuotationStatusConverted, domain.QuotationStatusAccepted, false},
		{"converted to converted", domain.QuotationStatusConverted, domain.QuotationStatusConverted, false},

		// Unknown source
		{"unknown status has no edges", domain.QuotationStatus("bogus"), domain.QuotationStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestQuotationStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.QuotationStatus
		expected bool
	}{
		{"draft is not terminal", domain.QuotationStatusDraft, false},
		{"sent is not terminal", domain.QuotationStatusSent, false},
		{"accepted is not terminal", domain.QuotationStatusAccepted, false},
		{"rejected IS terminal", domain.QuotationStatusRejected, true},
		{"expired IS terminal", domain.QuotationStatusExpired, true},
		{"converted IS terminal", domain.QuotationStatusConverted, true},
		{"unknown status is not terminal", domain.QuotationStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsTerminal())
		})
	}
}

func TestQuotationStatus_AllowedTransitions(t *testing.T) {
	assert.ElementsMatch(t,
		[]domain.QuotationStatus{domain.QuotationStatusSent, domain.QuotationStatusDraft},
		domain.QuotationStatusDraft.AllowedTransitions())
	assert.ElementsMatch(t,
		[]domain.QuotationStatus{
			domain.QuotationStatusAccepted,
			domain.QuotationStatusRejected,
			domain.QuotationStatusExpired,
			domain.QuotationStatusSent,
		},
		domain.QuotationStatusSent.AllowedTransitions())
	assert.ElementsMatch(t,
		[]domain.QuotationStatus{domain.QuotationStatusConverted},
		domain.QuotationStatusAccepted.AllowedTransitions())
	assert.Empty(t, domain.QuotationStatusRejected.AllowedTransitions())
	assert.Empty(t, domain.QuotationStatusExpired.AllowedTransitions())
	assert.Empty(t, domain.QuotationStatusConverted.AllowedTransitions())
}

// =============================================================================
// WeightSlab Tests
// =============================================================================

func TestWeightSlab_Covers(t *testing.T) {
	maxKg := 100.0
	bounded := domain.WeightSlab{MinKg: 45, MaxKg: &maxKg}
	unbounded := domain.WeightSlab{MinKg: 500}

	tests := []struct {
		name     string
		slab     domain.WeightSlab
		weightKg float64
		expected bool
	}{
		{"below lower bound", bounded, 44.999, false},
		{"lower bound is inclusive", bounded, 45, true},
		{"inside range", bounded, 80, true},
		{"upper bound is exclusive", bounded, 100, false},
		{"above upper bound", bounded, 150, false},
		{"unbounded below min", unbounded, 499.9, false},
		{"unbounded at min", unbounded, 500, true},
		{"unbounded far above min", unbounded, 25000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.slab.Covers(tt.weightKg))
		})
	}
}

// =============================================================================
// RateCard Tests
// =============================================================================

func TestRateCard_IsCurrentAt(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   domain.RateCardStatus
		at       time.Time
		expected bool
	}{
		{"active inside window", domain.RateCardStatusActive, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"active at valid_from", domain.RateCardStatusActive, from, true},
		{"active at valid_until", domain.RateCardStatusActive, until, true},
		{"active before window", domain.RateCardStatusActive, from.Add(-time.Hour), false},
		{"active after window", domain.RateCardStatusActive, until.Add(time.Hour), false},
		{"inactive inside window", domain.RateCardStatusInactive, from.AddDate(0, 1, 0), false},
		{"expired inside window", domain.RateCardStatusExpired, from.AddDate(0, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := domain.RateCard{Status: tt.status, ValidFrom: from, ValidUntil: until}
			assert.Equal(t, tt.expected, card.IsCurrentAt(tt.at))
		})
	}
}

func TestRateCard_CoversWeight(t *testing.T) {
	minW, maxW := 10.0, 1000.0

	tests := []struct {
		name     string
		min      *float64
		max      *float64
		weightKg float64
		expected bool
	}{
		{"no bounds covers anything", nil, nil, 99999, true},
		{"below min", &minW, &maxW, 5, false},
		{"at min", &minW, &maxW, 10, true},
		{"at max is inclusive", &minW, &maxW, 1000, true},
		{"above max", &minW, &maxW, 1000.001, false},
		{"only min bound", &minW, nil, 50000, true},
		{"only max bound", nil, &maxW, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := domain.RateCard{MinWeightKg: tt.min, MaxWeightKg: tt.max}
			assert.Equal(t, tt.expected, card.CoversWeight(tt.weightKg))
		})
	}
}

// =============================================================================
// User Tests
// =============================================================================

func TestUser_HasRole(t *testing.T) {
	user := domain.User{Roles: []string{"operator", "sales"}}

	assert.True(t, user.HasRole(domain.RoleOperator))
	assert.True(t, user.HasRole(domain.RoleSales))
	assert.False(t, user.HasRole(domain.RoleAdmin))
	assert.False(t, user.HasRole(domain.RoleViewer))

	empty := domain.User{}
	assert.False(t, empty.HasRole(domain.RoleViewer))
}
