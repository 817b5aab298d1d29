package service

import (
	"errors"
	"fmt"

	"github.com/nordcargo/forwarding-api/internal/domain"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCustomerNotFound is returned when a customer is not found
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrQuotationNotFound is returned when a quotation is not found
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrRateCardNotFound is returned when a rate card is not found
	ErrRateCardNotFound = errors.New("rate card not found")

	// ErrShipperQuoteNotFound is returned when a shipper quote request is not found
	ErrShipperQuoteNotFound = errors.New("shipper quote request not found")

	// ErrShipmentNotFound is returned when a shipment is not found
	ErrShipmentNotFound = errors.New("shipment not found")

	// ErrNoRateForRoute is returned when no rate card covers the requested route
	ErrNoRateForRoute = errors.New("no rate available for route")

	// ErrShipperQuoteAlreadyReceived is returned when a reply is recorded twice
	ErrShipperQuoteAlreadyReceived = errors.New("shipper quote reply already recorded")

	// ErrShipperQuoteNotReceived is returned when converting a request with no reply yet
	ErrShipperQuoteNotReceived = errors.New("shipper quote reply not yet recorded")

	// ErrShipperQuoteAlreadyConverted is returned when a request was already turned into a quotation
	ErrShipperQuoteAlreadyConverted = errors.New("shipper quote request already converted")

	// ErrInconsistentRateCard is returned when a selected card has no slab for the weight
	ErrInconsistentRateCard = errors.New("rate card data inconsistent")
)

// InvalidTransitionError is returned when a quotation status change is
// not a permitted lifecycle edge. The quotation is left untouched.
type InvalidTransitionError struct {
	From domain.QuotationStatus
	To   domain.QuotationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// NewInvalidTransitionError builds an InvalidTransitionError for the edge
func NewInvalidTransitionError(from, to domain.QuotationStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// IsInvalidTransition reports whether err is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
