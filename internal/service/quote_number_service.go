package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/nordcargo/forwarding-api/internal/repository"
	"go.uber.org/zap"
)

// quoteNumberPattern matches quote numbers like Q-2026-001
var quoteNumberPattern = regexp.MustCompile(`^Q-(\d{4})-(\d{3,})$`)

// QuoteNumberService issues unique, human-readable quote numbers.
// Numbers are sequential per calendar year and formatted Q-YYYY-NNN.
type QuoteNumberService struct {
	sequenceRepo *repository.NumberSequenceRepository
	logger       *zap.Logger
}

func NewQuoteNumberService(
	sequenceRepo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *QuoteNumberService {
	return &QuoteNumberService{
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// GenerateQuoteNumber issues the next quote number for the current year
func (s *QuoteNumberService) GenerateQuoteNumber(ctx context.Context) (string, error) {
	return s.GenerateQuoteNumberForYear(ctx, time.Now().Year())
}

// GenerateQuoteNumberForYear issues the next quote number for the given year
func (s *QuoteNumberService) GenerateQuoteNumberForYear(ctx context.Context, year int) (string, error) {
	seq, err := s.sequenceRepo.GetNextNumber(ctx, year)
	if err != nil {
		s.logger.Error("failed to get next quote sequence",
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}

	number := fmt.Sprintf("Q-%d-%03d", year, seq)

	s.logger.Info("generated quote number",
		zap.String("quoteNumber", number),
		zap.Int("year", year),
		zap.Int("sequence", seq))

	return number, nil
}

// ValidateQuoteNumber checks whether a string is a well-formed quote number
func (s *QuoteNumberService) ValidateQuoteNumber(number string) bool {
	return quoteNumberPattern.MatchString(number)
}

// ParseQuoteNumber extracts the year and sequence from a quote number
func (s *QuoteNumberService) ParseQuoteNumber(number string) (year int, sequence int, err error) {
	matches := quoteNumberPattern.FindStringSubmatch(number)
	if matches == nil {
		return 0, 0, fmt.Errorf("%w: malformed quote number %q", ErrInvalidInput, number)
	}

	year, _ = strconv.Atoi(matches[1])
	sequence, _ = strconv.Atoi(matches[2])
	return year, sequence, nil
}

// GetCurrentSequence returns the last issued sequence for a year
func (s *QuoteNumberService) GetCurrentSequence(ctx context.Context, year int) (int, error) {
	return s.sequenceRepo.GetCurrentSequence(ctx, year)
}

// InitializeSequence seeds the counter for a year, typically when
// migrating historical quotations. The counter is never reduced.
func (s *QuoteNumberService) InitializeSequence(ctx context.Context, year int, value int) error {
	return s.sequenceRepo.SetSequence(ctx, year, value)
}
