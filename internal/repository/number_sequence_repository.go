package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nordcargo/forwarding-api/internal/domain"
)

// NumberSequenceRepository backs quote number allocation. One row
// exists per calendar year holding the last issued sequence; all
// increments go through SELECT FOR UPDATE so concurrent quotation
// creation never issues the same number twice.
type NumberSequenceRepository struct {
	db *gorm.DB
}

func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber reserves and returns the next sequence number for the
// year, creating the year's row on first use.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, year int) (int, error) {
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("year = ?", year).
			First(&seq).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seq = domain.NumberSequence{
				Year:         year,
				LastSequence: 1,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
		case err != nil:
			return fmt.Errorf("failed to get number sequence: %w", err)
		default:
			next = seq.LastSequence + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_sequence": next,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetCurrentSequence reads the last issued number without reserving
// anything. Years with no issued numbers yet report 0.
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, year int) (int, error) {
	var seq domain.NumberSequence
	err := r.db.WithContext(ctx).Where("year = ?", year).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", err)
	}
	return seq.LastSequence, nil
}

// SetSequence fast-forwards a year's sequence to the given last-used
// value. Data migrations use it to account for quote numbers issued
// by the system being replaced. The sequence never moves backwards;
// reissued numbers would collide.
func (r *NumberSequenceRepository) SetSequence(ctx context.Context, year int, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("year = ?", year).
			First(&seq).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seq = domain.NumberSequence{
				Year:         year,
				LastSequence: value,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to get number sequence: %w", err)
		case value > seq.LastSequence:
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_sequence": value,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}
		return nil
	})
}

// ListSequences returns every year's sequence, newest year first.
func (r *NumberSequenceRepository) ListSequences(ctx context.Context) ([]domain.NumberSequence, error) {
	var sequences []domain.NumberSequence
	err := r.db.WithContext(ctx).Order("year DESC").Find(&sequences).Error
	return sequences, err
}
