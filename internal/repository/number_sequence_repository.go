package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qes/quotation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedFunc reports how many quotations already exist in a period. Counters
// call it once, when a period is first used, so numbering continues after
// data that predates the counter. tx is the counter's transaction, nil for
// counters that do not use the database.
type SeedFunc func(ctx context.Context, tx *gorm.DB) (int64, error)

// NumberSequenceRepository keeps one row per month and hands out the next
// sequence under a row lock.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// Next atomically increments and returns the sequence for period. When tx is
// not nil the work joins that transaction, so a rolled back insert also rolls
// back the increment. A concurrent first use of the same period surfaces as
// gorm.ErrDuplicatedKey; callers retry.
func (r *NumberSequenceRepository) Next(ctx context.Context, tx *gorm.DB, period string, seed SeedFunc) (int, error) {
	var next int
	work := func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("period = ?", period).
			First(&seq)

		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			existing, err := seed(ctx, tx)
			if err != nil {
				return fmt.Errorf("failed to seed number sequence: %w", err)
			}
			next = int(existing) + 1
			seq = domain.NumberSequence{
				Period:       period,
				LastSequence: next,
				UpdatedAt:    time.Now().UTC(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
		case result.Error != nil:
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		default:
			next = seq.LastSequence + 1
			if err := tx.Model(&domain.NumberSequence{}).
				Where("period = ?", period).
				Updates(map[string]interface{}{
					"last_sequence": next,
					"updated_at":    time.Now().UTC(),
				}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}
		return nil
	}

	var err error
	if tx != nil {
		err = work(tx.WithContext(ctx))
	} else {
		err = r.db.WithContext(ctx).Transaction(work)
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Current returns the last issued sequence for period, 0 when unused
func (r *NumberSequenceRepository) Current(ctx context.Context, period string) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).Where("period = ?", period).First(&seq)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}
	return seq.LastSequence, nil
}
