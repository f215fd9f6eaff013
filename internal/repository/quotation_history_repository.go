package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"gorm.io/gorm"
)

// QuotationHistoryRepository is the append-only store of quotation status
// history. It deliberately has no update or delete method; rows only go away
// with a permanent delete of their quotation.
type QuotationHistoryRepository struct {
	db *gorm.DB
}

func NewQuotationHistoryRepository(db *gorm.DB) *QuotationHistoryRepository {
	return &QuotationHistoryRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *QuotationHistoryRepository) WithTx(tx *gorm.DB) *QuotationHistoryRepository {
	return &QuotationHistoryRepository{db: tx}
}

// Append stores record as the next entry of its quotation's history.
// The (quotation_id, sequence) unique index rejects concurrent appends that
// picked the same position.
func (r *QuotationHistoryRepository) Append(ctx context.Context, record *domain.QuotationStatusHistory) error {
	db := r.db.WithContext(ctx)

	var last int
	if err := db.Model(&domain.QuotationStatusHistory{}).
		Where("quotation_id = ?", record.QuotationID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	record.Sequence = last + 1

	return db.Omit("Actor").Create(record).Error
}

// ListFor returns the full history of a quotation, oldest first, with actors loaded
func (r *QuotationHistoryRepository) ListFor(ctx context.Context, quotationID uuid.UUID) ([]domain.QuotationStatusHistory, error) {
	var history []domain.QuotationStatusHistory
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("quotation_id = ?", quotationID).
		Order("sequence ASC").
		Find(&history).Error
	return history, err
}
