package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *QuotationRepository) WithTx(tx *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: tx}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the quotation together with its items
func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Omit("CreatedBy").Create(quotation).Error
}

// GetByID returns a live (not soft-deleted) quotation with items and creator
func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("CreatedBy").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// GetByIDIncludingDeleted returns a quotation regardless of its soft-delete flag
func (r *QuotationRepository) GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("CreatedBy").
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// GetForUpdate loads a live quotation and locks its row until the
// surrounding transaction ends
func (r *QuotationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	var items []domain.QuotationItem
	if err := r.db.WithContext(ctx).
		Where("quotation_id = ?", id).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	quotation.Items = items
	return &quotation, nil
}

// Update saves the quotation columns. Items are replaced through ReplaceItems.
func (r *QuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(quotation).Error
}

// ReplaceItems swaps the full item list of a quotation
func (r *QuotationRepository) ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []domain.QuotationItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quotation_id = ?", quotationID).Delete(&domain.QuotationItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QuotationID = quotationID
	}
	return db.Create(&items).Error
}

// List returns a page of live quotations, newest first. ownerID restricts the
// result to one creator when set.
func (r *QuotationRepository) List(ctx context.Context, filter domain.ListQuotationsFilter, ownerID *uuid.UUID) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("is_deleted = ?", false)

	if ownerID != nil {
		query = query.Where("created_by_id = ?", *ownerID)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ? OR LOWER(customer_company_name) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("CreatedBy").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&quotations).Error

	return quotations, total, err
}

// ListDeleted returns the recycle bin, most recently deleted first
func (r *QuotationRepository) ListDeleted(ctx context.Context, ownerID *uuid.UUID) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	query := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Where("is_deleted = ?", true)
	if ownerID != nil {
		query = query.Where("created_by_id = ?", *ownerID)
	}
	err := query.Order("deleted_at DESC").Find(&quotations).Error
	return quotations, err
}

// ListDeletedBefore returns ids of quotations soft-deleted before cutoff
func (r *QuotationRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Order("deleted_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// SetDeleted flips the soft-delete flag
func (r *QuotationRepository) SetDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": deletedAt != nil,
			"deleted_at": deletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePermanently removes the quotation, its items and its history
func (r *QuotationRepository) DeletePermanently(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("quotation_id = ?", id).Delete(&domain.QuotationItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("quotation_id = ?", id).Delete(&domain.QuotationStatusHistory{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&domain.Quotation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NumberTaken reports whether any quotation, deleted ones included, holds number
func (r *QuotationRepository) NumberTaken(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// CountCreatedBetween counts quotations created in [start, end), deleted ones included
func (r *QuotationRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}
