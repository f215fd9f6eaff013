package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/auth"
	"github.com/qes/quotation-api/internal/catalog"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/mapper"
	"github.com/qes/quotation-api/internal/observability"
	"github.com/qes/quotation-api/internal/pricing"
	"github.com/qes/quotation-api/internal/repository"
	"github.com/qes/quotation-api/internal/snapshot"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// DefaultNumberingAttempts bounds the inserts tried per create
	DefaultNumberingAttempts = 3
)

// ItemPricer prices requested quotation lines
type ItemPricer interface {
	Price(ctx context.Context, items []domain.QuotationItemRequest) (*pricing.Result, error)
}

// QuotationService implements the quotation operations. Every call takes the
// acting principal explicitly.
type QuotationService struct {
	db            *gorm.DB
	quotationRepo *repository.QuotationRepository
	historyRepo   *repository.QuotationHistoryRepository
	pricer        ItemPricer
	numbers       *NumberSequenceService
	archive       *ArchiveService
	metrics       *observability.Metrics
	logger        *zap.Logger

	maxAttempts int
	now         func() time.Time
}

// NewQuotationService creates a new QuotationService. archive and metrics may be nil.
func NewQuotationService(
	db *gorm.DB,
	quotationRepo *repository.QuotationRepository,
	historyRepo *repository.QuotationHistoryRepository,
	pricer ItemPricer,
	numbers *NumberSequenceService,
	archive *ArchiveService,
	metrics *observability.Metrics,
	maxAttempts int,
	logger *zap.Logger,
) *QuotationService {
	if maxAttempts < 1 {
		maxAttempts = DefaultNumberingAttempts
	}
	return &QuotationService{
		db:            db,
		quotationRepo: quotationRepo,
		historyRepo:   historyRepo,
		pricer:        pricer,
		numbers:       numbers,
		archive:       archive,
		metrics:       metrics,
		logger:        logger,
		maxAttempts:   maxAttempts,
		now:           time.Now,
	}
}

// SetClock replaces the time source; used by tests that pin the numbering month
func (s *QuotationService) SetClock(now func() time.Time) {
	s.now = now
}

// Create prices the requested items, allocates a number and stores the
// quotation together with its initial history entry
func (s *QuotationService) Create(ctx context.Context, p *auth.Principal, req *domain.CreateQuotationRequest) (*domain.QuotationDTO, error) {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionCreate) {
		return nil, ErrForbidden
	}

	customerName := strings.TrimSpace(req.CustomerName)
	customerEmail := strings.TrimSpace(req.CustomerEmail)
	if customerName == "" || customerEmail == "" {
		return nil, fmt.Errorf("%w: customer name and email are required", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}

	priced, err := s.price(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	q := &domain.Quotation{
		BaseModel:           domain.BaseModel{CreatedAt: now, UpdatedAt: now},
		CompanyName:         strings.TrimSpace(req.CompanyName),
		ContactName:         strings.TrimSpace(req.ContactName),
		CompanyPhone:        strings.TrimSpace(req.CompanyPhone),
		CompanyAddress:      strings.TrimSpace(req.CompanyAddress),
		CustomerID:          req.CustomerID,
		CustomerName:        customerName,
		CustomerEmail:       customerEmail,
		CustomerPhone:       strings.TrimSpace(req.CustomerPhone),
		CustomerAddress:     strings.TrimSpace(req.CustomerAddress),
		CustomerCompanyName: strings.TrimSpace(req.CustomerCompanyName),
		ShippingDetails:     strings.TrimSpace(req.ShippingDetails),
		Notes:               strings.TrimSpace(req.Notes),
		Terms:               req.TermsAndConditions.ApplyTo(domain.DefaultTermsAndConditions()).WithDefaults(),
		Items:               itemsFromLines(priced.Lines),
		Subtotal:            priced.Subtotal,
		Tax:                 priced.Tax,
		Total:               priced.Total,
		Status:              domain.QuotationStatusInProcess,
		Revision:            0,
		CreatedByID:         p.ID,
	}

	initial, err := snapshot.Capture(q)
	if err != nil {
		return nil, err
	}
	initialJSON, err := snapshot.Marshal(initial)
	if err != nil {
		return nil, err
	}

	err = s.insertNumbered(ctx, q, now, func(tx *gorm.DB) error {
		record := newHistoryRecord(q, p, now, []string{}, nil, initialJSON)
		return s.historyRepo.WithTx(tx).Append(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.QuotationCreated()
	s.logger.Info("quotation created",
		zap.String("quotationId", q.ID.String()),
		zap.String("quotationNumber", q.Number),
		zap.String("createdBy", p.ID.String()),
		zap.Int("items", len(q.Items)),
		zap.String("total", q.Total.StringFixed(pricing.MoneyPlaces)))

	return s.load(ctx, q.ID)
}

// insertNumbered allocates a number and inserts q in one transaction,
// retrying when the number collides with one already stored
func (s *QuotationService) insertNumbered(ctx context.Context, q *domain.Quotation, at time.Time, afterInsert func(tx *gorm.DB) error) error {
	for attempt := 1; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := s.numbers.Generate(ctx, tx, at)
			if err != nil {
				return err
			}
			q.Number = number
			if err := s.quotationRepo.WithTx(tx).Create(ctx, q); err != nil {
				return err
			}
			return afterInsert(tx)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return mapper.FormatError("quotation", "create", err)
		}
		if attempt >= s.maxAttempts {
			s.logger.Error("quotation number allocation exhausted",
				zap.Int("attempts", attempt),
				zap.Error(err))
			return fmt.Errorf("%w: could not allocate a unique quotation number", ErrConflict)
		}

		s.metrics.NumberingRetried()
		s.logger.Warn("quotation number collided, retrying",
			zap.String("number", q.Number),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
}

// List returns a page of live quotations. Non-admin principals only see
// quotations they created.
func (s *QuotationService) List(ctx context.Context, p *auth.Principal, filter domain.ListQuotationsFilter) (*domain.PaginatedResponse, error) {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionRead) {
		return nil, ErrForbidden
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *filter.Status)
	}

	quotations, total, err := s.quotationRepo.List(ctx, filter, ownerScope(p))
	if err != nil {
		return nil, mapper.FormatError("quotations", "list", err)
	}

	data := make([]domain.QuotationSummaryDTO, len(quotations))
	for i := range quotations {
		data[i] = mapper.ToQuotationSummaryDTO(&quotations[i])
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListDeleted returns the recycle bin, most recently deleted first
func (s *QuotationService) ListDeleted(ctx context.Context, p *auth.Principal) ([]domain.QuotationSummaryDTO, error) {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionRead) {
		return nil, ErrForbidden
	}

	quotations, err := s.quotationRepo.ListDeleted(ctx, ownerScope(p))
	if err != nil {
		return nil, mapper.FormatError("deleted quotations", "list", err)
	}

	data := make([]domain.QuotationSummaryDTO, len(quotations))
	for i := range quotations {
		data[i] = mapper.ToQuotationSummaryDTO(&quotations[i])
	}
	return data, nil
}

// GetByID returns a live quotation with its history
func (s *QuotationService) GetByID(ctx context.Context, p *auth.Principal, id uuid.UUID) (*domain.QuotationDTO, error) {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionRead) {
		return nil, ErrForbidden
	}

	q, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !p.CanAccess(q.CreatedByID) {
		return nil, ErrForbidden
	}

	return s.withHistory(ctx, q)
}

// History returns the status history of a live quotation, oldest first
func (s *QuotationService) History(ctx context.Context, p *auth.Principal, id uuid.UUID) ([]domain.StatusHistoryDTO, error) {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionRead) {
		return nil, ErrForbidden
	}

	q, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !p.CanAccess(q.CreatedByID) {
		return nil, ErrForbidden
	}

	history, err := s.historyRepo.ListFor(ctx, id)
	if err != nil {
		return nil, mapper.FormatError("quotation history", "list", err)
	}
	dtos := make([]domain.StatusHistoryDTO, len(history))
	for i := range history {
		dtos[i] = mapper.ToStatusHistoryDTO(&history[i])
	}
	return dtos, nil
}

// Update runs a partial update through the revision engine. Items are
// priced before the transaction; the quotation row is locked for the
// read-modify-write.
func (s *QuotationService) Update(ctx context.Context, p *auth.Principal, id uuid.UUID, req *domain.UpdateQuotationRequest) (*domain.QuotationDTO, error) {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionUpdate) {
		return nil, ErrForbidden
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	current, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := checkEditable(current, p); err != nil {
		return nil, err
	}

	var priced *pricing.Result
	if req.Items != nil {
		priced, err = s.price(ctx, req.Items)
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	var (
		rev    *revision
		status domain.QuotationStatus
		number string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotations := s.quotationRepo.WithTx(tx)

		q, err := quotations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		rev, err = revise(q, req, priced, p, now)
		if err != nil {
			return err
		}
		status, number = q.Status, q.Number
		if rev.record == nil {
			return nil
		}

		if err := quotations.Update(ctx, q); err != nil {
			return err
		}
		if rev.itemsChanged {
			if err := quotations.ReplaceItems(ctx, q.ID, q.Items); err != nil {
				return err
			}
		}
		return s.historyRepo.WithTx(tx).Append(ctx, rev.record)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		if isServiceError(err) {
			return nil, err
		}
		return nil, mapper.FormatError("quotation", "update", err)
	}

	switch {
	case rev.record == nil:
		s.logger.Debug("quotation update changed nothing",
			zap.String("quotationId", id.String()))
	case status.IsTerminal():
		s.metrics.TerminalTransition(string(status))
		s.logger.Info("quotation closed",
			zap.String("quotationId", id.String()),
			zap.String("quotationNumber", number),
			zap.String("status", string(status)),
			zap.String("actor", p.ID.String()))
	default:
		s.metrics.RevisionRecorded()
		s.logger.Info("quotation revised",
			zap.String("quotationId", id.String()),
			zap.String("quotationNumber", number),
			zap.Int("revision", rev.record.Revision),
			zap.Strings("changedFields", rev.changedFields),
			zap.String("actor", p.ID.String()))
	}

	return s.load(ctx, id)
}

// SoftDelete moves a live quotation to the recycle bin
func (s *QuotationService) SoftDelete(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionDelete) {
		return ErrForbidden
	}

	q, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if !p.CanAccess(q.CreatedByID) {
		return ErrForbidden
	}

	deletedAt := s.now().UTC()
	if err := s.quotationRepo.SetDeleted(ctx, id, &deletedAt); err != nil {
		return notFound(err)
	}

	s.logger.Info("quotation moved to recycle bin",
		zap.String("quotationId", id.String()),
		zap.String("quotationNumber", q.Number),
		zap.String("actor", p.ID.String()))
	return nil
}

// Restore takes a quotation out of the recycle bin
func (s *QuotationService) Restore(ctx context.Context, p *auth.Principal, id uuid.UUID) (*domain.QuotationDTO, error) {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionUpdate) {
		return nil, ErrForbidden
	}

	q, err := s.quotationRepo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !p.CanAccess(q.CreatedByID) {
		return nil, ErrForbidden
	}
	if !q.IsDeleted {
		return nil, fmt.Errorf("%w: quotation is not deleted", ErrInvalidState)
	}

	if err := s.quotationRepo.SetDeleted(ctx, id, nil); err != nil {
		return nil, notFound(err)
	}

	s.logger.Info("quotation restored",
		zap.String("quotationId", id.String()),
		zap.String("quotationNumber", q.Number),
		zap.String("actor", p.ID.String()))

	return s.load(ctx, id)
}

// DeletePermanently archives a quotation with its history and removes its
// rows. Only admins may do this.
func (s *QuotationService) DeletePermanently(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	if !auth.Authorize(p, domain.ModuleQuotation, domain.ActionDelete) || !p.IsAdmin() {
		return ErrForbidden
	}

	by := &domain.UserSummaryDTO{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role}
	if err := s.purge(ctx, id, "permanent delete", by); err != nil {
		return err
	}

	s.logger.Info("quotation permanently deleted",
		zap.String("quotationId", id.String()),
		zap.String("actor", p.ID.String()))
	return nil
}

// PurgeDeleted permanently removes up to limit quotations that were
// soft-deleted before cutoff. It returns how many were removed.
func (s *QuotationService) PurgeDeleted(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	ids, err := s.quotationRepo.ListDeletedBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, mapper.FormatError("expired quotations", "list", err)
	}

	purged := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		if err := s.purge(ctx, id, "recycle bin retention expired", nil); err != nil {
			s.metrics.QuotationsPurged(purged)
			return purged, fmt.Errorf("failed to purge quotation %s: %w", id, err)
		}
		purged++
	}
	s.metrics.QuotationsPurged(purged)
	return purged, nil
}

// purge archives then deletes one quotation
func (s *QuotationService) purge(ctx context.Context, id uuid.UUID, reason string, by *domain.UserSummaryDTO) error {
	q, err := s.quotationRepo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		return notFound(err)
	}

	if s.archive != nil {
		history, err := s.historyRepo.ListFor(ctx, id)
		if err != nil {
			return mapper.FormatError("quotation history", "load", err)
		}
		if _, err := s.archive.Archive(ctx, q, history, reason, by, s.now()); err != nil {
			return err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.quotationRepo.WithTx(tx).DeletePermanently(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuotationNotFound
		}
		return mapper.FormatError("quotation", "delete", err)
	}
	return nil
}

// price maps pricer failures onto service errors
func (s *QuotationService) price(ctx context.Context, items []domain.QuotationItemRequest) (*pricing.Result, error) {
	result, err := s.pricer.Price(ctx, items)
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, catalog.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
	case errors.Is(err, pricing.ErrInvalidItem):
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return nil, fmt.Errorf("failed to price items: %w", err)
	}
}

// load reads a live quotation with history after a write
func (s *QuotationService) load(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	q, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.withHistory(ctx, q)
}

func (s *QuotationService) withHistory(ctx context.Context, q *domain.Quotation) (*domain.QuotationDTO, error) {
	history, err := s.historyRepo.ListFor(ctx, q.ID)
	if err != nil {
		return nil, mapper.FormatError("quotation history", "load", err)
	}
	dto := mapper.ToQuotationDTO(q, history)
	return &dto, nil
}

// ownerScope limits listings to the principal's own quotations unless admin
func ownerScope(p *auth.Principal) *uuid.UUID {
	if p.IsAdmin() {
		return nil
	}
	id := p.ID
	return &id
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQuotationNotFound
	}
	return mapper.FormatError("quotation", "load", err)
}

func isServiceError(err error) bool {
	for _, target := range []error{ErrQuotationNotFound, ErrProductNotFound, ErrForbidden, ErrInvalidState, ErrInvalidInput, ErrConflict} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
