package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qes/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultNumberPrefix is used when numbering.prefix is empty
const DefaultNumberPrefix = "QES/QT"

// maxTakenSkips bounds how many already used numbers Generate steps over
const maxTakenSkips = 100

// SequenceCounter hands out the next sequence of a month. The database
// counter joins tx; the Redis counter ignores it.
type SequenceCounter interface {
	Next(ctx context.Context, tx *gorm.DB, period string, seed repository.SeedFunc) (int, error)
	Current(ctx context.Context, period string) (int, error)
}

// NumberingStatus is the counter state of one month
type NumberingStatus struct {
	Prefix     string `json:"prefix"`
	Period     string `json:"period"`
	LastIssued int    `json:"lastIssued"`
	NextNumber string `json:"nextNumber"`
}

// NumberSequenceService formats quotation numbers.
//
// Format: {PREFIX}/{MON}{YY}/{SEQUENCE}
// Example: QES/QT/OCT26/001
//
// The sequence restarts every calendar month of the configured time zone.
type NumberSequenceService struct {
	counter    SequenceCounter
	quotations *repository.QuotationRepository
	prefix     string
	location   *time.Location
	logger     *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	counter SequenceCounter,
	quotations *repository.QuotationRepository,
	prefix string,
	location *time.Location,
	logger *zap.Logger,
) *NumberSequenceService {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	if location == nil {
		location = time.UTC
	}
	return &NumberSequenceService{
		counter:    counter,
		quotations: quotations,
		prefix:     prefix,
		location:   location,
		logger:     logger,
	}
}

// Generate allocates the next number for the month containing at. tx is the
// transaction the quotation will be inserted in; it may be nil.
func (s *NumberSequenceService) Generate(ctx context.Context, tx *gorm.DB, at time.Time) (string, error) {
	local := at.In(s.location)
	period := Period(local)
	start, end := MonthWindow(local)

	quotations := s.quotations
	if tx != nil {
		quotations = quotations.WithTx(tx)
	}
	seed := func(ctx context.Context, counterTx *gorm.DB) (int64, error) {
		repo := quotations
		if counterTx != nil {
			repo = s.quotations.WithTx(counterTx)
		}
		return repo.CountCreatedBetween(ctx, start.UTC(), end.UTC())
	}

	for skipped := 0; skipped <= maxTakenSkips; skipped++ {
		seq, err := s.counter.Next(ctx, tx, period, seed)
		if err != nil {
			s.logger.Error("failed to get next sequence number",
				zap.String("period", period),
				zap.Error(err))
			return "", fmt.Errorf("failed to generate quotation number: %w", err)
		}

		number := FormatNumber(s.prefix, local, seq)
		taken, err := quotations.NumberTaken(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check quotation number: %w", err)
		}
		if taken {
			// counter behind the stored data, e.g. after a restore from backup
			s.logger.Warn("skipping quotation number already in use",
				zap.String("number", number),
				zap.String("period", period))
			continue
		}

		s.logger.Debug("generated number",
			zap.String("number", number),
			zap.String("period", period),
			zap.Int("sequence", seq))
		return number, nil
	}
	return "", fmt.Errorf("failed to generate quotation number: more than %d numbers in %s already taken", maxTakenSkips, period)
}

// Status reads the counter of the month containing at without advancing it.
// NextNumber is a preview; a concurrent create may take it first.
func (s *NumberSequenceService) Status(ctx context.Context, at time.Time) (*NumberingStatus, error) {
	local := at.In(s.location)
	period := Period(local)
	last, err := s.counter.Current(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence for %s: %w", period, err)
	}
	return &NumberingStatus{
		Prefix:     s.prefix,
		Period:     period,
		LastIssued: last,
		NextNumber: FormatNumber(s.prefix, local, last+1),
	}, nil
}

// FormatNumber renders prefix, month token and a sequence padded to at least
// three digits
func FormatNumber(prefix string, at time.Time, seq int) string {
	return fmt.Sprintf("%s/%s/%03d", prefix, MonthToken(at), seq)
}

// MonthToken returns the upper-case month abbreviation followed by the two
// digit year, e.g. OCT26
func MonthToken(t time.Time) string {
	return strings.ToUpper(t.Format("Jan")) + t.Format("06")
}

// Period returns the counter key of the month containing t, e.g. 2026-10
func Period(t time.Time) string {
	return t.Format("2006-01")
}

// MonthWindow returns [first instant of t's month, first instant of the next
// month) in t's location
func MonthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
