package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/mapper"
	"github.com/qes/quotation-api/internal/storage"
	"go.uber.org/zap"
)

// DefaultArchivePrefix is used when storage.archivePrefix is empty
const DefaultArchivePrefix = "quotation-archive"

// ArchiveDocument is the JSON written for a quotation before its rows are
// removed. It holds the full quotation including its status history.
type ArchiveDocument struct {
	ArchivedAt string                 `json:"archivedAt"`
	ArchivedBy *domain.UserSummaryDTO `json:"archivedBy,omitempty"`
	Reason     string                 `json:"reason"`
	Quotation  domain.QuotationDTO    `json:"quotation"`
}

// ArchiveService writes quotation archives to object storage
type ArchiveService struct {
	store  storage.Storage
	prefix string
	logger *zap.Logger
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(store storage.Storage, prefix string, logger *zap.Logger) *ArchiveService {
	if prefix == "" {
		prefix = DefaultArchivePrefix
	}
	return &ArchiveService{store: store, prefix: prefix, logger: logger}
}

// Key returns the storage key of the archive of q written at at
func (s *ArchiveService) Key(q *domain.Quotation, at time.Time) string {
	return path.Join(s.prefix, at.UTC().Format("2006/01"), q.ID.String()+".json")
}

// Archive stores q and its history. by is nil for system actions.
func (s *ArchiveService) Archive(ctx context.Context, q *domain.Quotation, history []domain.QuotationStatusHistory, reason string, by *domain.UserSummaryDTO, at time.Time) (string, error) {
	doc := ArchiveDocument{
		ArchivedAt: at.UTC().Format(time.RFC3339),
		ArchivedBy: by,
		Reason:     reason,
		Quotation:  mapper.ToQuotationDTO(q, history),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode archive: %w", err)
	}

	key := s.Key(q, at)
	if _, err := s.store.Put(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store archive: %w", err)
	}

	s.logger.Info("quotation archived",
		zap.String("quotationId", q.ID.String()),
		zap.String("quotationNumber", q.Number),
		zap.String("key", key),
		zap.String("reason", reason))

	return key, nil
}
