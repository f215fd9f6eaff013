package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// ToUserSummaryDTO converts a loaded user reference. When the user row is
// missing the id is still reported, with fallbackName as its name.
func ToUserSummaryDTO(user *domain.User, id uuid.UUID, fallbackName string) domain.UserSummaryDTO {
	if user == nil {
		return domain.UserSummaryDTO{ID: id, Name: fallbackName}
	}
	return domain.UserSummaryDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  user.Role,
	}
}

// ToQuotationItemDTO converts QuotationItem to QuotationItemDTO
func ToQuotationItemDTO(item *domain.QuotationItem) domain.QuotationItemDTO {
	params := []domain.ProductParameter(item.Parameters)
	if params == nil {
		params = []domain.ProductParameter{}
	}
	specs := []domain.GeneralSpecification(item.GeneralSpecifications)
	if specs == nil {
		specs = []domain.GeneralSpecification{}
	}
	return domain.QuotationItemDTO{
		ProductID:             item.ProductID,
		ProductName:           item.ProductName,
		UnitOfMeasure:         item.UnitOfMeasure,
		Description:           item.Description,
		Quantity:              item.Quantity,
		Rate:                  item.Rate,
		Tax:                   item.TaxRate,
		Amount:                item.Amount,
		Parameters:            params,
		GeneralSpecifications: specs,
	}
}

// ToStatusHistoryDTO converts one history record. Snapshot is nil for
// records without snapshots (terminal transitions).
func ToStatusHistoryDTO(record *domain.QuotationStatusHistory) domain.StatusHistoryDTO {
	changed := []string(record.ChangedFields)
	if changed == nil {
		changed = []string{}
	}
	dto := domain.StatusHistoryDTO{
		Status:        record.Status,
		Revision:      record.Revision,
		UpdatedBy:     ToUserSummaryDTO(record.Actor, record.ActorID, record.ActorName),
		Role:          record.Role,
		ChangedFields: changed,
		At:            formatTime(record.At),
	}
	if len(record.BeforeSnapshot) > 0 || len(record.AfterSnapshot) > 0 {
		dto.Snapshot = &domain.SnapshotPairDTO{
			Before: rawOrNull(record.BeforeSnapshot),
			After:  rawOrNull(record.AfterSnapshot),
		}
	}
	return dto
}

func rawOrNull(data []byte) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(data)
}

// ToQuotationDTO converts a quotation and its history to the full response shape
func ToQuotationDTO(q *domain.Quotation, history []domain.QuotationStatusHistory) domain.QuotationDTO {
	items := make([]domain.QuotationItemDTO, len(q.Items))
	for i := range q.Items {
		items[i] = ToQuotationItemDTO(&q.Items[i])
	}
	statusHistory := make([]domain.StatusHistoryDTO, len(history))
	for i := range history {
		statusHistory[i] = ToStatusHistoryDTO(&history[i])
	}

	dto := domain.QuotationDTO{
		ID:                  q.ID,
		Number:              q.Number,
		CompanyName:         q.CompanyName,
		ContactName:         q.ContactName,
		CompanyPhone:        q.CompanyPhone,
		CompanyAddress:      q.CompanyAddress,
		CustomerID:          q.CustomerID,
		CustomerName:        q.CustomerName,
		CustomerEmail:       q.CustomerEmail,
		CustomerPhone:       q.CustomerPhone,
		CustomerAddress:     q.CustomerAddress,
		CustomerCompanyName: q.CustomerCompanyName,
		ShippingDetails:     q.ShippingDetails,
		Notes:               q.Notes,
		TermsAndConditions:  q.Terms,
		Items:               items,
		Subtotal:            q.Subtotal,
		Tax:                 q.Tax,
		Total:               q.Total,
		Status:              q.Status,
		Revision:            q.Revision,
		StatusHistory:       statusHistory,
		IsDeleted:           q.IsDeleted,
		CreatedBy:           ToUserSummaryDTO(q.CreatedBy, q.CreatedByID, ""),
		CreatedAt:           formatTime(q.CreatedAt),
		UpdatedAt:           formatTime(q.UpdatedAt),
	}
	if q.DeletedAt != nil {
		deletedAt := formatTime(*q.DeletedAt)
		dto.DeletedAt = &deletedAt
	}
	return dto
}

// ToQuotationSummaryDTO converts a quotation to a list row
func ToQuotationSummaryDTO(q *domain.Quotation) domain.QuotationSummaryDTO {
	dto := domain.QuotationSummaryDTO{
		ID:                  q.ID,
		Number:              q.Number,
		CustomerName:        q.CustomerName,
		CustomerEmail:       q.CustomerEmail,
		CustomerCompanyName: q.CustomerCompanyName,
		Total:               q.Total,
		Status:              q.Status,
		Revision:            q.Revision,
		IsDeleted:           q.IsDeleted,
		CreatedBy:           ToUserSummaryDTO(q.CreatedBy, q.CreatedByID, ""),
		CreatedAt:           formatTime(q.CreatedAt),
	}
	if q.DeletedAt != nil {
		deletedAt := formatTime(*q.DeletedAt)
		dto.DeletedAt = &deletedAt
	}
	return dto
}

// FormatError wraps a repository error with the entity and operation it came from
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}
