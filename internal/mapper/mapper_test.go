package mapper

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestToQuotationDTO(t *testing.T) {
	owner := &domain.User{Name: "Alice", Email: "alice@qes.example", Role: domain.RoleUser}
	owner.ID = uuid.New()
	deletedAt := time.Date(2026, 10, 16, 12, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	q := &domain.Quotation{
		Number:        "QES/QT/OCT26/001",
		CustomerName:  "Acme",
		CustomerEmail: "buyer@acme.example",
		Items: []domain.QuotationItem{{
			ProductID:   uuid.New(),
			ProductName: "Wind Sensor",
			Quantity:    1,
			Rate:        decimal.RequireFromString("350.00"),
			TaxRate:     decimal.RequireFromString("18.00"),
			Amount:      decimal.RequireFromString("350.00"),
		}},
		Subtotal:    decimal.RequireFromString("350.00"),
		Tax:         decimal.RequireFromString("63.00"),
		Total:       decimal.RequireFromString("413.00"),
		Status:      domain.QuotationStatusRevised,
		Revision:    1,
		IsDeleted:   true,
		DeletedAt:   &deletedAt,
		CreatedByID: owner.ID,
		CreatedBy:   owner,
	}
	q.ID = uuid.New()
	q.CreatedAt = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	q.UpdatedAt = q.CreatedAt

	history := []domain.QuotationStatusHistory{
		{Status: domain.QuotationStatusInProcess, ActorID: owner.ID, Actor: owner, At: q.CreatedAt},
		{
			Status:         domain.QuotationStatusRevised,
			Revision:       1,
			ActorID:        owner.ID,
			ActorName:      "Alice",
			ChangedFields:  datatypes.JSONSlice[string]{"notes"},
			BeforeSnapshot: datatypes.JSON(`{"notes":""}`),
			AfterSnapshot:  datatypes.JSON(`{"notes":"x"}`),
			At:             q.CreatedAt.Add(time.Hour),
		},
	}

	dto := ToQuotationDTO(q, history)

	assert.Equal(t, "QES/QT/OCT26/001", dto.Number)
	assert.Equal(t, "2026-10-01T09:00:00.000Z", dto.CreatedAt)
	require.NotNil(t, dto.DeletedAt)
	assert.Equal(t, "2026-10-16T07:00:00.000Z", *dto.DeletedAt)
	assert.Equal(t, "Alice", dto.CreatedBy.Name)

	require.Len(t, dto.Items, 1)
	assert.NotNil(t, dto.Items[0].Parameters)
	assert.NotNil(t, dto.Items[0].GeneralSpecifications)

	require.Len(t, dto.StatusHistory, 2)
	assert.Nil(t, dto.StatusHistory[0].Snapshot)
	assert.Equal(t, []string{}, dto.StatusHistory[0].ChangedFields)
	require.NotNil(t, dto.StatusHistory[1].Snapshot)
	assert.JSONEq(t, `{"notes":"x"}`, string(dto.StatusHistory[1].Snapshot.After))
	assert.Equal(t, "Alice", dto.StatusHistory[1].UpdatedBy.Name, "actor name is used when the user row is missing")

	data, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total":"413"`)
	assert.Contains(t, string(data), `"quotationNumber":"QES/QT/OCT26/001"`)
}

func TestToStatusHistoryDTO_OneSidedSnapshot(t *testing.T) {
	dto := ToStatusHistoryDTO(&domain.QuotationStatusHistory{
		Status:        domain.QuotationStatusInProcess,
		ActorID:       uuid.New(),
		AfterSnapshot: datatypes.JSON(`{"total":"413"}`),
	})

	require.NotNil(t, dto.Snapshot)
	assert.Equal(t, "null", string(dto.Snapshot.Before))
}

func TestToQuotationSummaryDTO(t *testing.T) {
	q := &domain.Quotation{Number: "QES/QT/OCT26/002", Total: decimal.RequireFromString("826"), CreatedByID: uuid.New()}

	dto := ToQuotationSummaryDTO(q)

	assert.Equal(t, q.CreatedByID, dto.CreatedBy.ID)
	assert.Nil(t, dto.DeletedAt)
	assert.Equal(t, "826", dto.Total.String())
}

func TestFormatError(t *testing.T) {
	cause := errors.New("boom")
	err := FormatError("quotation", "update", cause)
	assert.EqualError(t, err, "failed to update quotation: boom")
	assert.ErrorIs(t, err, cause)
}
