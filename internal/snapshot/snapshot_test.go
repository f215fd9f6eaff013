package snapshot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productID = uuid.MustParse("6f1c1a9e-2f55-4f53-9c1e-2a7d6b0d4f10")

func sampleQuotation() *domain.Quotation {
	return &domain.Quotation{
		Number:        "QT/OCT26/001",
		CustomerName:  "Acme Instruments",
		CustomerEmail: "buyer@acme.example",
		Notes:         "Urgent",
		Terms:         domain.DefaultTermsAndConditions(),
		Items: []domain.QuotationItem{
			{
				Position:    0,
				ProductID:   productID,
				ProductName: "Wind Sensor",
				Quantity:    1,
				Rate:        decimal.RequireFromString("350.00"),
				TaxRate:     decimal.RequireFromString("18.00"),
				Amount:      decimal.RequireFromString("350.00"),
			},
		},
		Subtotal: decimal.RequireFromString("350.00"),
		Tax:      decimal.RequireFromString("63.00"),
		Total:    decimal.RequireFromString("413.00"),
		Status:   domain.QuotationStatusInProcess,
	}
}

func TestCapture_StampsFingerprint(t *testing.T) {
	s, err := Capture(sampleQuotation())
	require.NoError(t, err)

	assert.Len(t, s.Hash, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", s.Hash)

	again, err := Fingerprint(s)
	require.NoError(t, err)
	assert.Equal(t, s.Hash, again, "a stamped hash does not feed into the fingerprint")
}

func TestFingerprint_DecimalScaleDoesNotMatter(t *testing.T) {
	a := sampleQuotation()
	b := sampleQuotation()
	b.Items[0].Rate = decimal.RequireFromString("350")
	b.Items[0].TaxRate = decimal.RequireFromString("18")
	b.Total = decimal.RequireFromString("413.0")

	sa, err := Capture(a)
	require.NoError(t, err)
	sb, err := Capture(b)
	require.NoError(t, err)

	assert.Equal(t, sa.Hash, sb.Hash)
	assert.Equal(t, "350", sa.Items[0].Rate)
	assert.Equal(t, "413", sb.Total)
}

func TestFingerprint_IgnoresNonCommercialFields(t *testing.T) {
	a := sampleQuotation()
	b := sampleQuotation()
	b.Status = domain.QuotationStatusRevised
	b.Revision = 4
	b.Number = "QT/NOV26/009"
	b.Items[0].ID = uuid.New()

	sa, err := Capture(a)
	require.NoError(t, err)
	sb, err := Capture(b)
	require.NoError(t, err)

	assert.Equal(t, sa.Hash, sb.Hash)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	base, err := Capture(sampleQuotation())
	require.NoError(t, err)

	mutations := map[string]func(q *domain.Quotation){
		"notes":    func(q *domain.Quotation) { q.Notes = "Not urgent" },
		"quantity": func(q *domain.Quotation) { q.Items[0].Quantity = 2 },
		"terms":    func(q *domain.Quotation) { q.Terms.Freight = "Included" },
		"customer": func(q *domain.Quotation) { id := uuid.New(); q.CustomerID = &id },
		"params": func(q *domain.Quotation) {
			q.Items[0].Parameters = []domain.ProductParameter{{Title: "Range", Specs: []domain.ProductSpec{{Label: "Max", Value: "60 m/s"}}}}
		},
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			q := sampleQuotation()
			mutate(q)
			s, err := Capture(q)
			require.NoError(t, err)
			assert.NotEqual(t, base.Hash, s.Hash)
		})
	}
}

func TestBuild_OrdersItemsByPosition(t *testing.T) {
	q := sampleQuotation()
	second := q.Items[0]
	second.Position = 1
	second.ProductName = "Data Logger"
	q.Items = []domain.QuotationItem{second, q.Items[0]}

	s := Build(q)

	require.Len(t, s.Items, 2)
	assert.Equal(t, "Wind Sensor", s.Items[0].ProductName)
	assert.Equal(t, "Data Logger", s.Items[1].ProductName)
	assert.Equal(t, "Data Logger", q.Items[0].ProductName, "input slice is left untouched")
}

func TestBuild_NilAndEmptyCollectionsMatch(t *testing.T) {
	a := sampleQuotation()
	b := sampleQuotation()
	b.Items[0].Parameters = []domain.ProductParameter{}
	b.Items[0].GeneralSpecifications = []domain.GeneralSpecification{}

	sa, err := Capture(a)
	require.NoError(t, err)
	sb, err := Capture(b)
	require.NoError(t, err)

	assert.Equal(t, sa.Hash, sb.Hash)
	assert.NotNil(t, sa.Items[0].Parameters)
}

func TestMarshalUnmarshal(t *testing.T) {
	s, err := Capture(sampleQuotation())
	require.NoError(t, err)

	data, err := Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total":"413"`)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)

	_, err = Unmarshal([]byte("{not json"))
	assert.Error(t, err)
}
