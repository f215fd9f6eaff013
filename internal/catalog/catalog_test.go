package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeStore struct {
	products map[uuid.UUID]*domain.Product
	err      error
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func TestDatabaseLookup_Resolve(t *testing.T) {
	active := &domain.Product{
		ProductName:   "Wind Sensor",
		Price:         decimal.RequireFromString("350.00"),
		Tax:           decimal.RequireFromString("18"),
		UnitOfMeasure: "Piece",
		Parameters: datatypes.JSONSlice[domain.ProductParameter]{
			{Title: "Range", Specs: []domain.ProductSpec{{Label: "Max", Value: "60 m/s"}}},
		},
		IsActive: true,
	}
	active.ID = uuid.New()
	retired := &domain.Product{ProductName: "Old Sensor", IsActive: false}
	retired.ID = uuid.New()

	lookup := NewDatabaseLookup(&fakeStore{products: map[uuid.UUID]*domain.Product{
		active.ID:  active,
		retired.ID: retired,
	}})
	ctx := context.Background()

	product, err := lookup.Resolve(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wind Sensor", product.Name)
	assert.Equal(t, "18", product.TaxRate.String())
	require.Len(t, product.Parameters, 1)
	assert.Equal(t, "Range", product.Parameters[0].Title)

	_, err = lookup.Resolve(ctx, retired.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lookup.Resolve(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatabaseLookup_StoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := NewDatabaseLookup(&fakeStore{err: boom})

	_, err := lookup.Resolve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

type fakeQuerier struct {
	rows      map[string]map[string]interface{}
	err       error
	lastQuery string
}

func (q *fakeQuerier) QueryRow(ctx context.Context, query string, args ...interface{}) (map[string]interface{}, error) {
	q.lastQuery = query
	if q.err != nil {
		return nil, q.err
	}
	return q.rows[args[0].(string)], nil
}

func TestNewWarehouseLookup_RejectsUnsafeTableNames(t *testing.T) {
	for _, table := range []string{"", "products; DROP TABLE x", "dbo.products --"} {
		_, err := NewWarehouseLookup(&fakeQuerier{}, table, zap.NewNop())
		assert.Error(t, err, table)
	}

	lookup, err := NewWarehouseLookup(&fakeQuerier{}, "[erp].[dbo].[Products]", zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, lookup.query, "FROM [erp].[dbo].[Products]")
}

func TestWarehouseLookup_Resolve(t *testing.T) {
	id := uuid.New()
	inactiveID := uuid.New()
	brokenID := uuid.New()

	querier := &fakeQuerier{rows: map[string]map[string]interface{}{
		id.String(): {
			"ProductId":             id.String(),
			"ProductName":           "Data Logger",
			"UnitOfMeasure":         []byte("Piece"),
			"Description":           nil,
			"Price":                 "1200.5000",
			"TaxRate":               "12.00",
			"Parameters":            `[{"title":"Channels","specs":[{"label":"Analog","value":"8"}]}]`,
			"GeneralSpecifications": nil,
			"IsActive":              true,
		},
		inactiveID.String(): {
			"ProductId": inactiveID.String(),
			"IsActive":  false,
		},
		brokenID.String(): {
			"ProductId": brokenID.String(),
			"Price":     "twelve",
			"IsActive":  true,
		},
	}}
	lookup, err := NewWarehouseLookup(querier, "dbo.Products", zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("converts row", func(t *testing.T) {
		product, err := lookup.Resolve(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, id, product.ID)
		assert.Equal(t, "Piece", product.UnitOfMeasure)
		assert.Equal(t, "", product.Description)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("1200.50")))
		assert.Equal(t, "12", product.TaxRate.String())
		require.Len(t, product.Parameters, 1)
		assert.Equal(t, "8", product.Parameters[0].Specs[0].Value)
		assert.NotNil(t, product.GeneralSpecifications)
	})

	t.Run("inactive", func(t *testing.T) {
		_, err := lookup.Resolve(ctx, inactiveID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := lookup.Resolve(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed price", func(t *testing.T) {
		_, err := lookup.Resolve(ctx, brokenID)
		assert.ErrorContains(t, err, "invalid Price")
	})

	t.Run("query failure", func(t *testing.T) {
		failing, err := NewWarehouseLookup(&fakeQuerier{err: errors.New("login failed")}, "dbo.Products", zap.NewNop())
		require.NoError(t, err)
		_, err = failing.Resolve(ctx, id)
		assert.ErrorContains(t, err, "login failed")
	})
}
