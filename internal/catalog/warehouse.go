package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RowQuerier is satisfied by *datawarehouse.Client
type RowQuerier interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) (map[string]interface{}, error)
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\[\]]+$`)

// WarehouseLookup resolves products from the ERP product view in the data warehouse.
// Decimal and identifier columns are converted to text in SQL so the driver's
// native representations never leak into pricing.
type WarehouseLookup struct {
	querier RowQuerier
	query   string
	logger  *zap.Logger
}

func NewWarehouseLookup(querier RowQuerier, table string, logger *zap.Logger) (*WarehouseLookup, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid warehouse product table name %q", table)
	}
	query := fmt.Sprintf(`SELECT
	CONVERT(varchar(36), ProductId) AS ProductId,
	ProductName,
	UnitOfMeasure,
	Description,
	CONVERT(varchar(32), Price) AS Price,
	CONVERT(varchar(32), TaxRate) AS TaxRate,
	Parameters,
	GeneralSpecifications,
	IsActive
FROM %s
WHERE ProductId = @p1`, table)
	return &WarehouseLookup{querier: querier, query: query, logger: logger}, nil
}

func (l *WarehouseLookup) Resolve(ctx context.Context, productID uuid.UUID) (*Product, error) {
	row, err := l.querier.QueryRow(ctx, l.query, productID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouse product %s: %w", productID, err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	if active, ok := row["IsActive"].(bool); ok && !active {
		return nil, ErrNotFound
	}

	product, err := productFromRow(row)
	if err != nil {
		l.logger.Error("Malformed warehouse product row",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return product, nil
}

func productFromRow(row map[string]interface{}) (*Product, error) {
	id, err := uuid.Parse(asString(row["ProductId"]))
	if err != nil {
		return nil, fmt.Errorf("invalid ProductId: %w", err)
	}
	price, err := asDecimal(row["Price"])
	if err != nil {
		return nil, fmt.Errorf("invalid Price: %w", err)
	}
	taxRate, err := asDecimal(row["TaxRate"])
	if err != nil {
		return nil, fmt.Errorf("invalid TaxRate: %w", err)
	}

	product := &Product{
		ID:            id,
		Name:          asString(row["ProductName"]),
		UnitOfMeasure: asString(row["UnitOfMeasure"]),
		Description:   asString(row["Description"]),
		Price:         price,
		TaxRate:       taxRate,
	}
	if raw := asString(row["Parameters"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &product.Parameters); err != nil {
			return nil, fmt.Errorf("invalid Parameters: %w", err)
		}
	}
	if raw := asString(row["GeneralSpecifications"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &product.GeneralSpecifications); err != nil {
			return nil, fmt.Errorf("invalid GeneralSpecifications: %w", err)
		}
	}
	if product.Parameters == nil {
		product.Parameters = []domain.ProductParameter{}
	}
	if product.GeneralSpecifications == nil {
		product.GeneralSpecifications = []domain.GeneralSpecification{}
	}
	return product, nil
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func asDecimal(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	default:
		s := asString(t)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}
}
