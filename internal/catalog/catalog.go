// Package catalog resolves product identifiers to the canonical product data
// quotation lines are priced from.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product does not exist or is inactive
var ErrNotFound = errors.New("product not found")

// Product is the read-only view of a catalog entry
type Product struct {
	ID                    uuid.UUID
	Name                  string
	UnitOfMeasure         string
	Description           string
	Price                 decimal.Decimal
	TaxRate               decimal.Decimal
	Parameters            []domain.ProductParameter
	GeneralSpecifications []domain.GeneralSpecification
}

// Lookup resolves a product by id
type Lookup interface {
	Resolve(ctx context.Context, productID uuid.UUID) (*Product, error)
}
