package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"gorm.io/gorm"
)

// ProductStore is the subset of the product repository the lookup needs
type ProductStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// DatabaseLookup resolves products from the products table
type DatabaseLookup struct {
	store ProductStore
}

func NewDatabaseLookup(store ProductStore) *DatabaseLookup {
	return &DatabaseLookup{store: store}
}

func (l *DatabaseLookup) Resolve(ctx context.Context, productID uuid.UUID) (*Product, error) {
	product, err := l.store.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	if !product.IsActive {
		return nil, ErrNotFound
	}
	return &Product{
		ID:                    product.ID,
		Name:                  product.ProductName,
		UnitOfMeasure:         product.UnitOfMeasure,
		Description:           product.Description,
		Price:                 product.Price,
		TaxRate:               product.Tax,
		Parameters:            product.Parameters,
		GeneralSpecifications: product.GeneralSpecifications,
	}, nil
}
