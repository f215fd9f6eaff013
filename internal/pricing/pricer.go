// Package pricing expands requested quotation lines into priced lines and totals.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/catalog"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidItem is returned for out-of-range quantities, rates or tax rates
var ErrInvalidItem = errors.New("invalid line item")

// MoneyPlaces is the scale of every stored monetary amount and rate
const MoneyPlaces = 2

const defaultConcurrency = 8

var (
	hundred = decimal.NewFromInt(100)
	maxTax  = decimal.NewFromInt(100)
)

// Line is a priced quotation line with the catalog data copied in
type Line struct {
	ProductID             uuid.UUID
	ProductName           string
	UnitOfMeasure         string
	Description           string
	Parameters            []domain.ProductParameter
	GeneralSpecifications []domain.GeneralSpecification
	Quantity              int
	Rate                  decimal.Decimal
	TaxRate               decimal.Decimal
	Amount                decimal.Decimal
}

// Result holds the priced lines in request order and their aggregates
type Result struct {
	Lines    []Line
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Pricer resolves products through a catalog lookup and prices lines
type Pricer struct {
	lookup      catalog.Lookup
	concurrency int
}

func NewPricer(lookup catalog.Lookup) *Pricer {
	return &Pricer{lookup: lookup, concurrency: defaultConcurrency}
}

// Price resolves every requested product and prices the lines. Products are
// resolved concurrently; if any one is missing the whole call fails and no
// partial result is returned.
func (p *Pricer) Price(ctx context.Context, reqs []domain.QuotationItemRequest) (*Result, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidItem)
	}
	for i, req := range reqs {
		if err := validateRequest(req); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	lines := make([]Line, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range reqs {
		i := i
		g.Go(func() error {
			product, err := p.lookup.Resolve(gctx, reqs[i].ProductID)
			if err != nil {
				return fmt.Errorf("item %d (product %s): %w", i, reqs[i].ProductID, err)
			}
			lines[i] = priceLine(reqs[i], product)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	subtotal, tax, total := Totals(lines)
	return &Result{Lines: lines, Subtotal: subtotal, Tax: tax, Total: total}, nil
}

func validateRequest(req domain.QuotationItemRequest) error {
	if req.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidItem)
	}
	if req.Rate != nil {
		if req.Rate.IsNegative() {
			return fmt.Errorf("%w: rate must not be negative", ErrInvalidItem)
		}
		if !fitsMoneyPlaces(*req.Rate) {
			return fmt.Errorf("%w: rate must have at most %d decimal places", ErrInvalidItem, MoneyPlaces)
		}
	}
	if req.Tax != nil {
		if req.Tax.IsNegative() || req.Tax.GreaterThan(maxTax) {
			return fmt.Errorf("%w: tax must be between 0 and 100", ErrInvalidItem)
		}
		if !fitsMoneyPlaces(*req.Tax) {
			return fmt.Errorf("%w: tax must have at most %d decimal places", ErrInvalidItem, MoneyPlaces)
		}
	}
	return nil
}

// fitsMoneyPlaces reports whether d is representable at the stored scale.
// Trailing zeros do not count, so 12.500 fits.
func fitsMoneyPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

func priceLine(req domain.QuotationItemRequest, product *catalog.Product) Line {
	// catalog values are rounded to the stored scale; overrides were
	// validated to fit it
	rate := product.Price.Round(MoneyPlaces)
	if req.Rate != nil {
		rate = *req.Rate
	}
	taxRate := product.TaxRate.Round(MoneyPlaces)
	if req.Tax != nil {
		taxRate = *req.Tax
	}

	params := product.Parameters
	if params == nil {
		params = []domain.ProductParameter{}
	}
	specs := product.GeneralSpecifications
	if specs == nil {
		specs = []domain.GeneralSpecification{}
	}

	return Line{
		ProductID:             product.ID,
		ProductName:           product.Name,
		UnitOfMeasure:         product.UnitOfMeasure,
		Description:           product.Description,
		Parameters:            params,
		GeneralSpecifications: specs,
		Quantity:              req.Quantity,
		Rate:                  rate,
		TaxRate:               taxRate,
		Amount:                rate.Mul(decimal.NewFromInt(int64(req.Quantity))),
	}
}

// Totals aggregates priced lines:
//
//	subtotal = sum(quantity * rate)
//	tax      = sum(quantity * rate * taxRate / 100), rounded to cents once
//	total    = subtotal + tax
func Totals(lines []Line) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	tax = decimal.Zero
	for _, line := range lines {
		amount := line.Rate.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(amount)
		tax = tax.Add(amount.Mul(line.TaxRate).Div(hundred))
	}
	tax = tax.Round(MoneyPlaces)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}
