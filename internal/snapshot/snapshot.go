// Package snapshot captures the commercial state of a quotation as a canonical
// value and fingerprints it. Two snapshots with the same fingerprint describe
// the same commercial content.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/qes/quotation-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Item is the canonical form of a quotation line
type Item struct {
	ProductID             string                        `json:"productId"`
	ProductName           string                        `json:"productName"`
	UnitOfMeasure         string                        `json:"unitOfMeasure"`
	Description           string                        `json:"description"`
	Quantity              int                           `json:"quantity"`
	Rate                  string                        `json:"rate"`
	Tax                   string                        `json:"tax"`
	Amount                string                        `json:"amount"`
	Parameters            []domain.ProductParameter     `json:"parameters"`
	GeneralSpecifications []domain.GeneralSpecification `json:"generalSpecifications"`
}

// Snapshot is every quotation field an update can change. Field order is
// fixed by the struct, which makes the JSON encoding canonical.
type Snapshot struct {
	CustomerID          string                    `json:"customerId"`
	CustomerName        string                    `json:"customerName"`
	CustomerEmail       string                    `json:"customerEmail"`
	CustomerPhone       string                    `json:"customerPhone"`
	CustomerAddress     string                    `json:"customerAddress"`
	CustomerCompanyName string                    `json:"customerCompanyName"`
	ShippingDetails     string                    `json:"shippingDetails"`
	Notes               string                    `json:"notes"`
	TermsAndConditions  domain.TermsAndConditions `json:"termsAndConditions"`
	Items               []Item                    `json:"items"`
	Subtotal            string                    `json:"subtotal"`
	Tax                 string                    `json:"tax"`
	Total               string                    `json:"total"`
	Hash                string                    `json:"hash,omitempty"`
}

// Build captures q without computing the fingerprint
func Build(q *domain.Quotation) Snapshot {
	s := Snapshot{
		CustomerName:        q.CustomerName,
		CustomerEmail:       q.CustomerEmail,
		CustomerPhone:       q.CustomerPhone,
		CustomerAddress:     q.CustomerAddress,
		CustomerCompanyName: q.CustomerCompanyName,
		ShippingDetails:     q.ShippingDetails,
		Notes:               q.Notes,
		TermsAndConditions:  q.Terms,
		Subtotal:            canonicalDecimal(q.Subtotal),
		Tax:                 canonicalDecimal(q.Tax),
		Total:               canonicalDecimal(q.Total),
	}
	if q.CustomerID != nil {
		s.CustomerID = q.CustomerID.String()
	}

	items := make([]domain.QuotationItem, len(q.Items))
	copy(items, q.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	s.Items = make([]Item, 0, len(items))
	for _, it := range items {
		params := []domain.ProductParameter(it.Parameters)
		if params == nil {
			params = []domain.ProductParameter{}
		}
		specs := []domain.GeneralSpecification(it.GeneralSpecifications)
		if specs == nil {
			specs = []domain.GeneralSpecification{}
		}
		s.Items = append(s.Items, Item{
			ProductID:             it.ProductID.String(),
			ProductName:           it.ProductName,
			UnitOfMeasure:         it.UnitOfMeasure,
			Description:           it.Description,
			Quantity:              it.Quantity,
			Rate:                  canonicalDecimal(it.Rate),
			Tax:                   canonicalDecimal(it.TaxRate),
			Amount:                canonicalDecimal(it.Amount),
			Parameters:            params,
			GeneralSpecifications: specs,
		})
	}
	return s
}

// Capture builds the snapshot of q and stamps its fingerprint
func Capture(q *domain.Quotation) (Snapshot, error) {
	s := Build(q)
	hash, err := Fingerprint(s)
	if err != nil {
		return Snapshot{}, err
	}
	s.Hash = hash
	return s, nil
}

// Fingerprint returns the lowercase hex SHA-256 of the canonical encoding.
// Any hash already stamped on s is ignored.
func Fingerprint(s Snapshot) (string, error) {
	s.Hash = ""
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Marshal encodes s for storage in a history record
func Marshal(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a stored snapshot
func Unmarshal(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// canonicalDecimal renders d without trailing zeros so 350, 350.0 and 350.00
// encode identically
func canonicalDecimal(d decimal.Decimal) string {
	return d.String()
}
