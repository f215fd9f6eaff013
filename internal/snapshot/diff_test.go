package snapshot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestChangedFields(t *testing.T) {
	before := Build(sampleQuotation())

	t.Run("nothing changed", func(t *testing.T) {
		changed := ChangedFields(before, Build(sampleQuotation()))
		assert.NotNil(t, changed)
		assert.Empty(t, changed)
	})

	t.Run("hash is not a field", func(t *testing.T) {
		after := before
		after.Hash = "deadbeef"
		assert.Empty(t, ChangedFields(before, after))
	})

	t.Run("fixed order", func(t *testing.T) {
		q := sampleQuotation()
		q.Notes = "Call before delivery"
		q.CustomerName = "Acme Instruments Ltd"
		q.Items[0].Quantity = 2
		q.Subtotal = decimal.RequireFromString("700")

		changed := ChangedFields(before, Build(q))
		assert.Equal(t, []string{"items", "subtotal", "customerName", "notes"}, changed)
	})

	t.Run("terms", func(t *testing.T) {
		q := sampleQuotation()
		q.Terms.Warranty = "2 years"
		assert.Equal(t, []string{"termsAndConditions"}, ChangedFields(before, Build(q)))
	})
}
