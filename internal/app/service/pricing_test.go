package service

import (
	"testing"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func priced(base, adjustment string, qty int, itemType model.CartItemType) model.CartItem {
	return model.CartItem{
		Quantity: qty,
		ItemType: itemType,
		Variant: &model.ProductVariant{
			PriceAdjustment: decimal.RequireFromString(adjustment),
			Product:         &model.Product{BasePrice: decimal.RequireFromString(base)},
		},
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func TestComputeOrderTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    []model.CartItem
		subtotal string
		shipping string
		tax      string
		total    string
	}{
		{
			name:     "free shipping above threshold",
			items:    []model.CartItem{priced("1000", "0", 1, model.CartItemTypeCart)},
			subtotal: "1000",
			shipping: "0",
			tax:      "180.00",
			total:    "1180.00",
		},
		{
			name: "two lines",
			items: []model.CartItem{
				priced("300", "0", 1, model.CartItemTypeCart),
				priced("250", "0", 1, model.CartItemTypeCart),
			},
			subtotal: "550",
			shipping: "0",
			tax:      "99.00",
			total:    "649.00",
		},
		{
			name:     "exactly 500 pays shipping",
			items:    []model.CartItem{priced("250", "0", 2, model.CartItemTypeCart)},
			subtotal: "500",
			shipping: "50",
			tax:      "90.00",
			total:    "640.00",
		},
		{
			name:     "price adjustment applies per unit",
			items:    []model.CartItem{priced("199.50", "20.25", 2, model.CartItemTypeCart)},
			subtotal: "439.50",
			shipping: "50",
			tax:      "79.11",
			total:    "568.61",
		},
		{
			name: "save for later excluded",
			items: []model.CartItem{
				priced("100", "0", 1, model.CartItemTypeCart),
				priced("900", "0", 3, model.CartItemTypeSaveForLater),
			},
			subtotal: "100",
			shipping: "50",
			tax:      "18.00",
			total:    "168.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeOrderTotals(tt.items)

			assertDecimal(t, tt.subtotal, totals.Subtotal)
			assertDecimal(t, tt.shipping, totals.ShippingCost)
			assertDecimal(t, tt.tax, totals.TaxAmount)
			assertDecimal(t, "0", totals.DiscountAmount)
			assertDecimal(t, tt.total, totals.TotalAmount)

			expected := totals.Subtotal.Add(totals.ShippingCost).Add(totals.TaxAmount).Sub(totals.DiscountAmount)
			assert.True(t, expected.Equal(totals.TotalAmount))
		})
	}
}

func TestComputeOrderTotals_Empty(t *testing.T) {
	totals := ComputeOrderTotals(nil)
	assertDecimal(t, "0", totals.Subtotal)
	assertDecimal(t, "50", totals.ShippingCost)
}
