package service

import (
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/shopspring/decimal"
)

var (
	freeShippingThreshold = decimal.NewFromInt(500)
	flatShippingCost      = decimal.NewFromInt(50)
	taxRate               = decimal.RequireFromString("0.18")
)

// OrderTotals is the pricing snapshot stored on an order.
type OrderTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// ComputeOrderTotals prices the cart-type lines of items. save_for_later lines
// are ignored. Variants must have their Product loaded.
//
// Shipping is free strictly above 500, tax is 18% of the subtotal and no
// discount is applied. All arithmetic is exact.
func ComputeOrderTotals(items []model.CartItem) OrderTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.ItemType != model.CartItemTypeCart || item.Variant == nil {
			continue
		}
		line := item.Variant.UnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	shipping := flatShippingCost
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)
	discount := decimal.Zero

	return OrderTotals{
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		TaxAmount:      tax,
		DiscountAmount: discount,
		TotalAmount:    subtotal.Add(shipping).Add(tax).Sub(discount),
	}
}
