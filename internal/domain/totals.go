package domain

import "github.com/shopspring/decimal"

// Totals is derived from a cart snapshot and an optional discount, never
// persisted independently of the inputs that produced it. The identity
// GrandTotal = Subtotal + Tax + Shipping - Discount holds in every view.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax"`
	ShippingAmount decimal.Decimal `json:"shipping"`
	DiscountAmount decimal.Decimal `json:"discount"`
	GrandTotal     decimal.Decimal `json:"total"`
}
