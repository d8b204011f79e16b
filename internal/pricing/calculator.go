// Package pricing computes order totals. Calculate is pure and
// deterministic given a cart snapshot and a resolved discount, so the cart
// view, the checkout view and the invoice all derive the same numbers.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/HassanTech1/4seven/internal/domain"
)

var ErrInvalidDiscountCode = errors.New("invalid discount code")

// 15% VAT, flat rate. Shipping is free store-wide.
var (
	taxRate      = decimal.NewFromFloat(0.15)
	freeShipping = decimal.Zero
	oneHundred   = decimal.NewFromInt(100)
)

// Calculate derives totals from a snapshot and an optional discount.
// The discount deduction never exceeds subtotal plus tax, and the grand
// total never goes below zero.
func Calculate(items domain.Snapshot, disc *domain.Discount) domain.Totals {
	subtotal := items.Subtotal()
	tax := domain.RoundMoney(subtotal.Mul(taxRate))

	deduction := decimal.Zero
	if disc != nil {
		switch disc.Kind {
		case domain.DiscountPercentage:
			deduction = domain.RoundMoney(subtotal.Mul(disc.Value).Div(oneHundred))
		case domain.DiscountFixedAmount:
			deduction = disc.Value
		}
		if ceiling := subtotal.Add(tax); deduction.GreaterThan(ceiling) {
			deduction = ceiling
		}
	}

	grand := subtotal.Add(tax).Add(freeShipping).Sub(deduction)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return domain.Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingAmount: freeShipping,
		DiscountAmount: deduction,
		GrandTotal:     grand,
	}
}
