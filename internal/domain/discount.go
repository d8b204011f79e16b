package domain

import "github.com/shopspring/decimal"

type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
)

// Discount is a resolved discount code. Value is a percentage for
// DiscountPercentage and a currency amount for DiscountFixedAmount.
type Discount struct {
	Code  string          `json:"code"`
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}
