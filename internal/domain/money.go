package domain

import "github.com/shopspring/decimal"

// Currency is the single currency the store trades in.
const Currency = "SAR"

// RoundMoney applies 2-digit currency rounding (round half up).
// Callers round once on a final sum, never per line.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
