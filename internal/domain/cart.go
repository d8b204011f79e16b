package domain

import "github.com/shopspring/decimal"

// ItemKey identifies a line item within a cart.
// The same product in two sizes is two distinct lines.
type ItemKey struct {
	ProductID int64
	Size      string
}

type LineItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image,omitempty"`
}

func (li LineItem) Key() ItemKey {
	return ItemKey{ProductID: li.ProductID, Size: li.Size}
}

// LineTotal is the unrounded unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Snapshot is an immutable copy of a cart's line items, in insertion order.
type Snapshot []LineItem

// Subtotal sums all line totals and rounds once on the final sum.
func (s Snapshot) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range s {
		sum = sum.Add(li.LineTotal())
	}
	return RoundMoney(sum)
}

// Count is the sum of quantities, used for the cart badge.
func (s Snapshot) Count() int {
	n := 0
	for _, li := range s {
		n += li.Quantity
	}
	return n
}
