package domain

import "github.com/shopspring/decimal"

// SessionRequest is the payload submitted to the payment processor when a
// checkout session is created.
type SessionRequest struct {
	OriginURL string
	Amount    decimal.Decimal
	Currency  string
	Metadata  map[string]string
}

// Session is the processor's answer: the identifier that survives the
// redirect boundary and the URL the client must navigate to.
type Session struct {
	ID          string
	RedirectURL string
}

// CheckoutSession ties a cart snapshot and address to a processor-issued
// session. Ephemeral, never persisted locally.
type CheckoutSession struct {
	SessionID string
	Items     Snapshot
	Address   ShippingAddress
	Discount  *Discount
	Totals    Totals
}
