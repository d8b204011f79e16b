package domain

import "time"

// Order lifecycle values, mirrored from the processor on every status sync.
const (
	OrderStatusPending          = "pending"
	OrderPaymentStatusInitiated = "initiated"
)

// Order is the durable record created when a checkout session is submitted.
// Its totals are copies of the Totals computed at submission time.
type Order struct {
	ID              string
	SessionID       string
	UserID          string
	Items           Snapshot
	ShippingAddress *ShippingAddress
	DiscountCode    string
	Totals          Totals
	Currency        string
	Status          string
	PaymentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
