package domain

// ConfirmationState is the state of the post-payment confirmation flow.
type ConfirmationState string

const (
	ConfirmationChecking   ConfirmationState = "checking"
	ConfirmationProcessing ConfirmationState = "processing"
	ConfirmationSuccess    ConfirmationState = "success"
	ConfirmationExpired    ConfirmationState = "expired"
	ConfirmationError      ConfirmationState = "error"
	ConfirmationTimeout    ConfirmationState = "timeout"
)

// IsTerminal reports whether no further automatic transition occurs.
func (s ConfirmationState) IsTerminal() bool {
	switch s {
	case ConfirmationSuccess, ConfirmationExpired, ConfirmationError, ConfirmationTimeout:
		return true
	}
	return false
}

// Processor-reported session and payment states.
const (
	SessionOpen     = "open"
	SessionComplete = "complete"
	SessionExpired  = "expired"

	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// OrderMetadata is the invoice metadata the processor echoes back with a
// completed session.
type OrderMetadata struct {
	OrderID         string `json:"order_id"`
	ShippingName    string `json:"shipping_name"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingRegion  string `json:"shipping_region"`
	ShippingPhone   string `json:"shipping_phone"`
	ItemsCount      string `json:"items_count"`
}

// PaymentStatus is one answer from the processor's status endpoint.
// AmountTotal is in minor currency units.
type PaymentStatus struct {
	Status        string        `json:"status"`
	PaymentStatus string        `json:"payment_status"`
	AmountTotal   int64         `json:"amount_total"`
	Currency      string        `json:"currency"`
	Metadata      OrderMetadata `json:"metadata"`
}

// Paid reports whether the processor confirmed the payment.
func (p PaymentStatus) Paid() bool {
	return p.PaymentStatus == PaymentPaid
}

// Expired reports whether the session can no longer be paid.
func (p PaymentStatus) Expired() bool {
	return p.Status == SessionExpired
}
