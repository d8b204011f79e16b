// Package checkout assembles a checkout session from the cart, the shipping
// address and an optional discount, and submits it to the payment processor.
package checkout

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/HassanTech1/4seven/internal/domain"
	"github.com/HassanTech1/4seven/internal/pricing"
)

// CartReader is the slice of the cart store the builder needs.
type CartReader interface {
	ID() string
	Items() domain.Snapshot
}

// PaymentGateway creates hosted checkout sessions at the external processor.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error)
}

// AddressSaver persists a shipping address to the address-book collaborator.
type AddressSaver interface {
	Create(ctx context.Context, token string, rec domain.SavedAddress) (*domain.SavedAddress, error)
}

// OrderRecorder stores the pending order created alongside a session.
type OrderRecorder interface {
	Insert(ctx context.Context, order *domain.Order) error
}

type SubmitRequest struct {
	OriginURL    string
	Address      domain.AddressInput
	DiscountCode string

	// SaveAddress persists the address before submission, best-effort,
	// only when AuthToken is set.
	SaveAddress bool
	AuthToken   string
	UserID      string
}

type SubmitResult struct {
	RedirectURL string
	SessionID   string
	OrderID     string
	Totals      domain.Totals
	Discount    *domain.Discount

	// DiscountDropped is set when the submitted code did not resolve;
	// the session was still created, without a deduction.
	DiscountDropped bool
}

type Builder struct {
	resolver  pricing.Resolver
	gateway   PaymentGateway
	addresses AddressSaver  // optional
	orders    OrderRecorder // optional
	sfg       singleflight.Group
}

func NewBuilder(resolver pricing.Resolver, gateway PaymentGateway, addresses AddressSaver, orders OrderRecorder) *Builder {
	return &Builder{
		resolver:  resolver,
		gateway:   gateway,
		addresses: addresses,
		orders:    orders,
	}
}

// Submit validates, prices and submits one session-creation call. Concurrent
// submits for the same cart coalesce onto the in-flight call, so one user
// action yields at most one session. A processor failure leaves no partial
// state and may be retried.
func (b *Builder) Submit(ctx context.Context, cart CartReader, req SubmitRequest) (*SubmitResult, error) {
	snapshot := cart.Items()
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	address := req.Address.Fields()
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	// An invalid code is dropped, reported, and never blocks submission.
	var disc *domain.Discount
	dropped := false
	if req.DiscountCode != "" {
		d, err := b.resolver.Resolve(ctx, req.DiscountCode)
		switch {
		case err == nil:
			disc = &d
		case errors.Is(err, pricing.ErrInvalidDiscountCode):
			dropped = true
		default:
			log.Printf("discount resolve error for %q: %v", req.DiscountCode, err)
			dropped = true
		}
	}

	totals := pricing.Calculate(snapshot, disc)

	if req.SaveAddress && req.AuthToken != "" && b.addresses != nil {
		b.saveAddress(ctx, req.AuthToken, address)
	}

	v, err, _ := b.sfg.Do(cart.ID(), func() (interface{}, error) {
		return b.submitSession(ctx, snapshot, address, disc, totals, req)
	})
	if err != nil {
		return nil, err
	}

	// Coalesced callers share the pointer; annotate a copy.
	result := *v.(*SubmitResult)
	result.DiscountDropped = dropped
	return &result, nil
}

func (b *Builder) submitSession(
	ctx context.Context,
	snapshot domain.Snapshot,
	address domain.ShippingAddress,
	disc *domain.Discount,
	totals domain.Totals,
	req SubmitRequest,
) (*SubmitResult, error) {

	metadata := map[string]string{
		"source":      "7777_store",
		"items_count": strconv.Itoa(len(snapshot)),
	}
	if req.UserID != "" {
		metadata["user_id"] = req.UserID
	}

	session, err := b.gateway.CreateSession(ctx, domain.SessionRequest{
		OriginURL: req.OriginURL,
		Amount:    totals.GrandTotal,
		Currency:  domain.Currency,
		Metadata:  metadata,
	})
	if err != nil {
		return nil, err
	}

	orderID := b.recordOrder(ctx, session.ID, snapshot, address, disc, totals, req.UserID)

	return &SubmitResult{
		RedirectURL: session.RedirectURL,
		SessionID:   session.ID,
		OrderID:     orderID,
		Totals:      totals,
		Discount:    disc,
	}, nil
}

// saveAddress is best-effort: a failure is logged and never blocks checkout.
func (b *Builder) saveAddress(ctx context.Context, token string, address domain.ShippingAddress) {
	rec := domain.SavedAddress{
		Title:      "Checkout Address",
		FullName:   address.FirstName + " " + address.LastName,
		Phone:      address.Phone,
		Street:     address.Street,
		City:       address.City,
		Region:     address.Region,
		PostalCode: address.PostalCode,
		IsDefault:  false,
	}
	if _, err := b.addresses.Create(ctx, token, rec); err != nil {
		log.Printf("address save error: %v", err)
	}
}

// recordOrder is best-effort: the redirect must not be blocked by
// record-keeping. Returns the order ID, empty when recording failed.
func (b *Builder) recordOrder(
	ctx context.Context,
	sessionID string,
	snapshot domain.Snapshot,
	address domain.ShippingAddress,
	disc *domain.Discount,
	totals domain.Totals,
	userID string,
) string {
	if b.orders == nil {
		return ""
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		UserID:          userID,
		Items:           snapshot,
		ShippingAddress: &address,
		Totals:          totals,
		Currency:        domain.Currency,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.OrderPaymentStatusInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if disc != nil {
		order.DiscountCode = disc.Code
	}

	if err := b.orders.Insert(ctx, order); err != nil {
		log.Printf("order record error for session %s: %v", sessionID, err)
		return ""
	}
	return order.ID
}

func validateAddress(a domain.ShippingAddress) error {
	required := []struct {
		field, value string
	}{
		{"email", a.Email},
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"address", a.Street},
		{"city", a.City},
		{"phone", a.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field}
		}
	}
	return nil
}
