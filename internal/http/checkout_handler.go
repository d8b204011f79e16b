package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HassanTech1/4seven/internal/cart"
	"github.com/HassanTech1/4seven/internal/checkout"
	"github.com/HassanTech1/4seven/internal/domain"
	"github.com/HassanTech1/4seven/internal/poller"
	"github.com/HassanTech1/4seven/internal/processor"
)

// AddressLister fetches the caller's saved addresses.
type AddressLister interface {
	List(ctx context.Context, token string) ([]domain.SavedAddress, error)
}

type CheckoutHandler struct {
	registry  *cart.Registry
	builder   *checkout.Builder
	status    poller.StatusClient
	addresses AddressLister             // optional
	orders    poller.OrderSyncer        // optional
	pub       poller.ConfirmedPublisher // optional
}

func NewCheckoutHandler(
	registry *cart.Registry,
	builder *checkout.Builder,
	status poller.StatusClient,
	addresses AddressLister,
	orders poller.OrderSyncer,
	pub poller.ConfirmedPublisher,
) *CheckoutHandler {
	return &CheckoutHandler{
		registry:  registry,
		builder:   builder,
		status:    status,
		addresses: addresses,
		orders:    orders,
		pub:       pub,
	}
}

type SubmitCheckoutRequestDTO struct {
	OriginURL       string                 `json:"origin_url"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	DiscountCode    string                 `json:"discount_code,omitempty"`
	SavedAddressID  string                 `json:"saved_address_id,omitempty"`
	SaveAddress     bool                   `json:"save_address,omitempty"`
}

type SubmitCheckoutResponseDTO struct {
	URL             string        `json:"url"`
	SessionID       string        `json:"session_id"`
	OrderID         string        `json:"order_id,omitempty"`
	Totals          domain.Totals `json:"totals"`
	DiscountDropped bool          `json:"discount_dropped,omitempty"`
}

type ConfirmResponseDTO struct {
	State    domain.ConfirmationState `json:"state"`
	Attempts int                      `json:"attempts"`
	Status   *domain.PaymentStatus    `json:"status,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OriginURL == "" {
		respondError(w, http.StatusBadRequest, "missing_origin_url", "origin_url is required")
		return
	}

	token := getAuthToken(r.Context())

	address, err := h.buildAddressInput(r.Context(), req, token)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_saved_address", err.Error())
		return
	}

	store := h.registry.Get(r.Context(), getCartID(r.Context()))
	result, err := h.builder.Submit(r.Context(), store, checkout.SubmitRequest{
		OriginURL:    req.OriginURL,
		Address:      address,
		DiscountCode: req.DiscountCode,
		SaveAddress:  req.SaveAddress,
		AuthToken:    token,
		UserID:       getUserID(r.Context()),
	})
	if err != nil {
		handleSubmitError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitCheckoutResponseDTO{
		URL:             result.RedirectURL,
		SessionID:       result.SessionID,
		OrderID:         result.OrderID,
		Totals:          result.Totals,
		DiscountDropped: result.DiscountDropped,
	})
}

// GET /api/v1/checkout/confirm?session_id=...
//
// Runs the confirmation poller to a terminal state. The request context is
// the cancellation token: a client disconnect aborts any scheduled attempt.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	store := h.registry.Get(r.Context(), getCartID(r.Context()))
	p := poller.New(h.status, store, h.orders, h.pub)

	outcome, err := p.Confirm(r.Context(), sessionID)
	if err != nil {
		// Cancelled mid-poll; the client is gone, nothing to answer.
		return
	}

	status := http.StatusOK
	if sessionID == "" {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, ConfirmResponseDTO{
		State:    outcome.State,
		Attempts: outcome.Attempts,
		Status:   outcome.Status,
	})
}

// buildAddressInput models the two address sources: a saved record selection
// overwrites the typed fields, otherwise the fields stand on their own.
func (h *CheckoutHandler) buildAddressInput(ctx context.Context, req SubmitCheckoutRequestDTO, token string) (domain.AddressInput, error) {
	input := domain.ManualAddress(req.ShippingAddress)
	if req.SavedAddressID == "" {
		return input, nil
	}
	if token == "" || h.addresses == nil {
		return input, errors.New("saved addresses require authentication")
	}

	records, err := h.addresses.List(ctx, token)
	if err != nil {
		return input, errors.New("could not load saved addresses")
	}
	for _, rec := range records {
		if rec.ID == req.SavedAddressID {
			input.SelectSaved(rec)
			return input, nil
		}
	}
	return input, errors.New("saved address not found")
}

func handleSubmitError(w http.ResponseWriter, err error) {
	var validation *checkout.ValidationError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, "validation_error", validation.Error())
	case errors.Is(err, processor.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "payment processor unavailable, please retry")
	default:
		respondError(w, http.StatusBadGateway, "session_creation_failed", err.Error())
	}
}
