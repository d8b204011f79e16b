package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/HassanTech1/4seven/internal/cart"
	"github.com/HassanTech1/4seven/internal/domain"
	"github.com/HassanTech1/4seven/internal/pricing"
)

type CartHandler struct {
	registry *cart.Registry
	resolver pricing.Resolver
}

func NewCartHandler(registry *cart.Registry, resolver pricing.Resolver) *CartHandler {
	return &CartHandler{
		registry: registry,
		resolver: resolver,
	}
}

type AddItemRequestDTO struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type ApplyDiscountRequestDTO struct {
	Code string `json:"code"`
}

type CartResponseDTO struct {
	Items  domain.Snapshot  `json:"items"`
	Totals domain.Totals    `json:"totals"`
	Count  int              `json:"count"`
	Coupon *domain.Discount `json:"coupon,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := h.registry.Get(r.Context(), getCartID(r.Context()))
	respondJSON(w, http.StatusOK, cartView(store, nil))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Size == "" {
		respondError(w, http.StatusBadRequest, "invalid_size", "size is required")
		return
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	store := h.registry.Get(r.Context(), getCartID(r.Context()))
	store.AddItem(r.Context(), domain.LineItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Size:      req.Size,
		Quantity:  req.Quantity,
		ImageRef:  req.Image,
	})

	respondJSON(w, http.StatusCreated, cartView(store, nil))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Size == "" {
		respondError(w, http.StatusBadRequest, "invalid_size", "size is required")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	store := h.registry.Get(r.Context(), getCartID(r.Context()))
	store.SetQuantity(r.Context(), productID, req.Size, req.Quantity)

	respondJSON(w, http.StatusOK, cartView(store, nil))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	size := r.URL.Query().Get("size")
	if size == "" {
		respondError(w, http.StatusBadRequest, "invalid_size", "size query parameter is required")
		return
	}

	store := h.registry.Get(r.Context(), getCartID(r.Context()))
	store.RemoveItem(r.Context(), productID, size)

	respondJSON(w, http.StatusOK, cartView(store, nil))
}

// ApplyDiscount previews the cart totals with a discount code applied.
// Nothing is persisted; the code is resolved again at submission.
func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req ApplyDiscountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	disc, err := h.resolver.Resolve(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidDiscountCode) {
			respondError(w, http.StatusBadRequest, "invalid_discount_code", "invalid discount code")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "could not resolve discount code")
		return
	}

	store := h.registry.Get(r.Context(), getCartID(r.Context()))
	respondJSON(w, http.StatusOK, cartView(store, &disc))
}

func cartView(store *cart.Store, disc *domain.Discount) CartResponseDTO {
	items := store.Items()
	return CartResponseDTO{
		Items:  items,
		Totals: pricing.Calculate(items, disc),
		Count:  items.Count(),
		Coupon: disc,
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
