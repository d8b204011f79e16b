package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/HassanTech1/4seven/internal/cart"
	"github.com/HassanTech1/4seven/internal/domain"
	"github.com/HassanTech1/4seven/internal/pricing"
)

type memStorage struct {
	m     sync.Mutex
	slots map[string]domain.Snapshot
}

func newMemStorage() *memStorage {
	return &memStorage{slots: make(map[string]domain.Snapshot)}
}

func (s *memStorage) Load(_ context.Context, cartID string) (domain.Snapshot, error) {
	s.m.Lock()
	defer s.m.Unlock()
	items, ok := s.slots[cartID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return items, nil
}

func (s *memStorage) Save(_ context.Context, cartID string, items domain.Snapshot) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.slots[cartID] = items
	return nil
}

func (s *memStorage) Delete(_ context.Context, cartID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.slots, cartID)
	return nil
}

func cartRouter() (*chi.Mux, *cart.Registry) {
	registry := cart.NewRegistry(newMemStorage())
	handler := NewCartHandler(registry, pricing.StaticResolver{})

	r := chi.NewRouter()
	r.Get("/", handler.GetCart)
	r.Post("/items", handler.AddItem)
	r.Put("/items/{product_id}", handler.UpdateQuantity)
	r.Delete("/items/{product_id}", handler.RemoveItem)
	r.Post("/discount", handler.ApplyDiscount)
	return r, registry
}

func withCartID(r *http.Request, cartID string) *http.Request {
	ctx := context.WithValue(r.Context(), cartIDKey, cartID)
	return r.WithContext(ctx)
}

func addItemBody(t *testing.T, quantity int) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(AddItemRequestDTO{
		ProductID: 1,
		Name:      "Shirt",
		Price:     decimal.RequireFromString("100.00"),
		Size:      "M",
		Quantity:  quantity,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func decodeCart(t *testing.T, recorder *httptest.ResponseRecorder) CartResponseDTO {
	t.Helper()
	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestGetCart_Empty(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("GET", "/", nil), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	response := decodeCart(t, recorder)
	if response.Count != 0 {
		t.Errorf("expected empty cart, got count %d", response.Count)
	}
}

func TestAddItem_Success(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", addItemBody(t, 2)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
	response := decodeCart(t, recorder)
	if len(response.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(response.Items))
	}
	if response.Count != 2 {
		t.Errorf("expected count 2, got %d", response.Count)
	}
	if !response.Totals.GrandTotal.Equal(decimal.RequireFromString("230.00")) {
		t.Errorf("expected total 230.00, got %s", response.Totals.GrandTotal)
	}
}

func TestAddItem_InvalidProductID(t *testing.T) {
	router, _ := cartRouter()

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 0, Size: "M", Quantity: 1})
	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", bytes.NewBuffer(body)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAddItem_MissingSize(t *testing.T) {
	router, _ := cartRouter()

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 1, Quantity: 1})
	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", bytes.NewBuffer(body)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAddItem_QuantityOutOfRange(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", addItemBody(t, 100)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestUpdateQuantity_Success(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", addItemBody(t, 2)), "cart1")
	router.ServeHTTP(recorder, request)

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Size: "M", Quantity: 5})
	recorder = httptest.NewRecorder()
	request = withCartID(httptest.NewRequest("PUT", "/items/1", bytes.NewBuffer(body)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	response := decodeCart(t, recorder)
	if response.Count != 5 {
		t.Errorf("expected count 5, got %d", response.Count)
	}
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", addItemBody(t, 2)), "cart1")
	router.ServeHTTP(recorder, request)

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Size: "M", Quantity: 0})
	recorder = httptest.NewRecorder()
	request = withCartID(httptest.NewRequest("PUT", "/items/1", bytes.NewBuffer(body)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if response := decodeCart(t, recorder); len(response.Items) != 0 {
		t.Errorf("expected empty cart, got %d line items", len(response.Items))
	}
}

func TestRemoveItem_Success(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", addItemBody(t, 2)), "cart1")
	router.ServeHTTP(recorder, request)

	recorder = httptest.NewRecorder()
	request = withCartID(httptest.NewRequest("DELETE", "/items/1?size=M", nil), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if response := decodeCart(t, recorder); len(response.Items) != 0 {
		t.Errorf("expected empty cart, got %d line items", len(response.Items))
	}
}

func TestRemoveItem_MissingSizeParam(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("DELETE", "/items/1", nil), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestApplyDiscount_ValidCodePreviewsTotals(t *testing.T) {
	router, _ := cartRouter()

	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/items", addItemBody(t, 2)), "cart1")
	router.ServeHTTP(recorder, request)

	body, _ := json.Marshal(ApplyDiscountRequestDTO{Code: "7777"})
	recorder = httptest.NewRecorder()
	request = withCartID(httptest.NewRequest("POST", "/discount", bytes.NewBuffer(body)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	response := decodeCart(t, recorder)
	if response.Coupon == nil || response.Coupon.Code != "7777" {
		t.Fatalf("expected coupon 7777 in response, got %+v", response.Coupon)
	}
	if !response.Totals.DiscountAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("expected discount 20.00, got %s", response.Totals.DiscountAmount)
	}
}

func TestApplyDiscount_InvalidCode(t *testing.T) {
	router, _ := cartRouter()

	body, _ := json.Marshal(ApplyDiscountRequestDTO{Code: "NOPE"})
	recorder := httptest.NewRecorder()
	request := withCartID(httptest.NewRequest("POST", "/discount", bytes.NewBuffer(body)), "cart1")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_discount_code" {
		t.Errorf("expected code invalid_discount_code, got %q", response.Code)
	}
}
