package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HassanTech1/4seven/internal/addressbook"
	"github.com/HassanTech1/4seven/internal/domain"
)

// AddressHandler proxies the address-book collaborator for authenticated
// callers; the bearer token is passed through unchanged.
type AddressHandler struct {
	client *addressbook.Client
}

func NewAddressHandler(client *addressbook.Client) *AddressHandler {
	return &AddressHandler{client: client}
}

type AddressListResponseDTO struct {
	Addresses []domain.SavedAddress `json:"addresses"`
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r)
	if !ok {
		return
	}

	addresses, err := h.client.List(r.Context(), token)
	if err != nil {
		handleAddressError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AddressListResponseDTO{Addresses: addresses})
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r)
	if !ok {
		return
	}

	var rec domain.SavedAddress
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if rec.FullName == "" || rec.Street == "" || rec.City == "" {
		respondError(w, http.StatusBadRequest, "invalid_address", "full_name, street and city are required")
		return
	}

	created, err := h.client.Create(r.Context(), token, rec)
	if err != nil {
		handleAddressError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token, ok := requireToken(w, r)
	if !ok {
		return
	}

	addressID := chi.URLParam(r, "address_id")
	if addressID == "" {
		respondError(w, http.StatusBadRequest, "invalid_address_id", "address id is required")
		return
	}

	if err := h.client.Delete(r.Context(), token, addressID); err != nil {
		handleAddressError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func requireToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := getAuthToken(r.Context())
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return "", false
	}
	return token, true
}

func handleAddressError(w http.ResponseWriter, err error) {
	if errors.Is(err, addressbook.ErrUnauthorized) {
		respondError(w, http.StatusUnauthorized, "unauthorized", "address book rejected the token")
		return
	}
	respondError(w, http.StatusBadGateway, "address_book_error", err.Error())
}
