package addressbook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HassanTech1/4seven/internal/domain"
)

func TestList_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/addresses", r.URL.Path)
		assert.Equal(t, "Bearer token1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(listResponseDTO{
			Addresses: []domain.SavedAddress{
				{ID: "addr1", Title: "Home", FullName: "Jo Smith", Street: "1 Main St", City: "Riyadh", IsDefault: true},
			},
		})
	}))
	defer srv.Close()

	sut := NewClient(srv.URL, 5*time.Second)
	addresses, err := sut.List(context.Background(), "token1")

	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "addr1", addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
}

func TestCreate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var rec domain.SavedAddress
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		rec.ID = "addr2"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	}))
	defer srv.Close()

	sut := NewClient(srv.URL, 5*time.Second)
	created, err := sut.Create(context.Background(), "token1", domain.SavedAddress{
		Title:    "Work",
		FullName: "Jo Smith",
		Street:   "2 Office Rd",
		City:     "Jeddah",
	})

	require.NoError(t, err)
	assert.Equal(t, "addr2", created.ID)
	assert.Equal(t, "Work", created.Title)
}

func TestDelete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/addresses/addr1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sut := NewClient(srv.URL, 5*time.Second)
	err := sut.Delete(context.Background(), "token1", "addr1")

	assert.NoError(t, err)
}

func TestSend_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sut := NewClient(srv.URL, 5*time.Second)
	_, err := sut.List(context.Background(), "badtoken")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sut := NewClient(srv.URL, 5*time.Second)
	_, err := sut.List(context.Background(), "token1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}
