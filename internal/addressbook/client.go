// Package addressbook is the HTTP client for the saved-address collaborator.
// All operations require the caller's bearer token.
package addressbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HassanTech1/4seven/internal/domain"
)

var ErrUnauthorized = errors.New("address book rejected the token")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type listResponseDTO struct {
	Addresses []domain.SavedAddress `json:"addresses"`
}

func (c *Client) List(ctx context.Context, token string) ([]domain.SavedAddress, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/addresses", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var dto listResponseDTO
	if err := c.send(req, token, &dto); err != nil {
		return nil, err
	}
	return dto.Addresses, nil
}

func (c *Client) Create(ctx context.Context, token string, rec domain.SavedAddress) (*domain.SavedAddress, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal address: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/addresses", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created domain.SavedAddress
	if err := c.send(req, token, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Delete(ctx context.Context, token, addressID string) error {
	url := fmt.Sprintf("%s/api/addresses/%s", c.baseURL, addressID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.send(req, token, nil)
}

func (c *Client) send(req *http.Request, token string, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("address book request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("address book error (%d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
