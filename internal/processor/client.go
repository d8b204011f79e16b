// Package processor is the HTTP client for the hosted payment processor.
// It implements the checkout gateway and the poller status-client contracts.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/HassanTech1/4seven/internal/domain"
)

// ErrUnavailable marks a transport-level failure or an open circuit; callers
// surface it as a retryable error.
var ErrUnavailable = errors.New("payment processor unavailable")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	createBreaker *gobreaker.CircuitBreaker[*domain.Session]
	statusBreaker *gobreaker.CircuitBreaker[*domain.PaymentStatus]
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		createBreaker: gobreaker.NewCircuitBreaker[*domain.Session](gobreaker.Settings{
			Name: "processor-create-session",
		}),
		statusBreaker: gobreaker.NewCircuitBreaker[*domain.PaymentStatus](gobreaker.Settings{
			Name: "processor-status",
		}),
	}
}

type createSessionDTO struct {
	Amount     string            `json:"amount"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type sessionResponseDTO struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type errorResponseDTO struct {
	Detail string `json:"detail"`
}

// CreateSession submits one session-creation request. The processor appends
// the session ID to the success URL on redirect-back.
func (c *Client) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	session, err := c.createBreaker.Execute(func() (*domain.Session, error) {
		body := createSessionDTO{
			Amount:     req.Amount.StringFixed(2),
			Currency:   req.Currency,
			SuccessURL: fmt.Sprintf("%s/checkout/success?session_id={CHECKOUT_SESSION_ID}", req.OriginURL),
			CancelURL:  fmt.Sprintf("%s/checkout/cancel", req.OriginURL),
			Metadata:   req.Metadata,
		}

		var dto sessionResponseDTO
		if err := c.do(ctx, http.MethodPost, "/checkout/sessions", body, &dto); err != nil {
			return nil, err
		}
		if dto.SessionID == "" || dto.URL == "" {
			return nil, fmt.Errorf("processor returned incomplete session")
		}

		return &domain.Session{ID: dto.SessionID, RedirectURL: dto.URL}, nil
	})
	if err != nil {
		return nil, breakerErr(err)
	}
	return session, nil
}

// Status queries the payment status of a session.
func (c *Client) Status(ctx context.Context, sessionID string) (*domain.PaymentStatus, error) {
	status, err := c.statusBreaker.Execute(func() (*domain.PaymentStatus, error) {
		var dto domain.PaymentStatus
		path := fmt.Sprintf("/checkout/sessions/%s", sessionID)
		if err := c.do(ctx, http.MethodGet, path, nil, &dto); err != nil {
			return nil, err
		}
		return &dto, nil
	})
	if err != nil {
		return nil, breakerErr(err)
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponseDTO
		if decodeErr := json.NewDecoder(resp.Body).Decode(&e); decodeErr == nil && e.Detail != "" {
			return fmt.Errorf("processor error (%d): %s", resp.StatusCode, e.Detail)
		}
		return fmt.Errorf("processor error (%d)", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// breakerErr folds open-circuit states into ErrUnavailable.
func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
