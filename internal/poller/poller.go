// Package poller confirms a payment after the processor redirects back.
// It is a client-confirms-only design: the poller infers the outcome solely
// from the processor's status endpoint and never marks an order paid itself.
package poller

import (
	"context"
	"log"
	"time"

	"github.com/HassanTech1/4seven/internal/domain"
)

const (
	maxAttempts  = 5
	pollInterval = 2 * time.Second
)

// StatusClient queries the processor for a session's payment status.
type StatusClient interface {
	Status(ctx context.Context, sessionID string) (*domain.PaymentStatus, error)
}

// CartClearer empties the cart. Invoked exactly once, on the success path.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// OrderSyncer mirrors the processor-reported status onto the order record.
type OrderSyncer interface {
	SyncStatus(ctx context.Context, sessionID, status, paymentStatus string) error
}

// ConfirmedPublisher announces a confirmed payment downstream.
type ConfirmedPublisher interface {
	PublishConfirmed(ctx context.Context, sessionID string, status *domain.PaymentStatus) error
}

// Outcome is the terminal result of a confirmation run.
type Outcome struct {
	State    domain.ConfirmationState
	Status   *domain.PaymentStatus // set on success
	Attempts int
}

type Poller struct {
	client StatusClient
	cart   CartClearer
	orders OrderSyncer        // optional
	pub    ConfirmedPublisher // optional

	attempts int
	interval time.Duration
}

func New(client StatusClient, cart CartClearer, orders OrderSyncer, pub ConfirmedPublisher) *Poller {
	return &Poller{
		client:   client,
		cart:     cart,
		orders:   orders,
		pub:      pub,
		attempts: maxAttempts,
		interval: pollInterval,
	}
}

// Confirm polls the processor until a terminal state is reached or the
// attempt budget is exhausted. At most one query is outstanding at a time;
// the next attempt is scheduled only after the previous one resolves.
// Cancelling ctx aborts any scheduled attempt before it fires and returns
// the context error.
//
// An absent sessionID is the defined error path: no query is issued.
func (p *Poller) Confirm(ctx context.Context, sessionID string) (Outcome, error) {
	if sessionID == "" {
		return Outcome{State: domain.ConfirmationError}, nil
	}

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{Attempts: attempt - 1}, err
		}

		status, err := p.client.Status(ctx, sessionID)
		if err != nil {
			// Transport errors are terminal: the user restarts checkout.
			log.Printf("payment status query error for session %s: %v", sessionID, err)
			return Outcome{State: domain.ConfirmationError, Attempts: attempt}, nil
		}

		p.syncOrder(ctx, sessionID, status)

		switch {
		case status.Paid():
			p.confirm(ctx, sessionID, status)
			return Outcome{State: domain.ConfirmationSuccess, Status: status, Attempts: attempt}, nil
		case status.Expired():
			return Outcome{State: domain.ConfirmationExpired, Attempts: attempt}, nil
		}

		if attempt < p.attempts {
			if err := p.wait(ctx); err != nil {
				return Outcome{Attempts: attempt}, err
			}
		}
	}

	return Outcome{State: domain.ConfirmationTimeout, Attempts: p.attempts}, nil
}

// confirm clears the cart and publishes the confirmed-order event. Both are
// side effects of an already-terminal success; failures are logged only.
func (p *Poller) confirm(ctx context.Context, sessionID string, status *domain.PaymentStatus) {
	if err := p.cart.Clear(ctx); err != nil {
		log.Printf("cart clear error after paid session %s: %v", sessionID, err)
	}
	if p.pub != nil {
		if err := p.pub.PublishConfirmed(ctx, sessionID, status); err != nil {
			log.Printf("confirmed-order publish error for session %s: %v", sessionID, err)
		}
	}
}

func (p *Poller) syncOrder(ctx context.Context, sessionID string, status *domain.PaymentStatus) {
	if p.orders == nil {
		return
	}
	if err := p.orders.SyncStatus(ctx, sessionID, status.Status, status.PaymentStatus); err != nil {
		log.Printf("order status sync error for session %s: %v", sessionID, err)
	}
}

func (p *Poller) wait(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
