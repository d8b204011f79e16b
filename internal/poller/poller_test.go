package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HassanTech1/4seven/internal/domain"
)

type mockStatusClient struct {
	m       sync.Mutex
	answers []statusAnswer
	calls   int
	onCall  func(call int)
}

type statusAnswer struct {
	status *domain.PaymentStatus
	err    error
}

func (c *mockStatusClient) Status(context.Context, string) (*domain.PaymentStatus, error) {
	c.m.Lock()
	call := c.calls
	c.calls++
	hook := c.onCall
	c.m.Unlock()

	if hook != nil {
		hook(call + 1)
	}

	answer := c.answers[len(c.answers)-1]
	if call < len(c.answers) {
		answer = c.answers[call]
	}
	return answer.status, answer.err
}

func (c *mockStatusClient) callCount() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.calls
}

type mockClearer struct {
	m      sync.Mutex
	clears int
}

func (c *mockClearer) Clear(context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.clears++
	return nil
}

type mockSyncer struct {
	m     sync.Mutex
	calls []string
	err   error
}

func (s *mockSyncer) SyncStatus(_ context.Context, _, status, paymentStatus string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.calls = append(s.calls, status+"/"+paymentStatus)
	return s.err
}

type mockPublisher struct {
	m        sync.Mutex
	sessions []string
	err      error
}

func (p *mockPublisher) PublishConfirmed(_ context.Context, sessionID string, _ *domain.PaymentStatus) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.sessions = append(p.sessions, sessionID)
	return p.err
}

func unpaid() statusAnswer {
	return statusAnswer{status: &domain.PaymentStatus{Status: domain.SessionOpen, PaymentStatus: domain.PaymentUnpaid}}
}

func paid() statusAnswer {
	return statusAnswer{status: &domain.PaymentStatus{
		Status:        domain.SessionComplete,
		PaymentStatus: domain.PaymentPaid,
		AmountTotal:   23000,
		Currency:      "sar",
	}}
}

func expired() statusAnswer {
	return statusAnswer{status: &domain.PaymentStatus{Status: domain.SessionExpired, PaymentStatus: domain.PaymentUnpaid}}
}

func newTestPoller(client *mockStatusClient, cart *mockClearer, orders *mockSyncer, pub *mockPublisher) *Poller {
	var (
		syncer    OrderSyncer
		publisher ConfirmedPublisher
	)
	if orders != nil {
		syncer = orders
	}
	if pub != nil {
		publisher = pub
	}
	p := New(client, cart, syncer, publisher)
	p.interval = time.Millisecond
	return p
}

func TestConfirm_MissingSessionID(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{paid()}}
	cart := &mockClearer{}
	sut := newTestPoller(client, cart, nil, nil)

	outcome, err := sut.Confirm(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationError, outcome.State)
	// The defined error path issues no query and touches nothing.
	assert.Zero(t, client.callCount())
	assert.Zero(t, cart.clears)
}

func TestConfirm_PaidOnFirstAttempt(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{paid()}}
	cart := &mockClearer{}
	sut := newTestPoller(client, cart, nil, nil)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationSuccess, outcome.State)
	assert.Equal(t, 1, outcome.Attempts)
	require.NotNil(t, outcome.Status)
	assert.Equal(t, int64(23000), outcome.Status.AmountTotal)
	assert.Equal(t, 1, cart.clears)
}

func TestConfirm_PaidOnFinalAttempt(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{
		unpaid(), unpaid(), unpaid(), unpaid(), paid(),
	}}
	cart := &mockClearer{}
	pub := &mockPublisher{}
	sut := newTestPoller(client, cart, nil, pub)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationSuccess, outcome.State)
	assert.Equal(t, 5, outcome.Attempts)
	assert.Equal(t, 5, client.callCount())
	assert.Equal(t, 1, cart.clears)
	assert.Equal(t, []string{"cs_1"}, pub.sessions)
}

func TestConfirm_TimeoutAfterBudgetExhausted(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{unpaid()}}
	cart := &mockClearer{}
	sut := newTestPoller(client, cart, nil, nil)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationTimeout, outcome.State)
	assert.Equal(t, 5, outcome.Attempts)
	assert.Equal(t, 5, client.callCount())
	assert.Zero(t, cart.clears)
}

func TestConfirm_ExpiredSessionIsTerminal(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{unpaid(), expired()}}
	cart := &mockClearer{}
	sut := newTestPoller(client, cart, nil, nil)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationExpired, outcome.State)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Zero(t, cart.clears)
}

func TestConfirm_TransportErrorIsTerminal(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{
		{err: errors.New("connection refused")},
	}}
	cart := &mockClearer{}
	sut := newTestPoller(client, cart, nil, nil)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationError, outcome.State)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, client.callCount())
	assert.Zero(t, cart.clears)
}

func TestConfirm_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &mockStatusClient{
		answers: []statusAnswer{unpaid()},
		onCall: func(call int) {
			if call == 1 {
				cancel()
			}
		},
	}
	cart := &mockClearer{}
	sut := newTestPoller(client, cart, nil, nil)
	sut.interval = time.Minute

	_, err := sut.Confirm(ctx, "cs_1")

	// The scheduled attempt never fires once the context is gone.
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, client.callCount())
	assert.Zero(t, cart.clears)
}

func TestConfirm_SyncsOrderStatusEveryAttempt(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{unpaid(), unpaid(), paid()}}
	syncer := &mockSyncer{}
	sut := newTestPoller(client, &mockClearer{}, syncer, nil)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationSuccess, outcome.State)
	assert.Equal(t, []string{"open/unpaid", "open/unpaid", "complete/paid"}, syncer.calls)
}

func TestConfirm_SyncFailureDoesNotStopPolling(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{unpaid(), paid()}}
	syncer := &mockSyncer{err: errors.New("mongo down")}
	cart := &mockClearer{}
	sut := newTestPoller(client, cart, syncer, nil)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationSuccess, outcome.State)
	assert.Equal(t, 1, cart.clears)
}

func TestConfirm_PublishFailureDoesNotFailSuccess(t *testing.T) {
	client := &mockStatusClient{answers: []statusAnswer{paid()}}
	cart := &mockClearer{}
	pub := &mockPublisher{err: errors.New("kafka down")}
	sut := newTestPoller(client, cart, nil, pub)

	outcome, err := sut.Confirm(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmationSuccess, outcome.State)
	assert.Equal(t, 1, cart.clears)
}
