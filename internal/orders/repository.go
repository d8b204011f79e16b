package orders

import (
	"context"
	"errors"

	"github.com/HassanTech1/4seven/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository stores the durable order records created at checkout
// submission and keeps them in step with processor-reported status.
type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	SyncStatus(ctx context.Context, sessionID, status, paymentStatus string) error
}
