package cart

import (
	"context"
	"errors"

	"github.com/HassanTech1/4seven/internal/domain"
)

// Storage is the durable key-value slot a cart is persisted to.
// The store defines this interface, not the redis implementation.
type Storage interface {
	Load(ctx context.Context, cartID string) (domain.Snapshot, error)
	Save(ctx context.Context, cartID string, items domain.Snapshot) error
	Delete(ctx context.Context, cartID string) error
}

var ErrNotFound = errors.New("cart not found in storage")
