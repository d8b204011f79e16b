package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/HassanTech1/4seven/internal/domain"
)

// Store owns the line items of a single cart. The in-memory state is
// authoritative for the session; the storage slot is written a full snapshot
// after every mutation, so a failed write is healed by the next one.
type Store struct {
	mu      sync.Mutex
	cartID  string
	items   []domain.LineItem
	visible bool
	storage Storage
}

// NewStore loads the persisted cart once. A missing slot yields an empty
// cart; a read failure degrades to in-memory-only operation.
func NewStore(ctx context.Context, cartID string, storage Storage) *Store {
	s := &Store{cartID: cartID, storage: storage}

	items, err := storage.Load(ctx, cartID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("cart storage load error: %v", err)
	}
	s.items = items

	return s
}

func (s *Store) ID() string {
	return s.cartID
}

// AddItem merges on the (productID, size) key: an existing line's quantity is
// incremented, otherwise the item is appended. Adding makes the cart visible.
func (s *Store) AddItem(ctx context.Context, item domain.LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.find(item.Key()); ok {
		s.items[i].Quantity += item.Quantity
	} else {
		s.items = append(s.items, item)
	}
	s.visible = true
	s.persist(ctx)
}

// RemoveItem deletes the matching line item. A missing item is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int64, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.find(domain.ItemKey{ProductID: productID, Size: size})
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist(ctx)
}

// SetQuantity overwrites a line's quantity. Below 1 it removes the line;
// a quantity of zero is never persisted. A missing item is a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID int64, size string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(ctx, productID, size)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.find(domain.ItemKey{ProductID: productID, Size: size})
	if !ok {
		return
	}
	s.items[i].Quantity = quantity
	s.persist(ctx)
}

// Clear empties the cart and drops the storage slot. Called only after a
// confirmed payment.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.storage.Delete(ctx, s.cartID); err != nil {
		log.Printf("cart storage delete error: %v", err)
	}
	return nil
}

// Items returns an immutable copy of the line items in insertion order.
func (s *Store) Items() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(domain.Snapshot, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

func (s *Store) Subtotal() decimal.Decimal {
	return s.Items().Subtotal()
}

func (s *Store) Count() int {
	return s.Items().Count()
}

func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Store) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

// find expects s.mu to be held.
func (s *Store) find(key domain.ItemKey) (int, bool) {
	for i, li := range s.items {
		if li.Key() == key {
			return i, true
		}
	}
	return -1, false
}

// persist writes the full snapshot. Failures are logged, never surfaced:
// the in-memory cart stays authoritative and the next mutation rewrites
// the whole slot. Expects s.mu to be held.
func (s *Store) persist(ctx context.Context) {
	snapshot := make(domain.Snapshot, len(s.items))
	copy(snapshot, s.items)

	if err := s.storage.Save(ctx, s.cartID, snapshot); err != nil {
		log.Printf("cart storage save error: %v", err)
	}
}
