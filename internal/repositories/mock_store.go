package repositories

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store. Transactions run one at a time and
// a failed transaction restores the repositories to their prior contents.
type MockStore struct {
	txMu     sync.Mutex
	products *MockProductRepository
	orders   *MockOrderRepository
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		products: NewMockProductRepository(),
		orders:   NewMockOrderRepository(),
	}
}

// Products returns the in-memory product repository.
func (s *MockStore) Products() ProductRepository { return s.products }

// Orders returns the in-memory order repository.
func (s *MockStore) Orders() OrderRepository { return s.orders }

// WithinTx runs fn while holding the store-wide transaction lock.
func (s *MockStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	products := s.products.snapshot()
	orders := s.orders.snapshot()
	if err := fn(mockTx{s}); err != nil {
		s.products.restore(products)
		s.orders.restore(orders)
		return err
	}
	return nil
}

// mockTx is the Store handed to a running transaction; nested calls join it.
type mockTx struct {
	*MockStore
}

func (t mockTx) WithinTx(_ context.Context, fn func(tx Store) error) error {
	return fn(t)
}
