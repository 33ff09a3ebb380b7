package repositories

import "context"

// Store groups the repositories that take part in one order mutation.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository
	// WithinTx runs fn inside a transaction. Every write made through the Store
	// passed to fn commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
