package repositories

import (
	"context"

	"ecoms/internal/models"

	"gorm.io/gorm"
)

// GORMStore is a Store backed by a GORM connection.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Products returns a product repository bound to the store's connection or transaction.
func (s *GORMStore) Products() ProductRepository {
	return NewGORMProductRepository(s.db)
}

// Orders returns an order repository bound to the store's connection or transaction.
func (s *GORMStore) Orders() OrderRepository {
	return NewGORMOrderRepository(s.db)
}

// WithinTx runs fn in a database transaction.
func (s *GORMStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMStore{db: tx})
	})
}

// AutoMigrate creates or updates the tables for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.User{})
}
