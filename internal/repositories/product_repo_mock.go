package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ecoms/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrRecordNotFound)
	}
	return &product, nil
}

// Create adds a new product, assigning the next ID when none is set.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
	}
	if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = *product
	return nil
}

// GetByIDForUpdate is GetByID; the mock store serializes transactions instead of locking rows.
func (r *MockProductRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	return r.GetByID(ctx, id)
}

// Update writes the named columns of an existing product, or every mutable
// column when none are named.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product, columns ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrRecordNotFound)
	}
	if len(columns) == 0 {
		columns = productMutableColumns
	}
	for _, column := range columns {
		switch column {
		case ProductColumnName:
			existing.Name = product.Name
		case ProductColumnPrice:
			existing.Price = product.Price
		case ProductColumnStock:
			existing.Stock = product.Stock
		case ProductColumnCategory:
			existing.Category = product.Category
		case ProductColumnIsActive:
			existing.IsActive = product.IsActive
		default:
			return fmt.Errorf("unknown product column %q", column)
		}
	}
	existing.UpdatedAt = product.UpdatedAt
	if existing.UpdatedAt.IsZero() {
		existing.UpdatedAt = time.Now()
	}
	r.products[product.ID] = existing
	*product = existing
	return nil
}

// Deactivate clears the active flag of a product whose stock is zero.
func (r *MockProductRepository) Deactivate(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %d: %w", id, ErrRecordNotFound)
	}
	if product.Stock > 0 {
		return fmt.Errorf("product %d: %w", id, ErrStockConflict)
	}
	product.IsActive = false
	product.UpdatedAt = at
	r.products[id] = product
	return nil
}

// DecrementStock lowers stock by qty if enough is available.
func (r *MockProductRepository) DecrementStock(_ context.Context, id uint, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.Stock < qty {
		return fmt.Errorf("product %d: %w", id, ErrStockConflict)
	}
	product.Stock -= qty
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}

// IncrementStock adds qty to a product's stock.
func (r *MockProductRepository) IncrementStock(_ context.Context, id uint, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %d: %w", id, ErrRecordNotFound)
	}
	product.Stock += qty
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}

// List filters, sorts and pages the stored products.
func (r *MockProductRepository) List(_ context.Context, query ProductQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	matched := make([]models.Product, 0, len(r.products))
	name, category := strings.ToLower(query.Name), strings.ToLower(query.Category)
	for _, p := range r.products {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(p.Category), category) {
			continue
		}
		matched = append(matched, p)
	}
	r.mu.RUnlock()

	less := productLess(query.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		if query.Desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	total := int64(len(matched))
	start := query.Page * query.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func productLess(field string) func(a, b models.Product) bool {
	byID := func(a, b models.Product) bool { return a.ID < b.ID }
	switch field {
	case "name":
		return func(a, b models.Product) bool { return a.Name < b.Name || (a.Name == b.Name && byID(a, b)) }
	case "price":
		return func(a, b models.Product) bool {
			c := a.Price.Cmp(b.Price)
			return c < 0 || (c == 0 && byID(a, b))
		}
	case "stock":
		return func(a, b models.Product) bool { return a.Stock < b.Stock || (a.Stock == b.Stock && byID(a, b)) }
	case "category":
		return func(a, b models.Product) bool {
			return a.Category < b.Category || (a.Category == b.Category && byID(a, b))
		}
	case "isActive":
		return func(a, b models.Product) bool { return (!a.IsActive && b.IsActive) || (a.IsActive == b.IsActive && byID(a, b)) }
	case "createdAt":
		return func(a, b models.Product) bool {
			return a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && byID(a, b))
		}
	default:
		return byID
	}
}

func (r *MockProductRepository) snapshot() map[uint]models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[uint]models.Product, len(r.products))
	for id, p := range r.products {
		snap[id] = p
	}
	return snap
}

func (r *MockProductRepository) restore(snap map[uint]models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = snap
}
