package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecoms/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// GetByIDForUpdate retrieves a product and locks its row (SELECT ... FOR UPDATE).
func (r *GORMProductRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the given columns of an existing product, or every mutable
// column when none are given. updated_at is always written.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, columns ...string) error {
	if len(columns) == 0 {
		columns = productMutableColumns
	}
	selected := append([]string{"updated_at"}, columns...)
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select(selected).
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrRecordNotFound)
	}
	return nil
}

// Deactivate clears is_active in a single statement guarded by stock = 0.
func (r *GORMProductRepository) Deactivate(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock = 0", id).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrStockConflict)
	}
	return nil
}

// DecrementStock subtracts qty from stock in a single conditional statement,
// so two concurrent orders can never both take the last units.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id uint, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock of product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrStockConflict)
	}
	return nil
}

// IncrementStock adds qty back to a product's stock.
func (r *GORMProductRepository) IncrementStock(ctx context.Context, id uint, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to restore stock of product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, ErrRecordNotFound)
	}
	return nil
}

// List returns one page of products matching the query and the total match count.
func (r *GORMProductRepository) List(ctx context.Context, query ProductQuery) ([]models.Product, int64, error) {
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Product{})
		if query.Name != "" {
			tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(query.Name))
		}
		if query.Category != "" {
			tx = tx.Where(`LOWER(category) LIKE ? ESCAPE '\'`, containsPattern(query.Category))
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	column, ok := productSortColumns[query.SortBy]
	if !ok {
		column = "id"
	}
	var products []models.Product
	err := filtered().
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: query.Desc}).
		Offset(query.Page * query.Size).
		Limit(query.Size).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching fragment literally anywhere in a lowercased column.
func containsPattern(fragment string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
}
