package repositories

import (
	"context"
	"time"

	"ecoms/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	// GetByIDForUpdate reads the product and holds its row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes the named columns of product. With no columns named it
	// writes every mutable column.
	Update(ctx context.Context, product *models.Product, columns ...string) error
	// Deactivate clears the active flag only while the product has no stock.
	// It returns ErrStockConflict when stock is above zero.
	Deactivate(ctx context.Context, id uint, at time.Time) error
	// DecrementStock lowers stock by qty only if at least qty is available.
	// It returns ErrStockConflict when the condition does not hold.
	DecrementStock(ctx context.Context, id uint, qty int) error
	IncrementStock(ctx context.Context, id uint, qty int) error
	List(ctx context.Context, query ProductQuery) ([]models.Product, int64, error)
}

// ProductQuery filters and pages a product listing.
// Empty Name or Category means no filter on that field.
type ProductQuery struct {
	Name     string
	Category string
	Page     int
	Size     int
	SortBy   string
	Desc     bool
}

// productSortColumns maps the sortable JSON field names to their columns.
var productSortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"category":  "category",
	"isActive":  "is_active",
	"createdAt": "created_at",
}

// Mutable product columns, as accepted by ProductRepository.Update.
const (
	ProductColumnName     = "name"
	ProductColumnPrice    = "price"
	ProductColumnStock    = "stock"
	ProductColumnCategory = "category"
	ProductColumnIsActive = "is_active"
)

var productMutableColumns = []string{
	ProductColumnName,
	ProductColumnPrice,
	ProductColumnStock,
	ProductColumnCategory,
	ProductColumnIsActive,
}

// IsSortableProductField reports whether products can be ordered by field.
func IsSortableProductField(field string) bool {
	_, ok := productSortColumns[field]
	return ok
}
