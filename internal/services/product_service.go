package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ecoms/internal/models"
	"ecoms/internal/repositories"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	maxPageSize      = 100
	maxPageOffset    = math.MaxInt32
	defaultSortField = "id"
	minNameLength    = 2
)

var minPrice = decimal.New(1, -2)

// PageRequest selects one sorted page of a listing.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// CreateProductInput holds the fields of a new product.
type CreateProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	Category string
}

// UpdateProductInput is a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name     *string
	Price    *decimal.Decimal
	Stock    *int
	Category *string
	IsActive *bool
}

// ProductService handles business logic related to products.
type ProductService struct {
	store repositories.Store
	now   func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(store repositories.Store) *ProductService {
	return &ProductService{
		store: store,
		now:   time.Now,
	}
}

// GetAllProducts returns one page of the catalog. An empty page is not an error.
func (s *ProductService) GetAllProducts(ctx context.Context, page PageRequest) (models.Page[models.Product], error) {
	return s.list(ctx, repositories.ProductQuery{}, page)
}

// SearchProducts pages the products whose name and category contain the given
// case-insensitive fragments. Blank fragments do not filter.
func (s *ProductService) SearchProducts(ctx context.Context, name, category string, page PageRequest) (models.Page[models.Product], error) {
	query := repositories.ProductQuery{
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
	}
	return s.list(ctx, query, page)
}

func (s *ProductService) list(ctx context.Context, query repositories.ProductQuery, page PageRequest) (models.Page[models.Product], error) {
	if err := validatePage(&page); err != nil {
		return models.Page[models.Product]{}, err
	}
	query.Page = page.Page
	query.Size = page.Size
	query.SortBy = page.SortBy
	query.Desc = strings.EqualFold(page.SortDir, "desc")

	products, total, err := s.store.Products().List(ctx, query)
	if err != nil {
		return models.Page[models.Product]{}, err
	}
	return models.NewPage(products, page.Page, page.Size, total), nil
}

func validatePage(page *PageRequest) error {
	if page.Page < 0 {
		return fmt.Errorf("%w: page number cannot be negative", ErrInvalidOrderOperation)
	}
	if page.Size <= 0 || page.Size > maxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidOrderOperation, maxPageSize)
	}
	if page.Page > maxPageOffset/page.Size {
		return fmt.Errorf("%w: page number is too large", ErrInvalidOrderOperation)
	}
	if page.SortBy == "" {
		page.SortBy = defaultSortField
	}
	if !repositories.IsSortableProductField(page.SortBy) {
		return fmt.Errorf("%w: cannot sort products by %q", ErrInvalidOrderOperation, page.SortBy)
	}
	return nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, productLookupError(id, err)
	}
	return product, nil
}

// CreateProduct validates and stores a new, active product.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validateProductName(input.Name); err != nil {
		return nil, err
	}
	if err := validateProductPrice(input.Price); err != nil {
		return nil, err
	}
	if err := validateProductStock(input.Stock); err != nil {
		return nil, err
	}

	now := s.now()
	product := &models.Product{
		Name:      strings.TrimSpace(input.Name),
		Price:     input.Price,
		Stock:     input.Stock,
		Category:  strings.TrimSpace(input.Category),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the provided fields to an existing product.
// Blank name or category values are ignored. Only the supplied columns are
// written, and the row stays locked until they are.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error) {
	if err := validateProductUpdate(input); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		product, err := tx.Products().GetByIDForUpdate(ctx, id)
		if err != nil {
			return productLookupError(id, err)
		}

		columns := make([]string, 0, 5)
		if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
			product.Name = strings.TrimSpace(*input.Name)
			columns = append(columns, repositories.ProductColumnName)
		}
		if input.Price != nil {
			product.Price = *input.Price
			columns = append(columns, repositories.ProductColumnPrice)
		}
		if input.Stock != nil {
			product.Stock = *input.Stock
			columns = append(columns, repositories.ProductColumnStock)
		}
		if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
			product.Category = strings.TrimSpace(*input.Category)
			columns = append(columns, repositories.ProductColumnCategory)
		}
		if input.IsActive != nil {
			if !*input.IsActive && product.Stock > 0 {
				log.WithFields(log.Fields{
					"product_id": product.ID,
					"stock":      product.Stock,
				}).Warn("deactivating product that still has stock")
			}
			product.IsActive = *input.IsActive
			columns = append(columns, repositories.ProductColumnIsActive)
		}
		if len(columns) == 0 {
			updated = product
			return nil
		}

		product.UpdatedAt = s.now()
		if err := tx.Products().Update(ctx, product, columns...); err != nil {
			return productLookupError(id, err)
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func validateProductUpdate(input UpdateProductInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		if err := validateProductName(*input.Name); err != nil {
			return err
		}
	}
	if input.Price != nil {
		if err := validateProductPrice(*input.Price); err != nil {
			return err
		}
	}
	if input.Stock != nil {
		if err := validateProductStock(*input.Stock); err != nil {
			return err
		}
	}
	return nil
}

// DeleteProduct deactivates a product. The row is kept; products that still
// have stock cannot be deleted.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	return s.store.WithinTx(ctx, func(tx repositories.Store) error {
		product, err := tx.Products().GetByIDForUpdate(ctx, id)
		if err != nil {
			return productLookupError(id, err)
		}
		if product.Stock > 0 {
			return fmt.Errorf("%w: cannot delete product with stock. current stock: %d", ErrInvalidOrderOperation, product.Stock)
		}

		err = tx.Products().Deactivate(ctx, id, s.now())
		switch {
		case errors.Is(err, repositories.ErrStockConflict):
			return fmt.Errorf("%w: cannot delete product with stock", ErrInvalidOrderOperation)
		case err != nil:
			return productLookupError(id, err)
		}
		return nil
	})
}

func validateProductName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: product name cannot be empty", ErrInvalidOrderOperation)
	}
	if len([]rune(trimmed)) < minNameLength {
		return fmt.Errorf("%w: product name must be at least %d characters", ErrInvalidOrderOperation, minNameLength)
	}
	return nil
}

func validateProductPrice(price decimal.Decimal) error {
	if price.LessThan(minPrice) {
		return fmt.Errorf("%w: product price must be at least %s", ErrInvalidOrderOperation, minPrice.StringFixed(2))
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: product price cannot have more than 2 decimal places", ErrInvalidOrderOperation)
	}
	return nil
}

func validateProductStock(stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: product stock cannot be negative", ErrInvalidOrderOperation)
	}
	return nil
}

func productLookupError(id uint, err error) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("%w with id: %d", ErrProductNotFound, id)
	}
	return err
}
