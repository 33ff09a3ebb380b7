package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"ecoms/internal/models"
	"ecoms/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.AutoMigrate(db))
	return db
}

func seedProduct(t *testing.T, repo repositories.ProductRepository, name, category, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: category,
		IsActive: true,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestGORMProductRepository_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))

	p := seedProduct(t, repo, "Laptop", "Electronics", "1200.50", 10)
	assert.NotZero(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(got.Price))
	assert.True(t, got.IsActive)

	got.IsActive = false
	got.Stock = 0
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 0, got.Stock)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: 999, Name: "Ghost"}), repositories.ErrRecordNotFound)
}

func TestGORMProductRepository_UpdateWritesOnlyNamedColumns(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	p := seedProduct(t, repo, "Lamp", "Home", "10.00", 5)

	// A copy read before the stock moved
	stale, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DecrementStock(ctx, p.ID, 3))

	stale.Price = decimal.RequireFromString("12.00")
	stale.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, stale, repositories.ProductColumnPrice))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, "Lamp", got.Name)
	assert.True(t, decimal.RequireFromString("12.00").Equal(got.Price))
}

func TestGORMProductRepository_Deactivate(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	p := seedProduct(t, repo, "Lamp", "Home", "10.00", 1)
	at := time.Now()

	assert.ErrorIs(t, repo.Deactivate(ctx, p.ID, at), repositories.ErrStockConflict)
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 1))
	require.NoError(t, repo.Deactivate(ctx, p.ID, at))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestGORMProductRepository_ListMatchesWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	seedProduct(t, repo, "a_b", "Misc", "1.00", 1)
	seedProduct(t, repo, "axb", "Misc", "1.00", 1)
	seedProduct(t, repo, "50% off", "Sale_2024", "1.00", 1)
	seedProduct(t, repo, "500 off", "Sale-2024", "1.00", 1)

	tests := []struct {
		name  string
		query repositories.ProductQuery
		want  []string
	}{
		{"underscore in name", repositories.ProductQuery{Name: "a_b"}, []string{"a_b"}},
		{"percent in name", repositories.ProductQuery{Name: "50%"}, []string{"50% off"}},
		{"underscore in category", repositories.ProductQuery{Category: "sale_"}, []string{"50% off"}},
		{"backslash", repositories.ProductQuery{Name: `\`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.query.Size = 10
			tt.query.SortBy = "id"
			products, total, err := repo.List(ctx, tt.query)
			require.NoError(t, err)
			names := make([]string, 0, len(products))
			for _, p := range products {
				names = append(names, p.Name)
			}
			assert.Equal(t, int64(len(tt.want)), total)
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestGORMProductRepository_CreateKeepsInactiveFlag(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))

	p := &models.Product{Name: "Archived", Price: decimal.RequireFromString("5.00"), IsActive: false}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 0, got.Stock)
}

func TestGORMProductRepository_StockMovements(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	p := seedProduct(t, repo, "Mouse", "Accessories", "25.50", 5)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 5))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	err = repo.DecrementStock(ctx, p.ID, 1)
	assert.ErrorIs(t, err, repositories.ErrStockConflict)
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	require.NoError(t, repo.IncrementStock(ctx, p.ID, 3))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	assert.ErrorIs(t, repo.DecrementStock(ctx, 999, 1), repositories.ErrStockConflict)
	assert.ErrorIs(t, repo.IncrementStock(ctx, 999, 1), repositories.ErrRecordNotFound)
}

func TestGORMProductRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	seedProduct(t, repo, "Gaming Laptop", "Electronics", "1500.00", 3)
	seedProduct(t, repo, "Office Laptop", "Electronics", "700.00", 8)
	seedProduct(t, repo, "Laptop Sleeve", "Accessories", "19.99", 40)
	seedProduct(t, repo, "Desk Lamp", "Home", "35.00", 12)

	products, total, err := repo.List(ctx, repositories.ProductQuery{Page: 0, Size: 2, SortBy: "price"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Laptop Sleeve", products[0].Name)
	assert.Equal(t, "Desk Lamp", products[1].Name)

	products, total, err = repo.List(ctx, repositories.ProductQuery{Page: 1, Size: 2, SortBy: "price"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Office Laptop", products[0].Name)

	products, total, err = repo.List(ctx, repositories.ProductQuery{Name: "LAPTOP", Page: 0, Size: 10, SortBy: "stock", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, products, 3)
	assert.Equal(t, "Laptop Sleeve", products[0].Name)
	assert.Equal(t, "Gaming Laptop", products[2].Name)

	products, total, err = repo.List(ctx, repositories.ProductQuery{Name: "laptop", Category: "electro", Page: 0, Size: 10, SortBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Gaming Laptop", products[0].Name)

	products, total, err = repo.List(ctx, repositories.ProductQuery{Page: 5, Size: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, products)
}

func newTestOrder(email string, items ...models.OrderItem) *models.Order {
	now := time.Now().UTC().Truncate(time.Second)
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return &models.Order{
		CustomerEmail:   email,
		CustomerName:    "Jane Doe",
		CustomerPhone:   "+998901234567",
		DeliveryAddress: "12 Market Street",
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func orderItem(line int, productID uint, qty int, unit string) models.OrderItem {
	price := decimal.RequireFromString(unit)
	return models.OrderItem{
		LineNumber:  line,
		ProductID:   productID,
		ProductName: fmt.Sprintf("product-%d", productID),
		Quantity:    qty,
		UnitPrice:   price,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestGORMOrderRepository_CreateAndRead(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(newTestDB(t))

	first := newTestOrder("jane@example.com", orderItem(1, 7, 2, "10.00"), orderItem(2, 3, 1, "4.50"), orderItem(3, 9, 3, "1.25"))
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)
	second := newTestOrder("john@example.com", orderItem(1, 7, 1, "10.00"))
	require.NoError(t, repo.Create(ctx, second))
	third := newTestOrder("jane@example.com", orderItem(1, 3, 4, "4.50"))
	require.NoError(t, repo.Create(ctx, third))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	for i, item := range got.Items {
		assert.Equal(t, i+1, item.LineNumber)
		assert.Equal(t, first.ID, item.OrderID)
	}
	assert.Equal(t, uint(3), got.Items[1].ProductID)
	assert.Equal(t, "product-3", got.Items[1].ProductName)
	assert.True(t, decimal.RequireFromString("28.25").Equal(got.TotalAmount))
	assert.True(t, got.ItemsTotal().Equal(got.TotalAmount))
	assert.Equal(t, models.OrderStatusPending, got.Status)

	locked, err := repo.GetByIDForUpdate(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, locked.Items, 1)

	byEmail, err := repo.GetByCustomerEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 2)
	assert.Equal(t, first.ID, byEmail[0].ID)
	assert.Equal(t, third.ID, byEmail[1].ID)
	require.Len(t, byEmail[1].Items, 1)

	none, err := repo.GetByCustomerEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestGORMOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(newTestDB(t))
	order := newTestOrder("jane@example.com", orderItem(1, 1, 1, "10.00"))
	require.NoError(t, repo.Create(ctx, order))

	at := order.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed, at))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.True(t, at.Equal(got.UpdatedAt))
	assert.True(t, order.CreatedAt.Equal(got.CreatedAt))

	err = repo.UpdateStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled, at)
	assert.ErrorIs(t, err, repositories.ErrStatusConflict)
	got, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
}

func TestGORMOrderRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := repositories.NewGORMOrderRepository(db)
	order := newTestOrder("jane@example.com", orderItem(1, 1, 1, "10.00"), orderItem(2, 2, 2, "3.00"))
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err := repo.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.Delete(ctx, order.ID), repositories.ErrRecordNotFound)
}

func TestGORMStore_WithinTx(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewGORMStore(newTestDB(t))
	p := seedProduct(t, store.Products(), "Chair", "Furniture", "80.00", 4)
	errAbort := errors.New("abort")

	err := store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := tx.Products().DecrementStock(ctx, p.ID, 3); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, newTestOrder("jane@example.com", orderItem(1, p.ID, 3, "80.00"))); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
	orders, err := store.Orders().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	err = store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := tx.Products().DecrementStock(ctx, p.ID, 3); err != nil {
			return err
		}
		return tx.Orders().Create(ctx, newTestOrder("jane@example.com", orderItem(1, p.ID, 3, "80.00")))
	})
	require.NoError(t, err)

	got, err = store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
	orders, err = store.Orders().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 1)
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	user := &models.User{Username: "warehouse", Email: "warehouse@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	byName, err := repo.GetByUsername(ctx, "warehouse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "warehouse@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "warehouse", byID.Username)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}
