package repositories

import "errors"

var (
	// ErrRecordNotFound is returned when a row looked up by key does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrStockConflict is returned when a conditional stock decrement matched no row,
	// i.e. the product no longer has enough stock.
	ErrStockConflict = errors.New("stock lower than requested quantity")
	// ErrStatusConflict is returned when an order's status changed between read and write.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
