package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the catalog.
// Rows are never hard-deleted; deactivation flips IsActive.
type Product struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock     int             `json:"stock" gorm:"not null"`
	Category  string          `json:"category" gorm:"type:varchar(100);index"`
	IsActive  bool            `json:"isActive" gorm:"not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TableName pins the table name used by GORM.
func (Product) TableName() string { return "products" }
