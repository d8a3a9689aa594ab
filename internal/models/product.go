package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item with its stock level.
// Stock is only decremented by invoice creation, under a row lock.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"size:255;not null;index" json:"name"`
	Description string `gorm:"size:500" json:"description,omitempty"`
	SKU         string `gorm:"column:sku;size:64;not null;uniqueIndex" json:"sku"`

	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`

	// Stock never goes below zero.
	Stock int `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	// MinStock is the reorder threshold.
	MinStock int `gorm:"not null;default:0" json:"min_stock"`
}

// RequiresRestock reports whether stock reached the reorder threshold.
func (p *Product) RequiresRestock() bool {
	return p.Stock <= p.MinStock
}
