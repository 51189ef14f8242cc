package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. The primary key and article code are
// assigned by the upstream inventory system during feed imports.
type Product struct {
	ID         int64           `gorm:"column:id;primaryKey"`
	Title      string          `gorm:"column:title;not null"`
	Article    string          `gorm:"column:article;not null;index"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CategoryID int64           `gorm:"column:category_id;not null;index"`
	Warehouse1 int             `gorm:"column:warehouse1;not null;default:0"`
	Warehouse2 int             `gorm:"column:warehouse2;not null;default:0"`
	Display    bool            `gorm:"column:display;not null;default:true"`
	Image      *string         `gorm:"column:image"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Quantity returns the combined sellable stock across both warehouses.
func (p Product) Quantity() int {
	return p.Warehouse1 + p.Warehouse2
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Quantity() > 0
}
