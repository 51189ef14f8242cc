package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/as-electrica/storefront-backend/pkg/enums"
)

// Order is an immutable snapshot of a cart taken at checkout. Contact fields
// are copied from the checkout form, not referenced from the customer row, so
// later profile edits never rewrite order history.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Status     enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'new'"`
	FirstName  string            `gorm:"column:first_name;not null"`
	LastName   string            `gorm:"column:last_name;not null;default:''"`
	Email      string            `gorm:"column:email;not null"`
	Phone      string            `gorm:"column:phone;not null"`
	Address    string            `gorm:"column:address;not null;default:''"`
	Comment    string            `gorm:"column:comment;not null;default:''"`
	Total      decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Lines      []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
