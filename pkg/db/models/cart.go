package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a working basket keyed by an opaque session token. Anonymous carts
// are reaped after their TTL; a customer holds at most one cart at a time.
type Cart struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionToken string     `gorm:"column:session_token;not null;uniqueIndex"`
	CustomerID   *uuid.UUID `gorm:"column:customer_id;type:uuid;index"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsAnonymous reports whether the cart has not been claimed by a customer.
func (c Cart) IsAnonymous() bool {
	return c.CustomerID == nil
}
