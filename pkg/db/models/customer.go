package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/as-electrica/storefront-backend/pkg/enums"
)

// Customer is a registered storefront account. Contact fields are kept in
// sync with the most recent checkout so repeat orders prefill correctly.
type Customer struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash     string    `gorm:"column:password_hash;not null"`
	FirstName        string    `gorm:"column:first_name;not null;default:''"`
	LastName         string    `gorm:"column:last_name;not null;default:''"`
	Phone            string    `gorm:"column:phone;not null;default:''"`
	Address          string    `gorm:"column:address;not null;default:''"`
	IsConfirmed      bool      `gorm:"column:is_confirmed;not null;default:false"`
	IsStaff          bool      `gorm:"column:is_staff;not null;default:false"`
	ConfirmationCode *string   `gorm:"column:confirmation_code;index"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Role maps the staff flag onto the token role claim.
func (c Customer) Role() enums.CustomerRole {
	if c.IsStaff {
		return enums.CustomerRoleStaff
	}
	return enums.CustomerRoleCustomer
}

// FullName joins the contact name fields for notification templates.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
