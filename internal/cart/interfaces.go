package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByToken(ctx context.Context, token string) (*models.Cart, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteByCustomerExcept(ctx context.Context, customerID, exceptCartID uuid.UUID) error
	SetCustomer(ctx context.Context, cartID, customerID uuid.UUID) error
	Delete(ctx context.Context, cartID uuid.UUID) error
	FindItem(ctx context.Context, cartID uuid.UUID, productID int64) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID uuid.UUID, productID int64) error
}

// ProductLoader resolves products for stock clamping and pricing.
type ProductLoader interface {
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
}
