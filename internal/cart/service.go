package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

const defaultAddQuantity = 1

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ItemResult reports the outcome of a cart line mutation.
type ItemResult struct {
	ProductID  int64
	Quantity   int
	AtCapacity bool
	OutOfStock bool
	Removed    bool
}

// Line is a cart line resolved against the live catalog.
type Line struct {
	Product   models.Product
	Quantity  int
	LineTotal decimal.Decimal
}

// Detail is a cart with live-priced lines and totals.
type Detail struct {
	Cart  models.Cart
	Lines []Line
	Total decimal.Decimal
}

// Service exposes basket operations keyed by the session token.
type Service interface {
	GetOrCreate(ctx context.Context, sessionToken string) (*models.Cart, error)
	AttachCustomer(ctx context.Context, sessionToken string, customerID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, sessionToken string, productID int64, requestedQty int) (*ItemResult, error)
	SetItemQty(ctx context.Context, sessionToken string, productID int64, quantity int) (*ItemResult, error)
	RemoveItem(ctx context.Context, sessionToken string, productID int64) error
	Detail(ctx context.Context, sessionToken string) (*Detail, error)
}

type service struct {
	repo         CartRepository
	products     ProductLoader
	tx           txRunner
	anonymousTTL time.Duration
	logg         *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, products ProductLoader, tx txRunner, anonymousTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if anonymousTTL <= 0 {
		return nil, fmt.Errorf("anonymous ttl must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:         repo,
		products:     products,
		tx:           tx,
		anonymousTTL: anonymousTTL,
		logg:         logg,
	}, nil
}

// GetOrCreate returns the cart for the session token, creating it on first
// use. Creation doubles as the reaping point for expired anonymous carts.
func (s *service) GetOrCreate(ctx context.Context, sessionToken string) (*models.Cart, error) {
	sessionToken = strings.TrimSpace(sessionToken)
	if sessionToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session token is required")
	}

	cart, err := s.repo.FindByToken(ctx, sessionToken)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	cutoff := time.Now().Add(-s.anonymousTTL)
	if reaped, reapErr := s.repo.DeleteAnonymousOlderThan(ctx, cutoff); reapErr != nil {
		s.logg.Error(ctx, "failed to reap expired carts", reapErr)
	} else if reaped > 0 {
		s.logg.Info(s.logg.WithField(ctx, "reaped", reaped), "expired anonymous carts removed")
	}

	created, err := s.repo.Create(ctx, &models.Cart{SessionToken: sessionToken})
	if err != nil {
		// Lost a create race: someone else persisted this token first.
		if existing, findErr := s.repo.FindByToken(ctx, sessionToken); findErr == nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return created, nil
}

// AttachCustomer claims the session cart for a customer, dropping any other
// cart the customer previously owned so they always hold exactly one.
func (s *service) AttachCustomer(ctx context.Context, sessionToken string, customerID uuid.UUID) (*models.Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	cart, err := s.GetOrCreate(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if cart.CustomerID != nil && *cart.CustomerID == customerID {
		return cart, nil
	}
	if cart.CustomerID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart already belongs to another customer")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteByCustomerExcept(ctx, customerID, cart.ID); err != nil {
			return err
		}
		return repo.SetCustomer(ctx, cart.ID, customerID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming cart")
	}

	cart.CustomerID = &customerID
	return cart, nil
}

// AddItem adds requestedQty units on top of an existing line, clamped to
// the live stock. A product not yet in the cart starts at exactly one unit
// no matter how many were requested. Out-of-stock products produce a
// flagged no-op, not an error, so storefront pages degrade gracefully.
func (s *service) AddItem(ctx context.Context, sessionToken string, productID int64, requestedQty int) (*ItemResult, error) {
	if requestedQty <= 0 {
		requestedQty = defaultAddQuantity
	}

	cart, err := s.GetOrCreate(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	stock := product.Quantity()
	if stock <= 0 {
		return &ItemResult{ProductID: productID, OutOfStock: true}, nil
	}

	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}

	if item == nil {
		if err := s.repo.CreateItem(ctx, &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  1,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart line")
		}
		return &ItemResult{ProductID: productID, Quantity: 1}, nil
	}

	desired := item.Quantity + requestedQty
	quantity := desired
	atCapacity := false
	if desired >= stock {
		quantity = stock
		atCapacity = desired > stock
	}

	if quantity != item.Quantity {
		if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
		}
	}

	return &ItemResult{ProductID: productID, Quantity: quantity, AtCapacity: atCapacity}, nil
}

// SetItemQty rewrites a line to an absolute quantity clamped to [0, stock].
// Zero deletes the line.
func (s *service) SetItemQty(ctx context.Context, sessionToken string, productID int64, quantity int) (*ItemResult, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	cart, err := s.GetOrCreate(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
		}
		return &ItemResult{ProductID: productID, Removed: true}, nil
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	stock := product.Quantity()
	if stock <= 0 {
		if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
		}
		return &ItemResult{ProductID: productID, OutOfStock: true, Removed: true}, nil
	}

	atCapacity := false
	if quantity > stock {
		quantity = stock
		atCapacity = true
	}

	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.repo.CreateItem(ctx, &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart line")
		}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	default:
		if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
		}
	}

	return &ItemResult{ProductID: productID, Quantity: quantity, AtCapacity: atCapacity}, nil
}

// RemoveItem drops a line unconditionally.
func (s *service) RemoveItem(ctx context.Context, sessionToken string, productID int64) error {
	cart, err := s.GetOrCreate(ctx, sessionToken)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
	}
	return nil
}

// Detail resolves the cart against the live catalog. Lines whose product
// vanished since they were added are silently skipped.
func (s *service) Detail(ctx context.Context, sessionToken string) (*Detail, error) {
	cart, err := s.GetOrCreate(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Cart: *cart, Total: decimal.Zero}
	for _, item := range cart.Items {
		if item.Product == nil {
			continue
		}
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		detail.Lines = append(detail.Lines, Line{
			Product:   *item.Product,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		detail.Total = detail.Total.Add(lineTotal)
	}
	return detail, nil
}

func (s *service) loadProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}
