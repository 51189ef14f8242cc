package cart

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type stubStore struct {
	carts    map[uuid.UUID]*models.Cart
	items    map[uuid.UUID][]*models.CartItem
	products map[int64]*models.Product
	reaped   int64
}

func newStubStore() *stubStore {
	return &stubStore{
		carts:    map[uuid.UUID]*models.Cart{},
		items:    map[uuid.UUID][]*models.CartItem{},
		products: map[int64]*models.Product{},
	}
}

func (s *stubStore) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubStore) FindByToken(_ context.Context, token string) (*models.Cart, error) {
	for _, cart := range s.carts {
		if cart.SessionToken == token {
			return s.withItems(cart), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) FindByCustomer(_ context.Context, customerID uuid.UUID) (*models.Cart, error) {
	for _, cart := range s.carts {
		if cart.CustomerID != nil && *cart.CustomerID == customerID {
			return s.withItems(cart), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) withItems(cart *models.Cart) *models.Cart {
	clone := *cart
	clone.Items = nil
	for _, item := range s.items[cart.ID] {
		line := *item
		if product, ok := s.products[item.ProductID]; ok {
			copied := *product
			line.Product = &copied
		}
		clone.Items = append(clone.Items, line)
	}
	return &clone
}

func (s *stubStore) Create(_ context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.ID = uuid.New()
	cart.UpdatedAt = time.Now()
	s.carts[cart.ID] = cart
	return cart, nil
}

func (s *stubStore) DeleteAnonymousOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var reaped int64
	for id, cart := range s.carts {
		if cart.CustomerID == nil && cart.UpdatedAt.Before(cutoff) {
			delete(s.carts, id)
			delete(s.items, id)
			reaped++
		}
	}
	s.reaped += reaped
	return reaped, nil
}

func (s *stubStore) DeleteByCustomerExcept(_ context.Context, customerID, exceptCartID uuid.UUID) error {
	for id, cart := range s.carts {
		if id != exceptCartID && cart.CustomerID != nil && *cart.CustomerID == customerID {
			delete(s.carts, id)
			delete(s.items, id)
		}
	}
	return nil
}

func (s *stubStore) SetCustomer(_ context.Context, cartID, customerID uuid.UUID) error {
	if cart, ok := s.carts[cartID]; ok {
		cart.CustomerID = &customerID
	}
	return nil
}

func (s *stubStore) Delete(_ context.Context, cartID uuid.UUID) error {
	delete(s.carts, cartID)
	delete(s.items, cartID)
	return nil
}

func (s *stubStore) FindItem(_ context.Context, cartID uuid.UUID, productID int64) (*models.CartItem, error) {
	for _, item := range s.items[cartID] {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) CreateItem(_ context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	s.items[item.CartID] = append(s.items[item.CartID], item)
	return nil
}

func (s *stubStore) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	for _, items := range s.items {
		for _, item := range items {
			if item.ID == itemID {
				item.Quantity = quantity
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubStore) DeleteItem(_ context.Context, cartID uuid.UUID, productID int64) error {
	items := s.items[cartID]
	for i, item := range items {
		if item.ProductID == productID {
			s.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *stubStore) FindProduct(_ context.Context, id int64) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newCartService(t *testing.T, store *stubStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(store, store, stubTx{}, 48*time.Hour, logg)
	require.NoError(t, err)
	return svc
}

func seedProduct(store *stubStore, id int64, stock int, price string) {
	store.products[id] = &models.Product{
		ID:         id,
		Title:      "Товар",
		Article:    "ART",
		Price:      decimal.RequireFromString(price),
		Warehouse1: stock,
		Display:    true,
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	store := newStubStore()
	svc := newCartService(t, store)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "session-a")
	require.NoError(t, err)
	second, err := svc.GetOrCreate(ctx, "session-a")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, store.carts, 1)
}

func TestGetOrCreate_ReapsExpiredAnonymousCarts(t *testing.T) {
	store := newStubStore()
	svc := newCartService(t, store)
	ctx := context.Background()

	stale := &models.Cart{SessionToken: "stale", UpdatedAt: time.Now().Add(-72 * time.Hour)}
	stale.ID = uuid.New()
	store.carts[stale.ID] = stale

	_, err := svc.GetOrCreate(ctx, "fresh")
	require.NoError(t, err)
	require.EqualValues(t, 1, store.reaped)
	_, found := store.carts[stale.ID]
	require.False(t, found)
}

func TestAddItem_NewLineStartsAtOne(t *testing.T) {
	store := newStubStore()
	seedProduct(store, 42, 5, "100.00")
	svc := newCartService(t, store)

	res, err := svc.AddItem(context.Background(), "s", 42, 3)
	require.NoError(t, err)
	require.Equal(t, 1, res.Quantity, "a product not yet in the cart starts at one unit")
	require.False(t, res.AtCapacity)
}

func TestAddItem_ClampsToStock(t *testing.T) {
	store := newStubStore()
	seedProduct(store, 42, 5, "100.00")
	svc := newCartService(t, store)
	ctx := context.Background()

	res, err := svc.AddItem(ctx, "s", 42, 1)
	require.NoError(t, err)
	require.Equal(t, 1, res.Quantity)

	res, err = svc.AddItem(ctx, "s", 42, 3)
	require.NoError(t, err)
	require.Equal(t, 4, res.Quantity)
	require.False(t, res.AtCapacity)

	res, err = svc.AddItem(ctx, "s", 42, 4)
	require.NoError(t, err)
	require.Equal(t, 5, res.Quantity)
	require.True(t, res.AtCapacity)
}

func TestAddItem_OutOfStockIsNoop(t *testing.T) {
	store := newStubStore()
	seedProduct(store, 42, 0, "100.00")
	svc := newCartService(t, store)

	res, err := svc.AddItem(context.Background(), "s", 42, 1)
	require.NoError(t, err)
	require.True(t, res.OutOfStock)
	require.Zero(t, res.Quantity)

	cart, err := svc.GetOrCreate(context.Background(), "s")
	require.NoError(t, err)
	require.Empty(t, store.items[cart.ID])
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := newCartService(t, newStubStore())

	_, err := svc.AddItem(context.Background(), "s", 99, 1)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestSetItemQty_ZeroDeletesLine(t *testing.T) {
	store := newStubStore()
	seedProduct(store, 42, 5, "100.00")
	svc := newCartService(t, store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s", 42, 2)
	require.NoError(t, err)

	res, err := svc.SetItemQty(ctx, "s", 42, 0)
	require.NoError(t, err)
	require.True(t, res.Removed)

	detail, err := svc.Detail(ctx, "s")
	require.NoError(t, err)
	require.Empty(t, detail.Lines)
}

func TestSetItemQty_ClampsAboveStock(t *testing.T) {
	store := newStubStore()
	seedProduct(store, 42, 5, "100.00")
	svc := newCartService(t, store)

	res, err := svc.SetItemQty(context.Background(), "s", 42, 10)
	require.NoError(t, err)
	require.Equal(t, 5, res.Quantity)
	require.True(t, res.AtCapacity)
}

func TestAttachCustomer_DropsOtherCarts(t *testing.T) {
	store := newStubStore()
	svc := newCartService(t, store)
	ctx := context.Background()
	customerID := uuid.New()

	old, err := svc.GetOrCreate(ctx, "old-session")
	require.NoError(t, err)
	_, err = svc.AttachCustomer(ctx, "old-session", customerID)
	require.NoError(t, err)

	fresh, err := svc.AttachCustomer(ctx, "new-session", customerID)
	require.NoError(t, err)
	require.NotEqual(t, old.ID, fresh.ID)

	_, stillThere := store.carts[old.ID]
	require.False(t, stillThere, "previous cart must be deleted on claim")
	require.Equal(t, customerID, *store.carts[fresh.ID].CustomerID)
}

func TestAttachCustomer_ForeignCartConflicts(t *testing.T) {
	store := newStubStore()
	svc := newCartService(t, store)
	ctx := context.Background()

	_, err := svc.AttachCustomer(ctx, "shared", uuid.New())
	require.NoError(t, err)

	_, err = svc.AttachCustomer(ctx, "shared", uuid.New())
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestDetail_ComputesTotals(t *testing.T) {
	store := newStubStore()
	seedProduct(store, 42, 5, "100.50")
	seedProduct(store, 43, 5, "10.00")
	svc := newCartService(t, store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s", 42, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "s", 42, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "s", 43, 1)
	require.NoError(t, err)

	detail, err := svc.Detail(ctx, "s")
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)
	require.True(t, detail.Total.Equal(decimal.RequireFromString("211.00")), "got %s", detail.Total)
}
