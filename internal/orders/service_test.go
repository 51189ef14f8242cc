package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/internal/customers"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	"github.com/as-electrica/storefront-backend/pkg/enums"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
	"github.com/as-electrica/storefront-backend/pkg/outbox"
)

type stubOrderRepo struct {
	byID map[uuid.UUID]*models.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{byID: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrderRepo) WithTx(*gorm.DB) OrderRepository { return s }

func (s *stubOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.byID[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.byID {
		if order.CustomerID == customerID {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}

func (s *stubOrderRepo) FindByIDAndCustomer(_ context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	order, ok := s.byID[id]
	if !ok || order.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if order, ok := s.byID[id]; ok {
		order.Status = status
	}
	return nil
}

type stubCustomerRepo struct {
	customer *models.Customer
}

func (s *stubCustomerRepo) WithTx(*gorm.DB) customers.CustomerRepository { return s }

func (s *stubCustomerRepo) Create(_ context.Context, c *models.Customer) (*models.Customer, error) {
	return c, nil
}

func (s *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	if s.customer != nil && s.customer.ID == id {
		return s.customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) FindByEmail(context.Context, string) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) FindByConfirmationCode(context.Context, string) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) MarkConfirmed(context.Context, uuid.UUID) error { return nil }

func (s *stubCustomerRepo) UpdateContact(context.Context, uuid.UUID, customers.Contact) error {
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newOrderService(t *testing.T, repo *stubOrderRepo, custs *stubCustomerRepo, emitter *stubEmitter) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "orders-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(repo, custs, stubTx{}, emitter, logg)
	require.NoError(t, err)
	return svc
}

func seedOrder(repo *stubOrderRepo, customerID uuid.UUID, status enums.OrderStatus) *models.Order {
	order := &models.Order{ID: uuid.New(), CustomerID: customerID, Status: status}
	repo.byID[order.ID] = order
	return order
}

func TestDetail_OwnerScoped(t *testing.T) {
	repo := newStubOrderRepo()
	owner := uuid.New()
	order := seedOrder(repo, owner, enums.OrderStatusNew)
	svc := newOrderService(t, repo, &stubCustomerRepo{}, &stubEmitter{})
	ctx := context.Background()

	got, err := svc.Detail(ctx, owner, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)

	_, err = svc.Detail(ctx, uuid.New(), order.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err), "foreign orders must look missing")
}

func TestAdvance_ForwardOnly(t *testing.T) {
	repo := newStubOrderRepo()
	order := seedOrder(repo, uuid.New(), enums.OrderStatusNew)
	svc := newOrderService(t, repo, &stubCustomerRepo{}, &stubEmitter{})
	ctx := context.Background()

	got, err := svc.Advance(ctx, order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusProcessing, got.Status)

	_, err = svc.Advance(ctx, order.ID, enums.OrderStatusNew)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	_, err = svc.Advance(ctx, order.ID, enums.OrderStatusCompleted)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err), "processing cannot skip to completed")
}

func TestAdvance_TerminalStatusLocked(t *testing.T) {
	repo := newStubOrderRepo()
	order := seedOrder(repo, uuid.New(), enums.OrderStatusCanceled)
	svc := newOrderService(t, repo, &stubCustomerRepo{}, &stubEmitter{})

	_, err := svc.Advance(context.Background(), order.ID, enums.OrderStatusProcessing)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestAdvance_ReadyEmitsPickupEvent(t *testing.T) {
	repo := newStubOrderRepo()
	customer := &models.Customer{ID: uuid.New(), Email: "buyer@example.com", FirstName: "Иван"}
	order := seedOrder(repo, customer.ID, enums.OrderStatusProcessing)
	emitter := &stubEmitter{}
	svc := newOrderService(t, repo, &stubCustomerRepo{customer: customer}, emitter)

	_, err := svc.Advance(context.Background(), order.ID, enums.OrderStatusReady)
	require.NoError(t, err)
	require.Len(t, emitter.events, 1)
	require.Equal(t, enums.EventOrderReady, emitter.events[0].EventType)
	require.Equal(t, order.ID, emitter.events[0].AggregateID)
}

func TestAdvance_NonReadyTransitionEmitsNothing(t *testing.T) {
	repo := newStubOrderRepo()
	order := seedOrder(repo, uuid.New(), enums.OrderStatusNew)
	emitter := &stubEmitter{}
	svc := newOrderService(t, repo, &stubCustomerRepo{}, emitter)

	_, err := svc.Advance(context.Background(), order.ID, enums.OrderStatusCanceled)
	require.NoError(t, err)
	require.Empty(t, emitter.events)
}

func TestAdvance_UnknownOrder(t *testing.T) {
	svc := newOrderService(t, newStubOrderRepo(), &stubCustomerRepo{}, &stubEmitter{})

	_, err := svc.Advance(context.Background(), uuid.New(), enums.OrderStatusProcessing)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestList_FiltersByCustomer(t *testing.T) {
	repo := newStubOrderRepo()
	owner := uuid.New()
	seedOrder(repo, owner, enums.OrderStatusNew)
	seedOrder(repo, owner, enums.OrderStatusCompleted)
	seedOrder(repo, uuid.New(), enums.OrderStatusNew)
	svc := newOrderService(t, repo, &stubCustomerRepo{}, &stubEmitter{})

	rows, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
