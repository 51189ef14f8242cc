package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartpkg "github.com/as-electrica/storefront-backend/internal/cart"
	"github.com/as-electrica/storefront-backend/internal/customers"
	"github.com/as-electrica/storefront-backend/internal/orders"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	"github.com/as-electrica/storefront-backend/pkg/enums"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/outbox"
	"github.com/as-electrica/storefront-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PlaceOrderInput is the contact snapshot captured at checkout.
type PlaceOrderInput struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Comment   string
}

// Service turns a claimed cart into a placed order.
type Service interface {
	PlaceOrder(ctx context.Context, customerID uuid.UUID, input PlaceOrderInput) (*models.Order, error)
}

type service struct {
	tx           txRunner
	cartRepo     cartpkg.CartRepository
	customerRepo customers.CustomerRepository
	orderRepo    orders.OrderRepository
	events       eventEmitter
}

// NewService builds the checkout service.
func NewService(tx txRunner, cartRepo cartpkg.CartRepository, customerRepo customers.CustomerRepository, orderRepo orders.OrderRepository, events eventEmitter) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		tx:           tx,
		cartRepo:     cartRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		events:       events,
	}, nil
}

// PlaceOrder snapshots the customer's cart into an immutable order inside a
// single transaction: lines are re-clamped against live stock, the contact
// fields land on both the order and the customer profile, the cart is
// consumed, and the order_placed event is queued atomically with all of it.
func (s *service) PlaceOrder(ctx context.Context, customerID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customerRepo := s.customerRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		customer, err := customerRepo.FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
		}
		if !customer.IsConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "email address is not confirmed")
		}

		cart, err := cartRepo.FindByCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}

		lines, total := buildLines(cart.Items)
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart is empty")
		}

		order := &models.Order{
			CustomerID: customerID,
			Status:     enums.OrderStatusNew,
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Email:      customer.Email,
			Phone:      input.Phone,
			Address:    input.Address,
			Comment:    input.Comment,
			Total:      total,
			Lines:      lines,
		}
		if _, err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		contact := customers.Contact{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Phone:     input.Phone,
			Address:   input.Address,
		}
		if err := customerRepo.UpdateContact(ctx, customerID, contact); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating customer contact")
		}

		if err := cartRepo.Delete(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consuming cart")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{CustomerID: customerID, Role: "customer"},
			Data:          orderPlacedPayload(order),
			Version:       1,
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing order event")
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func validateInput(input PlaceOrderInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "first name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	return nil
}

// buildLines re-clamps cart lines against live stock, dropping lines whose
// product disappeared or sold out since they were added.
func buildLines(items []models.CartItem) ([]models.OrderLine, decimal.Decimal) {
	var lines []models.OrderLine
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		quantity := item.Quantity
		if stock := item.Product.Quantity(); quantity > stock {
			quantity = stock
		}
		if quantity <= 0 {
			continue
		}
		line := models.OrderLine{
			ProductID: item.ProductID,
			Title:     item.Product.Title,
			Article:   item.Product.Article,
			UnitPrice: item.Product.Price,
			Quantity:  quantity,
		}
		lines = append(lines, line)
		total = total.Add(line.LineTotal())
	}
	return lines, total
}

func orderPlacedPayload(order *models.Order) payloads.OrderPlacedData {
	data := payloads.OrderPlacedData{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Email:      order.Email,
		FirstName:  order.FirstName,
		Phone:      order.Phone,
		Total:      order.Total.StringFixed(2),
	}
	for _, line := range order.Lines {
		data.Lines = append(data.Lines, payloads.OrderLineData{
			ProductID: line.ProductID,
			Title:     line.Title,
			Article:   line.Article,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
		})
	}
	return data
}
