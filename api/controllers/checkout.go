package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/as-electrica/storefront-backend/api/middleware"
	"github.com/as-electrica/storefront-backend/api/responses"
	"github.com/as-electrica/storefront-backend/api/validators"
	checkoutsvc "github.com/as-electrica/storefront-backend/internal/checkout"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type orderLineResponse struct {
	ProductID int64  `json:"productId"`
	Title     string `json:"title"`
	Article   string `json:"article"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type orderContactResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

type orderResponse struct {
	ID        uuid.UUID            `json:"id"`
	Status    string               `json:"status"`
	Total     string               `json:"total"`
	Contact   orderContactResponse `json:"contact"`
	Lines     []orderLineResponse  `json:"lines"`
	CreatedAt time.Time            `json:"createdAt"`
}

func newOrderResponse(order *models.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			ProductID: line.ProductID,
			Title:     line.Title,
			Article:   line.Article,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().StringFixed(2),
		})
	}
	return orderResponse{
		ID:     order.ID,
		Status: string(order.Status),
		Total:  order.Total.StringFixed(2),
		Contact: orderContactResponse{
			FirstName: order.FirstName,
			LastName:  order.LastName,
			Email:     order.Email,
			Phone:     order.Phone,
			Address:   order.Address,
			Comment:   order.Comment,
		},
		Lines:     lines,
		CreatedAt: order.CreatedAt,
	}
}

func customerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.CustomerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid customer id")
	}
	return id, nil
}

type placeOrderRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address"`
	Comment   string `json:"comment"`
}

// PlaceOrder turns the customer's claimed cart into an order.
func PlaceOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), customerID, checkoutsvc.PlaceOrderInput{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Phone:     payload.Phone,
			Address:   payload.Address,
			Comment:   payload.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
