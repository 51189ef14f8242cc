package controllers

import (
	"net/http"

	"github.com/as-electrica/storefront-backend/api/middleware"
	"github.com/as-electrica/storefront-backend/api/responses"
	"github.com/as-electrica/storefront-backend/api/validators"
	cartsvc "github.com/as-electrica/storefront-backend/internal/cart"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type cartLineResponse struct {
	Product   productResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal string          `json:"lineTotal"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total string             `json:"total"`
}

type cartItemResultResponse struct {
	ProductID  int64 `json:"productId"`
	Quantity   int   `json:"quantity"`
	AtCapacity bool  `json:"atCapacity"`
	OutOfStock bool  `json:"outOfStock"`
	Removed    bool  `json:"removed"`
}

func newCartResponse(detail *cartsvc.Detail) cartResponse {
	lines := make([]cartLineResponse, 0, len(detail.Lines))
	for _, line := range detail.Lines {
		lines = append(lines, cartLineResponse{
			Product:   newProductResponse(line.Product),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal.StringFixed(2),
		})
	}
	return cartResponse{Lines: lines, Total: detail.Total.StringFixed(2)}
}

func newItemResultResponse(result *cartsvc.ItemResult) cartItemResultResponse {
	return cartItemResultResponse{
		ProductID:  result.ProductID,
		Quantity:   result.Quantity,
		AtCapacity: result.AtCapacity,
		OutOfStock: result.OutOfStock,
		Removed:    result.Removed,
	}
}

func cartToken(r *http.Request) (string, error) {
	token := middleware.CartSessionFromContext(r.Context())
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "cart session missing")
	}
	return token, nil
}

// CartDetail returns the current cart with live prices and totals.
func CartDetail(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := cartToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Detail(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(detail))
	}
}

type addCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity"`
}

// CartAddItem adds quantity to a cart line, clamped to the available stock.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := cartToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), token, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newItemResultResponse(result))
	}
}

type setCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartSetItem sets a cart line to an absolute quantity; zero removes it.
func CartSetItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := cartToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SetItemQty(r.Context(), token, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newItemResultResponse(result))
	}
}

// CartRemoveItem drops a product from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := cartToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), token, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}
