package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/as-electrica/storefront-backend/api/middleware"
	"github.com/as-electrica/storefront-backend/api/responses"
	"github.com/as-electrica/storefront-backend/api/validators"
	cartsvc "github.com/as-electrica/storefront-backend/internal/cart"
	customerssvc "github.com/as-electrica/storefront-backend/internal/customers"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type customerResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	IsConfirmed bool      `json:"isConfirmed"`
}

func newCustomerResponse(customer *models.Customer) customerResponse {
	return customerResponse{
		ID:          customer.ID,
		Email:       customer.Email,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Phone:       customer.Phone,
		Address:     customer.Address,
		IsConfirmed: customer.IsConfirmed,
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// AuthRegister creates an unconfirmed account and queues the confirmation
// email through the outbox.
func AuthRegister(svc customerssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Register(r.Context(), customerssvc.RegisterInput{
			Email:     payload.Email,
			Password:  payload.Password,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Phone:     payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCustomerResponse(customer))
	}
}

// AuthConfirm consumes a single-use confirmation code from the email link.
func AuthConfirm(svc customerssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		customer, err := svc.Confirm(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCustomerResponse(customer))
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string           `json:"accessToken"`
	Customer    customerResponse `json:"customer"`
}

// AuthLogin exchanges credentials for an access token. The anonymous session
// cart, if any, is claimed for the customer so it follows them across devices.
func AuthLogin(svc customerssvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if carts != nil {
			if token := middleware.CartSessionFromContext(r.Context()); token != "" {
				if _, err := carts.AttachCustomer(r.Context(), token, result.Customer.ID); err != nil {
					logCtx := logg.WithField(r.Context(), "customer_id", result.Customer.ID.String())
					logg.Warn(logCtx, "attach cart on login failed")
				}
			}
		}

		responses.WriteSuccess(w, loginResponse{
			AccessToken: result.AccessToken,
			Customer:    newCustomerResponse(result.Customer),
		})
	}
}

// AuthLogout revokes the server-side session behind the presented token.
func AuthLogout(svc customerssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"loggedOut": true})
	}
}

// Profile returns the authenticated customer's profile.
func Profile(svc customerssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCustomerResponse(customer))
	}
}
