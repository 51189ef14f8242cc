package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/as-electrica/storefront-backend/api/responses"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
	"github.com/as-electrica/storefront-backend/pkg/security"
)

const (
	cartSessionCookie = "cart_session"
	cartTokenLength   = 36
	cartCookieMaxAge  = 180 * 24 * time.Hour
)

// CartSession guarantees every request carries a cart session token. Missing
// cookies get a fresh random token so anonymous visitors can fill a cart
// before they ever sign in.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(cartSessionCookie); err == nil {
				token = cookie.Value
			}

			if token == "" {
				fresh, err := security.GenerateToken(cartTokenLength)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing cart session"))
					return
				}
				token = fresh
				http.SetCookie(w, &http.Cookie{
					Name:     cartSessionCookie,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cartCookieMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxCartSession, token)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, token)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
