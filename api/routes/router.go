package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/as-electrica/storefront-backend/api/controllers"
	"github.com/as-electrica/storefront-backend/api/middleware"
	"github.com/as-electrica/storefront-backend/internal/articles"
	"github.com/as-electrica/storefront-backend/internal/cart"
	"github.com/as-electrica/storefront-backend/internal/catalog"
	checkoutsvc "github.com/as-electrica/storefront-backend/internal/checkout"
	"github.com/as-electrica/storefront-backend/internal/customers"
	"github.com/as-electrica/storefront-backend/internal/orders"
	"github.com/as-electrica/storefront-backend/pkg/auth/session"
	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/enums"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

// Deps collects everything the HTTP surface needs. Pingers feed the readiness
// probe; services back their route groups.
type Deps struct {
	DB    controllers.Pinger
	Redis controllers.Pinger

	Sessions session.Checker

	Catalog    catalog.Service
	PagerPrefs *catalog.PagerPrefs
	Cart       cart.Service
	Checkout   checkoutsvc.Service
	Customers  customers.Service
	Orders     orders.Service
	Articles   articles.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", controllers.CatalogTree(deps.Catalog, logg))
			r.Get("/categories/{categoryId}/products", controllers.CatalogCategoryProducts(deps.Catalog, deps.PagerPrefs, logg))
			r.Get("/products/{productId}", controllers.CatalogProduct(deps.Catalog, logg))
			r.Get("/search", controllers.CatalogSearch(deps.Catalog, deps.PagerPrefs, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartDetail(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{productId}", controllers.CartSetItem(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.Customers, logg))
			r.Get("/confirm/{code}", controllers.AuthConfirm(deps.Customers, logg))
			r.Post("/login", controllers.AuthLogin(deps.Customers, deps.Cart, logg))

			r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).
				Post("/logout", controllers.AuthLogout(deps.Customers, logg))
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", controllers.ArticlesList(deps.Articles, logg))
			r.Get("/{slug}", controllers.ArticleBySlug(deps.Articles, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Post("/checkout", controllers.PlaceOrder(deps.Checkout, logg))
			r.Get("/profile", controllers.Profile(deps.Customers, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.With(middleware.RequireRole(enums.CustomerRoleStaff, logg)).
					Post("/{orderId}/advance", controllers.OrderAdvance(deps.Orders, logg))
			})
		})
	})

	return r
}
