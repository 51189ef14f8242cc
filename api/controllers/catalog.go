package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/as-electrica/storefront-backend/api/middleware"
	"github.com/as-electrica/storefront-backend/api/responses"
	catalogsvc "github.com/as-electrica/storefront-backend/internal/catalog"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
	"github.com/as-electrica/storefront-backend/pkg/pagination"
)

type categoryResponse struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Image    *string            `json:"image,omitempty"`
	Children []categoryResponse `json:"children,omitempty"`
}

type productResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Article  string  `json:"article"`
	Price    string  `json:"price"`
	Category int64   `json:"categoryId"`
	Quantity int     `json:"quantity"`
	InStock  bool    `json:"inStock"`
	Image    *string `json:"image,omitempty"`
}

func newCategoryTreeResponse(nodes []catalogsvc.CategoryNode) []categoryResponse {
	out := make([]categoryResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, categoryResponse{
			ID:       node.Category.ID,
			Name:     node.Category.Name,
			Image:    node.Category.Image,
			Children: newCategoryTreeResponse(node.Children),
		})
	}
	return out
}

func newProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:       product.ID,
		Title:    product.Title,
		Article:  product.Article,
		Price:    product.Price.StringFixed(2),
		Category: product.CategoryID,
		Quantity: product.Quantity(),
		InStock:  product.InStock(),
		Image:    product.Image,
	}
}

func newProductPageResponse(result pagination.Result[models.Product]) pagination.Result[productResponse] {
	items := make([]productResponse, 0, len(result.Items))
	for _, product := range result.Items {
		items = append(items, newProductResponse(product))
	}
	return pagination.Result[productResponse]{
		Items:      items,
		Page:       result.Page,
		Size:       result.Size,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	}
}

// CatalogTree returns the full category hierarchy.
func CatalogTree(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodes, err := svc.Tree(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCategoryTreeResponse(nodes))
	}
}

// CatalogCategoryProducts pages a category's products. A ?pager= parameter
// persists the visitor's page size for later requests.
func CatalogCategoryProducts(svc catalogsvc.Service, prefs *catalogsvc.PagerPrefs, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathInt64(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := resolvePage(r, prefs)
		result, err := svc.ProductsByCategory(r.Context(), categoryID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductPageResponse(result))
	}
}

// CatalogProduct returns one product card.
func CatalogProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Product(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// CatalogSearch pages products matching ?p= by title or article.
func CatalogSearch(svc catalogsvc.Service, prefs *catalogsvc.PagerPrefs, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := resolvePage(r, prefs)
		result, err := svc.Search(r.Context(), r.URL.Query().Get("p"), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductPageResponse(result))
	}
}

// resolvePage combines ?page/?size with the remembered per-session page size.
// An explicit ?pager= value wins and is stored for subsequent requests.
func resolvePage(r *http.Request, prefs *catalogsvc.PagerPrefs) pagination.Page {
	page := pagination.FromRequest(r)
	if prefs == nil {
		return page
	}

	token := middleware.CartSessionFromContext(r.Context())
	if token == "" {
		return page
	}

	if raw := r.URL.Query().Get("pager"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			if stored, err := prefs.Remember(r.Context(), token, size); err == nil {
				page.Size = stored
			}
			return pagination.Normalize(page)
		}
	}

	if r.URL.Query().Get("size") == "" {
		page.Size = prefs.Lookup(r.Context(), token, page.Size)
	}
	return pagination.Normalize(page)
}

func pathInt64(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return value, nil
}
