package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/as-electrica/storefront-backend/api/responses"
	articlessvc "github.com/as-electrica/storefront-backend/internal/articles"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type articleResponse struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newArticleResponse(article *models.Article, withBody bool) articleResponse {
	out := articleResponse{
		Slug:      article.Slug,
		Title:     article.Title,
		UpdatedAt: article.UpdatedAt,
	}
	if withBody {
		out.Body = article.Body
	}
	return out
}

// ArticlesList returns published content pages without bodies.
func ArticlesList(svc articlessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articles, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]articleResponse, 0, len(articles))
		for i := range articles {
			items = append(items, newArticleResponse(&articles[i], false))
		}
		responses.WriteSuccess(w, items)
	}
}

// ArticleBySlug returns a single published page with its body.
func ArticleBySlug(svc articlessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article, err := svc.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newArticleResponse(article, true))
	}
}
