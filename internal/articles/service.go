package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type articleCache interface {
	Get(ctx context.Context, slug string) (*models.Article, error)
	Put(ctx context.Context, article *models.Article) error
}

// Service serves the static site pages (delivery terms, contacts and the
// like) with a read-through cache in front of the database.
type Service interface {
	List(ctx context.Context) ([]models.Article, error)
	BySlug(ctx context.Context, slug string) (*models.Article, error)
}

type service struct {
	repo   ArticleRepository
	cache  articleCache
	logger *logger.Logger
}

// NewService builds the article service. The cache is optional.
func NewService(repo ArticleRepository, cache articleCache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("article repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logger: logg}, nil
}

// List returns all published articles.
func (s *service) List(ctx context.Context) ([]models.Article, error) {
	rows, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing articles")
	}
	return rows, nil
}

// BySlug returns a published article, preferring the cache. Cache failures
// are logged and the database answers instead.
func (s *service) BySlug(ctx context.Context, slug string) (*models.Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, slug)
		if err != nil {
			s.logger.Warn(s.logger.WithField(ctx, "slug", slug), "article cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	article, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading article")
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, article); err != nil {
			s.logger.Warn(s.logger.WithField(ctx, "slug", slug), "article cache write failed")
		}
	}
	return article, nil
}
