package articles

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type stubRepo struct {
	bySlug map[string]*models.Article
	loads  int
}

func (s *stubRepo) ListPublished(context.Context) ([]models.Article, error) {
	var rows []models.Article
	for _, article := range s.bySlug {
		rows = append(rows, *article)
	}
	return rows, nil
}

func (s *stubRepo) FindBySlug(_ context.Context, slug string) (*models.Article, error) {
	s.loads++
	if article, ok := s.bySlug[slug]; ok {
		return article, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCache struct {
	entries map[string]*models.Article
	fail    bool
	puts    int
}

func (s *stubCache) Get(_ context.Context, slug string) (*models.Article, error) {
	if s.fail {
		return nil, fmt.Errorf("connection refused")
	}
	if article, ok := s.entries[slug]; ok {
		return article, nil
	}
	return nil, nil
}

func (s *stubCache) Put(_ context.Context, article *models.Article) error {
	if s.fail {
		return fmt.Errorf("connection refused")
	}
	s.entries[article.Slug] = article
	s.puts++
	return nil
}

func newArticleService(t *testing.T, repo *stubRepo, cache articleCache) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "articles-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(repo, cache, logg)
	require.NoError(t, err)
	return svc
}

func TestBySlug_CachesOnMiss(t *testing.T) {
	repo := &stubRepo{bySlug: map[string]*models.Article{
		"delivery": {Slug: "delivery", Title: "Доставка", IsPublished: true},
	}}
	cache := &stubCache{entries: map[string]*models.Article{}}
	svc := newArticleService(t, repo, cache)
	ctx := context.Background()

	first, err := svc.BySlug(ctx, "delivery")
	require.NoError(t, err)
	require.Equal(t, "Доставка", first.Title)
	require.Equal(t, 1, repo.loads)
	require.Equal(t, 1, cache.puts)

	second, err := svc.BySlug(ctx, "delivery")
	require.NoError(t, err)
	require.Equal(t, first.Title, second.Title)
	require.Equal(t, 1, repo.loads, "second read must come from the cache")
}

func TestBySlug_CacheFailureFallsThrough(t *testing.T) {
	repo := &stubRepo{bySlug: map[string]*models.Article{
		"contacts": {Slug: "contacts", Title: "Контакты", IsPublished: true},
	}}
	svc := newArticleService(t, repo, &stubCache{fail: true})

	article, err := svc.BySlug(context.Background(), "contacts")
	require.NoError(t, err)
	require.Equal(t, "Контакты", article.Title)
}

func TestBySlug_NotFound(t *testing.T) {
	svc := newArticleService(t, &stubRepo{bySlug: map[string]*models.Article{}}, nil)

	_, err := svc.BySlug(context.Background(), "missing")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.BySlug(context.Background(), "  ")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
