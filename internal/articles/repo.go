package articles

import (
	"context"

	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
)

// ArticleRepository defines the persistence surface for static site pages.
type ArticleRepository interface {
	ListPublished(ctx context.Context) ([]models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
}

// Repository reads articles from the database.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an article repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPublished returns all published articles ordered by title.
func (r *Repository) ListPublished(ctx context.Context) ([]models.Article, error) {
	var rows []models.Article
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("title ASC").
		Find(&rows).Error
	return rows, err
}

// FindBySlug loads a single published article.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var row models.Article
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
