package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	"github.com/as-electrica/storefront-backend/pkg/pagination"
)

// Repository exposes read operations over the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListCategories returns the full category set ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// FindCategory loads a single category by id.
func (r *Repository) FindCategory(ctx context.Context, id int64) (*models.Category, error) {
	var row models.Category
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListProductsByCategory pages displayed products within a category.
func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID int64, page pagination.Page) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ? AND display = ?", categoryID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Order("title ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&rows).Error
	return rows, total, err
}

// FindProduct loads a single product by id.
func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SearchProducts pages displayed products whose title or article matches the
// query, case-insensitively.
func (r *Repository) SearchProducts(ctx context.Context, term string, page pagination.Page) ([]models.Product, int64, error) {
	pattern := "%" + term + "%"
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("display = ?", true).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(article) LIKE LOWER(?)", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Order("title ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&rows).Error
	return rows, total, err
}
