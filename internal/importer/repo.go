package importer

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
)

// ErrCategoryMissing signals a product row pointing at an unknown group.
var ErrCategoryMissing = errors.New("category not found")

// ErrProductMissing signals a stock row pointing at an unknown product.
var ErrProductMissing = errors.New("product not found")

// Repository persists feed rows into the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds the importer repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertCategory creates or renames a category keyed by the feed id.
func (r *Repository) UpsertCategory(ctx context.Context, id int64, name string) error {
	row := models.Category{ID: id, Name: name}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(&row).Error
}

// CategoryExists reports whether the feed group id is already in the catalog.
func (r *Repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// UpsertProduct creates or refreshes a product under an existing category.
// Rows referencing an unknown category return ErrCategoryMissing.
func (r *Repository) UpsertProduct(ctx context.Context, id int64, title, article string, price decimal.Decimal, categoryID int64) error {
	exists, err := r.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCategoryMissing
	}

	row := models.Product{
		ID:         id,
		Title:      title,
		Article:    article,
		Price:      price,
		CategoryID: categoryID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "article", "price", "category_id", "updated_at"}),
		}).
		Create(&row).Error
}

// UpdateStock writes warehouse counts on an existing product. Products absent
// from the catalog return ErrProductMissing so callers can count misses.
func (r *Repository) UpdateStock(ctx context.Context, id int64, warehouse1, warehouse2 int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"warehouse1": warehouse1,
			"warehouse2": warehouse2,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductMissing
	}
	return nil
}
