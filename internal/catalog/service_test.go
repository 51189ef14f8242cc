package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/pagination"
)

type stubRepo struct {
	categories []models.Category
	products   map[int64][]models.Product
}

func (s *stubRepo) ListCategories(context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *stubRepo) FindCategory(_ context.Context, id int64) (*models.Category, error) {
	for _, row := range s.categories {
		if row.ID == id {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListProductsByCategory(_ context.Context, categoryID int64, page pagination.Page) ([]models.Product, int64, error) {
	rows := s.products[categoryID]
	return rows, int64(len(rows)), nil
}

func (s *stubRepo) FindProduct(_ context.Context, id int64) (*models.Product, error) {
	for _, rows := range s.products {
		for _, row := range rows {
			if row.ID == id {
				return &row, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) SearchProducts(_ context.Context, term string, page pagination.Page) ([]models.Product, int64, error) {
	var out []models.Product
	for _, rows := range s.products {
		out = append(out, rows...)
	}
	return out, int64(len(out)), nil
}

func ptrInt64(v int64) *int64 { return &v }

func newTestService(t *testing.T, repo CatalogRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestTree_BuildsHierarchy(t *testing.T) {
	repo := &stubRepo{categories: []models.Category{
		{ID: 1, Name: "Кабель"},
		{ID: 2, Name: "Медный кабель", ParentID: ptrInt64(1)},
		{ID: 3, Name: "Алюминиевый кабель", ParentID: ptrInt64(1)},
		{ID: 4, Name: "Розетки"},
	}}
	svc := newTestService(t, repo)

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, int64(1), tree[0].Category.ID)
	require.Len(t, tree[0].Children, 2)
	require.Empty(t, tree[1].Children)
}

func TestCategory_NotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	_, err := svc.Category(context.Background(), 99)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestProductsByCategory(t *testing.T) {
	repo := &stubRepo{
		categories: []models.Category{{ID: 1, Name: "Кабель"}},
		products: map[int64][]models.Product{
			1: {{ID: 10, Title: "ВВГ", CategoryID: 1}},
		},
	}
	svc := newTestService(t, repo)

	res, err := svc.ProductsByCategory(context.Background(), 1, pagination.Page{})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	require.Len(t, res.Items, 1)

	_, err = svc.ProductsByCategory(context.Background(), 42, pagination.Page{})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestSearch_RequiresTerm(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	_, err := svc.Search(context.Background(), "   ", pagination.Page{})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestProduct_NotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{products: map[int64][]models.Product{}})

	_, err := svc.Product(context.Background(), 5)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
