package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/pagination"
)

// CategoryNode is a category with its resolved children.
type CategoryNode struct {
	Category models.Category
	Children []CategoryNode
}

// CatalogRepository defines the persistence surface required by the service.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategory(ctx context.Context, id int64) (*models.Category, error)
	ListProductsByCategory(ctx context.Context, categoryID int64, page pagination.Page) ([]models.Product, int64, error)
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
	SearchProducts(ctx context.Context, term string, page pagination.Page) ([]models.Product, int64, error)
}

// Service exposes catalog browsing operations.
type Service interface {
	Tree(ctx context.Context) ([]CategoryNode, error)
	Category(ctx context.Context, id int64) (*models.Category, error)
	ProductsByCategory(ctx context.Context, categoryID int64, page pagination.Page) (pagination.Result[models.Product], error)
	Product(ctx context.Context, id int64) (*models.Product, error)
	Search(ctx context.Context, term string, page pagination.Page) (pagination.Result[models.Product], error)
}

type service struct {
	repo CatalogRepository
}

// NewService builds a catalog service.
func NewService(repo CatalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// Tree assembles the category hierarchy from the flat table.
func (s *service) Tree(ctx context.Context) ([]CategoryNode, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}

	children := map[int64][]models.Category{}
	var roots []models.Category
	for _, row := range rows {
		if row.ParentID == nil {
			roots = append(roots, row)
			continue
		}
		children[*row.ParentID] = append(children[*row.ParentID], row)
	}

	var build func(parent models.Category) CategoryNode
	build = func(parent models.Category) CategoryNode {
		node := CategoryNode{Category: parent}
		for _, child := range children[parent.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	nodes := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, build(root))
	}
	return nodes, nil
}

// Category loads a single category.
func (s *service) Category(ctx context.Context, id int64) (*models.Category, error) {
	row, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
	}
	return row, nil
}

// ProductsByCategory pages displayed products for a category.
func (s *service) ProductsByCategory(ctx context.Context, categoryID int64, page pagination.Page) (pagination.Result[models.Product], error) {
	if _, err := s.Category(ctx, categoryID); err != nil {
		return pagination.Result[models.Product]{}, err
	}

	page = pagination.Normalize(page)
	rows, total, err := s.repo.ListProductsByCategory(ctx, categoryID, page)
	if err != nil {
		return pagination.Result[models.Product]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return pagination.NewResult(rows, page, total), nil
}

// Product loads a single product.
func (s *service) Product(ctx context.Context, id int64) (*models.Product, error) {
	row, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return row, nil
}

// Search pages displayed products matching the query term.
func (s *service) Search(ctx context.Context, term string, page pagination.Page) (pagination.Result[models.Product], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return pagination.Result[models.Product]{}, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}

	page = pagination.Normalize(page)
	rows, total, err := s.repo.SearchProducts(ctx, term, page)
	if err != nil {
		return pagination.Result[models.Product]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching products")
	}
	return pagination.NewResult(rows, page, total), nil
}
