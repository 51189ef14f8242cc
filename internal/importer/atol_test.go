package importer

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/as-electrica/storefront-backend/pkg/logger"
)

type stubCatalog struct {
	categories map[int64]string
	products   map[int64]stubProduct
}

type stubProduct struct {
	title    string
	article  string
	price    decimal.Decimal
	category int64
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		categories: map[int64]string{},
		products:   map[int64]stubProduct{},
	}
}

func (s *stubCatalog) UpsertCategory(_ context.Context, id int64, name string) error {
	s.categories[id] = name
	return nil
}

func (s *stubCatalog) UpsertProduct(_ context.Context, id int64, title, article string, price decimal.Decimal, categoryID int64) error {
	if _, ok := s.categories[categoryID]; !ok {
		return ErrCategoryMissing
	}
	s.products[id] = stubProduct{title: title, article: article, price: price, category: categoryID}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "importer-test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

// makeRow builds a full-width feed row with the meaningful fields filled in.
func makeRow(id, name, price, parent, article string) string {
	fields := make([]string, minFields)
	fields[fieldID] = id
	fields[fieldName] = name
	fields[fieldPrice] = price
	fields[fieldParent] = parent
	fields[fieldArticle] = article
	return strings.Join(fields, ";")
}

func newTestPricingImporter(t *testing.T, repo catalogWriter) *PricingImporter {
	t.Helper()
	imp, err := NewPricingImporter(repo, testLogger())
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	return imp
}

func TestPricingImport_CategoryRow(t *testing.T) {
	repo := newStubCatalog()
	imp := newTestPricingImporter(t, repo)

	feed := makeRow("10", "(01) Кабельная продукция (медь).", "", "", "")
	stats, err := imp.ImportReader(context.Background(), strings.NewReader(feed))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if stats.Categories != 1 || stats.Products != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	// The leading group marker and any trailing parenthetical are stripped.
	if got := repo.categories[10]; got != "Кабельная продукция " {
		t.Fatalf("unexpected category name %q", got)
	}
}

func TestPricingImport_ProductRow(t *testing.T) {
	repo := newStubCatalog()
	repo.categories[10] = "Кабельная продукция"
	imp := newTestPricingImporter(t, repo)

	feed := makeRow("42", "(01) Кабель ВВГ 3x2.5", "129.50", "10", "VVG-325")
	stats, err := imp.ImportReader(context.Background(), strings.NewReader(feed))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if stats.Products != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	product, ok := repo.products[42]
	if !ok {
		t.Fatal("expected product 42")
	}
	// Product names keep inner parentheticals, only the leading one goes.
	if product.title != "Кабель ВВГ 3x2.5" {
		t.Fatalf("unexpected title %q", product.title)
	}
	if product.article != "VVG-325" {
		t.Fatalf("unexpected article %q", product.article)
	}
	if !product.price.Equal(decimal.RequireFromString("129.50")) {
		t.Fatalf("unexpected price %s", product.price)
	}
	if product.category != 10 {
		t.Fatalf("unexpected category %d", product.category)
	}
}

func TestPricingImport_SkipsMalformedRows(t *testing.T) {
	repo := newStubCatalog()
	repo.categories[10] = "Категория"
	imp := newTestPricingImporter(t, repo)

	feed := strings.Join([]string{
		"1;too;short",
		makeRow("2", "Х", "", "", ""),
		makeRow("abc", "Название", "", "", ""),
		makeRow("3", "Товар без категории", "10.00", "999", "ART-1"),
		makeRow("4", "Товар с ценой-мусором", "n/a", "10", "ART-2"),
		makeRow("5", "Нормальный товар", "55.00", "10", "ART-3"),
	}, "\n")

	stats, err := imp.ImportReader(context.Background(), strings.NewReader(feed))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if stats.Skipped != 5 {
		t.Fatalf("expected 5 skipped rows, got %+v", stats)
	}
	if stats.Products != 1 {
		t.Fatalf("expected 1 product, got %+v", stats)
	}
	if _, ok := repo.products[5]; !ok {
		t.Fatal("expected surviving product 5")
	}
}

func TestPricingImport_CategoryRenameWins(t *testing.T) {
	repo := newStubCatalog()
	imp := newTestPricingImporter(t, repo)

	feed := strings.Join([]string{
		makeRow("10", "Старое имя", "", "", ""),
		makeRow("10", "Новое имя", "", "", ""),
	}, "\n")

	if _, err := imp.ImportReader(context.Background(), strings.NewReader(feed)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := repo.categories[10]; got != "Новое имя" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}
