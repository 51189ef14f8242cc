package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/as-electrica/storefront-backend/pkg/logger"
)

// Pricing feed field layout. The upstream till export carries dozens of
// columns; only these are meaningful for the catalog.
const (
	fieldID      = 0
	fieldName    = 2
	fieldPrice   = 4
	fieldParent  = 15
	fieldArticle = 25
	minFields    = fieldArticle + 1
)

var (
	leadingParens = regexp.MustCompile(`^\([^)]+\)\s*`)
	allParens     = regexp.MustCompile(`\([^)]+\)\.*`)
)

// PricingStats summarizes one pricing import pass.
type PricingStats struct {
	Categories int
	Products   int
	Skipped    int
}

// Applied returns the number of rows that reached the catalog.
func (s PricingStats) Applied() int {
	return s.Categories + s.Products
}

type catalogWriter interface {
	UpsertCategory(ctx context.Context, id int64, name string) error
	UpsertProduct(ctx context.Context, id int64, title, article string, price decimal.Decimal, categoryID int64) error
}

// PricingImporter consumes the semicolon-delimited till export. A row with an
// empty article and price is a category group; everything else is a product.
type PricingImporter struct {
	repo catalogWriter
	logg *logger.Logger
}

// NewPricingImporter builds the pricing feed importer.
func NewPricingImporter(repo catalogWriter, logg *logger.Logger) (*PricingImporter, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &PricingImporter{repo: repo, logg: logg}, nil
}

// ImportFile decodes the cp1251 feed file and applies it to the catalog.
func (i *PricingImporter) ImportFile(ctx context.Context, path string) (PricingStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return PricingStats{}, fmt.Errorf("open pricing feed: %w", err)
	}
	defer file.Close()

	return i.ImportReader(ctx, charmap.Windows1251.NewDecoder().Reader(file))
}

// ImportReader applies an already-decoded feed stream. Malformed rows are
// logged and skipped; only infrastructure failures abort the pass.
func (i *PricingImporter) ImportReader(ctx context.Context, r io.Reader) (PricingStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var stats PricingStats
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Skipped++
			i.logg.Warn(i.logg.WithField(ctx, "line", line), "unreadable pricing row")
			line++
			continue
		}
		line++

		if len(row) < minFields {
			stats.Skipped++
			continue
		}
		i.applyRow(ctx, row, &stats)
	}
	return stats, nil
}

func (i *PricingImporter) applyRow(ctx context.Context, row []string, stats *PricingStats) {
	rowCtx := i.logg.WithField(ctx, "feed_id", row[fieldID])

	id, err := strconv.ParseInt(strings.TrimSpace(row[fieldID]), 10, 64)
	if err != nil {
		stats.Skipped++
		i.logg.Warn(rowCtx, "pricing row has non-numeric id")
		return
	}

	name := leadingParens.ReplaceAllString(row[fieldName], "")
	if len([]rune(name)) < 2 {
		stats.Skipped++
		return
	}

	article := row[fieldArticle]
	price := row[fieldPrice]

	if article == "" && price == "" {
		name = allParens.ReplaceAllString(name, "")
		if err := i.repo.UpsertCategory(ctx, id, name); err != nil {
			stats.Skipped++
			i.logg.Error(rowCtx, "category upsert failed", err)
			return
		}
		stats.Categories++
		return
	}

	parentID, err := strconv.ParseInt(strings.TrimSpace(row[fieldParent]), 10, 64)
	if err != nil {
		stats.Skipped++
		i.logg.Warn(rowCtx, "product row has non-numeric parent id")
		return
	}
	parsedPrice, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		stats.Skipped++
		i.logg.Warn(rowCtx, "product row has unparseable price")
		return
	}

	if err := i.repo.UpsertProduct(ctx, id, name, article, parsedPrice, parentID); err != nil {
		stats.Skipped++
		if err == ErrCategoryMissing {
			i.logg.Warn(rowCtx, "product row references unknown category")
		} else {
			i.logg.Error(rowCtx, "product upsert failed", err)
		}
		return
	}
	stats.Products++
}
