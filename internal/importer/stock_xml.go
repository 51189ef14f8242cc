package importer

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/as-electrica/storefront-backend/pkg/logger"
)

// StockStats summarizes one warehouse stock import pass.
type StockStats struct {
	Updated int
	Denied  int
}

type stockWriter interface {
	UpdateStock(ctx context.Context, id int64, warehouse1, warehouse2 int) error
}

// StockImporter consumes the warehouse stock XML export. Only products
// already present in the catalog are touched; unknown ids are counted as
// denied, matching products the pricing feed never delivered.
type StockImporter struct {
	repo stockWriter
	logg *logger.Logger
}

// NewStockImporter builds the stock feed importer.
func NewStockImporter(repo stockWriter, logg *logger.Logger) (*StockImporter, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &StockImporter{repo: repo, logg: logg}, nil
}

type stockDocument struct {
	XMLName xml.Name    `xml:""`
	Items   []stockItem `xml:"nom"`
}

type stockItem struct {
	ID     string       `xml:"id,attr"`
	Name   string       `xml:"name,attr"`
	Counts []stockCount `xml:"whs>scl"`
}

type stockCount struct {
	Count string `xml:"count,attr"`
}

// ImportFile decodes the cp1251 stock file and applies it to the catalog.
// The export is always cp1251 whether or not the prolog says so, so the
// whole stream is decoded up front.
func (i *StockImporter) ImportFile(ctx context.Context, path string) (StockStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return StockStats{}, fmt.Errorf("open stock feed: %w", err)
	}
	defer file.Close()

	return i.ImportReader(ctx, charmap.Windows1251.NewDecoder().Reader(file))
}

// ImportReader applies an already-decoded XML stock stream. Any charset the
// prolog still declares is ignored: the bytes are UTF-8 by the time the
// parser sees them.
func (i *StockImporter) ImportReader(ctx context.Context, r io.Reader) (StockStats, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var doc stockDocument
	if err := decoder.Decode(&doc); err != nil {
		return StockStats{}, fmt.Errorf("parse stock feed: %w", err)
	}

	var stats StockStats
	for _, item := range doc.Items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		i.applyItem(ctx, item, &stats)
	}
	return stats, nil
}

func (i *StockImporter) applyItem(ctx context.Context, item stockItem, stats *StockStats) {
	id, err := strconv.ParseInt(strings.TrimSpace(item.ID), 10, 64)
	if err != nil {
		stats.Denied++
		return
	}
	if len(item.Counts) < 2 {
		stats.Denied++
		return
	}
	warehouse1, err1 := strconv.Atoi(strings.TrimSpace(item.Counts[0].Count))
	warehouse2, err2 := strconv.Atoi(strings.TrimSpace(item.Counts[1].Count))
	if err1 != nil || err2 != nil {
		stats.Denied++
		return
	}

	if err := i.repo.UpdateStock(ctx, id, warehouse1, warehouse2); err != nil {
		if err == ErrProductMissing {
			stats.Denied++
			return
		}
		stats.Denied++
		i.logg.Error(i.logg.WithField(ctx, "product_id", id), "stock update failed", err)
		return
	}
	stats.Updated++
}
