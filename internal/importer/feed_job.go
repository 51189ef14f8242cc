package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/logger"
	"github.com/as-electrica/storefront-backend/pkg/metrics"
)

const (
	jobName           = "feed-import"
	pricingSourceName = "pricing"
	stockSourceName   = "stock"
)

// FeedJob runs the full feed cycle: pricing first so new products exist
// before the stock file references them. Source files are consumed — each
// one is deleted once its pass completes.
type FeedJob struct {
	dir         string
	pricingFile string
	stockFile   string
	pricing     *PricingImporter
	stock       *StockImporter
	metrics     *metrics.ImportMetrics
	logg        *logger.Logger
}

// NewFeedJob builds the import job from configuration.
func NewFeedJob(cfg config.ImporterConfig, pricing *PricingImporter, stock *StockImporter, m *metrics.ImportMetrics, logg *logger.Logger) (*FeedJob, error) {
	if pricing == nil || stock == nil {
		return nil, fmt.Errorf("importers are required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &FeedJob{
		dir:         cfg.Dir,
		pricingFile: cfg.PricingFile,
		stockFile:   cfg.StockFile,
		pricing:     pricing,
		stock:       stock,
		metrics:     m,
		logg:        logg,
	}, nil
}

// Name implements cron.Job.
func (j *FeedJob) Name() string {
	return jobName
}

// Run implements cron.Job. A pricing failure does not skip the stock pass:
// stock rows for unknown products are counted as denied and retried on the
// next cycle, so running both surfaces every problem in one report.
func (j *FeedJob) Run(ctx context.Context) error {
	err := j.runPricing(ctx)
	return multierr.Append(err, j.runStock(ctx))
}

func (j *FeedJob) runPricing(ctx context.Context) error {
	path := filepath.Join(j.dir, j.pricingFile)
	fileCtx := j.logg.WithField(ctx, "file", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		j.logg.Info(fileCtx, "no pricing feed to process")
		return nil
	}

	j.logg.Info(fileCtx, "pricing import started")
	stats, err := j.pricing.ImportFile(ctx, path)
	if err != nil {
		return fmt.Errorf("pricing import: %w", err)
	}

	j.metrics.AddRows(pricingSourceName, stats.Applied())
	j.metrics.AddSkipped(pricingSourceName, stats.Skipped)
	statsCtx := j.logg.WithFields(fileCtx, map[string]any{
		"categories": stats.Categories,
		"products":   stats.Products,
		"skipped":    stats.Skipped,
	})
	j.logg.Info(statsCtx, "pricing import finished")

	j.removeSource(fileCtx, path)
	return nil
}

func (j *FeedJob) runStock(ctx context.Context) error {
	path := filepath.Join(j.dir, j.stockFile)
	fileCtx := j.logg.WithField(ctx, "file", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		j.logg.Info(fileCtx, "no stock feed to process")
		return nil
	}

	j.logg.Info(fileCtx, "stock import started")
	stats, err := j.stock.ImportFile(ctx, path)
	if err != nil {
		return fmt.Errorf("stock import: %w", err)
	}

	j.metrics.AddRows(stockSourceName, stats.Updated)
	j.metrics.AddDenied(stockSourceName, stats.Denied)
	statsCtx := j.logg.WithFields(fileCtx, map[string]any{
		"updated": stats.Updated,
		"denied":  stats.Denied,
	})
	j.logg.Info(statsCtx, "stock import finished")

	j.removeSource(fileCtx, path)
	return nil
}

// removeSource consumes a processed feed file. Deletion failure is logged
// but never fails the run: the next cycle simply reprocesses the file.
func (j *FeedJob) removeSource(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		j.logg.Error(ctx, "failed to remove processed feed file", err)
	}
}
