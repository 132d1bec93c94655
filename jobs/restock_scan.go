package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/LifeIsPranav/InventoryMS-BE/internal/jobs"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/products"
)

// RestockLister returns products whose quantity is at or below the threshold.
type RestockLister interface {
	NeedsRestock(ctx context.Context) ([]products.Product, error)
}

// RestockScanJob logs products that need restocking. Delivering alerts is
// left to whatever consumes the logs and the pending gauge.
type RestockScanJob struct {
	Products RestockLister
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewRestockScanJob initialises the restock scan handler.
func NewRestockScanJob(lister RestockLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *RestockScanJob {
	return &RestockScanJob{Products: lister, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *RestockScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Products == nil {
		return errors.New("restock scan: handler not configured")
	}
	if _, err := decodeScan(t); err != nil {
		return err
	}
	tracker := j.Metrics.Track(TaskRestockScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	items, err := j.Products.NeedsRestock(ctx)
	if err != nil {
		logger.Error("restock scan failed", slog.Any("error", err))
		return err
	}
	for _, p := range items {
		logger.Warn("product needs restock",
			slog.String("product_id", p.ID),
			slog.String("product_name", p.Name),
			slog.Int64("quantity", p.Quantity),
			slog.Int64("threshold", p.ThresholdLimit),
		)
	}
	j.Metrics.SetRestockPending(len(items))
	logger.Info("completed restock scan", slog.Int("pending", len(items)))
	return nil
}
