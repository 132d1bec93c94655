package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/inventory"
	jobmetrics "github.com/LifeIsPranav/InventoryMS-BE/internal/jobs"
)

// IntegrityChecker recomputes ledger totals without mutating them.
type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context) ([]inventory.Drift, error)
}

// LedgerIntegrityJob reports inventories whose occupied totals drifted from
// the sum of their holdings.
type LedgerIntegrityJob struct {
	Checker IntegrityChecker
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLedgerIntegrityJob initialises the integrity scan handler.
func NewLedgerIntegrityJob(checker IntegrityChecker, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{Checker: checker, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Checker == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	payload, err := decodeScan(t)
	if err != nil {
		return err
	}
	tracker := j.Metrics.Track(TaskLedgerIntegrity)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	logger := j.logger().With(slog.Time("requested_at", payload.RequestedAt))
	drifts, err := j.Checker.CheckIntegrity(ctx)
	if err != nil {
		logger.Error("ledger integrity scan failed", slog.Any("error", err))
		return err
	}

	var capacity, volume, ceiling int
	for _, d := range drifts {
		logger.Warn("ledger drift detected",
			slog.String("inventory_id", d.InventoryID),
			slog.Float64("capacity_occupied", d.CapacityOccupied),
			slog.Float64("holdings_weight", d.HoldingsWeight),
			slog.Float64("volume_occupied", d.VolumeOccupied),
			slog.Float64("holdings_volume", d.HoldingsVolume),
			slog.Bool("over_ceiling", d.OverCeiling),
		)
		if d.CapacityDrifted() {
			capacity++
		}
		if d.VolumeDrifted() {
			volume++
		}
		if d.OverCeiling {
			ceiling++
		}
	}
	j.Metrics.AddDrift("capacity", capacity)
	j.Metrics.AddDrift("volume", volume)
	j.Metrics.AddDrift("ceiling", ceiling)

	logger.Info("completed ledger integrity scan",
		slog.Int("drifted", len(drifts)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
