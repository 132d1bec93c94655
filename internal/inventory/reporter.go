package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// Utilization expresses occupied totals as percentages of the ceilings. A
// percentage is nil when its ceiling is zero.
type Utilization struct {
	InventoryID      string   `json:"inventoryId"`
	CapacityOccupied float64  `json:"capacityOccupied"`
	TotalCapacity    float64  `json:"totalCapacity"`
	CapacityPct      *float64 `json:"capacityPct"`
	VolumeOccupied   float64  `json:"volumeOccupied"`
	TotalVolume      float64  `json:"totalVolume"`
	VolumePct        *float64 `json:"volumePct"`
}

// CostSummary values current holdings at current product prices.
// AverageCost is nil when nothing is held.
type CostSummary struct {
	InventoryID   string           `json:"inventoryId"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	TotalQuantity int64            `json:"totalQuantity"`
	AverageCost   *decimal.Decimal `json:"averageCost"`
	ProductCount  int              `json:"productCount"`
}

// averageCostPlaces is the rounding applied to the per-unit average.
const averageCostPlaces = 4

// Reporter derives read-only reports from ledger state. It takes the same
// per-inventory lock as the Ledger, and concurrent identical requests share
// one load.
type Reporter struct {
	repo  RepositoryPort
	locks *shared.KeyedMutex
	group singleflight.Group
}

// NewReporter builds a Reporter sharing locks with the Ledger.
func NewReporter(repo RepositoryPort, locks *shared.KeyedMutex) *Reporter {
	if locks == nil {
		locks = shared.NewKeyedMutex()
	}
	return &Reporter{repo: repo, locks: locks}
}

// Utilization reports capacity and volume utilization for an inventory.
func (r *Reporter) Utilization(ctx context.Context, inventoryID string) (Utilization, error) {
	id, err := parseID("inventory", inventoryID)
	if err != nil {
		return Utilization{}, err
	}
	v, err := r.coalesce(ctx, "utilization:"+id, func(ctx context.Context) (any, error) {
		var inv Inventory
		err := r.read(ctx, id, func(ctx context.Context, tx TxRepository) error {
			var err error
			inv, err = tx.GetInventory(ctx, id)
			return notFound(err, "inventory", id)
		})
		if err != nil {
			return Utilization{}, err
		}
		return Utilization{
			InventoryID:      id,
			CapacityOccupied: inv.CapacityOccupied,
			TotalCapacity:    inv.TotalCapacity,
			CapacityPct:      percent(inv.CapacityOccupied, inv.TotalCapacity),
			VolumeOccupied:   inv.VolumeOccupied,
			TotalVolume:      inv.TotalVolume,
			VolumePct:        percent(inv.VolumeOccupied, inv.TotalVolume),
		}, nil
	})
	if err != nil {
		return Utilization{}, err
	}
	return v.(Utilization), nil
}

// CostSummary reports total value and average cost per held unit.
func (r *Reporter) CostSummary(ctx context.Context, inventoryID string) (CostSummary, error) {
	id, err := parseID("inventory", inventoryID)
	if err != nil {
		return CostSummary{}, err
	}
	v, err := r.coalesce(ctx, "cost:"+id, func(ctx context.Context) (any, error) {
		var details []HoldingDetail
		err := r.read(ctx, id, func(ctx context.Context, tx TxRepository) error {
			if _, err := tx.GetInventory(ctx, id); err != nil {
				return notFound(err, "inventory", id)
			}
			var err error
			details, err = tx.ListHoldingDetails(ctx, id)
			return err
		})
		if err != nil {
			return CostSummary{}, err
		}
		return summarize(id, details), nil
	})
	if err != nil {
		return CostSummary{}, err
	}
	return v.(CostSummary), nil
}

// coalesce shares one read among concurrent callers for key. The shared read
// is detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx is done.
func (r *Reporter) coalesce(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Reporter) read(ctx context.Context, id string, fn func(context.Context, TxRepository) error) error {
	unlock := r.locks.Lock(shared.InventoryLockKey(id))
	defer unlock()
	return r.repo.WithTx(ctx, fn)
}

func summarize(id string, details []HoldingDetail) CostSummary {
	total := decimal.Zero
	var qty int64
	for _, d := range details {
		total = total.Add(d.Product.Price.Mul(decimal.NewFromInt(d.Quantity)))
		qty += d.Quantity
	}
	summary := CostSummary{InventoryID: id, TotalValue: total, TotalQuantity: qty, ProductCount: len(details)}
	if qty > 0 {
		avg := total.DivRound(decimal.NewFromInt(qty), averageCostPlaces)
		summary.AverageCost = &avg
	}
	return summary
}

func percent(occupied, ceiling float64) *float64 {
	if ceiling <= 0 {
		return nil
	}
	pct := occupied / ceiling * 100
	return &pct
}
