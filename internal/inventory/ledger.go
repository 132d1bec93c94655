package inventory

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// Recorder receives ledger outcomes for metrics.
type Recorder interface {
	LedgerOp(op, outcome string)
	InvariantViolation(field string)
}

type noopRecorder struct{}

func (noopRecorder) LedgerOp(string, string)   {}
func (noopRecorder) InvariantViolation(string) {}

// Ledger is the sole writer of occupied totals and membership. Mutations on
// one inventory are serialised by an in-process lock keyed by inventory id and
// by a row lock on the inventories row, so the read-modify-write of the two
// totals never interleaves with another writer.
type Ledger struct {
	repo     RepositoryPort
	locks    *shared.KeyedMutex
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// NewLedger builds a Ledger. locks may be shared with the Reporter so reads
// observe committed state only.
func NewLedger(repo RepositoryPort, locks *shared.KeyedMutex, logger *slog.Logger, recorder Recorder) *Ledger {
	if locks == nil {
		locks = shared.NewKeyedMutex()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Ledger{repo: repo, locks: locks, logger: logger, recorder: recorder, now: time.Now}
}

// Result is the refreshed snapshot plus the event describing the mutation.
type Result struct {
	Snapshot Snapshot
	Event    LedgerEvent
}

// AddProduct assigns quantity units of a product to an inventory. It commits
// only if both the weight and volume totals stay within the ceilings;
// otherwise it fails with CapacityExceeded and nothing changes.
func (l *Ledger) AddProduct(ctx context.Context, inventoryID, productID string, quantity int64) (Result, error) {
	inventoryID, productID, err := l.parseIDs(inventoryID, productID)
	if err != nil {
		return Result{}, l.done(OpAddProduct, err)
	}
	if quantity <= 0 {
		return Result{}, l.done(OpAddProduct, shared.Errorf(shared.KindInvalidQuantity, "quantity must be a positive integer, got %d", quantity))
	}

	unlock := l.locks.Lock(shared.InventoryLockKey(inventoryID))
	defer unlock()

	var res Result
	err = l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, inventoryID)
		if err != nil {
			return notFound(err, "inventory", inventoryID)
		}
		product, err := tx.GetProductForShare(ctx, productID)
		if err != nil {
			return notFound(err, "product", productID)
		}

		holding, err := tx.GetHolding(ctx, inventoryID, productID)
		if err != nil && !errors.Is(err, ErrHoldingNotFound) {
			return err
		}
		if holding.Quantity > math.MaxInt64-quantity {
			return shared.Errorf(shared.KindInvalidQuantity, "quantity %d overflows the held quantity %d", quantity, holding.Quantity)
		}

		deltaWeight := float64(quantity) * product.UnitWeight
		deltaVolume := float64(quantity) * product.UnitVolume
		newWeight := inv.CapacityOccupied + deltaWeight
		newVolume := inv.VolumeOccupied + deltaVolume
		if exceedsAdding(inv.CapacityOccupied, deltaWeight, inv.TotalCapacity) {
			return shared.Errorf(shared.KindCapacityExceeded,
				"adding %d x %s needs %g kg; occupied %g of %g kg", quantity, product.Name, deltaWeight, inv.CapacityOccupied, inv.TotalCapacity)
		}
		if exceedsAdding(inv.VolumeOccupied, deltaVolume, inv.TotalVolume) {
			return shared.Errorf(shared.KindCapacityExceeded,
				"adding %d x %s needs %g m3; occupied %g of %g m3", quantity, product.Name, deltaVolume, inv.VolumeOccupied, inv.TotalVolume)
		}

		holding.ProductID = productID
		holding.Quantity += quantity
		holding.Weight += deltaWeight
		holding.Volume += deltaVolume
		if err := tx.SaveHolding(ctx, inventoryID, holding); err != nil {
			return err
		}

		inv.CapacityOccupied = math.Min(newWeight, inv.TotalCapacity)
		inv.VolumeOccupied = math.Min(newVolume, inv.TotalVolume)
		snap, err := l.commit(ctx, tx, inv)
		if err != nil {
			return err
		}
		res = Result{Snapshot: snap, Event: LedgerEvent{
			Op:          OpAddProduct,
			InventoryID: inventoryID,
			ProductID:   productID,
			Quantity:    quantity,
			DeltaWeight: deltaWeight,
			DeltaVolume: deltaVolume,
			CommittedAt: l.now().UTC(),
		}}
		return nil
	})
	return res, l.done(OpAddProduct, err)
}

// RemoveProduct releases quantity units of a held product. A nil quantity
// removes the whole holding. Partial removals release the committed weight
// and volume pro rata.
func (l *Ledger) RemoveProduct(ctx context.Context, inventoryID, productID string, quantity *int64) (Result, error) {
	inventoryID, productID, err := l.parseIDs(inventoryID, productID)
	if err != nil {
		return Result{}, l.done(OpRemoveProduct, err)
	}
	if quantity != nil && *quantity <= 0 {
		return Result{}, l.done(OpRemoveProduct, shared.Errorf(shared.KindInvalidQuantity, "quantity must be a positive integer, got %d", *quantity))
	}

	unlock := l.locks.Lock(shared.InventoryLockKey(inventoryID))
	defer unlock()

	var res Result
	err = l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, inventoryID)
		if err != nil {
			return notFound(err, "inventory", inventoryID)
		}
		holding, err := tx.GetHolding(ctx, inventoryID, productID)
		if err != nil {
			if errors.Is(err, ErrHoldingNotFound) {
				return shared.Errorf(shared.KindNotFound, "product %s is not held by inventory %s", productID, inventoryID)
			}
			return err
		}

		remove := holding.Quantity
		if quantity != nil {
			remove = *quantity
		}
		if remove > holding.Quantity {
			return shared.Errorf(shared.KindInvalidQuantity, "cannot remove %d units, only %d held", remove, holding.Quantity)
		}

		deltaWeight, deltaVolume := holding.Weight, holding.Volume
		if remove == holding.Quantity {
			if err := tx.DeleteHolding(ctx, inventoryID, productID); err != nil {
				return err
			}
		} else {
			share := float64(remove) / float64(holding.Quantity)
			deltaWeight = holding.Weight * share
			deltaVolume = holding.Volume * share
			holding.Quantity -= remove
			holding.Weight -= deltaWeight
			holding.Volume -= deltaVolume
			if err := tx.SaveHolding(ctx, inventoryID, holding); err != nil {
				return err
			}
		}

		inv.CapacityOccupied = l.release(inv.ID, "capacity_occupied", inv.CapacityOccupied, deltaWeight)
		inv.VolumeOccupied = l.release(inv.ID, "volume_occupied", inv.VolumeOccupied, deltaVolume)

		snap, err := l.commit(ctx, tx, inv)
		if err != nil {
			return err
		}
		res = Result{Snapshot: snap, Event: LedgerEvent{
			Op:          OpRemoveProduct,
			InventoryID: inventoryID,
			ProductID:   productID,
			Quantity:    remove,
			DeltaWeight: -deltaWeight,
			DeltaVolume: -deltaVolume,
			CommittedAt: l.now().UTC(),
		}}
		return nil
	})
	return res, l.done(OpRemoveProduct, err)
}

// AddStorage attaches a storage unit. Attaching a unit already attached to
// this inventory succeeds without change; a unit attached elsewhere fails with
// StorageAlreadyAttached. Capacity totals are not touched.
func (l *Ledger) AddStorage(ctx context.Context, inventoryID, storageID string) (Result, error) {
	inventoryID, storageID, err := l.parseStorageIDs(inventoryID, storageID)
	if err != nil {
		return Result{}, l.done(OpAddStorage, err)
	}

	unlockInv := l.locks.Lock(shared.InventoryLockKey(inventoryID))
	defer unlockInv()
	unlockStorage := l.locks.Lock(shared.StorageLockKey(storageID))
	defer unlockStorage()

	var res Result
	err = l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, inventoryID)
		if err != nil {
			return notFound(err, "inventory", inventoryID)
		}
		unit, err := tx.GetStorageForUpdate(ctx, storageID)
		if err != nil {
			return notFound(err, "storage unit", storageID)
		}
		noop := unit.InventoryID == inventoryID
		switch {
		case noop:
		case unit.InventoryID != "":
			return shared.Errorf(shared.KindStorageAlreadyAttached, "storage unit %s is attached to inventory %s", storageID, unit.InventoryID)
		default:
			if err := tx.SetStorageInventory(ctx, storageID, inventoryID); err != nil {
				return err
			}
		}
		snap, err := loadSnapshot(ctx, tx, inv)
		if err != nil {
			return err
		}
		res = Result{Snapshot: snap, Event: LedgerEvent{
			Op:            OpAddStorage,
			InventoryID:   inventoryID,
			StorageUnitID: storageID,
			NoOp:          noop,
			CommittedAt:   l.now().UTC(),
		}}
		return nil
	})
	return res, l.done(OpAddStorage, err)
}

// RemoveStorage detaches a storage unit attached to this inventory.
func (l *Ledger) RemoveStorage(ctx context.Context, inventoryID, storageID string) (Result, error) {
	inventoryID, storageID, err := l.parseStorageIDs(inventoryID, storageID)
	if err != nil {
		return Result{}, l.done(OpRemoveStorage, err)
	}

	unlockInv := l.locks.Lock(shared.InventoryLockKey(inventoryID))
	defer unlockInv()
	unlockStorage := l.locks.Lock(shared.StorageLockKey(storageID))
	defer unlockStorage()

	var res Result
	err = l.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, inventoryID)
		if err != nil {
			return notFound(err, "inventory", inventoryID)
		}
		unit, err := tx.GetStorageForUpdate(ctx, storageID)
		if err != nil {
			return notFound(err, "storage unit", storageID)
		}
		if unit.InventoryID != inventoryID {
			return shared.Errorf(shared.KindStorageNotAttached, "storage unit %s is not attached to inventory %s", storageID, inventoryID)
		}
		if err := tx.SetStorageInventory(ctx, storageID, ""); err != nil {
			return err
		}
		snap, err := loadSnapshot(ctx, tx, inv)
		if err != nil {
			return err
		}
		res = Result{Snapshot: snap, Event: LedgerEvent{
			Op:            OpRemoveStorage,
			InventoryID:   inventoryID,
			StorageUnitID: storageID,
			CommittedAt:   l.now().UTC(),
		}}
		return nil
	})
	return res, l.done(OpRemoveStorage, err)
}

// release subtracts delta from total. A result below zero beyond the
// tolerance is an invariant violation: it is logged and clamped.
func (l *Ledger) release(inventoryID, field string, total, delta float64) float64 {
	next := total - delta
	if next >= 0 {
		return next
	}
	if -next > tolerance(total, delta) {
		l.recorder.InvariantViolation(field)
		l.logger.Error("ledger total would go negative",
			slog.String("inventory_id", inventoryID),
			slog.String("field", field),
			slog.Float64("total", total),
			slog.Float64("delta", delta))
	}
	return 0
}

// commit persists the totals and returns the refreshed snapshot. When no
// holdings remain the totals are reset to exactly zero.
func (l *Ledger) commit(ctx context.Context, tx TxRepository, inv Inventory) (Snapshot, error) {
	holdings, err := tx.ListHoldings(ctx, inv.ID)
	if err != nil {
		return Snapshot{}, err
	}
	if len(holdings) == 0 {
		if !withinTolerance(inv.CapacityOccupied, 0) || !withinTolerance(inv.VolumeOccupied, 0) {
			l.recorder.InvariantViolation("empty_residual")
			l.logger.Error("ledger totals non-zero with no holdings",
				slog.String("inventory_id", inv.ID),
				slog.Float64("capacity_occupied", inv.CapacityOccupied),
				slog.Float64("volume_occupied", inv.VolumeOccupied))
		}
		inv.CapacityOccupied, inv.VolumeOccupied = 0, 0
	}
	updated, err := tx.UpdateInventory(ctx, inv)
	if err != nil {
		return Snapshot{}, err
	}
	storageIDs, err := tx.ListStorageIDs(ctx, inv.ID)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(updated, storageIDs, holdings), nil
}

func loadSnapshot(ctx context.Context, tx TxRepository, inv Inventory) (Snapshot, error) {
	holdings, err := tx.ListHoldings(ctx, inv.ID)
	if err != nil {
		return Snapshot{}, err
	}
	storageIDs, err := tx.ListStorageIDs(ctx, inv.ID)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(inv, storageIDs, holdings), nil
}

func (l *Ledger) done(op string, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = string(shared.KindOf(err))
	}
	l.recorder.LedgerOp(op, outcome)
	if err != nil && shared.KindOf(err) == shared.KindInternal {
		l.logger.Error("ledger operation failed", slog.String("op", op), slog.Any("error", err))
	}
	return err
}

func (l *Ledger) parseIDs(inventoryID, productID string) (string, string, error) {
	inv, err := parseID("inventory", inventoryID)
	if err != nil {
		return "", "", err
	}
	prod, err := parseID("product", productID)
	if err != nil {
		return "", "", err
	}
	return inv, prod, nil
}

func (l *Ledger) parseStorageIDs(inventoryID, storageID string) (string, string, error) {
	inv, err := parseID("inventory", inventoryID)
	if err != nil {
		return "", "", err
	}
	unit, err := parseID("storage unit", storageID)
	if err != nil {
		return "", "", err
	}
	return inv, unit, nil
}

func parseID(entity, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", shared.Errorf(shared.KindValidation, "%s id is required", entity)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", shared.Errorf(shared.KindNotFound, "%s %s not found", entity, id)
	}
	return parsed.String(), nil
}

func notFound(err error, entity, id string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.Errorf(shared.KindNotFound, "%s %s not found", entity, id)
	}
	return err
}
