package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates inventory lifecycle, ledger mutations and reports.
type Service struct {
	repo     RepositoryPort
	ledger   *Ledger
	reporter *Reporter
	locks    *shared.KeyedMutex
	audit    AuditPort
	logger   *slog.Logger
}

// ServiceConfig groups optional collaborators.
type ServiceConfig struct {
	Audit    AuditPort
	Recorder Recorder
	Logger   *slog.Logger
}

// NewService builds Service with a Ledger and Reporter sharing one lock table.
func NewService(repo RepositoryPort, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locks := shared.NewKeyedMutex()
	return &Service{
		repo:     repo,
		ledger:   NewLedger(repo, locks, logger, cfg.Recorder),
		reporter: NewReporter(repo, locks),
		locks:    locks,
		audit:    cfg.Audit,
		logger:   logger,
	}
}

// CreateInput describes a new inventory.
type CreateInput struct {
	Name          string
	Location      Point
	TotalCapacity float64
	TotalVolume   float64
}

// UpdateInput replaces the configurable attributes of an inventory.
type UpdateInput = CreateInput

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return shared.Errorf(shared.KindValidation, "inventory name is required")
	}
	if !in.Location.Valid() {
		return shared.Errorf(shared.KindValidation, "inventory location must be a Point with [longitude, latitude] in range")
	}
	if in.TotalCapacity < 0 || in.TotalVolume < 0 {
		return shared.Errorf(shared.KindValidation, "total capacity and volume must not be negative")
	}
	return nil
}

// Create registers an inventory with zero occupied totals and no members.
func (s *Service) Create(ctx context.Context, in CreateInput) (Snapshot, error) {
	if err := in.validate(); err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.InsertInventory(ctx, Inventory{
			Name:          strings.TrimSpace(in.Name),
			Location:      in.Location,
			TotalCapacity: in.TotalCapacity,
			TotalVolume:   in.TotalVolume,
		})
		if err != nil {
			return err
		}
		snap = NewSnapshot(inv, nil, nil)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.record(ctx, "inventory.create", snap.ID, map[string]any{
		"name":           snap.Name,
		"total_capacity": snap.TotalCapacity,
		"total_volume":   snap.TotalVolume,
	})
	return snap, nil
}

// Update changes name, location and ceilings. A ceiling below the occupied
// total is rejected with CapacityExceeded.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Snapshot, error) {
	id, err := parseID("inventory", id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := in.validate(); err != nil {
		return Snapshot{}, err
	}

	unlock := s.locks.Lock(shared.InventoryLockKey(id))
	defer unlock()

	var snap Snapshot
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "inventory", id)
		}
		if exceedsAdding(inv.CapacityOccupied, 0, in.TotalCapacity) {
			return shared.Errorf(shared.KindCapacityExceeded, "total capacity %g is below the occupied %g kg", in.TotalCapacity, inv.CapacityOccupied)
		}
		if exceedsAdding(inv.VolumeOccupied, 0, in.TotalVolume) {
			return shared.Errorf(shared.KindCapacityExceeded, "total volume %g is below the occupied %g m3", in.TotalVolume, inv.VolumeOccupied)
		}
		inv.Name = strings.TrimSpace(in.Name)
		inv.Location = in.Location
		inv.TotalCapacity = in.TotalCapacity
		inv.TotalVolume = in.TotalVolume
		updated, err := tx.UpdateInventory(ctx, inv)
		if err != nil {
			return err
		}
		snap, err = loadSnapshot(ctx, tx, updated)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	s.record(ctx, "inventory.update", id, map[string]any{
		"name":           snap.Name,
		"total_capacity": snap.TotalCapacity,
		"total_volume":   snap.TotalVolume,
	})
	return snap, nil
}

// Delete removes an inventory that has no storage units and no holdings.
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := parseID("inventory", id)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(shared.InventoryLockKey(id))
	defer unlock()

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "inventory", id)
		}
		snap, err := loadSnapshot(ctx, tx, inv)
		if err != nil {
			return err
		}
		if snap.StorageCount > 0 || snap.ProductCount > 0 {
			return shared.Errorf(shared.KindInventoryNotEmpty,
				"inventory %s still has %d storage units and %d products", id, snap.StorageCount, snap.ProductCount)
		}
		return tx.DeleteInventory(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "inventory.delete", id, nil)
	return nil
}

// Get returns the snapshot of one inventory.
func (s *Service) Get(ctx context.Context, id string) (Snapshot, error) {
	id, err := parseID("inventory", id)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventory(ctx, id)
		if err != nil {
			return notFound(err, "inventory", id)
		}
		snap, err = loadSnapshot(ctx, tx, inv)
		return err
	})
	return snap, err
}

// List returns snapshots of every inventory ordered by name.
func (s *Service) List(ctx context.Context) ([]Snapshot, error) {
	var out []Snapshot
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		invs, err := tx.ListInventories(ctx)
		if err != nil {
			return err
		}
		out = make([]Snapshot, 0, len(invs))
		for _, inv := range invs {
			snap, err := loadSnapshot(ctx, tx, inv)
			if err != nil {
				return err
			}
			out = append(out, snap)
		}
		return nil
	})
	return out, err
}

// Products lists holdings joined with current product attributes.
func (s *Service) Products(ctx context.Context, id string) ([]HoldingDetail, error) {
	id, err := parseID("inventory", id)
	if err != nil {
		return nil, err
	}
	var details []HoldingDetail
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetInventory(ctx, id); err != nil {
			return notFound(err, "inventory", id)
		}
		var err error
		details, err = tx.ListHoldingDetails(ctx, id)
		return err
	})
	return details, err
}

// AddProduct delegates to the Ledger and audits the result.
func (s *Service) AddProduct(ctx context.Context, inventoryID, productID string, quantity int64) (Snapshot, error) {
	return s.audited(ctx, func() (Result, error) {
		return s.ledger.AddProduct(ctx, inventoryID, productID, quantity)
	})
}

// RemoveProduct delegates to the Ledger and audits the result.
func (s *Service) RemoveProduct(ctx context.Context, inventoryID, productID string, quantity *int64) (Snapshot, error) {
	return s.audited(ctx, func() (Result, error) {
		return s.ledger.RemoveProduct(ctx, inventoryID, productID, quantity)
	})
}

// AddStorage delegates to the Ledger and audits the result.
func (s *Service) AddStorage(ctx context.Context, inventoryID, storageID string) (Snapshot, error) {
	return s.audited(ctx, func() (Result, error) {
		return s.ledger.AddStorage(ctx, inventoryID, storageID)
	})
}

// RemoveStorage delegates to the Ledger and audits the result.
func (s *Service) RemoveStorage(ctx context.Context, inventoryID, storageID string) (Snapshot, error) {
	return s.audited(ctx, func() (Result, error) {
		return s.ledger.RemoveStorage(ctx, inventoryID, storageID)
	})
}

// Utilization delegates to the Reporter.
func (s *Service) Utilization(ctx context.Context, id string) (Utilization, error) {
	return s.reporter.Utilization(ctx, id)
}

// CostSummary delegates to the Reporter.
func (s *Service) CostSummary(ctx context.Context, id string) (CostSummary, error) {
	return s.reporter.CostSummary(ctx, id)
}

// CheckIntegrity recomputes every inventory's totals from its committed
// holdings and returns the inventories that disagree. It never mutates.
func (s *Service) CheckIntegrity(ctx context.Context) ([]Drift, error) {
	var drifts []Drift
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		totals, err := tx.ListTotals(ctx)
		if err != nil {
			return err
		}
		for _, t := range totals {
			d := Drift{
				InventoryID:      t.InventoryID,
				CapacityOccupied: t.CapacityOccupied,
				HoldingsWeight:   t.HoldingsWeight,
				VolumeOccupied:   t.VolumeOccupied,
				HoldingsVolume:   t.HoldingsVolume,
				OverCeiling:      exceeds(t.CapacityOccupied, t.TotalCapacity) || exceeds(t.VolumeOccupied, t.TotalVolume),
			}
			if d.Drifted() {
				drifts = append(drifts, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inventory: integrity: %w", err)
	}
	return drifts, nil
}

func (s *Service) audited(ctx context.Context, op func() (Result, error)) (Snapshot, error) {
	res, err := op()
	if err != nil {
		return Snapshot{}, err
	}
	s.record(ctx, "inventory:"+res.Event.Op, res.Event.InventoryID, res.Event.Meta())
	return res.Snapshot, nil
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	caller, _ := shared.CallerFromContext(ctx)
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   action,
		Entity:   "inventory",
		EntityID: id,
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit inventory", slog.String("action", action), slog.Any("error", err))
	}
}
