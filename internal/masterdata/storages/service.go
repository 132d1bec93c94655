package storages

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/shared"
	internalShared "github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// Auditor records mutations.
type Auditor interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

type Service struct {
	repo   Repository
	audit  Auditor
	logger *slog.Logger
}

func NewService(repo Repository, audit Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]StorageUnit, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

// ListByInventory returns the units attached to inventoryID.
func (s *Service) ListByInventory(ctx context.Context, inventoryID string) ([]StorageUnit, error) {
	return s.repo.ListByInventory(ctx, inventoryID)
}

func (s *Service) Get(ctx context.Context, id string) (StorageUnit, error) {
	id, err := parseID(id)
	if err != nil {
		return StorageUnit{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, unit StorageUnit) (StorageUnit, error) {
	if err := s.validate(unit); err != nil {
		return StorageUnit{}, err
	}
	created, err := s.repo.Create(ctx, unit)
	if err != nil {
		return StorageUnit{}, err
	}
	s.record(ctx, "storage.create", created.ID, map[string]any{"location_id": created.LocationID})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, unit StorageUnit) (StorageUnit, error) {
	id, err := parseID(id)
	if err != nil {
		return StorageUnit{}, err
	}
	if err := s.validate(unit); err != nil {
		return StorageUnit{}, err
	}
	updated, err := s.repo.Update(ctx, id, unit)
	if err != nil {
		return StorageUnit{}, err
	}
	s.record(ctx, "storage.update", id, map[string]any{"location_id": updated.LocationID})
	return updated, nil
}

// Delete removes a storage unit. Units still attached to an inventory are
// rejected with StorageAlreadyAttached.
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "storage.delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	caller, _ := internalShared.CallerFromContext(ctx)
	if err := s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  caller.UserID,
		Action:   action,
		Entity:   "storage_unit",
		EntityID: id,
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit storage", slog.String("action", action), slog.Any("error", err))
	}
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", internalShared.Errorf(internalShared.KindNotFound, "storage unit %q not found", id)
	}
	return parsed.String(), nil
}
