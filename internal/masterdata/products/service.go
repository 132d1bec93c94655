package products

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

// Idempotency guards against replayed create requests.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

const idempotencyModule = "products"

type Service struct {
	repo        Repository
	audit       Auditor
	idempotency Idempotency
	logger      *slog.Logger
}

// NewService builds the products service. audit and idempotency may be nil.
func NewService(repo Repository, audit Auditor, idempotency Idempotency, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, idempotency: idempotency, logger: logger}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

// ByCategory lists every product in category, case-insensitively.
func (s *Service) ByCategory(ctx context.Context, category string, filters shared.ListFilters) ([]Product, int, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, 0, internalShared.Errorf(internalShared.KindValidation, "category is required")
	}
	filters.Category = category
	return s.repo.List(ctx, filters.Normalize())
}

// BySupplier lists every product sourced from supplierID.
func (s *Service) BySupplier(ctx context.Context, supplierID string, filters shared.ListFilters) ([]Product, int, error) {
	supplierID = strings.TrimSpace(supplierID)
	if supplierID == "" {
		return nil, 0, internalShared.Errorf(internalShared.KindValidation, "supplier is required")
	}
	filters.Supplier = supplierID
	return s.repo.List(ctx, filters.Normalize())
}

// NeedsRestock lists products whose stock on hand is at or below their threshold.
func (s *Service) NeedsRestock(ctx context.Context) ([]Product, error) {
	return s.repo.NeedsRestock(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	id, err := parseID(id)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// GetMany resolves products by id. Unknown ids are absent from the result.
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if parsed, err := parseID(id); err == nil {
			valid = append(valid, parsed)
		}
	}
	return s.repo.GetMany(ctx, valid)
}

// Create validates and persists a product. A non-empty idempotencyKey makes a
// replay of the same request fail with a duplicate error.
func (s *Service) Create(ctx context.Context, product Product, idempotencyKey string) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, idempotencyModule); err != nil {
			return Product{}, err
		}
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if idempotencyKey != "" && s.idempotency != nil {
			if delErr := s.idempotency.Delete(ctx, idempotencyKey, idempotencyModule); delErr != nil {
				s.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		return Product{}, err
	}
	s.record(ctx, "product.create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, product Product) (Product, error) {
	id, err := parseID(id)
	if err != nil {
		return Product{}, err
	}
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, id, product)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "product.update", id, map[string]any{"name": updated.Name})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "product.delete", id, nil)
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
		Entity:   "product",
		EntityID: id,
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit product", slog.String("action", action), slog.Any("error", err))
	}
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", internalShared.Errorf(internalShared.KindNotFound, "product %q not found", id)
	}
	return parsed.String(), nil
}
