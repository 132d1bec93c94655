package storages

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/shared"
	internalShared "github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]StorageUnit, int, error)
	ListByInventory(ctx context.Context, inventoryID string) ([]StorageUnit, error)
	Get(ctx context.Context, id string) (StorageUnit, error)
	Create(ctx context.Context, unit StorageUnit) (StorageUnit, error)
	Update(ctx context.Context, id string, unit StorageUnit) (StorageUnit, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const storageColumns = `id::text, location_id, length, width, height, holding_capacity, volume,
	COALESCE(inventory_id::text, ''), created_at, updated_at`

func scanUnit(row pgx.Row) (StorageUnit, error) {
	var u StorageUnit
	err := row.Scan(&u.ID, &u.LocationID, &u.Dimensions.Length, &u.Dimensions.Width, &u.Dimensions.Height,
		&u.HoldingCapacity, &u.Volume, &u.InventoryID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StorageUnit{}, internalShared.ErrNotFound
	}
	return u, err
}

func collect(rows pgx.Rows) ([]StorageUnit, error) {
	defer rows.Close()
	var out []StorageUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]StorageUnit, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND location_id ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM storage_units`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	query := `SELECT ` + storageColumns + ` FROM storage_units` + where + ` ORDER BY location_id ` + dir + `, id`
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	units, err := collect(rows)
	return units, total, err
}

func (r *repository) ListByInventory(ctx context.Context, inventoryID string) ([]StorageUnit, error) {
	rows, err := r.db.Query(ctx, `SELECT `+storageColumns+` FROM storage_units WHERE inventory_id = $1 ORDER BY location_id, id`, inventoryID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) Get(ctx context.Context, id string) (StorageUnit, error) {
	return scanUnit(r.db.QueryRow(ctx, `SELECT `+storageColumns+` FROM storage_units WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, u StorageUnit) (StorageUnit, error) {
	return scanUnit(r.db.QueryRow(ctx, `INSERT INTO storage_units
		(location_id, length, width, height, holding_capacity, volume)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+storageColumns,
		u.LocationID, u.Dimensions.Length, u.Dimensions.Width, u.Dimensions.Height, u.HoldingCapacity, u.Volume))
}

// Update rewrites the physical attributes. inventory_id is left to the ledger.
func (r *repository) Update(ctx context.Context, id string, u StorageUnit) (StorageUnit, error) {
	return scanUnit(r.db.QueryRow(ctx, `UPDATE storage_units SET
		location_id = $1, length = $2, width = $3, height = $4, holding_capacity = $5, volume = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+storageColumns,
		u.LocationID, u.Dimensions.Length, u.Dimensions.Width, u.Dimensions.Height, u.HoldingCapacity, u.Volume, id))
}

// Delete removes a detached unit. The inventory_id guard makes a concurrent
// attach lose against the delete or vice versa, never both.
func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM storage_units WHERE id = $1 AND inventory_id IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	unit, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return internalShared.Errorf(internalShared.KindStorageAlreadyAttached, "storage unit %s is attached to inventory %s", id, unit.InventoryID)
}
