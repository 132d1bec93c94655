package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/db"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// RepositoryPort abstracts repository usage for the ledger, reporter and service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the transactional operations. The ForUpdate and
// ForShare variants take row locks held until the transaction ends.
type TxRepository interface {
	InsertInventory(ctx context.Context, inv Inventory) (Inventory, error)
	GetInventory(ctx context.Context, id string) (Inventory, error)
	GetInventoryForUpdate(ctx context.Context, id string) (Inventory, error)
	ListInventories(ctx context.Context) ([]Inventory, error)
	UpdateInventory(ctx context.Context, inv Inventory) (Inventory, error)
	DeleteInventory(ctx context.Context, id string) error

	GetProductForShare(ctx context.Context, id string) (ProductRef, error)
	GetHolding(ctx context.Context, inventoryID, productID string) (Holding, error)
	ListHoldings(ctx context.Context, inventoryID string) ([]Holding, error)
	ListHoldingDetails(ctx context.Context, inventoryID string) ([]HoldingDetail, error)
	SaveHolding(ctx context.Context, inventoryID string, h Holding) error
	DeleteHolding(ctx context.Context, inventoryID, productID string) error

	GetStorageForUpdate(ctx context.Context, id string) (StorageRef, error)
	SetStorageInventory(ctx context.Context, storageID, inventoryID string) error
	ListStorageIDs(ctx context.Context, inventoryID string) ([]string, error)

	ListTotals(ctx context.Context) ([]LedgerTotals, error)
}

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// txAttempts bounds retries of transactions that lost a serialization race
// with a writer in another process.
const txAttempts = 3

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithRetryTx(ctx, r.pool, txAttempts, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const inventoryColumns = `id::text, name, longitude, latitude, total_capacity, total_volume,
	capacity_occupied, volume_occupied, created_at, updated_at`

func scanInventory(row pgx.Row) (Inventory, error) {
	var inv Inventory
	var lng, lat float64
	err := row.Scan(&inv.ID, &inv.Name, &lng, &lat, &inv.TotalCapacity, &inv.TotalVolume,
		&inv.CapacityOccupied, &inv.VolumeOccupied, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Inventory{}, shared.ErrNotFound
		}
		return Inventory{}, err
	}
	inv.Location = NewPoint(lng, lat)
	return inv, nil
}

func (r *txRepository) InsertInventory(ctx context.Context, inv Inventory) (Inventory, error) {
	return scanInventory(r.tx.QueryRow(ctx, `INSERT INTO inventories (name, longitude, latitude, total_capacity, total_volume)
VALUES ($1,$2,$3,$4,$5) RETURNING `+inventoryColumns,
		inv.Name, inv.Location.Longitude(), inv.Location.Latitude(), inv.TotalCapacity, inv.TotalVolume))
}

func (r *txRepository) GetInventory(ctx context.Context, id string) (Inventory, error) {
	return scanInventory(r.tx.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventories WHERE id=$1`, id))
}

func (r *txRepository) GetInventoryForUpdate(ctx context.Context, id string) (Inventory, error) {
	return scanInventory(r.tx.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventories WHERE id=$1 FOR UPDATE`, id))
}

func (r *txRepository) ListInventories(ctx context.Context) ([]Inventory, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+inventoryColumns+` FROM inventories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Inventory{}
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *txRepository) UpdateInventory(ctx context.Context, inv Inventory) (Inventory, error) {
	return scanInventory(r.tx.QueryRow(ctx, `UPDATE inventories SET name=$2, longitude=$3, latitude=$4,
total_capacity=$5, total_volume=$6, capacity_occupied=$7, volume_occupied=$8, updated_at=NOW()
WHERE id=$1 RETURNING `+inventoryColumns,
		inv.ID, inv.Name, inv.Location.Longitude(), inv.Location.Latitude(), inv.TotalCapacity, inv.TotalVolume,
		inv.CapacityOccupied, inv.VolumeOccupied))
}

func (r *txRepository) DeleteInventory(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM inventories WHERE id=$1`, id)
	if err != nil {
		if db.IsCode(err, db.CodeForeignKeyViolation) {
			return shared.Errorf(shared.KindInventoryNotEmpty, "inventory %s still has storage units or products", id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetProductForShare blocks concurrent deletes of the product until commit.
func (r *txRepository) GetProductForShare(ctx context.Context, id string) (ProductRef, error) {
	var p ProductRef
	err := r.tx.QueryRow(ctx, `SELECT id::text, name, category, price, weight, length*width*height FROM products WHERE id=$1 FOR SHARE`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.UnitWeight, &p.UnitVolume)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductRef{}, shared.ErrNotFound
		}
		return ProductRef{}, err
	}
	return p, nil
}

func (r *txRepository) GetHolding(ctx context.Context, inventoryID, productID string) (Holding, error) {
	var h Holding
	err := r.tx.QueryRow(ctx, `SELECT product_id::text, quantity, weight, volume FROM inventory_holdings
WHERE inventory_id=$1 AND product_id=$2 FOR UPDATE`, inventoryID, productID).
		Scan(&h.ProductID, &h.Quantity, &h.Weight, &h.Volume)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Holding{ProductID: productID}, ErrHoldingNotFound
		}
		return Holding{}, err
	}
	return h, nil
}

func (r *txRepository) ListHoldings(ctx context.Context, inventoryID string) ([]Holding, error) {
	rows, err := r.tx.Query(ctx, `SELECT product_id::text, quantity, weight, volume FROM inventory_holdings
WHERE inventory_id=$1 ORDER BY product_id`, inventoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Holding{}
	for rows.Next() {
		var h Holding
		if err := rows.Scan(&h.ProductID, &h.Quantity, &h.Weight, &h.Volume); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *txRepository) ListHoldingDetails(ctx context.Context, inventoryID string) ([]HoldingDetail, error) {
	rows, err := r.tx.Query(ctx, `SELECT p.id::text, p.name, p.category, p.price, p.weight, p.length*p.width*p.height,
h.quantity, h.weight, h.volume
FROM inventory_holdings h
JOIN products p ON p.id = h.product_id
WHERE h.inventory_id=$1
ORDER BY p.name, p.id`, inventoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []HoldingDetail{}
	for rows.Next() {
		var d HoldingDetail
		if err := rows.Scan(&d.Product.ID, &d.Product.Name, &d.Product.Category, &d.Product.Price,
			&d.Product.UnitWeight, &d.Product.UnitVolume, &d.Quantity, &d.Weight, &d.Volume); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *txRepository) SaveHolding(ctx context.Context, inventoryID string, h Holding) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory_holdings (inventory_id, product_id, quantity, weight, volume, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW())
ON CONFLICT (inventory_id, product_id) DO UPDATE SET quantity=EXCLUDED.quantity, weight=EXCLUDED.weight,
volume=EXCLUDED.volume, updated_at=NOW()`, inventoryID, h.ProductID, h.Quantity, h.Weight, h.Volume)
	return err
}

func (r *txRepository) DeleteHolding(ctx context.Context, inventoryID, productID string) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM inventory_holdings WHERE inventory_id=$1 AND product_id=$2`, inventoryID, productID)
	return err
}

func (r *txRepository) GetStorageForUpdate(ctx context.Context, id string) (StorageRef, error) {
	var s StorageRef
	err := r.tx.QueryRow(ctx, `SELECT id::text, COALESCE(inventory_id::text, '') FROM storage_units WHERE id=$1 FOR UPDATE`, id).
		Scan(&s.ID, &s.InventoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StorageRef{}, shared.ErrNotFound
		}
		return StorageRef{}, err
	}
	return s, nil
}

// SetStorageInventory attaches the unit to inventoryID, or detaches it when
// inventoryID is empty.
func (r *txRepository) SetStorageInventory(ctx context.Context, storageID, inventoryID string) error {
	var target any
	if inventoryID != "" {
		target = inventoryID
	}
	_, err := r.tx.Exec(ctx, `UPDATE storage_units SET inventory_id=$2::uuid, updated_at=NOW() WHERE id=$1`, storageID, target)
	return err
}

func (r *txRepository) ListStorageIDs(ctx context.Context, inventoryID string) ([]string, error) {
	rows, err := r.tx.Query(ctx, `SELECT id::text FROM storage_units WHERE inventory_id=$1 ORDER BY id`, inventoryID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *txRepository) ListTotals(ctx context.Context) ([]LedgerTotals, error) {
	rows, err := r.tx.Query(ctx, `SELECT i.id::text, i.total_capacity, i.total_volume, i.capacity_occupied, i.volume_occupied,
COALESCE(SUM(h.weight), 0), COALESCE(SUM(h.volume), 0)
FROM inventories i
LEFT JOIN inventory_holdings h ON h.inventory_id = i.id
GROUP BY i.id
ORDER BY i.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LedgerTotals{}
	for rows.Next() {
		var t LedgerTotals
		if err := rows.Scan(&t.InventoryID, &t.TotalCapacity, &t.TotalVolume, &t.CapacityOccupied, &t.VolumeOccupied,
			&t.HoldingsWeight, &t.HoldingsVolume); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
