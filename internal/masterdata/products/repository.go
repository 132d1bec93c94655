package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/shared"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/db"
	internalShared "github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id string) (Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id string, product Product) (Product, error)
	Delete(ctx context.Context, id string) error
	NeedsRestock(ctx context.Context) ([]Product, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id::text, name, category, batch_id, supplier_id, price, weight, length, width, height,
	quantity, threshold_limit, shelf_life_days, description, mfg_date, expiry_date, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.BatchID, &p.SupplierID, &p.Price, &p.Weight,
		&p.Dimensions.Length, &p.Dimensions.Width, &p.Dimensions.Height,
		&p.Quantity, &p.ThresholdLimit, &p.ShelfLifeDays, &p.Description, &p.MfgDate, &p.ExpiryDate,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, internalShared.ErrNotFound
	}
	return p, err
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Category != "" {
		args = append(args, filters.Category)
		where += ` AND lower(category) = lower($` + strconv.Itoa(len(args)) + `)`
	}
	if filters.Supplier != "" {
		args = append(args, filters.Supplier)
		where += ` AND supplier_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR batch_id ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	products, err := collect(rows)
	return products, total, err
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *repository) GetMany(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	products, err := collect(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	return scanProduct(r.db.QueryRow(ctx, `INSERT INTO products
		(name, category, batch_id, supplier_id, price, weight, length, width, height,
		 quantity, threshold_limit, shelf_life_days, description, mfg_date, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		RETURNING `+productColumns,
		p.Name, p.Category, p.BatchID, p.SupplierID, p.Price, p.Weight,
		p.Dimensions.Length, p.Dimensions.Width, p.Dimensions.Height,
		p.Quantity, p.ThresholdLimit, p.ShelfLifeDays, p.Description, p.MfgDate, p.ExpiryDate, now))
}

func (r *repository) Update(ctx context.Context, id string, p Product) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `UPDATE products SET
		name = $1, category = $2, batch_id = $3, supplier_id = $4, price = $5, weight = $6,
		length = $7, width = $8, height = $9, quantity = $10, threshold_limit = $11,
		shelf_life_days = $12, description = $13, mfg_date = $14, expiry_date = $15, updated_at = NOW()
		WHERE id = $16
		RETURNING `+productColumns,
		p.Name, p.Category, p.BatchID, p.SupplierID, p.Price, p.Weight,
		p.Dimensions.Length, p.Dimensions.Width, p.Dimensions.Height,
		p.Quantity, p.ThresholdLimit, p.ShelfLifeDays, p.Description, p.MfgDate, p.ExpiryDate, id))
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsCode(err, db.CodeForeignKeyViolation) {
			return internalShared.Errorf(internalShared.KindProductInUse, "product %s is still held by an inventory", id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return internalShared.ErrNotFound
	}
	return nil
}

func (r *repository) NeedsRestock(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE quantity <= threshold_limit ORDER BY quantity ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "name", "category", "price", "weight", "quantity", "created_at":
		return sortBy + " " + dir
	default:
		return "name " + dir
	}
}
