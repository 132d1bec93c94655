package inventory

import "time"

// Ledger operation names used for audit actions and metric labels.
const (
	OpAddProduct    = "add_product"
	OpRemoveProduct = "remove_product"
	OpAddStorage    = "add_storage"
	OpRemoveStorage = "remove_storage"
)

// LedgerEvent describes one committed ledger mutation.
type LedgerEvent struct {
	Op            string
	InventoryID   string
	ProductID     string
	StorageUnitID string
	Quantity      int64
	DeltaWeight   float64
	DeltaVolume   float64
	NoOp          bool
	CommittedAt   time.Time
}

// Meta flattens the event for audit storage.
func (e LedgerEvent) Meta() map[string]any {
	meta := map[string]any{"op": e.Op}
	if e.ProductID != "" {
		meta["product_id"] = e.ProductID
		meta["quantity"] = e.Quantity
		meta["delta_weight"] = e.DeltaWeight
		meta["delta_volume"] = e.DeltaVolume
	}
	if e.StorageUnitID != "" {
		meta["storage_unit_id"] = e.StorageUnitID
	}
	if e.NoOp {
		meta["noop"] = true
	}
	return meta
}
