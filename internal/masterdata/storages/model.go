package storages

import "time"

// Dimensions are the physical extents of a storage unit, in metres.
type Dimensions struct {
	Length float64 `json:"length" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

// StorageUnit is a physical container. It belongs to at most one inventory;
// InventoryID is empty when detached. Attachment is changed only by the
// inventory ledger.
type StorageUnit struct {
	ID              string     `json:"id"`
	LocationID      string     `json:"locationId"`
	Dimensions      Dimensions `json:"dimensions"`
	HoldingCapacity float64    `json:"holdingCapacity"`
	Volume          float64    `json:"volume"`
	InventoryID     string     `json:"inventory,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Attached reports whether the unit belongs to an inventory.
func (s StorageUnit) Attached() bool {
	return s.InventoryID != ""
}
