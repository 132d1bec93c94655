package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dimensions are the physical extents of one unit, in metres.
type Dimensions struct {
	Length float64 `json:"length" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

// Volume returns length × width × height.
func (d Dimensions) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Product represents a product entity. Weight is per unit in kilograms and
// Quantity is the global stock on hand, independent of inventory holdings.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"productName"`
	Category       string          `json:"productCategory"`
	BatchID        string          `json:"batchId,omitempty"`
	SupplierID     string          `json:"supplierId,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Weight         float64         `json:"weight"`
	Dimensions     Dimensions      `json:"dimensions"`
	Quantity       int64           `json:"quantity"`
	ThresholdLimit int64           `json:"thresholdLimit"`
	ShelfLifeDays  int32           `json:"shelfLifeDays,omitempty"`
	Description    string          `json:"description,omitempty"`
	MfgDate        *time.Time      `json:"mfgDate,omitempty"`
	ExpiryDate     *time.Time      `json:"expiryDate,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// UnitVolume is the volume one unit occupies.
func (p Product) UnitVolume() float64 {
	return p.Dimensions.Volume()
}

// NeedsRestock reports whether stock on hand is at or below the threshold.
func (p Product) NeedsRestock() bool {
	return p.Quantity <= p.ThresholdLimit
}
