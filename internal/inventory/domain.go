package inventory

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// capacityEpsilon absorbs floating-point drift when comparing running totals
// against ceilings and zero.
const capacityEpsilon = 1e-9

// PointType is the only GeoJSON geometry accepted for inventory locations.
const PointType = "Point"

// Point is a GeoJSON point: coordinates are [longitude, latitude].
type Point struct {
	Type        string     `json:"type" validate:"required,eq=Point"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint builds a point from longitude and latitude.
func NewPoint(lng, lat float64) Point {
	return Point{Type: PointType, Coordinates: [2]float64{lng, lat}}
}

// Longitude returns the first coordinate.
func (p Point) Longitude() float64 { return p.Coordinates[0] }

// Latitude returns the second coordinate.
func (p Point) Latitude() float64 { return p.Coordinates[1] }

// Valid reports whether the point is a GeoJSON point within WGS84 bounds.
func (p Point) Valid() bool {
	lng, lat := p.Longitude(), p.Latitude()
	return p.Type == PointType && lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// Inventory is the persisted inventory row. CapacityOccupied and
// VolumeOccupied are written only by the Ledger.
type Inventory struct {
	ID               string
	Name             string
	Location         Point
	TotalCapacity    float64
	TotalVolume      float64
	CapacityOccupied float64
	VolumeOccupied   float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Holding is the stock of one product assigned to an inventory. Weight and
// Volume are the totals committed for the whole holding, so a full removal
// releases exactly what was added.
type Holding struct {
	ProductID string  `json:"productId"`
	Quantity  int64   `json:"quantity"`
	Weight    float64 `json:"weight"`
	Volume    float64 `json:"volume"`
}

// ProductRef carries the product attributes the ledger and reporter need.
type ProductRef struct {
	ID         string          `json:"id"`
	Name       string          `json:"productName"`
	Category   string          `json:"productCategory"`
	Price      decimal.Decimal `json:"price"`
	UnitWeight float64         `json:"weight"`
	UnitVolume float64         `json:"unitVolume"`
}

// HoldingDetail joins a holding with the current product attributes.
type HoldingDetail struct {
	Product  ProductRef `json:"product"`
	Quantity int64      `json:"quantity"`
	Weight   float64    `json:"weight"`
	Volume   float64    `json:"volume"`
}

// StorageRef is the attachment state of one storage unit.
type StorageRef struct {
	ID          string
	InventoryID string
}

// Snapshot is the externally visible state of an inventory.
type Snapshot struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Location         Point     `json:"inventoryLocation"`
	TotalCapacity    float64   `json:"totalCapacity"`
	TotalVolume      float64   `json:"totalVolume"`
	CapacityOccupied float64   `json:"capacityOccupied"`
	VolumeOccupied   float64   `json:"volumeOccupied"`
	StorageUnitIDs   []string  `json:"storageUnits"`
	Holdings         []Holding `json:"products"`
	StorageCount     int       `json:"storageUnitCount"`
	ProductCount     int       `json:"productCount"`
	HeldQuantity     int64     `json:"heldQuantity"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewSnapshot assembles a snapshot from an inventory and its membership.
func NewSnapshot(inv Inventory, storageIDs []string, holdings []Holding) Snapshot {
	if storageIDs == nil {
		storageIDs = []string{}
	}
	if holdings == nil {
		holdings = []Holding{}
	}
	var held int64
	for _, h := range holdings {
		held += h.Quantity
	}
	return Snapshot{
		ID:               inv.ID,
		Name:             inv.Name,
		Location:         inv.Location,
		TotalCapacity:    inv.TotalCapacity,
		TotalVolume:      inv.TotalVolume,
		CapacityOccupied: inv.CapacityOccupied,
		VolumeOccupied:   inv.VolumeOccupied,
		StorageUnitIDs:   storageIDs,
		Holdings:         holdings,
		StorageCount:     len(storageIDs),
		ProductCount:     len(holdings),
		HeldQuantity:     held,
		UpdatedAt:        inv.UpdatedAt,
	}
}

// Drift describes a mismatch between an inventory's running totals and the
// sum of its committed holdings.
type Drift struct {
	InventoryID      string  `json:"inventoryId"`
	CapacityOccupied float64 `json:"capacityOccupied"`
	HoldingsWeight   float64 `json:"holdingsWeight"`
	VolumeOccupied   float64 `json:"volumeOccupied"`
	HoldingsVolume   float64 `json:"holdingsVolume"`
	OverCeiling      bool    `json:"overCeiling"`
}

// Drifted reports whether either total disagrees beyond the tolerance.
func (d Drift) Drifted() bool {
	return d.CapacityDrifted() || d.VolumeDrifted() || d.OverCeiling
}

// CapacityDrifted reports a weight total that disagrees with the holdings.
func (d Drift) CapacityDrifted() bool {
	return !withinTolerance(d.CapacityOccupied, d.HoldingsWeight)
}

// VolumeDrifted reports a volume total that disagrees with the holdings.
func (d Drift) VolumeDrifted() bool {
	return !withinTolerance(d.VolumeOccupied, d.HoldingsVolume)
}

// LedgerTotals is the per-inventory aggregate used by integrity checks.
type LedgerTotals struct {
	InventoryID      string
	TotalCapacity    float64
	TotalVolume      float64
	CapacityOccupied float64
	VolumeOccupied   float64
	HoldingsWeight   float64
	HoldingsVolume   float64
}

// ErrHoldingNotFound is returned by repositories when no holding row exists.
var ErrHoldingNotFound = errors.New("inventory holding not found")

func withinTolerance(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance(a, b)
}

// tolerance scales the epsilon to the magnitude of the operands.
func tolerance(a, b float64) float64 {
	m := 1.0
	if a > m {
		m = a
	}
	if b > m {
		m = b
	}
	return capacityEpsilon * m
}

func exceeds(value, ceiling float64) bool {
	return value > ceiling+tolerance(value, ceiling)
}

// accumulatedEpsilon bounds the rounding error carried by a running total.
const accumulatedEpsilon = 1e-12

// exceedsAdding reports whether adding delta to occupied overflows ceiling.
// The slack covers a few ulps of rounding in the sum plus the drift already
// carried by occupied; it does not grow with the ceiling.
func exceedsAdding(occupied, delta, ceiling float64) bool {
	total := occupied + delta
	if total <= ceiling {
		return false
	}
	ulp := math.Nextafter(ceiling, math.Inf(1)) - ceiling
	return total-ceiling > accumulatedEpsilon*math.Abs(occupied)+4*ulp
}
