package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductForm is the create/update request body.
type ProductForm struct {
	Name           string          `json:"productName" validate:"required"`
	Category       string          `json:"productCategory" validate:"required"`
	BatchID        string          `json:"batchId"`
	SupplierID     string          `json:"supplierId"`
	Price          decimal.Decimal `json:"price"`
	Weight         float64         `json:"weight" validate:"gte=0"`
	Dimensions     Dimensions      `json:"dimensions"`
	Quantity       int64           `json:"quantity" validate:"gte=0"`
	ThresholdLimit int64           `json:"thresholdLimit" validate:"gte=0"`
	ShelfLifeDays  int32           `json:"shelfLifeDays" validate:"gte=0"`
	Description    string          `json:"description"`
	MfgDate        *time.Time      `json:"mfgDate"`
	ExpiryDate     *time.Time      `json:"expiryDate"`
}

// Product converts the form into a product with the given id.
func (f ProductForm) Product(id string) Product {
	return Product{
		ID:             id,
		Name:           f.Name,
		Category:       f.Category,
		BatchID:        f.BatchID,
		SupplierID:     f.SupplierID,
		Price:          f.Price,
		Weight:         f.Weight,
		Dimensions:     f.Dimensions,
		Quantity:       f.Quantity,
		ThresholdLimit: f.ThresholdLimit,
		ShelfLifeDays:  f.ShelfLifeDays,
		Description:    f.Description,
		MfgDate:        f.MfgDate,
		ExpiryDate:     f.ExpiryDate,
	}
}
