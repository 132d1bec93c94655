package products

import (
	"strings"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.Errorf(shared.KindValidation, "product name is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return shared.Errorf(shared.KindValidation, "product category is required")
	}
	if p.Price.IsNegative() {
		return shared.Errorf(shared.KindValidation, "price must not be negative")
	}
	if p.Weight < 0 || p.Dimensions.Length < 0 || p.Dimensions.Width < 0 || p.Dimensions.Height < 0 {
		return shared.Errorf(shared.KindValidation, "weight and dimensions must not be negative")
	}
	if p.Quantity < 0 || p.ThresholdLimit < 0 {
		return shared.Errorf(shared.KindValidation, "quantity and threshold must not be negative")
	}
	if p.MfgDate != nil && p.ExpiryDate != nil && p.ExpiryDate.Before(*p.MfgDate) {
		return shared.Errorf(shared.KindValidation, "expiry date precedes manufacturing date")
	}
	return nil
}
