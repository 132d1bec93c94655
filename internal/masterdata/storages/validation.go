package storages

import (
	"strings"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

func (s *Service) validate(u StorageUnit) error {
	if strings.TrimSpace(u.LocationID) == "" {
		return shared.Errorf(shared.KindValidation, "location id is required")
	}
	if u.HoldingCapacity < 0 || u.Volume < 0 {
		return shared.Errorf(shared.KindValidation, "capacity and volume must not be negative")
	}
	if u.Dimensions.Length < 0 || u.Dimensions.Width < 0 || u.Dimensions.Height < 0 {
		return shared.Errorf(shared.KindValidation, "dimensions must not be negative")
	}
	return nil
}
