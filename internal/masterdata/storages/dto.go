package storages

// StorageForm is the create/update request body. Volume defaults to the
// product of the dimensions when omitted.
type StorageForm struct {
	LocationID      string     `json:"locationId" validate:"required"`
	Dimensions      Dimensions `json:"dimensions"`
	HoldingCapacity float64    `json:"holdingCapacity" validate:"gte=0"`
	Volume          *float64   `json:"volume" validate:"omitempty,gte=0"`
}

// Unit converts the form into a storage unit with the given id.
func (f StorageForm) Unit(id string) StorageUnit {
	u := StorageUnit{
		ID:              id,
		LocationID:      f.LocationID,
		Dimensions:      f.Dimensions,
		HoldingCapacity: f.HoldingCapacity,
	}
	if f.Volume != nil {
		u.Volume = *f.Volume
	} else {
		u.Volume = f.Dimensions.Length * f.Dimensions.Width * f.Dimensions.Height
	}
	return u
}
