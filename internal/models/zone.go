package models

import (
	"fmt"
	"strings"
)

// Zone a fixed administrative zone with static resilience factors
type Zone struct {
	ID             string  `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	DensityFactor  float64 `json:"densityFactor" db:"density_factor"` // 0-100 normalized population density
	WaterDeficit   float64 `json:"waterDeficit" db:"water_deficit"`   // 0-100 percentage water deficit
	IndustrialZone bool    `json:"industrialZone" db:"industrial_zone"`
	Latitude       float64 `json:"latitude" db:"latitude"`
	Longitude      float64 `json:"longitude" db:"longitude"`
}

// NewZone payload for zone provisioning
type NewZone struct {
	Name           string  `json:"name"`
	DensityFactor  float64 `json:"densityFactor"`
	WaterDeficit   float64 `json:"waterDeficit"`
	IndustrialZone bool    `json:"industrialZone"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// Validate checks the provisioning payload
func (z NewZone) Validate() error {
	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("%w: zone name is required", ErrValidation)
	}
	if z.DensityFactor < 0 || z.DensityFactor > 100 {
		return fmt.Errorf("%w: densityFactor must be within [0,100]", ErrValidation)
	}
	if z.WaterDeficit < 0 || z.WaterDeficit > 100 {
		return fmt.Errorf("%w: waterDeficit must be within [0,100]", ErrValidation)
	}
	return nil
}
