package repository

import "climate-sentinel/internal/models"

// DelhiZones the eight administrative zones the service starts with
func DelhiZones() []models.NewZone {
	return []models.NewZone{
		{Name: "Central Delhi", DensityFactor: 85, WaterDeficit: 45, IndustrialZone: false, Latitude: 28.6519, Longitude: 77.2315},
		{Name: "North Delhi", DensityFactor: 72, WaterDeficit: 52, IndustrialZone: true, Latitude: 28.7041, Longitude: 77.1025},
		{Name: "South Delhi", DensityFactor: 65, WaterDeficit: 38, IndustrialZone: false, Latitude: 28.5355, Longitude: 77.3910},
		{Name: "East Delhi", DensityFactor: 78, WaterDeficit: 55, IndustrialZone: true, Latitude: 28.6692, Longitude: 77.3538},
		{Name: "West Delhi", DensityFactor: 68, WaterDeficit: 48, IndustrialZone: false, Latitude: 28.6519, Longitude: 77.1025},
		{Name: "New Delhi", DensityFactor: 55, WaterDeficit: 35, IndustrialZone: false, Latitude: 28.6139, Longitude: 77.2090},
		{Name: "North East Delhi", DensityFactor: 82, WaterDeficit: 58, IndustrialZone: true, Latitude: 28.7041, Longitude: 77.2750},
		{Name: "South West Delhi", DensityFactor: 60, WaterDeficit: 42, IndustrialZone: false, Latitude: 28.6139, Longitude: 77.0369},
	}
}

// ZoneFrom converts a provisioning payload into a zone record
func ZoneFrom(z models.NewZone) models.Zone {
	return models.Zone{
		Name:           z.Name,
		DensityFactor:  z.DensityFactor,
		WaterDeficit:   z.WaterDeficit,
		IndustrialZone: z.IndustrialZone,
		Latitude:       z.Latitude,
		Longitude:      z.Longitude,
	}
}
