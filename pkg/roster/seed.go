package roster

import "github.com/sustactical/squadlink/pkg/models"

// Seed returns the demonstration squad.
func Seed() []models.Subject {
	return []models.Subject{
		{
			ID: "ARMY-701", Rank: "Major", Name: "Vikram Singh", Unit: "13 JAK Rifles",
			Status:      models.StatusActive,
			Location:    models.Location{Lat: 34.2268, Lng: 77.5619, Alt: 3500, Accuracy: 3},
			Vitals:      models.Vitals{HeartRate: 82, Temperature: 36.8, SpO2: 98, Hydration: 85},
			Environment: models.Environment{ExternalTemp: -5, O2Level: 20.9, Radiation: 0.12, ToxicGas: 0},
			Power:       models.PowerStatus{BatteryLevel: 92, HarvestingRate: 45, Source: models.PowerKinetic},
		},
		{
			ID: "ARMY-842", Rank: "Subedar", Name: "Amit Kumar", Unit: "Para SF",
			Status:      models.StatusActive,
			Location:    models.Location{Lat: 34.2312, Lng: 77.5688, Alt: 3510, Accuracy: 5},
			Vitals:      models.Vitals{HeartRate: 95, Temperature: 37.2, SpO2: 96, Hydration: 78},
			Environment: models.Environment{ExternalTemp: -4, O2Level: 20.9, Radiation: 0.15, ToxicGas: 5},
			Power:       models.PowerStatus{BatteryLevel: 78, HarvestingRate: 30, Source: models.PowerThermal},
		},
		{
			ID: "ARMY-112", Rank: "Havildar", Name: "Rohan Mehra", Unit: "Madras Regt",
			Status:      models.StatusResting,
			Location:    models.Location{Lat: 34.2255, Lng: 77.5592, Alt: 3480, Accuracy: 12},
			Vitals:      models.Vitals{HeartRate: 68, Temperature: 36.5, SpO2: 99, Hydration: 90},
			Environment: models.Environment{ExternalTemp: -6, O2Level: 21.0, Radiation: 0.11, ToxicGas: 0},
			Power:       models.PowerStatus{BatteryLevel: 45, HarvestingRate: 0, Source: models.PowerNone},
		},
		{
			ID: "NCC-990", Rank: "Cadet", Name: "Priya Sharma", Unit: "1 DEL BN NCC",
			Status:      models.StatusActive,
			Location:    models.Location{Lat: 28.6139, Lng: 77.2090, Alt: 215, Accuracy: 8},
			Vitals:      models.Vitals{HeartRate: 75, Temperature: 37.0, SpO2: 99, Hydration: 95},
			Environment: models.Environment{ExternalTemp: 28, O2Level: 21.0, Radiation: 0.08, ToxicGas: 2},
			Power:       models.PowerStatus{BatteryLevel: 98, HarvestingRate: 15, Source: models.PowerSolar},
		},
	}
}
