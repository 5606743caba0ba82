package models

// Status is the operational state of a monitored subject.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusResting  Status = "RESTING"
	StatusDistress Status = "DISTRESS"
	StatusOffline  Status = "OFFLINE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusResting, StatusDistress, StatusOffline:
		return true
	}
	return false
}

// PowerSource identifies how a subject's pack is harvesting energy.
type PowerSource string

const (
	PowerKinetic PowerSource = "KINETIC"
	PowerThermal PowerSource = "THERMAL"
	PowerSolar   PowerSource = "SOLAR"
	PowerNone    PowerSource = "NONE"
)

// Location is a GPS fix. Accuracy is in meters.
type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Alt      float64 `json:"alt"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// Vitals holds biometric readings.
type Vitals struct {
	HeartRate   float64 `json:"heartRate"`
	Temperature float64 `json:"temperature"`
	SpO2        float64 `json:"spO2"`
	Hydration   float64 `json:"hydration"`
}

// Environment holds readings from the subject's environmental sensors.
type Environment struct {
	ExternalTemp float64 `json:"externalTemp"`
	O2Level      float64 `json:"o2Level"`
	Radiation    float64 `json:"radiation"`
	ToxicGas     float64 `json:"toxicGas"`
}

// PowerStatus reports battery charge and harvesting rate (mW).
type PowerStatus struct {
	BatteryLevel   float64     `json:"batteryLevel"`
	HarvestingRate float64     `json:"harvestingRate"`
	Source         PowerSource `json:"source"`
}

// Subject is a monitored roster entry.
type Subject struct {
	ID          string      `json:"id"`
	Rank        string      `json:"rank"`
	Name        string      `json:"name"`
	Unit        string      `json:"unit,omitempty"`
	Status      Status      `json:"status"`
	Location    Location    `json:"location"`
	Vitals      Vitals      `json:"vitals"`
	Environment Environment `json:"environment"`
	Power       PowerStatus `json:"power"`
	LastUpdate  int64       `json:"lastUpdate,omitempty"` // unix millis
}
