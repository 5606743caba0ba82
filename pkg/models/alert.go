package models

// HazardLevel grades how dangerous a reading or subject state is.
type HazardLevel string

const (
	HazardSafe     HazardLevel = "SAFE"
	HazardWarning  HazardLevel = "WARNING"
	HazardCritical HazardLevel = "CRITICAL"
)

// AlertType is the category of an operational alert.
type AlertType string

const (
	AlertHealth      AlertType = "HEALTH"
	AlertEnvironment AlertType = "ENVIRONMENT"
	AlertGeodata     AlertType = "GEODATA"
	AlertSystem      AlertType = "SYSTEM"
)

// Alert is raised by the roster when a subject changes into an alarmed state.
type Alert struct {
	ID          string      `json:"id"`
	Timestamp   int64       `json:"timestamp"` // unix millis
	SoldierID   string      `json:"soldierId"`
	SoldierName string      `json:"soldierName"`
	Type        AlertType   `json:"type"`
	Severity    HazardLevel `json:"severity"`
	Message     string      `json:"message"`
}
