package roster

import (
	"fmt"

	"github.com/sustactical/squadlink/pkg/models"
)

// Reference limits for environmental readings.
const (
	RadiationLimit = 0.15 // uSv/h
	ToxicGasLimit  = 5.0  // ppm
	LowBattery     = 20.0 // percent
)

// Assessment is the hazard grade of a subject with the readings that caused it.
type Assessment struct {
	Level   models.HazardLevel `json:"level"`
	Reasons []string           `json:"reasons,omitempty"`
}

func (a *Assessment) raise(level models.HazardLevel, reason string) {
	if rank(level) > rank(a.Level) {
		a.Level = level
	}
	a.Reasons = append(a.Reasons, reason)
}

func rank(l models.HazardLevel) int {
	switch l {
	case models.HazardCritical:
		return 2
	case models.HazardWarning:
		return 1
	}
	return 0
}

// Assess grades the subject's current readings.
func Assess(s models.Subject) Assessment {
	a := Assessment{Level: models.HazardSafe}

	if s.Status == models.StatusDistress {
		a.raise(models.HazardCritical, "distress signal")
	}

	if s.Status != models.StatusOffline {
		hr := s.Vitals.HeartRate
		switch {
		case hr > 120 || hr < 45:
			a.raise(models.HazardCritical, fmt.Sprintf("heart rate %g bpm", hr))
		case hr > 100 || hr < 55:
			a.raise(models.HazardWarning, fmt.Sprintf("heart rate %g bpm", hr))
		}
	}

	switch spo2 := s.Vitals.SpO2; {
	case spo2 < 90:
		a.raise(models.HazardCritical, fmt.Sprintf("SpO2 %g%%", spo2))
	case spo2 < 95:
		a.raise(models.HazardWarning, fmt.Sprintf("SpO2 %g%%", spo2))
	}

	switch rad := s.Environment.Radiation; {
	case rad > RadiationLimit*1.5:
		a.raise(models.HazardCritical, fmt.Sprintf("radiation %g uSv/h", rad))
	case rad > RadiationLimit:
		a.raise(models.HazardWarning, fmt.Sprintf("radiation %g uSv/h", rad))
	}

	switch gas := s.Environment.ToxicGas; {
	case gas > ToxicGasLimit*1.5:
		a.raise(models.HazardCritical, fmt.Sprintf("toxic gas %g ppm", gas))
	case gas > ToxicGasLimit:
		a.raise(models.HazardWarning, fmt.Sprintf("toxic gas %g ppm", gas))
	}

	if s.Power.BatteryLevel < LowBattery {
		a.raise(models.HazardWarning, fmt.Sprintf("battery %.1f%%", s.Power.BatteryLevel))
	}

	return a
}
