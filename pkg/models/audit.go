package models

import "time"

// AnalysisLog is a persisted record of a successful upstream analysis.
type AnalysisLog struct {
	ID              int64     `json:"id"`
	RequestID       string    `json:"request_id"`
	SoldierID       string    `json:"soldier_id"`
	StatusSummary   string    `json:"status_summary"`
	HealthRisk      string    `json:"health_risk"`
	ImmediateAction string    `json:"immediate_action"`
	Model           string    `json:"model,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// AuditConfig controls the analysis log store.
type AuditConfig struct {
	Driver        string `yaml:"driver"` // sqlite (default), postgres, mysql
	DSN           string `yaml:"dsn"`
	RetentionDays int    `yaml:"retention_days"`
}

// AuditStat holds the number of logged analyses for a soldier on a day.
type AuditStat struct {
	SoldierID string `json:"soldier_id"`
	Day       string `json:"day"`
	Count     int    `json:"count"`
}
