// Package roster simulates squad telemetry for demonstration and testing.
package roster

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/clock"
	"github.com/sustactical/squadlink/pkg/models"
)

const (
	// DefaultInterval is the time between simulated telemetry updates.
	DefaultInterval = 4 * time.Second
	// MaxAlerts is the number of alerts retained.
	MaxAlerts = 50

	batteryDrain = 0.2
)

// Rand is the random source used for simulated transitions.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Roster holds the simulated squad. It is safe for concurrent use.
type Roster struct {
	mu       sync.RWMutex
	subjects []models.Subject
	alerts   []models.Alert

	rand   Rand
	clock  clock.Clock
	logger *zap.Logger
}

// New returns a roster over a copy of subjects. Nil rand, clock and logger
// fall back to a time-seeded source, the system clock and a no-op logger.
func New(subjects []models.Subject, rnd Rand, clk clock.Clock, logger *zap.Logger) *Roster {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := clk.Now().UnixMilli()
	cp := make([]models.Subject, len(subjects))
	copy(cp, subjects)
	for i := range cp {
		if cp[i].LastUpdate == 0 {
			cp[i].LastUpdate = now
		}
	}
	return &Roster{subjects: cp, rand: rnd, clock: clk, logger: logger}
}

// Snapshot returns a copy of the current roster.
func (r *Roster) Snapshot() []models.Subject {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Subject, len(r.subjects))
	copy(out, r.subjects)
	return out
}

// Get returns the subject with the given id.
func (r *Roster) Get(id string) (models.Subject, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return models.Subject{}, false
}

// Alerts returns retained alerts, newest first.
func (r *Roster) Alerts() []models.Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Alert, 0, len(r.alerts))
	for i := len(r.alerts) - 1; i >= 0; i-- {
		out = append(out, r.alerts[i])
	}
	return out
}

// Tick advances every subject by one simulated update.
func (r *Roster) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for i := range r.subjects {
		s := &r.subjects[i]
		prev := s.Status

		roll := r.rand.Float64()
		switch {
		case roll < 0.02:
			s.Status = models.StatusDistress
		case roll < 0.04:
			s.Status = models.StatusOffline
		case roll < 0.06 && s.Status != models.StatusActive:
			s.Status = models.StatusActive
		}

		switch s.Status {
		case models.StatusDistress:
			s.Vitals.HeartRate = float64(115 + r.rand.IntN(25))
		case models.StatusOffline:
			s.Vitals.HeartRate = 0
		default:
			if r.rand.Float64() > 0.5 {
				s.Vitals.HeartRate += 2
			} else {
				s.Vitals.HeartRate = max(0, s.Vitals.HeartRate-2)
			}
		}

		s.Power.BatteryLevel = max(0, s.Power.BatteryLevel-batteryDrain)
		s.LastUpdate = now.UnixMilli()

		if s.Status != prev {
			r.logger.Info("subject status changed",
				zap.String("soldier_id", s.ID),
				zap.String("from", string(prev)),
				zap.String("to", string(s.Status)),
			)
			if a, ok := transitionAlert(*s, now); ok {
				r.alerts = append(r.alerts, a)
				if len(r.alerts) > MaxAlerts {
					r.alerts = r.alerts[len(r.alerts)-MaxAlerts:]
				}
			}
		}
	}
}

func transitionAlert(s models.Subject, now time.Time) (models.Alert, bool) {
	a := models.Alert{
		ID:          uuid.NewString(),
		Timestamp:   now.UnixMilli(),
		SoldierID:   s.ID,
		SoldierName: s.Rank + " " + s.Name,
	}
	switch s.Status {
	case models.StatusDistress:
		a.Type = models.AlertHealth
		a.Severity = models.HazardCritical
		a.Message = fmt.Sprintf("Distress signal from %s. HR %g bpm.", a.SoldierName, s.Vitals.HeartRate)
	case models.StatusOffline:
		a.Type = models.AlertSystem
		a.Severity = models.HazardWarning
		a.Message = fmt.Sprintf("Telemetry link lost for unit %s.", s.ID)
	default:
		return models.Alert{}, false
	}
	return a, true
}

// Run ticks every interval until ctx is done.
func (r *Roster) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick()
		}
	}
}
