package roster

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sustactical/squadlink/pkg/clock"
	"github.com/sustactical/squadlink/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// scripted returns queued floats; IntN always returns n-1.
type scripted struct {
	floats []float64
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *scripted) IntN(n int) int { return n - 1 }

func one(status models.Status) []models.Subject {
	return []models.Subject{{
		ID: "ARMY-842", Rank: "Subedar", Name: "Amit Kumar", Status: status,
		Vitals: models.Vitals{HeartRate: 95, SpO2: 96},
		Power:  models.PowerStatus{BatteryLevel: 78},
	}}
}

func TestTickDistress(t *testing.T) {
	clk := clock.NewManual(t0)
	r := New(one(models.StatusActive), &scripted{floats: []float64{0.01}}, clk, nil)

	clk.Advance(4 * time.Second)
	r.Tick()

	s := r.Snapshot()[0]
	assert.Equal(t, models.StatusDistress, s.Status)
	assert.Equal(t, 139.0, s.Vitals.HeartRate)
	assert.InDelta(t, 77.8, s.Power.BatteryLevel, 1e-9)
	assert.Equal(t, t0.Add(4*time.Second).UnixMilli(), s.LastUpdate)

	alerts := r.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertHealth, alerts[0].Type)
	assert.Equal(t, models.HazardCritical, alerts[0].Severity)
	assert.Equal(t, "Subedar Amit Kumar", alerts[0].SoldierName)
	assert.NotEmpty(t, alerts[0].ID)
}

func TestTickOffline(t *testing.T) {
	r := New(one(models.StatusActive), &scripted{floats: []float64{0.03}}, clock.NewManual(t0), nil)
	r.Tick()

	s := r.Snapshot()[0]
	assert.Equal(t, models.StatusOffline, s.Status)
	assert.Zero(t, s.Vitals.HeartRate)
	require.Len(t, r.Alerts(), 1)
	assert.Equal(t, models.AlertSystem, r.Alerts()[0].Type)
}

func TestTickRecoversToActive(t *testing.T) {
	r := New(one(models.StatusResting), &scripted{floats: []float64{0.05, 0.9}}, clock.NewManual(t0), nil)
	r.Tick()

	s := r.Snapshot()[0]
	assert.Equal(t, models.StatusActive, s.Status)
	assert.Equal(t, 97.0, s.Vitals.HeartRate)
	assert.Empty(t, r.Alerts(), "recovery does not raise an alert")
}

func TestTickActiveStaysActive(t *testing.T) {
	r := New(one(models.StatusActive), &scripted{floats: []float64{0.05, 0.1}}, clock.NewManual(t0), nil)
	r.Tick()

	s := r.Snapshot()[0]
	assert.Equal(t, models.StatusActive, s.Status)
	assert.Equal(t, 93.0, s.Vitals.HeartRate)
}

func TestBatteryNeverIncreasesAndFloorsAtZero(t *testing.T) {
	subjects := one(models.StatusActive)
	subjects[0].Power.BatteryLevel = 0.5
	r := New(subjects, rand.New(rand.NewPCG(1, 2)), clock.NewManual(t0), nil)

	prev := 0.5
	for i := 0; i < 10; i++ {
		r.Tick()
		level := r.Snapshot()[0].Power.BatteryLevel
		assert.LessOrEqual(t, level, prev)
		assert.GreaterOrEqual(t, level, 0.0)
		prev = level
	}
	assert.Zero(t, prev)
}

func TestAlertsAreBounded(t *testing.T) {
	rnd := &scripted{}
	r := New(one(models.StatusActive), rnd, clock.NewManual(t0), nil)
	for i := 0; i < MaxAlerts+10; i++ {
		// Alternate DISTRESS and OFFLINE so every tick is a transition.
		if i%2 == 0 {
			rnd.floats = []float64{0.01}
		} else {
			rnd.floats = []float64{0.03}
		}
		r.Tick()
	}
	alerts := r.Alerts()
	assert.Len(t, alerts, MaxAlerts)
	assert.Equal(t, models.AlertSystem, alerts[0].Type, "newest first")
}

func TestSnapshotIsCopy(t *testing.T) {
	r := New(Seed(), nil, clock.NewManual(t0), nil)
	snap := r.Snapshot()
	snap[0].Name = "changed"

	s, ok := r.Get("ARMY-701")
	require.True(t, ok)
	assert.Equal(t, "Vikram Singh", s.Name)
	assert.Equal(t, t0.UnixMilli(), s.LastUpdate)

	_, ok = r.Get("NOPE")
	assert.False(t, ok)
}

func TestSeed(t *testing.T) {
	seed := Seed()
	require.Len(t, seed, 4)
	ids := []string{}
	for _, s := range seed {
		ids = append(ids, s.ID)
		assert.True(t, s.Status.Valid())
	}
	assert.Equal(t, []string{"ARMY-701", "ARMY-842", "ARMY-112", "NCC-990"}, ids)
	assert.Equal(t, models.StatusResting, seed[2].Status)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := New(Seed(), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool {
		return r.Snapshot()[0].Power.BatteryLevel < 92
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
