package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/sim"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

func hourlyWindow(hours int, liters float64) series.Series {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := make(series.Series, hours)
	for i := range s {
		s[i] = series.Point{Timestamp: base.Add(time.Duration(i) * time.Hour), Liters: liters}
	}
	return s
}

func TestComputeEmptyInput(t *testing.T) {
	stats := Compute(Input{
		Budget:    500,
		Reference: 41.67,
		Pricing:   tariff.Default(),
	})

	assert.Equal(t, 500.0, stats.Budget)
	assert.Zero(t, stats.System.TotalUsage)
	assert.Zero(t, stats.System.Projection)
	assert.Zero(t, stats.Manual.Projection)
	assert.False(t, stats.System.IsOver)
	assert.Empty(t, stats.Daily.UsageSystem)
	// A fresh session has the full period remaining.
	assert.InDelta(t, 28.0, stats.Optimization.DaysRemaining, 0.01)
}

func TestComputeSystemProjection(t *testing.T) {
	// 24h of flat 10 L/h: projection scales to 720h.
	window := hourlyWindow(24, 10)
	stats := Compute(Input{
		Window:    window,
		Budget:    500,
		Reference: 41.67,
		Session:   sim.Session{Usage: 240, Cost: 25, Hours: 24},
		Pricing:   tariff.Default(),
	})

	assert.InDelta(t, 7200.0, stats.System.UsageProjection, 1e-6)

	// Cost projection follows the same scaling of the window cost.
	p := tariff.Default()
	var windowCost float64
	for _, pt := range window {
		windowCost += p.Cost(pt.Liters, pt.Timestamp.Hour())
	}
	assert.InDelta(t, windowCost/24*720, stats.System.Projection, 1e-6)

	// Session totals are reported, not window totals.
	assert.Equal(t, 240.0, stats.System.TotalUsage)
	assert.Equal(t, 25.0, stats.System.TotalCost)
}

func TestComputeManualStats(t *testing.T) {
	p := tariff.Default()
	entries := map[string]store.ManualEntry{
		"2024-03-01": {Date: "2024-03-01", Total: 1200, Night: 200},
		"2024-03-02": {Date: "2024-03-02", Total: 900, Night: 0},
		"2024-03-03": {Date: "2024-03-03", Total: 1500, Night: 500},
	}

	stats := Compute(Input{
		Budget:    500,
		Reference: 41.67,
		Entries:   entries,
		Pricing:   p,
	})

	wantUsage := 1200.0 + 900 + 1500
	wantCost := p.EntryCost(1200, 200) + p.EntryCost(900, 0) + p.EntryCost(1500, 500)

	assert.InDelta(t, wantUsage, stats.Manual.TotalUsage, 1e-9)
	assert.InDelta(t, wantCost, stats.Manual.TotalCost, 1e-9)
	assert.InDelta(t, wantUsage/3*30, stats.Manual.UsageProjection, 1e-9)
	assert.InDelta(t, wantCost/3*30, stats.Manual.Projection, 1e-9)
	assert.Equal(t, 0.4, stats.Manual.Weeks)

	assert.Len(t, stats.Daily.UsageManual, 3)
	assert.InDelta(t, p.EntryCost(1200, 200), stats.Daily.CostManual["2024-03-01"], 1e-9)
}

func TestComputeOverBudgetFlags(t *testing.T) {
	// Huge flat usage guarantees the projection blows past the budget.
	stats := Compute(Input{
		Window:    hourlyWindow(24, 500),
		Budget:    100,
		Reference: 41.67,
		Session:   sim.Session{Hours: 24},
		Pricing:   tariff.Default(),
	})

	assert.True(t, stats.System.IsOver)
	assert.Greater(t, stats.System.Percent, 100.0)
}

func TestComputeZeroBudget(t *testing.T) {
	stats := Compute(Input{
		Window:    hourlyWindow(24, 10),
		Budget:    0,
		Reference: 41.67,
		Session:   sim.Session{Hours: 24},
		Pricing:   tariff.Default(),
	})

	assert.Equal(t, 100.0, stats.System.Percent)
}

func TestStrategyScoreBounds(t *testing.T) {
	p := tariff.Default()

	// Under both limits: score stays clamped at 100.
	low := computeStrategy(strategyInput{
		budget:        500,
		waterLimit:    30000,
		sysUsageProj:  1000,
		sysCostProj:   100,
		daysRemaining: 28,
		pricing:       p,
	})
	assert.Equal(t, 100.0, low.Score)
	assert.Equal(t, StatusExcellent, low.Status)

	// Wildly over: clamped at 0, critical.
	high := computeStrategy(strategyInput{
		budget:        500,
		waterLimit:    30000,
		sysUsageProj:  90000,
		sysCostProj:   5000,
		daysRemaining: 28,
		pricing:       p,
	})
	assert.Equal(t, 0.0, high.Score)
	assert.Equal(t, StatusCritical, high.Status)
}

func TestStrategyTargetsAndSavings(t *testing.T) {
	p := tariff.Default()
	s := computeStrategy(strategyInput{
		budget:        500,
		waterLimit:    30000,
		sessionUsage:  2000,
		sessionCost:   100,
		sysNightUsage: 300,
		manualNight:   100,
		daysRemaining: 20,
		pricing:       p,
	})

	assert.InDelta(t, (30000-2000)/20.0, s.DailyWaterTarget, 0.1)
	assert.InDelta(t, (500-100)/20.0, s.DailyBudgetTarget, 0.01)
	assert.InDelta(t, 400*(p.Night-p.Day), s.PotentialSavings, 0.01)
	assert.Equal(t, 20.0, s.DaysRemaining)
}

func TestAnalysisDeltas(t *testing.T) {
	p := tariff.Default()
	ref := 41.67

	stats := Compute(Input{
		Budget:    500,
		Reference: ref,
		Session:   sim.Session{Cost: 50, Hours: 48},
		Pricing:   p,
	})

	dailyRef := ref * 24
	wantWeekly := dailyRef*2*p.Day - 50
	assert.InDelta(t, wantWeekly, stats.Analysis.WeeklyDelta, 1e-6)
	assert.InDelta(t, wantWeekly*4.3, stats.Analysis.MonthlyDelta, 1e-6)
	assert.Zero(t, stats.Analysis.ManualMonthlyDelta)
}
