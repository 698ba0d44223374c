package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/sim"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

func testSeries(hours int, liters float64) series.Series {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := make(series.Series, hours)
	for i := range s {
		s[i] = series.Point{Timestamp: start.Add(time.Duration(i) * time.Hour), Liters: liters}
	}
	return s
}

func newTestEngine(t *testing.T, data series.Series) (*Engine, store.Store) {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	e, err := New(st, sim.New(data, tariff.Default()), tariff.Default(), nil)
	require.NoError(t, err)
	e.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return e, st
}

func TestNewGeneratesInitialReport(t *testing.T) {
	e, _ := newTestEngine(t, testSeries(100, 10))

	lines, err := e.LatestReport()
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestNewWithoutDataSkipsInitialReport(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	lines, err := e.LatestReport()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSetBudgetDerivesLimit(t *testing.T) {
	e, st := newTestEngine(t, testSeries(48, 10))

	require.NoError(t, e.SetBudget(400))

	wantLimit := 400 / tariff.DefaultDayPrice
	assert.Equal(t, 400.0, e.Budget())
	assert.InDelta(t, wantLimit, e.WaterLimit(), 0.001)
	assert.InDelta(t, wantLimit/(30*24), e.Reference(), 0.0001)

	// Persisted too.
	budget, err := st.Budget()
	require.NoError(t, err)
	assert.Equal(t, 400.0, budget)
	limit, err := st.WaterLimit()
	require.NoError(t, err)
	assert.InDelta(t, wantLimit, limit, 0.001)
}

func TestSetBudgetRejectsNonPositive(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	assert.Error(t, e.SetBudget(0))
	assert.Error(t, e.SetBudget(-10))
}

func TestSetWaterLimit(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	require.NoError(t, e.SetWaterLimit(14400))
	assert.Equal(t, 14400.0, e.WaterLimit())
	assert.InDelta(t, 20.0, e.Reference(), 0.0001)
	// Budget stays at its default.
	assert.Equal(t, 500.0, e.Budget())
}

func TestAddManualEntryValidation(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	assert.Error(t, e.AddManualEntry("03/10/2026", 100, 0))
	assert.Error(t, e.AddManualEntry("2026-03-10", -5, 0))
	assert.Error(t, e.AddManualEntry("2026-03-10", 100, 150))
	assert.Error(t, e.AddManualEntry("2026-03-10", 100, -1))
	assert.NoError(t, e.AddManualEntry("2026-03-10", 100, 40))
}

func TestAddAndDeleteManualEntry(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	require.NoError(t, e.AddManualEntry("2026-03-10", 250, 60))

	entries, err := e.ManualEntries()
	require.NoError(t, err)
	require.Contains(t, entries, "2026-03-10")
	assert.Equal(t, 250.0, entries["2026-03-10"].Total)

	found, err := e.DeleteManualEntry("2026-03-10")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = e.DeleteManualEntry("2026-03-10")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStreamTick(t *testing.T) {
	e, _ := newTestEngine(t, testSeries(48, 50))
	require.NoError(t, e.AddManualEntry("2026-03-10", 240, 0))

	points, err := e.StreamTick()
	require.NoError(t, err)
	require.Len(t, points, 24)

	newest := points[len(points)-1]
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), newest.Timestamp)
	assert.Equal(t, 50.0, newest.UsageLiters)
	assert.Equal(t, newest.UsageLiters, newest.Usage)
	assert.Greater(t, newest.Cost, 0.0)
	// 50 L/h against the 41.67 L/h default reference.
	assert.Equal(t, "high", newest.Status)
	assert.InDelta(t, 30000.0/720.0, newest.Reference, 0.001)
	// Manual overlay spreads the 240L day over 24 hours.
	assert.InDelta(t, 10.0, newest.ManualUsage, 0.001)
}

func TestStreamTickCycleEndRegeneratesReport(t *testing.T) {
	e, st := newTestEngine(t, testSeries(25, 10))
	require.NoError(t, st.SaveReport(store.ContextSystem, []string{"stale"}))

	// Cursor starts at 0; tick 24 times to land on index 24 (len-1).
	var regenerated []string
	for i := 0; i < 24; i++ {
		_, err := e.StreamTick()
		require.NoError(t, err)
		lines, err := st.LatestReport(store.ContextSystem)
		require.NoError(t, err)
		regenerated = lines
	}
	assert.NotEqual(t, []string{"stale"}, regenerated)
}

func TestSkip(t *testing.T) {
	e, _ := newTestEngine(t, testSeries(700, 10))

	res, err := e.Skip()
	require.NoError(t, err)
	assert.Equal(t, 672.0, res.AdvancedHours)
	assert.True(t, res.PeriodCompleted)

	// At a boundary a second skip advances a full period again.
	res, err = e.Skip()
	require.NoError(t, err)
	assert.Equal(t, 672.0, res.AdvancedHours)
}

func TestResume(t *testing.T) {
	e, _ := newTestEngine(t, testSeries(700, 10))

	_, err := e.Skip()
	require.NoError(t, err)

	require.NoError(t, e.Resume())

	lines, err := e.LatestReport()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "New period started")

	m, err := e.Metrics()
	require.NoError(t, err)
	assert.Zero(t, m.Stats.System.TotalUsage)
}

func TestMetrics(t *testing.T) {
	e, _ := newTestEngine(t, testSeries(200, 10))
	require.NoError(t, e.AddManualEntry("2026-03-09", 300, 100))

	m, err := e.Metrics()
	require.NoError(t, err)

	assert.Equal(t, 500.0, m.Budget)
	assert.Equal(t, 30000.0, m.MonthlyWaterLimit)
	assert.NotEmpty(t, m.Recommendations)
	assert.NotEmpty(t, m.ManualRecommendations)
	require.Contains(t, m.ManualEntries, "2026-03-09")
	assert.Equal(t, 300.0, m.ManualEntries["2026-03-09"].Total)
	// 10 L/h over the window projects to 7200 L/month.
	assert.InDelta(t, 7200.0, m.Stats.System.UsageProjection, 0.5)
}

func TestManualRecommendationsCached(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	require.NoError(t, e.AddManualEntry("2026-03-08", 200, 50))

	first, err := e.ManualRecommendations()
	require.NoError(t, err)
	second, err := e.ManualRecommendations()
	require.NoError(t, err)
	// Cached copy: tip anti-repetition would otherwise vary the tips.
	assert.Equal(t, first, second)

	// Changing the ledger invalidates the cache.
	require.NoError(t, e.AddManualEntry("2026-03-09", 400, 50))
	third, err := e.ManualRecommendations()
	require.NoError(t, err)
	assert.Contains(t, third[1], "2026-03-09")
}

func TestRecommendations(t *testing.T) {
	e, _ := newTestEngine(t, testSeries(672, 10))

	lines, err := e.Recommendations()
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestChat(t *testing.T) {
	e, _ := newTestEngine(t, testSeries(200, 10))

	resp, err := e.Chat("hello")
	require.NoError(t, err)
	assert.Contains(t, resp, "Good afternoon")
}
