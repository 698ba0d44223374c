package advisor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

type memHistory struct {
	tips map[string][]string
}

func newMemHistory() *memHistory {
	return &memHistory{tips: map[string][]string{}}
}

func (m *memHistory) RecentTips(context string) ([]string, error) {
	return m.tips[context], nil
}

func (m *memHistory) SetRecentTips(context string, ids []string) error {
	m.tips[context] = ids
	return nil
}

func TestSolveDailyAllocation(t *testing.T) {
	tests := []struct {
		name     string
		limit    float64
		budget   float64
		day      float64
		night    float64
		wantDay  float64
		wantCost float64
	}{
		{name: "limit binds", limit: 100, budget: 50, day: 0.1, night: 0.2, wantDay: 100, wantCost: 10},
		{name: "budget binds", limit: 100, budget: 5, day: 0.1, night: 0.2, wantDay: 50, wantCost: 5},
		{name: "equal prices", limit: 100, budget: 5, day: 0.1, night: 0.1, wantDay: 50, wantCost: 5},
		{name: "negative inputs clamped", limit: -10, budget: -5, day: 0.1, night: 0.2, wantDay: 0, wantCost: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SolveDailyAllocation(tt.limit, tt.budget, tt.day, tt.night)
			assert.InDelta(t, tt.wantDay, got.Day, 0.05)
			assert.InDelta(t, tt.wantCost, got.MinCost, 0.005)
			assert.Zero(t, got.Night)
		})
	}
}

func TestSolveDailyAllocationZeroPrice(t *testing.T) {
	got := SolveDailyAllocation(100, 50, 0, 0.2)
	assert.Equal(t, Allocation{}, got)
}

func TestSustainableImpactSaving(t *testing.T) {
	got := SustainableImpact(1600, 42.5)

	assert.True(t, got.IsSaving)
	assert.InDelta(t, 0.3, got.Trees, 0.005)
	assert.InDelta(t, 1600, got.Water, 0.05)
	assert.InDelta(t, 1600.0/30000.0*100.0, got.Percentage, 0.001)
	assert.InDelta(t, 42.5, got.Benefit, 0.005)
	assert.Contains(t, got.Text, "Savings")
	assert.Contains(t, got.Text, "ahead")
}

func TestSustainableImpactOverage(t *testing.T) {
	got := SustainableImpact(-2000, -10)

	assert.False(t, got.IsSaving)
	assert.Contains(t, got.Text, "Overage")
	assert.Contains(t, got.Text, "exceeded by")
	assert.InDelta(t, -2000.0/30000.0*100.0, got.Percentage, 0.001)
}

func TestSustainableImpactPercentageClamped(t *testing.T) {
	assert.Equal(t, 100.0, SustainableImpact(90000, 0).Percentage)
	assert.Equal(t, -100.0, SustainableImpact(-90000, 0).Percentage)
}

func hourlyWindow(start time.Time, hours int, liters float64) series.Series {
	s := make(series.Series, hours)
	for i := range s {
		s[i] = series.Point{Timestamp: start.Add(time.Duration(i) * time.Hour), Liters: liters}
	}
	return s
}

func TestReportEmptyWindow(t *testing.T) {
	lines := Report(newMemHistory(), nil, 500, 30000, tariff.Default())
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Not enough data")
}

func TestReportFullWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	window := hourlyWindow(start, 672, 10)

	lines := Report(newMemHistory(), window, 500, 30000, tariff.Default())
	require.NotEmpty(t, lines)

	joined := strings.Join(lines, "\n")
	// 1680L per week against a 7500L target: all four weeks under.
	assert.Equal(t, 4, strings.Count(joined, "✅"))
	assert.NotContains(t, joined, "⚠️")
	assert.Contains(t, joined, "Optimization model (LP) reference")
	assert.Contains(t, joined, "night usage share")
	assert.Len(t, extractTips(lines), 2)
}

func TestReportPartialWindowMarksPendingWeeks(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	window := hourlyWindow(start, 200, 10)

	lines := Report(newMemHistory(), window, 500, 30000, tariff.Default())
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Still waiting on week 3")
	assert.Contains(t, joined, "Still waiting on week 4")
}

func TestReportDeterministicForSameWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	window := hourlyWindow(start, 672, 10)

	a := Report(newMemHistory(), window, 500, 30000, tariff.Default())
	b := Report(newMemHistory(), window, 500, 30000, tariff.Default())
	assert.Equal(t, a, b)
}

func TestReportTipsAvoidRecentHistory(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	window := hourlyWindow(start, 672, 10)
	history := newMemHistory()

	first := Report(history, window, 500, 30000, tariff.Default())
	firstTips := extractTips(first)
	require.Len(t, firstTips, 2)

	// Same seed, but the history now holds the first picks, so the second
	// report must choose different tips.
	second := Report(history, window, 500, 30000, tariff.Default())
	secondTips := extractTips(second)
	require.Len(t, secondTips, 2)
	for _, tip := range secondTips {
		assert.NotContains(t, firstTips, tip)
	}
}

func extractTips(lines []string) []string {
	var tips []string
	active := false
	for _, l := range lines {
		if strings.Contains(l, "suggestions:") {
			active = true
			continue
		}
		if active && strings.HasPrefix(l, "• ") {
			tips = append(tips, strings.TrimPrefix(l, "• "))
		}
	}
	return tips
}

func TestManualReportEmpty(t *testing.T) {
	lines := ManualReport(newMemHistory(), nil, 500, 30000, tariff.Default())
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "No manual entries yet")
}

func TestManualReport(t *testing.T) {
	entries := []store.ManualEntry{
		{Date: "2026-03-01", Total: 400, Night: 50},
		{Date: "2026-03-02", Total: 500, Night: 200},
		{Date: "2026-03-03", Total: 600, Night: 100},
	}

	lines := ManualReport(newMemHistory(), entries, 500, 30000, tariff.Default())
	joined := strings.Join(lines, "\n")

	assert.Contains(t, joined, "latest entry on 2026-03-03")
	assert.Contains(t, joined, "last 3 days")
	// 1500L over 3 days against a 7500L weekly target.
	assert.Contains(t, joined, "under the weekly target")
	assert.Contains(t, joined, "Optimization model (LP) reference")
	assert.Len(t, extractTips(lines), 2)
}

func TestManualReportUsesOnlyLastSevenDays(t *testing.T) {
	entries := make([]store.ManualEntry, 0, 10)
	dates := []string{
		"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05",
		"2026-03-06", "2026-03-07", "2026-03-08", "2026-03-09", "2026-03-10",
	}
	for _, d := range dates {
		entries = append(entries, store.ManualEntry{Date: d, Total: 100})
	}

	lines := ManualReport(newMemHistory(), entries, 500, 30000, tariff.Default())
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "last 7 days")
	assert.Contains(t, joined, "latest entry on 2026-03-10")
}

func TestTipIDNormalization(t *testing.T) {
	assert.Equal(t, "tip:use less water", tipID("  Use Less Water  "))
}

func TestRecordTipsTrimsHistory(t *testing.T) {
	h := newMemHistory()
	var prev []string
	for i := 0; i < 20; i++ {
		prev = append(prev, "tip:old")
	}
	h.tips["system"] = prev

	recordTips(h, "system", []string{"fresh tip one", "fresh tip two"})
	got := h.tips["system"]
	assert.LessOrEqual(t, len(got), maxTipHistory)
	assert.Equal(t, "tip:fresh tip one", got[0])
	assert.Equal(t, "tip:fresh tip two", got[1])
}
