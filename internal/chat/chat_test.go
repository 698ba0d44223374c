package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

func testStats() Stats {
	return Stats{
		Budget:               500,
		WaterLimit:           30000,
		Score:                88,
		Status:               "Excellent",
		DailyWaterTarget:     185,
		PotentialSavings:     12.5,
		ManualProjectionCost: 420,
		Entries: []store.ManualEntry{
			{Date: "2026-03-01", Total: 400, Night: 50},
			{Date: "2026-03-02", Total: 500, Night: 200},
			{Date: "2026-03-03", Total: 450, Night: 100},
		},
		Pricing: tariff.Default(),
	}
}

var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestMatchFAQPrefersLongerKeywords(t *testing.T) {
	got := matchFAQ("is a low-flow shower head worth it?")
	assert.Contains(t, got, "Low-flow heads")
}

func TestMatchFAQNoMatch(t *testing.T) {
	assert.Empty(t, matchFAQ("xyzzy"))
}

func TestMatchFAQScoresSumOfKeywords(t *testing.T) {
	// Multiple keywords from the prewash entry outweigh a single generic hit.
	got := matchFAQ("should I use prewash or pre-rinse?")
	assert.Contains(t, got, "prewash")
}

func TestRespondFAQWinsOverIntents(t *testing.T) {
	// "bill" is also a cost-intent keyword, but the FAQ match must win.
	got := Respond("does saving really reflect on the bill?", noon, testStats())
	assert.Contains(t, got, "15 to 30 percent")
}

func TestRespondGreeting(t *testing.T) {
	got := Respond("hello there", noon, testStats())
	assert.Contains(t, got, "Good afternoon")
	assert.Contains(t, got, "3 days of data")
}

func TestRespondGreetingTimeOfDay(t *testing.T) {
	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	got := Respond("hey", morning, testStats())
	assert.Contains(t, got, "Good morning")
}

func TestRespondStatus(t *testing.T) {
	got := Respond("how is my status?", noon, testStats())
	assert.Contains(t, got, "88/100")
	assert.Contains(t, got, "Usage Analysis (3 days of data)")
	assert.Contains(t, got, "450L") // daily average of 1350/3
	assert.Contains(t, got, "2026-03-02") // peak usage day
}

func TestRespondStatusNoData(t *testing.T) {
	s := testStats()
	s.Entries = nil
	got := Respond("status please", noon, s)
	assert.Contains(t, got, "data")
}

func TestRespondSavingsPriorityNightUsage(t *testing.T) {
	s := testStats()
	// 350 night out of 1350 total is ~26%; push it over 35%.
	s.Entries = []store.ManualEntry{
		{Date: "2026-03-01", Total: 400, Night: 300},
		{Date: "2026-03-02", Total: 400, Night: 300},
	}
	got := Respond("any savings tips?", noon, s)
	assert.Contains(t, got, "Priority - Night Usage")
}

func TestRespondSavingsNightWarningAtNight(t *testing.T) {
	night := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	got := Respond("give me a suggestion", night, testStats())
	assert.Contains(t, got, "night tariff is active")
}

func TestRespondCost(t *testing.T) {
	got := Respond("how much will I be charged?", noon, testStats())
	assert.Contains(t, got, "Detailed Bill Report")
	assert.Contains(t, got, "3-Day Spending Analysis")
}

func TestRespondCostNoData(t *testing.T) {
	s := testStats()
	s.Entries = nil
	got := Respond("how much is this going to charge me", noon, s)
	assert.Contains(t, got, "Data Needed For A Bill Analysis")
}

func TestRespondNightTariff(t *testing.T) {
	got := Respond("tell me about the tariff", noon, testStats())
	assert.Contains(t, got, "Night Tariff Guide")
	assert.Contains(t, got, "day tariff is active")

	night := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	got = Respond("tell me about the tariff", night, testStats())
	assert.Contains(t, got, "NIGHT TARIFF IS ACTIVE")
}

func TestRespondGoals(t *testing.T) {
	got := Respond("where do I stand against my limit", noon, testStats())
	assert.Contains(t, got, "Goal Tracker")
	assert.Contains(t, got, "█")
}

func TestRespondGuides(t *testing.T) {
	assert.Contains(t, Respond("laundry help please", noon, testStats()), "Smart Laundry Guide")
	assert.Contains(t, Respond("shower routine", noon, testStats()), "Smart Shower And Bath Guide")
	assert.Contains(t, Respond("best way to load plates", noon, testStats()), "Smart Dishwashing Guide")
}

func TestRespondThanks(t *testing.T) {
	got := Respond("thanks!", noon, testStats())
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "Topics I can help with")
}

func TestRespondAbout(t *testing.T) {
	got := Respond("who are you?", noon, testStats())
	assert.Contains(t, got, "About Me")
	assert.Contains(t, got, "3 days of data")
}

func TestRespondFallback(t *testing.T) {
	got := Respond("qwerty asdf", noon, testStats())
	assert.Contains(t, got, "Topics I can help with")
	assert.Contains(t, got, "88/100")
}

func TestRespondDeterministic(t *testing.T) {
	a := Respond("hello", noon, testStats())
	b := Respond("hello", noon, testStats())
	assert.Equal(t, a, b)
}

func TestDeriveTrend(t *testing.T) {
	s := testStats()
	s.Entries = []store.ManualEntry{
		{Date: "2026-03-01", Total: 100},
		{Date: "2026-03-02", Total: 100},
		{Date: "2026-03-03", Total: 300},
		{Date: "2026-03-04", Total: 300},
		{Date: "2026-03-05", Total: 300},
	}
	d := derive(s)
	assert.Equal(t, trendIncreasing, d.trend)

	for i := range s.Entries {
		s.Entries[i].Total = 200
	}
	d = derive(s)
	assert.Equal(t, trendStable, d.trend)
}
