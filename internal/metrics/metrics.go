// Package metrics computes the dashboard statistics payload: window and
// session totals, cost projections, baseline deltas, daily breakdowns and
// the optimization strategy card.
package metrics

import (
	"math"

	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/sim"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

// SideStats aggregates one source of usage (metered system or manual ledger).
type SideStats struct {
	TotalUsage      float64 `json:"total_usage"`
	TotalCost       float64 `json:"total_cost"`
	Projection      float64 `json:"projection"` // monthly cost projection
	UsageProjection float64 `json:"usage_projection"`
	Weeks           float64 `json:"weeks"`
	Percent         float64 `json:"percent"`
	IsOver          bool    `json:"is_over"`
}

// Analysis compares actual spend against the reference baseline.
type Analysis struct {
	WeeklyDelta        float64 `json:"weekly_delta"`
	MonthlyDelta       float64 `json:"monthly_delta"`
	ManualWeeklyDelta  float64 `json:"manual_weekly_delta"`
	ManualMonthlyDelta float64 `json:"manual_monthly_delta"`
}

// Daily holds per-date usage and cost series for the charts.
type Daily struct {
	UsageSystem map[string]float64 `json:"usage_system"`
	CostSystem  map[string]float64 `json:"cost_system"`
	UsageManual map[string]float64 `json:"usage_manual"`
	CostManual  map[string]float64 `json:"cost_manual"`
}

// Strategy is the optimization card: daily targets for the remainder of the
// period, the tariff-shift saving potential and a 0-100 score.
type Strategy struct {
	DailyWaterTarget  float64 `json:"daily_water_target"`
	DailyBudgetTarget float64 `json:"daily_budget_target"`
	PotentialSavings  float64 `json:"potential_savings"`
	Status            string  `json:"status"`
	Score             float64 `json:"score"`
	DaysRemaining     float64 `json:"days_remaining"`
}

// Strategy status labels.
const (
	StatusExcellent = "Excellent"
	StatusBalanced  = "Balanced"
	StatusWatchful  = "Needs Attention"
	StatusCritical  = "Critical"
)

// PeriodStats is the combined stats payload served to the dashboard.
type PeriodStats struct {
	Budget       float64  `json:"budget"`
	System       SideStats `json:"system"`
	Manual       SideStats `json:"manual"`
	Analysis     Analysis  `json:"analysis"`
	Daily        Daily     `json:"daily"`
	Optimization Strategy  `json:"optimization"`
}

// Input bundles everything the computation needs.
type Input struct {
	Window    series.Series
	Budget    float64
	Reference float64 // baseline usage in L/h
	Entries   map[string]store.ManualEntry
	Session   sim.Session
	Pricing   tariff.Pricing
}

// hoursInMonth scales hourly window averages to a 30-day month.
const hoursInMonth = 720.0

// Compute derives the full stats payload for the given window and session.
func Compute(in Input) PeriodStats {
	p := in.Pricing

	// System window totals.
	var windowUsage, windowCost, nightUsage float64
	for _, pt := range in.Window {
		windowUsage += pt.Liters
		windowCost += p.Cost(pt.Liters, pt.Timestamp.Hour())
		if tariff.IsNight(pt.Timestamp.Hour()) {
			nightUsage += pt.Liters
		}
	}
	windowHours := len(in.Window)

	sessionHours := in.Session.Hours
	if sessionHours < 1 {
		sessionHours = 1
	}
	sessionDays := math.Max(1, float64(sessionHours)/24.0)

	var sysProjCost, sysProjUsage float64
	if windowHours > 0 {
		sysProjCost = windowCost / float64(windowHours) * hoursInMonth
		sysProjUsage = windowUsage / float64(windowHours) * hoursInMonth
	}

	// Manual ledger totals.
	var manUsage, manCost, manNight float64
	manDailyUsage := map[string]float64{}
	manDailyCost := map[string]float64{}
	for date, e := range in.Entries {
		cost := p.EntryCost(e.Total, e.Night)
		manUsage += e.Total
		manCost += cost
		manNight += e.Night
		manDailyUsage[date] = e.Total
		manDailyCost[date] = cost
	}
	manDays := len(in.Entries)

	var manProjCost, manProjUsage float64
	if manDays > 0 {
		manProjCost = manCost / float64(manDays) * 30.0
		manProjUsage = manUsage / float64(manDays) * 30.0
	}

	// Baseline comparison.
	dailyRef := in.Reference * 24.0
	weeklyRefCost := dailyRef * sessionDays * p.Day
	profitLoss := weeklyRefCost - (in.Session.Cost + manCost)

	manRefCost := dailyRef * float64(manDays) * p.Day
	manProfitLoss := manRefCost - manCost
	var manMonthlyDelta float64
	if manDays > 0 {
		manMonthlyDelta = manProfitLoss * (30.0 / float64(manDays))
	}

	// Daily system charts.
	sysDailyUsage := map[string]float64{}
	sysDailyCost := map[string]float64{}
	for _, pt := range in.Window {
		date := pt.Timestamp.Format("2006-01-02")
		sysDailyUsage[date] += pt.Liters
		sysDailyCost[date] += p.Cost(pt.Liters, pt.Timestamp.Hour())
	}

	daysRemaining := math.Max(0.1, (sim.PeriodHours-float64(in.Session.Hours))/24.0)

	strategy := computeStrategy(strategyInput{
		budget:          in.Budget,
		waterLimit:      dailyRef * 30.0,
		sessionUsage:    in.Session.Usage,
		sessionCost:     in.Session.Cost,
		sysUsageProj:    sysProjUsage,
		sysCostProj:     sysProjCost,
		sysNightUsage:   nightUsage,
		manualUsage:     manUsage,
		manualCost:      manCost,
		manualNight:     manNight,
		manualUsageProj: manProjUsage,
		manualCostProj:  manProjCost,
		daysRemaining:   daysRemaining,
		pricing:         p,
	})

	return PeriodStats{
		Budget: in.Budget,
		System: SideStats{
			TotalUsage:      in.Session.Usage,
			TotalCost:       in.Session.Cost,
			Projection:      sysProjCost,
			UsageProjection: sysProjUsage,
			Weeks:           round1(sessionDays / 7.0),
			Percent:         percentOf(sysProjCost, in.Budget),
			IsOver:          sysProjCost > in.Budget,
		},
		Manual: SideStats{
			TotalUsage:      manUsage,
			TotalCost:       manCost,
			Projection:      manProjCost,
			UsageProjection: manProjUsage,
			Weeks:           round1(float64(manDays) / 7.0),
			Percent:         percentOf(manProjCost, in.Budget),
			IsOver:          manProjCost > in.Budget,
		},
		Analysis: Analysis{
			WeeklyDelta:        profitLoss,
			MonthlyDelta:       profitLoss * 4.3,
			ManualWeeklyDelta:  manProfitLoss,
			ManualMonthlyDelta: manMonthlyDelta,
		},
		Daily: Daily{
			UsageSystem: sysDailyUsage,
			CostSystem:  sysDailyCost,
			UsageManual: manDailyUsage,
			CostManual:  manDailyCost,
		},
		Optimization: strategy,
	}
}

type strategyInput struct {
	budget, waterLimit               float64
	sessionUsage, sessionCost        float64
	sysUsageProj, sysCostProj        float64
	sysNightUsage                    float64
	manualUsage, manualCost          float64
	manualNight                      float64
	manualUsageProj, manualCostProj  float64
	daysRemaining                    float64
	pricing                          tariff.Pricing
}

func computeStrategy(in strategyInput) Strategy {
	remBudget := in.budget - (in.sessionCost + in.manualCost)
	remWater := in.waterLimit - (in.sessionUsage + in.manualUsage)

	var dailyWater, dailyBudget float64
	if in.daysRemaining > 0 {
		dailyWater = math.Max(0, remWater/in.daysRemaining)
		dailyBudget = math.Max(0, remBudget/in.daysRemaining)
	}

	totalNight := in.sysNightUsage + in.manualNight
	potential := totalNight * (in.pricing.Night - in.pricing.Day)

	usageRatio := ratioOf(in.sysUsageProj+in.manualUsageProj, in.waterLimit)
	costRatio := ratioOf(in.sysCostProj+in.manualCostProj, in.budget)

	score := 100.0 - (math.Max(usageRatio, costRatio)-1.0)*100.0

	var status string
	switch {
	case score > 95:
		status = StatusExcellent
	case score > 80:
		status = StatusBalanced
	case score > 50:
		status = StatusWatchful
	default:
		status = StatusCritical
	}

	return Strategy{
		DailyWaterTarget:  round1(dailyWater),
		DailyBudgetTarget: round2(dailyBudget),
		PotentialSavings:  round2(potential),
		Status:            status,
		Score:             round1(math.Max(0, math.Min(100, score))),
		DaysRemaining:     round1(in.daysRemaining),
	}
}

func percentOf(value, budget float64) float64 {
	if budget <= 0 {
		return 100
	}
	return value / budget * 100
}

func ratioOf(value, limit float64) float64 {
	if limit <= 0 {
		return 1
	}
	return value / limit
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
