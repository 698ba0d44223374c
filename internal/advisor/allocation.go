// Package advisor generates the recommendation reports, the sustainability
// estimate and the LP-based daily allocation targets shown on the dashboard.
package advisor

import "math"

// Allocation is the optimal split of a day's usage between tariff bands.
type Allocation struct {
	Day     float64 `json:"x_day"`
	Night   float64 `json:"x_night"`
	MinCost float64 `json:"min_cost"`
}

// SolveDailyAllocation minimizes daily cost subject to a usage limit and a
// budget. The model is a two-variable linear program with an analytic
// solution: when the night rate exceeds the day rate the optimum puts all
// usage in the day band, and the budget caps the affordable total.
func SolveDailyAllocation(dailyLimit, dailyBudget, dayPrice, nightPrice float64) Allocation {
	limit := math.Max(0, dailyLimit)
	budget := math.Max(0, dailyBudget)

	if dayPrice <= 0 {
		return Allocation{}
	}

	if nightPrice <= dayPrice {
		// Equal (or inverted) prices: any split costs the same, use daytime.
		day := math.Min(limit, budget/dayPrice)
		return Allocation{Day: round1(day), MinCost: round2(day * dayPrice)}
	}

	var day float64
	if budget >= dayPrice*limit {
		day = limit
	} else {
		// Budget binds: buy as much as affordable, still at the day rate.
		day = budget / dayPrice
	}
	return Allocation{Day: round1(day), MinCost: round2(day * dayPrice)}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
