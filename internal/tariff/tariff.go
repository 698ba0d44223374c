// Package tariff implements the day/night water pricing model.
package tariff

// Default unit prices in currency per liter, approximating a metered
// municipal tariff. The night band is billed at twice the day rate.
const (
	DefaultDayPrice = 0.089705
	NightMultiplier = 2.0

	// Night band boundaries (hour of day). The band wraps midnight:
	// [NightStart, 24) plus [0, NightEnd).
	NightStart = 22
	NightEnd   = 4
)

// Pricing holds the unit prices used for cost calculations.
type Pricing struct {
	Day   float64
	Night float64
}

// Default returns the standard pricing.
func Default() Pricing {
	return Pricing{
		Day:   DefaultDayPrice,
		Night: DefaultDayPrice * NightMultiplier,
	}
}

// IsNight reports whether the given hour of day falls in the night band.
func IsNight(hour int) bool {
	return hour >= NightStart || hour < NightEnd
}

// Cost returns the cost of consuming the given liters at the given hour.
func (p Pricing) Cost(liters float64, hour int) float64 {
	if IsNight(hour) {
		return liters * p.Night
	}
	return liters * p.Day
}

// EntryCost prices a daily ledger entry: night liters at the night rate,
// the remainder at the day rate.
func (p Pricing) EntryCost(totalLiters, nightLiters float64) float64 {
	day := totalLiters - nightLiters
	return day*p.Day + nightLiters*p.Night
}
