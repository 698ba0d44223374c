package advisor

import (
	"fmt"
	"math"
)

// Impact is the environmental summary card.
type Impact struct {
	Text       string  `json:"text"`
	Percentage float64 `json:"percentage"`
	Trees      float64 `json:"trees"`
	Water      float64 `json:"water"`
	Benefit    float64 `json:"benefit"`
	IsSaving   bool    `json:"is_saving"`
}

const (
	// Rough CO2 intensity of treated and pumped water, kg per cubic meter.
	co2PerCubicMeter = 0.3
	// Annual CO2 uptake of a mature tree, kg.
	co2PerTree = 1.6
	// Reference monthly household consumption used for the contribution scale.
	referenceMonthlyLiters = 30000.0
)

// SustainableImpact converts saved (or overused, when negative) liters and a
// budget benefit into the sustainability card.
func SustainableImpact(savedLiters, budgetBenefit float64) Impact {
	isSaving := savedLiters >= 0
	absWater := math.Abs(savedLiters)

	co2 := savedLiters / 1000.0 * co2PerCubicMeter
	trees := math.Abs(co2) / co2PerTree
	contribution := savedLiters / referenceMonthlyLiters * 100.0

	var benefitText string
	if budgetBenefit >= 0 {
		benefitText = fmt.Sprintf("Your budget came out %.2f ahead.", budgetBenefit)
	} else {
		benefitText = fmt.Sprintf("Your budget target was exceeded by %.2f.", math.Abs(budgetBenefit))
	}

	var text string
	if isSaving {
		text = fmt.Sprintf("Savings: offset the CO2 uptake of %.2f trees. %.0fL of water saved. %s",
			trees, absWater, benefitText)
	} else {
		text = fmt.Sprintf("Overage: exceeded the CO2 uptake of %.2f trees. %.0fL over the limit. %s",
			trees, absWater, benefitText)
	}

	return Impact{
		Text:       text,
		Percentage: math.Max(-100, math.Min(100, contribution)),
		Trees:      round2(trees),
		Water:      round1(savedLiters),
		Benefit:    round2(budgetBenefit),
		IsSaving:   isSaving,
	}
}
