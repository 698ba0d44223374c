package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

const weekHours = 168

type weekStats struct {
	usage  float64
	cost   float64
	deltaL float64
}

// Report builds the narrative analysis of a full simulation window against
// the monthly budget and water limit. The output is deterministic for a
// given window, except where the tip history steers tip selection.
func Report(history TipHistory, window series.Series, budget, waterLimit float64, pricing tariff.Pricing) []string {
	if len(window) == 0 {
		return []string{"Not enough data for an analysis yet. I'll be here as the simulation runs!"}
	}

	seed := window[len(window)-1].Timestamp.String()
	rng := seededRand(seed)

	targetWeekly := waterLimit / 4.0
	weeks := make([]*weekStats, 4)
	for i := 0; i < 4; i++ {
		start := i * weekHours
		if start >= len(window) {
			continue
		}
		end := start + weekHours
		if end > len(window) {
			end = len(window)
		}
		ws := &weekStats{}
		for _, p := range window[start:end] {
			ws.usage += p.Liters
			ws.cost += pricing.Cost(p.Liters, p.Timestamp.Hour())
		}
		ws.deltaL = targetWeekly - ws.usage
		weeks[i] = ws
	}

	var totalUsage, totalCost, nightUsage float64
	for _, ws := range weeks {
		if ws != nil {
			totalUsage += ws.usage
			totalCost += ws.cost
		}
	}
	for _, p := range window {
		if tariff.IsNight(p.Timestamp.Hour()) {
			nightUsage += p.Liters
		}
	}
	nightRatio := 0.0
	if totalUsage > 0 {
		nightRatio = nightUsage / totalUsage
	}

	lp := SolveDailyAllocation(waterLimit/30.0, budget/30.0, pricing.Day, pricing.Night)

	var lines []string
	greetings := []string{
		"Hi! I've analyzed this month's water usage.",
		"Hello! Your consumption data is in; let's go through it together.",
		"Report ready! Let's see how we're doing against the targets this month.",
		"Hi, I've put this month's performance under the microscope.",
	}
	lines = append(lines, greetings[rng.Intn(len(greetings))])
	lines = append(lines, "Here are your results:")

	for i, ws := range weeks {
		w := i + 1
		if ws == nil {
			lines = append(lines, fmt.Sprintf("💤 Still waiting on week %d data.", w))
			continue
		}
		diff := ws.deltaL
		if diff < 0 {
			diff = -diff
		}
		if ws.deltaL < 0 {
			msgs := []string{
				fmt.Sprintf("⚠️ Week %d went %.0fL over target; let's tighten up a bit here.", w, diff),
				fmt.Sprintf("⚠️ Week %d was heavy; we're %.0fL above the limit.", w, diff),
				fmt.Sprintf("⚠️ Week %d usage is %.0fL above target.", w, diff),
			}
			lines = append(lines, msgs[rng.Intn(len(msgs))])
		} else {
			msgs := []string{
				fmt.Sprintf("✅ Week %d came in %.0fL under target. Great!", w, diff),
				fmt.Sprintf("✅ Week %d saved %.0fL. Keep it up.", w, diff),
				fmt.Sprintf("✅ Week %d looks good: you're %.0fL below.", w, diff),
			}
			lines = append(lines, msgs[rng.Intn(len(msgs))])
		}
	}

	profitLoss := budget - totalCost
	savedWater := waterLimit - totalUsage

	if profitLoss > 0 {
		lines = append(lines, fmt.Sprintf("🎉 You're %.2f ahead of budget.", profitLoss))
	} else {
		lines = append(lines, fmt.Sprintf("📉 We drifted %.2f off the budget target.", -profitLoss))
	}
	if savedWater > 0 {
		lines = append(lines, fmt.Sprintf("🌍 You saved %.0fL of water in total.", savedWater))
	} else {
		lines = append(lines, fmt.Sprintf("🌍 Usage ran %.0fL over the limit this month.", -savedWater))
	}

	lines = append(lines, lpReferenceLines(lp)...)

	if nightRatio > 0.35 {
		lines = append(lines, fmt.Sprintf("🤖 Your night usage share is %.0f%%. Since the night tariff is pricier, this is your quickest win.", nightRatio*100))
	} else {
		lines = append(lines, fmt.Sprintf("🤖 Your night usage share is %.0f%%. That's quite good; it keeps costs down.", nightRatio*100))
	}

	lines = append(lines, "💡 My non-repeating suggestions:")
	categories := []string{catGeneral, catShower, catDishwasher, catLaundry}
	if totalUsage > waterLimit {
		categories = append(categories, catGarden)
	}
	for _, t := range pickTips(history, categories, seed, store.ContextSystem, 2) {
		lines = append(lines, "• "+t)
	}

	closings := []string{
		"Every drop is an investment in our future. Keep going.",
		"Stay this aware and both the planet and your budget win.",
		"I'm with you on this savings journey; it gets clearer with every new data point.",
	}
	lines = append(lines, closings[rng.Intn(len(closings))])
	return lines
}

// ManualReport analyzes the last seven manually entered days against the
// weekly share of the budget and limit.
func ManualReport(history TipHistory, entries []store.ManualEntry, budget, waterLimit float64, pricing tariff.Pricing) []string {
	if len(entries) == 0 {
		return []string{"No manual entries yet. Please add your meter or bill readings."}
	}

	sorted := make([]store.ManualEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	last7 := sorted
	if len(last7) > 7 {
		last7 = last7[:7]
	}
	latestDate := sorted[0].Date

	var totalUsage7, totalCost7, totalNight7 float64
	for _, e := range last7 {
		totalUsage7 += e.Total
		totalCost7 += pricing.EntryCost(e.Total, e.Night)
		totalNight7 += e.Night
	}

	numDays := len(last7)
	targetWeeklyUsage := waterLimit / 4.0
	targetWeeklyBudget := budget / 4.0

	dailyAvgUsage := totalUsage7 / float64(numDays)
	dailyAvgCost := totalCost7 / float64(numDays)
	monthlyUsage := dailyAvgUsage * 30.0
	monthlyCost := dailyAvgCost * 30.0

	usageDiff := totalUsage7 - targetWeeklyUsage
	costDiff := totalCost7 - targetWeeklyBudget

	allDates := make([]string, 0, len(entries))
	for _, e := range entries {
		allDates = append(allDates, e.Date)
	}
	sort.Strings(allDates)
	seed := strings.Join(allDates, "-") + "|" + latestDate
	rng := seededRand(seed)

	lp := SolveDailyAllocation(waterLimit/30.0, budget/30.0, pricing.Day, pricing.Night)

	nightRatio := 0.0
	if totalUsage7 > 0 {
		nightRatio = totalNight7 / totalUsage7
	}

	var lines []string
	openers := []string{
		"I've run your manual usage report. I'll be direct:",
		"I analyzed your manual entries. Here's the picture:",
		"A quick summary based on your meter and bill readings:",
		"Here's my assessment of your manual entries:",
	}
	lines = append(lines, openers[rng.Intn(len(openers))])
	lines = append(lines, fmt.Sprintf("Analyzed through your latest entry on %s (last %d days).", latestDate, numDays))

	if usageDiff > 0 {
		lines = append(lines, fmt.Sprintf("• Water usage: you're %.0fL over the weekly target.", usageDiff))
	} else {
		lines = append(lines, fmt.Sprintf("• Water usage: you're %.0fL under the weekly target. Nice work.", -usageDiff))
	}

	usageStatus := "under target"
	if monthlyUsage > waterLimit {
		usageStatus = "over target"
	}
	lines = append(lines, fmt.Sprintf("• Monthly outlook: at this pace, expect ~%.2f m³ (%s).", monthlyUsage/1000, usageStatus))

	if costDiff > 0 {
		lines = append(lines, fmt.Sprintf("• Budget: you're running %.2f over the weekly budget target.", costDiff))
	} else {
		lines = append(lines, fmt.Sprintf("• Budget: you're closing the week %.2f ahead.", -costDiff))
	}

	costStatus := "within budget"
	if monthlyCost > budget {
		costStatus = "at risk of going over budget"
	}
	lines = append(lines, fmt.Sprintf("• Financial outlook: ~%.2f by month end (%s).", monthlyCost, costStatus))

	lines = append(lines, lpReferenceLines(lp)...)

	if nightRatio > 0.35 {
		lines = append(lines, fmt.Sprintf("🤖 Your night usage share is %.0f%%. The fastest saving is shifting night consumption to daytime.", nightRatio*100))
	} else {
		lines = append(lines, fmt.Sprintf("🤖 Your night usage share is %.0f%%. The night side looks well under control.", nightRatio*100))
	}

	lines = append(lines, "💡 My suggestions:")
	categories := []string{catGeneral, catLaundry, catDishwasher, catShower}
	if totalUsage7 > targetWeeklyUsage {
		categories = append(categories, catGarden)
	}
	for _, t := range pickTips(history, categories, seed, store.ContextManual, 2) {
		lines = append(lines, "• "+t)
	}

	return lines
}

func lpReferenceLines(lp Allocation) []string {
	return []string{
		"🔢 Optimization model (LP) reference:",
		fmt.Sprintf("• Ideal daytime usage (x1): %g L/day", lp.Day),
		fmt.Sprintf("• Ideal nighttime usage (x2): %g L/day", lp.Night),
		fmt.Sprintf("• Minimum daily cost: %g /day", lp.MinCost),
	}
}
