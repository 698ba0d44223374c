package advisor

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

// maxTipHistory is how many recently used tips are remembered per context.
const maxTipHistory = 14

// TipHistory persists recently used tips so consecutive reports vary.
// *store.SQLiteStore satisfies it.
type TipHistory interface {
	RecentTips(context string) ([]string, error)
	SetRecentTips(context string, tipIDs []string) error
}

// Tip categories.
const (
	catDishwasher = "dishwasher"
	catLaundry    = "laundry"
	catShower     = "shower"
	catGarden     = "garden"
	catGeneral    = "general"
)

var tipPools = map[string][]string{
	catDishwasher: {
		"Running the dishwasher on its eco program cuts both water use and the bill noticeably.",
		"Scrape dishes into the bin instead of pre-rinsing under running water; it saves a lot every load.",
		"Only start the dishwasher when it is full; fewer cycles means less water overall.",
		"Save the high-temperature programs for when they are really needed; the medium one covers most days.",
		"A short program is not automatically a low-water program; eco runs longer but uses less.",
		"A clean filter keeps the machine efficient and avoids rewash cycles.",
	},
	catLaundry: {
		"Run the washing machine only when fully loaded to get the most out of every liter.",
		"Shifting laundry to daytime hours avoids the night tariff and lowers the cost per load.",
		"Use the prewash cycle only for genuinely dirty loads; most of the time it just burns water.",
		"Combining loads that wash at the same temperature cuts the number of cycles.",
		"The quick program does not necessarily use less water; try eco instead.",
		"Dosing detergent correctly avoids extra rinse cycles.",
	},
	catShower: {
		"Cutting shower time by two minutes adds up to a visible saving by the end of the month.",
		"Turning the water off while lathering saves tens of liters per shower.",
		"A low-flow shower head delivers the same comfort at a lower flow rate.",
		"If you shower late at night, moving it to daytime buys the same water cheaper.",
		"Running the water hotter than needed costs both water and energy.",
		"A steady moderate flow is easier to keep in check than repeated on/off bursts.",
	},
	catGarden: {
		"Watering the garden at sunrise reduces evaporation, so the same water goes further.",
		"Drip irrigation is far more efficient than a hose.",
		"Time your watering instead of eyeballing it; guesswork usually overshoots.",
		"Mulch around plant beds keeps soil moisture in much longer.",
		"Skip watering after rain; the soil already has what it needs.",
		"A bucket beats a running hose for most cleaning and watering jobs.",
	},
	catGeneral: {
		"Check taps and the toilet cistern for leaks; even a slow drip adds up to serious liters a week.",
		"Wash fruit and vegetables in a bowl rather than under running water.",
		"Turning the tap off while brushing your teeth is a small but constant saving.",
		"Reading the meter once a week catches consumption spikes early.",
		"Wastewater fees scale with usage, so every liter saved pays twice.",
		"If you wash dishes by hand, a basin is far more efficient than a running tap.",
	},
}

// tipID normalizes a tip into its history key.
func tipID(text string) string {
	return "tip:" + strings.ToLower(strings.TrimSpace(text))
}

// seededRand returns a deterministic RNG for a seed string.
func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64()))) //nolint:gosec // not used for security
}

// pickTips selects k tips from the given categories, shuffled
// deterministically by seed. Tips used in recent reports are avoided when
// enough fresh candidates exist; a tip never repeats within one report.
func pickTips(history TipHistory, categories []string, seed, context string, k int) []string {
	rng := seededRand(seed)

	recent := map[string]bool{}
	if history != nil {
		if ids, err := history.RecentTips(context); err == nil {
			for _, id := range ids {
				recent[id] = true
			}
		}
	}

	var candidates []string
	for _, cat := range categories {
		candidates = append(candidates, tipPools[cat]...)
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	chosen := make([]string, 0, k)
	chosenIDs := map[string]bool{}

	// Pass 1: skip recently used tips.
	for _, tip := range candidates {
		if len(chosen) >= k {
			break
		}
		id := tipID(tip)
		if recent[id] || chosenIDs[id] {
			continue
		}
		chosen = append(chosen, tip)
		chosenIDs[id] = true
	}

	// Pass 2: allow recent repeats if the pool ran dry.
	for _, tip := range candidates {
		if len(chosen) >= k {
			break
		}
		id := tipID(tip)
		if chosenIDs[id] {
			continue
		}
		chosen = append(chosen, tip)
		chosenIDs[id] = true
	}

	if history != nil {
		recordTips(history, context, chosen)
	}
	return chosen
}

// recordTips pushes the chosen tips to the front of the history, trimming to
// maxTipHistory.
func recordTips(history TipHistory, context string, tips []string) {
	ids := make([]string, 0, len(tips))
	seen := map[string]bool{}
	for _, tip := range tips {
		id := tipID(tip)
		ids = append(ids, id)
		seen[id] = true
	}

	if prev, err := history.RecentTips(context); err == nil {
		for _, id := range prev {
			if !seen[id] {
				ids = append(ids, id)
				seen[id] = true
			}
		}
	}
	if len(ids) > maxTipHistory {
		ids = ids[:maxTipHistory]
	}
	_ = history.SetRecentTips(context, ids)
}
