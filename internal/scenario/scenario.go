// Package scenario generates synthetic hourly usage data for the
// simulator. Weeks follow a profile of normal and high consumption so
// the dashboard has both savings and overage periods to analyze.
package scenario

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aquameter-labs/aquameter/internal/series"
)

// WeekKind classifies a generated week.
type WeekKind string

const (
	// WeekNormal stays under the weekly limit by 100 to 600 liters.
	WeekNormal WeekKind = "normal"
	// WeekHigh exceeds the weekly limit by 120 to 500 liters.
	WeekHigh WeekKind = "high"
)

// Profile describes the scenario to generate.
type Profile struct {
	Weeks       []WeekKind `yaml:"weeks"`
	WeeklyLimit float64    `yaml:"weekly_limit"`
	Seed        int64      `yaml:"seed"`
}

// DefaultProfile is sixteen weeks against a 30000 L monthly limit:
// month one has two high weeks, month two is clean, months three and
// four each slip once.
func DefaultProfile() Profile {
	return Profile{
		Weeks: []WeekKind{
			WeekNormal, WeekHigh, WeekHigh, WeekNormal,
			WeekNormal, WeekNormal, WeekNormal, WeekNormal,
			WeekNormal, WeekNormal, WeekNormal, WeekHigh,
			WeekHigh, WeekNormal, WeekNormal, WeekNormal,
		},
		WeeklyLimit: 7500,
	}
}

// LoadProfile reads a scenario profile from a YAML file. Fields left
// out fall back to the defaults.
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read scenario profile: %w", err)
	}

	p := DefaultProfile()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse scenario profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile for generation.
func (p Profile) Validate() error {
	if len(p.Weeks) == 0 {
		return fmt.Errorf("scenario profile has no weeks")
	}
	if p.WeeklyLimit <= 0 {
		return fmt.Errorf("weekly limit must be positive, got %g", p.WeeklyLimit)
	}
	for i, w := range p.Weeks {
		if w != WeekNormal && w != WeekHigh {
			return fmt.Errorf("week %d: unknown kind %q", i+1, w)
		}
	}
	return nil
}

// hourWeight shapes the daily profile: quiet nights, a morning spike,
// a steady daytime band and an evening peak.
func hourWeight(hour int) float64 {
	switch {
	case hour < 7:
		return 1
	case hour < 10:
		return 4
	case hour < 18:
		return 2
	case hour < 23:
		return 5
	default:
		return 1
	}
}

// weightTotal is the sum of hourWeight over a day.
func weightTotal() float64 {
	var total float64
	for h := 0; h < 24; h++ {
		total += hourWeight(h)
	}
	return total
}

// Generate produces one hourly point per hour of the profile, starting
// at midnight of the given day. A zero seed draws a fresh one from the
// clock so repeated runs differ.
func Generate(p Profile, start time.Time) (series.Series, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data, not crypto

	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	units := weightTotal()

	out := make(series.Series, 0, len(p.Weeks)*7*24)
	current := start
	for _, kind := range p.Weeks {
		var target float64
		if kind == WeekHigh {
			target = p.WeeklyLimit + 120 + rng.Float64()*380
		} else {
			target = p.WeeklyLimit - (100 + rng.Float64()*500)
		}

		dailyTarget := target / 7.0
		unitVal := dailyTarget / units

		for day := 0; day < 7; day++ {
			for hour := 0; hour < 24; hour++ {
				base := hourWeight(hour) * unitVal
				// Jitter by +-10% so the curve is not robotic.
				usage := base * (0.9 + rng.Float64()*0.2)
				out = append(out, series.Point{Timestamp: current, Liters: usage})
				current = current.Add(time.Hour)
			}
		}
	}
	return out, nil
}

// WeekTotals sums the generated series per week, for reporting what a
// run produced.
func WeekTotals(s series.Series) []float64 {
	const weekHours = 7 * 24
	var totals []float64
	for i := 0; i < len(s); i += weekHours {
		end := i + weekHours
		if end > len(s) {
			end = len(s)
		}
		totals = append(totals, s[i:end].Total())
	}
	return totals
}
