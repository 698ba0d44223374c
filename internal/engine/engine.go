// Package engine coordinates the simulator, the persistent store and the
// advisor into the operations exposed over HTTP and the CLI.
package engine

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aquameter-labs/aquameter/internal/advisor"
	"github.com/aquameter-labs/aquameter/internal/chat"
	"github.com/aquameter-labs/aquameter/internal/metrics"
	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/sim"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

// metricsWindowHours is the trailing window used for dashboard stats.
const metricsWindowHours = 168

const resumePlaceholder = "New period started. Collecting data..."

// Engine is the application core. Safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	sim     *sim.Simulator
	store   store.Store
	pricing tariff.Pricing
	log     *slog.Logger
	now     func() time.Time

	budget     float64
	waterLimit float64
	reference  float64 // baseline L/h

	manualCache    []string
	manualCacheKey uint64
}

// New loads persisted settings and prepares the engine. When no system
// report has been generated yet and data is available, an initial one is
// written so the dashboard never starts blank.
func New(st store.Store, simulator *sim.Simulator, pricing tariff.Pricing, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	budget, err := st.Budget()
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	limit, err := st.WaterLimit()
	if err != nil {
		return nil, fmt.Errorf("failed to load water limit: %w", err)
	}

	e := &Engine{
		sim:        simulator,
		store:      st,
		pricing:    pricing,
		log:        log,
		now:        time.Now,
		budget:     budget,
		waterLimit: limit,
		reference:  limit / (30.0 * 24.0),
	}

	lines, err := st.LatestReport(store.ContextSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest report: %w", err)
	}
	if len(lines) == 0 && simulator.Len() > 0 {
		initial := advisor.Report(st, simulator.Window(sim.PeriodHours), budget, limit, pricing)
		if err := st.SaveReport(store.ContextSystem, initial); err != nil {
			return nil, fmt.Errorf("failed to save initial report: %w", err)
		}
	}
	return e, nil
}

// Budget returns the current monthly budget.
func (e *Engine) Budget() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.budget
}

// WaterLimit returns the current monthly water limit in liters.
func (e *Engine) WaterLimit() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waterLimit
}

// Reference returns the baseline hourly usage derived from the limit.
func (e *Engine) Reference() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reference
}

// Reload swaps the simulator's series, after a CSV change on disk.
func (e *Engine) Reload(data series.Series) {
	e.sim.Reload(data)
	e.log.Info("usage series reloaded", "points", len(data))
}

// SetBudget updates the budget and derives the water limit and hourly
// reference from it: the limit is what the budget buys at the day rate.
func (e *Engine) SetBudget(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("budget must be positive, got %.2f", amount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	limit := amount / e.pricing.Day
	if err := e.store.SetBudget(amount); err != nil {
		return fmt.Errorf("failed to persist budget: %w", err)
	}
	if err := e.store.SetWaterLimit(limit); err != nil {
		return fmt.Errorf("failed to persist water limit: %w", err)
	}

	e.budget = amount
	e.waterLimit = limit
	e.reference = limit / (30.0 * 24.0)
	e.manualCache = nil

	e.log.Info("budget updated", "budget", amount, "water_limit", limit)
	return nil
}

// SetWaterLimit overrides the monthly limit directly, recomputing the
// hourly reference. The budget is left untouched.
func (e *Engine) SetWaterLimit(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("water limit must be positive, got %.2f", amount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.SetWaterLimit(amount); err != nil {
		return fmt.Errorf("failed to persist water limit: %w", err)
	}
	e.waterLimit = amount
	e.reference = amount / (30.0 * 24.0)

	e.log.Info("water limit updated", "water_limit", amount)
	return nil
}

// AddManualEntry validates and stores one day of manually read usage.
func (e *Engine) AddManualEntry(date string, total, night float64) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	if total < 0 {
		return fmt.Errorf("total liters must not be negative, got %.2f", total)
	}
	if night < 0 || night > total {
		return fmt.Errorf("night liters must be between 0 and the total, got %.2f", night)
	}

	if err := e.store.PutManualEntry(store.ManualEntry{Date: date, Total: total, Night: night}); err != nil {
		return fmt.Errorf("failed to store manual entry: %w", err)
	}
	e.log.Info("manual entry recorded", "date", date, "total", total, "night", night)
	return nil
}

// DeleteManualEntry removes a ledger day. The bool reports whether the
// entry existed.
func (e *Engine) DeleteManualEntry(date string) (bool, error) {
	return e.store.DeleteManualEntry(date)
}

// ManualEntries returns the ledger keyed by date.
func (e *Engine) ManualEntries() (map[string]store.ManualEntry, error) {
	return e.store.ManualEntries()
}

// entryAmounts is the wire shape of one ledger day inside the metrics
// payload, keyed by date at the parent level.
type entryAmounts struct {
	Total float64 `json:"total"`
	Night float64 `json:"night"`
}

// MetricsPayload is the full dashboard snapshot.
type MetricsPayload struct {
	Stats                 metrics.PeriodStats     `json:"stats"`
	Sustainability        advisor.Impact          `json:"sustainability"`
	ManualSustainability  advisor.Impact          `json:"manual_sustainability"`
	Budget                float64                 `json:"budget"`
	MonthlyWaterLimit     float64                 `json:"monthly_water_limit"`
	ManualEntries         map[string]entryAmounts `json:"manual_entries"`
	Recommendations       []string                `json:"recommendations"`
	ManualRecommendations []string                `json:"manual_recommendations"`
}

// Metrics assembles the dashboard snapshot: period stats over the trailing
// week, projected sustainability impact and the cached reports.
func (e *Engine) Metrics() (MetricsPayload, error) {
	entries, err := e.store.ManualEntries()
	if err != nil {
		return MetricsPayload{}, fmt.Errorf("failed to load manual entries: %w", err)
	}

	e.mu.Lock()
	budget, limit, reference := e.budget, e.waterLimit, e.reference
	e.mu.Unlock()

	stats := metrics.Compute(metrics.Input{
		Window:    e.sim.Window(metricsWindowHours),
		Budget:    budget,
		Reference: reference,
		Entries:   entries,
		Session:   e.sim.Session(),
		Pricing:   e.pricing,
	})

	// Sustainability tracks projections, matching the dashboard estimates.
	projectedUsage := stats.System.UsageProjection + stats.Manual.UsageProjection
	savedWater := limit - projectedUsage
	benefit := budget - (stats.System.Projection + stats.Manual.Projection)
	sustainability := advisor.SustainableImpact(savedWater, benefit)

	manualSaved := limit - stats.Manual.UsageProjection
	manualBenefit := budget - stats.Manual.Projection
	manualSustainability := advisor.SustainableImpact(manualSaved, manualBenefit)

	recommendations, err := e.store.LatestReport(store.ContextSystem)
	if err != nil {
		return MetricsPayload{}, fmt.Errorf("failed to load latest report: %w", err)
	}
	manualRecommendations, err := e.manualRecommendations(entries, budget, limit)
	if err != nil {
		return MetricsPayload{}, err
	}

	wireEntries := make(map[string]entryAmounts, len(entries))
	for date, entry := range entries {
		wireEntries[date] = entryAmounts{Total: entry.Total, Night: entry.Night}
	}

	return MetricsPayload{
		Stats:                 stats,
		Sustainability:        sustainability,
		ManualSustainability:  manualSustainability,
		Budget:                budget,
		MonthlyWaterLimit:     limit,
		ManualEntries:         wireEntries,
		Recommendations:       recommendations,
		ManualRecommendations: manualRecommendations,
	}, nil
}

// StreamPoint is one hour of the live chart feed.
type StreamPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	UsageLiters float64   `json:"usage_liters"`
	ManualUsage float64   `json:"manual_usage"`
	Usage       float64   `json:"usage"`
	Cost        float64   `json:"cost"`
	Status      string    `json:"status"`
	Reference   float64   `json:"reference"`
}

// StreamTick advances the simulation by one hour and returns the enriched
// 24h window. Completing a pass over the series regenerates the system
// report.
func (e *Engine) StreamTick() ([]StreamPoint, error) {
	entries, err := e.store.ManualEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to load manual entries: %w", err)
	}

	e.mu.Lock()
	budget, limit, reference := e.budget, e.waterLimit, e.reference
	e.mu.Unlock()

	window, cycleEnd := e.sim.Tick(e.now(), entries)
	if cycleEnd {
		report := advisor.Report(e.store, e.sim.Window(sim.PeriodHours), budget, limit, e.pricing)
		if err := e.store.SaveReport(store.ContextSystem, report); err != nil {
			return nil, fmt.Errorf("failed to save cycle report: %w", err)
		}
		e.log.Info("simulation cycle completed, report regenerated")
	}

	points := make([]StreamPoint, len(window))
	for i, p := range window {
		status := "equal"
		if p.Liters > reference {
			status = "high"
		} else if p.Liters < reference {
			status = "low"
		}
		points[i] = StreamPoint{
			Timestamp:   p.Timestamp,
			UsageLiters: p.Liters,
			ManualUsage: p.Manual,
			Usage:       p.Liters,
			Cost:        e.pricing.Cost(p.Liters, p.Timestamp.Hour()),
			Status:      status,
			Reference:   reference,
		}
	}
	return points, nil
}

// Recommendations generates a fresh system report over the full period
// window.
func (e *Engine) Recommendations() ([]string, error) {
	e.mu.Lock()
	budget, limit := e.budget, e.waterLimit
	e.mu.Unlock()
	return advisor.Report(e.store, e.sim.Window(sim.PeriodHours), budget, limit, e.pricing), nil
}

// LatestReport returns the persisted system report lines.
func (e *Engine) LatestReport() ([]string, error) {
	return e.store.LatestReport(store.ContextSystem)
}

// ManualRecommendations returns the manual ledger report, cached until the
// entries, budget or limit change.
func (e *Engine) ManualRecommendations() ([]string, error) {
	entries, err := e.store.ManualEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to load manual entries: %w", err)
	}
	e.mu.Lock()
	budget, limit := e.budget, e.waterLimit
	e.mu.Unlock()
	return e.manualRecommendations(entries, budget, limit)
}

func (e *Engine) manualRecommendations(entries map[string]store.ManualEntry, budget, limit float64) ([]string, error) {
	key := manualCacheKey(entries, budget, limit)

	e.mu.Lock()
	if e.manualCache != nil && e.manualCacheKey == key {
		cached := e.manualCache
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	report := advisor.ManualReport(e.store, entryList(entries), budget, limit, e.pricing)

	e.mu.Lock()
	e.manualCache = report
	e.manualCacheKey = key
	e.mu.Unlock()
	return report, nil
}

func manualCacheKey(entries map[string]store.ManualEntry, budget, limit float64) uint64 {
	dates := make([]string, 0, len(entries))
	for d := range entries {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	h := fnv.New64a()
	for _, d := range dates {
		e := entries[d]
		fmt.Fprintf(h, "%s:%g:%g;", d, e.Total, e.Night)
	}
	fmt.Fprintf(h, "|%g|%g", budget, limit)
	return h.Sum64()
}

func entryList(entries map[string]store.ManualEntry) []store.ManualEntry {
	list := make([]store.ManualEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	return list
}

// SkipResult describes a completed fast-forward.
type SkipResult struct {
	AdvancedHours   float64 `json:"advanced_hours"`
	PeriodCompleted bool    `json:"period_completed"`
}

// Skip fast-forwards to the end of the current 4-week period and
// regenerates the system report for the completed month.
func (e *Engine) Skip() (SkipResult, error) {
	advanced := e.sim.CompletePeriod()

	e.mu.Lock()
	budget, limit := e.budget, e.waterLimit
	e.mu.Unlock()

	report := advisor.Report(e.store, e.sim.Window(sim.PeriodHours), budget, limit, e.pricing)
	if err := e.store.SaveReport(store.ContextSystem, report); err != nil {
		return SkipResult{}, fmt.Errorf("failed to save period report: %w", err)
	}

	e.log.Info("simulation skipped to period end", "advanced_hours", advanced)
	return SkipResult{AdvancedHours: float64(advanced), PeriodCompleted: true}, nil
}

// Resume starts a fresh tracking period: session counters reset, the
// manual ledger survives, and the report is replaced by a placeholder.
func (e *Engine) Resume() error {
	e.sim.StartPeriod()
	if err := e.store.SaveReport(store.ContextSystem, []string{resumePlaceholder}); err != nil {
		return fmt.Errorf("failed to save placeholder report: %w", err)
	}
	e.log.Info("new tracking period started")
	return nil
}

// Chat answers a free-form message grounded in current stats.
func (e *Engine) Chat(message string) (string, error) {
	entries, err := e.store.ManualEntries()
	if err != nil {
		return "", fmt.Errorf("failed to load manual entries: %w", err)
	}

	e.mu.Lock()
	budget, limit, reference := e.budget, e.waterLimit, e.reference
	e.mu.Unlock()

	stats := metrics.Compute(metrics.Input{
		Window:    e.sim.Window(metricsWindowHours),
		Budget:    budget,
		Reference: reference,
		Entries:   entries,
		Session:   e.sim.Session(),
		Pricing:   e.pricing,
	})

	return chat.Respond(message, e.now(), chat.Stats{
		Budget:               budget,
		WaterLimit:           limit,
		Score:                stats.Optimization.Score,
		Status:               stats.Optimization.Status,
		DailyWaterTarget:     stats.Optimization.DailyWaterTarget,
		PotentialSavings:     stats.Optimization.PotentialSavings,
		ManualProjectionCost: stats.Manual.Projection,
		Entries:              entryList(entries),
		Pricing:              e.pricing,
	}), nil
}
