// Package sim drives the usage simulation: a cursor over an hourly series
// with windowed reads, per-session accumulators and a period lifecycle.
package sim

import (
	"sync"
	"time"

	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

// PeriodHours is the length of one tracking period (4 weeks of hourly data).
const PeriodHours = 672

// tickWindow is the number of hours returned by each stream tick.
const tickWindow = 24

// TickPoint is one hour of the live stream window.
type TickPoint struct {
	Timestamp time.Time
	Liters    float64
	Manual    float64
}

// Session holds the accumulated statistics of the current tracking period.
type Session struct {
	Usage float64
	Cost  float64
	Hours int
}

// Simulator replays an hourly usage series. All methods are safe for
// concurrent use; HTTP polling and the CLI share one instance.
type Simulator struct {
	mu      sync.Mutex
	data    series.Series
	cursor  int
	session Session
	pricing tariff.Pricing
}

// New creates a simulator over the given series.
func New(data series.Series, pricing tariff.Pricing) *Simulator {
	return &Simulator{data: data, pricing: pricing}
}

// Len returns the number of hourly points loaded.
func (s *Simulator) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Session returns a copy of the current period accumulators.
func (s *Simulator) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Reload swaps the underlying series, keeping the cursor in range. Session
// accumulators are preserved.
func (s *Simulator) Reload(data series.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	if len(data) == 0 {
		s.cursor = 0
	} else {
		s.cursor %= len(data)
	}
}

// Window returns the last n hours of data ending at the cursor, wrapping
// around the series start when needed. When n covers the whole series, a
// copy of the full series is returned.
func (s *Simulator) Window(n int) series.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window(n)
}

func (s *Simulator) window(n int) series.Series {
	total := len(s.data)
	if total == 0 {
		return nil
	}
	if n >= total {
		out := make(series.Series, total)
		copy(out, s.data)
		return out
	}

	out := make(series.Series, 0, n)
	if s.cursor >= n {
		out = append(out, s.data[s.cursor-n:s.cursor]...)
	} else {
		remaining := n - s.cursor
		out = append(out, s.data[total-remaining:]...)
		out = append(out, s.data[:s.cursor]...)
	}
	return out
}

// Tick advances the cursor by one hour and returns a 24h window ending at
// now, re-timestamped to wall time so the stream always looks live. The
// newest point is folded into the session accumulators. The second return
// value reports whether the cursor just completed a pass over the series.
func (s *Simulator) Tick(now time.Time, entries map[string]store.ManualEntry) ([]TickPoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.data)
	if total == 0 {
		return nil, false
	}

	n := tickWindow
	if total < n {
		n = total
	}

	s.cursor = (s.cursor + 1) % total

	window := make([]series.Point, 0, n)
	end := s.cursor + n
	if end <= total {
		window = append(window, s.data[s.cursor:end]...)
	} else {
		window = append(window, s.data[s.cursor:]...)
		window = append(window, s.data[:end-total]...)
	}

	points := make([]TickPoint, n)
	for i, p := range window {
		ts := now.Add(-time.Duration(n-i-1) * time.Hour)
		points[i] = TickPoint{
			Timestamp: ts,
			Liters:    p.Liters,
			Manual:    manualShare(entries, ts),
		}
	}

	latest := points[n-1]
	s.session.Usage += latest.Liters
	s.session.Cost += s.pricing.Cost(latest.Liters, latest.Timestamp.Hour())
	s.session.Hours++

	return points, s.cursor == total-1
}

// manualShare spreads a day's manual entry evenly over its 24 hours.
func manualShare(entries map[string]store.ManualEntry, ts time.Time) float64 {
	if entries == nil {
		return 0
	}
	e, ok := entries[ts.Format("2006-01-02")]
	if !ok {
		return 0
	}
	return e.Total / 24.0
}

// Advance jumps the cursor forward, folding the skipped interval into the
// session accumulators.
func (s *Simulator) Advance(hours int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.data)
	if total == 0 || hours <= 0 {
		return
	}

	target := (s.cursor + hours) % total

	var skipped series.Series
	if target < s.cursor {
		skipped = append(skipped, s.data[s.cursor:]...)
		skipped = append(skipped, s.data[:target]...)
	} else {
		skipped = append(skipped, s.data[s.cursor:target]...)
	}

	for _, p := range skipped {
		s.session.Usage += p.Liters
		s.session.Cost += s.pricing.Cost(p.Liters, p.Timestamp.Hour())
	}
	s.session.Hours += hours
	s.cursor = target
}

// CompletePeriod advances the simulation to the end of the current 4-week
// period and returns the number of hours skipped.
func (s *Simulator) CompletePeriod() int {
	s.mu.Lock()
	hours := s.session.Hours
	s.mu.Unlock()

	var remaining int
	if hours == 0 {
		remaining = PeriodHours
	} else if r := hours % PeriodHours; r == 0 {
		// Already at a boundary: skip a full period.
		remaining = PeriodHours
	} else {
		remaining = PeriodHours - r
	}

	s.Advance(remaining)
	return remaining
}

// StartPeriod resets the session accumulators for a fresh tracking period.
// The manual ledger is not touched.
func (s *Simulator) StartPeriod() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
}
