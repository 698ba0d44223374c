// Package store persists monitoring state: budget settings, the manual
// usage ledger, generated reports and the tip history.
package store

import "time"

// ManualEntry is one day of manually recorded usage.
type ManualEntry struct {
	Date   string  `json:"date"`
	Total  float64 `json:"total"`
	Night  float64 `json:"night"`
}

// Report is a generated recommendation report.
type Report struct {
	ID        string
	Context   string
	Lines     []string
	CreatedAt time.Time
}

// Report contexts.
const (
	ContextSystem = "system"
	ContextManual = "manual"
)

// Store is the persistence interface used by the engine.
type Store interface {
	// Settings.
	Budget() (float64, error)
	SetBudget(amount float64) error
	WaterLimit() (float64, error)
	SetWaterLimit(amount float64) error

	// Manual ledger.
	ManualEntries() (map[string]ManualEntry, error)
	PutManualEntry(e ManualEntry) error
	DeleteManualEntry(date string) (bool, error)

	// Reports.
	LatestReport(context string) ([]string, error)
	SaveReport(context string, lines []string) error

	// Tip anti-repetition history.
	RecentTips(context string) ([]string, error)
	SetRecentTips(context string, tipIDs []string) error

	Close() error
}
