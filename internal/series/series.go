// Package series provides the hourly usage time series shared by the
// simulator, the scenario generator and the importer.
package series

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Point is one hour of metered usage.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Liters    float64   `json:"usage_liters"`
}

// Series is an ordered list of hourly points.
type Series []Point

// timeLayouts are accepted timestamp formats, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses a timestamp in any of the accepted layouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Load reads a usage CSV with a "timestamp,usage_liters" header.
// Lines starting with '#' are skipped. Points are returned sorted by time.
func Load(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage series: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read usage series: %w", err)
	}

	var s Series
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		// Skip the header row.
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "timestamp") {
			continue
		}

		ts, err := ParseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		liters, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid usage value %q", i+1, rec[1])
		}

		s = append(s, Point{Timestamp: ts, Liters: liters})
	}

	sort.Slice(s, func(i, j int) bool { return s[i].Timestamp.Before(s[j].Timestamp) })
	return s, nil
}

// Write saves the series as a standard usage CSV.
func Write(path string, s Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create usage series: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "usage_liters"}); err != nil {
		return err
	}
	for _, p := range s {
		rec := []string{
			p.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(p.Liters, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write usage series: %w", err)
	}
	return nil
}

// Total returns the summed liters of the series.
func (s Series) Total() float64 {
	var sum float64
	for _, p := range s {
		sum += p.Liters
	}
	return sum
}
