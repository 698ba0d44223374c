// Package importer converts third-party meter exports into the hourly
// usage CSV the simulator reads. Column names vary wildly between
// datasets, so detection is heuristic with positional fallbacks.
package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aquameter-labs/aquameter/internal/series"
)

// Mapping records which source columns were used for a conversion.
type Mapping struct {
	DateColumn  string
	TimeColumn  string
	UsageColumn string
	Rows        int
	Skipped     int
}

var (
	dateCandidates = []string{"Date", "date", "Day", "day", "Timestamp", "timestamp", "DT"}
	timeCandidates = []string{"Time", "time", "Hour", "hour"}
	// Usage matches on substring so "Water_Consumption_Liters" still hits.
	usageCandidates = []string{"Usage", "usage", "Consumption", "consumption", "Volume", "volume", "Liters", "liters", "Water", "water"}
)

// detectColumns maps the header to date, time and usage column indexes.
// Unmatched date and usage fall back to the first and last column.
func detectColumns(header []string) (dateIdx, timeIdx, usageIdx int) {
	dateIdx, timeIdx, usageIdx = -1, -1, -1

	for i, col := range header {
		name := strings.TrimSpace(col)
		switch {
		case dateIdx < 0 && contains(dateCandidates, name):
			dateIdx = i
		case timeIdx < 0 && contains(timeCandidates, name):
			timeIdx = i
		case usageIdx < 0 && containsSubstring(usageCandidates, name):
			usageIdx = i
		}
	}

	if dateIdx < 0 {
		dateIdx = 0
	}
	if usageIdx < 0 {
		usageIdx = len(header) - 1
	}
	return dateIdx, timeIdx, usageIdx
}

func contains(candidates []string, name string) bool {
	for _, c := range candidates {
		if c == name {
			return true
		}
	}
	return false
}

func containsSubstring(candidates []string, name string) bool {
	for _, c := range candidates {
		if strings.Contains(name, c) {
			return true
		}
	}
	return false
}

// parseRowTime combines the date cell with an optional time cell.
func parseRowTime(dateCell, timeCell string) (time.Time, error) {
	raw := strings.TrimSpace(dateCell)
	if timeCell != "" {
		raw += " " + strings.TrimSpace(timeCell)
	}
	if ts, err := series.ParseTime(raw); err == nil {
		return ts, nil
	}
	// A bare hour number is common for "Hour" columns.
	if timeCell != "" {
		if hour, err := strconv.Atoi(strings.TrimSpace(timeCell)); err == nil && hour >= 0 && hour < 24 {
			if day, err := series.ParseTime(strings.TrimSpace(dateCell)); err == nil {
				return day.Add(time.Duration(hour) * time.Hour), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// Convert reads an arbitrary meter CSV and resamples it to one summed
// point per hour. Rows with unparseable values are skipped and counted,
// not fatal, since exports are messy.
func Convert(inputPath string) (series.Series, Mapping, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, Mapping{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, Mapping{}, fmt.Errorf("failed to read import file: %w", err)
	}
	if len(records) < 2 {
		return nil, Mapping{}, fmt.Errorf("import file has no data rows")
	}

	header := records[0]
	dateIdx, timeIdx, usageIdx := detectColumns(header)

	m := Mapping{
		DateColumn:  strings.TrimSpace(header[dateIdx]),
		UsageColumn: strings.TrimSpace(header[usageIdx]),
	}
	if timeIdx >= 0 {
		m.TimeColumn = strings.TrimSpace(header[timeIdx])
	}

	// Sum usage into hourly buckets.
	buckets := make(map[time.Time]float64)
	for _, rec := range records[1:] {
		if len(rec) <= dateIdx || len(rec) <= usageIdx {
			m.Skipped++
			continue
		}

		timeCell := ""
		if timeIdx >= 0 && timeIdx < len(rec) {
			timeCell = rec[timeIdx]
		}
		ts, err := parseRowTime(rec[dateIdx], timeCell)
		if err != nil {
			m.Skipped++
			continue
		}

		liters, err := strconv.ParseFloat(strings.TrimSpace(rec[usageIdx]), 64)
		if err != nil {
			// Unparseable usage counts as zero, matching how gaps in
			// exports are treated.
			liters = 0
		}

		buckets[ts.Truncate(time.Hour)] += liters
	}

	if len(buckets) == 0 {
		return nil, m, fmt.Errorf("no usable rows in import file")
	}

	out := fillHourly(buckets)
	m.Rows = len(out)
	return out, m, nil
}

// fillHourly turns the buckets into a continuous hourly series, filling
// gaps with zero usage.
func fillHourly(buckets map[time.Time]float64) series.Series {
	keys := make([]time.Time, 0, len(buckets))
	for ts := range buckets {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	first, last := keys[0], keys[len(keys)-1]
	var out series.Series
	for ts := first; !ts.After(last); ts = ts.Add(time.Hour) {
		out = append(out, series.Point{Timestamp: ts, Liters: buckets[ts]})
	}
	return out
}

// Import converts inputPath and writes the result to outputPath in the
// standard usage CSV format.
func Import(inputPath, outputPath string) (Mapping, error) {
	s, m, err := Convert(inputPath)
	if err != nil {
		return m, err
	}
	if err := series.Write(outputPath, s); err != nil {
		return m, err
	}
	return m, nil
}
