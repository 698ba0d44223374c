package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	p := DefaultProfile()
	p.Seed = 1

	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s, err := Generate(p, start)
	require.NoError(t, err)

	require.Len(t, s, 16*7*24)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), s[0].Timestamp)
	assert.Equal(t, time.Hour, s[1].Timestamp.Sub(s[0].Timestamp))
}

func TestGenerateWeekTargets(t *testing.T) {
	p := DefaultProfile()
	p.Seed = 42

	s, err := Generate(p, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	totals := WeekTotals(s)
	require.Len(t, totals, len(p.Weeks))

	for i, kind := range p.Weeks {
		// The hourly jitter averages out, so weekly totals land close
		// to their targets even though hours vary.
		switch kind {
		case WeekHigh:
			assert.Greater(t, totals[i], p.WeeklyLimit, "week %d should be over the limit", i+1)
			assert.Less(t, totals[i], p.WeeklyLimit+700, "week %d overage out of range", i+1)
		case WeekNormal:
			assert.Less(t, totals[i], p.WeeklyLimit, "week %d should be under the limit", i+1)
			assert.Greater(t, totals[i], p.WeeklyLimit-800, "week %d saving out of range", i+1)
		}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	p := Profile{Weeks: []WeekKind{WeekNormal, WeekHigh}, WeeklyLimit: 7500, Seed: 7}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	a, err := Generate(p, start)
	require.NoError(t, err)
	b, err := Generate(p, start)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerateEveningPeak(t *testing.T) {
	p := Profile{Weeks: []WeekKind{WeekNormal}, WeeklyLimit: 7500, Seed: 3}
	s, err := Generate(p, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	day := s[:24]
	// Evening hours carry five weight units against one at night, so
	// even with jitter the peak dominates.
	assert.Greater(t, day[19].Liters, day[2].Liters*3)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Profile{}.Validate())
	assert.Error(t, Profile{Weeks: []WeekKind{WeekNormal}, WeeklyLimit: 0}.Validate())
	assert.Error(t, Profile{Weeks: []WeekKind{"extreme"}, WeeklyLimit: 7500}.Validate())
	assert.NoError(t, DefaultProfile().Validate())
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weeks: [high, normal]\nweekly_limit: 5000\nseed: 9\n"), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, []WeekKind{WeekHigh, WeekNormal}, p.Weeks)
	assert.Equal(t, 5000.0, p.WeeklyLimit)
	assert.Equal(t, int64(9), p.Seed)
}

func TestLoadProfileRejectsBad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weeks: [flood]\n"), 0o644))

	_, err := LoadProfile(path)
	assert.Error(t, err)

	_, err = LoadProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
