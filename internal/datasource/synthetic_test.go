package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticConfig(pattern SimulationPattern) SyntheticConfig {
	return SyntheticConfig{
		Symbol:        "TEST",
		StartTime:     time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Interval:      time.Minute,
		NumDataPoints: 200,
		Pattern:       pattern,
		InitialPrice:  100.0,
		Seed:          42,
	}
}

func TestSyntheticGenerateIncreasing(t *testing.T) {
	gen := NewSyntheticGenerator(syntheticConfig(PatternIncreasing))

	bars, err := gen.Generate()
	require.NoError(t, err)
	require.Len(t, bars, 200)

	for i, bar := range bars {
		assert.NoError(t, bar.Validate(), "bar %d", i)
		assert.Equal(t, "TEST", bar.Symbol)
	}

	// Each bar advances by one interval.
	for i := 1; i < len(bars); i++ {
		assert.Equal(t, time.Minute, bars[i].Time.Sub(bars[i-1].Time))
	}

	assert.Greater(t, bars[len(bars)-1].Close, bars[0].Open)
}

func TestSyntheticGenerateDecreasing(t *testing.T) {
	gen := NewSyntheticGenerator(syntheticConfig(PatternDecreasing))

	bars, err := gen.Generate()
	require.NoError(t, err)

	for i, bar := range bars {
		assert.NoError(t, bar.Validate(), "bar %d", i)
	}

	assert.Less(t, bars[len(bars)-1].Close, bars[0].Open)
}

func TestSyntheticGenerateVolatileRespectsDrawdown(t *testing.T) {
	config := syntheticConfig(PatternVolatile)
	config.MaxDrawdownPercent = 10.0
	config.VolatilityPercent = 3.0

	gen := NewSyntheticGenerator(config)

	bars, err := gen.Generate()
	require.NoError(t, err)

	peak := bars[0].Close
	for _, bar := range bars {
		if bar.Close > peak {
			peak = bar.Close
		}
		drawdown := (peak - bar.Close) / peak
		assert.LessOrEqual(t, drawdown, 0.10+1e-9)
	}
}

func TestSyntheticGenerateDeterministic(t *testing.T) {
	first, err := NewSyntheticGenerator(syntheticConfig(PatternVolatile)).Generate()
	require.NoError(t, err)

	second, err := NewSyntheticGenerator(syntheticConfig(PatternVolatile)).Generate()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSyntheticGenerateFromEndTime(t *testing.T) {
	config := syntheticConfig(PatternIncreasing)
	config.NumDataPoints = 0
	config.EndTime = config.StartTime.Add(30 * time.Minute)

	bars, err := NewSyntheticGenerator(config).Generate()
	require.NoError(t, err)
	assert.Len(t, bars, 30)
}

func TestSyntheticGenerateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SyntheticConfig)
		wantErr string
	}{
		{
			name:    "missing symbol",
			mutate:  func(c *SyntheticConfig) { c.Symbol = "" },
			wantErr: "symbol is required",
		},
		{
			name:    "missing start time",
			mutate:  func(c *SyntheticConfig) { c.StartTime = time.Time{} },
			wantErr: "start time is required",
		},
		{
			name:    "missing interval",
			mutate:  func(c *SyntheticConfig) { c.Interval = 0 },
			wantErr: "interval must be positive",
		},
		{
			name: "no point count or end time",
			mutate: func(c *SyntheticConfig) {
				c.NumDataPoints = 0
				c.EndTime = time.Time{}
			},
			wantErr: "either NumDataPoints or EndTime is required",
		},
		{
			name: "end before start",
			mutate: func(c *SyntheticConfig) {
				c.NumDataPoints = 0
				c.EndTime = c.StartTime.Add(-time.Hour)
			},
			wantErr: "end time must be after start time",
		},
		{
			name:    "unknown pattern",
			mutate:  func(c *SyntheticConfig) { c.Pattern = "sideways" },
			wantErr: "unknown pattern",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := syntheticConfig(PatternIncreasing)
			tc.mutate(&config)

			_, err := NewSyntheticGenerator(config).Generate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSyntheticGenerateTicks(t *testing.T) {
	gen := NewSyntheticGenerator(syntheticConfig(PatternVolatile))

	ticks, err := gen.GenerateTicks()
	require.NoError(t, err)
	require.Len(t, ticks, 200)

	for i, tick := range ticks {
		assert.NoError(t, tick.Validate(), "tick %d", i)
		assert.Less(t, tick.BidPrice, tick.LastPrice, "tick %d", i)
		assert.Greater(t, tick.AskPrice, tick.LastPrice, "tick %d", i)
	}
}
