package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/tidemark-labs/tidemark/internal/types"
)

// SimulationPattern defines the type of price simulation pattern
type SimulationPattern string

const (
	// PatternIncreasing simulates a continuously increasing price trend
	PatternIncreasing SimulationPattern = "increasing"
	// PatternDecreasing simulates a continuously decreasing price trend
	PatternDecreasing SimulationPattern = "decreasing"
	// PatternVolatile simulates a volatile price with maximum drawdown constraint
	PatternVolatile SimulationPattern = "volatile"
)

// Default configuration constants
const (
	// DefaultMinimumPrice is the minimum price floor to prevent negative or zero prices
	DefaultMinimumPrice = 0.01
	// DefaultBaseVolume is the base volume for generating random bar volume
	DefaultBaseVolume = 1000000.0
	// DefaultTickVolume is the base volume for a single generated tick
	DefaultTickVolume = 100.0
	// DefaultIncreasingNoiseBias is the bias factor for noise in increasing pattern (0.3 means slightly positive bias)
	DefaultIncreasingNoiseBias = 0.3
	// DefaultDecreasingNoiseBias is the bias factor for noise in decreasing pattern (0.7 means slightly negative bias)
	DefaultDecreasingNoiseBias = 0.7
	// DefaultVolatileUpwardBias is the bias factor for volatile pattern (0.45 means slight upward bias)
	DefaultVolatileUpwardBias = 0.45
)

// SyntheticConfig holds the configuration for generating synthetic market data
type SyntheticConfig struct {
	// Symbol is the ticker symbol for the generated data
	Symbol string
	// StartTime is the start time for the generated data
	StartTime time.Time
	// EndTime is the end time for the generated data
	EndTime time.Time
	// Interval is the time interval between data points (e.g., 1 minute, 1 hour)
	Interval time.Duration
	// NumDataPoints is the number of data points to generate.
	// If set, it takes precedence over EndTime calculation based on interval
	NumDataPoints int
	// Pattern is the simulation pattern to use
	Pattern SimulationPattern
	// InitialPrice is the starting price for the simulation
	InitialPrice float64
	// MaxDrawdownPercent is the maximum allowed drawdown percentage (only used with PatternVolatile)
	MaxDrawdownPercent float64
	// VolatilityPercent is the base volatility percentage for price changes
	VolatilityPercent float64
	// TrendStrength is the strength of the trend (0.0 to 1.0) for increasing/decreasing patterns
	TrendStrength float64
	// Seed is the random seed for reproducible results. If 0, uses current time
	Seed int64
}

// SyntheticGenerator generates synthetic market data for backtests and
// examples when no real provider is configured.
type SyntheticGenerator struct {
	config SyntheticConfig
	rng    *rand.Rand
}

// NewSyntheticGenerator creates a new SyntheticGenerator with the given configuration
func NewSyntheticGenerator(config SyntheticConfig) *SyntheticGenerator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Set default values if not provided
	if config.InitialPrice <= 0 {
		config.InitialPrice = 100.0
	}
	if config.TrendStrength <= 0 {
		config.TrendStrength = 0.01 // 1% default trend per interval
	}
	if config.VolatilityPercent <= 0 {
		config.VolatilityPercent = 2.0 // 2% default volatility
	}
	if config.MaxDrawdownPercent <= 0 {
		config.MaxDrawdownPercent = 10.0 // 10% default max drawdown
	}

	return &SyntheticGenerator{
		config: config,
		rng:    rng,
	}
}

func (g *SyntheticGenerator) validate() (int, error) {
	if g.config.Symbol == "" {
		return 0, fmt.Errorf("symbol is required")
	}
	if g.config.StartTime.IsZero() {
		return 0, fmt.Errorf("start time is required")
	}
	if g.config.Interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	if g.config.NumDataPoints <= 0 && g.config.EndTime.IsZero() {
		return 0, fmt.Errorf("either NumDataPoints or EndTime is required")
	}

	numPoints := g.config.NumDataPoints
	if numPoints <= 0 {
		// Calculate number of points from time range
		duration := g.config.EndTime.Sub(g.config.StartTime)
		numPoints = int(duration / g.config.Interval)
		if numPoints <= 0 {
			return 0, fmt.Errorf("end time must be after start time")
		}
	}

	return numPoints, nil
}

// Generate generates synthetic bars based on the configuration
func (g *SyntheticGenerator) Generate() ([]types.Bar, error) {
	numPoints, err := g.validate()
	if err != nil {
		return nil, err
	}

	data := make([]types.Bar, numPoints)
	currentPrice := g.config.InitialPrice
	peakPrice := currentPrice
	currentTime := g.config.StartTime

	for i := 0; i < numPoints; i++ {
		priceChange, err := g.nextChange(currentPrice, peakPrice)
		if err != nil {
			return nil, err
		}

		newPrice := currentPrice + priceChange
		if newPrice <= 0 {
			newPrice = DefaultMinimumPrice // Prevent negative or zero prices
		}

		open := currentPrice
		closePrice := newPrice

		// Generate high and low within the range
		minPrice := math.Min(open, closePrice)
		maxPrice := math.Max(open, closePrice)
		volatilityRange := maxPrice * (g.config.VolatilityPercent / 100.0) * 0.5

		high := maxPrice + g.rng.Float64()*volatilityRange
		low := minPrice - g.rng.Float64()*volatilityRange
		if low <= 0 {
			low = DefaultMinimumPrice
		}

		// Ensure OHLC relationships are valid
		if high < maxPrice {
			high = maxPrice
		}
		if low > minPrice {
			low = minPrice
		}

		volume := DefaultBaseVolume * (0.5 + g.rng.Float64())

		data[i] = types.Bar{
			Symbol: g.config.Symbol,
			Time:   currentTime,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		}

		currentPrice = newPrice
		currentTime = currentTime.Add(g.config.Interval)

		// Update peak price for drawdown calculation
		if currentPrice > peakPrice {
			peakPrice = currentPrice
		}
	}

	return data, nil
}

// GenerateTicks generates synthetic ticks. The last price follows the
// configured pattern and the bid/ask straddle it with a spread derived
// from the volatility.
func (g *SyntheticGenerator) GenerateTicks() ([]types.Tick, error) {
	numPoints, err := g.validate()
	if err != nil {
		return nil, err
	}

	data := make([]types.Tick, numPoints)
	currentPrice := g.config.InitialPrice
	peakPrice := currentPrice
	currentTime := g.config.StartTime

	for i := 0; i < numPoints; i++ {
		priceChange, err := g.nextChange(currentPrice, peakPrice)
		if err != nil {
			return nil, err
		}

		newPrice := currentPrice + priceChange
		if newPrice <= 0 {
			newPrice = DefaultMinimumPrice
		}

		spread := newPrice * (g.config.VolatilityPercent / 100.0) * 0.1
		bid := newPrice - spread/2
		if bid <= 0 {
			bid = DefaultMinimumPrice
		}
		ask := newPrice + spread/2

		volume := DefaultTickVolume * (0.5 + g.rng.Float64())

		data[i] = types.Tick{
			Symbol:    g.config.Symbol,
			Time:      currentTime,
			LastPrice: newPrice,
			BidPrice:  bid,
			AskPrice:  ask,
			Volume:    volume,
		}

		currentPrice = newPrice
		currentTime = currentTime.Add(g.config.Interval)

		if currentPrice > peakPrice {
			peakPrice = currentPrice
		}
	}

	return data, nil
}

func (g *SyntheticGenerator) nextChange(currentPrice, peakPrice float64) (float64, error) {
	switch g.config.Pattern {
	case PatternIncreasing:
		return g.generateIncreasingChange(currentPrice), nil
	case PatternDecreasing:
		return g.generateDecreasingChange(currentPrice), nil
	case PatternVolatile:
		return g.generateVolatileChange(currentPrice, peakPrice), nil
	default:
		return 0, fmt.Errorf("unknown pattern: %s", g.config.Pattern)
	}
}

// generateIncreasingChange generates a price change for an increasing trend
func (g *SyntheticGenerator) generateIncreasingChange(currentPrice float64) float64 {
	// Base upward trend
	trend := currentPrice * g.config.TrendStrength

	// Add some randomness (can be slightly negative but overall positive)
	noise := currentPrice * (g.config.VolatilityPercent / 100.0) * (g.rng.Float64() - DefaultIncreasingNoiseBias)

	return trend + noise
}

// generateDecreasingChange generates a price change for a decreasing trend
func (g *SyntheticGenerator) generateDecreasingChange(currentPrice float64) float64 {
	// Base downward trend
	trend := -currentPrice * g.config.TrendStrength

	// Add some randomness (can be slightly positive but overall negative)
	noise := currentPrice * (g.config.VolatilityPercent / 100.0) * (g.rng.Float64() - DefaultDecreasingNoiseBias)

	return trend + noise
}

// generateVolatileChange generates a volatile price change with drawdown constraint
func (g *SyntheticGenerator) generateVolatileChange(currentPrice, peakPrice float64) float64 {
	// Random direction with slight upward bias
	direction := g.rng.Float64() - DefaultVolatileUpwardBias

	// Base change
	change := currentPrice * (g.config.VolatilityPercent / 100.0) * direction

	// Check if the new price would violate drawdown constraint
	newPrice := currentPrice + change
	maxDrawdown := peakPrice * (g.config.MaxDrawdownPercent / 100.0)
	drawdownFloor := peakPrice - maxDrawdown

	if newPrice < drawdownFloor {
		// Constrain to maximum drawdown
		newPrice = drawdownFloor + g.rng.Float64()*(g.config.VolatilityPercent/100.0)*currentPrice
		change = newPrice - currentPrice
	}

	return change
}

// WriteToParquet writes the generated bars to a parquet file
func WriteToParquet(data []types.Bar, outputPath string) error {
	if len(data) == 0 {
		return fmt.Errorf("no data to write")
	}

	// Create output directory if it doesn't exist
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Open in-memory DuckDB database
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}
	defer db.Close()

	// Create a table for market data
	_, err = db.Exec(`
		CREATE TABLE market_data (
			time TIMESTAMP,
			symbol VARCHAR,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	// Prepare insert statement
	stmt, err := db.Prepare(`
		INSERT INTO market_data (time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	// Insert all data points
	for _, d := range data {
		_, err = stmt.Exec(d.Time, d.Symbol, d.Open, d.High, d.Low, d.Close, d.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert data: %w", err)
		}
	}

	// Export to parquet file
	_, err = db.Exec(fmt.Sprintf(`COPY market_data TO '%s' (FORMAT PARQUET)`, outputPath))
	if err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}

// WriteTicksToParquet writes the generated ticks to a parquet file
func WriteTicksToParquet(data []types.Tick, outputPath string) error {
	if len(data) == 0 {
		return fmt.Errorf("no data to write")
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE market_data (
			time TIMESTAMP,
			symbol VARCHAR,
			last_price DOUBLE,
			bid_price DOUBLE,
			ask_price DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	stmt, err := db.Prepare(`
		INSERT INTO market_data (time, symbol, last_price, bid_price, ask_price, volume)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, d := range data {
		_, err = stmt.Exec(d.Time, d.Symbol, d.LastPrice, d.BidPrice, d.AskPrice, d.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert data: %w", err)
		}
	}

	_, err = db.Exec(fmt.Sprintf(`COPY market_data TO '%s' (FORMAT PARQUET)`, outputPath))
	if err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}

// GenerateAndWriteToParquet is a convenience function that generates synthetic bars and writes them to a parquet file
func GenerateAndWriteToParquet(config SyntheticConfig, outputPath string) error {
	generator := NewSyntheticGenerator(config)
	data, err := generator.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate synthetic data: %w", err)
	}

	return WriteToParquet(data, outputPath)
}
