package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/types"
)

// DataSource supplies the historical series a replay runs over. A
// source is initialized once, read sequentially and closed; readers
// yield records ordered by time ascending with the symbol as the tie
// breaker, which is the order the replay dispatches them in.
type DataSource interface {
	// Initialize loads market data from the given file path.
	Initialize(path string) error
	// ReadAll yields bars within the optional time bounds.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// ReadAllTicks yields ticks within the optional time bounds. Only
	// meaningful for sources loaded with tick data.
	ReadAllTicks(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Tick, error) bool)
	// Count returns the number of data points within the bounds.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any resources held by the source.
	Close() error
}
