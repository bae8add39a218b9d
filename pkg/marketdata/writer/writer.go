// Package writer persists downloaded bar series. Writers buffer rows
// between Initialize and Finalize; a series is only durable once
// Finalize returns.
package writer

import "github.com/tidemark-labs/tidemark/internal/types"

// BarWriter receives downloaded bars one at a time and materializes
// them into a file a datasource can read back.
type BarWriter interface {
	// Initialize prepares the destination. Must be called before the
	// first WriteBar.
	Initialize() error
	// WriteBar buffers a single bar.
	WriteBar(bar types.Bar) error
	// Finalize flushes everything buffered so far and returns the path
	// of the written file.
	Finalize() (string, error)
	// Close releases the writer's resources. Safe to call after
	// Finalize or after a failed download.
	Close() error
	// OutputPath returns the configured destination path.
	OutputPath() string
}
