package datasource

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// MemoryDataSource serves bars and ticks from slices held in memory.
// The optimizer hands each worker its own copy so parallel runs never
// share state, and tests use it to replay hand-built fixtures.
type MemoryDataSource struct {
	bars  []types.Bar
	ticks []types.Tick
}

// NewMemory creates a data source over the given records. Both slices
// are copied and sorted by time ascending with the symbol as the tie
// breaker, so callers may pass data in any order.
func NewMemory(bars []types.Bar, ticks []types.Tick) *MemoryDataSource {
	barsCopy := make([]types.Bar, len(bars))
	copy(barsCopy, bars)
	sort.SliceStable(barsCopy, func(i, j int) bool {
		if !barsCopy[i].Time.Equal(barsCopy[j].Time) {
			return barsCopy[i].Time.Before(barsCopy[j].Time)
		}

		return barsCopy[i].Symbol < barsCopy[j].Symbol
	})

	ticksCopy := make([]types.Tick, len(ticks))
	copy(ticksCopy, ticks)
	sort.SliceStable(ticksCopy, func(i, j int) bool {
		if !ticksCopy[i].Time.Equal(ticksCopy[j].Time) {
			return ticksCopy[i].Time.Before(ticksCopy[j].Time)
		}

		return ticksCopy[i].Symbol < ticksCopy[j].Symbol
	})

	return &MemoryDataSource{
		bars:  barsCopy,
		ticks: ticksCopy,
	}
}

// Initialize implements DataSource. A memory source carries its data
// from construction, so loading a file through it is a caller bug.
func (m *MemoryDataSource) Initialize(path string) error {
	return errors.Newf(errors.ErrCodeInvalidParameter, "memory data source does not load files, got %q", path)
}

// ReadAll implements DataSource.
func (m *MemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range m.bars {
			if !inRange(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// ReadAllTicks implements DataSource.
func (m *MemoryDataSource) ReadAllTicks(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Tick, error) bool) {
	return func(yield func(types.Tick, error) bool) {
		for _, tick := range m.ticks {
			if !inRange(tick.Time, start, end) {
				continue
			}

			if !yield(tick, nil) {
				return
			}
		}
	}
}

// Count implements DataSource. Bars are counted when present, ticks
// otherwise, matching which reader the replay will use.
func (m *MemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	if len(m.bars) > 0 {
		for _, bar := range m.bars {
			if inRange(bar.Time, start, end) {
				count++
			}
		}

		return count, nil
	}

	for _, tick := range m.ticks {
		if inRange(tick.Time, start, end) {
			count++
		}
	}

	return count, nil
}

// Close implements DataSource.
func (m *MemoryDataSource) Close() error {
	return nil
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
