package backtest

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// point is one replay step. Exactly one of Bar or Tick is populated,
// decided by the feed mode.
type point struct {
	Time   time.Time
	Symbol string
	Bar    types.Bar
	Tick   types.Tick
}

// feed is the validated, memory-resident replay sequence. It merges
// the per-symbol series into a single stream ordered by time with the
// symbol name breaking ties, so replays are reproducible bit for bit.
type feed struct {
	mode    Mode
	symbols []string
	bars    map[string][]types.Bar
	ticks   map[string][]types.Tick
	warmup  map[string][]types.Bar
	total   int
}

// newBarFeed validates the per-symbol bar series and splits off the
// warm-up prefix. Every configured symbol must have at least one bar;
// timestamps must be strictly increasing per symbol.
func newBarFeed(bySymbol map[string][]types.Bar, start, end optional.Option[time.Time]) (*feed, error) {
	f := &feed{
		mode:   ModeBar,
		bars:   make(map[string][]types.Bar, len(bySymbol)),
		warmup: make(map[string][]types.Bar, len(bySymbol)),
	}

	for symbol, series := range bySymbol {
		if len(series) == 0 {
			return nil, errors.Newf(errors.ErrCodeEmptySeries, "no bars loaded for symbol %s", symbol)
		}

		var prev time.Time

		for i, bar := range series {
			if err := bar.Validate(); err != nil {
				return nil, err
			}

			if i > 0 && !bar.Time.After(prev) {
				return nil, errors.Newf(errors.ErrCodeNonMonotonicSeries,
					"bars for %s are not strictly increasing at %s", symbol, bar.Time.Format(time.RFC3339))
			}

			prev = bar.Time
		}

		warmup, replay := splitAtStart(series, start, func(b types.Bar) time.Time { return b.Time })
		replay = truncateAtEnd(replay, end, func(b types.Bar) time.Time { return b.Time })

		f.warmup[symbol] = warmup
		f.bars[symbol] = replay
		f.symbols = append(f.symbols, symbol)
		f.total += len(replay)
	}

	sort.Strings(f.symbols)

	return f, nil
}

// newTickFeed is the tick-mode counterpart. Pre-start ticks are
// dropped rather than retained: warm-up context is a bar concept.
func newTickFeed(bySymbol map[string][]types.Tick, start, end optional.Option[time.Time]) (*feed, error) {
	f := &feed{
		mode:   ModeTick,
		ticks:  make(map[string][]types.Tick, len(bySymbol)),
		warmup: make(map[string][]types.Bar),
	}

	for symbol, series := range bySymbol {
		if len(series) == 0 {
			return nil, errors.Newf(errors.ErrCodeEmptySeries, "no ticks loaded for symbol %s", symbol)
		}

		var prev time.Time

		for i, tick := range series {
			if err := tick.Validate(); err != nil {
				return nil, err
			}

			if i > 0 && !tick.Time.After(prev) {
				return nil, errors.Newf(errors.ErrCodeNonMonotonicSeries,
					"ticks for %s are not strictly increasing at %s", symbol, tick.Time.Format(time.RFC3339))
			}

			prev = tick.Time
		}

		_, replay := splitAtStart(series, start, func(t types.Tick) time.Time { return t.Time })
		replay = truncateAtEnd(replay, end, func(t types.Tick) time.Time { return t.Time })

		f.ticks[symbol] = replay
		f.symbols = append(f.symbols, symbol)
		f.total += len(replay)
	}

	sort.Strings(f.symbols)

	return f, nil
}

// splitAtStart divides a sorted series at the configured start bound:
// everything strictly before it is warm-up, the rest replays.
func splitAtStart[T any](series []T, start optional.Option[time.Time], at func(T) time.Time) ([]T, []T) {
	if start.IsNone() {
		return nil, series
	}

	bound := start.Unwrap()
	idx := sort.Search(len(series), func(i int) bool {
		return !at(series[i]).Before(bound)
	})

	return series[:idx], series[idx:]
}

// truncateAtEnd drops everything strictly after the end bound.
func truncateAtEnd[T any](series []T, end optional.Option[time.Time], at func(T) time.Time) []T {
	if end.IsNone() {
		return series
	}

	bound := end.Unwrap()
	idx := sort.Search(len(series), func(i int) bool {
		return at(series[i]).After(bound)
	})

	return series[:idx]
}

// count is the number of replay points across all symbols, warm-up
// excluded.
func (f *feed) count() int {
	return f.total
}

// warmupBars returns the pre-start prefix of a symbol.
func (f *feed) warmupBars(symbol string) []types.Bar {
	return f.warmup[symbol]
}

// points yields the merged replay sequence ordered by (time, symbol).
func (f *feed) points() func(yield func(point) bool) {
	return func(yield func(point) bool) {
		cursors := make(map[string]int, len(f.symbols))

		for {
			next := ""

			var nextTime time.Time

			for _, symbol := range f.symbols {
				t, ok := f.headTime(symbol, cursors[symbol])
				if !ok {
					continue
				}

				if next == "" || t.Before(nextTime) {
					next = symbol
					nextTime = t
				}
			}

			if next == "" {
				return
			}

			if !yield(f.at(next, cursors[next])) {
				return
			}

			cursors[next]++
		}
	}
}

func (f *feed) headTime(symbol string, cursor int) (time.Time, bool) {
	if f.mode == ModeTick {
		series := f.ticks[symbol]
		if cursor >= len(series) {
			return time.Time{}, false
		}

		return series[cursor].Time, true
	}

	series := f.bars[symbol]
	if cursor >= len(series) {
		return time.Time{}, false
	}

	return series[cursor].Time, true
}

func (f *feed) at(symbol string, cursor int) point {
	if f.mode == ModeTick {
		tick := f.ticks[symbol][cursor]

		return point{Time: tick.Time, Symbol: symbol, Tick: tick}
	}

	bar := f.bars[symbol][cursor]

	return point{Time: bar.Time, Symbol: symbol, Bar: bar}
}
