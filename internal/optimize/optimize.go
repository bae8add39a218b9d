// Package optimize runs a brute force parameter grid search. Every
// combination gets its own engine and strategy instance, so runs never
// share mutable state and the sweep parallelizes freely.
package optimize

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/tidemark-labs/tidemark/internal/backtest"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Parameter is one dimension of the search grid, swept from Start to
// End inclusive in Step increments.
type Parameter struct {
	Name  string
	Start float64
	End   float64
	Step  float64
}

func (p Parameter) validate() error {
	if p.Name == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "parameter name is required")
	}

	if p.Step <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "parameter %s needs a positive step", p.Name)
	}

	if p.End < p.Start {
		return errors.Newf(errors.ErrCodeInvalidParameter, "parameter %s ends before it starts", p.Name)
	}

	return nil
}

// values expands the sweep. The count is fixed up front so float
// accumulation cannot drop the end value.
func (p Parameter) values() []float64 {
	n := int(math.Floor((p.End-p.Start)/p.Step+1e-9)) + 1

	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.Start+float64(i)*p.Step)
	}

	return out
}

// Target selects the statistic a grid search ranks by. The names match
// the yaml keys of types.Statistics.
type Target string

const (
	TargetTotalReturn         Target = "total_return"
	TargetAnnualReturn        Target = "annual_return"
	TargetSharpeRatio         Target = "sharpe_ratio"
	TargetReturnDrawdownRatio Target = "return_drawdown_ratio"
	TargetTotalNetPnL         Target = "total_net_pnl"
	TargetEndBalance          Target = "end_balance"
	TargetWinRate             Target = "win_rate"
)

var targetValues = map[Target]func(types.Statistics) float64{
	TargetTotalReturn:         func(s types.Statistics) float64 { return s.TotalReturn },
	TargetAnnualReturn:        func(s types.Statistics) float64 { return s.AnnualReturn },
	TargetSharpeRatio:         func(s types.Statistics) float64 { return s.SharpeRatio },
	TargetReturnDrawdownRatio: func(s types.Statistics) float64 { return s.ReturnDrawdownRatio },
	TargetTotalNetPnL:         func(s types.Statistics) float64 { return s.TotalNetPnL },
	TargetEndBalance:          func(s types.Statistics) float64 { return s.EndBalance },
	TargetWinRate:             func(s types.Statistics) float64 { return s.WinRate },
}

// AllTargets lists the rankable statistics in alphabetical order.
func AllTargets() []string {
	names := make([]string, 0, len(targetValues))
	for target := range targetValues {
		names = append(names, string(target))
	}

	sort.Strings(names)

	return names
}

// Validate reports whether the target names a rankable statistic.
func (t Target) Validate() error {
	if _, ok := targetValues[t]; !ok {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown optimization target %q", string(t))
	}

	return nil
}

func (t Target) value(stats types.Statistics) float64 {
	return targetValues[t](stats)
}

// Setting is one point of the grid: parameter name to value.
type Setting map[string]float64

// YAML renders the setting as a strategy parameter document. Whole
// numbers are emitted as integers so integer typed strategy fields
// unmarshal cleanly.
func (s Setting) YAML() (string, error) {
	doc := make(map[string]any, len(s))

	for name, value := range s {
		if value == math.Trunc(value) {
			doc[name] = int(value)
		} else {
			doc[name] = value
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "failed to render parameter setting", err)
	}

	return string(data), nil
}

// String formats the setting with sorted keys, so equal-target results
// order deterministically and logs stay readable.
func (s Setting) String() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, s[name]))
	}

	return strings.Join(parts, " ")
}

// Result is the outcome of one combination.
type Result struct {
	Setting     Setting
	TargetValue float64
	Statistics  types.Statistics
}

// Optimizer sweeps a parameter grid with independent engines.
type Optimizer struct {
	engineConfig string
	grid         []Parameter
	target       Target
	parallel     int

	factory  strategy.Factory
	bars     []types.Bar
	ticks    []types.Tick
	progress func(completed, total int)
}

// New creates an optimizer for the given engine configuration and
// grid. parallel caps the number of concurrent runs; zero or negative
// means one per CPU.
func New(engineConfig string, grid []Parameter, target Target, parallel int) *Optimizer {
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	return &Optimizer{
		engineConfig: engineConfig,
		grid:         grid,
		target:       target,
		parallel:     parallel,
	}
}

// SetFactory sets the constructor that builds one fresh strategy
// instance per combination.
func (o *Optimizer) SetFactory(factory strategy.Factory) {
	o.factory = factory
}

// SetBars feeds every run from the shared bar series. Engines
// materialize their own per-symbol views, the input is never written.
func (o *Optimizer) SetBars(bars []types.Bar) {
	o.bars = bars
	o.ticks = nil
}

// SetTicks feeds every run from the shared tick series.
func (o *Optimizer) SetTicks(ticks []types.Tick) {
	o.ticks = ticks
	o.bars = nil
}

// SetProgress registers a callback fired after each finished
// combination. Calls are serialized, the callback needs no locking.
func (o *Optimizer) SetProgress(fn func(completed, total int)) {
	o.progress = fn
}

// Run executes the full grid and returns the results sorted by the
// target statistic, best first. The first failing combination aborts
// the sweep, as a configuration broken for one point is broken for
// all of them.
func (o *Optimizer) Run(ctx context.Context) ([]Result, error) {
	if err := o.target.Validate(); err != nil {
		return nil, err
	}

	if o.factory == nil {
		return nil, errors.New(errors.ErrCodeEngineNoStrategy, "no strategy factory set")
	}

	if len(o.bars) == 0 && len(o.ticks) == 0 {
		return nil, errors.New(errors.ErrCodeEngineNoData, "no data set for optimization")
	}

	if len(o.grid) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "no parameters to optimize")
	}

	seen := make(map[string]bool, len(o.grid))

	for _, p := range o.grid {
		if err := p.validate(); err != nil {
			return nil, err
		}

		if seen[p.Name] {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "duplicate parameter %s", p.Name)
		}

		seen[p.Name] = true
	}

	settings := expand(o.grid)
	results := make([]Result, len(settings))

	var (
		mu        sync.Mutex
		completed int
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallel)

	for i, setting := range settings {
		g.Go(func() error {
			result, err := o.runOne(groupCtx, setting)
			if err != nil {
				return err
			}

			results[i] = result

			if o.progress != nil {
				mu.Lock()
				completed++
				o.progress(completed, len(settings))
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TargetValue != results[j].TargetValue {
			return results[i].TargetValue > results[j].TargetValue
		}

		return results[i].Setting.String() < results[j].Setting.String()
	})

	return results, nil
}

func (o *Optimizer) runOne(ctx context.Context, setting Setting) (Result, error) {
	configYAML, err := setting.YAML()
	if err != nil {
		return Result{}, err
	}

	engine := backtest.NewEngine()
	engine.SetLogger(logger.NewNopLogger())

	if err := engine.Initialize(o.engineConfig); err != nil {
		return Result{}, err
	}

	if err := engine.SetStrategy(o.factory(), configYAML); err != nil {
		return Result{}, err
	}

	if o.ticks != nil {
		engine.SetTicks(o.ticks)
	} else {
		engine.SetBars(o.bars)
	}

	if err := engine.Run(ctx, backtest.LifecycleCallbacks{}); err != nil {
		return Result{}, err
	}

	stats := engine.Statistics()

	return Result{
		Setting:     setting,
		TargetValue: o.target.value(stats),
		Statistics:  stats,
	}, nil
}

// expand produces the cartesian product of all parameter sweeps in a
// stable order.
func expand(grid []Parameter) []Setting {
	settings := []Setting{{}}

	for _, p := range grid {
		values := p.values()
		next := make([]Setting, 0, len(settings)*len(values))

		for _, base := range settings {
			for _, value := range values {
				s := make(Setting, len(base)+1)
				for name, v := range base {
					s[name] = v
				}

				s[p.Name] = value
				next = append(next, s)
			}
		}

		settings = next
	}

	return settings
}
