// Command backtest replays trading strategies over recorded bar files,
// searches parameter grids and prints configuration schemas.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/tidemark-labs/tidemark/internal/backtest"
	"github.com/tidemark-labs/tidemark/internal/datasource"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/optimize"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/strategy/doublema"
	"github.com/tidemark-labs/tidemark/internal/strategy/grid"
	"github.com/tidemark-labs/tidemark/internal/types"
)

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay trading strategies over recorded market data",
		Commands: []*cli.Command{
			runCommand(),
			optimizeCommand(),
			schemaCommand(),
			strategiesCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func strategyFactories() map[string]strategy.Factory {
	return map[string]strategy.Factory{
		doublema.Name: func() strategy.Strategy { return doublema.New() },
		grid.Name:     func() strategy.Strategy { return grid.New() },
	}
}

func strategyNames() []string {
	factories := strategyFactories()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func newRegistry() (strategy.Registry, error) {
	registry := strategy.NewRegistry()

	for name, factory := range strategyFactories() {
		if err := registry.Register(name, factory); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func newLogger(verbose bool) (*logger.Logger, error) {
	if verbose {
		return logger.NewDebugLogger()
	}

	return logger.NewLogger()
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one strategy over a bar file and write results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine config YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Strategy name, see the strategies command",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "strategy-config",
				Usage: "Path to the strategy parameter YAML",
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bar file (parquet or csv)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Results root folder, empty disables file output",
				Value:   "results",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	logInstance, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logInstance.Sync() }()

	engineConfig, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read engine config: %w", err)
	}

	strategyConfig := ""

	if path := cmd.String("strategy-config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read strategy config: %w", err)
		}

		strategyConfig = string(data)
	}

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	strat, err := registry.Create(cmd.String("strategy"))
	if err != nil {
		return err
	}

	engine := backtest.NewEngine()
	engine.SetLogger(logInstance)

	if err := engine.Initialize(string(engineConfig)); err != nil {
		return err
	}

	if err := engine.SetStrategy(strat, strategyConfig); err != nil {
		return err
	}

	source, err := datasource.NewDuckDB(":memory:", logInstance)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	if err := source.Initialize(cmd.String("data")); err != nil {
		return err
	}

	if err := engine.SetDataSource(source); err != nil {
		return err
	}

	if err := engine.SetResultsFolder(cmd.String("results")); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	err = engine.Run(ctx, backtest.LifecycleCallbacks{
		OnRunStart: func(runID string, totalPoints int) {
			bar = progressbar.Default(int64(totalPoints))
			bar.Describe(fmt.Sprintf("Replaying %s", strat.Name()))
		},
		OnProcessData: func(current, total int) {
			_ = bar.Set(current)
		},
		OnRunEnd: func(resultFolder string) {
			_ = bar.Finish()

			if resultFolder != "" {
				fmt.Printf("\nResults written to %s\n", resultFolder)
			}
		},
	})
	if err != nil {
		return err
	}

	printStatistics(engine.Statistics())

	return nil
}

func printStatistics(stats types.Statistics) {
	fmt.Printf("Run %s finished\n", stats.RunID)
	fmt.Printf("  period         %s to %s (%d days)\n", stats.StartDate, stats.EndDate, stats.TotalDays)
	fmt.Printf("  end balance    %.2f\n", stats.EndBalance)
	fmt.Printf("  total return   %.2f%%\n", stats.TotalReturn*100)
	fmt.Printf("  annual return  %.2f%%\n", stats.AnnualReturn*100)
	fmt.Printf("  max drawdown   %.2f%%\n", stats.MaxDrawdown*100)
	fmt.Printf("  sharpe ratio   %.2f\n", stats.SharpeRatio)
	fmt.Printf("  trades         %d (win rate %.1f%%)\n", stats.TotalTradeCount, stats.WinRate*100)
	fmt.Printf("  commission     %.2f\n", stats.TotalCommission)
}

func optimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Grid search strategy parameters over a bar file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine config YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Strategy name, see the strategies command",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bar file (parquet or csv)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "param",
				Aliases:  []string{"p"},
				Usage:    "Parameter sweep as name=start:end:step, repeatable",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "target",
				Usage: fmt.Sprintf("Statistic to maximize (%s)", strings.Join(optimize.AllTargets(), ", ")),
				Value: string(optimize.TargetTotalReturn),
			},
			&cli.IntFlag{
				Name:  "parallel",
				Usage: "Concurrent runs, 0 means one per CPU",
				Value: 0,
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "How many combinations to print",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Action: optimizeAction,
	}
}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	logInstance, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logInstance.Sync() }()

	engineConfig, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read engine config: %w", err)
	}

	name := cmd.String("strategy")

	factory, ok := strategyFactories()[name]
	if !ok {
		return fmt.Errorf("unknown strategy %q, available: %s", name, strings.Join(strategyNames(), ", "))
	}

	specs := cmd.StringSlice("param")
	params := make([]optimize.Parameter, 0, len(specs))

	for _, spec := range specs {
		param, err := parseParameter(spec)
		if err != nil {
			return err
		}

		params = append(params, param)
	}

	bars, err := loadBars(cmd.String("data"), logInstance)
	if err != nil {
		return err
	}

	target := cmd.String("target")

	optimizer := optimize.New(string(engineConfig), params, optimize.Target(target), int(cmd.Int("parallel")))
	optimizer.SetFactory(factory)
	optimizer.SetBars(bars)

	var bar *progressbar.ProgressBar

	optimizer.SetProgress(func(completed, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total))
			bar.Describe(fmt.Sprintf("Optimizing %s", name))
		}

		_ = bar.Set(completed)
	})

	results, err := optimizer.Run(ctx)
	if err != nil {
		return err
	}

	if bar != nil {
		_ = bar.Finish()
	}

	top := int(cmd.Int("top"))
	if top <= 0 || top > len(results) {
		top = len(results)
	}

	fmt.Printf("\nTop %d of %d combinations by %s\n", top, len(results), target)

	for i, result := range results[:top] {
		fmt.Printf("%3d. %-40s %14.4f\n", i+1, result.Setting, result.TargetValue)
	}

	return nil
}

// parseParameter parses a sweep of the form name=start:end:step.
func parseParameter(spec string) (optimize.Parameter, error) {
	name, sweep, found := strings.Cut(spec, "=")
	parts := strings.Split(sweep, ":")

	if !found || name == "" || len(parts) != 3 {
		return optimize.Parameter{}, fmt.Errorf("invalid parameter %q, want name=start:end:step", spec)
	}

	values := make([]float64, len(parts))

	for i, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return optimize.Parameter{}, fmt.Errorf("invalid parameter %q: %w", spec, err)
		}

		values[i] = value
	}

	return optimize.Parameter{Name: name, Start: values[0], End: values[1], Step: values[2]}, nil
}

// loadBars materializes the whole bar file in memory so every grid
// combination replays the same series.
func loadBars(path string, logInstance *logger.Logger) ([]types.Bar, error) {
	source, err := datasource.NewDuckDB(":memory:", logInstance)
	if err != nil {
		return nil, err
	}
	defer func() { _ = source.Close() }()

	if err := source.Initialize(path); err != nil {
		return nil, err
	}

	var bars []types.Bar

	for bar, err := range source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the engine or a strategy config JSON schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Strategy name, prints the engine schema when omitted",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the schema to this file instead of stdout",
			},
		},
		Action: schemaAction,
	}
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	var (
		schemaJSON string
		err        error
	)

	switch name := cmd.String("strategy"); name {
	case "":
		config := backtest.DefaultConfig()
		schemaJSON, err = config.GenerateSchemaJSON()
	case doublema.Name:
		schemaJSON, err = strategy.ToJSONSchema(doublema.Config{})
	case grid.Name:
		schemaJSON, err = strategy.ToJSONSchema(grid.Config{})
	default:
		return fmt.Errorf("unknown strategy %q, available: %s", name, strings.Join(strategyNames(), ", "))
	}

	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, []byte(schemaJSON), 0o644); err != nil {
			return fmt.Errorf("failed to write schema: %w", err)
		}

		fmt.Printf("Schema written to %s\n", output)

		return nil
	}

	fmt.Println(schemaJSON)

	return nil
}

func strategiesCommand() *cli.Command {
	return &cli.Command{
		Name:   "strategies",
		Usage:  "List the registered strategies",
		Action: strategiesAction,
	}
}

func strategiesAction(ctx context.Context, cmd *cli.Command) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	for _, name := range registry.List() {
		fmt.Println(name)
	}

	return nil
}
