// Command download fetches historical bars from market data providers
// into parquet files and can generate synthetic series for local runs.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/tidemark-labs/tidemark/internal/datasource"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/pkg/marketdata"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/provider"
)

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download or generate historical market data",
		Commands: []*cli.Command{
			fetchCommand(),
			syntheticCommand(),
			providersCommand(),
			schemaCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

var dateLayouts = cli.TimestampConfig{
	Layouts: []string{"2006-01-02", time.RFC3339},
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download bars from a provider into a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Data provider, see the providers command",
				Value:   string(provider.TypePolygon),
			},
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Ticker symbol to download",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config:  dateLayouts,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format, defaults to today",
				Value:   time.Now(),
				Config:  dateLayouts,
			},
			&cli.StringFlag{
				Name:  "timespan",
				Usage: fmt.Sprintf("Bar aggregation period (%v)", provider.AllTimespans),
				Value: string(provider.TimespanOneDay),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory for the parquet file",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Polygon API key, falls back to POLYGON_API_KEY",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a JSON download config, replaces the request flags",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(ctx context.Context, cmd *cli.Command) error {
	logInstance, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logInstance.Sync() }()

	providerName := cmd.String("provider")
	dataPath := cmd.String("data")

	apiKey := cmd.String("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("POLYGON_API_KEY")
	}

	var (
		clientConfig marketdata.ClientConfig
		params       marketdata.DownloadParams
	)

	if configPath := cmd.String("config"); configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read download config: %w", err)
		}

		downloadConfig, err := marketdata.ParseDownloadConfig(providerName, string(data))
		if err != nil {
			return err
		}

		params, err = downloadConfig.ToDownloadParams()
		if err != nil {
			return err
		}

		clientConfig = downloadConfig.ToClientConfig(dataPath)
	} else {
		if cmd.String("ticker") == "" {
			return fmt.Errorf("either --ticker or --config is required")
		}

		clientConfig = marketdata.ClientConfig{
			ProviderType:  provider.Type(providerName),
			WriterType:    marketdata.WriterParquet,
			DataPath:      dataPath,
			PolygonAPIKey: apiKey,
		}

		params = marketdata.DownloadParams{
			Ticker:    cmd.String("ticker"),
			StartDate: cmd.Timestamp("start"),
			EndDate:   cmd.Timestamp("end"),
			Timespan:  provider.Timespan(cmd.String("timespan")),
		}
	}

	// Providers report different units, so the bar re-anchors its
	// maximum on every callback.
	var bar *progressbar.ProgressBar

	onProgress := func(current float64, total float64, message string) {
		if bar == nil {
			bar = progressbar.Default(int64(total))
		}

		bar.ChangeMax64(int64(total))
		bar.Describe(message)
		_ = bar.Set(int(current))
	}

	client, err := marketdata.NewClient(clientConfig, logInstance, onProgress)
	if err != nil {
		return err
	}

	path, err := client.Download(ctx, params)
	if err != nil {
		return err
	}

	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Printf("\nDownloaded %s to %s\n", params.Ticker, path)

	return nil
}

func syntheticCommand() *cli.Command {
	return &cli.Command{
		Name:  "synthetic",
		Usage: "Generate a synthetic bar file for local experiments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Symbol stamped on the generated bars",
				Value: "SYN",
			},
			&cli.TimestampFlag{
				Name:   "start",
				Usage:  "Timestamp of the first bar in `YYYY-MM-DD` format",
				Value:  time.Now().AddDate(0, -1, 0),
				Config: dateLayouts,
			},
			&cli.IntFlag{
				Name:  "bars",
				Usage: "Number of bars to generate",
				Value: 1000,
			},
			&cli.StringFlag{
				Name:  "timespan",
				Usage: fmt.Sprintf("Bar aggregation period (%v)", provider.AllTimespans),
				Value: string(provider.TimespanOneMinute),
			},
			&cli.StringFlag{
				Name: "pattern",
				Usage: fmt.Sprintf("Price pattern (%s, %s, %s)",
					datasource.PatternIncreasing, datasource.PatternDecreasing, datasource.PatternVolatile),
				Value: string(datasource.PatternVolatile),
			},
			&cli.FloatFlag{
				Name:  "initial-price",
				Usage: "Price of the first bar",
				Value: 100,
			},
			&cli.FloatFlag{
				Name:  "volatility",
				Usage: "Base volatility percent per bar",
				Value: 2,
			},
			&cli.FloatFlag{
				Name:  "trend",
				Usage: "Trend strength for trending patterns",
				Value: 0.01,
			},
			&cli.FloatFlag{
				Name:  "drawdown",
				Usage: "Maximum drawdown percent for the volatile pattern",
				Value: 10,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed, 0 seeds from the clock",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory for the parquet file",
				Value:   "data",
			},
		},
		Action: syntheticAction,
	}
}

func syntheticAction(ctx context.Context, cmd *cli.Command) error {
	timespan := provider.Timespan(cmd.String("timespan"))
	if err := timespan.Validate(); err != nil {
		return err
	}

	config := datasource.SyntheticConfig{
		Symbol:             cmd.String("symbol"),
		StartTime:          cmd.Timestamp("start"),
		Interval:           timespan.Duration(),
		NumDataPoints:      int(cmd.Int("bars")),
		Pattern:            datasource.SimulationPattern(cmd.String("pattern")),
		InitialPrice:       cmd.Float("initial-price"),
		VolatilityPercent:  cmd.Float("volatility"),
		TrendStrength:      cmd.Float("trend"),
		MaxDrawdownPercent: cmd.Float("drawdown"),
		Seed:               cmd.Int("seed"),
	}

	dataPath := cmd.String("data")
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%d_%s.parquet",
		config.Symbol, config.Pattern, config.NumDataPoints, timespan)
	outputPath := filepath.Join(dataPath, filename)

	if err := datasource.GenerateAndWriteToParquet(config, outputPath); err != nil {
		return err
	}

	fmt.Printf("Generated %d %s bars at %s\n", config.NumDataPoints, config.Symbol, outputPath)

	return nil
}

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:   "providers",
		Usage:  "List the supported market data providers",
		Action: providersAction,
	}
}

func providersAction(ctx context.Context, cmd *cli.Command) error {
	for _, name := range marketdata.SupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		auth := "no credentials"
		if info.RequiresAuth {
			auth = "requires an API key"
		}

		fmt.Printf("%-10s %s, %s\n", info.Name, info.Description, auth)
	}

	return nil
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print a provider download config JSON schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    "Data provider, see the providers command",
				Required: true,
			},
		},
		Action: schemaAction,
	}
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schemaJSON, err := marketdata.GetDownloadConfigSchema(cmd.String("provider"))
	if err != nil {
		return err
	}

	fmt.Println(schemaJSON)

	return nil
}
