// Package doublema implements a moving average crossover strategy. A
// golden cross (fast MA rising above slow MA) opens a long position
// and a death cross closes it again.
package doublema

import (
	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/backtest/commission"
	"github.com/tidemark-labs/tidemark/internal/indicator"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/internal/utils"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Name is the registry name of the strategy.
const Name = "double_ma"

// Config holds the strategy parameters.
type Config struct {
	FastWindow int     `yaml:"fast_window" jsonschema:"title=Fast Window,description=Period of the fast moving average,minimum=1,default=10"`
	SlowWindow int     `yaml:"slow_window" jsonschema:"title=Slow Window,description=Period of the slow moving average,minimum=1,default=20"`
	FixedSize  float64 `yaml:"fixed_size" jsonschema:"title=Fixed Size,description=Volume of each entry order,default=1"`
	// CashFraction switches entries from the fixed size to a fraction
	// of account cash. Zero keeps the fixed size.
	CashFraction float64 `yaml:"cash_fraction" jsonschema:"title=Cash Fraction,description=Fraction of account cash spent per entry when positive,minimum=0,maximum=1"`
	// FeeRate is the commission rate assumed while sizing, so a full
	// fraction entry still covers its own fees.
	FeeRate float64 `yaml:"fee_rate" jsonschema:"title=Fee Rate,description=Commission rate assumed when sizing by cash fraction,minimum=0"`
}

// DoubleMA trades moving average crossovers. It is long-only, so it
// also runs on spot instruments.
type DoubleMA struct {
	strategy.Base
	config Config
	fastMA indicator.Indicator
	slowMA indicator.Indicator

	// maTrend tracks the last crossover direction: 1 after a golden
	// cross, -1 after a death cross, 0 before the first reading.
	maTrend int
}

// New creates the strategy with default parameters. Initialize
// overrides them from the config YAML.
func New() *DoubleMA {
	return &DoubleMA{
		config: Config{
			FastWindow: 10,
			SlowWindow: 20,
			FixedSize:  1.0,
		},
	}
}

// Name implements strategy.Strategy.
func (s *DoubleMA) Name() string { return Name }

// Initialize implements strategy.Strategy.
func (s *DoubleMA) Initialize(config string) error {
	if config != "" {
		if err := yaml.Unmarshal([]byte(config), &s.config); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse double_ma config", err)
		}
	}

	if s.config.FastWindow <= 0 || s.config.SlowWindow <= 0 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "windows must be positive, got fast=%d slow=%d", s.config.FastWindow, s.config.SlowWindow)
	}

	if s.config.FastWindow >= s.config.SlowWindow {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "fast window %d must be smaller than slow window %d", s.config.FastWindow, s.config.SlowWindow)
	}

	if s.config.FixedSize <= 0 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "fixed_size must be positive, got %f", s.config.FixedSize)
	}

	if s.config.CashFraction < 0 || s.config.CashFraction > 1 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "cash_fraction must be between 0 and 1, got %f", s.config.CashFraction)
	}

	if s.config.FeeRate < 0 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "fee_rate must not be negative, got %f", s.config.FeeRate)
	}

	s.fastMA = indicator.NewMA()
	if err := s.fastMA.Config(s.config.FastWindow); err != nil {
		return err
	}

	s.slowMA = indicator.NewMA()
	if err := s.slowMA.Config(s.config.SlowWindow); err != nil {
		return err
	}

	s.maTrend = 0

	return nil
}

// OnBar implements strategy.Strategy.
func (s *DoubleMA) OnBar(ctx strategy.Context, bar types.Bar) error {
	bars := ctx.Bars(bar.Symbol, s.config.SlowWindow)
	if len(bars) < s.config.SlowWindow {
		return nil
	}

	fast, err := s.fastMA.Compute(bars)
	if err != nil {
		return err
	}

	slow, err := s.slowMA.Compute(bars)
	if err != nil {
		return err
	}

	pos := ctx.Position(bar.Symbol).Volume

	switch {
	case fast > slow && s.maTrend != 1:
		s.maTrend = 1

		if pos <= 0 {
			volume := s.entryVolume(ctx, bar.Close)
			if volume <= 0 {
				return nil
			}

			if _, err := ctx.Buy(bar.Symbol, bar.Close, volume); err != nil {
				ctx.Logger().Debug("buy rejected", zap.String("symbol", bar.Symbol), zap.Error(err))

				return nil
			}

			s.markCross(ctx, bar, types.SignalTypeBuy, "golden cross")
		}
	case fast < slow && s.maTrend != -1:
		s.maTrend = -1

		if pos > 0 {
			if _, err := ctx.Sell(bar.Symbol, bar.Close, pos); err != nil {
				ctx.Logger().Debug("sell rejected", zap.String("symbol", bar.Symbol), zap.Error(err))

				return nil
			}

			s.markCross(ctx, bar, types.SignalTypeSell, "death cross")
		}
	}

	return nil
}

// entryVolume sizes an entry: the configured fixed size, or a cash
// fraction of the account. Fraction sizing assumes a unit contract
// multiplier and floors to four decimals.
func (s *DoubleMA) entryVolume(ctx strategy.Context, price float64) float64 {
	if s.config.CashFraction <= 0 {
		return s.config.FixedSize
	}

	cash := ctx.Account().Cash
	model := commission.NewRate(s.config.FeeRate)

	return utils.FloorVolume(utils.VolumeForFraction(cash, s.config.CashFraction, price, 1, model), 4)
}

func (s *DoubleMA) markCross(ctx strategy.Context, bar types.Bar, signalType types.SignalType, title string) {
	mark := types.Mark{
		Time:     bar.Time,
		Symbol:   bar.Symbol,
		Price:    bar.Close,
		Color:    types.MarkColorGreen,
		Shape:    types.MarkShapeTriangle,
		Title:    title,
		Category: Name,
		Signal: optional.Some(types.Signal{
			Time:   bar.Time,
			Type:   signalType,
			Name:   Name,
			Reason: title,
			Symbol: bar.Symbol,
		}),
	}

	if signalType == types.SignalTypeSell {
		mark.Color = types.MarkColorRed
	}

	if err := ctx.Mark(mark); err != nil {
		ctx.Logger().Warn("failed to record mark", zap.Error(err))
	}
}
