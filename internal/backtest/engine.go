// Package backtest replays historical market data against a strategy
// and accounts for every order, fill and position the strategy would
// have produced. One Engine instance runs one replay at a time on a
// single goroutine; results are deterministic for identical inputs.
package backtest

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/backtest/commission"
	"github.com/tidemark-labs/tidemark/internal/datasource"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// LifecycleCallbacks lets callers observe a run without touching its
// state. Every field may be nil.
type LifecycleCallbacks struct {
	// OnRunStart fires once after the data is loaded and validated.
	OnRunStart func(runID string, totalPoints int)
	// OnProcessData fires after each replayed data point.
	OnProcessData func(current int, total int)
	// OnRunEnd fires after results are written. The folder is empty
	// when no results folder was configured.
	OnRunEnd func(resultFolder string)
}

// Engine replays one strategy over one data window per Run call.
// Configure with Initialize, SetStrategy and a data source, then Run.
// Accessors expose the completed run; a failed or aborted run leaves
// nothing behind.
type Engine struct {
	config      Config
	initialized bool
	log         *logger.Logger

	strat          strategy.Strategy
	strategyConfig string

	source        datasource.DataSource
	memBars       []types.Bar
	memTicks      []types.Tick
	resultsFolder string

	symbolSet map[string]struct{}

	// Per-run state, rebuilt by every Run call.
	runID          string
	feed           *feed
	book           *orderBook
	ledger         *ledger
	daily          *dailyAggregator
	marks          *marker
	fees           commission.Model
	api            *engineContext
	history        map[string][]types.Bar
	trades         []types.Trade
	tradeSeq       int64
	clock          time.Time
	tradingEnabled bool
	stats          types.Statistics
	completed      bool
}

func NewEngine() *Engine {
	e := &Engine{}
	e.api = &engineContext{engine: e}

	return e
}

// Initialize parses and validates the engine configuration YAML and
// sets up the run logger. Must be called before Run.
func (e *Engine) Initialize(configYAML string) error {
	var config Config
	if err := yaml.Unmarshal([]byte(configYAML), &config); err != nil {
		return errors.Wrap(errors.ErrCodeEngineConfigError, "failed to parse engine configuration", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return err
	}

	if e.log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return errors.Wrap(errors.ErrCodeEngineConfigError, "failed to create logger", err)
		}

		e.log = log
	}

	e.config = config
	e.symbolSet = make(map[string]struct{}, len(config.Symbols))

	for _, symbol := range config.Symbols {
		e.symbolSet[symbol] = struct{}{}
	}

	e.initialized = true

	e.log.Debug("Backtest engine initialized",
		zap.Strings("symbols", config.Symbols),
		zap.String("mode", string(config.Mode)),
		zap.String("instrument", string(config.Instrument)),
		zap.Float64("capital", config.Capital),
	)

	return nil
}

// SetLogger replaces the run logger. Tests and the optimizer use it to
// keep parallel runs quiet.
func (e *Engine) SetLogger(log *logger.Logger) {
	if log != nil {
		e.log = log
	}
}

// SetStrategy attaches the strategy and its parameter YAML. The
// strategy is (re-)initialized from the YAML at the start of every
// Run, so one engine can replay the same strategy repeatedly.
func (e *Engine) SetStrategy(strat strategy.Strategy, configYAML string) error {
	if strat == nil {
		return errors.New(errors.ErrCodeEngineNoStrategy, "strategy must not be nil")
	}

	e.strat = strat
	e.strategyConfig = configYAML

	return nil
}

// SetDataSource attaches an initialized data source to read from.
func (e *Engine) SetDataSource(source datasource.DataSource) error {
	if source == nil {
		return errors.New(errors.ErrCodeEngineNoDatasource, "data source must not be nil")
	}

	e.source = source

	return nil
}

// SetBars feeds the run from an in-memory bar slice instead of a data
// source. Bars may arrive in any order; the feed sorts per symbol.
func (e *Engine) SetBars(bars []types.Bar) {
	e.memBars = bars
	e.memTicks = nil
}

// SetTicks feeds the run from an in-memory tick slice.
func (e *Engine) SetTicks(ticks []types.Tick) {
	e.memTicks = ticks
	e.memBars = nil
}

// SetResultsFolder selects where run artifacts are written. Empty
// disables file output; accessors still expose everything in memory.
func (e *Engine) SetResultsFolder(folder string) error {
	e.resultsFolder = folder

	return nil
}

// GetConfigSchema returns the JSON schema of the engine configuration.
func (e *Engine) GetConfigSchema() (string, error) {
	return e.config.GenerateSchemaJSON()
}

// Run executes one full replay. The context is checked between data
// points; cancellation aborts the run and discards partial state.
func (e *Engine) Run(ctx context.Context, callbacks LifecycleCallbacks) error {
	if err := e.preRunCheck(); err != nil {
		return err
	}

	if err := e.run(ctx, callbacks); err != nil {
		e.discardRun()

		return err
	}

	return nil
}

func (e *Engine) preRunCheck() error {
	if !e.initialized {
		return errors.New(errors.ErrCodeEngineConfigError, "engine is not initialized")
	}

	if e.strat == nil {
		return errors.New(errors.ErrCodeEngineNoStrategy, "no strategy set")
	}

	if e.source == nil && e.memBars == nil && e.memTicks == nil {
		return errors.New(errors.ErrCodeEngineNoDatasource, "no data source or in-memory data set")
	}

	return nil
}

func (e *Engine) run(runCtx context.Context, callbacks LifecycleCallbacks) error {
	if err := e.loadFeed(); err != nil {
		return err
	}

	if err := e.resetRunState(); err != nil {
		return err
	}

	if err := e.strat.Initialize(e.strategyConfig); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to initialize strategy", err)
	}

	total := e.feed.count()

	if callbacks.OnRunStart != nil {
		callbacks.OnRunStart(e.runID, total)
	}

	e.log.Info("Backtest run started",
		zap.String("run_id", e.runID),
		zap.String("strategy", e.strat.Name()),
		zap.Strings("symbols", e.config.Symbols),
		zap.String("mode", string(e.config.Mode)),
		zap.Int("points", total),
	)

	if err := e.strat.OnInit(e.api); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy OnInit failed", err)
	}

	e.tradingEnabled = true

	if err := e.strat.OnStart(e.api); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy OnStart failed", err)
	}

	current := 0

	for p := range e.feed.points() {
		if err := runCtx.Err(); err != nil {
			return errors.Wrapf(errors.ErrCodeEngineAborted, err, "run %s aborted after %d of %d points", e.runID, current, total)
		}

		if err := e.processPoint(p); err != nil {
			return err
		}

		current++

		if callbacks.OnProcessData != nil {
			callbacks.OnProcessData(current, total)
		}
	}

	e.tradingEnabled = false

	if err := e.cancelRemaining(); err != nil {
		return err
	}

	if err := e.strat.OnStop(e.api); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy OnStop failed", err)
	}

	e.daily.finish(e.ledger.equityFloat())
	e.stats = computeStatistics(e.runID, e.config.Capital, e.daily.all(), e.trades)
	e.completed = true

	resultFolder := ""

	if e.resultsFolder != "" {
		resultFolder = filepath.Join(e.resultsFolder, e.strat.Name(), e.runID)
		if err := e.writeResults(resultFolder); err != nil {
			return err
		}
	}

	if callbacks.OnRunEnd != nil {
		callbacks.OnRunEnd(resultFolder)
	}

	account := e.ledger.account()
	e.log.Info("Backtest run finished",
		zap.String("run_id", e.runID),
		zap.Int("points", total),
		zap.Int("trades", len(e.trades)),
		zap.Float64("end_equity", account.Equity),
		zap.Float64("realized_pnl", account.RealizedPnL),
	)

	return nil
}

// processPoint advances the replay by one data point: roll the day
// boundary, dispatch the data hook, match pending orders for the
// symbol, then re-mark its position at the new price.
func (e *Engine) processPoint(p point) error {
	e.clock = p.Time
	e.daily.roll(p.Time, e.ledger.volumes(), e.ledger.equityFloat())

	if e.config.Mode == ModeTick {
		if err := e.strat.OnTick(e.api, p.Tick); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy OnTick failed", err)
		}
	} else {
		e.history[p.Symbol] = append(e.history[p.Symbol], p.Bar)

		if err := e.strat.OnBar(e.api, p.Bar); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy OnBar failed", err)
		}
	}

	if err := e.matchSymbol(p); err != nil {
		return err
	}

	markPrice := p.Bar.Close
	if e.config.Mode == ModeTick {
		markPrice = p.Tick.LastPrice
	}

	e.ledger.mark(p.Symbol, markPrice)
	e.daily.observeClose(p.Symbol, markPrice)

	return nil
}

// matchSymbol tries every pending order of the point's symbol against
// the new data. Orders created at this very point never match: fills
// require data strictly after submission.
func (e *Engine) matchSymbol(p point) error {
	for _, id := range e.book.pendingIDs() {
		order := e.book.get(id)
		if order == nil || !order.IsActive() || order.Symbol != p.Symbol {
			continue
		}

		if !p.Time.After(order.CreatedAt) {
			continue
		}

		var (
			price float64
			ok    bool
		)

		if e.config.Mode == ModeTick {
			price, ok = matchTick(order, p.Tick, e.config.Slippage)
		} else {
			price, ok = matchBar(order, p.Bar, e.config.Slippage)
		}

		if !ok {
			continue
		}

		if err := e.fill(order, price, p.Time); err != nil {
			return err
		}
	}

	return nil
}

// fill completes an order in full: one trade, ledger update, then the
// OnOrder and OnTrade dispatches in that order.
func (e *Engine) fill(order *types.Order, price float64, at time.Time) error {
	e.book.markFilled(order.ID, order.Volume, at)

	e.tradeSeq++
	trade := types.Trade{
		ID:         e.tradeSeq,
		OrderID:    order.ID,
		Symbol:     order.Symbol,
		Exchange:   order.Exchange,
		Side:       order.Side,
		Offset:     order.Offset,
		Price:      price,
		Volume:     order.Volume,
		Commission: e.fees.Calculate(price, order.Volume, e.config.Size),
		ExecutedAt: at,
	}

	e.ledger.apply(&trade, e.config.Slippage)
	e.trades = append(e.trades, trade)
	e.daily.observeTrade(trade)

	e.log.Debug("Order filled",
		zap.Int64("order_id", order.ID),
		zap.Int64("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Float64("price", trade.Price),
		zap.Float64("volume", trade.Volume),
		zap.Float64("pnl", trade.PnL),
	)

	if err := e.dispatchOrder(*order); err != nil {
		return err
	}

	return e.dispatchTrade(trade)
}

// cancelRemaining force-cancels every order still pending when the
// replay ends. No trades result; OnOrder still fires per order.
func (e *Engine) cancelRemaining() error {
	for _, id := range e.book.pendingIDs() {
		cancelled, err := e.book.cancel(id, types.OrderReasonReplayEnd, e.clock)
		if err != nil {
			continue
		}

		e.log.Debug("Order cancelled at replay end", zap.Int64("order_id", id))

		if err := e.dispatchOrder(*cancelled); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) dispatchOrder(order types.Order) error {
	if err := e.strat.OnOrder(e.api, order); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy OnOrder failed", err)
	}

	return nil
}

func (e *Engine) dispatchTrade(trade types.Trade) error {
	if err := e.strat.OnTrade(e.api, trade); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy OnTrade failed", err)
	}

	return nil
}

// loadFeed builds the validated replay feed from the in-memory slices
// or the attached data source, filtered to the configured symbols.
func (e *Engine) loadFeed() error {
	if e.config.Mode == ModeTick {
		ticks := e.memTicks

		if ticks == nil {
			loaded, err := e.readSourceTicks()
			if err != nil {
				return err
			}

			ticks = loaded
		}

		bySymbol := make(map[string][]types.Tick, len(e.config.Symbols))
		for _, symbol := range e.config.Symbols {
			bySymbol[symbol] = nil
		}

		for _, tick := range ticks {
			if !e.knownSymbol(tick.Symbol) {
				continue
			}

			bySymbol[tick.Symbol] = append(bySymbol[tick.Symbol], tick)
		}

		feed, err := newTickFeed(bySymbol, e.config.Start, e.config.End)
		if err != nil {
			return err
		}

		e.feed = feed
	} else {
		bars := e.memBars

		if bars == nil {
			loaded, err := e.readSourceBars()
			if err != nil {
				return err
			}

			bars = loaded
		}

		bySymbol := make(map[string][]types.Bar, len(e.config.Symbols))
		for _, symbol := range e.config.Symbols {
			bySymbol[symbol] = nil
		}

		for _, bar := range bars {
			if !e.knownSymbol(bar.Symbol) {
				continue
			}

			bySymbol[bar.Symbol] = append(bySymbol[bar.Symbol], bar)
		}

		feed, err := newBarFeed(bySymbol, e.config.Start, e.config.End)
		if err != nil {
			return err
		}

		e.feed = feed
	}

	if e.feed.count() == 0 {
		return errors.New(errors.ErrCodeEngineNoData, "no data points in the configured window")
	}

	return nil
}

// readSourceBars drains the data source with only the end bound
// applied: pre-start bars are still needed as warm-up.
func (e *Engine) readSourceBars() ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range e.source.ReadAll(optional.None[time.Time](), e.config.End) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func (e *Engine) readSourceTicks() ([]types.Tick, error) {
	var ticks []types.Tick

	for tick, err := range e.source.ReadAllTicks(optional.None[time.Time](), e.config.End) {
		if err != nil {
			return nil, err
		}

		ticks = append(ticks, tick)
	}

	return ticks, nil
}

// resetRunState rebuilds the per-run components so repeated Run calls
// start clean.
func (e *Engine) resetRunState() error {
	if e.marks != nil {
		e.marks.close()
	}

	marks, err := newMarker(e.log)
	if err != nil {
		return err
	}

	e.runID = uuid.New().String()
	e.book = newOrderBook()
	e.ledger = newLedger(e.config.Capital, e.config.Size)
	e.daily = newDailyAggregator(e.config.Capital, e.config.Size, e.config.Slippage)
	e.marks = marks
	e.fees = commission.ForScheme(e.config.Scheme, e.config.Rate)
	e.trades = nil
	e.tradeSeq = 0
	e.clock = time.Time{}
	e.tradingEnabled = false
	e.stats = types.Statistics{}
	e.completed = false

	e.history = make(map[string][]types.Bar, len(e.config.Symbols))
	for _, symbol := range e.config.Symbols {
		e.history[symbol] = append([]types.Bar(nil), e.feed.warmupBars(symbol)...)
	}

	return nil
}

// discardRun drops partial state after a failed or aborted run.
func (e *Engine) discardRun() {
	if e.marks != nil {
		e.marks.close()
		e.marks = nil
	}

	e.feed = nil
	e.book = nil
	e.ledger = nil
	e.daily = nil
	e.trades = nil
	e.history = nil
	e.stats = types.Statistics{}
	e.completed = false
}

func (e *Engine) knownSymbol(symbol string) bool {
	_, ok := e.symbolSet[symbol]

	return ok
}

// DailyResults returns the sealed daily records of the completed run,
// nil when no run completed.
func (e *Engine) DailyResults() []types.DailyResult {
	if !e.completed || e.daily == nil {
		return nil
	}

	return append([]types.DailyResult(nil), e.daily.all()...)
}

// Statistics returns the summary of the completed run, zero-valued
// when no run completed.
func (e *Engine) Statistics() types.Statistics {
	return e.stats
}

// Trades returns the fill log of the completed run in execution order.
func (e *Engine) Trades() []types.Trade {
	if !e.completed {
		return nil
	}

	return append([]types.Trade(nil), e.trades...)
}

// Orders returns every order of the completed run sorted by id,
// rejected submissions included.
func (e *Engine) Orders() []types.Order {
	if !e.completed || e.book == nil {
		return nil
	}

	return e.book.all()
}

// Marks returns the chart annotations of the completed run ordered by
// time.
func (e *Engine) Marks() ([]types.Mark, error) {
	if !e.completed || e.marks == nil {
		return nil, nil
	}

	return e.marks.all()
}

// Account returns the final account snapshot of the completed run.
func (e *Engine) Account() types.Account {
	if !e.completed || e.ledger == nil {
		return types.Account{}
	}

	return e.ledger.account()
}
