package backtest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
)

// exportDB writes backtest.db next to the YAML results and dumps the
// same tables as CSV views for spreadsheet use. The database file is
// plain DuckDB, so the run can be queried with SQL afterwards.
func (e *Engine) exportDB(folder string) error {
	dbPath := filepath.Join(folder, "backtest.db")

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to create results database", err)
	}
	defer db.Close()

	if err := createExportTables(db); err != nil {
		return err
	}

	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	if err := e.exportTrades(db, sq); err != nil {
		return err
	}

	if err := e.exportOrders(db, sq); err != nil {
		return err
	}

	if err := e.exportDailyResults(db, sq); err != nil {
		return err
	}

	// COPY needs raw SQL, Squirrel has no builder for it.
	copies := []struct {
		query string
		file  string
	}{
		{`COPY (SELECT * FROM trades ORDER BY id) TO '%s' (FORMAT CSV, HEADER)`, "trades.csv"},
		{`COPY (SELECT * FROM orders ORDER BY id) TO '%s' (FORMAT CSV, HEADER)`, "orders.csv"},
		{`COPY (SELECT * FROM daily_results ORDER BY "date") TO '%s' (FORMAT CSV, HEADER)`, "daily_results.csv"},
	}

	for _, c := range copies {
		path := filepath.Join(folder, c.file)
		if _, err := db.Exec(fmt.Sprintf(c.query, path)); err != nil {
			return errors.Wrapf(errors.ErrCodeEngineResultsError, err, "failed to export %s", c.file)
		}
	}

	e.log.Debug("Results database exported",
		zap.String("path", dbPath),
		zap.Int("trades", len(e.trades)),
	)

	return nil
}

func createExportTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id BIGINT PRIMARY KEY,
			order_id BIGINT,
			symbol TEXT,
			exchange TEXT,
			side TEXT,
			"offset" TEXT,
			price DOUBLE,
			volume DOUBLE,
			commission DOUBLE,
			pnl DOUBLE,
			executed_at TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS orders (
			id BIGINT PRIMARY KEY,
			symbol TEXT,
			exchange TEXT,
			side TEXT,
			"offset" TEXT,
			order_type TEXT,
			price DOUBLE,
			volume DOUBLE,
			filled_volume DOUBLE,
			status TEXT,
			reason TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS daily_results (
			"date" TEXT PRIMARY KEY,
			trade_count INTEGER,
			turnover DOUBLE,
			commission DOUBLE,
			slippage DOUBLE,
			holding_pnl DOUBLE,
			trading_pnl DOUBLE,
			total_pnl DOUBLE,
			net_pnl DOUBLE,
			balance DOUBLE,
			close_prices TEXT,
			pre_closes TEXT
		);
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to create export tables", err)
	}

	return nil
}

func (e *Engine) exportTrades(db *sql.DB, sq squirrel.StatementBuilderType) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to begin trades export", err)
	}

	for _, trade := range e.trades {
		insertQuery := sq.
			Insert("trades").
			Columns(
				"id", "order_id", "symbol", "exchange", "side", `"offset"`,
				"price", "volume", "commission", "pnl", "executed_at",
			).
			Values(
				trade.ID, trade.OrderID, trade.Symbol, trade.Exchange,
				string(trade.Side), string(trade.Offset),
				trade.Price, trade.Volume, trade.Commission, trade.PnL, trade.ExecutedAt,
			).
			RunWith(tx)

		if _, err := insertQuery.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to insert trade", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to commit trades export", err)
	}

	return nil
}

func (e *Engine) exportOrders(db *sql.DB, sq squirrel.StatementBuilderType) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to begin orders export", err)
	}

	for _, order := range e.book.all() {
		insertQuery := sq.
			Insert("orders").
			Columns(
				"id", "symbol", "exchange", "side", `"offset"`, "order_type",
				"price", "volume", "filled_volume", "status", "reason",
				"created_at", "updated_at",
			).
			Values(
				order.ID, order.Symbol, order.Exchange,
				string(order.Side), string(order.Offset), string(order.Type),
				order.Price, order.Volume, order.FilledVolume,
				string(order.Status), order.Reason,
				order.CreatedAt, order.UpdatedAt,
			).
			RunWith(tx)

		if _, err := insertQuery.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to insert order", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to commit orders export", err)
	}

	return nil
}

func (e *Engine) exportDailyResults(db *sql.DB, sq squirrel.StatementBuilderType) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to begin daily results export", err)
	}

	for _, day := range e.daily.all() {
		closes, err := json.Marshal(day.ClosePrices)
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to encode close prices", err)
		}

		preCloses, err := json.Marshal(day.PreCloses)
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to encode pre-closes", err)
		}

		insertQuery := sq.
			Insert("daily_results").
			Columns(
				`"date"`, "trade_count", "turnover", "commission", "slippage",
				"holding_pnl", "trading_pnl", "total_pnl", "net_pnl", "balance",
				"close_prices", "pre_closes",
			).
			Values(
				day.Date, day.TradeCount, day.Turnover, day.Commission, day.Slippage,
				day.HoldingPnL, day.TradingPnL, day.TotalPnL, day.NetPnL, day.Balance,
				string(closes), string(preCloses),
			).
			RunWith(tx)

		if _, err := insertQuery.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to insert daily result", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to commit daily results export", err)
	}

	return nil
}
