package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBDataSource reads historical bars and ticks from parquet or CSV
// files through a DuckDB view. The same view serves both readers; bar
// files carry open/high/low/close columns, tick files carry
// last_price/bid_price/ask_price columns.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDB creates a DuckDB-backed data source. The path is the
// database location, ":memory:" for an ephemeral one. Initialize loads
// the market data file into the view.
func NewDuckDB(path string, log *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	if _, err := db.Exec(`
		SET memory_limit='4GB';
		SET threads=4;
	`); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to configure duckdb", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource. The file format is picked by
// extension: .parquet through read_parquet, .csv through
// read_csv_auto.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to drop existing view", err)
	}

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = fmt.Sprintf(`read_parquet('%s')`, path)
	case ".csv":
		reader = fmt.Sprintf(`read_csv_auto('%s')`, path)
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file %q, expected .parquet or .csv", path)
	}

	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM %s;`, reader)
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load market data from %s", path)
	}

	return nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		d.logger.Debug("Reading all bars from DuckDB")

		builder := d.sq.
			Select("time", "symbol", "open", "high", "low", "close", "volume").
			From("market_data").
			OrderBy("time ASC", "symbol ASC")

		if start.IsSome() {
			builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
		}

		if end.IsSome() {
			builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
		}

		query, args, err := builder.ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				timestamp                           time.Time
				symbol                              string
				open, high, low, closePrice, volume float64
			)

			if err := rows.Scan(&timestamp, &symbol, &open, &high, &low, &closePrice, &volume); err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err))

				return
			}

			bar := types.Bar{
				Symbol: symbol,
				Time:   timestamp,
				Open:   open,
				High:   high,
				Low:    low,
				Close:  closePrice,
				Volume: volume,
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// ReadAllTicks implements DataSource.
func (d *DuckDBDataSource) ReadAllTicks(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Tick, error) bool) {
	return func(yield func(types.Tick, error) bool) {
		d.logger.Debug("Reading all ticks from DuckDB")

		builder := d.sq.
			Select("time", "symbol", "last_price", "bid_price", "ask_price", "volume").
			From("market_data").
			OrderBy("time ASC", "symbol ASC")

		if start.IsSome() {
			builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
		}

		if end.IsSome() {
			builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
		}

		query, args, err := builder.ToSql()
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query tick data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				timestamp                  time.Time
				symbol                     string
				last, bid, ask, tickVolume float64
			)

			if err := rows.Scan(&timestamp, &symbol, &last, &bid, &ask, &tickVolume); err != nil {
				yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err))

				return
			}

			tick := types.Tick{
				Symbol:    symbol,
				Time:      timestamp,
				LastPrice: last,
				BidPrice:  bid,
				AskPrice:  ask,
				Volume:    tickVolume,
			}

			if !yield(tick, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Tick{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := d.sq.
		Select("COUNT(*)").
		From("market_data")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}
