package writer

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// ParquetWriter stages bars in an in-memory DuckDB table and exports
// them as one parquet file on Finalize. The staged columns match what
// the replay data source reads back, so a finished download is
// immediately replayable.
type ParquetWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewParquetWriter creates a writer that will export to outputPath.
// The path should end in .parquet.
func NewParquetWriter(outputPath string) *ParquetWriter {
	return &ParquetWriter{outputPath: outputPath}
}

// Initialize opens the staging database, creates the bar table and
// prepares the bulk insert inside one transaction.
func (w *ParquetWriter) Initialize() error {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open staging database", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`); err != nil {
		db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create staging table", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin staging transaction", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO bars (time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare insert", err)
	}

	w.db = db
	w.tx = tx
	w.stmt = stmt

	return nil
}

// WriteBar implements BarWriter.
func (w *ParquetWriter) WriteBar(bar types.Bar) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not initialized")
	}

	if _, err := w.stmt.Exec(
		bar.Time,
		bar.Symbol,
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
	); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to stage bar for %s", bar.Symbol)
	}

	return nil
}

// Finalize commits the staged rows and copies them out time-ordered.
func (w *ParquetWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit staged bars", err)
	}

	w.tx = nil

	// COPY needs raw SQL, Squirrel has no builder for it.
	copyQuery := fmt.Sprintf(`COPY (SELECT * FROM bars ORDER BY time, symbol) TO '%s' (FORMAT PARQUET)`, w.outputPath)
	if _, err := w.db.Exec(copyQuery); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export parquet to %s", w.outputPath)
	}

	return w.outputPath, nil
}

// Close implements BarWriter. An uncommitted transaction is rolled
// back, so a failed download leaves no partial file.
func (w *ParquetWriter) Close() error {
	var errs []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			errs = append(errs, err)
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			errs = append(errs, err)
		}

		w.db = nil
	}

	if len(errs) > 0 {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, errs[0], "failed to close writer (%d errors)", len(errs))
	}

	return nil
}

// OutputPath implements BarWriter.
func (w *ParquetWriter) OutputPath() string {
	return w.outputPath
}
