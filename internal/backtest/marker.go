package backtest

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
)

// marker records chart annotations in an in-memory DuckDB table, one
// row per mark with the optional signal flattened into columns. Marks
// never influence the simulation.
type marker struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func newMarker(log *logger.Logger) (*marker, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		log.Error("Failed to open mark database", zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open mark database", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to mark database", zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to mark database", err)
	}

	m := &marker{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := m.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return m, nil
}

func (m *marker) initialize() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS marks (
			id TEXT PRIMARY KEY,
			time TIMESTAMP,
			symbol TEXT,
			price DOUBLE,
			color TEXT,
			shape TEXT,
			title TEXT,
			message TEXT,
			category TEXT,
			signal_type TEXT,
			signal_name TEXT,
			signal_reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create marks table", err)
	}

	return nil
}

// add stores one mark, assigning a uuid when the caller left the id
// empty.
func (m *marker) add(mark types.Mark) error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "mark store is not initialized")
	}

	if mark.ID == "" {
		mark.ID = uuid.New().String()
	}

	var signalType, signalName, signalReason string

	if mark.Signal.IsSome() {
		signal := mark.Signal.Unwrap()
		signalType = string(signal.Type)
		signalName = signal.Name
		signalReason = signal.Reason
	}

	insertQuery := m.sq.
		Insert("marks").
		Columns(
			"id", "time", "symbol", "price", "color", "shape",
			"title", "message", "category", "signal_type", "signal_name", "signal_reason",
		).
		Values(
			mark.ID, mark.Time, mark.Symbol, mark.Price, string(mark.Color), string(mark.Shape),
			mark.Title, mark.Message, mark.Category, signalType, signalName, signalReason,
		).
		RunWith(m.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert mark", err)
	}

	return nil
}

// all returns every recorded mark ordered by time.
func (m *marker) all() ([]types.Mark, error) {
	if m == nil || m.db == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "mark store is not initialized")
	}

	selectQuery := m.sq.
		Select(
			"id", "time", "symbol", "price", "color", "shape",
			"title", "message", "category", "signal_type", "signal_name", "signal_reason",
		).
		From("marks").
		OrderBy("time ASC").
		RunWith(m.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query marks", err)
	}
	defer rows.Close()

	var marks []types.Mark

	for rows.Next() {
		var (
			mark         types.Mark
			color, shape string

			signalType, signalName, signalReason string
		)

		err := rows.Scan(
			&mark.ID,
			&mark.Time,
			&mark.Symbol,
			&mark.Price,
			&color,
			&shape,
			&mark.Title,
			&mark.Message,
			&mark.Category,
			&signalType,
			&signalName,
			&signalReason,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan mark", err)
		}

		mark.Color = types.MarkColor(color)
		mark.Shape = types.MarkShape(shape)

		if signalType != "" {
			mark.Signal = optional.Some(types.Signal{
				Time:   mark.Time,
				Type:   types.SignalType(signalType),
				Name:   signalName,
				Reason: signalReason,
				Symbol: mark.Symbol,
			})
		}

		marks = append(marks, mark)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating marks", err)
	}

	return marks, nil
}

// reset drops and recreates the marks table.
func (m *marker) reset() error {
	if m == nil || m.db == nil {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "mark store is not initialized")
	}

	if _, err := m.db.Exec(`DROP TABLE IF EXISTS marks`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to reset marks table", err)
	}

	return m.initialize()
}

func (m *marker) close() error {
	if m == nil || m.db == nil {
		return nil
	}

	return m.db.Close()
}
