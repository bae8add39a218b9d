package backtest

import (
	"os"
	"path/filepath"

	"github.com/tidemark-labs/tidemark/internal/report"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// markRecord is the marks.yaml row shape. Mark keeps its signal out of
// plain YAML, so the record re-exposes it as an optional field.
type markRecord struct {
	types.Mark `yaml:",inline"`
	Signal     *types.Signal `yaml:"signal,omitempty"`
}

// writeResults persists the completed run: stats.yaml, marks.yaml, the
// equity chart, and the DuckDB export with its CSV views.
func (e *Engine) writeResults(folder string) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to create results folder", err)
	}

	if err := types.WriteStatistics(filepath.Join(folder, "stats.yaml"), e.stats); err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to write statistics", err)
	}

	if err := e.writeMarks(filepath.Join(folder, "marks.yaml")); err != nil {
		return err
	}

	if err := e.writeEquityChart(filepath.Join(folder, "equity.html")); err != nil {
		return err
	}

	if err := e.exportDB(folder); err != nil {
		return err
	}

	e.log.Info("Backtest results written",
		zap.String("run_id", e.runID),
		zap.String("folder", folder),
	)

	return nil
}

func (e *Engine) writeMarks(path string) error {
	marks, err := e.marks.all()
	if err != nil {
		return err
	}

	records := make([]markRecord, 0, len(marks))

	for _, mark := range marks {
		record := markRecord{Mark: mark}

		if mark.Signal.IsSome() {
			signal := mark.Signal.Unwrap()
			record.Signal = &signal
		}

		records = append(records, record)
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to marshal marks", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to write marks", err)
	}

	return nil
}

func (e *Engine) writeEquityChart(path string) error {
	marks, err := e.marks.all()
	if err != nil {
		return err
	}

	input := report.ChartInput{
		Title:      e.strat.Name(),
		Statistics: e.stats,
		Dailies:    e.daily.all(),
		Trades:     e.trades,
		Marks:      marks,
	}

	if err := report.WriteEquityChart(path, input); err != nil {
		return errors.Wrap(errors.ErrCodeEngineResultsError, "failed to write equity chart", err)
	}

	return nil
}
