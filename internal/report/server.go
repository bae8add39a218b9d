package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/gorilla/mux"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Server exposes a results tree read-only over HTTP: a run index, the
// stats and daily tables as JSON, and the rendered chart pages. It
// never writes to the tree.
type Server struct {
	root string
	log  *logger.Logger

	httpServer *http.Server
	listener   net.Listener
}

// RunInfo is one row of the run index.
type RunInfo struct {
	Strategy    string  `json:"strategy"`
	RunID       string  `json:"run_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	TotalReturn float64 `json:"total_return"`
	MaxDrawdown float64 `json:"max_drawdown"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	TradeCount  int     `json:"trade_count"`
}

func NewServer(root string, log *logger.Logger) *Server {
	return &Server{
		root: root,
		log:  log,
	}
}

// Start binds the listener and serves in the background. Use Addr for
// the bound address and Shutdown to stop.
func (s *Server) Start(addr string) error {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleIndex).Methods("GET")
	router.HandleFunc("/api/runs", s.handleListRuns).Methods("GET")
	router.HandleFunc("/api/runs/{strategy}/{run}/stats", s.handleStats).Methods("GET")
	router.HandleFunc("/api/runs/{strategy}/{run}/daily", s.handleDaily).Methods("GET")
	router.HandleFunc("/runs/{strategy}/{run}/chart", s.handleChart).Methods("GET")

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Report server stopped", zap.Error(err))
		}
	}()

	s.log.Info("Report server started",
		zap.String("addr", listener.Addr().String()),
		zap.String("root", s.root),
	)

	return nil
}

// Addr returns the bound address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// listRuns walks the two-level results tree: strategy folders holding
// run folders, a run being any folder with a stats.yaml.
func (s *Server) listRuns() ([]RunInfo, error) {
	strategies, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read results root: %w", err)
	}

	var runs []RunInfo

	for _, strategyDir := range strategies {
		if !strategyDir.IsDir() {
			continue
		}

		runDirs, err := os.ReadDir(filepath.Join(s.root, strategyDir.Name()))
		if err != nil {
			continue
		}

		for _, runDir := range runDirs {
			if !runDir.IsDir() {
				continue
			}

			stats, err := s.readStats(strategyDir.Name(), runDir.Name())
			if err != nil {
				continue
			}

			runs = append(runs, RunInfo{
				Strategy:    strategyDir.Name(),
				RunID:       runDir.Name(),
				StartDate:   stats.StartDate,
				EndDate:     stats.EndDate,
				TotalReturn: stats.TotalReturn,
				MaxDrawdown: stats.MaxDrawdown,
				SharpeRatio: stats.SharpeRatio,
				TradeCount:  stats.TotalTradeCount,
			})
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Strategy != runs[j].Strategy {
			return runs[i].Strategy < runs[j].Strategy
		}

		return runs[i].RunID < runs[j].RunID
	})

	return runs, nil
}

func (s *Server) runFolder(strategy, run string) (string, error) {
	if !safeName(strategy) || !safeName(run) {
		return "", fmt.Errorf("invalid run path")
	}

	folder := filepath.Join(s.root, strategy, run)

	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("run not found")
	}

	return folder, nil
}

func safeName(name string) bool {
	return name != "" &&
		name != "." &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`)
}

func (s *Server) readStats(strategy, run string) (types.Statistics, error) {
	var stats types.Statistics

	folder, err := s.runFolder(strategy, run)
	if err != nil {
		return stats, err
	}

	data, err := os.ReadFile(filepath.Join(folder, "stats.yaml"))
	if err != nil {
		return stats, err
	}

	if err := yaml.Unmarshal(data, &stats); err != nil {
		return stats, err
	}

	return stats, nil
}

// readDaily loads the daily table back out of the run's backtest.db.
func (s *Server) readDaily(folder string) ([]types.DailyResult, error) {
	dbPath := filepath.Join(folder, "backtest.db")

	db, err := sql.Open("duckdb", dbPath+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	defer db.Close()

	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	rows, err := sq.
		Select(
			`"date"`, "trade_count", "turnover", "commission", "slippage",
			"holding_pnl", "trading_pnl", "total_pnl", "net_pnl", "balance",
			"close_prices", "pre_closes",
		).
		From("daily_results").
		OrderBy(`"date" ASC`).
		RunWith(db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query daily results: %w", err)
	}
	defer rows.Close()

	var dailies []types.DailyResult

	for rows.Next() {
		var (
			day       types.DailyResult
			closes    string
			preCloses string
		)

		if err := rows.Scan(
			&day.Date, &day.TradeCount, &day.Turnover, &day.Commission, &day.Slippage,
			&day.HoldingPnL, &day.TradingPnL, &day.TotalPnL, &day.NetPnL, &day.Balance,
			&closes, &preCloses,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily result: %w", err)
		}

		if closes != "" {
			if err := json.Unmarshal([]byte(closes), &day.ClosePrices); err != nil {
				return nil, fmt.Errorf("failed to decode close prices: %w", err)
			}
		}

		if preCloses != "" {
			if err := json.Unmarshal([]byte(preCloses), &day.PreCloses); err != nil {
				return nil, fmt.Errorf("failed to decode pre-closes: %w", err)
			}
		}

		dailies = append(dailies, day)
	}

	return dailies, rows.Err()
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
}).Parse(`<!DOCTYPE html>
<html>
<head><title>Backtest results</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { padding: 0.4em 1em; border-bottom: 1px solid #ddd; text-align: left; }
</style>
</head>
<body>
<h1>Backtest results</h1>
<table>
<tr><th>Strategy</th><th>Run</th><th>Period</th><th>Return</th><th>Max DD</th><th>Sharpe</th><th>Trades</th></tr>
{{range .}}
<tr>
<td>{{.Strategy}}</td>
<td><a href="/runs/{{.Strategy}}/{{.RunID}}/chart">{{.RunID}}</a></td>
<td>{{.StartDate}} to {{.EndDate}}</td>
<td>{{pct .TotalReturn}}</td>
<td>{{pct .MaxDrawdown}}</td>
<td>{{printf "%.2f" .SharpeRatio}}</td>
<td>{{.TradeCount}}</td>
</tr>
{{end}}
</table>
</body>
</html>`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := s.listRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := indexTemplate.Execute(w, runs); err != nil {
		s.log.Error("Failed to render index", zap.Error(err))
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.listRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, runs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	stats, err := s.readStats(vars["strategy"], vars["run"])
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)

		return
	}

	writeJSON(w, stats)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	folder, err := s.runFolder(vars["strategy"], vars["run"])
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)

		return
	}

	dailies, err := s.readDaily(folder)
	if err != nil {
		s.log.Error("Failed to read daily results", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, dailies)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	folder, err := s.runFolder(vars["strategy"], vars["run"])
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)

		return
	}

	http.ServeFile(w, r, filepath.Join(folder, "equity.html"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
