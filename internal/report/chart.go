// Package report renders completed runs as standalone HTML charts and
// serves a results tree read-only over HTTP.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/tidemark-labs/tidemark/internal/types"
)

const (
	colorEquity   = "#3b82f6"
	colorDrawdown = "#f59e0b"
	colorUp       = "#26a69a"
	colorDown     = "#ef5350"

	chartWidth  = "1400px"
	chartHeight = "420px"
)

// ChartInput is everything the equity page is built from. Dailies must
// be in date order, the order the engine seals them in.
type ChartInput struct {
	Title      string
	Statistics types.Statistics
	Dailies    []types.DailyResult
	Trades     []types.Trade
	Marks      []types.Mark
}

// WriteEquityChart renders the balance curve, the drawdown curve and
// the daily net P&L of one run into a self-contained HTML file.
func WriteEquityChart(path string, input ChartInput) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = input.Title

	page.AddCharts(
		buildEquityLine(input),
		buildDrawdownLine(input.Dailies),
		buildDailyPnLBar(input.Dailies),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

func dates(dailies []types.DailyResult) []string {
	x := make([]string, len(dailies))
	for i, day := range dailies {
		x[i] = day.Date
	}

	return x
}

// buildEquityLine draws the end-of-day balance with the run's fills
// overlaid: buys below the curve point, sells above, colored by side.
func buildEquityLine(input ChartInput) *charts.Line {
	stats := input.Statistics

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s equity", input.Title),
			Subtitle: fmt.Sprintf(
				"total return %.2f%%  |  annual %.2f%%  |  max drawdown %.2f%%  |  sharpe %.2f",
				stats.TotalReturn*100, stats.AnnualReturn*100, stats.MaxDrawdown*100, stats.SharpeRatio,
			),
			Left: "left",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	balances := make([]opts.LineData, len(input.Dailies))
	for i, day := range input.Dailies {
		balances[i] = opts.LineData{Value: day.Balance}
	}

	x := dates(input.Dailies)
	line.SetXAxis(x)
	line.AddSeries("Balance", balances,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquity, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	buys, sells := tradeOverlay(input.Dailies, input.Trades)
	if len(buys) > 0 || len(sells) > 0 {
		scatter := charts.NewScatter()
		scatter.SetXAxis(x)
		scatter.AddSeries("Buys", buys, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorUp}))
		scatter.AddSeries("Sells", sells, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorDown}))
		line.Overlap(scatter)
	}

	return line
}

// tradeOverlay places each fill on its day's balance point. Days
// without fills stay empty so the scatter aligns with the date axis.
func tradeOverlay(dailies []types.DailyResult, trades []types.Trade) ([]opts.ScatterData, []opts.ScatterData) {
	index := make(map[string]int, len(dailies))
	for i, day := range dailies {
		index[day.Date] = i
	}

	buys := make([]opts.ScatterData, len(dailies))
	sells := make([]opts.ScatterData, len(dailies))
	hasBuy := false
	hasSell := false

	for _, trade := range trades {
		i, ok := index[trade.ExecutedAt.Format("2006-01-02")]
		if !ok {
			continue
		}

		point := opts.ScatterData{Value: dailies[i].Balance, Symbol: "triangle", SymbolSize: 10}

		if trade.IsBuy() {
			buys[i] = point
			hasBuy = true
		} else {
			point.SymbolRotate = 180
			sells[i] = point
			hasSell = true
		}
	}

	if !hasBuy {
		buys = nil
	}

	if !hasSell {
		sells = nil
	}

	return buys, sells
}

// buildDrawdownLine draws the percent fall from the running balance
// peak, zero at fresh highs.
func buildDrawdownLine(dailies []types.DailyResult) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Drawdown", Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	data := make([]opts.LineData, len(dailies))
	peak := 0.0

	for i, day := range dailies {
		if day.Balance > peak {
			peak = day.Balance
		}

		dd := 0.0
		if peak > 0 {
			dd = (day.Balance - peak) / peak * 100
		}

		data[i] = opts.LineData{Value: dd}
	}

	line.SetXAxis(dates(dailies))
	line.AddSeries("Drawdown %", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorDrawdown, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorDrawdown, Opacity: opts.Float(0.25)}),
	)

	return line
}

// buildDailyPnLBar draws the per-day net P&L, green for profit days
// and red for loss days.
func buildDailyPnLBar(dailies []types.DailyResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Daily net P&L", Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	data := make([]opts.BarData, len(dailies))

	for i, day := range dailies {
		color := colorDown
		if day.NetPnL >= 0 {
			color = colorUp
		}

		data[i] = opts.BarData{
			Value:     day.NetPnL,
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.8)},
		}
	}

	bar.SetXAxis(dates(dailies))
	bar.AddSeries("Net P&L", data)

	return bar
}
