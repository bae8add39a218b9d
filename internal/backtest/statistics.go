package backtest

import (
	"math"
	"time"

	"github.com/tidemark-labs/tidemark/internal/types"
)

const tradingDaysPerYear = 252

// computeStatistics derives the run summary from the sealed daily
// results and the trade log in one pass. A run with no sealed days
// yields zero-valued statistics rather than an error.
func computeStatistics(runID string, capital float64, dailies []types.DailyResult, trades []types.Trade) types.Statistics {
	stats := types.Statistics{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC(),
		InitialCapital: capital,
	}

	for _, trade := range trades {
		stats.TotalTradeCount++

		if trade.Offset == types.OffsetClose {
			if trade.PnL > 0 {
				stats.WinningTrades++
			} else {
				stats.LosingTrades++
			}
		}
	}

	if closing := stats.WinningTrades + stats.LosingTrades; closing > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(closing)
	}

	if len(dailies) == 0 {
		return stats
	}

	stats.StartDate = dailies[0].Date
	stats.EndDate = dailies[len(dailies)-1].Date
	stats.TotalDays = len(dailies)
	stats.EndBalance = dailies[len(dailies)-1].Balance

	highWater := capital
	prevBalance := capital

	var (
		returns   []float64
		returnSum float64
	)

	for _, day := range dailies {
		if day.NetPnL > 0 {
			stats.ProfitDays++
		} else if day.NetPnL < 0 {
			stats.LossDays++
		}

		stats.TotalNetPnL += day.NetPnL
		stats.TotalCommission += day.Commission
		stats.TotalSlippage += day.Slippage
		stats.TotalTurnover += day.Turnover

		dailyReturn := 0.0
		if prevBalance > 0 {
			dailyReturn = (day.Balance - prevBalance) / prevBalance
		}

		returns = append(returns, dailyReturn)
		returnSum += dailyReturn
		prevBalance = day.Balance

		if day.Balance > highWater {
			highWater = day.Balance
		}

		drawdownValue := highWater - day.Balance
		if drawdownValue > stats.MaxDrawdownValue {
			stats.MaxDrawdownValue = drawdownValue
		}

		if highWater > 0 {
			if drawdown := drawdownValue / highWater; drawdown > stats.MaxDrawdown {
				stats.MaxDrawdown = drawdown
			}
		}
	}

	if capital > 0 {
		stats.TotalReturn = (stats.EndBalance - capital) / capital
	}

	stats.AnnualReturn = stats.TotalReturn / float64(stats.TotalDays) * tradingDaysPerYear

	stats.DailyMeanReturn = returnSum / float64(len(returns))

	if len(returns) >= 2 {
		var squared float64
		for _, r := range returns {
			diff := r - stats.DailyMeanReturn
			squared += diff * diff
		}

		stats.ReturnStd = math.Sqrt(squared / float64(len(returns)-1))
	}

	if stats.ReturnStd > 0 {
		stats.SharpeRatio = stats.DailyMeanReturn / stats.ReturnStd * math.Sqrt(tradingDaysPerYear)
	}

	if stats.MaxDrawdown > 0 {
		stats.ReturnDrawdownRatio = stats.AnnualReturn / stats.MaxDrawdown
	}

	return stats
}
