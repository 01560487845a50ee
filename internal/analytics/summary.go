// Package analytics turns journal trades into performance statistics.
//
// Every function is pure: no package state, no I/O, fresh output per call.
// ⭐ SSOT: 성과 분석 계산 로직은 여기서만
package analytics

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

// Options tunes the statistics that depend on account context
type Options struct {
	// StartingEquity is the account balance before the first trade.
	// Zero measures drawdown against cumulative trading P&L only.
	StartingEquity float64
}

// Summarize computes dashboard statistics with a zero starting equity
func Summarize(trades []contracts.Trade) contracts.PerformanceSummary {
	return SummarizeWith(trades, Options{})
}

// SummarizeWith computes dashboard statistics for trades.
//
// Only closed trades with a realized P&L and an exit time are evaluated;
// the rest only contribute to the total/open/closed counts.
func SummarizeWith(trades []contracts.Trade, opts Options) contracts.PerformanceSummary {
	summary := contracts.PerformanceSummary{
		TotalTrades:    len(trades),
		CurrentBalance: opts.StartingEquity,
	}

	for _, t := range trades {
		if t.IsOpen() {
			summary.OpenTrades++
		}
		if t.IsClosed() {
			summary.ClosedTrades++
		}
	}

	evaluated := evaluableByExit(trades)
	if len(evaluated) == 0 {
		return summary
	}

	var (
		sumWins, sumLosses float64
		sumR               float64
		countR             int
		curWins, curLosses int
	)
	pnlSeries := make([]float64, 0, len(evaluated))
	days := make(map[string]struct{})

	for _, t := range evaluated {
		pnl := t.PnL()
		pnlSeries = append(pnlSeries, pnl)

		summary.TotalNetPnL += pnl
		summary.TotalCommissions += math.Abs(t.Commission)

		switch {
		case pnl > 0:
			summary.WinningTrades++
			sumWins += pnl
			if pnl > summary.LargestWin {
				summary.LargestWin = pnl
			}
			curWins++
			curLosses = 0
			summary.MaxConsecutiveWins = max(summary.MaxConsecutiveWins, curWins)
		case pnl < 0:
			summary.LosingTrades++
			sumLosses += pnl
			if pnl < summary.LargestLoss {
				summary.LargestLoss = pnl
			}
			curLosses++
			curWins = 0
			summary.MaxConsecutiveLosses = max(summary.MaxConsecutiveLosses, curLosses)
		default:
			// 본전 거래는 연속 기록을 끊지 않음
			summary.BreakevenTrades++
		}

		if t.RMultiple != nil {
			sumR += *t.RMultiple
			countR++
		}

		days[t.ExitTime.Format(dateLayout)] = struct{}{}
	}

	summary.EvaluatedTrades = summary.WinningTrades + summary.LosingTrades + summary.BreakevenTrades

	winRate := ratio(summary.WinningTrades, summary.EvaluatedTrades)
	lossRate := ratio(summary.LosingTrades, summary.EvaluatedTrades)
	summary.WinRate = winRate * 100
	summary.LossRate = lossRate * 100

	if summary.WinningTrades > 0 {
		summary.AverageWin = sumWins / float64(summary.WinningTrades)
	}
	if summary.LosingTrades > 0 {
		summary.AverageLoss = sumLosses / float64(summary.LosingTrades)
	}
	if countR > 0 {
		summary.AverageRR = sumR / float64(countR)
	}

	summary.ProfitFactor = profitFactor(sumWins, sumLosses)
	summary.Expectancy = winRate*summary.AverageWin - lossRate*math.Abs(summary.AverageLoss)

	summary.MaxDrawdown = MaxDrawdownPercentFrom(opts.StartingEquity, pnlSeries)
	summary.MaxDrawdownAmount = MaxDrawdownAmount(opts.StartingEquity, pnlSeries)
	summary.CurrentBalance = opts.StartingEquity + summary.TotalNetPnL

	summary.TradingDays = len(days)
	summary.AverageTradesPerDay = float64(summary.EvaluatedTrades) / float64(summary.TradingDays)

	return summary
}

// evaluableByExit filters evaluable trades and sorts them by exit time.
// The sort is stable so trades exiting at the same instant keep input order.
func evaluableByExit(trades []contracts.Trade) []contracts.Trade {
	evaluated := lo.Filter(trades, func(t contracts.Trade, _ int) bool {
		return t.IsEvaluable()
	})
	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].ExitTime.Before(*evaluated[j].ExitTime)
	})
	return evaluated
}

// profitFactor returns sumWins / |sumLosses| with the zero-loss cases pinned:
// +Inf when only wins exist, 0 when neither wins nor losses exist.
func profitFactor(sumWins, sumLosses float64) contracts.ProfitFactor {
	if sumLosses != 0 {
		return contracts.ProfitFactor(math.Abs(sumWins / sumLosses))
	}
	if sumWins > 0 {
		return contracts.ProfitFactor(math.Inf(1))
	}
	return 0
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
