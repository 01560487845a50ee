package analytics

import (
	"github.com/wonny/tradejournal/backend/internal/contracts"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// EquityCurve returns cumulative equity after each evaluated trade, in exit
// order, preceded by a baseline point one day before the first exit.
// Empty input yields an empty curve.
func EquityCurve(trades []contracts.Trade, startingEquity float64) []contracts.EquityPoint {
	evaluated := evaluableByExit(trades)
	if len(evaluated) == 0 {
		return []contracts.EquityPoint{}
	}

	curve := make([]contracts.EquityPoint, 0, len(evaluated)+1)
	curve = append(curve, contracts.EquityPoint{
		Time:  evaluated[0].ExitTime.AddDate(0, 0, -1),
		Value: startingEquity,
	})

	equity := startingEquity
	for _, t := range evaluated {
		equity += t.PnL()
		curve = append(curve, contracts.EquityPoint{
			Time:  *t.ExitTime,
			Value: equity,
		})
	}

	return curve
}

// DailyPnL aggregates evaluated trades per exit date, oldest first
func DailyPnL(trades []contracts.Trade) []contracts.DailyPerformance {
	evaluated := evaluableByExit(trades)

	daily := make([]contracts.DailyPerformance, 0)
	wins := make([]int, 0)
	index := make(map[string]int)

	for _, t := range evaluated {
		date := t.ExitTime.Format(dateLayout)
		i, ok := index[date]
		if !ok {
			i = len(daily)
			index[date] = i
			daily = append(daily, contracts.DailyPerformance{Date: date})
			wins = append(wins, 0)
		}

		pnl := t.PnL()
		daily[i].Trades++
		daily[i].PnL += pnl
		if pnl > 0 {
			wins[i]++
		}
	}

	// 청산 시각 순으로 정렬된 입력이라 날짜도 오름차순
	cumulative := 0.0
	for i := range daily {
		cumulative += daily[i].PnL
		daily[i].CumulativePnL = cumulative
		daily[i].WinRate = ratio(wins[i], daily[i].Trades) * 100
	}

	return daily
}

// MonthlyPnL aggregates evaluated trades per exit month, oldest first.
// BestDay and WorstDay are the extreme daily P&L totals within the month.
func MonthlyPnL(trades []contracts.Trade) []contracts.MonthlyPerformance {
	evaluated := evaluableByExit(trades)

	monthly := make([]contracts.MonthlyPerformance, 0)
	wins := make([]int, 0)
	dayPnL := make([]map[string]float64, 0)
	index := make(map[string]int)

	for _, t := range evaluated {
		month := t.ExitTime.Format(monthLayout)
		i, ok := index[month]
		if !ok {
			i = len(monthly)
			index[month] = i
			monthly = append(monthly, contracts.MonthlyPerformance{Month: month})
			wins = append(wins, 0)
			dayPnL = append(dayPnL, make(map[string]float64))
		}

		pnl := t.PnL()
		monthly[i].Trades++
		monthly[i].PnL += pnl
		if pnl > 0 {
			wins[i]++
		}
		dayPnL[i][t.ExitTime.Format(dateLayout)] += pnl
	}

	for i := range monthly {
		m := &monthly[i]
		m.WinRate = ratio(wins[i], m.Trades) * 100

		first := true
		for _, pnl := range dayPnL[i] {
			if first {
				m.BestDay, m.WorstDay = pnl, pnl
				first = false
				continue
			}
			m.BestDay = max(m.BestDay, pnl)
			m.WorstDay = min(m.WorstDay, pnl)
		}
	}

	return monthly
}
