package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/wonny/tradejournal/backend/internal/analytics"
	"github.com/wonny/tradejournal/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"

	// histogramBarWidth is the width of the longest histogram bar
	histogramBarWidth = 40
)

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(singleLine)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(doubleLine)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// printSummary renders the headline statistics
func printSummary(w io.Writer, trades int, s contracts.PerformanceSummary) {
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  Performance Summary (%d trades)\n", trades)
	fmt.Fprintln(w, singleLine)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Closed / Open\t%d / %d\n", s.ClosedTrades, s.OpenTrades)
	fmt.Fprintf(tw, "  Wins / Losses / Breakeven\t%d / %d / %d\n", s.WinningTrades, s.LosingTrades, s.BreakevenTrades)
	fmt.Fprintf(tw, "  Win Rate\t%.2f%%\n", s.WinRate)
	fmt.Fprintf(tw, "  Net P&L\t%s\n", money(s.TotalNetPnL))
	fmt.Fprintf(tw, "  Commissions\t%s\n", money(s.TotalCommissions))
	fmt.Fprintf(tw, "  Average Win / Loss\t%s / %s\n", money(s.AverageWin), money(s.AverageLoss))
	fmt.Fprintf(tw, "  Largest Win / Loss\t%s / %s\n", money(s.LargestWin), money(s.LargestLoss))
	fmt.Fprintf(tw, "  Profit Factor\t%s\n", s.ProfitFactor)
	fmt.Fprintf(tw, "  Expectancy\t%s\n", money(s.Expectancy))
	fmt.Fprintf(tw, "  Average R:R\t%.2f\n", s.AverageRR)
	fmt.Fprintf(tw, "  Max Drawdown\t%.2f%% (%s)\n", s.MaxDrawdown, money(s.MaxDrawdownAmount))
	fmt.Fprintf(tw, "  Streaks (W / L)\t%d / %d\n", s.MaxConsecutiveWins, s.MaxConsecutiveLosses)
	fmt.Fprintf(tw, "  Trading Days\t%d (%.2f trades/day)\n", s.TradingDays, s.AverageTradesPerDay)
	_ = tw.Flush()
}

// printBreakdown renders one dimension as a table
func printBreakdown(w io.Writer, dim analytics.Dimension, items []contracts.DimensionalSummary) {
	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  By %s\n", dim)
	fmt.Fprintln(w, singleLine)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "  Label\tTrades\tWin %\tNet P&L\tPF\tMax DD %\t")
	for _, it := range items {
		fmt.Fprintf(tw, "  %s\t%d\t%.1f\t%s\t%s\t%.1f\t\n",
			it.Label, it.TotalTrades, it.WinRate, money(it.TotalNetPnL), it.ProfitFactor, it.MaxDrawdown)
	}
	_ = tw.Flush()
}

// printDistribution renders the histogram with proportional bars
func printDistribution(w io.Writer, buckets []contracts.PnlDistributionBucket) {
	fmt.Fprintln(w, singleLine)
	fmt.Fprintln(w, "  P&L Distribution")
	fmt.Fprintln(w, singleLine)

	if len(buckets) == 0 {
		fmt.Fprintln(w, "  (no closed trades)")
		return
	}

	peak := lo.MaxBy(buckets, func(a, b contracts.PnlDistributionBucket) bool { return a.Count > b.Count }).Count

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range buckets {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", b.Label, b.Count, bar(b.Count, peak))
	}
	_ = tw.Flush()
}

func bar(count, peak int) string {
	if peak == 0 || count == 0 {
		return ""
	}
	n := count * histogramBarWidth / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// money formats an amount rounded half away from zero to two decimals
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
