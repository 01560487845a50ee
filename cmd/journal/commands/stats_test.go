package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradejournal/backend/internal/analytics"
	"github.com/wonny/tradejournal/backend/internal/contracts"
	"github.com/wonny/tradejournal/backend/internal/journal"
)

const statsCSV = `id,symbol,asset_class,status,entry_time,exit_time,profit_or_loss,tags
t1,AAPL,Stock,CLOSED,2024-03-04 09:30,2024-03-04 15:00,150,breakout
t2,TSLA,Stock,CLOSED,2024-03-05 10:00,2024-03-08 15:00,-50,breakout;news
t3,BTCUSD,Crypto,OPEN,2024-03-06 10:00,,,
`

func parseStatsCSV(t *testing.T) []contracts.Trade {
	t.Helper()
	trades, err := journal.ParseCSV(strings.NewReader(statsCSV), "local", time.UTC)
	require.NoError(t, err)
	return trades
}

func TestBuildReport_SummaryOnly(t *testing.T) {
	report, err := buildReport(parseStatsCSV(t), statsOptions{Buckets: 10})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Trades)
	assert.Equal(t, 2, report.Summary.ClosedTrades)
	assert.Equal(t, 1, report.Summary.OpenTrades)
	assert.InDelta(t, 100.0, report.Summary.TotalNetPnL, 1e-9)
	assert.Nil(t, report.Breakdowns)
	assert.Nil(t, report.Distribution)
}

func TestBuildReport_Dimensions(t *testing.T) {
	trades := parseStatsCSV(t)

	all, err := buildReport(trades, statsOptions{Dimension: "all"})
	require.NoError(t, err)
	assert.Len(t, all.Breakdowns, len(analytics.Dimensions))

	one, err := buildReport(trades, statsOptions{Dimension: "Symbol"})
	require.NoError(t, err)
	require.Len(t, one.Breakdowns, 1)
	assert.Len(t, one.Breakdowns[analytics.DimensionSymbol], 3)

	_, err = buildReport(trades, statsOptions{Dimension: "hour"})
	assert.ErrorIs(t, err, analytics.ErrUnknownDimension)
}

func TestBuildReport_Histogram(t *testing.T) {
	report, err := buildReport(parseStatsCSV(t), statsOptions{Histogram: true, Buckets: 2})
	require.NoError(t, err)
	require.Len(t, report.Distribution, 2)

	_, err = buildReport(parseStatsCSV(t), statsOptions{Histogram: true, Buckets: 0})
	assert.ErrorIs(t, err, analytics.ErrInvalidBucketCount)
}

func TestBuildReport_StartingEquity(t *testing.T) {
	report, err := buildReport(parseStatsCSV(t), statsOptions{StartingEquity: 1000})
	require.NoError(t, err)
	assert.InDelta(t, 1100.0, report.Summary.CurrentBalance, 1e-9)
}

func TestWriteReport_Text(t *testing.T) {
	report, err := buildReport(parseStatsCSV(t), statsOptions{Dimension: "tag", Histogram: true, Buckets: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, "text"))
	out := buf.String()

	assert.Contains(t, out, "Performance Summary (3 trades)")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "By tag")
	assert.Contains(t, out, "breakout")
	assert.Contains(t, out, "P&L Distribution")
	assert.Contains(t, out, "█")
}

func TestWriteReport_JSON(t *testing.T) {
	report, err := buildReport(parseStatsCSV(t), statsOptions{Dimension: "duration"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, "json"))

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, decoded, "breakdowns")
	assert.NotContains(t, decoded, "distribution")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-12.35", money(-12.345))
	assert.Equal(t, "0.00", money(0))
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "█", bar(1, 1000))
	assert.Equal(t, strings.Repeat("█", histogramBarWidth), bar(5, 5))

	assert.Equal(t, "postgres://app:xxxxx@db:5432/journal", maskPassword("postgres://app:secret@db:5432/journal"))
	assert.Equal(t, "postgres://db/journal", maskPassword("postgres://db/journal"))
}
