package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/wonny/tradejournal/backend/internal/analytics"
	"github.com/wonny/tradejournal/backend/internal/contracts"
	"github.com/wonny/tradejournal/backend/internal/journal"
	"github.com/wonny/tradejournal/backend/pkg/database"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "성과 통계 계산",
	Long: `CSV 파일 또는 데이터베이스의 거래로 성과 통계를 계산합니다.

--file 을 주면 DB 없이 CSV만 읽습니다. 없으면 --user 의 거래를 DB에서 읽습니다.

Dimensions: day-of-week, asset-class, symbol, duration, tag, all

Example:
  go run ./cmd/journal stats --file trades.csv
  go run ./cmd/journal stats --file trades.csv --dimension all --histogram --buckets 20
  go run ./cmd/journal stats --user u1 --account acc-1 --output json`,
}

var (
	statsFile           string
	statsUser           string
	statsAccount        string
	statsDimension      string
	statsHistogram      bool
	statsBuckets        int
	statsWidth          float64
	statsStartingEquity float64
	statsTimezone       string
	statsOutput         string
)

func init() {
	// RunE is set here to break the statsCmd -> runStats -> cmdFlagChanged -> statsCmd initialization cycle
	statsCmd.RunE = runStats
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsFile, "file", "f", "", "CSV 파일 (생략 시 DB)")
	statsCmd.Flags().StringVarP(&statsUser, "user", "u", "", "사용자 ID (DB 모드 필수)")
	statsCmd.Flags().StringVar(&statsAccount, "account", "", "계좌 ID")
	statsCmd.Flags().StringVarP(&statsDimension, "dimension", "d", "", "차원별 분석 (day-of-week|asset-class|symbol|duration|tag|all)")
	statsCmd.Flags().BoolVar(&statsHistogram, "histogram", false, "손익 분포 출력")
	statsCmd.Flags().IntVar(&statsBuckets, "buckets", analytics.DefaultHistogramBuckets, "히스토그램 구간 수")
	statsCmd.Flags().Float64Var(&statsWidth, "width", 0, "히스토그램 고정 구간 폭 (0 = 자동)")
	statsCmd.Flags().Float64Var(&statsStartingEquity, "starting-equity", 0, "낙폭 계산 시작 자본")
	statsCmd.Flags().StringVar(&statsTimezone, "timezone", "", "요일/보유기간 기준 시간대 (default: ANALYTICS_TIMEZONE 또는 UTC)")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "text", "출력 형식 (text|json)")
}

// statsOptions controls what a stats report contains
type statsOptions struct {
	Dimension      string
	Histogram      bool
	Buckets        int
	Width          float64
	StartingEquity float64
}

// statsReport is the output of the stats command
type statsReport struct {
	Trades       int                                                    `json:"trades"`
	Summary      contracts.PerformanceSummary                           `json:"summary"`
	Breakdowns   map[analytics.Dimension][]contracts.DimensionalSummary `json:"breakdowns,omitempty"`
	Distribution []contracts.PnlDistributionBucket                      `json:"distribution,omitempty"`
}

// dimensions expands the --dimension flag
func (o statsOptions) dimensions() ([]analytics.Dimension, error) {
	name := strings.ToLower(strings.TrimSpace(o.Dimension))
	switch name {
	case "":
		return nil, nil
	case "all":
		return analytics.Dimensions, nil
	}
	dim, err := analytics.ParseDimension(name)
	if err != nil {
		return nil, err
	}
	return []analytics.Dimension{dim}, nil
}

// buildReport runs the analytics engine over trades
func buildReport(trades []contracts.Trade, opts statsOptions) (*statsReport, error) {
	dims, err := opts.dimensions()
	if err != nil {
		return nil, err
	}

	aopts := analytics.Options{StartingEquity: opts.StartingEquity}
	report := &statsReport{
		Trades:  len(trades),
		Summary: analytics.SummarizeWith(trades, aopts),
	}

	if len(dims) > 0 {
		report.Breakdowns = make(map[analytics.Dimension][]contracts.DimensionalSummary, len(dims))
		for _, dim := range dims {
			items, err := analytics.Breakdown(trades, dim, aopts)
			if err != nil {
				return nil, err
			}
			report.Breakdowns[dim] = items
		}
	}

	if opts.Histogram {
		buckets, err := analytics.BuildHistogram(trades, opts.Buckets, opts.Width)
		if err != nil {
			return nil, err
		}
		report.Distribution = buckets
	}

	return report, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsOutput != "text" && statsOutput != "json" {
		return fmt.Errorf("unknown output format %q (text|json)", statsOutput)
	}

	trades, err := loadStatsTrades(cmd.Context())
	if err != nil {
		return err
	}

	report, err := buildReport(trades, statsOptions{
		Dimension:      statsDimension,
		Histogram:      statsHistogram,
		Buckets:        statsBuckets,
		Width:          statsWidth,
		StartingEquity: statsStartingEquity,
	})
	if err != nil {
		return err
	}

	return writeReport(os.Stdout, report, statsOutput)
}

// loadStatsTrades reads trades from --file or the database, in the analytics time zone
func loadStatsTrades(ctx context.Context) ([]contracts.Trade, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if statsFile != "" {
		loc, err := statsLocation("")
		if err != nil {
			return nil, err
		}

		f, err := os.Open(statsFile)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", statsFile, err)
		}
		defer f.Close()

		trades, err := journal.ParseCSV(f, lo.Ternary(statsUser != "", statsUser, "local"), loc)
		if err != nil {
			return nil, err
		}
		return inLocation(trades, loc), nil
	}

	if statsUser == "" {
		return nil, fmt.Errorf("--user is required without --file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := statsLocation(cfg.Analytics.Timezone)
	if err != nil {
		return nil, err
	}
	if !cmdFlagChanged("starting-equity") {
		statsStartingEquity = cfg.Analytics.StartingEquity
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	trades, err := journal.NewRepository(db).ListTrades(ctx, contracts.TradeFilter{
		UserID:    statsUser,
		AccountID: statsAccount,
	})
	if err != nil {
		return nil, err
	}
	return inLocation(trades, loc), nil
}

// statsLocation prefers --timezone, then the configured zone, then UTC
func statsLocation(configured string) (*time.Location, error) {
	name := lo.CoalesceOrEmpty(statsTimezone, configured, "UTC")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func cmdFlagChanged(name string) bool {
	f := statsCmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func inLocation(trades []contracts.Trade, loc *time.Location) []contracts.Trade {
	return lo.Map(trades, func(t contracts.Trade, _ int) contracts.Trade {
		return t.InLocation(loc)
	})
}

// writeReport renders the report as text or indented JSON
func writeReport(w io.Writer, report *statsReport, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printSummary(w, report.Trades, report.Summary)
	for _, dim := range analytics.Dimensions {
		if items, ok := report.Breakdowns[dim]; ok {
			printBreakdown(w, dim, items)
		}
	}
	if report.Distribution != nil {
		printDistribution(w, report.Distribution)
	}
	return nil
}
