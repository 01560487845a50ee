package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/tradejournal/backend/pkg/config"
)

var (
	// Global flags
	envName string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Trade journal performance analytics",
	Long: `Trade Journal Analytics CLI

매매일지 거래 기록으로 성과 통계를 계산합니다.
요약 통계, 차원별 분석, 손익 분포, 자산 곡선.

Usage:
  go run ./cmd/journal [command]

Examples:
  go run ./cmd/journal api
  go run ./cmd/journal stats --file trades.csv --dimension symbol
  go run ./cmd/journal import --file trades.csv --user u1
  go run ./cmd/journal scheduler start
  go run ./cmd/journal test-db`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	if envName != "" {
		if err := os.Setenv("ENV", envName); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
