package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "CSV 거래 기록 가져오기",
	Long: `매매일지 CSV를 데이터베이스에 저장하고 해당 사용자의 대시보드 캐시를 비웁니다.

CSV columns (header required, order free):
  id,account_id,symbol,asset_class,side,status,entry_time,exit_time,
  profit_or_loss,commission,r_multiple,tags

tags는 ';'로 구분합니다.

Example:
  go run ./cmd/journal import --file trades.csv --user u1`,
	RunE: runImport,
}

var (
	importFile string
	importUser string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV 파일 경로")
	importCmd.Flags().StringVarP(&importUser, "user", "u", "", "사용자 ID")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", importFile, err)
	}
	defer f.Close()

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.Import(ctx, importUser, f)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess(fmt.Sprintf("Imported %d trades for %s (batch %s)", result.Saved, importUser, result.BatchID))
	return nil
}
