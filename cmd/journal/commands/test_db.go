package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradejournal/backend/internal/journal"
	"github.com/wonny/tradejournal/backend/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "PostgreSQL 연결 테스트",
	Long: `데이터베이스 연결을 테스트하고 풀 통계를 표시합니다.

이 명령어는:
- DATABASE_URL 연결 및 Ping
- journal 스키마 생성 (없을 때만)
- Connection Pool 통계 표시

Example:
  go run ./cmd/journal test-db
  go run ./cmd/journal test-db --env production`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	PrintDoubleSeparator()
	fmt.Println("  Database Connection Test")
	PrintSeparator()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("  ENV          : %s\n", cfg.Env)
	fmt.Printf("  Database URL : %s\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	PrintSuccess("Database connection established")

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Ping in %v", status.ResponseTime))

	if err := journal.NewRepository(db).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("❌ Schema check failed: %w", err)
	}
	PrintSuccess("journal schema ready")

	PrintSeparator()
	fmt.Println("  📊 Connection Pool")
	fmt.Printf("  Max Connections      : %d\n", status.Stats.MaxConns)
	fmt.Printf("  Total Connections    : %d\n", status.Stats.TotalConns)
	fmt.Printf("  Acquired Connections : %d\n", status.Stats.AcquiredConns)
	fmt.Printf("  Idle Connections     : %d\n", status.Stats.IdleConns)
	fmt.Printf("  Acquire Count        : %d\n", status.Stats.AcquireCount)
	fmt.Printf("  Acquire Duration     : %v\n", status.Stats.AcquireDuration)
	PrintDoubleSeparator()

	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
