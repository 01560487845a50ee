package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradejournal/backend/internal/scheduler"
	"github.com/wonny/tradejournal/backend/internal/scheduler/jobs"
)

// refreshLookback bounds which scopes count as active for dashboard_refresh
const refreshLookback = 7 * 24 * time.Hour

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

등록되는 작업:
- dashboard_refresh: ANALYTICS_REFRESH_SCHEDULE (기본 15분마다)
  최근 7일 내 거래가 있는 사용자/계좌의 대시보드를 캐시에 미리 계산

Example:
  go run ./cmd/journal scheduler start
  go run ./cmd/journal scheduler list
  go run ./cmd/journal scheduler run dashboard_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers every job against the wired app
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log,
		scheduler.WithMetrics(a.metrics),
		scheduler.WithRetries(2, 30*time.Second),
	)

	refresh := jobs.NewDashboardRefreshJob(a.repo, a.service, a.cfg.Analytics.RefreshSchedule, refreshLookback, a.log)
	if err := sched.AddJob(refresh); err != nil {
		return nil, fmt.Errorf("register %s: %w", refresh.Name(), err)
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	sched.Start()

	fmt.Println("✅ Scheduler started")
	printJobStats(sched.Stats())
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, st := range sched.Stats() {
		fmt.Printf("  - %-20s %s\n", st.JobName, st.Schedule)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", args[0])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sched.RunJob(ctx, args[0])
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if !result.Success {
		return fmt.Errorf("job %s failed: %s", result.JobName, result.Error)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s", result.JobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func printJobStats(stats []scheduler.JobStats) {
	fmt.Println("\nRegistered jobs:")
	for _, st := range stats {
		fmt.Printf("  - %s (%s)", st.JobName, st.Schedule)
		if st.NextRun != nil {
			fmt.Printf(" next: %s", st.NextRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
	fmt.Println()
}
