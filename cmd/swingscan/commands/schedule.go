package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run or inspect scheduled jobs",
	Long: `Manage the cron scheduler.

Jobs:
  daily_scan        - full-universe scan, $SCAN_CRON (default weekdays 13:45)
  taxonomy_refresh  - TWSE names and sectors, weekdays 08:30

Times use $SCAN_TIMEZONE (default Asia/Taipei).

Example:
  go run ./cmd/swingscan schedule start
  go run ./cmd/swingscan schedule list
  go run ./cmd/swingscan schedule run daily_scan`,
}

var (
	scheduleStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduleStart,
	}

	scheduleListCmd = &cobra.Command{
		Use:   "list",
		Short: "List jobs and their next run",
		RunE:  runScheduleList,
	}

	scheduleRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScheduleRun,
	}
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleStartCmd, scheduleListCmd, scheduleRunCmd)
}

func runScheduleStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.newScheduler()
	if err != nil {
		return err
	}
	s.Start()

	PrintSuccess(fmt.Sprintf("Scheduler started (%s)", a.cfg.Scan.Timezone))
	for _, name := range s.GetAllJobs() {
		next, _ := s.NextRun(name)
		PrintKeyValue(name, next.Format("2006-01-02 15:04:05 MST"), 18)
	}
	PrintInfo("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	s.Stop()
	for name, st := range s.GetJobStats() {
		PrintKeyValue(name, fmt.Sprintf("%d runs, %.0f%% ok", st.TotalRuns, st.SuccessRate*100), 18)
	}
	return nil
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.newScheduler()
	if err != nil {
		return err
	}
	s.Start()
	defer s.Stop()

	widths := []int{18, 18, 25}
	PrintTableHeader([]string{"Job", "Schedule", "Next run"}, widths)
	for _, job := range a.scheduledJobs() {
		next, _ := s.NextRun(job.Name())
		PrintTableRow([]string{job.Name(), job.Schedule(), next.Format("2006-01-02 15:04 MST")}, widths)
	}
	return nil
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	for _, job := range a.scheduledJobs() {
		if job.Name() != args[0] {
			continue
		}
		if err := job.Run(ctx); err != nil {
			PrintError(err.Error())
			return err
		}
		PrintSuccess(job.Name() + " completed")
		return nil
	}
	return fmt.Errorf("job %s not found", args[0])
}
