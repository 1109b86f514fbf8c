package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/leadscan/internal/scheduler"
	"github.com/wonny/leadscan/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run scheduled reports",
	Long: `Start the scheduler or run a job by hand.

Subcommands:
  start   - start the scheduler
  list    - list registered jobs
  run     - run one job now and print its result

Example:
  go run ./cmd/leadscan scheduler start
  go run ./cmd/leadscan scheduler list
  go run ./cmd/leadscan scheduler run lead_report`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Start the scheduler with every registered job.

Registered jobs:
- lead_report: REPORT_SCHEDULE (weekdays 18:30 by default), last REPORT_LOOKBACK_DAYS days
- source_check: hourly, warns when the source changed since startup

Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
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

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== leadscan Scheduler ===")

	app, err := bootstrap(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}

	sched, _, err := initScheduler(app)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}

	sched, _, err := initScheduler(app)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Registered jobs:")
	stats := sched.GetJobStats()
	for _, jobName := range sched.GetAllJobs() {
		PrintKeyValue(out, jobName, stats[jobName].Schedule, 14)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	app, err := bootstrap(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}

	sched, report, err := initScheduler(app, scheduler.WithRetry(0, 0))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running job: %s\n", jobName)

	// manual runs do not retry
	result, err := sched.RunJob(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}

	if jobName == report.Name() {
		if last := report.Last(); last != nil {
			params := last.Params
			PrintHeader(out, fmt.Sprintf("Lead report %s ~ %s", params.Start.Format("2006-01-02"), params.End.Format("2006-01-02")))
			if err := WriteAnalysis(out, FormatTable, last.Output()); err != nil {
				return err
			}
		}
	}

	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s", jobName, result.Duration))
	return nil
}

// initScheduler registers every job
func initScheduler(app *app, opts ...scheduler.Option) (*scheduler.Scheduler, *jobs.LeadReportJob, error) {
	sched := scheduler.New(app.log, opts...)

	report := jobs.NewLeadReportJob(app.pipeline, app.cfg, app.log)
	if err := sched.AddJob(report); err != nil {
		return nil, nil, err
	}

	if err := sched.AddJob(jobs.NewSourceCheckJob(app.cfg, app.pipeline.Table(), app.log)); err != nil {
		return nil, nil, err
	}

	return sched, report, nil
}
