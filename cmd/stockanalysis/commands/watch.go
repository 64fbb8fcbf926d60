package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hanzobot/skills/stock-analysis/internal/analysis"
	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/scheduler"
	"github.com/hanzobot/skills/stock-analysis/internal/scheduler/jobs"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [TICKER...]",
	Short: "Analyze a watchlist on a cron schedule",
	Long: `Runs the watchlist job on WATCH_SCHEDULE (cron with seconds,
default "0 30 16 * * 1-5", after the US close on weekdays).

Tickers come from the arguments or WATCHLIST. Each signal is printed
to stdout; failed runs are retried after WATCH_RETRY_DELAY.

Example:
  WATCHLIST=AAPL,MSFT go run ./cmd/stockanalysis watch
  go run ./cmd/stockanalysis watch NVDA AMD --once --output json`,
	RunE: runWatch,
}

var (
	watchOnce     bool
	watchSchedule string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	// Flags
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run the watchlist once and exit")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule (default: WATCH_SCHEDULE)")
	watchCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format (text|json)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp("info")
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := a.cfg.Watch.Tickers
	if len(args) > 0 {
		tickers = make([]string, 0, len(args))
		for _, t := range args {
			tickers = append(tickers, analysis.NormalizeTicker(t))
		}
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers: pass them as arguments or set WATCHLIST")
	}

	schedule := a.cfg.Watch.Schedule
	if watchSchedule != "" {
		schedule = watchSchedule
	}

	// signals arrive from the cron goroutine
	var mu sync.Mutex
	out := cmd.OutOrStdout()
	sink := func(s *contracts.Signal) {
		mu.Lock()
		defer mu.Unlock()
		if err := writeSignals(out, outputFormat, []*contracts.Signal{s}); err != nil {
			a.log.WithError(err).Error("Failed to write signal")
		}
	}

	job := jobs.NewWatchlistJob(a.service, tickers, schedule, sink, a.log)
	sched := scheduler.New(a.log, scheduler.WithRetry(3, a.cfg.Watch.RetryDelay))
	if err := sched.AddJob(job); err != nil {
		return err
	}

	if watchOnce {
		result, err := sched.RunNow(cmd.Context(), job.Name())
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("watchlist run failed: %s", result.Error)
		}
		return nil
	}

	sched.Start()
	PrintInfo(cmd.ErrOrStderr(), fmt.Sprintf("Watching %d ticker(s) on %q, Ctrl+C to stop", len(tickers), schedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	<-quit

	sched.Stop()
	return nil
}
