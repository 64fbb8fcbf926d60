package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hanzobot/skills/stock-analysis/internal/analysis"
	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
)

// BatchAnalyzer is the part of analysis.Service the job needs
type BatchAnalyzer interface {
	AnalyzeAll(ctx context.Context, tickers []string) []analysis.Result
}

// WatchlistJob analyzes a fixed set of tickers on a schedule
// ⭐ SSOT: watchlist scheduling lives in this job only
type WatchlistJob struct {
	analyzer BatchAnalyzer
	tickers  []string
	schedule string
	sink     func(*contracts.Signal)
	logger   *logger.Logger
}

// NewWatchlistJob creates a watchlist job. sink may be nil.
func NewWatchlistJob(analyzer BatchAnalyzer, tickers []string, schedule string, sink func(*contracts.Signal), log *logger.Logger) *WatchlistJob {
	return &WatchlistJob{
		analyzer: analyzer,
		tickers:  tickers,
		schedule: schedule,
		sink:     sink,
		logger:   log,
	}
}

// Name returns the job name
func (j *WatchlistJob) Name() string {
	return "watchlist"
}

// Schedule returns the cron schedule (with seconds)
func (j *WatchlistJob) Schedule() string {
	return j.schedule
}

// Run analyzes every ticker once. Unknown tickers are logged and skipped;
// any other failure fails the run so the scheduler retries it.
func (j *WatchlistJob) Run(ctx context.Context) error {
	if len(j.tickers) == 0 {
		j.logger.Warn("Watchlist is empty")
		return nil
	}

	j.logger.WithField("tickers", len(j.tickers)).Info("Starting watchlist analysis")

	var failed []string
	actionable := 0
	for _, res := range j.analyzer.AnalyzeAll(ctx, j.tickers) {
		log := j.logger.WithTicker(res.Ticker)

		switch {
		case errors.Is(res.Err, contracts.ErrTickerNotFound):
			log.Warn("Ticker not found, skipping")
		case res.Err != nil:
			log.WithError(res.Err).Error("Analysis failed")
			failed = append(failed, res.Ticker)
		default:
			if res.Signal.IsActionable() {
				actionable++
			}
			log.WithFields(map[string]interface{}{
				"recommendation": res.Signal.Recommendation,
				"confidence":     res.Signal.Confidence,
			}).Info("Watchlist signal")
			if j.sink != nil {
				j.sink(res.Signal)
			}
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"actionable": actionable,
		"failed":     len(failed),
	}).Info("Watchlist analysis finished")

	if len(failed) > 0 {
		return fmt.Errorf("watchlist: %d ticker(s) failed: %v", len(failed), failed)
	}
	return nil
}
