package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hanzobot/skills/stock-analysis/internal/analysis"
	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/report"
)

// exitDataUnavailable is returned when a ticker cannot be analyzed
const exitDataUnavailable = 2

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER [TICKER...]",
	Short: "Analyze one or more tickers",
	Long: `Fetches market data for each ticker and prints a signal.

Tickers are upper-cased. If any ticker cannot be resolved the command
prints an error and exits with status 2, unless --continue-on-error
is set, in which case the remaining tickers are still reported.

Example:
  go run ./cmd/stockanalysis analyze AAPL
  go run ./cmd/stockanalysis analyze aapl msft --output json
  go run ./cmd/stockanalysis analyze NVDA --config weights.yaml -v`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	outputFormat    string
	continueOnError bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format (text|json)")
	analyzeCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "report the tickers that succeeded instead of exiting")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("invalid --output %q (text|json)", outputFormat)
	}

	a, err := newApp("warn")
	if err != nil {
		return err
	}
	defer a.Close()

	// without --continue-on-error the first unresolvable ticker stops the batch
	var results []analysis.Result
	if continueOnError {
		results = a.service.AnalyzeAll(cmd.Context(), args)
	} else {
		results, err = a.service.AnalyzeAllFailFast(cmd.Context(), args)
		if err != nil {
			var tickerErr *analysis.TickerError
			if !errors.As(err, &tickerErr) {
				return err
			}
			a.log.WithTicker(tickerErr.Ticker).WithError(tickerErr.Err).Debug("Analysis failed")
			return &ExitError{Code: exitDataUnavailable, Err: unavailable(tickerErr.Ticker)}
		}
	}

	stderr := cmd.ErrOrStderr()
	signals := make([]*contracts.Signal, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			a.log.WithTicker(res.Ticker).WithError(res.Err).Debug("Analysis failed")
			fmt.Fprintf(stderr, "Error: %v\n", unavailable(res.Ticker))
			continue
		}

		if verbose {
			PrintComponentSummary(stderr, res.Signal)
		}
		signals = append(signals, res.Signal)
	}

	if len(signals) == 0 {
		return &ExitError{Code: exitDataUnavailable, Err: errors.New("no ticker could be analyzed")}
	}

	return writeSignals(cmd.OutOrStdout(), outputFormat, signals)
}

func unavailable(ticker string) error {
	return fmt.Errorf("Invalid ticker '%s' or data unavailable", ticker)
}

// writeSignals prints signals in the requested format
func writeSignals(w io.Writer, format string, signals []*contracts.Signal) error {
	if format == "json" {
		data, err := report.JSON(signals...)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return report.WriteText(w, signals...)
}

