package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	analysisConfigFile string
	verbose            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockanalysis",
	Short: "Multi-factor stock signal engine",
	Long: `stock-analysis CLI

Scores earnings surprise, fundamentals, analyst sentiment and the
historical earnings pattern of a ticker and combines them into a
BUY / HOLD / SELL signal with a confidence.

NOT FINANCIAL ADVICE. For informational purposes only.

Usage:
  go run ./cmd/stockanalysis [command]

Examples:
  go run ./cmd/stockanalysis analyze AAPL
  go run ./cmd/stockanalysis analyze AAPL MSFT --output json
  go run ./cmd/stockanalysis api --port 8089
  go run ./cmd/stockanalysis watch --once`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code with the error
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&analysisConfigFile, "config", "", "analysis YAML with weights and thresholds (default: ANALYSIS_CONFIG or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logs and per-component summary on stderr")
}
