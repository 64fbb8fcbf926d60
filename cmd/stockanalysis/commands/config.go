package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanzobot/skills/stock-analysis/internal/analysisconfig"
	"github.com/hanzobot/skills/stock-analysis/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective analysis configuration",
	Long: `Prints the weights, thresholds and limits the engine will use,
as YAML, followed by their sha256 hash. The hash identifies the
configuration a signal was produced with.

Example:
  go run ./cmd/stockanalysis config
  go run ./cmd/stockanalysis config --config weights.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := analysisConfigFile
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.Analysis.ConfigPath
	}

	analysisCfg, err := analysisconfig.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("load analysis config: %w", err)
	}

	data, err := analysisconfig.Marshal(analysisCfg)
	if err != nil {
		return err
	}
	hash, err := analysisconfig.Hash(analysisCfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(out, "# source: %s\n", source)
	fmt.Fprintf(out, "# sha256: %s\n", hash)
	_, err = out.Write(data)
	return err
}
