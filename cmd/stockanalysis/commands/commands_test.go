package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2, Err: errors.New("bad ticker")}))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("wrapped: %w", &ExitError{Code: 2, Err: errors.New("x")})))
}

func TestPrintComponentSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintComponentSummary(&buf, &contracts.Signal{
		Ticker: "AAPL",
		Components: map[string]map[string]interface{}{
			contracts.ComponentEarnings: {"score": 1.0},
			contracts.ComponentAnalysts: {"score": nil},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "=== AAPL ===")
	assert.Contains(t, out, "Earnings     : ✓")
	assert.Contains(t, out, "Analysts     : ✗")
	assert.Contains(t, out, "Historical   : ✗")
}

func TestWriteSignals(t *testing.T) {
	s := &contracts.Signal{
		Ticker:         "AAPL",
		CompanyName:    "Apple Inc.",
		Recommendation: contracts.RecommendationHold,
		Timestamp:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	var text bytes.Buffer
	require.NoError(t, writeSignals(&text, "text", []*contracts.Signal{s}))
	assert.Contains(t, text.String(), "RECOMMENDATION: HOLD (Confidence: 0%)")

	var js bytes.Buffer
	require.NoError(t, writeSignals(&js, "json", []*contracts.Signal{s}))
	assert.True(t, strings.Contains(js.String(), `"disclaimer"`))
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  buy: 0.4\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "--config", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		analysisConfigFile = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "# sha256: ")
	assert.Contains(t, out.String(), "buy: 0.4")
}

func TestAnalyzeRejectsUnknownOutput(t *testing.T) {
	rootCmd.SetArgs([]string{"analyze", "AAPL", "--output", "xml"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		outputFormat = "text"
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --output")
}
