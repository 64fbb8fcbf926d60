package commands

import (
	"fmt"
	"io"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// Human-facing extras go to stderr; stdout carries only reports
// ═══════════════════════════════════════════════════════════

// componentLabels names the components in summaries
var componentLabels = map[string]string{
	contracts.ComponentEarnings:     "Earnings",
	contracts.ComponentFundamentals: "Fundamentals",
	contracts.ComponentAnalysts:     "Analysts",
	contracts.ComponentHistorical:   "Historical",
}

// PrintComponentSummary lists which components produced a score
func PrintComponentSummary(w io.Writer, signal *contracts.Signal) {
	fmt.Fprintf(w, "\n=== %s ===\n", signal.Ticker)
	fmt.Fprintln(w, "Components analyzed:")
	for _, name := range contracts.ComponentNames {
		mark := "✗"
		if c, ok := signal.Components[name]; ok && c["score"] != nil {
			mark = "✓"
		}
		PrintKeyValue(w, componentLabels[name], mark, 12)
	}
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}
