package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

// Disclaimer is attached to every JSON signal
const Disclaimer = "NOT FINANCIAL ADVICE. For informational purposes only."

var (
	rule = strings.Repeat("=", 77)

	disclaimerLines = []string{
		"DISCLAIMER: This analysis is for informational purposes only and does NOT",
		"constitute financial advice. Consult a licensed financial advisor before",
		"making investment decisions. Data provided by Yahoo Finance.",
	}
)

// Text renders one signal for a terminal
func Text(s *contracts.Signal) string {
	var b strings.Builder

	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", rule)
	line("STOCK ANALYSIS: %s (%s)", s.Ticker, s.CompanyName)
	line("Generated: %s", s.Timestamp.Format(time.RFC3339))
	line("%s", rule)
	line("")
	line("RECOMMENDATION: %s (Confidence: %.0f%%)", s.Recommendation, s.Confidence*100)
	line("")
	line("SUPPORTING POINTS:")
	for _, p := range s.SupportingPoints {
		line("• %s", p)
	}
	line("")
	line("CAVEATS:")
	for _, c := range s.Caveats {
		line("• %s", c)
	}
	line("")
	line("%s", rule)
	for _, d := range disclaimerLines {
		line("%s", d)
	}
	b.WriteString(rule)

	return b.String()
}

// WriteText renders signals separated by blank lines
func WriteText(w io.Writer, signals ...*contracts.Signal) error {
	for i, s := range signals {
		if i > 0 {
			if _, err := io.WriteString(w, "\n\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, Text(s)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// withDisclaimer adds the disclaimer key next to the signal fields
type withDisclaimer struct {
	*contracts.Signal
	Disclaimer string `json:"disclaimer"`
}

// Single wraps a signal with the disclaimer for JSON output
func Single(s *contracts.Signal) interface{} {
	return withDisclaimer{Signal: s, Disclaimer: Disclaimer}
}

// JSON renders one signal as an object carrying the disclaimer, or several
// as a plain array
func JSON(signals ...*contracts.Signal) ([]byte, error) {
	var v interface{}
	if len(signals) == 1 {
		v = Single(signals[0])
	} else {
		if signals == nil {
			signals = []*contracts.Signal{}
		}
		v = signals
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode signals: %w", err)
	}
	return buf.Bytes(), nil
}
