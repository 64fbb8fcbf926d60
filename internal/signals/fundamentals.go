package signals

import (
	"fmt"
	"strings"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

// AnalyzeFundamentals averages up to four independent sub-scores:
// valuation, operating margin, revenue growth and leverage.
func AnalyzeFundamentals(snapshot *contracts.MarketSnapshot) (contracts.ComponentResult, error) {
	f := snapshot.Fundamentals

	var (
		scores  []float64
		notes   []string
		metrics = map[string]interface{}{}
	)

	// P/E: trailing unless unreported or zero, then forward. A negative
	// trailing multiple skips valuation rather than falling through.
	if pe, ok := firstNonZero(f.TrailingPE, f.ForwardPE); ok && pe > 0 {
		if err := finite(pe); err != nil {
			return contracts.Absent(), fmt.Errorf("pe ratio: %w", err)
		}
		metrics["pe_ratio"] = round(pe, 2)
		switch {
		case pe < 15:
			scores = append(scores, 0.5)
			notes = append(notes, fmt.Sprintf("Attractive P/E: %.1fx", pe))
		case pe > 30:
			scores = append(scores, -0.3)
			notes = append(notes, fmt.Sprintf("Elevated P/E: %.1fx", pe))
		default:
			scores = append(scores, 0.1)
		}
	}

	if f.OperatingMargin != nil {
		margin := *f.OperatingMargin
		if err := finite(margin); err != nil {
			return contracts.Absent(), fmt.Errorf("operating margin: %w", err)
		}
		metrics["operating_margin"] = round(margin, 3)
		switch {
		case margin > 0.15:
			scores = append(scores, 0.5)
			notes = append(notes, fmt.Sprintf("Strong margin: %.1f%%", margin*100))
		case margin < 0.05:
			scores = append(scores, -0.5)
			notes = append(notes, fmt.Sprintf("Weak margin: %.1f%%", margin*100))
		}
	}

	if f.RevenueGrowth != nil {
		growth := *f.RevenueGrowth
		if err := finite(growth); err != nil {
			return contracts.Absent(), fmt.Errorf("revenue growth: %w", err)
		}
		metrics["revenue_growth_yoy"] = round(growth, 3)
		switch {
		case growth > 0.20:
			scores = append(scores, 0.5)
			notes = append(notes, fmt.Sprintf("Strong growth: %.1f%% YoY", growth*100))
		case growth < 0.05:
			scores = append(scores, -0.3)
			notes = append(notes, fmt.Sprintf("Slow growth: %.1f%% YoY", growth*100))
		default:
			scores = append(scores, 0.2)
		}
	}

	// Debt/Equity arrives ×100 (150 means 1.5x)
	if f.DebtToEquity != nil {
		de := *f.DebtToEquity
		if err := finite(de); err != nil {
			return contracts.Absent(), fmt.Errorf("debt to equity: %w", err)
		}
		metrics["debt_to_equity"] = round(de/100, 2)
		switch {
		case de < 50:
			scores = append(scores, 0.3)
		case de > 200:
			scores = append(scores, -0.5)
			notes = append(notes, fmt.Sprintf("High debt: D/E %.1fx", de/100))
		}
	}

	// a mid-band margin or D/E alone contributes nothing to average
	if len(scores) == 0 {
		return contracts.Absent(), nil
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	score := clamp(sum/float64(len(scores)), -1, 1)

	explanation := "Mixed fundamentals"
	if len(notes) > 0 {
		explanation = strings.Join(notes, "; ")
	}

	return contracts.Present(score, explanation, metrics), nil
}

func firstNonZero(values ...*float64) (float64, bool) {
	for _, v := range values {
		if v != nil && *v != 0 {
			return *v, true
		}
	}
	return 0, false
}

func firstPositive(values ...*float64) (float64, bool) {
	for _, v := range values {
		if v != nil && *v > 0 {
			return *v, true
		}
	}
	return 0, false
}
