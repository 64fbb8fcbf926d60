package signals

import (
	"fmt"
	"math"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

// earningsScanDepth is how many recent quarters are searched for a usable surprise
const earningsScanDepth = 10

// AnalyzeEarningsSurprise scores the most recent quarter that has both
// reported and estimated EPS (estimate non-zero) among the last ten.
// Older quarters are used when newer ones are incomplete.
func AnalyzeEarningsSurprise(snapshot *contracts.MarketSnapshot) (contracts.ComponentResult, error) {
	if len(snapshot.EarningsHistory) == 0 {
		return contracts.Absent(), nil
	}

	for _, record := range recentEarnings(snapshot.EarningsHistory, earningsScanDepth) {
		if !record.Complete() {
			continue
		}

		actual, expected := *record.ReportedEPS, *record.EstimatedEPS
		if err := finite(actual, expected); err != nil {
			return contracts.Absent(), fmt.Errorf("earnings %s: %w", record.Date.Format("2006-01-02"), err)
		}
		if expected == 0 {
			continue
		}

		surprisePct := (actual - expected) / math.Abs(expected) * 100

		verb := "Missed"
		if surprisePct > 0 {
			verb = "Beat"
		}
		explanation := fmt.Sprintf("%s by %.1f%%", verb, math.Abs(surprisePct))

		return contracts.Present(surpriseScore(surprisePct), explanation, map[string]interface{}{
			"actual_eps":   actual,
			"expected_eps": expected,
			"surprise_pct": surprisePct,
			"explanation":  explanation,
		}), nil
	}

	return contracts.Absent(), nil
}

// surpriseScore maps a surprise percentage to [-1, 1]. Bounds are exclusive:
// exactly -10% falls through to -1.0.
func surpriseScore(pct float64) float64 {
	switch {
	case pct > 10:
		return 1.0
	case pct > 5:
		return 0.7
	case pct > 0:
		return 0.3
	case pct > -5:
		return -0.3
	case pct > -10:
		return -0.7
	default:
		return -1.0
	}
}
