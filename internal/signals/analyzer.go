package signals

import (
	"fmt"
	"math"
	"sort"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

// Analyzer derives one bounded opinion from a snapshot.
// Returning an error (or panicking) is a fault: the Builder folds it into
// the component's fallback result, it never reaches the synthesizer.
type Analyzer func(snapshot *contracts.MarketSnapshot) (contracts.ComponentResult, error)

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round rounds v to n decimals for display metrics
func round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

func finite(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value %v", v)
		}
	}
	return nil
}

// recentEarnings returns up to n records, most recent first, without
// touching the snapshot's own slice
func recentEarnings(history []contracts.EarningsRecord, n int) []contracts.EarningsRecord {
	sorted := make([]contracts.EarningsRecord, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
