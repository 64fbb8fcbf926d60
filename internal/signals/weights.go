package signals

import (
	"github.com/hanzobot/skills/stock-analysis/internal/analysisconfig"
	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

// BaseWeights builds the full component → weight table
func BaseWeights(w analysisconfig.Weights) map[string]float64 {
	return map[string]float64{
		contracts.ComponentEarnings:     w.Earnings,
		contracts.ComponentFundamentals: w.Fundamentals,
		contracts.ComponentAnalysts:     w.Analysts,
		contracts.ComponentHistorical:   w.Historical,
	}
}

// NormalizeWeights keeps only the counted components and rescales their
// weights to sum to 1. The result does not depend on the order of counted.
// If every counted weight is zero the counted components share equally.
func NormalizeWeights(base map[string]float64, counted []string) map[string]float64 {
	out := make(map[string]float64, len(counted))
	if len(counted) == 0 {
		return out
	}

	total := 0.0
	for _, name := range counted {
		total += base[name]
	}

	for _, name := range counted {
		if total > 0 {
			out[name] = base[name] / total
		} else {
			out[name] = 1 / float64(len(counted))
		}
	}
	return out
}

// Recommend maps a final score to BUY/HOLD/SELL; both thresholds are exclusive
func Recommend(score float64, t analysisconfig.Thresholds) contracts.Recommendation {
	switch {
	case score > t.Buy:
		return contracts.RecommendationBuy
	case score < t.Sell:
		return contracts.RecommendationSell
	default:
		return contracts.RecommendationHold
	}
}
