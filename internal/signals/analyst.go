package signals

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

const (
	NoAnalystCoverage  = "No analyst coverage available"
	AnalystFaultReason = "Error analyzing analyst sentiment"
)

var ratingScores = map[string]float64{
	"strong_buy":  1.0,
	"buy":         0.7,
	"hold":        0.0,
	"sell":        -0.7,
	"strong_sell": -1.0,
}

var titleCaser = cases.Title(language.English)

// AnalyzeAnalystSentiment combines the consensus rating with the upside to
// the mean price target. Missing price, target or rating yields a present
// result without a score: it is reported but never weighted.
func AnalyzeAnalystSentiment(snapshot *contracts.MarketSnapshot) (contracts.ComponentResult, error) {
	f := snapshot.Fundamentals
	coverage := snapshot.AnalystCoverage
	if coverage == nil {
		coverage = &contracts.AnalystCoverage{}
	}

	current, ok := firstPositive(coverage.CurrentPrice, f.Price, f.CurrentPrice)
	if !ok {
		return contracts.NoOpinion(NoAnalystCoverage), nil
	}

	target, hasTarget := firstPositive(coverage.TargetPrice, f.TargetMeanPrice)
	rating := normalizeRating(firstString(coverage.ConsensusRating, f.RecommendationKey))
	if !hasTarget || rating == "" {
		return contracts.NoOpinion(NoAnalystCoverage), nil
	}

	if err := finite(current, target); err != nil {
		return contracts.NoOpinion(AnalystFaultReason), fmt.Errorf("analyst prices: %w", err)
	}

	upsidePct := (target - current) / current * 100

	base := ratingScores[rating]
	var score float64
	switch {
	case upsidePct > 20:
		score = math.Min(1.0, base+0.3)
	case upsidePct > 10:
		score = math.Min(1.0, base+0.15)
	case upsidePct < -10:
		score = math.Max(-1.0, base-0.3)
	default:
		score = base
	}

	display := titleCaser.String(strings.ReplaceAll(rating, "_", " "))

	direction := "downside"
	if upsidePct > 0 {
		direction = "upside"
	}
	summary := fmt.Sprintf("%s with %.1f%% %s", display, math.Abs(upsidePct), direction)

	var numAnalysts interface{}
	if count := firstInt(coverage.AnalystCount, f.AnalystCount); count != nil && *count > 0 {
		summary += fmt.Sprintf(" (%d analysts)", *count)
		numAnalysts = *count
	}

	return contracts.Present(score, summary, map[string]interface{}{
		"consensus_rating": display,
		"price_target":     target,
		"current_price":    current,
		"upside_pct":       upsidePct,
		"num_analysts":     numAnalysts,
	}), nil
}

// analystMetricKeys are the metrics of a scored analyst result
var analystMetricKeys = []string{"consensus_rating", "price_target", "current_price", "upside_pct", "num_analysts"}

// normalizeRating turns "Strong Buy", "strong-buy" and "strong_buy" into strong_buy
func normalizeRating(raw string) string {
	r := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(r)
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return ""
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
