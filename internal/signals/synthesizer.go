package signals

import (
	"fmt"
	"math"
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/analysisconfig"
	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

const (
	InsufficientDataPoint = "Insufficient data for analysis"
	LimitedDataCaveat     = "Limited data available"

	caveatNoAnalysts  = "Limited or no analyst coverage"
	caveatNoEarnings  = "No recent earnings data available"
	caveatPartialData = "Analysis based on limited data components"
	caveatGeneric     = "Market conditions can change rapidly"
)

// Synthesizer turns component results into a Signal
// ⭐ SSOT: weighting, recommendation, points and caveats are decided here only
type Synthesizer struct {
	cfg  *analysisconfig.Config
	base map[string]float64
	now  func() time.Time
}

// NewSynthesizer creates a synthesizer; a nil cfg means defaults
func NewSynthesizer(cfg *analysisconfig.Config) *Synthesizer {
	if cfg == nil {
		cfg = analysisconfig.Default()
	}
	return &Synthesizer{
		cfg:  cfg,
		base: BaseWeights(cfg.Weights),
		now:  time.Now,
	}
}

// WithClock replaces the timestamp source
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Synthesize builds the Signal. It never fails: too few counted components
// yield the HOLD / zero-confidence signal.
func (s *Synthesizer) Synthesize(ticker, companyName string, results contracts.ComponentResults) *contracts.Signal {
	var counted []string
	for _, name := range contracts.ComponentNames {
		if results.ByName(name).Counts() {
			counted = append(counted, name)
		}
	}

	if len(counted) < s.cfg.Limits.MinComponents {
		return &contracts.Signal{
			Ticker:           ticker,
			CompanyName:      companyName,
			Recommendation:   contracts.RecommendationHold,
			Confidence:       0,
			FinalScore:       0,
			SupportingPoints: []string{InsufficientDataPoint},
			Caveats:          []string{LimitedDataCaveat},
			Timestamp:        s.now(),
			Components:       map[string]map[string]interface{}{},
		}
	}

	weights := NormalizeWeights(s.base, counted)
	finalScore := 0.0
	for _, name := range counted {
		finalScore += *results.ByName(name).Score * weights[name]
	}
	finalScore = clamp(finalScore, -1, 1)

	return &contracts.Signal{
		Ticker:           ticker,
		CompanyName:      companyName,
		Recommendation:   Recommend(finalScore, s.cfg.Thresholds),
		Confidence:       math.Abs(finalScore),
		FinalScore:       finalScore,
		SupportingPoints: truncate(supportingPoints(results), s.cfg.Limits.MaxSupportingPoints),
		Caveats:          truncate(caveats(results, len(counted)), s.cfg.Limits.MaxCaveats),
		Timestamp:        s.now(),
		Components:       components(results),
	}
}

func supportingPoints(r contracts.ComponentResults) []string {
	var points []string

	if r.Earnings.Counts() {
		actual, aok := r.Earnings.Metrics["actual_eps"].(float64)
		expected, eok := r.Earnings.Metrics["expected_eps"].(float64)
		if aok && eok {
			points = append(points, fmt.Sprintf("%s - EPS $%.2f vs $%.2f expected", r.Earnings.Explanation, actual, expected))
		} else {
			points = append(points, r.Earnings.Explanation)
		}
	}

	if r.Fundamentals.Counts() && r.Fundamentals.Explanation != "" {
		points = append(points, r.Fundamentals.Explanation)
	}

	// a no-opinion analyst result adds a caveat, never a point
	if r.Analysts.Counts() && r.Analysts.Explanation != "" {
		points = append(points, "Analyst consensus: "+r.Analysts.Explanation)
	}

	if r.Historical.Counts() && r.Historical.Explanation != "" {
		points = append(points, "Historical pattern: "+r.Historical.Explanation)
	}

	return points
}

func caveats(r contracts.ComponentResults, counted int) []string {
	var out []string

	if !r.Analysts.Counts() {
		out = append(out, caveatNoAnalysts)
	}
	if !r.Earnings.IsPresent() {
		out = append(out, caveatNoEarnings)
	}
	if counted < len(contracts.ComponentNames) {
		out = append(out, caveatPartialData)
	}
	if len(out) == 0 {
		out = append(out, caveatGeneric)
	}

	return out
}

// components mirrors every present result, including an unscored analyst
// result (score and metrics null), under its fixed key
func components(r contracts.ComponentResults) map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{})
	for _, name := range contracts.ComponentNames {
		result := r.ByName(name)
		if !result.IsPresent() {
			continue
		}

		entry := make(map[string]interface{}, len(result.Metrics)+1)
		for k, v := range result.Metrics {
			entry[k] = v
		}
		if result.Score != nil {
			entry["score"] = *result.Score
		} else {
			entry["score"] = nil
			if name == contracts.ComponentAnalysts {
				// same shape as a scored entry
				for _, k := range analystMetricKeys {
					if _, ok := entry[k]; !ok {
						entry[k] = nil
					}
				}
			}
		}
		out[name] = entry
	}
	return out
}

func truncate(items []string, max int) []string {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}
