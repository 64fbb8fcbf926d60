package contracts

// Component output keys, in the fixed order used for points and output
const (
	ComponentEarnings     = "earnings_surprise"
	ComponentFundamentals = "fundamentals"
	ComponentAnalysts     = "analyst_sentiment"
	ComponentHistorical   = "historical_patterns"
)

// ComponentNames lists the four components in synthesis order
var ComponentNames = []string{
	ComponentEarnings,
	ComponentFundamentals,
	ComponentAnalysts,
	ComponentHistorical,
}

// ComponentResult is the outcome of one analyzer: either absent, or present
// with a score in [-1, 1]. A present result with a nil score is the analyst
// "no opinion" shape: it is reported but never weighted.
type ComponentResult struct {
	present     bool
	Score       *float64
	Explanation string
	Metrics     map[string]interface{}
}

// Absent is the "no usable data" result
func Absent() ComponentResult {
	return ComponentResult{}
}

// Present builds a scored result
func Present(score float64, explanation string, metrics map[string]interface{}) ComponentResult {
	return ComponentResult{
		present:     true,
		Score:       &score,
		Explanation: explanation,
		Metrics:     metrics,
	}
}

// NoOpinion builds a present result without a score
func NoOpinion(explanation string) ComponentResult {
	return ComponentResult{
		present:     true,
		Explanation: explanation,
	}
}

// IsPresent reports whether the analyzer produced anything
func (r ComponentResult) IsPresent() bool {
	return r.present
}

// Counts reports whether the result takes part in the weighted score
func (r ComponentResult) Counts() bool {
	return r.present && r.Score != nil
}

// Outcome is a short label for logs and metrics: scored, no_opinion or absent
func (r ComponentResult) Outcome() string {
	switch {
	case r.Counts():
		return "scored"
	case r.present:
		return "no_opinion"
	default:
		return "absent"
	}
}

// ComponentResults holds one result per component
type ComponentResults struct {
	Earnings     ComponentResult
	Fundamentals ComponentResult
	Analysts     ComponentResult
	Historical   ComponentResult
}

// ByName returns the result stored under a component key
func (c ComponentResults) ByName(name string) ComponentResult {
	switch name {
	case ComponentEarnings:
		return c.Earnings
	case ComponentFundamentals:
		return c.Fundamentals
	case ComponentAnalysts:
		return c.Analysts
	case ComponentHistorical:
		return c.Historical
	default:
		return Absent()
	}
}

// Counted returns how many results take part in the weighted score
func (c ComponentResults) Counted() int {
	n := 0
	for _, name := range ComponentNames {
		if c.ByName(name).Counts() {
			n++
		}
	}
	return n
}
