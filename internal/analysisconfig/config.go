package analysisconfig

// Config holds the tunable parts of signal synthesis.
// Defaults reproduce the reference weighting; a YAML file may override any field.
type Config struct {
	Weights    Weights    `yaml:"weights" json:"weights"`
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
	Limits     Limits     `yaml:"limits" json:"limits"`
}

// Weights are the base component weights (sum = 1.0).
// Missing components are dropped and the rest renormalized per analysis.
type Weights struct {
	Earnings     float64 `yaml:"earnings" json:"earnings" default:"0.35" validate:"gte=0,lte=1"`
	Fundamentals float64 `yaml:"fundamentals" json:"fundamentals" default:"0.25" validate:"gte=0,lte=1"`
	Analysts     float64 `yaml:"analysts" json:"analysts" default:"0.25" validate:"gte=0,lte=1"`
	Historical   float64 `yaml:"historical" json:"historical" default:"0.15" validate:"gte=0,lte=1"`
}

// Sum returns the total of all base weights
func (w Weights) Sum() float64 {
	return w.Earnings + w.Fundamentals + w.Analysts + w.Historical
}

// Thresholds map the final score to a recommendation.
// score > Buy → BUY, score < Sell → SELL, otherwise HOLD.
type Thresholds struct {
	Buy  float64 `yaml:"buy" json:"buy" default:"0.33" validate:"gt=0,lt=1"`
	Sell float64 `yaml:"sell" json:"sell" default:"-0.33" validate:"gt=-1,lt=0"`
}

// Limits bound the synthesized output
type Limits struct {
	MinComponents       int `yaml:"min_components" json:"min_components" default:"2" validate:"gte=1,lte=4"`
	MaxSupportingPoints int `yaml:"max_supporting_points" json:"max_supporting_points" default:"5" validate:"gte=1,lte=10"`
	MaxCaveats          int `yaml:"max_caveats" json:"max_caveats" default:"3" validate:"gte=1,lte=10"`
}
