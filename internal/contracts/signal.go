package contracts

import (
	"context"
	"errors"
	"time"
)

// Recommendation is the final advisory label
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationHold Recommendation = "HOLD"
	RecommendationSell Recommendation = "SELL"
)

// Signal is the synthesized outcome for one ticker
// ⭐ SSOT: engine → presentation handoff
type Signal struct {
	Ticker           string                            `json:"ticker"`
	CompanyName      string                            `json:"company_name"`
	Recommendation   Recommendation                    `json:"recommendation"`
	Confidence       float64                           `json:"confidence"`  // |FinalScore|, 0..1
	FinalScore       float64                           `json:"final_score"` // -1..1
	SupportingPoints []string                          `json:"supporting_points"`
	Caveats          []string                          `json:"caveats"`
	Timestamp        time.Time                         `json:"timestamp"`
	Components       map[string]map[string]interface{} `json:"components"`
}

// IsActionable reports whether the signal is BUY or SELL
func (s *Signal) IsActionable() bool {
	return s.Recommendation != RecommendationHold
}

// ErrTickerNotFound is returned (wrapped) by providers for unresolvable symbols
var ErrTickerNotFound = errors.New("ticker not found")

// Provider fetches a market snapshot for a ticker
// ⭐ SSOT: market data source interface
type Provider interface {
	Fetch(ctx context.Context, ticker string) (*MarketSnapshot, error)
}
