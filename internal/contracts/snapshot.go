package contracts

import (
	"strings"
	"time"
)

// MarketSnapshot is everything the analyzers may look at for one ticker,
// fetched once per analysis and never mutated afterwards.
// ⭐ SSOT: provider → analyzer data handoff
//
// Every numeric field is optional. nil means "not reported"; zero is a real value.
type MarketSnapshot struct {
	Ticker          string           `json:"ticker"`
	FetchedAt       time.Time        `json:"fetched_at"`
	Fundamentals    Fundamentals     `json:"fundamentals"`
	EarningsHistory []EarningsRecord `json:"earnings_history,omitempty"`
	AnalystCoverage *AnalystCoverage `json:"analyst_coverage,omitempty"`
	PriceHistory    []PriceBar       `json:"price_history,omitempty"`
}

// Fundamentals holds the company-level descriptors
type Fundamentals struct {
	Price             *float64 `json:"price,omitempty"`         // regular market price
	CurrentPrice      *float64 `json:"current_price,omitempty"` // fallback quote
	TrailingPE        *float64 `json:"trailing_pe,omitempty"`
	ForwardPE         *float64 `json:"forward_pe,omitempty"`
	OperatingMargin   *float64 `json:"operating_margin,omitempty"` // fraction, 0.20 = 20%
	RevenueGrowth     *float64 `json:"revenue_growth,omitempty"`   // YoY fraction
	DebtToEquity      *float64 `json:"debt_to_equity,omitempty"`   // raw ×100 form, 150 = 1.5x
	TargetMeanPrice   *float64 `json:"target_mean_price,omitempty"`
	AnalystCount      *int     `json:"analyst_count,omitempty"`
	RecommendationKey *string  `json:"recommendation_key,omitempty"` // strong_buy, buy, hold, sell, strong_sell
	LongName          *string  `json:"long_name,omitempty"`
	ShortName         *string  `json:"short_name,omitempty"`
}

// EarningsRecord is one reported quarter.
// Announced is false when Date is only the fiscal period end, which says
// nothing about when the market heard the numbers.
type EarningsRecord struct {
	Date         time.Time `json:"date"`
	Announced    bool      `json:"announced"`
	ReportedEPS  *float64  `json:"reported_eps,omitempty"`
	EstimatedEPS *float64  `json:"estimated_eps,omitempty"`
}

// Complete reports whether both actual and consensus EPS are known
func (e EarningsRecord) Complete() bool {
	return e.ReportedEPS != nil && e.EstimatedEPS != nil
}

// AnalystCoverage is the sell-side view of the ticker
type AnalystCoverage struct {
	ConsensusRating *string  `json:"consensus_rating,omitempty"`
	TargetPrice     *float64 `json:"target_price,omitempty"`
	AnalystCount    *int     `json:"analyst_count,omitempty"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
}

// PriceBar is one daily bar
type PriceBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	Close float64   `json:"close"`
}

// CompanyName resolves long name, then short name, then the ticker itself
func (s *MarketSnapshot) CompanyName() string {
	for _, name := range []*string{s.Fundamentals.LongName, s.Fundamentals.ShortName} {
		if name != nil && strings.TrimSpace(*name) != "" {
			return *name
		}
	}
	return s.Ticker
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }
