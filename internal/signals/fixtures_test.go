package signals

import (
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

var (
	f64 = contracts.Float
	str = contracts.String
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// quarter is a record dated on its announcement day
func quarter(d time.Time, actual, expected float64) contracts.EarningsRecord {
	return contracts.EarningsRecord{Date: d, Announced: true, ReportedEPS: f64(actual), EstimatedEPS: f64(expected)}
}

// periodEnd is a record dated only by its fiscal quarter end
func periodEnd(d time.Time, actual, expected float64) contracts.EarningsRecord {
	r := quarter(d, actual, expected)
	r.Announced = false
	return r
}

func bar(d time.Time, open, close float64) contracts.PriceBar {
	// bars carry the market-open time, not midnight
	return contracts.PriceBar{Date: d.Add(14*time.Hour + 30*time.Minute), Open: open, Close: close}
}

// fullSnapshot has data for all four analyzers
func fullSnapshot() *contracts.MarketSnapshot {
	q1, q2, q3, q4 := date(2025, 1, 30), date(2024, 10, 31), date(2024, 8, 1), date(2024, 5, 2)
	return &contracts.MarketSnapshot{
		Ticker:    "AAPL",
		FetchedAt: date(2025, 2, 1),
		Fundamentals: contracts.Fundamentals{
			Price:           f64(100),
			TrailingPE:      f64(12),
			OperatingMargin: f64(0.20),
			RevenueGrowth:   f64(0.25),
			DebtToEquity:    f64(30),
			LongName:        str("Apple Inc."),
		},
		EarningsHistory: []contracts.EarningsRecord{
			quarter(q4, 1.5, 1.4),
			quarter(q1, 12, 10),
			quarter(q3, 1.4, 1.35),
			quarter(q2, 1.6, 1.55),
		},
		AnalystCoverage: &contracts.AnalystCoverage{
			ConsensusRating: str("buy"),
			TargetPrice:     f64(125),
			AnalystCount:    contracts.Int(38),
			CurrentPrice:    f64(100),
		},
		PriceHistory: []contracts.PriceBar{
			bar(q4, 100, 102),
			bar(q3, 100, 102),
			bar(q2, 100, 102),
			bar(q1, 100, 102),
		},
	}
}
