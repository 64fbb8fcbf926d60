package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/external/finviz"
	"github.com/hanzobot/skills/stock-analysis/internal/external/yahoo"
)

// FromYahoo converts raw Yahoo payloads into a snapshot.
// chart may be nil; the price history is then empty. Earnings come from the
// calendar's announcement days when it has any, otherwise from quoteSummary,
// whose quarter field is the fiscal period end.
// ⭐ SSOT: Yahoo field names never leave this file
func FromYahoo(ticker string, summary *yahoo.QuoteSummary, chart *yahoo.Chart, calendar []yahoo.EarningsDate, fetchedAt time.Time) (*contracts.MarketSnapshot, error) {
	if summary == nil || summary.Price == nil || summary.Price.RegularMarketPrice.Raw == nil {
		return nil, fmt.Errorf("%s: no regular market price: %w", ticker, contracts.ErrTickerNotFound)
	}

	snap := &contracts.MarketSnapshot{
		Ticker:    ticker,
		FetchedAt: fetchedAt,
	}

	f := &snap.Fundamentals
	f.Price = summary.Price.RegularMarketPrice.Float()
	f.LongName = nonEmpty(summary.Price.LongName)
	f.ShortName = nonEmpty(summary.Price.ShortName)

	if sd := summary.SummaryDetail; sd != nil {
		f.TrailingPE = sd.TrailingPE.Float()
		f.ForwardPE = sd.ForwardPE.Float()
	}
	if ks := summary.DefaultKeyStatistics; ks != nil && f.ForwardPE == nil {
		f.ForwardPE = ks.ForwardPE.Float()
	}

	if fd := summary.FinancialData; fd != nil {
		f.CurrentPrice = fd.CurrentPrice.Float()
		f.TargetMeanPrice = fd.TargetMeanPrice.Float()
		f.OperatingMargin = fd.OperatingMargins.Float()
		f.RevenueGrowth = fd.RevenueGrowth.Float()
		f.DebtToEquity = fd.DebtToEquity.Float()
		if n := fd.NumberOfAnalystOpinions.Float(); n != nil {
			f.AnalystCount = contracts.Int(int(*n))
		}
		f.RecommendationKey = recommendationKey(fd.RecommendationKey)
	}

	snap.AnalystCoverage = coverageFrom(f)

	if len(calendar) > 0 {
		for _, e := range calendar {
			snap.EarningsHistory = append(snap.EarningsHistory, contracts.EarningsRecord{
				Date:         e.Date,
				Announced:    true,
				ReportedEPS:  e.ReportedEPS,
				EstimatedEPS: e.EPSEstimate,
			})
		}
	} else if eh := summary.EarningsHistory; eh != nil {
		for _, e := range eh.History {
			if e.Quarter.Raw == nil {
				continue
			}
			snap.EarningsHistory = append(snap.EarningsHistory, contracts.EarningsRecord{
				Date:         calendarDay(time.Unix(int64(*e.Quarter.Raw), 0).UTC()),
				ReportedEPS:  e.EPSActual.Float(),
				EstimatedEPS: e.EPSEstimate.Float(),
			})
		}
	}

	if chart != nil {
		snap.PriceHistory = barsFrom(chart)
	}

	return snap, nil
}

// FromFinviz converts a scraped quote page. Finviz has no earnings
// history or price series, only fundamentals and analyst coverage.
func FromFinviz(ticker string, q *finviz.Quote, fetchedAt time.Time) (*contracts.MarketSnapshot, error) {
	price, ok := q.Float(finviz.LabelPrice)
	if !ok {
		return nil, fmt.Errorf("%s: no price on quote page: %w", ticker, contracts.ErrTickerNotFound)
	}

	snap := &contracts.MarketSnapshot{
		Ticker:    ticker,
		FetchedAt: fetchedAt,
	}

	f := &snap.Fundamentals
	f.Price = contracts.Float(price)
	f.LongName = nonEmpty(q.CompanyName)
	f.TrailingPE = optional(q.Float(finviz.LabelPE))
	f.ForwardPE = optional(q.Float(finviz.LabelForwardPE))
	f.OperatingMargin = optional(q.Percent(finviz.LabelOperMargin))
	f.RevenueGrowth = optional(q.Percent(finviz.LabelSalesGrowth))
	f.TargetMeanPrice = optional(q.Float(finviz.LabelTarget))

	// Finviz quotes D/E as a ratio, the engine expects Yahoo's ×100 form
	if de, ok := q.Float(finviz.LabelDebtEquity); ok {
		f.DebtToEquity = contracts.Float(de * 100)
	}
	if mean, ok := q.Float(finviz.LabelRecom); ok {
		f.RecommendationKey = contracts.String(finviz.RecommendationKey(mean))
	}

	snap.AnalystCoverage = coverageFrom(f)
	return snap, nil
}

func coverageFrom(f *contracts.Fundamentals) *contracts.AnalystCoverage {
	if f.RecommendationKey == nil && f.TargetMeanPrice == nil && f.AnalystCount == nil {
		return nil
	}
	return &contracts.AnalystCoverage{
		ConsensusRating: f.RecommendationKey,
		TargetPrice:     f.TargetMeanPrice,
		AnalystCount:    f.AnalystCount,
		CurrentPrice:    f.CurrentPrice,
	}
}

// barsFrom keys each bar by its trading day on the exchange calendar
func barsFrom(chart *yahoo.Chart) []contracts.PriceBar {
	loc := time.UTC
	if chart.Timezone != "" {
		if l, err := time.LoadLocation(chart.Timezone); err == nil {
			loc = l
		}
	}

	bars := make([]contracts.PriceBar, 0, len(chart.Timestamps))
	for i, ts := range chart.Timestamps {
		if i >= len(chart.Open) || i >= len(chart.Close) {
			break
		}
		open, closePx := chart.Open[i], chart.Close[i]
		if open == nil || closePx == nil {
			continue
		}
		bars = append(bars, contracts.PriceBar{
			Date:  calendarDay(time.Unix(ts, 0).In(loc)),
			Open:  *open,
			Close: *closePx,
		})
	}
	return bars
}

// calendarDay drops the clock, keeping the date as midnight UTC
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// recommendationKey treats Yahoo's "none" as no consensus
func recommendationKey(key string) *string {
	key = strings.TrimSpace(key)
	if key == "" || strings.EqualFold(key, "none") {
		return nil
	}
	return &key
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
