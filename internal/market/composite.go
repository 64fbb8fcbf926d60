package market

import (
	"context"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
)

// Provider names, used for metrics labels and logs
const (
	NameYahoo  = "yahoo"
	NameFinviz = "finviz"
)

// Composite asks the primary provider first and lets secondaries fill in
// only what the primary left empty
type Composite struct {
	primary     contracts.Provider
	secondaries []contracts.Provider
	logger      *logger.Logger
}

// NewComposite creates a provider chain
func NewComposite(log *logger.Logger, primary contracts.Provider, secondaries ...contracts.Provider) *Composite {
	return &Composite{
		primary:     primary,
		secondaries: secondaries,
		logger:      log.WithField("module", "market"),
	}
}

// Fetch implements contracts.Provider. A primary failure is returned as is;
// secondary failures are logged and skipped.
func (c *Composite) Fetch(ctx context.Context, ticker string) (*contracts.MarketSnapshot, error) {
	snap, err := c.primary.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	for i, p := range c.secondaries {
		extra, err := p.Fetch(ctx, ticker)
		if err != nil {
			c.logger.WithTicker(ticker).WithError(err).WithField("secondary", i).Warn("Secondary provider failed")
			continue
		}
		merge(snap, extra)
	}

	return snap, nil
}

// merge copies fields from src into dst where dst has none
func merge(dst, src *contracts.MarketSnapshot) {
	d, s := &dst.Fundamentals, &src.Fundamentals
	fillFloat(&d.Price, s.Price)
	fillFloat(&d.CurrentPrice, s.CurrentPrice)
	fillFloat(&d.TrailingPE, s.TrailingPE)
	fillFloat(&d.ForwardPE, s.ForwardPE)
	fillFloat(&d.OperatingMargin, s.OperatingMargin)
	fillFloat(&d.RevenueGrowth, s.RevenueGrowth)
	fillFloat(&d.DebtToEquity, s.DebtToEquity)
	fillFloat(&d.TargetMeanPrice, s.TargetMeanPrice)
	fillString(&d.RecommendationKey, s.RecommendationKey)
	fillString(&d.LongName, s.LongName)
	fillString(&d.ShortName, s.ShortName)
	if d.AnalystCount == nil && s.AnalystCount != nil {
		d.AnalystCount = s.AnalystCount
	}

	switch {
	case dst.AnalystCoverage == nil && src.AnalystCoverage != nil:
		cov := *src.AnalystCoverage
		dst.AnalystCoverage = &cov
	case dst.AnalystCoverage != nil && src.AnalystCoverage != nil:
		dc, sc := dst.AnalystCoverage, src.AnalystCoverage
		fillString(&dc.ConsensusRating, sc.ConsensusRating)
		fillFloat(&dc.TargetPrice, sc.TargetPrice)
		fillFloat(&dc.CurrentPrice, sc.CurrentPrice)
		if dc.AnalystCount == nil && sc.AnalystCount != nil {
			dc.AnalystCount = sc.AnalystCount
		}
	}

	if len(dst.EarningsHistory) == 0 {
		dst.EarningsHistory = src.EarningsHistory
	}
	if len(dst.PriceHistory) == 0 {
		dst.PriceHistory = src.PriceHistory
	}
}

func fillFloat(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillString(dst **string, src *string) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}
