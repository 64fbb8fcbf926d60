package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/external/yahoo"
	"github.com/hanzobot/skills/stock-analysis/pkg/httputil"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
)

// Daily bars covering the last four reported quarters
const (
	chartRange    = "1y"
	chartInterval = "1d"
)

// YahooProvider builds snapshots from the quoteSummary and chart endpoints
// plus the earnings calendar page
type YahooProvider struct {
	client  *yahoo.Client
	logger  *logger.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewYahooProvider creates a Yahoo-backed provider
func NewYahooProvider(client *yahoo.Client, log *logger.Logger, rec *metrics.Recorder) *YahooProvider {
	return &YahooProvider{
		client:  client,
		logger:  log.WithField("provider", NameYahoo),
		metrics: rec,
		now:     time.Now,
	}
}

// Fetch implements contracts.Provider
func (p *YahooProvider) Fetch(ctx context.Context, ticker string) (*contracts.MarketSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	start := time.Now()
	summary, err := p.client.QuoteSummary(ctx, ticker)
	p.metrics.RecordFetch(NameYahoo, time.Since(start), errKind(err))
	if err != nil {
		if errors.Is(err, yahoo.ErrNotFound) {
			return nil, fmt.Errorf("yahoo %s: %w", ticker, contracts.ErrTickerNotFound)
		}
		return nil, fmt.Errorf("yahoo quote summary %s: %w", ticker, err)
	}

	// Without bars the historical analyzer only loses its reaction figure
	chart, err := p.client.Chart(ctx, ticker, chartRange, chartInterval)
	if err != nil {
		p.logger.WithTicker(ticker).WithError(err).Warn("Price history unavailable")
		chart = nil
	}

	// Without announcement days the reaction figure is dropped, not guessed
	calendar, err := p.client.EarningsDates(ctx, ticker)
	if err != nil {
		p.logger.WithTicker(ticker).WithError(err).Warn("Earnings calendar unavailable")
		calendar = nil
	}

	return FromYahoo(ticker, summary, chart, calendar, p.now())
}

// errKind labels a fetch error for the metrics recorder
func errKind(err error) string {
	var status *httputil.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, yahoo.ErrNotFound), errors.Is(err, contracts.ErrTickerNotFound), httputil.IsNotFound(err):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &status):
		return "status"
	default:
		return "transport"
	}
}
