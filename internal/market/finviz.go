package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/external/finviz"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
)

// FinvizProvider builds fundamentals-only snapshots from Finviz quote pages
type FinvizProvider struct {
	client  *finviz.Client
	logger  *logger.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewFinvizProvider creates a Finviz-backed provider
func NewFinvizProvider(client *finviz.Client, log *logger.Logger, rec *metrics.Recorder) *FinvizProvider {
	return &FinvizProvider{
		client:  client,
		logger:  log.WithField("provider", NameFinviz),
		metrics: rec,
		now:     time.Now,
	}
}

// Fetch implements contracts.Provider
func (p *FinvizProvider) Fetch(ctx context.Context, ticker string) (*contracts.MarketSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	start := time.Now()
	quote, err := p.client.Quote(ctx, ticker)
	if errors.Is(err, finviz.ErrNotFound) {
		err = fmt.Errorf("finviz %s: %w", ticker, contracts.ErrTickerNotFound)
	}
	p.metrics.RecordFetch(NameFinviz, time.Since(start), errKind(err))
	if err != nil {
		return nil, err
	}

	return FromFinviz(ticker, quote, p.now())
}
