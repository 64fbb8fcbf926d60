package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hanzobot/skills/stock-analysis/internal/analysisconfig"
	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/signals"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
)

// Service runs the fetch → analyze → synthesize pipeline for tickers
// ⭐ SSOT: the only caller of Provider.Fetch and Synthesizer.Synthesize
type Service struct {
	provider    contracts.Provider
	builder     *signals.Builder
	synthesizer *signals.Synthesizer
	concurrency int
	logger      *logger.Logger
	metrics     *metrics.Recorder
}

// Option customizes a Service
type Option func(*Service)

// WithConcurrency bounds how many tickers AnalyzeAll fetches at once
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock fixes the signal timestamp
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.synthesizer.WithClock(now)
	}
}

// WithBuilder replaces the analyzer set
func WithBuilder(b *signals.Builder) Option {
	return func(s *Service) {
		s.builder = b
	}
}

// NewService creates a Service. cfg nil means the default weights.
func NewService(provider contracts.Provider, cfg *analysisconfig.Config, log *logger.Logger, rec *metrics.Recorder, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		builder:     signals.NewBuilder(log, rec),
		synthesizer: signals.NewSynthesizer(cfg),
		concurrency: 1,
		logger:      log.WithField("module", "analysis"),
		metrics:     rec,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze produces a signal for one ticker. Only provider failures are
// returned; analyzer faults are folded into the signal.
func (s *Service) Analyze(ctx context.Context, ticker string) (*contracts.Signal, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker: %w", contracts.ErrTickerNotFound)
	}

	snapshot, err := s.provider.Fetch(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	results := s.builder.Build(snapshot)
	signal := s.synthesizer.Synthesize(ticker, snapshot.CompanyName(), results)

	s.metrics.RecordAnalysis(ticker, string(signal.Recommendation), signal.FinalScore)
	s.logger.WithFields(map[string]interface{}{
		"ticker":         ticker,
		"recommendation": signal.Recommendation,
		"confidence":     signal.Confidence,
		"final_score":    signal.FinalScore,
	}).Info("Analysis complete")

	return signal, nil
}

// Result is one ticker's outcome in a batch
type Result struct {
	Ticker string
	Signal *contracts.Signal
	Err    error
}

// AnalyzeAll analyzes tickers with bounded parallelism. Results keep the
// input order and one ticker's failure does not stop the others.
func (s *Service) AnalyzeAll(ctx context.Context, tickers []string) []Result {
	results := make([]Result, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			signal, err := s.Analyze(gctx, ticker)
			results[i] = Result{Ticker: NormalizeTicker(ticker), Signal: signal, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// TickerError names the ticker a fail-fast batch stopped at
type TickerError struct {
	Ticker string
	Err    error
}

func (e *TickerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ticker, e.Err)
}

func (e *TickerError) Unwrap() error {
	return e.Err
}

// AnalyzeAllFailFast is AnalyzeAll for callers that give up on the first
// failure. In-flight fetches are cancelled, queued tickers never start,
// and the error is a *TickerError.
func (s *Service) AnalyzeAllFailFast(ctx context.Context, tickers []string) ([]Result, error) {
	results := make([]Result, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			signal, err := s.Analyze(gctx, ticker)
			if err != nil {
				return &TickerError{Ticker: NormalizeTicker(ticker), Err: err}
			}
			results[i] = Result{Ticker: NormalizeTicker(ticker), Signal: signal}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// NormalizeTicker trims and upper-cases a symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
