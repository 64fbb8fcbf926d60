package signals

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
)

// component pairs an analyzer with the result used when it faults
type component struct {
	name     string
	analyze  Analyzer
	fallback contracts.ComponentResult
}

// Builder runs the four analyzers over one snapshot
// ⭐ SSOT: analyzer orchestration and fault folding live here only
type Builder struct {
	components []component
	logger     *logger.Logger
	metrics    *metrics.Recorder
}

// NewBuilder creates a builder with the standard analyzers
func NewBuilder(log *logger.Logger, rec *metrics.Recorder) *Builder {
	return &Builder{
		components: []component{
			{contracts.ComponentEarnings, AnalyzeEarningsSurprise, contracts.Absent()},
			{contracts.ComponentFundamentals, AnalyzeFundamentals, contracts.Absent()},
			{contracts.ComponentAnalysts, AnalyzeAnalystSentiment, contracts.NoOpinion(AnalystFaultReason)},
			{contracts.ComponentHistorical, AnalyzeHistoricalPattern, contracts.Absent()},
		},
		logger:  log,
		metrics: rec,
	}
}

// WithAnalyzer replaces the analyzer of one component (tests, experiments)
func (b *Builder) WithAnalyzer(name string, a Analyzer) *Builder {
	for i := range b.components {
		if b.components[i].name == name {
			b.components[i].analyze = a
		}
	}
	return b
}

// Build runs every analyzer concurrently. Each writes only its own slot and
// the snapshot is read-only, so the result does not depend on scheduling.
func (b *Builder) Build(snapshot *contracts.MarketSnapshot) contracts.ComponentResults {
	slots := make([]contracts.ComponentResult, len(b.components))

	var g errgroup.Group
	for i, c := range b.components {
		i, c := i, c
		g.Go(func() error {
			slots[i] = b.run(c, snapshot)
			return nil
		})
	}
	_ = g.Wait()

	var out contracts.ComponentResults
	for i, c := range b.components {
		switch c.name {
		case contracts.ComponentEarnings:
			out.Earnings = slots[i]
		case contracts.ComponentFundamentals:
			out.Fundamentals = slots[i]
		case contracts.ComponentAnalysts:
			out.Analysts = slots[i]
		case contracts.ComponentHistorical:
			out.Historical = slots[i]
		}
	}
	return out
}

// run invokes one analyzer and folds an error or panic into its fallback
func (b *Builder) run(c component, snapshot *contracts.MarketSnapshot) (result contracts.ComponentResult) {
	log := b.logger.WithTicker(snapshot.Ticker).WithField("component", c.name)

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			}).Warn("Analyzer panicked, folding into fallback")
			b.metrics.RecordAnalyzerFault(c.name)
			result = c.fallback
		}
		b.metrics.RecordAnalyzerOutcome(c.name, result.Outcome())
	}()

	result, err := c.analyze(snapshot)
	if err != nil {
		log.WithError(err).Warn("Analyzer failed, folding into fallback")
		b.metrics.RecordAnalyzerFault(c.name)
		return c.fallback
	}

	fields := map[string]interface{}{"outcome": result.Outcome()}
	if result.Score != nil {
		fields["score"] = *result.Score
	}
	log.WithFields(fields).Debug("Analyzer completed")

	return result
}
