package signals

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
	"github.com/hanzobot/skills/stock-analysis/pkg/metrics"
)

func TestBuilder_FullSnapshot(t *testing.T) {
	results := NewBuilder(logger.Nop(), nil).Build(fullSnapshot())

	assert.Equal(t, 4, results.Counted())
	assert.Equal(t, 1.0, *results.Earnings.Score)
	assert.InDelta(t, 0.45, *results.Fundamentals.Score, 1e-9)
	assert.Equal(t, 1.0, *results.Analysts.Score)
	assert.Equal(t, 0.8, *results.Historical.Score)
}

func TestBuilder_PanicFoldsIntoAbsent(t *testing.T) {
	rec := metrics.New()
	b := NewBuilder(logger.Nop(), rec).WithAnalyzer(contracts.ComponentFundamentals,
		func(*contracts.MarketSnapshot) (contracts.ComponentResult, error) {
			var m map[string]float64
			m["boom"] = 1
			return contracts.Absent(), nil
		})

	results := b.Build(fullSnapshot())

	assert.False(t, results.Fundamentals.IsPresent())
	assert.Equal(t, 3, results.Counted())

	expected := `
# HELP stockanalysis_analyzer_faults_total Analyzer invocations that failed or panicked and were folded into absent
# TYPE stockanalysis_analyzer_faults_total counter
stockanalysis_analyzer_faults_total{component="fundamentals"} 1
`
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "stockanalysis_analyzer_faults_total"))
}

func TestBuilder_AnalystErrorFoldsIntoNoOpinion(t *testing.T) {
	b := NewBuilder(logger.Nop(), metrics.New()).WithAnalyzer(contracts.ComponentAnalysts,
		func(*contracts.MarketSnapshot) (contracts.ComponentResult, error) {
			return contracts.Present(1, "bogus", nil), errors.New("malformed coverage")
		})

	results := b.Build(fullSnapshot())

	assert.True(t, results.Analysts.IsPresent())
	assert.False(t, results.Analysts.Counts())
	assert.Equal(t, AnalystFaultReason, results.Analysts.Explanation)
}

func TestBuilder_EndToEndIsDeterministic(t *testing.T) {
	b := NewBuilder(logger.Nop(), nil)
	synth := NewSynthesizer(nil).WithClock(func() time.Time { return fixedNow })

	snap := fullSnapshot()
	first := synth.Synthesize(snap.Ticker, snap.CompanyName(), b.Build(snap))
	second := synth.Synthesize(snap.Ticker, snap.CompanyName(), b.Build(snap))

	assert.Equal(t, first, second)
	assert.Equal(t, contracts.RecommendationBuy, first.Recommendation)
	assert.Equal(t, "Apple Inc.", first.CompanyName)
	assert.Equal(t, "Beat by 20.0% - EPS $12.00 vs $10.00 expected", first.SupportingPoints[0])
}

func TestBuilder_SparseSnapshotDegrades(t *testing.T) {
	snap := &contracts.MarketSnapshot{
		Ticker:       "TINY",
		Fundamentals: contracts.Fundamentals{TrailingPE: f64(40)},
	}

	results := NewBuilder(logger.Nop(), nil).Build(snap)
	signal := NewSynthesizer(nil).Synthesize(snap.Ticker, snap.CompanyName(), results)

	assert.Equal(t, 1, results.Counted())
	assert.Equal(t, contracts.RecommendationHold, signal.Recommendation)
	assert.Equal(t, []string{InsufficientDataPoint}, signal.SupportingPoints)
}
