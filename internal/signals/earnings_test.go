package signals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

func TestAnalyzeEarningsSurprise_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		actual    float64
		expected  float64
		wantScore float64
		wantText  string
	}{
		{"big beat", 12, 10, 1.0, "Beat by 20.0%"},
		{"beat above five", 10.6, 10, 0.7, "Beat by 6.0%"},
		{"small beat", 10.1, 10, 0.3, "Beat by 1.0%"},
		{"in line counts as miss", 10, 10, -0.3, "Missed by 0.0%"},
		{"small miss", 9.8, 10, -0.3, "Missed by 2.0%"},
		{"miss above minus ten", 9.2, 10, -0.7, "Missed by 8.0%"},
		{"exactly minus ten is not above minus ten", 9, 10, -1.0, "Missed by 10.0%"},
		{"big miss", 5, 10, -1.0, "Missed by 50.0%"},
		{"negative estimate uses absolute value", -0.5, -1, 1.0, "Beat by 50.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &contracts.MarketSnapshot{
				EarningsHistory: []contracts.EarningsRecord{quarter(date(2025, 1, 30), tt.actual, tt.expected)},
			}

			result, err := AnalyzeEarningsSurprise(snap)
			require.NoError(t, err)
			require.True(t, result.Counts())

			assert.Equal(t, tt.wantScore, *result.Score)
			assert.Equal(t, tt.wantText, result.Explanation)
			assert.Equal(t, tt.actual, result.Metrics["actual_eps"])
			assert.Equal(t, tt.expected, result.Metrics["expected_eps"])
			assert.Equal(t, tt.wantText, result.Metrics["explanation"])
		})
	}
}

func TestAnalyzeEarningsSurprise_ExactBoundary(t *testing.T) {
	result, err := AnalyzeEarningsSurprise(&contracts.MarketSnapshot{
		EarningsHistory: []contracts.EarningsRecord{quarter(date(2025, 1, 30), 9, 10)},
	})
	require.NoError(t, err)

	assert.InDelta(t, -10.0, result.Metrics["surprise_pct"], 1e-9)
	assert.Equal(t, -1.0, *result.Score)
}

func TestAnalyzeEarningsSurprise_Absent(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		result, err := AnalyzeEarningsSurprise(&contracts.MarketSnapshot{})
		require.NoError(t, err)
		assert.False(t, result.IsPresent())
	})

	t.Run("no complete record", func(t *testing.T) {
		result, err := AnalyzeEarningsSurprise(&contracts.MarketSnapshot{
			EarningsHistory: []contracts.EarningsRecord{
				{Date: date(2025, 1, 30), ReportedEPS: f64(1.2)},
				{Date: date(2024, 10, 30), EstimatedEPS: f64(1.1)},
				quarter(date(2024, 7, 30), 1.0, 0),
			},
		})
		require.NoError(t, err)
		assert.False(t, result.IsPresent())
	})

	t.Run("qualifying record beyond the ten most recent", func(t *testing.T) {
		var history []contracts.EarningsRecord
		start := date(2025, 1, 30)
		for i := 0; i < 10; i++ {
			history = append(history, contracts.EarningsRecord{Date: start.AddDate(0, -3*i, 0)})
		}
		history = append(history, quarter(start.AddDate(0, -30, 0), 2, 1))

		result, err := AnalyzeEarningsSurprise(&contracts.MarketSnapshot{EarningsHistory: history})
		require.NoError(t, err)
		assert.False(t, result.IsPresent())
	})
}

func TestAnalyzeEarningsSurprise_SkipsAheadToOlderQuarter(t *testing.T) {
	snap := &contracts.MarketSnapshot{
		EarningsHistory: []contracts.EarningsRecord{
			quarter(date(2024, 7, 30), 1.0, 2.0),
			quarter(date(2024, 10, 30), 1.1, 1.0),
			// newest quarter is not reported yet
			{Date: date(2025, 1, 30), EstimatedEPS: f64(1.3)},
		},
	}

	result, err := AnalyzeEarningsSurprise(snap)
	require.NoError(t, err)
	require.True(t, result.Counts())
	assert.Equal(t, 1.1, result.Metrics["actual_eps"])
	assert.Equal(t, 0.3, *result.Score)
}

func TestAnalyzeEarningsSurprise_DoesNotReorderSnapshot(t *testing.T) {
	history := []contracts.EarningsRecord{
		quarter(date(2024, 7, 30), 1, 1),
		quarter(date(2025, 1, 30), 1, 1),
	}
	snap := &contracts.MarketSnapshot{EarningsHistory: history}

	_, err := AnalyzeEarningsSurprise(snap)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 7, 30), snap.EarningsHistory[0].Date)
}

func TestAnalyzeEarningsSurprise_NonFiniteIsFault(t *testing.T) {
	_, err := AnalyzeEarningsSurprise(&contracts.MarketSnapshot{
		EarningsHistory: []contracts.EarningsRecord{
			{Date: time.Now(), ReportedEPS: f64(math.NaN()), EstimatedEPS: f64(1)},
		},
	})
	assert.Error(t, err)
}
