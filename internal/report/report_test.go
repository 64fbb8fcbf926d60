package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

func sampleSignal(ticker string) *contracts.Signal {
	return &contracts.Signal{
		Ticker:           ticker,
		CompanyName:      "Apple Inc.",
		Recommendation:   contracts.RecommendationBuy,
		Confidence:       0.8325,
		FinalScore:       0.8325,
		SupportingPoints: []string{"Beat by 20.0% - EPS $12.00 vs $10.00 expected", "Analyst consensus: Buy with 25.0% upside (38 analysts)"},
		Caveats:          []string{"Market conditions can change rapidly"},
		Timestamp:        time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
		Components: map[string]map[string]interface{}{
			"earnings_surprise": {"score": 1.0},
		},
	}
}

func TestText(t *testing.T) {
	out := Text(sampleSignal("AAPL"))
	lines := strings.Split(out, "\n")

	assert.Equal(t, strings.Repeat("=", 77), lines[0])
	assert.Equal(t, "STOCK ANALYSIS: AAPL (Apple Inc.)", lines[1])
	assert.Equal(t, "Generated: 2025-02-01T12:00:00Z", lines[2])
	assert.Equal(t, "RECOMMENDATION: BUY (Confidence: 83%)", lines[5])
	assert.Equal(t, "SUPPORTING POINTS:", lines[7])
	assert.Equal(t, "• Beat by 20.0% - EPS $12.00 vs $10.00 expected", lines[8])
	assert.Contains(t, out, "CAVEATS:\n• Market conditions can change rapidly\n")
	assert.Contains(t, out, "Data provided by Yahoo Finance.")
	assert.Equal(t, strings.Repeat("=", 77), lines[len(lines)-1])
}

func TestWriteText_SeparatesSignals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleSignal("AAPL"), sampleSignal("MSFT")))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "STOCK ANALYSIS:"))
	assert.Contains(t, out, strings.Repeat("=", 77)+"\n\n\n"+strings.Repeat("=", 77))
}

func TestJSON_Single(t *testing.T) {
	data, err := JSON(sampleSignal("AAPL"))
	require.NoError(t, err)

	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.Equal(t, Disclaimer, obj["disclaimer"])
	assert.Equal(t, "AAPL", obj["ticker"])
	assert.Equal(t, "BUY", obj["recommendation"])
	assert.Contains(t, obj, "supporting_points")
	assert.Contains(t, obj, "components")
	assert.True(t, strings.HasPrefix(string(data), "{\n  \""), "indented two spaces")
}

func TestJSON_Many(t *testing.T) {
	data, err := JSON(sampleSignal("AAPL"), sampleSignal("MSFT"))
	require.NoError(t, err)

	var arr []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &arr))
	require.Len(t, arr, 2)
	assert.Equal(t, "MSFT", arr[1]["ticker"])
	assert.NotContains(t, arr[0], "disclaimer")
}

func TestJSON_Empty(t *testing.T) {
	data, err := JSON()
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
