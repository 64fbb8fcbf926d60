package finviz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzobot/skills/stock-analysis/pkg/config"
	"github.com/hanzobot/skills/stock-analysis/pkg/httputil"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Provider: config.ProviderConfig{Timeout: 2 * time.Second, RateLimit: 100}}
	return NewClient(httputil.New(cfg, logger.Nop()), logger.Nop(), server.URL)
}

func TestParseQuote(t *testing.T) {
	f, err := os.Open("testdata/quote_msft.html")
	require.NoError(t, err)
	defer f.Close()

	quote, err := ParseQuote(f)
	require.NoError(t, err)

	assert.Equal(t, "Microsoft Corporation", quote.CompanyName)
	assert.Equal(t, "35.12", quote.Fields[LabelPE])
	assert.Equal(t, "-", quote.Fields["Dividend"])

	pe, ok := quote.Float(LabelPE)
	require.True(t, ok)
	assert.Equal(t, 35.12, pe)

	margin, ok := quote.Percent(LabelOperMargin)
	require.True(t, ok)
	assert.InDelta(t, 0.4464, margin, 1e-12)

	growth, ok := quote.Percent(LabelSalesGrowth)
	require.True(t, ok)
	assert.InDelta(t, 0.1567, growth, 1e-12)

	volume, ok := quote.Float("Volume")
	require.True(t, ok)
	assert.Equal(t, 18276513.0, volume)

	_, ok = quote.Float("Dividend")
	assert.False(t, ok)
	_, ok = quote.Float("Missing Label")
	assert.False(t, ok)
}

func TestParseQuote_NoSnapshotTable(t *testing.T) {
	_, err := ParseQuote(strings.NewReader("<html><body>Ticker not found</body></html>"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientQuote(t *testing.T) {
	page, err := os.ReadFile("testdata/quote_msft.html")
	require.NoError(t, err)

	var gotTicker string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote.ashx", r.URL.Path)
		gotTicker = r.URL.Query().Get("t")
		_, _ = w.Write(page)
	})

	quote, err := client.Quote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", gotTicker)
	assert.Equal(t, "MSFT", quote.Ticker)

	recom, ok := quote.Float(LabelRecom)
	require.True(t, ok)
	assert.Equal(t, "strong_buy", RecommendationKey(recom))
}

func TestClientQuote_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Quote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendationKey(t *testing.T) {
	tests := []struct {
		mean float64
		want string
	}{
		{1.0, "strong_buy"},
		{1.5, "strong_buy"},
		{1.51, "buy"},
		{2.5, "buy"},
		{3.0, "hold"},
		{4.5, "sell"},
		{4.6, "strong_sell"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendationKey(tt.mean), "mean %v", tt.mean)
	}
}
