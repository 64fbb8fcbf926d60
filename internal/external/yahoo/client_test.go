package yahoo

import (
	"context"
	"fmt"
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

const testCrumb = "Xk2.fbq9sQ1"

// newTestClient serves the session handshake itself and hands every
// other request to handler
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/session", setSessionCookie)
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testCrumb))
	})
	mux.Handle("/", handler)
	return clientFor(t, mux)
}

func clientFor(t *testing.T, h http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	cfg := &config.Config{Provider: config.ProviderConfig{Timeout: 2 * time.Second, MaxRetries: 1, RateLimit: 100}}
	hc := httputil.New(cfg, logger.Nop()).WithRetry(1, time.Millisecond)
	return NewClient(hc, logger.Nop(), server.URL,
		WithSessionURL(server.URL+"/session"),
		WithCalendarURL(server.URL+"/calendar/earnings"))
}

// setSessionCookie mimics the session host: a 404 that still sets A3
func setSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "A3", Value: "d=AQABBK", Path: "/"})
	http.NotFound(w, r)
}

func serveFile(t *testing.T, path string) http.HandlerFunc {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}

func TestQuoteSummary(t *testing.T) {
	var gotPath, gotModules, gotCrumb string
	fixture := serveFile(t, "testdata/quote_summary_aapl.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotModules = r.URL.Query().Get("modules")
		gotCrumb = r.URL.Query().Get("crumb")
		fixture(w, r)
	})

	summary, err := client.QuoteSummary(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "/v10/finance/quoteSummary/AAPL", gotPath)
	assert.Equal(t, "price,summaryDetail,financialData,defaultKeyStatistics,earningsHistory", gotModules)
	assert.Equal(t, testCrumb, gotCrumb)

	require.NotNil(t, summary.Price)
	assert.Equal(t, "Apple Inc.", summary.Price.LongName)
	assert.Equal(t, 100.0, *summary.Price.RegularMarketPrice.Float())
	assert.Equal(t, "buy", summary.FinancialData.RecommendationKey)
	assert.Equal(t, 38.0, *summary.FinancialData.NumberOfAnalystOpinions.Float())
	require.Len(t, summary.EarningsHistory.History, 4)
	assert.Equal(t, 12.0, *summary.EarningsHistory.History[3].EPSActual.Float())
	assert.Equal(t, "2024-12-31", summary.EarningsHistory.History[3].Quarter.Fmt, "quarter is the fiscal period end")
}

func TestQuoteSummary_RenewsCrumbAfterUnauthorized(t *testing.T) {
	var sessions, crumbs, summaries int
	fixture := serveFile(t, "testdata/quote_summary_aapl.json")

	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		sessions++
		setSessionCookie(w, r)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("A3"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		crumbs++
		_, _ = fmt.Fprintf(w, "crumb-%d", crumbs)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		summaries++
		if r.URL.Query().Get("crumb") != "crumb-2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"finance":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))
			return
		}
		fixture(w, r)
	})
	client := clientFor(t, mux)

	summary, err := client.QuoteSummary(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", summary.Price.LongName)
	assert.Equal(t, 2, sessions)
	assert.Equal(t, 2, crumbs)
	assert.Equal(t, 2, summaries)

	_, err = client.QuoteSummary(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, crumbs, "a working crumb is reused")
}

func TestQuoteSummary_PersistentUnauthorized(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.QuoteSummary(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, httputil.IsUnauthorized(err))
	assert.Equal(t, 2, attempts, "one renewal, then give up")
}

func TestQuoteSummary_NoCrumb(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/session", setSessionCookie)
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>consent required</html>"))
	})
	client := clientFor(t, mux)

	_, err := client.QuoteSummary(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoCrumb)
}

func TestQuoteSummary_NotFoundEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: ZZZZ"}}}`))
	})

	_, err := client.QuoteSummary(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteSummary_PlainNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.QuoteSummary(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteSummary_OtherAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))
	})

	_, err := client.QuoteSummary(context.Background(), "AAPL")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Unauthorized", apiErr.Code)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestQuoteSummary_ServerErrorIsRetriedThenFails(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.QuoteSummary(context.Background(), "AAPL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, attempts)
}

func TestChart(t *testing.T) {
	var gotQuery string
	fixture := serveFile(t, "testdata/chart_aapl.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fixture(w, r)
	})

	chart, err := client.Chart(context.Background(), "AAPL", "1y", "1d")
	require.NoError(t, err)

	assert.Equal(t, "crumb="+testCrumb+"&interval=1d&range=1y", gotQuery)
	assert.Equal(t, "America/New_York", chart.Timezone)
	assert.Len(t, chart.Timestamps, 7)
	assert.Nil(t, chart.Open[6])
	assert.Equal(t, 101.0, *chart.Close[6])
}

func TestEarningsDates(t *testing.T) {
	var gotPath, gotSymbol string
	page, err := os.ReadFile("testdata/earnings_calendar_aapl.html")
	require.NoError(t, err)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSymbol = r.URL.Query().Get("symbol")
		_, _ = w.Write(page)
	})

	dates, err := client.EarningsDates(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "/calendar/earnings", gotPath)
	assert.Equal(t, "AAPL", gotSymbol)
	require.Len(t, dates, 5)

	// newest first; the upcoming row has no reported EPS yet
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), dates[0].Date)
	assert.Nil(t, dates[0].ReportedEPS)
	assert.Equal(t, 1.62, *dates[0].EPSEstimate)

	assert.Equal(t, time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC), dates[1].Date)
	assert.Equal(t, 12.0, *dates[1].ReportedEPS)
	assert.Equal(t, 10.0, *dates[1].EPSEstimate)

	assert.Equal(t, time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC), dates[2].Date)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), dates[4].Date)
}

func TestParseEarningsCalendar_NoTable(t *testing.T) {
	dates, err := ParseEarningsCalendar(strings.NewReader("<html><body>We couldn't find any results.</body></html>"))
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"object", `{"raw": 1.5, "fmt": "1.50"}`, floatPtr(1.5)},
		{"empty object", `{}`, nil},
		{"null", `null`, nil},
		{"bare number", `42`, floatPtr(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, v.UnmarshalJSON([]byte(tt.in)))
			assert.Equal(t, tt.want, v.Float())
		})
	}
}

func floatPtr(v float64) *float64 { return &v }
