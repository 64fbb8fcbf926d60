package finviz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hanzobot/skills/stock-analysis/pkg/httputil"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
)

// DefaultBaseURL is the Finviz site root
const DefaultBaseURL = "https://finviz.com"

// ErrNotFound is returned when the quote page has no snapshot table
var ErrNotFound = errors.New("finviz: symbol not found")

// Snapshot table labels read by the engine
const (
	LabelPE          = "P/E"
	LabelForwardPE   = "Forward P/E"
	LabelOperMargin  = "Oper. M"
	LabelSalesGrowth = "Sales Y/Y TTM"
	LabelDebtEquity  = "Debt/Eq"
	LabelTarget      = "Target Price"
	LabelRecom       = "Recom"
	LabelPrice       = "Price"
)

// Client scrapes Finviz quote pages
// ⭐ SSOT: Finviz HTML parsing happens in this package only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Finviz client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Quote is the label → text content of a quote page's snapshot table
type Quote struct {
	Ticker      string
	CompanyName string
	Fields      map[string]string
}

// Quote fetches and parses the quote page for ticker
func (c *Client) Quote(ctx context.Context, ticker string) (*Quote, error) {
	params := url.Values{}
	params.Set("t", ticker)
	fullURL := fmt.Sprintf("%s/quote.ashx?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		if httputil.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, fmt.Errorf("finviz request failed: %w", err)
	}

	quote, err := ParseQuote(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	quote.Ticker = ticker

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"fields": len(quote.Fields),
	}).Debug("Fetched Finviz quote")

	return quote, nil
}

// ParseQuote reads the snapshot table; cells alternate label, value
func ParseQuote(r io.Reader) (*Quote, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table.snapshot-table2")
	if table.Length() == 0 {
		return nil, ErrNotFound
	}

	quote := &Quote{Fields: make(map[string]string)}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			label := strings.TrimSpace(cells.Eq(i).Text())
			value := strings.TrimSpace(cells.Eq(i + 1).Text())
			if label != "" {
				quote.Fields[label] = value
			}
		}
	})

	for _, sel := range []string{".quote-header_ticker-wrapper_company", "table.fullview-title b"} {
		if name := strings.TrimSpace(doc.Find(sel).First().Text()); name != "" {
			quote.CompanyName = name
			break
		}
	}

	return quote, nil
}

// Float parses a plain numeric cell. "-" and empty cells are absent.
func (q *Quote) Float(label string) (float64, bool) {
	return parseNumber(q.Fields[label])
}

// Percent parses "25.30%" as the fraction 0.253
func (q *Quote) Percent(label string) (float64, bool) {
	v, ok := parseNumber(strings.TrimSuffix(strings.TrimSpace(q.Fields[label]), "%"))
	if !ok {
		return 0, false
	}
	return v / 100, true
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" || raw == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RecommendationKey maps the 1 (strong buy) .. 5 (strong sell) mean
// recommendation onto the rating vocabulary used by the analyzers
func RecommendationKey(mean float64) string {
	switch {
	case mean <= 1.5:
		return "strong_buy"
	case mean <= 2.5:
		return "buy"
	case mean <= 3.5:
		return "hold"
	case mean <= 4.5:
		return "sell"
	default:
		return "strong_sell"
	}
}
