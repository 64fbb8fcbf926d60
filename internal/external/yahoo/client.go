package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/hanzobot/skills/stock-analysis/pkg/httputil"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
)

// Yahoo hosts. The session host only hands out the cookie the crumb is tied to.
const (
	DefaultBaseURL     = "https://query2.finance.yahoo.com"
	DefaultSessionURL  = "https://fc.yahoo.com"
	DefaultCalendarURL = "https://finance.yahoo.com/calendar/earnings"
)

// SummaryModules are the quoteSummary modules the engine reads
var SummaryModules = []string{
	"price",
	"summaryDetail",
	"financialData",
	"defaultKeyStatistics",
	"earningsHistory",
}

// ErrNotFound is returned when Yahoo does not know the symbol
var ErrNotFound = errors.New("yahoo: symbol not found")

// ErrNoCrumb is returned when the crumb endpoint yields nothing usable
var ErrNoCrumb = errors.New("yahoo: no crumb issued")

// APIError is an error object returned inside a Yahoo envelope
type APIError struct {
	Endpoint    string
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo %s: %s: %s", e.Endpoint, e.Code, e.Description)
}

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance calls happen in this client only
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	baseURL     string
	sessionURL  string
	calendarURL string

	mu    sync.Mutex
	crumb string
}

// Option customizes a Client
type Option func(*Client)

// WithSessionURL overrides the host that sets the session cookie
func WithSessionURL(u string) Option {
	return func(c *Client) { c.sessionURL = u }
}

// WithCalendarURL overrides the earnings calendar page
func WithCalendarURL(u string) Option {
	return func(c *Client) { c.calendarURL = u }
}

// NewClient creates a new Yahoo Finance client
func NewClient(hc *httputil.Client, log *logger.Logger, baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient:  hc,
		logger:      log,
		baseURL:     strings.TrimRight(baseURL, "/"),
		sessionURL:  DefaultSessionURL,
		calendarURL: DefaultCalendarURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QuoteSummary fetches fundamentals, analyst data and earnings history
func (c *Client) QuoteSummary(ctx context.Context, ticker string) (*QuoteSummary, error) {
	params := url.Values{}
	params.Set("modules", strings.Join(SummaryModules, ","))
	endpoint := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))

	var env quoteSummaryEnvelope
	if err := c.getJSON(ctx, endpoint, params, &env); err != nil {
		return nil, err
	}

	if e := env.QuoteSummary.Error; e != nil {
		return nil, classify(endpoint, e)
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s %s: %w", endpoint, ticker, ErrNotFound)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"earnings": earningsCount(&env.QuoteSummary.Result[0]),
	}).Debug("Fetched Yahoo quote summary")

	return &env.QuoteSummary.Result[0], nil
}

// Chart fetches a price series; rangeParam like "1y", interval like "1d"
func (c *Client) Chart(ctx context.Context, ticker, rangeParam, interval string) (*Chart, error) {
	params := url.Values{}
	params.Set("range", rangeParam)
	params.Set("interval", interval)
	endpoint := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(ticker))

	var env chartEnvelope
	if err := c.getJSON(ctx, endpoint, params, &env); err != nil {
		return nil, err
	}

	if e := env.Chart.Error; e != nil {
		return nil, classify(endpoint, e)
	}
	if len(env.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s %s: %w", endpoint, ticker, ErrNotFound)
	}

	r := env.Chart.Result[0]
	chart := &Chart{
		Timezone:   r.Meta.ExchangeTimezoneName,
		Timestamps: r.Timestamp,
	}
	if len(r.Indicators.Quote) > 0 {
		chart.Open = r.Indicators.Quote[0].Open
		chart.Close = r.Indicators.Quote[0].Close
	}

	return chart, nil
}

// getJSON issues the request and decodes the envelope. Yahoo sends its
// error envelope with a 404 status, so that body is decoded too.
// A 401 means the crumb went stale; it is renewed once and the call repeated.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, dest interface{}) error {
	crumb, err := c.sessionCrumb(ctx, "")
	if err != nil {
		return err
	}

	body, err := c.get(ctx, endpoint, params, crumb)
	if httputil.IsUnauthorized(err) {
		c.logger.WithField("endpoint", endpoint).Debug("Yahoo rejected crumb, renewing")
		if crumb, err = c.sessionCrumb(ctx, crumb); err != nil {
			return err
		}
		body, err = c.get(ctx, endpoint, params, crumb)
	}
	if err != nil {
		if httputil.IsNotFound(err) {
			if jerr := json.Unmarshal(body, dest); jerr == nil {
				if apiErr := envelopeError(dest); apiErr != nil {
					return classify(endpoint, apiErr)
				}
			}
			return fmt.Errorf("%s: %w", endpoint, ErrNotFound)
		}
		return fmt.Errorf("yahoo request failed: %w", err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("yahoo %s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, crumb string) ([]byte, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("crumb", crumb)
	return c.httpClient.GetBody(ctx, fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, q.Encode()))
}

// sessionCrumb returns the cached crumb, performing the cookie and crumb
// handshake when there is none yet or the cached one equals stale.
func (c *Client) sessionCrumb(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" && c.crumb != stale {
		return c.crumb, nil
	}

	// the session host answers 404 but still sets the cookie
	resp, err := c.httpClient.Get(ctx, c.sessionURL)
	if err != nil {
		return "", fmt.Errorf("yahoo session cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	body, err := c.httpClient.GetBody(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", ErrNoCrumb
	}

	c.crumb = crumb
	c.logger.Debug("Obtained Yahoo crumb")
	return crumb, nil
}

func envelopeError(dest interface{}) *apiErrorBody {
	switch env := dest.(type) {
	case *quoteSummaryEnvelope:
		return env.QuoteSummary.Error
	case *chartEnvelope:
		return env.Chart.Error
	}
	return nil
}

// classify maps Yahoo's "Not Found" code onto ErrNotFound
func classify(endpoint string, e *apiErrorBody) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%s: %s: %w", endpoint, e.Description, ErrNotFound)
	}
	return &APIError{Endpoint: endpoint, Code: e.Code, Description: e.Description}
}

func earningsCount(s *QuoteSummary) int {
	if s.EarningsHistory == nil {
		return 0
	}
	return len(s.EarningsHistory.History)
}
