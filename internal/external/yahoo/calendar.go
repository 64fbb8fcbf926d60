package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// calendarSize matches the dozen rows a quarterly history needs
const calendarSize = 12

// EarningsDate is one row of the earnings calendar. Date is the
// announcement day on the exchange calendar, at midnight UTC.
type EarningsDate struct {
	Date        time.Time
	EPSEstimate *float64
	ReportedEPS *float64
}

// EarningsDates scrapes the earnings calendar for announcement days,
// newest first. Upcoming announcements carry no reported EPS.
func (c *Client) EarningsDates(ctx context.Context, ticker string) ([]EarningsDate, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("offset", "0")
	params.Set("size", strconv.Itoa(calendarSize))
	fullURL := fmt.Sprintf("%s?%s", c.calendarURL, params.Encode())

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("yahoo earnings calendar: %w", err)
	}

	dates, err := ParseEarningsCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"dates":  len(dates),
	}).Debug("Fetched Yahoo earnings calendar")

	return dates, nil
}

var calendarDate = regexp.MustCompile(`[A-Z][a-z]{2} \d{1,2}, \d{4}`)

// ParseEarningsCalendar reads the calendar table by header name, so
// column order and extra columns do not matter
func ParseEarningsCalendar(r io.Reader) ([]EarningsDate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	cols := map[string]int{}
	doc.Find("table thead th").Each(func(i int, th *goquery.Selection) {
		cols[strings.ToLower(strings.TrimSpace(th.Text()))] = i
	})
	dateCol, ok := column(cols, "earnings date", "event start date")
	if !ok {
		return nil, nil
	}
	estCol, hasEst := column(cols, "eps estimate")
	repCol, hasRep := column(cols, "reported eps")

	var out []EarningsDate
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		day, err := time.Parse("Jan 2, 2006", calendarDate.FindString(cells.Eq(dateCol).Text()))
		if err != nil {
			return
		}
		d := EarningsDate{Date: day}
		if hasEst {
			d.EPSEstimate = cellNumber(cells.Eq(estCol).Text())
		}
		if hasRep {
			d.ReportedEPS = cellNumber(cells.Eq(repCol).Text())
		}
		out = append(out, d)
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func column(cols map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func cellNumber(raw string) *float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
