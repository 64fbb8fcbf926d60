package signals

import (
	"errors"
	"fmt"
	"time"

	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
)

// historicalQuarters is how many recent earnings dates are inspected
const historicalQuarters = 4

// AnalyzeHistoricalPattern scores the beat rate over the last four reported
// quarters and, where an announcement day has a matching daily bar, the
// average same-day move.
func AnalyzeHistoricalPattern(snapshot *contracts.MarketSnapshot) (contracts.ComponentResult, error) {
	if len(snapshot.EarningsHistory) == 0 || len(snapshot.PriceHistory) == 0 {
		return contracts.Absent(), nil
	}

	bars := indexBars(snapshot.PriceHistory)

	var (
		beats      int
		considered int
		reactions  []float64
	)
	for _, record := range recentEarnings(snapshot.EarningsHistory, historicalQuarters) {
		if !record.Complete() {
			continue
		}
		actual, expected := *record.ReportedEPS, *record.EstimatedEPS
		if err := finite(actual, expected); err != nil {
			return contracts.Absent(), fmt.Errorf("earnings %s: %w", record.Date.Format("2006-01-02"), err)
		}

		considered++
		if actual > expected {
			beats++
		}

		// a period-end date has no reaction; a bad or missing bar only
		// drops this date's reaction
		if !record.Announced {
			continue
		}
		if move, err := reaction(bars, record.Date); err == nil {
			reactions = append(reactions, move)
		}
	}

	if considered == 0 {
		return contracts.Absent(), nil
	}

	beatRate := float64(beats) / float64(considered)

	desc := fmt.Sprintf("%d/%d quarters beat expectations", beats, considered)

	var avgReaction interface{}
	if len(reactions) > 0 {
		sum := 0.0
		for _, r := range reactions {
			sum += r
		}
		avg := sum / float64(len(reactions))
		avgReaction = avg
		desc += fmt.Sprintf(", avg reaction %+.1f%%", avg)
	}

	return contracts.Present(beatRateScore(beatRate), desc, map[string]interface{}{
		"beats_last_4q":       beats,
		"quarters_considered": considered,
		"avg_reaction_pct":    avgReaction,
	}), nil
}

func beatRateScore(rate float64) float64 {
	switch {
	case rate == 1.0:
		return 0.8
	case rate >= 0.75:
		return 0.5
	case rate >= 0.5:
		return 0.0
	case rate >= 0.25:
		return -0.5
	default:
		return -0.8
	}
}

var (
	errNoBar    = errors.New("no trading day for date")
	errZeroOpen = errors.New("zero open price")
)

type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{y, m, d}
}

// indexBars keys bars by calendar date; the first bar of a day wins
func indexBars(history []contracts.PriceBar) map[day]contracts.PriceBar {
	idx := make(map[day]contracts.PriceBar, len(history))
	for _, bar := range history {
		k := dayOf(bar.Date)
		if _, seen := idx[k]; !seen {
			idx[k] = bar
		}
	}
	return idx
}

// reaction is the same-day open→close move in percent
func reaction(bars map[day]contracts.PriceBar, date time.Time) (float64, error) {
	bar, ok := bars[dayOf(date)]
	if !ok {
		return 0, errNoBar
	}
	if bar.Open == 0 {
		return 0, errZeroOpen
	}
	if err := finite(bar.Open, bar.Close); err != nil {
		return 0, err
	}
	return (bar.Close - bar.Open) / bar.Open * 100, nil
}
