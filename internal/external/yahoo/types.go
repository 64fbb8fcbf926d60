package yahoo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is Yahoo's numeric wrapper: {"raw": 1.23, "fmt": "1.23"}.
// Missing data arrives as {} or null; some modules send a bare number.
type Value struct {
	Raw *float64
	Fmt string
}

// UnmarshalJSON accepts an object, a bare number or null
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] != '{' {
		var raw float64
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("yahoo value: %w", err)
		}
		v.Raw = &raw
		return nil
	}

	var obj struct {
		Raw *float64 `json:"raw"`
		Fmt string   `json:"fmt"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("yahoo value: %w", err)
	}
	v.Raw, v.Fmt = obj.Raw, obj.Fmt
	return nil
}

// Float returns the raw value, or nil when Yahoo had none
func (v Value) Float() *float64 {
	if v.Raw == nil {
		return nil
	}
	f := *v.Raw
	return &f
}

// QuoteSummary is the subset of /v10/finance/quoteSummary modules we request
type QuoteSummary struct {
	Price                *PriceModule          `json:"price"`
	SummaryDetail        *SummaryDetail        `json:"summaryDetail"`
	FinancialData        *FinancialData        `json:"financialData"`
	DefaultKeyStatistics *DefaultKeyStatistics `json:"defaultKeyStatistics"`
	EarningsHistory      *EarningsHistory      `json:"earningsHistory"`
}

type PriceModule struct {
	Symbol             string `json:"symbol"`
	LongName           string `json:"longName"`
	ShortName          string `json:"shortName"`
	Currency           string `json:"currency"`
	RegularMarketPrice Value  `json:"regularMarketPrice"`
}

type SummaryDetail struct {
	TrailingPE Value `json:"trailingPE"`
	ForwardPE  Value `json:"forwardPE"`
}

type FinancialData struct {
	CurrentPrice            Value  `json:"currentPrice"`
	TargetMeanPrice         Value  `json:"targetMeanPrice"`
	NumberOfAnalystOpinions Value  `json:"numberOfAnalystOpinions"`
	RecommendationKey       string `json:"recommendationKey"`
	OperatingMargins        Value  `json:"operatingMargins"`
	RevenueGrowth           Value  `json:"revenueGrowth"`
	DebtToEquity            Value  `json:"debtToEquity"`
}

type DefaultKeyStatistics struct {
	ForwardPE Value `json:"forwardPE"`
}

type EarningsHistory struct {
	History []EarningsEntry `json:"history"`
}

// EarningsEntry is one reported quarter; Quarter is epoch seconds
type EarningsEntry struct {
	Quarter     Value  `json:"quarter"`
	Period      string `json:"period"`
	EPSActual   Value  `json:"epsActual"`
	EPSEstimate Value  `json:"epsEstimate"`
}

type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []QuoteSummary `json:"result"`
		Error  *apiErrorBody  `json:"error"`
	} `json:"quoteSummary"`
}

// Chart is a daily OHLC series from /v8/finance/chart
type Chart struct {
	Timezone   string
	Timestamps []int64
	Open       []*float64
	Close      []*float64
}

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiErrorBody `json:"error"`
	} `json:"chart"`
}

type apiErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
