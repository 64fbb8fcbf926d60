package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hanzobot/skills/stock-analysis/internal/analysis"
	"github.com/hanzobot/skills/stock-analysis/internal/contracts"
	"github.com/hanzobot/skills/stock-analysis/internal/report"
	"github.com/hanzobot/skills/stock-analysis/pkg/logger"
)

// maxBatch caps tickers per batch request
const maxBatch = 20

// Analyzer is the part of analysis.Service the handlers need
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*contracts.Signal, error)
	AnalyzeAll(ctx context.Context, tickers []string) []analysis.Result
}

// SignalHandler serves signals over HTTP
// ⭐ SSOT: signal API handlers live in this struct only
type SignalHandler struct {
	analyzer Analyzer
	logger   *logger.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(analyzer Analyzer, log *logger.Logger) *SignalHandler {
	return &SignalHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// GetSignal analyzes one ticker
// GET /api/signals/{ticker}
func (h *SignalHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	ticker := analysis.NormalizeTicker(mux.Vars(r)["ticker"])
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	signal, err := h.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		status, msg := h.classify(ticker, err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, report.Single(signal))
}

// BatchItem is one entry of a batch response
type BatchItem struct {
	Ticker string            `json:"ticker"`
	Signal *contracts.Signal `json:"signal,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// BatchResponse wraps a batch with the disclaimer
type BatchResponse struct {
	Results    []BatchItem `json:"results"`
	Disclaimer string      `json:"disclaimer"`
}

// GetSignals analyzes a comma separated list of tickers
// GET /api/signals?tickers=AAPL,MSFT
func (h *SignalHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	var tickers []string
	for _, t := range strings.Split(r.URL.Query().Get("tickers"), ",") {
		if t = analysis.NormalizeTicker(t); t != "" {
			tickers = append(tickers, t)
		}
	}

	if len(tickers) == 0 {
		respondError(w, http.StatusBadRequest, "tickers query parameter is required")
		return
	}
	if len(tickers) > maxBatch {
		respondError(w, http.StatusBadRequest, "too many tickers")
		return
	}

	results := h.analyzer.AnalyzeAll(r.Context(), tickers)
	resp := BatchResponse{
		Results:    make([]BatchItem, len(results)),
		Disclaimer: report.Disclaimer,
	}
	for i, res := range results {
		resp.Results[i] = BatchItem{Ticker: res.Ticker, Signal: res.Signal}
		if res.Err != nil {
			_, resp.Results[i].Error = h.classify(res.Ticker, res.Err)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// classify maps an analysis error onto a status and a client-safe message
func (h *SignalHandler) classify(ticker string, err error) (int, string) {
	if errors.Is(err, contracts.ErrTickerNotFound) {
		return http.StatusNotFound, "ticker not found: " + ticker
	}

	h.logger.WithTicker(ticker).WithError(err).Error("Failed to analyze ticker")
	return http.StatusBadGateway, "market data unavailable"
}
