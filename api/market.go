package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/seenimoa/derivx/internal/analysis/volatility"
	"github.com/seenimoa/derivx/pkg/models"
	"github.com/seenimoa/derivx/pkg/utils"
)

// defaultOHLCVLimit is the number of candles /api/ohlcv returns by default.
const defaultOHLCVLimit = 100

const errDegenerateSeries = "Series contains non-positive prices: "

// VolatilityResponse is returned by GET /api/volatility/{symbol}.
type VolatilityResponse struct {
	Symbol            string  `json:"symbol"`
	Volatility        float64 `json:"volatility"`        // fraction
	VolatilityPercent float64 `json:"volatilityPercent"` // percent
	Period            int     `json:"period"`
	Method            string  `json:"method"`
	DataPoints        int     `json:"dataPoints"`
}

// PriceResponse is returned by GET /api/price/{symbol}.
type PriceResponse struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	LastUpdate string  `json:"lastUpdate"`
}

// OHLCVResponse is returned by GET /api/ohlcv/{symbol}.
type OHLCVResponse struct {
	Symbol string         `json:"symbol"`
	Data   []models.OHLCV `json:"data"`
	Count  int            `json:"count"`
}

// SymbolsResponse is returned by GET /api/symbols.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
	Count   int      `json:"count"`
	Source  string   `json:"source"`
}

func (s *Server) handleVolatility(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	methodName := q.Get("method")
	if methodName == "" {
		methodName = s.cfg.Volatility.Method
	}
	method, err := volatility.ParseMethod(methodName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period := s.cfg.Volatility.Period
	if period <= 0 {
		period = volatility.DefaultPeriod
	}
	if p := q.Get("period"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid period: must be a positive integer")
			return
		}
		period = n
	}

	candles, err := s.store.Load(r.Context(), symbol)
	if err != nil {
		s.writeLoadError(w, symbol, err)
		return
	}
	vol, err := volatility.Estimate(candles, method, period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !utils.IsFinite(vol) {
		writeError(w, http.StatusUnprocessableEntity, errDegenerateSeries+symbol)
		return
	}
	s.metrics.ObserveCalculation("volatility")

	resp := VolatilityResponse{
		Symbol:            symbol,
		Volatility:        vol,
		VolatilityPercent: utils.FractionToPercent(vol),
		Period:            period,
		Method:            string(method),
		DataPoints:        len(candles),
	}
	s.log.Debug("volatility estimated",
		zap.String("symbol", symbol),
		zap.String("method", resp.Method),
		zap.Float64("volatility", vol),
	)
	s.wsHub.Broadcast(WSMessage{Type: "volatility", Data: resp})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	candles, err := s.store.Load(r.Context(), symbol)
	if err != nil {
		s.writeLoadError(w, symbol, err)
		return
	}
	writeJSON(w, http.StatusOK, PriceResponse{
		Symbol:     symbol,
		Price:      volatility.CurrentPrice(candles),
		LastUpdate: candles[len(candles)-1].Date,
	})
}

func (s *Server) handleOHLCV(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	limit := defaultOHLCVLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit: must be a positive integer")
			return
		}
		limit = n
	}

	candles, err := s.store.Load(r.Context(), symbol)
	if err != nil {
		s.writeLoadError(w, symbol, err)
		return
	}
	data := volatility.LastN(candles, limit)
	writeJSON(w, http.StatusOK, OHLCVResponse{
		Symbol: symbol,
		Data:   data,
		Count:  len(data),
	})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.store.Symbols(r.Context())
	if err != nil {
		s.log.Error("list symbols", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SymbolsResponse{
		Symbols: symbols,
		Count:   len(symbols),
		Source:  s.store.Source().Name(),
	})
}

// symbolParam returns the URL-unescaped {symbol} path parameter so that
// BTC%2FUSDT arrives as BTC/USDT.
func symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "symbol")
	symbol, err := url.PathUnescape(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid symbol: "+raw)
		return "", false
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return "", false
	}
	return symbol, true
}
