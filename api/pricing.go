package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/seenimoa/derivx/internal/analysis/derivatives"
	"github.com/seenimoa/derivx/internal/analysis/volatility"
	"github.com/seenimoa/derivx/internal/datasource"
	"github.com/seenimoa/derivx/pkg/models"
	"github.com/seenimoa/derivx/pkg/utils"
)

// ============================================================
// Request / Response types
// ============================================================

// OptionRequest is the body for POST /api/calculate-option and
// /api/calculate-greeks. Time is in days, rates and volatility in percent.
// Absent fields take the configured defaults.
type OptionRequest struct {
	Type             *string  `json:"type"`
	SpotPrice        *float64 `json:"spotPrice"`
	Strike           *float64 `json:"strike"`
	TimeToExpiration *float64 `json:"timeToExpiration"`
	Volatility       *float64 `json:"volatility"`
	RiskFreeRate     *float64 `json:"riskFreeRate"`
	DividendYield    *float64 `json:"dividendYield"`
}

// OptionResponse is returned by POST /api/calculate-option.
type OptionResponse struct {
	Price            float64 `json:"price"`
	Type             string  `json:"type"`
	Strike           float64 `json:"strike"`
	SpotPrice        float64 `json:"spotPrice"`
	Volatility       float64 `json:"volatility"`       // percent
	TimeToExpiration float64 `json:"timeToExpiration"` // days
}

// LegRequest is one option in a strategy request.
type LegRequest struct {
	Type     *string  `json:"type"`
	Position *string  `json:"position"`
	Strike   *float64 `json:"strike"`
	Premium  *float64 `json:"premium"`
	Quantity *int     `json:"quantity"`
}

// StrategyRequest is the body for POST /api/calculate-strategy.
type StrategyRequest struct {
	Options   []LegRequest `json:"options"`
	MinPrice  *float64     `json:"minPrice"`
	MaxPrice  *float64     `json:"maxPrice"`
	NumPoints *int         `json:"numPoints"`
}

// StrategyResponse is returned by POST /api/calculate-strategy.
type StrategyResponse struct {
	Curve     []models.PricePoint   `json:"curve"`
	NumPoints int                   `json:"numPoints"`
	MinPrice  float64               `json:"minPrice"`
	MaxPrice  float64               `json:"maxPrice"`
	Summary   models.OptionStrategy `json:"summary"`
}

// BuildStrategyRequest is the body for POST /api/build-strategy.
// When Volatility is absent and Symbol is set, the symbol's historical
// volatility is used.
type BuildStrategyRequest struct {
	Preset           string   `json:"preset"`
	SpotPrice        *float64 `json:"spotPrice"`
	Width            float64  `json:"width"`
	Quantity         int      `json:"quantity"`
	TimeToExpiration *float64 `json:"timeToExpiration"`
	Volatility       *float64 `json:"volatility"`
	RiskFreeRate     *float64 `json:"riskFreeRate"`
	DividendYield    *float64 `json:"dividendYield"`
	Symbol           string   `json:"symbol"`
	NumPoints        *int     `json:"numPoints"`
}

// BuildStrategyResponse is returned by POST /api/build-strategy.
type BuildStrategyResponse struct {
	Strategy   models.OptionStrategy `json:"strategy"`
	Curve      []models.PricePoint   `json:"curve"`
	MinPrice   float64               `json:"minPrice"`
	MaxPrice   float64               `json:"maxPrice"`
	Volatility float64               `json:"volatility"` // percent
}

// ChainRequest is the body for POST /api/option-chain. Strike and Type
// are ignored; Step is the strike spacing and Strikes the count on each
// side of ATM.
type ChainRequest struct {
	OptionRequest
	Step    float64 `json:"step"`
	Strikes int     `json:"strikes"`
	Symbol  string  `json:"symbol"`
}

// ChainResponse is returned by POST /api/option-chain.
type ChainResponse struct {
	derivatives.OptionChain
	Volatility       float64 `json:"volatility"`       // percent
	TimeToExpiration float64 `json:"timeToExpiration"` // days
}

// errInvalidOption is the message for rejected pricing inputs.
const errInvalidOption = "Invalid parameters: spotPrice, strike, timeToExpiration, and volatility must be positive"

const errNonFinite = "Result is not finite for the given inputs"

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleCalculateOption(w http.ResponseWriter, r *http.Request) {
	var req OptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind, strike, quote, err := s.resolveOption(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidOption)
		return
	}

	price := derivatives.Price(kind, strike, quote)
	if !utils.IsFinite(price) {
		writeError(w, http.StatusUnprocessableEntity, errNonFinite)
		return
	}
	s.metrics.ObserveCalculation("option")

	resp := OptionResponse{
		Price:            price,
		Type:             string(kind),
		Strike:           strike,
		SpotPrice:        quote.Spot,
		Volatility:       utils.FractionToPercent(quote.Volatility),
		TimeToExpiration: utils.YearsToDays(quote.TimeToExpiry),
	}
	s.wsHub.Broadcast(WSMessage{Type: "calculation", Data: map[string]any{
		"kind":  "option",
		"type":  resp.Type,
		"price": resp.Price,
	}})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCalculateGreeks(w http.ResponseWriter, r *http.Request) {
	var req OptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind, strike, quote, err := s.resolveOption(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters for Greeks calculation")
		return
	}

	greeks := derivatives.Greeks(kind, strike, quote)
	if !finiteGreeks(greeks) {
		writeError(w, http.StatusUnprocessableEntity, errNonFinite)
		return
	}
	s.metrics.ObserveCalculation("greeks")
	s.wsHub.Broadcast(WSMessage{Type: "calculation", Data: map[string]any{
		"kind":  "greeks",
		"type":  string(kind),
		"delta": greeks.Delta,
	}})
	writeJSON(w, http.StatusOK, greeks)
}

func (s *Server) handleCalculateStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	legs, err := resolveLegs(req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	numPoints, err := s.resolveNumPoints(req.NumPoints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	minPrice := floatOr(req.MinPrice, 0)
	maxPrice := floatOr(req.MaxPrice, 200)
	if minPrice <= 0 || maxPrice <= minPrice {
		minPrice, maxPrice = derivatives.AutoPriceRange(legs)
	}

	curve, err := derivatives.PayoffCurve(legs, minPrice, maxPrice, numPoints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary := derivatives.Summarize("Custom", legs, curve)
	summary.Payoff = nil
	if !finiteStrategy(summary, curve) {
		writeError(w, http.StatusUnprocessableEntity, errNonFinite)
		return
	}
	s.metrics.ObserveCalculation("strategy")

	s.wsHub.Broadcast(WSMessage{Type: "calculation", Data: map[string]any{
		"kind":       "strategy",
		"legs":       len(legs),
		"netPremium": summary.NetPremium,
	}})
	writeJSON(w, http.StatusOK, StrategyResponse{
		Curve:     curve,
		NumPoints: len(curve),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Summary:   summary,
	})
}

func (s *Server) handleBuildStrategy(w http.ResponseWriter, r *http.Request) {
	var req BuildStrategyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	numPoints, err := s.resolveNumPoints(req.NumPoints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	def := s.cfg.Pricing
	volPct := def.DefaultVolatilityPct
	spot := floatOr(req.SpotPrice, 100)

	// A symbol supplies whatever the request leaves out: volatility from
	// its history and spot from its last close.
	symbol := strings.TrimSpace(req.Symbol)
	if symbol != "" && (req.Volatility == nil || req.SpotPrice == nil) {
		histPct, last, ok := s.seriesInputs(w, r, symbol)
		if !ok {
			return
		}
		volPct = histPct
		if req.SpotPrice == nil {
			spot = last
		}
	}
	if req.Volatility != nil {
		volPct = *req.Volatility
	}

	quote := models.MarketQuote{
		Spot:          spot,
		Volatility:    utils.PercentToFraction(volPct),
		Rate:          utils.PercentToFraction(floatOr(req.RiskFreeRate, def.DefaultRatePct)),
		TimeToExpiry:  utils.DaysToYears(floatOr(req.TimeToExpiration, def.DefaultDays)),
		DividendYield: utils.PercentToFraction(floatOr(req.DividendYield, 0)),
	}
	if quote.Spot <= 0 || quote.TimeToExpiry < 0 || quote.Volatility < 0 || req.Width < 0 || req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "Invalid parameters: spotPrice must be positive; width, quantity, timeToExpiration and volatility must not be negative")
		return
	}

	strat, err := derivatives.BuildPreset(derivatives.PresetRequest{
		Preset:    derivatives.Preset(req.Preset),
		Width:     req.Width,
		Quantity:  req.Quantity,
		NumPoints: numPoints,
	}, quote)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	curve := strat.Payoff
	strat.Payoff = nil
	if !finiteStrategy(strat, curve) {
		writeError(w, http.StatusUnprocessableEntity, errNonFinite)
		return
	}
	s.metrics.ObserveCalculation("strategy")

	s.wsHub.Broadcast(WSMessage{Type: "calculation", Data: map[string]any{
		"kind":       "build-strategy",
		"preset":     req.Preset,
		"netPremium": strat.NetPremium,
	}})
	writeJSON(w, http.StatusOK, BuildStrategyResponse{
		Strategy:   strat,
		Curve:      curve,
		MinPrice:   curve[0].Price,
		MaxPrice:   curve[len(curve)-1].Price,
		Volatility: volPct,
	})
}

func (s *Server) handleOptionChain(w http.ResponseWriter, r *http.Request) {
	var req ChainRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if symbol := strings.TrimSpace(req.Symbol); symbol != "" && (req.Volatility == nil || req.SpotPrice == nil) {
		histPct, last, ok := s.seriesInputs(w, r, symbol)
		if !ok {
			return
		}
		if req.Volatility == nil {
			req.Volatility = &histPct
		}
		if req.SpotPrice == nil {
			req.SpotPrice = &last
		}
	}

	_, _, quote, err := s.resolveOption(req.OptionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidOption)
		return
	}
	chain, err := derivatives.BuildChain(quote, req.Step, req.Strikes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !finiteChain(chain) {
		writeError(w, http.StatusUnprocessableEntity, errNonFinite)
		return
	}
	s.metrics.ObserveCalculation("chain")

	s.wsHub.Broadcast(WSMessage{Type: "calculation", Data: map[string]any{
		"kind":      "chain",
		"atmStrike": chain.ATMStrike,
		"rows":      len(chain.Rows),
	}})
	writeJSON(w, http.StatusOK, ChainResponse{
		OptionChain:      chain,
		Volatility:       utils.FractionToPercent(quote.Volatility),
		TimeToExpiration: utils.YearsToDays(quote.TimeToExpiry),
	})
}

// ============================================================
// Helpers
// ============================================================

// seriesInputs loads symbol and returns its historical volatility in
// percent and its last close. On failure the error response is written.
func (s *Server) seriesInputs(w http.ResponseWriter, r *http.Request, symbol string) (float64, float64, bool) {
	candles, err := s.store.Load(r.Context(), symbol)
	if err != nil {
		s.writeLoadError(w, symbol, err)
		return 0, 0, false
	}
	vol := volatility.HistoricalVolatility(candles, s.cfg.Volatility.Period)
	if !utils.IsFinite(vol) {
		writeError(w, http.StatusUnprocessableEntity, errDegenerateSeries+symbol)
		return 0, 0, false
	}
	return utils.FractionToPercent(vol), volatility.CurrentPrice(candles), true
}

// The encoder rejects ±Inf and NaN after the status line is out, so results
// are checked before writing.

func finiteGreeks(g models.Greeks) bool {
	return utils.IsFinite(g.Delta) && utils.IsFinite(g.Gamma) && utils.IsFinite(g.Theta) &&
		utils.IsFinite(g.Vega) && utils.IsFinite(g.Rho)
}

func finiteStrategy(strat models.OptionStrategy, curve []models.PricePoint) bool {
	if !utils.IsFinite(strat.NetPremium) || !utils.IsFinite(strat.MaxProfit) || !utils.IsFinite(strat.MaxLoss) {
		return false
	}
	for _, leg := range strat.Legs {
		if !utils.IsFinite(leg.Premium) {
			return false
		}
	}
	for _, b := range strat.Breakevens {
		if !utils.IsFinite(b) {
			return false
		}
	}
	for _, p := range curve {
		if !utils.IsFinite(p.PnL) {
			return false
		}
	}
	return true
}

func finiteChain(chain derivatives.OptionChain) bool {
	for _, row := range chain.Rows {
		if !utils.IsFinite(row.Call.Price) || !utils.IsFinite(row.Put.Price) ||
			!finiteGreeks(row.Call.Greeks) || !finiteGreeks(row.Put.Greeks) {
			return false
		}
	}
	return true
}

// resolveOption applies defaults and unit conversion, rejecting inputs the
// pricing model cannot take.
func (s *Server) resolveOption(req OptionRequest) (models.OptionKind, float64, models.MarketQuote, error) {
	def := s.cfg.Pricing
	kind := models.Call
	if req.Type != nil {
		kind = models.ParseOptionKind(*req.Type)
	}
	strike := floatOr(req.Strike, 100)
	quote := models.MarketQuote{
		Spot:          floatOr(req.SpotPrice, 100),
		Volatility:    utils.PercentToFraction(floatOr(req.Volatility, def.DefaultVolatilityPct)),
		Rate:          utils.PercentToFraction(floatOr(req.RiskFreeRate, def.DefaultRatePct)),
		TimeToExpiry:  utils.DaysToYears(floatOr(req.TimeToExpiration, def.DefaultDays)),
		DividendYield: utils.PercentToFraction(floatOr(req.DividendYield, 0)),
	}
	if quote.Spot <= 0 || strike <= 0 || quote.TimeToExpiry < 0 || quote.Volatility < 0 {
		return "", 0, models.MarketQuote{}, errors.New("invalid option parameters")
	}
	return kind, strike, quote, nil
}

func resolveLegs(in []LegRequest) ([]models.OptionContract, error) {
	legs := make([]models.OptionContract, 0, len(in))
	for i, l := range in {
		leg := models.OptionContract{
			Kind:     models.Call,
			Side:     models.Long,
			Strike:   floatOr(l.Strike, 100),
			Premium:  floatOr(l.Premium, 0),
			Quantity: 1,
		}
		if l.Type != nil {
			leg.Kind = models.ParseOptionKind(*l.Type)
		}
		if l.Position != nil {
			leg.Side = models.ParseSide(*l.Position)
		}
		if l.Quantity != nil {
			leg.Quantity = *l.Quantity
		}
		if leg.Strike <= 0 {
			return nil, fmt.Errorf("Invalid option %d: strike must be positive", i)
		}
		if leg.Quantity == 0 {
			return nil, fmt.Errorf("Invalid option %d: quantity must not be zero", i)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

func (s *Server) resolveNumPoints(n *int) (int, error) {
	numPoints := s.cfg.Pricing.DefaultNumPoints
	if numPoints < 1 {
		numPoints = derivatives.DefaultCurvePoints
	}
	if n != nil {
		numPoints = *n
	}
	if numPoints < 1 || numPoints > s.cfg.Pricing.MaxNumPoints {
		return 0, fmt.Errorf("Invalid numPoints: must be between 1 and %d", s.cfg.Pricing.MaxNumPoints)
	}
	return numPoints, nil
}

// decodeBody parses a JSON request body, writing a 400 on failure.
// An empty body decodes as {} so every field takes its default.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeLoadError(w http.ResponseWriter, symbol string, err error) {
	if errors.Is(err, datasource.ErrSymbolNotFound) || errors.Is(err, datasource.ErrEmptySeries) {
		writeJSON(w, http.StatusNotFound, APIResponse{
			Error:      "No data found for symbol: " + symbol,
			Suggestion: "Make sure data file exists in data directory",
		})
		return
	}
	s.log.Error("load series", zap.String("symbol", symbol), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
