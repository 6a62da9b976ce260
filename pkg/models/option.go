package models

import "strings"

// OptionKind is the right carried by a European option.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// ParseOptionKind maps user input onto an OptionKind. Anything that is not
// "put" (case-insensitive) is treated as a call.
func ParseOptionKind(s string) OptionKind {
	if strings.EqualFold(strings.TrimSpace(s), string(Put)) {
		return Put
	}
	return Call
}

// Side is the direction of a position.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// ParseSide maps user input onto a Side. Anything that is not "short"
// (case-insensitive) is treated as long.
func ParseSide(s string) Side {
	if strings.EqualFold(strings.TrimSpace(s), string(Short)) {
		return Short
	}
	return Long
}

// MarketQuote is the market state an option is valued against.
// Volatility, Rate and DividendYield are fractional (0.20 = 20%),
// TimeToExpiry is in years.
type MarketQuote struct {
	Spot          float64 `json:"spot"`
	Volatility    float64 `json:"volatility"`
	Rate          float64 `json:"rate"`
	TimeToExpiry  float64 `json:"timeToExpiry"`
	DividendYield float64 `json:"dividendYield"`
}

// OptionContract is a single strategy leg.
type OptionContract struct {
	Kind     OptionKind `json:"type"`
	Side     Side       `json:"position"`
	Strike   float64    `json:"strike"`
	Premium  float64    `json:"premium"`  // paid when long, received when short
	Quantity int        `json:"quantity"` // number of contracts; direction comes from Side
}

// Contracts is the size of the leg. The sign of Quantity is ignored.
func (c OptionContract) Contracts() float64 {
	if c.Quantity < 0 {
		return float64(-c.Quantity)
	}
	return float64(c.Quantity)
}

// Greeks are the first-order sensitivities of an option value.
// Theta is per calendar day, Vega and Rho are per 1% move.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// PricePoint is one sample of a payoff curve.
type PricePoint struct {
	Price float64 `json:"price"`
	PnL   float64 `json:"pnl"`
}

// OptionStrategy represents a multi-leg option strategy with its
// expiry payoff summary.
type OptionStrategy struct {
	Name       string           `json:"name"` // e.g., "Bull Call Spread"
	Legs       []OptionContract `json:"legs"`
	MaxProfit  float64          `json:"maxProfit"`
	MaxLoss    float64          `json:"maxLoss"`
	Breakevens []float64        `json:"breakevens"`
	NetPremium float64          `json:"netPremium"` // positive = credit, negative = debit
	Payoff     []PricePoint     `json:"payoff,omitempty"`
}
