package derivatives

import (
	"errors"
	"fmt"
	"math"

	"github.com/seenimoa/derivx/pkg/models"
)

// DefaultCurvePoints is the payoff curve resolution used when the caller
// does not ask for one.
const DefaultCurvePoints = 200

// Preset names a canned multi-leg strategy.
type Preset string

const (
	PresetLongCall       Preset = "long_call"
	PresetLongPut        Preset = "long_put"
	PresetStraddle       Preset = "straddle"
	PresetStrangle       Preset = "strangle"
	PresetBullCallSpread Preset = "bull_call_spread"
	PresetBearPutSpread  Preset = "bear_put_spread"
	PresetIronCondor     Preset = "iron_condor"
)

var presetNames = map[Preset]string{
	PresetLongCall:       "Long Call",
	PresetLongPut:        "Long Put",
	PresetStraddle:       "Long Straddle",
	PresetStrangle:       "Long Strangle",
	PresetBullCallSpread: "Bull Call Spread",
	PresetBearPutSpread:  "Bear Put Spread",
	PresetIronCondor:     "Iron Condor",
}

// Presets lists the supported presets in a stable order.
func Presets() []Preset {
	return []Preset{
		PresetLongCall, PresetLongPut, PresetStraddle, PresetStrangle,
		PresetBullCallSpread, PresetBearPutSpread, PresetIronCondor,
	}
}

// ErrUnknownPreset is returned by BuildPreset for an unsupported preset.
var ErrUnknownPreset = errors.New("unknown strategy preset")

// ErrInvalidWidth is returned when the strike width would push a strike
// to zero or below.
var ErrInvalidWidth = errors.New("strike width too large for spot price")

// AutoPriceRange derives a payoff chart range from the strike extremes:
// [max(0, 0.5*minStrike), 1.5*maxStrike]. An empty strategy gets [0, 200].
func AutoPriceRange(legs []models.OptionContract) (float64, float64) {
	if len(legs) == 0 {
		return 0, 200
	}
	minStrike, maxStrike := math.Inf(1), math.Inf(-1)
	for _, leg := range legs {
		minStrike = math.Min(minStrike, leg.Strike)
		maxStrike = math.Max(maxStrike, leg.Strike)
	}
	return math.Max(0, minStrike*0.5), maxStrike * 1.5
}

// NetPremium returns the cash flow of opening the legs.
// Positive is a credit, negative a debit.
func NetPremium(legs []models.OptionContract) float64 {
	net := 0.0
	for _, leg := range legs {
		cash := leg.Premium * leg.Contracts()
		if leg.Side == models.Short {
			net += cash
		} else {
			net -= cash
		}
	}
	return net
}

// Summarize derives the strategy summary from a sampled payoff curve.
// MaxProfit and MaxLoss are reported as non-negative magnitudes over the
// sampled range. Breakevens are found where the PnL crosses zero, with
// linear interpolation between samples.
func Summarize(name string, legs []models.OptionContract, curve []models.PricePoint) models.OptionStrategy {
	s := models.OptionStrategy{
		Name:       name,
		Legs:       legs,
		NetPremium: NetPremium(legs),
		Breakevens: []float64{},
		Payoff:     curve,
	}
	if len(curve) == 0 {
		return s
	}

	hi, lo := math.Inf(-1), math.Inf(1)
	for i, pt := range curve {
		hi = math.Max(hi, pt.PnL)
		lo = math.Min(lo, pt.PnL)

		if pt.PnL == 0 {
			if i == 0 || curve[i-1].PnL != 0 {
				s.Breakevens = append(s.Breakevens, pt.Price)
			}
			continue
		}
		if i == 0 {
			continue
		}
		prev := curve[i-1]
		if prev.PnL != 0 && (prev.PnL < 0) != (pt.PnL < 0) {
			frac := -prev.PnL / (pt.PnL - prev.PnL)
			s.Breakevens = append(s.Breakevens, prev.Price+frac*(pt.Price-prev.Price))
		}
	}

	s.MaxProfit = math.Max(hi, 0)
	s.MaxLoss = math.Max(-lo, 0)
	return s
}

// PresetRequest parameterises BuildPreset.
type PresetRequest struct {
	Preset    Preset
	Width     float64 // distance between strikes; 5% of spot when zero
	Quantity  int     // contracts per leg; 1 when zero
	NumPoints int     // payoff curve resolution; DefaultCurvePoints when zero
}

// BuildPreset assembles a canned strategy around the spot in m, prices
// every leg with Price and attaches the payoff summary over AutoPriceRange.
func BuildPreset(req PresetRequest, m models.MarketQuote) (models.OptionStrategy, error) {
	name, ok := presetNames[req.Preset]
	if !ok {
		return models.OptionStrategy{}, fmt.Errorf("%w: %q", ErrUnknownPreset, req.Preset)
	}

	spot := m.Spot
	width := req.Width
	if width <= 0 {
		width = spot * 0.05
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	numPoints := req.NumPoints
	if numPoints <= 0 {
		numPoints = DefaultCurvePoints
	}

	leg := func(kind models.OptionKind, side models.Side, strike float64) models.OptionContract {
		return models.OptionContract{
			Kind:     kind,
			Side:     side,
			Strike:   strike,
			Premium:  Price(kind, strike, m),
			Quantity: qty,
		}
	}

	var legs []models.OptionContract
	switch req.Preset {
	case PresetLongCall:
		legs = []models.OptionContract{leg(models.Call, models.Long, spot)}
	case PresetLongPut:
		legs = []models.OptionContract{leg(models.Put, models.Long, spot)}
	case PresetStraddle:
		legs = []models.OptionContract{
			leg(models.Call, models.Long, spot),
			leg(models.Put, models.Long, spot),
		}
	case PresetStrangle:
		legs = []models.OptionContract{
			leg(models.Put, models.Long, spot-width),
			leg(models.Call, models.Long, spot+width),
		}
	case PresetBullCallSpread:
		legs = []models.OptionContract{
			leg(models.Call, models.Long, spot),
			leg(models.Call, models.Short, spot+width),
		}
	case PresetBearPutSpread:
		legs = []models.OptionContract{
			leg(models.Put, models.Long, spot),
			leg(models.Put, models.Short, spot-width),
		}
	case PresetIronCondor:
		// Sell the inner strangle, buy the outer wings for protection.
		legs = []models.OptionContract{
			leg(models.Put, models.Long, spot-2*width),
			leg(models.Put, models.Short, spot-width),
			leg(models.Call, models.Short, spot+width),
			leg(models.Call, models.Long, spot+2*width),
		}
	}

	for _, l := range legs {
		if l.Strike <= 0 {
			return models.OptionStrategy{}, fmt.Errorf("%w: width %.4g, spot %.4g", ErrInvalidWidth, width, spot)
		}
	}

	lo, hi := AutoPriceRange(legs)
	curve, err := PayoffCurve(legs, lo, hi, numPoints)
	if err != nil {
		return models.OptionStrategy{}, err
	}
	return Summarize(name, legs, curve), nil
}
