package derivatives

import (
	"errors"
	"fmt"
	"math"

	"github.com/seenimoa/derivx/pkg/models"
)

// MaxChainStrikes bounds the strikes on each side of ATM in BuildChain.
const MaxChainStrikes = 50

// DefaultChainStrikes is the number of strikes on each side of ATM when
// none is given.
const DefaultChainStrikes = 5

// ErrInvalidChain is returned for a chain request BuildChain cannot honour.
var ErrInvalidChain = errors.New("invalid option chain request")

// ChainQuote is the model value of one side of a chain row.
type ChainQuote struct {
	Price  float64       `json:"price"`
	Greeks models.Greeks `json:"greeks"`
}

// ChainRow pairs the call and put at one strike.
type ChainRow struct {
	Strike    float64    `json:"strike"`
	Moneyness float64    `json:"moneyness"` // strike / spot
	Call      ChainQuote `json:"call"`
	Put       ChainQuote `json:"put"`
}

// OptionChain is a theoretical chain priced off a single MarketQuote.
type OptionChain struct {
	SpotPrice  float64    `json:"spotPrice"`
	ATMStrike  float64    `json:"atmStrike"`
	StrikeStep float64    `json:"strikeStep"`
	Rows       []ChainRow `json:"rows"`
}

// BuildChain prices calls and puts on a ladder of strikes spaced step
// apart, centred on the strike nearest the spot. Strikes at or below zero
// are left out. A zero step means 2.5% of spot; zero strikes means
// DefaultChainStrikes.
func BuildChain(m models.MarketQuote, step float64, strikes int) (OptionChain, error) {
	if m.Spot <= 0 {
		return OptionChain{}, fmt.Errorf("%w: spot must be positive", ErrInvalidChain)
	}
	if step < 0 || strikes < 0 || strikes > MaxChainStrikes {
		return OptionChain{}, fmt.Errorf("%w: step must not be negative and strikes must be between 0 and %d",
			ErrInvalidChain, MaxChainStrikes)
	}
	if step == 0 {
		step = m.Spot * 0.025
	}
	if strikes == 0 {
		strikes = DefaultChainStrikes
	}

	centre := math.Round(m.Spot/step) * step
	chain := OptionChain{
		SpotPrice:  m.Spot,
		StrikeStep: step,
		Rows:       make([]ChainRow, 0, 2*strikes+1),
	}
	for i := -strikes; i <= strikes; i++ {
		k := centre + float64(i)*step
		if k <= 0 {
			continue
		}
		chain.Rows = append(chain.Rows, ChainRow{
			Strike:    k,
			Moneyness: k / m.Spot,
			Call:      ChainQuote{Price: Price(models.Call, k, m), Greeks: Greeks(models.Call, k, m)},
			Put:       ChainQuote{Price: Price(models.Put, k, m), Greeks: Greeks(models.Put, k, m)},
		})
	}
	chain.ATMStrike = findATMStrike(chain.Rows, m.Spot)
	return chain, nil
}

// --- helpers ---

func findATMStrike(rows []ChainRow, spot float64) float64 {
	if len(rows) == 0 || spot <= 0 {
		return 0
	}

	closest := rows[0].Strike
	minDiff := math.Abs(closest - spot)

	for _, r := range rows {
		diff := math.Abs(r.Strike - spot)
		if diff < minDiff {
			minDiff = diff
			closest = r.Strike
		}
	}

	return closest
}
