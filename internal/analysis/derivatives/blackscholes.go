// Package derivatives implements European option valuation, Greeks and
// strategy payoff analysis. Everything here is pure: no I/O, no shared state.
package derivatives

import (
	"math"

	"github.com/seenimoa/derivx/pkg/models"
)

const (
	// DaysPerYear converts theta from per-year to per-calendar-day.
	DaysPerYear = 365.0

	// Abramowitz & Stegun 7.1.26 coefficients for erf.
	asP  = 0.3275911
	asA1 = 0.254829592
	asA2 = -0.284496736
	asA3 = 1.421413741
	asA4 = -1.453152027
	asA5 = 1.061405429
)

// NormCDF returns the standard normal cumulative distribution Φ(x).
//
// It evaluates the Abramowitz & Stegun 7.1.26 approximation of erf at
// |x|/√2 to get the lower tail Φ(-|x|) and reflects it for positive x, so
// Φ(x)+Φ(-x) = 1. Φ(0) is exactly 0.5.
// Maximum absolute error is below 1e-7 over the whole real line.
func NormCDF(x float64) float64 {
	if x == 0 {
		return 0.5
	}
	z := math.Abs(x) / math.Sqrt2
	t := 1.0 / (1.0 + asP*z)
	poly := ((((asA5*t+asA4)*t+asA3)*t+asA2)*t + asA1) * t
	tail := 0.5 * poly * math.Exp(-z*z)
	if x < 0 {
		return tail
	}
	return 1.0 - tail
}

// NormPDF returns the standard normal density φ(x).
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// d1d2 computes the Black-Scholes-Merton d1 and d2 terms. The caller
// guarantees T > 0 and σ > 0.
func d1d2(spot, strike float64, m models.MarketQuote) (float64, float64) {
	sqrtT := math.Sqrt(m.TimeToExpiry)
	volSqrtT := m.Volatility * sqrtT
	d1 := (math.Log(spot/strike) + (m.Rate-m.DividendYield+0.5*m.Volatility*m.Volatility)*m.TimeToExpiry) / volSqrtT
	return d1, d1 - volSqrtT
}

// Price returns the Black-Scholes-Merton value of a European option.
//
// At or past expiry (T <= 0) it returns undiscounted intrinsic value.
// With no volatility (σ <= 0) it returns intrinsic value of the discounted
// forward. Spot and strike must be positive; validating that is the
// caller's job.
func Price(kind models.OptionKind, strike float64, m models.MarketQuote) float64 {
	spot := m.Spot
	if m.TimeToExpiry <= 0 {
		return intrinsic(kind, spot, strike)
	}

	divDisc := math.Exp(-m.DividendYield * m.TimeToExpiry)
	rateDisc := math.Exp(-m.Rate * m.TimeToExpiry)

	if m.Volatility <= 0 {
		fwd := spot*divDisc - strike*rateDisc
		if kind == models.Put {
			fwd = -fwd
		}
		return math.Max(fwd, 0)
	}

	d1, d2 := d1d2(spot, strike, m)
	if kind == models.Put {
		return strike*rateDisc*NormCDF(-d2) - spot*divDisc*NormCDF(-d1)
	}
	return spot*divDisc*NormCDF(d1) - strike*rateDisc*NormCDF(d2)
}

// Greeks returns delta, gamma, theta (per day), vega and rho (per 1%).
// All values are zero when T <= 0 or σ <= 0.
func Greeks(kind models.OptionKind, strike float64, m models.MarketQuote) models.Greeks {
	if m.TimeToExpiry <= 0 || m.Volatility <= 0 {
		return models.Greeks{}
	}

	spot := m.Spot
	t := m.TimeToExpiry
	sqrtT := math.Sqrt(t)
	divDisc := math.Exp(-m.DividendYield * t)
	rateDisc := math.Exp(-m.Rate * t)

	d1, d2 := d1d2(spot, strike, m)
	pdf := NormPDF(d1)

	g := models.Greeks{
		Gamma: divDisc * pdf / (spot * m.Volatility * sqrtT),
		Vega:  spot * divDisc * pdf * sqrtT / 100,
	}

	decay := -(spot * divDisc * pdf * m.Volatility) / (2 * sqrtT)

	if kind == models.Put {
		g.Delta = divDisc * (NormCDF(d1) - 1)
		g.Theta = (decay + m.Rate*strike*rateDisc*NormCDF(-d2) - m.DividendYield*spot*divDisc*NormCDF(-d1)) / DaysPerYear
		g.Rho = -strike * t * rateDisc * NormCDF(-d2) / 100
		return g
	}

	g.Delta = divDisc * NormCDF(d1)
	g.Theta = (decay - m.Rate*strike*rateDisc*NormCDF(d2) + m.DividendYield*spot*divDisc*NormCDF(d1)) / DaysPerYear
	g.Rho = strike * t * rateDisc * NormCDF(d2) / 100
	return g
}

func intrinsic(kind models.OptionKind, price, strike float64) float64 {
	if kind == models.Put {
		return math.Max(strike-price, 0)
	}
	return math.Max(price-strike, 0)
}
