// Package volatility estimates annualized volatility from OHLCV candle
// series. All functions operate on ascending []models.OHLCV slices and
// never mutate them.
package volatility

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/derivx/pkg/models"
)

const (
	// DefaultVolatility is returned when a series is too short to estimate from.
	DefaultVolatility = 0.20

	// DefaultPeriod is the trailing window used when none is given.
	DefaultPeriod = 30

	// TradingDaysPerYear annualizes daily estimates. Candles are assumed to
	// be daily; other spacings produce a mis-scaled figure.
	TradingDaysPerYear = 252
)

// Method selects an estimator.
type Method string

const (
	Historical Method = "historical"
	Parkinson  Method = "parkinson"
)

// ErrUnknownMethod is returned by Estimate and ParseMethod for an
// unsupported estimator name.
var ErrUnknownMethod = errors.New("unknown volatility method")

// ParseMethod maps user input onto a Method. Empty input selects Historical.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "historical", "close", "close-to-close":
		return Historical, nil
	case "parkinson", "high-low":
		return Parkinson, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// LogReturns returns ln(close[i]/close[i-1]) for every consecutive pair
// whose prior close is positive. Fewer than two candles yield nothing.
func LogReturns(candles []models.OHLCV) []float64 {
	if len(candles) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, math.Log(candles[i].Close/prev))
	}
	return returns
}

// HistoricalVolatility is the annualized population standard deviation of
// close-to-close log returns over the trailing period candles.
// Default period is 30. Returns DefaultVolatility when there is not
// enough data.
func HistoricalVolatility(candles []models.OHLCV, period int) float64 {
	if period <= 0 {
		period = DefaultPeriod
	}
	window := LastN(candles, period)
	if len(window) < 2 {
		return DefaultVolatility
	}

	returns := LogReturns(window)
	switch len(returns) {
	case 0:
		return DefaultVolatility
	case 1:
		return 0
	}

	_, std := stat.PopMeanStdDev(returns, nil)
	return std * math.Sqrt(TradingDaysPerYear)
}

// ParkinsonVolatility is the annualized high/low range estimator over the
// trailing period candles. Only candles with low > 0 and high > low count.
// Default period is 30. Returns DefaultVolatility when no candle qualifies.
func ParkinsonVolatility(candles []models.OHLCV, period int) float64 {
	if period <= 0 {
		period = DefaultPeriod
	}

	sum := 0.0
	count := 0
	for _, c := range LastN(candles, period) {
		if c.Low <= 0 || c.High <= c.Low {
			continue
		}
		hl := math.Log(c.High / c.Low)
		sum += hl * hl
		count++
	}
	if count == 0 {
		return DefaultVolatility
	}

	variance := sum / float64(count) / (4 * math.Ln2)
	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear)
}

// Estimate dispatches to the estimator selected by method.
func Estimate(candles []models.OHLCV, method Method, period int) (float64, error) {
	switch method {
	case Historical, "":
		return HistoricalVolatility(candles, period), nil
	case Parkinson:
		return ParkinsonVolatility(candles, period), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// CurrentPrice returns the last close, or 0 for an empty series.
func CurrentPrice(candles []models.OHLCV) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}

// LastN returns the trailing min(len, n) candles in order.
// The result shares the backing array with candles.
func LastN(candles []models.OHLCV, n int) []models.OHLCV {
	if n <= 0 {
		return candles[:0:0]
	}
	if n >= len(candles) {
		return candles
	}
	return candles[len(candles)-n:]
}
