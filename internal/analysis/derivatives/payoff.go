package derivatives

import (
	"errors"

	"github.com/seenimoa/derivx/pkg/models"
)

// --- Sentinel errors ---

// ErrInvalidNumPoints is returned when a payoff curve is asked for fewer
// than one point.
var ErrInvalidNumPoints = errors.New("numPoints must be at least 1")

// ErrInvalidPriceRange is returned when minPrice is above maxPrice.
var ErrInvalidPriceRange = errors.New("minPrice must not exceed maxPrice")

// Payoff returns the expiry profit or loss of a single contract when the
// underlying settles at price.
func Payoff(c models.OptionContract, price float64) float64 {
	pnl := intrinsic(c.Kind, price, c.Strike) - c.Premium
	if c.Side == models.Short {
		pnl = -pnl
	}
	return pnl * c.Contracts()
}

// StrategyPNL sums Payoff over every leg. An empty strategy is flat.
func StrategyPNL(legs []models.OptionContract, price float64) float64 {
	total := 0.0
	for _, leg := range legs {
		total += Payoff(leg, price)
	}
	return total
}

// PayoffCurve samples StrategyPNL at numPoints evenly spaced prices from
// minPrice to maxPrice inclusive. A single point is taken at minPrice.
func PayoffCurve(legs []models.OptionContract, minPrice, maxPrice float64, numPoints int) ([]models.PricePoint, error) {
	if numPoints < 1 {
		return nil, ErrInvalidNumPoints
	}
	if minPrice > maxPrice {
		return nil, ErrInvalidPriceRange
	}

	curve := make([]models.PricePoint, numPoints)
	if numPoints == 1 {
		curve[0] = models.PricePoint{Price: minPrice, PnL: StrategyPNL(legs, minPrice)}
		return curve, nil
	}

	step := (maxPrice - minPrice) / float64(numPoints-1)
	for i := range curve {
		price := minPrice + float64(i)*step
		if i == numPoints-1 {
			price = maxPrice
		}
		curve[i] = models.PricePoint{Price: price, PnL: StrategyPNL(legs, price)}
	}
	return curve, nil
}
