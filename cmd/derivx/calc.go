package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/derivx/internal/analysis/derivatives"
	"github.com/seenimoa/derivx/internal/analysis/volatility"
	"github.com/seenimoa/derivx/internal/logging"
	"github.com/seenimoa/derivx/pkg/models"
	"github.com/seenimoa/derivx/pkg/utils"
)

// addQuoteFlags registers the option inputs shared by price, greeks and
// strategy. Units match the HTTP API: days and percent.
func addQuoteFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("spot", 100, "spot price of the underlying")
	cmd.Flags().Float64("days", 0, "days to expiration (default from config)")
	cmd.Flags().Float64("vol", 0, "volatility in percent (default from config)")
	cmd.Flags().Float64("rate", -1, "risk-free rate in percent (default from config)")
	cmd.Flags().Float64("div", 0, "continuous dividend yield in percent")
}

func quoteFromFlags(cmd *cobra.Command) (models.MarketQuote, error) {
	spot, _ := cmd.Flags().GetFloat64("spot")
	days, _ := cmd.Flags().GetFloat64("days")
	vol, _ := cmd.Flags().GetFloat64("vol")
	rate, _ := cmd.Flags().GetFloat64("rate")
	div, _ := cmd.Flags().GetFloat64("div")

	if !cmd.Flags().Changed("days") {
		days = cfg.Pricing.DefaultDays
	}
	if !cmd.Flags().Changed("vol") {
		vol = cfg.Pricing.DefaultVolatilityPct
	}
	if !cmd.Flags().Changed("rate") {
		rate = cfg.Pricing.DefaultRatePct
	}
	if spot <= 0 || days < 0 || vol < 0 {
		return models.MarketQuote{}, fmt.Errorf("spot must be positive; days and vol must not be negative")
	}
	return models.MarketQuote{
		Spot:          spot,
		Volatility:    utils.PercentToFraction(vol),
		Rate:          utils.PercentToFraction(rate),
		TimeToExpiry:  utils.DaysToYears(days),
		DividendYield: utils.PercentToFraction(div),
	}, nil
}

// --- Price Command ---

var priceCmd = &cobra.Command{
	Use:   "price [call|put]",
	Short: "Price a European option with Black-Scholes",
	Example: `  derivx price call --spot 100 --strike 105 --days 30 --vol 25
  derivx price put --spot 64000 --strike 60000 --days 7 --vol 55 --rate 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.Call
		if len(args) == 1 {
			kind = models.ParseOptionKind(args[0])
		}
		strike, _ := cmd.Flags().GetFloat64("strike")
		if strike <= 0 {
			return fmt.Errorf("strike must be positive")
		}
		q, err := quoteFromFlags(cmd)
		if err != nil {
			return err
		}

		price := derivatives.Price(kind, strike, q)
		fmt.Printf("💰 %s %s @ %s\n", strings.ToUpper(string(kind)), utils.FormatPrice(strike), utils.FormatPrice(q.Spot))
		fmt.Printf("   Price:  %s\n", utils.FormatPrice(price))
		fmt.Printf("   Inputs: %.1f days, vol %.2f%%, rate %.2f%%, div %.2f%%\n",
			utils.YearsToDays(q.TimeToExpiry),
			utils.FractionToPercent(q.Volatility),
			utils.FractionToPercent(q.Rate),
			utils.FractionToPercent(q.DividendYield),
		)
		return nil
	},
}

// --- Greeks Command ---

var greeksCmd = &cobra.Command{
	Use:   "greeks [call|put]",
	Short: "Compute option Greeks (theta per day, vega and rho per 1%)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := models.Call
		if len(args) == 1 {
			kind = models.ParseOptionKind(args[0])
		}
		strike, _ := cmd.Flags().GetFloat64("strike")
		if strike <= 0 {
			return fmt.Errorf("strike must be positive")
		}
		q, err := quoteFromFlags(cmd)
		if err != nil {
			return err
		}

		g := derivatives.Greeks(kind, strike, q)
		fmt.Printf("📐 Greeks: %s %s @ %s\n", strings.ToUpper(string(kind)), utils.FormatPrice(strike), utils.FormatPrice(q.Spot))
		fmt.Printf("   Delta: %10.6f\n", g.Delta)
		fmt.Printf("   Gamma: %10.6f\n", g.Gamma)
		fmt.Printf("   Theta: %10.6f /day\n", g.Theta)
		fmt.Printf("   Vega:  %10.6f /1%%\n", g.Vega)
		fmt.Printf("   Rho:   %10.6f /1%%\n", g.Rho)
		return nil
	},
}

// --- Strategy Command ---

var strategyCmd = &cobra.Command{
	Use:   "strategy [preset]",
	Short: "Build a preset strategy and summarize its payoff at expiry",
	Long: `Build a preset strategy around the spot price, pricing each leg with
Black-Scholes, and print max profit, max loss and breakevens.

Presets: long_call, long_put, straddle, strangle, bull_call_spread,
bear_put_spread, iron_condor`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := quoteFromFlags(cmd)
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetFloat64("width")
		qty, _ := cmd.Flags().GetInt("qty")

		strat, err := derivatives.BuildPreset(derivatives.PresetRequest{
			Preset:    derivatives.Preset(args[0]),
			Width:     width,
			Quantity:  qty,
			NumPoints: cfg.Pricing.DefaultNumPoints,
		}, q)
		if err != nil {
			return err
		}

		fmt.Printf("🎯 %s @ %s\n", strat.Name, utils.FormatPrice(q.Spot))
		for _, leg := range strat.Legs {
			fmt.Printf("   %-5s %-4s x%d  K=%-10s premium %s\n",
				leg.Side, leg.Kind, leg.Quantity, utils.FormatPrice(leg.Strike), utils.FormatPrice(leg.Premium))
		}
		fmt.Printf("   Net premium: %s\n", utils.FormatPrice(strat.NetPremium))
		fmt.Printf("   Max profit:  %s\n", utils.FormatPrice(strat.MaxProfit))
		fmt.Printf("   Max loss:    %s\n", utils.FormatPrice(strat.MaxLoss))
		be := make([]string, len(strat.Breakevens))
		for i, b := range strat.Breakevens {
			be[i] = utils.FormatPrice(b)
		}
		fmt.Printf("   Breakevens:  %s\n", strings.Join(be, ", "))
		return nil
	},
}

func init() {
	addQuoteFlags(priceCmd)
	priceCmd.Flags().Float64("strike", 100, "strike price")

	addQuoteFlags(greeksCmd)
	greeksCmd.Flags().Float64("strike", 100, "strike price")

	addQuoteFlags(strategyCmd)
	strategyCmd.Flags().Float64("width", 0, "distance between strikes (default 5% of spot)")
	strategyCmd.Flags().Int("qty", 1, "contracts per leg")

	volatilityCmd.Flags().Int("period", 0, "trailing window in candles (default from config)")
	volatilityCmd.Flags().String("method", "", "historical or parkinson (default from config)")
}

// --- Volatility Command ---

var volatilityCmd = &cobra.Command{
	Use:     "volatility [symbol]",
	Aliases: []string{"vol"},
	Short:   "Estimate annualized volatility from OHLCV history",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetInt("period")
		if period <= 0 {
			period = cfg.Volatility.Period
		}
		methodName, _ := cmd.Flags().GetString("method")
		if methodName == "" {
			methodName = cfg.Volatility.Method
		}
		method, err := volatility.ParseMethod(methodName)
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		store, closeStore, err := newStore(cmd.Context(), cfg, log, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		symbol := args[0]
		candles, err := store.Load(cmd.Context(), symbol)
		if err != nil {
			return err
		}
		vol, err := volatility.Estimate(candles, method, period)
		if err != nil {
			return err
		}
		if !utils.IsFinite(vol) {
			return fmt.Errorf("series for %s contains non-positive prices", symbol)
		}
		log.Debug("volatility estimated", zap.String("symbol", symbol), zap.Int("candles", len(candles)))

		fmt.Printf("📊 %s\n", symbol)
		fmt.Printf("   Volatility:  %.2f%% (%s, %d candles)\n", utils.FractionToPercent(vol), method, period)
		fmt.Printf("   Last close:  %s (%s)\n", utils.FormatPrice(volatility.CurrentPrice(candles)), candles[len(candles)-1].Date)
		return nil
	},
}

// --- Symbols Command ---

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List symbols available in the data source",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		store, closeStore, err := newStore(cmd.Context(), cfg, log, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		symbols, err := store.Symbols(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d symbols in %s\n", len(symbols), store.Source().Name())
		for _, s := range symbols {
			fmt.Printf("  %s\n", s)
		}
		return nil
	},
}
