package volatility

import (
	"errors"
	"math"
	"testing"

	"github.com/seenimoa/derivx/pkg/models"
)

// closes builds a candle series from close prices with a ±1% range.
func closes(prices ...float64) []models.OHLCV {
	candles := make([]models.OHLCV, len(prices))
	for i, p := range prices {
		candles[i] = models.OHLCV{Open: p, High: p * 1.01, Low: p * 0.99, Close: p, Volume: 1000}
	}
	return candles
}

// ranges builds a candle series from high/low pairs.
func ranges(pairs ...[2]float64) []models.OHLCV {
	candles := make([]models.OHLCV, len(pairs))
	for i, hl := range pairs {
		candles[i] = models.OHLCV{High: hl[0], Low: hl[1], Open: hl[1], Close: hl[0]}
	}
	return candles
}

func flat(n int, price float64) []models.OHLCV {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return closes(prices...)
}

// ── LogReturns ──

func TestLogReturns(t *testing.T) {
	got := LogReturns(closes(100, 110, 99))
	want := []float64{math.Log(1.1), math.Log(0.9)}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("return %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLogReturnsSkipsNonPositivePriorClose(t *testing.T) {
	got := LogReturns(closes(0, 100, 110))
	if len(got) != 1 || math.Abs(got[0]-math.Log(1.1)) > 1e-15 {
		t.Errorf("got %v, want [ln(1.1)]", got)
	}
}

func TestLogReturnsShortSeries(t *testing.T) {
	if got := LogReturns(nil); len(got) != 0 {
		t.Errorf("nil series: got %v", got)
	}
	if got := LogReturns(closes(100)); len(got) != 0 {
		t.Errorf("one candle: got %v", got)
	}
}

// ── HistoricalVolatility ──

func TestHistoricalVolatility(t *testing.T) {
	tests := []struct {
		name    string
		candles []models.OHLCV
		period  int
		want    float64
	}{
		{"known series", closes(100, 102, 101, 103, 104), 30, 0.19156433378722554},
		{"trailing window", closes(100, 102, 101, 103, 104), 3, 0.07894837626495617},
		{"identical closes", flat(31, 250), 30, 0},
		{"two candles", closes(100, 105), 30, 0},
		{"one candle", closes(100), 30, DefaultVolatility},
		{"empty", nil, 30, DefaultVolatility},
		{"only non-positive priors", closes(0, 0), 30, DefaultVolatility},
	}
	for _, tt := range tests {
		if got := HistoricalVolatility(tt.candles, tt.period); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHistoricalVolatilityIgnoresOldCandles(t *testing.T) {
	series := append(closes(10, 500, 3, 800, 40), flat(30, 100)...)
	if got := HistoricalVolatility(series, 30); got != 0 {
		t.Errorf("got %v, want 0 (wild candles fall outside the window)", got)
	}
}

func TestHistoricalVolatilityDefaultPeriod(t *testing.T) {
	series := append(closes(10, 500, 3, 800, 40), flat(30, 100)...)
	if a, b := HistoricalVolatility(series, 0), HistoricalVolatility(series, DefaultPeriod); a != b {
		t.Errorf("period 0: got %v, want %v", a, b)
	}
}

// ── ParkinsonVolatility ──

func TestParkinsonVolatility(t *testing.T) {
	tests := []struct {
		name    string
		candles []models.OHLCV
		want    float64
	}{
		{"constant range", ranges([2]float64{102, 100}, [2]float64{51, 50}, [2]float64{204, 200}), 0.18879059618156513},
		{"mixed ranges", ranges([2]float64{102, 100}, [2]float64{105, 100}), 0.35496705594549205},
		{"skips bad candles", ranges([2]float64{102, 100}, [2]float64{100, 100}, [2]float64{5, 0}, [2]float64{90, 95}), 0.18879059618156513},
		{"high equals low", ranges([2]float64{100, 100}, [2]float64{90, 90}), DefaultVolatility},
		{"empty", nil, DefaultVolatility},
	}
	for _, tt := range tests {
		if got := ParkinsonVolatility(tt.candles, 30); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParkinsonVolatilityWindow(t *testing.T) {
	series := ranges([2]float64{200, 100}, [2]float64{102, 100}, [2]float64{51, 50})
	if got := ParkinsonVolatility(series, 2); math.Abs(got-0.18879059618156513) > 1e-12 {
		t.Errorf("got %v, want first candle excluded", got)
	}
}

// ── Estimate / ParseMethod ──

func TestEstimate(t *testing.T) {
	series := closes(100, 102, 101, 103, 104)

	h, err := Estimate(series, Historical, 30)
	if err != nil || h != HistoricalVolatility(series, 30) {
		t.Errorf("historical: got %v, %v", h, err)
	}
	p, err := Estimate(series, Parkinson, 30)
	if err != nil || p != ParkinsonVolatility(series, 30) {
		t.Errorf("parkinson: got %v, %v", p, err)
	}
	if _, err := Estimate(series, "garch", 30); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("unknown method: got %v, want ErrUnknownMethod", err)
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"", Historical, false},
		{"historical", Historical, false},
		{"Parkinson", Parkinson, false},
		{"high-low", Parkinson, false},
		{"ewma", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error: got %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ── CurrentPrice / LastN ──

func TestCurrentPrice(t *testing.T) {
	if got := CurrentPrice(closes(100, 101, 99.5)); got != 99.5 {
		t.Errorf("got %v, want 99.5", got)
	}
	if got := CurrentPrice(nil); got != 0 {
		t.Errorf("empty: got %v, want 0", got)
	}
}

func TestLastN(t *testing.T) {
	series := closes(1, 2, 3, 4, 5)
	tests := []struct {
		n    int
		want []float64
	}{
		{2, []float64{4, 5}},
		{5, []float64{1, 2, 3, 4, 5}},
		{10, []float64{1, 2, 3, 4, 5}},
		{0, nil},
		{-1, nil},
	}
	for _, tt := range tests {
		got := LastN(series, tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("LastN(%d): got %d candles, want %d", tt.n, len(got), len(tt.want))
			continue
		}
		for i, c := range got {
			if c.Close != tt.want[i] {
				t.Errorf("LastN(%d)[%d]: got %v, want %v", tt.n, i, c.Close, tt.want[i])
			}
		}
	}
}
