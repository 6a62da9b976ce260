package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// ── Option kind / side parsing ──

func TestParseOptionKind(t *testing.T) {
	tests := []struct {
		in   string
		want OptionKind
	}{
		{"call", Call},
		{"put", Put},
		{"PUT", Put},
		{" Put ", Put},
		{"", Call},
		{"straddle", Call},
	}
	for _, tt := range tests {
		if got := ParseOptionKind(tt.in); got != tt.want {
			t.Errorf("ParseOptionKind(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in   string
		want Side
	}{
		{"long", Long},
		{"short", Short},
		{"SHORT", Short},
		{"", Long},
		{"sell", Long},
	}
	for _, tt := range tests {
		if got := ParseSide(tt.in); got != tt.want {
			t.Errorf("ParseSide(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ── JSON field names ──

func TestOptionContractJSONFields(t *testing.T) {
	c := OptionContract{Kind: Put, Side: Short, Strike: 95, Premium: 1.5, Quantity: 2}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("json.Marshal(OptionContract) error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"put"`, `"position":"short"`, `"strike":95`, `"premium":1.5`, `"quantity":2`} {
		if !strings.Contains(s, want) {
			t.Errorf("OptionContract JSON %s missing %s", s, want)
		}
	}
}

func TestPricePointJSONFields(t *testing.T) {
	data, err := json.Marshal(PricePoint{Price: 100, PnL: -2.5})
	if err != nil {
		t.Fatalf("json.Marshal(PricePoint) error: %v", err)
	}
	if got, want := string(data), `{"price":100,"pnl":-2.5}`; got != want {
		t.Errorf("PricePoint JSON: got %s, want %s", got, want)
	}
}

func TestOHLCVJSONFields(t *testing.T) {
	bar := OHLCV{Date: "2024-01-02", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10.25}
	data, err := json.Marshal(bar)
	if err != nil {
		t.Fatalf("json.Marshal(OHLCV) error: %v", err)
	}
	want := `{"date":"2024-01-02","open":1,"high":2,"low":0.5,"close":1.5,"volume":10.25}`
	if string(data) != want {
		t.Errorf("OHLCV JSON: got %s, want %s", data, want)
	}
}

func TestOptionStrategyJSONFields(t *testing.T) {
	data, err := json.Marshal(OptionStrategy{Name: "Custom", MaxProfit: 4, MaxLoss: 1, NetPremium: -1})
	if err != nil {
		t.Fatalf("json.Marshal(OptionStrategy) error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"maxProfit":4`, `"maxLoss":1`, `"netPremium":-1`, `"breakevens":null`} {
		if !strings.Contains(s, want) {
			t.Errorf("OptionStrategy JSON %s missing %s", s, want)
		}
	}
}

func TestMarketQuoteJSONFields(t *testing.T) {
	data, err := json.Marshal(MarketQuote{Spot: 100, TimeToExpiry: 0.5, DividendYield: 0.01})
	if err != nil {
		t.Fatalf("json.Marshal(MarketQuote) error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"timeToExpiry":0.5`, `"dividendYield":0.01`} {
		if !strings.Contains(s, want) {
			t.Errorf("MarketQuote JSON %s missing %s", s, want)
		}
	}
}

func TestOptionContractContracts(t *testing.T) {
	for _, q := range []int{3, -3} {
		if got := (OptionContract{Quantity: q}).Contracts(); got != 3 {
			t.Errorf("Contracts() with quantity %d: got %v, want 3", q, got)
		}
	}
}
