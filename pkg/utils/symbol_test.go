package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BTC/USDT", "BTC/USDT"},
		{"btc/usdt", "BTC/USDT"},
		{" eth-usdt ", "ETH/USDT"},
		{"SOL_USDT", "SOL/USDT"},
		{"$xbt/usd", "BTC/USD"},
		{"AAPL", "AAPL"},
		{"bitcoin", "BTC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeSymbol(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSymbolToFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BTC/USDT", "BTC_USDT_ohlcv.csv"},
		{"BTC_USDT", "BTC_USDT_ohlcv.csv"},
		{"AAPL", "AAPL_ohlcv.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := SymbolToFilename(tt.input); result != tt.expected {
				t.Errorf("SymbolToFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFilenameToSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"BTC_USDT_ohlcv.csv", "BTC/USDT", true},
		{"AAPL_ohlcv.csv", "AAPL", true},
		{"notes.txt", "", false},
		{"_ohlcv.csv", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, ok := FilenameToSymbol(tt.input)
			if result != tt.expected || ok != tt.ok {
				t.Errorf("FilenameToSymbol(%q) = %q, %v, want %q, %v", tt.input, result, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestSymbolFilenames(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"BTC/USDT", []string{"BTC_USDT_ohlcv.csv"}},
		{"btc-usdt", []string{"btc-usdt_ohlcv.csv", "BTC_USDT_ohlcv.csv"}},
		{"eth_usdt", []string{"eth_usdt_ohlcv.csv", "ETH_USDT_ohlcv.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := SymbolFilenames(tt.input); !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("SymbolFilenames(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
