// Package utils provides common utility functions for derivx.
package utils

import (
	"strings"
)

// FileSuffix is appended to the file-safe symbol to form a data file name.
const FileSuffix = "_ohlcv.csv"

// Common base-asset aliases.
var baseAliases = map[string]string{
	"XBT":     "BTC",
	"BITCOIN": "BTC",
	"ETHER":   "ETH",
	"XDG":     "DOGE",
}

// NormalizeSymbol normalizes user input to the canonical BASE/QUOTE form.
// It uppercases, strips a leading $, accepts '-' or '_' as the pair
// separator and resolves base aliases. Symbols without a separator are
// returned uppercased.
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	symbol = strings.TrimPrefix(symbol, "$")
	symbol = strings.NewReplacer("-", "/", "_", "/").Replace(symbol)

	base, quote, ok := strings.Cut(symbol, "/")
	if canonical, found := baseAliases[base]; found {
		base = canonical
	}
	if !ok {
		return base
	}
	return base + "/" + quote
}

// SymbolToFilename maps a symbol to its data file name: every '/'
// becomes '_' and FileSuffix is appended. "BTC/USDT" → "BTC_USDT_ohlcv.csv".
func SymbolToFilename(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "_") + FileSuffix
}

// FilenameToSymbol reverses SymbolToFilename. The second result is false
// when name does not carry FileSuffix.
func FilenameToSymbol(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, FileSuffix)
	if !ok || base == "" {
		return "", false
	}
	return strings.ReplaceAll(base, "_", "/"), true
}

// SymbolFilenames lists the file names to try for a symbol, most specific
// first: the symbol as given, then its normalized spelling.
func SymbolFilenames(symbol string) []string {
	primary := SymbolToFilename(strings.TrimSpace(symbol))
	alt := SymbolToFilename(NormalizeSymbol(symbol))
	if alt == primary {
		return []string{primary}
	}
	return []string{primary, alt}
}
