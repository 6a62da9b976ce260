// Package models defines the core data structures used throughout derivx.
package models

// OHLCV represents a single candlestick bar of price data.
// Date is kept as the raw string from the source file.
type OHLCV struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}
