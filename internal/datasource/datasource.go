// Package datasource loads OHLCV series for the volatility estimator.
// Series are CSV files named <SYMBOL>_ohlcv.csv, read from a local
// directory or an S3-compatible bucket, and cached per symbol by Store.
package datasource

import (
	"context"
	"fmt"
	"io"
)

// SeriesSource is a location that holds OHLCV CSV files.
type SeriesSource interface {
	// Name returns a short human-readable name for logs and /api/symbols.
	Name() string

	// Open returns the named file's contents. It returns ErrSymbolNotFound
	// when the file does not exist.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)

	// List returns the file names available in the source.
	List(ctx context.Context) ([]string, error)
}

// --- Sentinel errors ---

// ErrSymbolNotFound is returned when no data file exists for a symbol.
var ErrSymbolNotFound = fmt.Errorf("no data found for symbol")

// ErrEmptySeries is returned when a data file parses to zero candles.
var ErrEmptySeries = fmt.Errorf("data file contains no valid candles")

// NotFoundError reports the symbol that could not be resolved.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No data found for symbol: %s", e.Symbol)
}

// Unwrap lets errors.Is match ErrSymbolNotFound.
func (e *NotFoundError) Unwrap() error { return ErrSymbolNotFound }
