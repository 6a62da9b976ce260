package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/seenimoa/derivx/pkg/models"
)

// ohlcvFields is the column count of a data row: date,open,high,low,close,volume.
const ohlcvFields = 6

// ParseOHLCV reads candles from CSV in the order they appear. The first
// line is a header and is always skipped. Rows with fewer than six fields
// or a non-numeric price or volume are skipped and counted.
func ParseOHLCV(r io.Reader) (candles []models.OHLCV, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				// Malformed quoting only spoils the current row.
				if header {
					header = false
				} else {
					skipped++
				}
				continue
			}
			return nil, skipped, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		c, ok := parseRow(rec)
		if !ok {
			skipped++
			continue
		}
		candles = append(candles, c)
	}
	return candles, skipped, nil
}

func parseRow(rec []string) (models.OHLCV, bool) {
	if len(rec) < ohlcvFields {
		return models.OHLCV{}, false
	}
	var vals [ohlcvFields - 1]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			return models.OHLCV{}, false
		}
		vals[i] = v
	}
	return models.OHLCV{
		Date:   strings.TrimSpace(rec[0]),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true
}
