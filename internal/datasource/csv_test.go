package datasource

import (
	"strings"
	"testing"
)

const sampleCSV = `date,open,high,low,close,volume
2024-01-01,100,102,99,101,1500
2024-01-02,101,103,100,102,1600
2024-01-03,102,104,101,103,1700
`

func TestParseOHLCV(t *testing.T) {
	candles, skipped, err := ParseOHLCV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseOHLCV error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped: got %d, want 0", skipped)
	}
	if len(candles) != 3 {
		t.Fatalf("candles: got %d, want 3", len(candles))
	}
	first := candles[0]
	if first.Date != "2024-01-01" || first.Open != 100 || first.High != 102 ||
		first.Low != 99 || first.Close != 101 || first.Volume != 1500 {
		t.Errorf("first candle: got %+v", first)
	}
	if candles[2].Close != 103 {
		t.Errorf("last close: got %v, want 103", candles[2].Close)
	}
}

func TestParseOHLCVSkipsBadRows(t *testing.T) {
	input := `date,open,high,low,close,volume
2024-01-01,100,102,99,101,1500
2024-01-02,101,103,100
2024-01-03,abc,104,101,103,1700
2024-01-04,102,104,101,103,n/a

2024-01-05, 103 ,105,102,104,1800,extra
`
	candles, skipped, err := ParseOHLCV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseOHLCV error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("candles: got %d, want 2", len(candles))
	}
	if skipped != 3 {
		t.Errorf("skipped: got %d, want 3", skipped)
	}
	if candles[1].Date != "2024-01-05" || candles[1].Open != 103 {
		t.Errorf("row with extra field: got %+v", candles[1])
	}
}

func TestParseOHLCVHeaderOnly(t *testing.T) {
	candles, skipped, err := ParseOHLCV(strings.NewReader("date,open,high,low,close,volume\n"))
	if err != nil {
		t.Fatalf("ParseOHLCV error: %v", err)
	}
	if len(candles) != 0 || skipped != 0 {
		t.Errorf("got %d candles, %d skipped; want 0, 0", len(candles), skipped)
	}
}

func TestParseOHLCVHeaderAlwaysSkipped(t *testing.T) {
	// A numeric first line is still treated as the header.
	input := "2024-01-01,1,1,1,1,1\n2024-01-02,2,2,2,2,2\n"
	candles, _, err := ParseOHLCV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseOHLCV error: %v", err)
	}
	if len(candles) != 1 || candles[0].Date != "2024-01-02" {
		t.Errorf("got %+v, want only the second row", candles)
	}
}

func TestParseOHLCVEmptyInput(t *testing.T) {
	candles, _, err := ParseOHLCV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseOHLCV error: %v", err)
	}
	if len(candles) != 0 {
		t.Errorf("got %d candles, want 0", len(candles))
	}
}
