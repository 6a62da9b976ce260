package derivatives

import (
	"errors"
	"testing"

	"github.com/seenimoa/derivx/pkg/models"
)

func TestAutoPriceRange(t *testing.T) {
	tests := []struct {
		name         string
		legs         []models.OptionContract
		wantLo, want float64
	}{
		{"empty", nil, 0, 200},
		{"single", []models.OptionContract{{Strike: 100}}, 50, 150},
		{"spread", []models.OptionContract{{Strike: 110}, {Strike: 90}}, 45, 165},
	}
	for _, tt := range tests {
		lo, hi := AutoPriceRange(tt.legs)
		if lo != tt.wantLo || hi != tt.want {
			t.Errorf("%s: got [%v, %v], want [%v, %v]", tt.name, lo, hi, tt.wantLo, tt.want)
		}
	}
}

func TestNetPremium(t *testing.T) {
	legs := []models.OptionContract{
		{Side: models.Long, Premium: 3, Quantity: 2},
		{Side: models.Short, Premium: 1.5, Quantity: 1},
	}
	if got := NetPremium(legs); got != -4.5 {
		t.Errorf("NetPremium: got %v, want -4.5", got)
	}

	// Side alone sets the direction of the cash flow.
	legs[0].Quantity = -2
	legs[1].Quantity = -1
	if got := NetPremium(legs); got != -4.5 {
		t.Errorf("NetPremium with negative quantities: got %v, want -4.5", got)
	}
}

func TestSummarizeStraddle(t *testing.T) {
	legs := []models.OptionContract{
		{Kind: models.Call, Side: models.Long, Strike: 100, Premium: 3, Quantity: 1},
		{Kind: models.Put, Side: models.Long, Strike: 100, Premium: 2, Quantity: 1},
	}
	curve, err := PayoffCurve(legs, 0, 200, 201)
	if err != nil {
		t.Fatalf("PayoffCurve error: %v", err)
	}

	s := Summarize("Long Straddle", legs, curve)
	if s.Name != "Long Straddle" {
		t.Errorf("Name: got %q", s.Name)
	}
	if s.NetPremium != -5 {
		t.Errorf("NetPremium: got %v, want -5", s.NetPremium)
	}
	if s.MaxLoss != 5 {
		t.Errorf("MaxLoss: got %v, want 5", s.MaxLoss)
	}
	if s.MaxProfit != 95 {
		t.Errorf("MaxProfit: got %v, want 95", s.MaxProfit)
	}
	if len(s.Breakevens) != 2 || s.Breakevens[0] != 95 || s.Breakevens[1] != 105 {
		t.Errorf("Breakevens: got %v, want [95 105]", s.Breakevens)
	}
	if len(s.Payoff) != 201 {
		t.Errorf("Payoff points: got %d, want 201", len(s.Payoff))
	}
}

func TestSummarizeInterpolatesBreakeven(t *testing.T) {
	legs := []models.OptionContract{{Kind: models.Call, Side: models.Long, Strike: 100, Premium: 2.5, Quantity: 1}}
	curve, _ := PayoffCurve(legs, 90, 110, 5) // 90, 95, 100, 105, 110
	s := Summarize("Long Call", legs, curve)
	if len(s.Breakevens) != 1 || !approxEqual(s.Breakevens[0], 102.5, 1e-12) {
		t.Errorf("Breakevens: got %v, want [102.5]", s.Breakevens)
	}
}

func TestSummarizeEmptyCurve(t *testing.T) {
	s := Summarize("Empty", nil, nil)
	if s.MaxProfit != 0 || s.MaxLoss != 0 || len(s.Breakevens) != 0 {
		t.Errorf("empty curve summary: got %+v", s)
	}
}

func TestBuildPresetStraddle(t *testing.T) {
	s, err := BuildPreset(PresetRequest{Preset: PresetStraddle}, atmQuote())
	if err != nil {
		t.Fatalf("BuildPreset error: %v", err)
	}
	if len(s.Legs) != 2 {
		t.Fatalf("legs: got %d, want 2", len(s.Legs))
	}

	debit := 2.4933768194 + 2.0832611958
	if !approxEqual(s.NetPremium, -debit, 1e-4) {
		t.Errorf("NetPremium: got %v, want %v", s.NetPremium, -debit)
	}
	if len(s.Breakevens) != 2 {
		t.Fatalf("Breakevens: got %v, want 2 values", s.Breakevens)
	}
	if !approxEqual(s.Breakevens[0], 100-debit, 1e-3) || !approxEqual(s.Breakevens[1], 100+debit, 1e-3) {
		t.Errorf("Breakevens: got %v, want [%v %v]", s.Breakevens, 100-debit, 100+debit)
	}
	if len(s.Payoff) != DefaultCurvePoints {
		t.Errorf("Payoff points: got %d, want %d", len(s.Payoff), DefaultCurvePoints)
	}
}

func TestBuildPresetIronCondor(t *testing.T) {
	s, err := BuildPreset(PresetRequest{Preset: PresetIronCondor, Width: 5, Quantity: 1}, atmQuote())
	if err != nil {
		t.Fatalf("BuildPreset error: %v", err)
	}
	if s.Name != "Iron Condor" || len(s.Legs) != 4 {
		t.Fatalf("got %q with %d legs", s.Name, len(s.Legs))
	}

	wantStrikes := []float64{90, 95, 105, 110}
	for i, leg := range s.Legs {
		if leg.Strike != wantStrikes[i] {
			t.Errorf("leg %d strike: got %v, want %v", i, leg.Strike, wantStrikes[i])
		}
		if leg.Premium <= 0 {
			t.Errorf("leg %d premium: got %v, want > 0", i, leg.Premium)
		}
	}

	credit := s.NetPremium
	if credit <= 0 {
		t.Fatalf("iron condor should open for a credit, got %v", credit)
	}
	if !approxEqual(s.MaxProfit, credit, 1e-9) {
		t.Errorf("MaxProfit: got %v, want %v", s.MaxProfit, credit)
	}
	if !approxEqual(s.MaxLoss, 5-credit, 1e-9) {
		t.Errorf("MaxLoss: got %v, want %v", s.MaxLoss, 5-credit)
	}
	if len(s.Breakevens) != 2 {
		t.Errorf("Breakevens: got %v, want 2 values", s.Breakevens)
	}
}

func TestBuildPresetScalesQuantity(t *testing.T) {
	one, err := BuildPreset(PresetRequest{Preset: PresetBullCallSpread, Width: 10}, atmQuote())
	if err != nil {
		t.Fatalf("BuildPreset error: %v", err)
	}
	three, err := BuildPreset(PresetRequest{Preset: PresetBullCallSpread, Width: 10, Quantity: 3}, atmQuote())
	if err != nil {
		t.Fatalf("BuildPreset error: %v", err)
	}
	if !approxEqual(three.NetPremium, 3*one.NetPremium, 1e-9) {
		t.Errorf("NetPremium x3: got %v, want %v", three.NetPremium, 3*one.NetPremium)
	}
}

func TestBuildPresetErrors(t *testing.T) {
	if _, err := BuildPreset(PresetRequest{Preset: "butterfly"}, atmQuote()); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("unknown preset: got %v, want ErrUnknownPreset", err)
	}
	if _, err := BuildPreset(PresetRequest{Preset: PresetIronCondor, Width: 60}, atmQuote()); !errors.Is(err, ErrInvalidWidth) {
		t.Errorf("wide condor: got %v, want ErrInvalidWidth", err)
	}
}

func TestPresetsAllBuild(t *testing.T) {
	for _, p := range Presets() {
		s, err := BuildPreset(PresetRequest{Preset: p}, atmQuote())
		if err != nil {
			t.Errorf("%s: %v", p, err)
			continue
		}
		if s.Name == "" || len(s.Legs) == 0 {
			t.Errorf("%s: got empty strategy %+v", p, s)
		}
	}
}
