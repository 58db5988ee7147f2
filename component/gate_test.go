package component

import (
	"math"
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/state"
)

func TestGateOpeningBoundsAndRateLimit(t *testing.T) {
	g, err := NewGate("gate-1", state.NewParameters(map[string]float64{
		"width":                 10,
		"discharge_coefficient": 0.6,
		"max_rate_of_change":    0.1,
		"max_opening":           1.0,
	}), state.State{"opening": 0.5})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	dt := 1.0
	prevOpening := 0.5
	action := state.Action{"control_signal": 1.0, "upstream_head": 14, "downstream_head": 12}

	for i := 0; i < 10; i++ {
		st := g.Step(action, dt)
		opening := st.GetOr("opening", -1)
		if opening < 0 || opening > 1.0 {
			t.Fatalf("tick %d: opening %v out of [0, max_opening]", i, opening)
		}
		if diff := math.Abs(opening - prevOpening); diff > 0.1*dt+1e-9 {
			t.Fatalf("tick %d: opening changed by %v, exceeds max_rate_of_change*dt", i, diff)
		}
		prevOpening = opening
	}
}

func TestGateNoReverseFlow(t *testing.T) {
	g, err := NewGate("gate-2", state.NewParameters(map[string]float64{
		"width":                 10,
		"discharge_coefficient": 0.6,
		"max_rate_of_change":    1.0,
	}), state.State{"opening": 1.0})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	st := g.Step(state.Action{"control_signal": 1.0, "upstream_head": 10, "downstream_head": 12}, 1.0)
	if st.GetOr("outflow", -1) != 0 {
		t.Fatalf("outflow = %v, want 0 when downstream head exceeds upstream head", st.GetOr("outflow", -1))
	}
}

func TestNewGateRejectsInvalidParameters(t *testing.T) {
	if _, err := NewGate("bad-gate", state.NewParameters(map[string]float64{
		"width":                 0,
		"discharge_coefficient": 0.6,
		"max_rate_of_change":    0.1,
	}), nil); err == nil {
		t.Fatalf("expected InvalidParameter error for width=0")
	}
}
