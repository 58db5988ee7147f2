package component

import (
	"math"
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

func TestValveRateLimitAndNoReverseFlow(t *testing.T) {
	v, err := NewValve("valve-1", state.NewParameters(map[string]float64{
		"flow_coefficient":   5.0,
		"max_rate_of_change": 0.2,
	}), state.State{"opening": 0})
	if err != nil {
		t.Fatalf("NewValve: %v", err)
	}

	dt := 1.0
	prevOpening := 0.0
	action := state.Action{"control_signal": 1.0, "upstream_head": 10, "downstream_head": 2}
	for i := 0; i < 3; i++ {
		st := v.Step(action, dt)
		opening := st.GetOr("opening", -1)
		if diff := math.Abs(opening - prevOpening); diff > 0.2*dt+1e-9 {
			t.Fatalf("tick %d: opening changed by %v, exceeds max_rate_of_change*dt", i, diff)
		}
		prevOpening = opening
	}

	st := v.Step(state.Action{"control_signal": 1.0, "upstream_head": 2, "downstream_head": 10}, dt)
	if outflow := st.GetOr("outflow", -1); outflow != 0 {
		t.Fatalf("outflow = %v, want 0 when downstream head exceeds upstream head", outflow)
	}
}

func TestValveOnMessageUpdatesTargetOpening(t *testing.T) {
	v, err := NewValve("valve-2", state.NewParameters(map[string]float64{
		"flow_coefficient":   5.0,
		"max_rate_of_change": 1.0,
	}), state.State{"opening": 0})
	if err != nil {
		t.Fatalf("NewValve: %v", err)
	}

	msg := bus.NewMessage("action/valve-2", "controller").Set("control_signal", 0.4)
	v.OnMessage(msg)

	st := v.Step(state.Action{"upstream_head": 10, "downstream_head": 5}, 1.0)
	if opening := st.GetOr("opening", -1); math.Abs(opening-0.4) > 1e-9 {
		t.Fatalf("opening = %v, want 0.4 after OnMessage + full-rate step", opening)
	}
}

func TestNewValveRejectsInvalidParameters(t *testing.T) {
	if _, err := NewValve("bad-valve", state.NewParameters(map[string]float64{
		"flow_coefficient":   0,
		"max_rate_of_change": 0.1,
	}), nil); err == nil {
		t.Fatalf("expected InvalidParameter error for flow_coefficient=0")
	}
}
