package component

import (
	"math"
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

func TestTurbinePowerFollowsHeadAndFlow(t *testing.T) {
	turb, err := NewTurbine("turbine-1", state.NewParameters(map[string]float64{
		"capacity":           5.0,
		"efficiency":         0.9,
		"max_rate_of_change": 1.0,
	}), state.State{"opening": 1.0})
	if err != nil {
		t.Fatalf("NewTurbine: %v", err)
	}

	low := turb.Step(state.Action{"control_signal": 1.0, "inflow": 100, "upstream_head": 20, "downstream_head": 18}, 1.0)
	high := turb.Step(state.Action{"control_signal": 1.0, "inflow": 100, "upstream_head": 40, "downstream_head": 18}, 1.0)
	if high.GetOr("power_w", 0) <= low.GetOr("power_w", -1) {
		t.Fatalf("power did not increase with head: low=%v high=%v", low.GetOr("power_w", 0), high.GetOr("power_w", 0))
	}
}

func TestTurbineOutflowBoundedByAvailableInflow(t *testing.T) {
	turb, err := NewTurbine("turbine-2", state.NewParameters(map[string]float64{
		"capacity":           10.0,
		"efficiency":         0.9,
		"max_rate_of_change": 1.0,
	}), state.State{"opening": 1.0})
	if err != nil {
		t.Fatalf("NewTurbine: %v", err)
	}

	st := turb.Step(state.Action{"control_signal": 1.0, "inflow": 0.5, "upstream_head": 20, "downstream_head": 5}, 1.0)
	if outflow := st.GetOr("outflow", -1); outflow > 0.5+1e-9 {
		t.Fatalf("outflow %v exceeds available inflow 0.5", outflow)
	}
}

func TestTurbineNegativeHeadProducesNoPower(t *testing.T) {
	turb, err := NewTurbine("turbine-3", state.NewParameters(map[string]float64{
		"capacity":           5.0,
		"efficiency":         0.9,
		"max_rate_of_change": 1.0,
	}), state.State{"opening": 1.0})
	if err != nil {
		t.Fatalf("NewTurbine: %v", err)
	}

	st := turb.Step(state.Action{"control_signal": 1.0, "inflow": 100, "upstream_head": 5, "downstream_head": 20}, 1.0)
	if power := st.GetOr("power_w", -1); power != 0 {
		t.Fatalf("power_w = %v, want 0 when downstream head exceeds upstream head", power)
	}
}

func TestTurbineOnMessageUpdatesTargetOpening(t *testing.T) {
	turb, err := NewTurbine("turbine-4", state.NewParameters(map[string]float64{
		"capacity":           5.0,
		"efficiency":         0.9,
		"max_rate_of_change": 1.0,
	}), state.State{"opening": 0})
	if err != nil {
		t.Fatalf("NewTurbine: %v", err)
	}

	msg := bus.NewMessage("action/turbine-4", "controller").Set("target_opening", 0.6)
	turb.OnMessage(msg)

	st := turb.Step(state.Action{"inflow": 100, "upstream_head": 20, "downstream_head": 5}, 1.0)
	if opening := st.GetOr("opening", -1); math.Abs(opening-0.6) > 1e-9 {
		t.Fatalf("opening = %v, want 0.6 after OnMessage + full-rate step", opening)
	}
}

func TestNewTurbineRejectsInvalidParameters(t *testing.T) {
	cases := []map[string]float64{
		{"capacity": 0, "efficiency": 0.9, "max_rate_of_change": 1.0},
		{"capacity": 5, "efficiency": 1.5, "max_rate_of_change": 1.0},
		{"capacity": 5, "efficiency": 0.9, "max_rate_of_change": 0},
	}
	for _, params := range cases {
		if _, err := NewTurbine("bad-turbine", state.NewParameters(params), nil); err == nil {
			t.Fatalf("expected InvalidParameter error for params %v", params)
		}
	}
}
