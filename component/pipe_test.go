package component

import (
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/state"
)

func TestPipeFlowFollowsHeadDifference(t *testing.T) {
	p, err := NewPipe("pipe-1", state.NewParameters(map[string]float64{
		"diameter":        0.5,
		"length":          100,
		"friction_factor": 0.02,
	}), nil)
	if err != nil {
		t.Fatalf("NewPipe: %v", err)
	}

	low := p.Step(state.Action{"upstream_head": 10, "downstream_head": 9}, 1.0)
	high := p.Step(state.Action{"upstream_head": 20, "downstream_head": 9}, 1.0)
	if high.GetOr("flow", 0) <= low.GetOr("flow", -1) {
		t.Fatalf("flow did not increase with head difference: low=%v high=%v", low.GetOr("flow", 0), high.GetOr("flow", 0))
	}
}

func TestPipeNoReverseFlow(t *testing.T) {
	p, err := NewPipe("pipe-2", state.NewParameters(map[string]float64{
		"diameter":        0.5,
		"length":          100,
		"friction_factor": 0.02,
	}), nil)
	if err != nil {
		t.Fatalf("NewPipe: %v", err)
	}

	st := p.Step(state.Action{"upstream_head": 5, "downstream_head": 10}, 1.0)
	if st.GetOr("flow", -1) != 0 {
		t.Fatalf("flow = %v, want 0 when downstream head exceeds upstream head", st.GetOr("flow", -1))
	}
}

func TestNewPipeRejectsInvalidParameters(t *testing.T) {
	cases := []map[string]float64{
		{"diameter": 0, "length": 100, "friction_factor": 0.02},
		{"diameter": 0.5, "length": 0, "friction_factor": 0.02},
		{"diameter": 0.5, "length": 100, "friction_factor": 0},
	}
	for _, params := range cases {
		if _, err := NewPipe("bad-pipe", state.NewParameters(params), nil); err == nil {
			t.Fatalf("expected InvalidParameter error for params %v", params)
		}
	}
}
