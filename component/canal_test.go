package component

import (
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

func TestCanalIntegralDelayDelaysInflow(t *testing.T) {
	c, err := NewCanal("canal-1", CanalIntegralDelay, state.NewParameters(map[string]float64{
		"surface_area": 100,
		"delay_steps":  3,
	}), state.State{"inflow": 0})
	if err != nil {
		t.Fatalf("NewCanal: %v", err)
	}

	// For the first delay_steps ticks, the canal should still see the
	// zero-valued backlog rather than the newly injected inflow.
	volumes := make([]float64, 0, 4)
	for i := 0; i < 4; i++ {
		st := c.Step(state.Action{"inflow": 10, "outflow": 0}, 1.0)
		volumes = append(volumes, st.GetOr("volume", -1))
	}
	if volumes[0] != 0 {
		t.Fatalf("tick 0 volume = %v, want 0 (inflow still delayed)", volumes[0])
	}
	if volumes[3] <= volumes[0] {
		t.Fatalf("volume did not rise once the delayed inflow arrived: %v", volumes)
	}
}

func TestCanalStVenantRefusesDirectStep(t *testing.T) {
	c, err := NewCanal("canal-sv", CanalStVenant, state.NewParameters(nil), nil)
	if err != nil {
		t.Fatalf("NewCanal: %v", err)
	}
	rec := &captureRecorder{}
	c.Recorder = rec

	st := c.Step(state.Action{"inflow": 5}, 1.0)
	if len(rec.faults) != 1 || rec.faults[0].Kind != diag.StepFault {
		t.Fatalf("expected a StepFault when stepping a st_venant canal directly, got %+v", rec.faults)
	}
	if len(st) != 0 {
		t.Fatalf("st_venant canal state mutated by an ordinary Step call")
	}
}

func TestCanalLinearReservoirRouting(t *testing.T) {
	c, err := NewCanal("canal-lr", CanalLinearReservoir, state.NewParameters(map[string]float64{
		"storage_constant": 10,
	}), state.State{"volume": 100})
	if err != nil {
		t.Fatalf("NewCanal: %v", err)
	}

	st := c.Step(state.Action{"inflow": 5}, 1.0)
	wantOutflow := 100.0 / 10.0
	if got := st.GetOr("outflow", -1); got != wantOutflow {
		t.Fatalf("outflow = %v, want %v", got, wantOutflow)
	}
}

type captureRecorder struct {
	faults []*diag.Fault
}

func (c *captureRecorder) Record(f *diag.Fault) {
	c.faults = append(c.faults, f)
}
