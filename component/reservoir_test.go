package component

import (
	"math"
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/state"
)

func TestReservoirMassBalance(t *testing.T) {
	r, err := NewReservoir("res-1", state.NewParameters(map[string]float64{
		"surface_area": 1.5e6,
		"max_volume":   1e8,
	}), state.State{"water_level": 14.0})
	if err != nil {
		t.Fatalf("NewReservoir: %v", err)
	}

	dt := 1.0
	var totalIn, totalOut float64
	startVolume := r.GetState().GetOr("volume", 0)

	for i := 0; i < 100; i++ {
		action := state.Action{"inflow": 5.0, "outflow": 3.0}
		totalIn += action["inflow"] * dt
		st := r.Step(action, dt)
		totalOut += st.GetOr("outflow", 0) * dt
	}

	endVolume := r.GetState().GetOr("volume", 0)
	deltaVolume := endVolume - startVolume
	tolerance := 1e-6 * r.MaxVolume

	if math.Abs((totalIn-totalOut)-deltaVolume) > tolerance {
		t.Fatalf("mass balance violated: in=%v out=%v delta=%v", totalIn, totalOut, deltaVolume)
	}
}

func TestReservoirVolumeNeverNegative(t *testing.T) {
	r, err := NewReservoir("res-2", state.NewParameters(map[string]float64{
		"surface_area": 100,
		"max_volume":   1000,
	}), state.State{"volume": 10})
	if err != nil {
		t.Fatalf("NewReservoir: %v", err)
	}

	for i := 0; i < 5; i++ {
		st := r.Step(state.Action{"inflow": 0, "outflow": 1000}, 1.0)
		if st.GetOr("volume", -1) < 0 {
			t.Fatalf("tick %d: volume went negative: %v", i, st)
		}
	}
}

func TestReservoirVolumeClampedAtMax(t *testing.T) {
	r, err := NewReservoir("res-3", state.NewParameters(map[string]float64{
		"surface_area": 100,
		"max_volume":   1000,
	}), state.State{"volume": 990})
	if err != nil {
		t.Fatalf("NewReservoir: %v", err)
	}

	st := r.Step(state.Action{"inflow": 1000, "outflow": 0}, 1.0)
	if st.GetOr("volume", -1) != 1000 {
		t.Fatalf("volume = %v, want clamped to max_volume 1000", st.GetOr("volume", -1))
	}
}
