package agent

import (
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

type fakeSource struct{ st state.State }

func (f fakeSource) GetState() state.State { return f.st.Clone() }

func TestDigitalTwinAgentSmoothsOnlyConfiguredKeys(t *testing.T) {
	b := bus.New()
	src := fakeSource{st: state.State{"water_level": 10, "outflow": 5}}
	var got *bus.Message
	b.Subscribe("state.reservoir", func(m *bus.Message) { got = m })

	a := NewDigitalTwinAgent("twin-1", b, src, "state.reservoir", SmoothingConfig{
		Alpha: 0.5,
		Keys:  map[string]bool{"water_level": true},
	})

	a.Run(0)
	if v, _ := got.Float("water_level"); v != 10 {
		t.Fatalf("first sample should pass through unchanged: got %v", v)
	}
	if v, _ := got.Float("outflow"); v != 5 {
		t.Fatalf("unconfigured key should never be smoothed: got %v", v)
	}

	src.st["water_level"] = 20
	a.Run(1)
	if v, _ := got.Float("water_level"); v != 15 {
		t.Fatalf("EMA(alpha=0.5) of 10->20 should be 15, got %v", v)
	}
	if v, _ := got.Float("outflow"); v != 5 {
		t.Fatalf("unconfigured key should still pass through unchanged: got %v", v)
	}
}
