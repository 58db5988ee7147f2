package component

import (
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// waterDensityKgM3 and the package-level Gravity give the turbine's
// hydraulic power output in watts.
const waterDensityKgM3 = 1000.0

// Turbine models a rate-limited hydropower turbine: flow is capacity
// times realized opening, bounded by upstream availability; power output
// follows from flow, head and efficiency.
type Turbine struct {
	Base

	Capacity        float64 // m^3/s at opening = 1
	Efficiency      float64 // 0..1
	MaxRateOfChange float64

	targetOpening float64
}

// NewTurbine validates parameters and constructs a Turbine.
func NewTurbine(id string, params state.Parameters, initial state.State) (*Turbine, error) {
	capacity := params.GetOr("capacity", 0)
	if capacity <= 0 {
		return nil, diag.New(diag.InvalidParameter, "capacity must be > 0").WithID(id)
	}
	efficiency := params.GetOr("efficiency", 0.9)
	if efficiency <= 0 || efficiency > 1 {
		return nil, diag.New(diag.InvalidParameter, "efficiency must be in (0, 1]").WithID(id)
	}
	maxRate := params.GetOr("max_rate_of_change", 0)
	if maxRate <= 0 {
		return nil, diag.New(diag.InvalidParameter, "max_rate_of_change must be > 0").WithID(id)
	}

	t := &Turbine{
		Base:            NewBase(id, params, initial),
		Capacity:        capacity,
		Efficiency:      efficiency,
		MaxRateOfChange: maxRate,
	}
	t.targetOpening = clamp(t.st.GetOr("opening", 0), 0, 1)
	return t, nil
}

// OnMessage updates the target opening from an action-topic message.
func (t *Turbine) OnMessage(msg *bus.Message) {
	if v, ok := msg.Float("target_opening"); ok {
		t.targetOpening = clamp(v, 0, 1)
		return
	}
	if v, ok := msg.Float("control_signal"); ok {
		t.targetOpening = clamp(v, 0, 1)
	}
}

// Step moves opening toward its target subject to the rate limit, then
// computes flow (capped by upstream availability) and generated power.
func (t *Turbine) Step(action state.Action, dt float64) state.State {
	target := t.targetOpening
	if action.Has("control_signal") {
		target = clamp(action.Get("control_signal"), 0, 1)
	}

	opening := t.st.GetOr("opening", 0)
	opening = clamp(rateLimit(opening, target, t.MaxRateOfChange*dt), 0, 1)

	available := action.Get("inflow") + t.drainExtraInflow()
	flow := t.Capacity * opening
	if flow > available {
		flow = available
	}
	if flow < 0 {
		flow = 0
	}

	head := action.Get("upstream_head") - action.Get("downstream_head")
	if head < 0 {
		head = 0
	}
	powerWatts := t.Efficiency * waterDensityKgM3 * Gravity * flow * head

	t.st.Set("opening", opening)
	t.st.Set("outflow", flow)
	t.st.Set("power_w", powerWatts)
	return t.GetState()
}
