package component

import (
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// Valve models a rate-limited fractional valve: orifice-like flow gated
// by opening, with no reverse flow.
type Valve struct {
	Base

	FlowCoefficient float64 // Cv
	MaxRateOfChange float64

	targetOpening float64
}

// NewValve validates parameters and constructs a Valve.
func NewValve(id string, params state.Parameters, initial state.State) (*Valve, error) {
	cv := params.GetOr("flow_coefficient", 0)
	if cv <= 0 {
		return nil, diag.New(diag.InvalidParameter, "flow_coefficient must be > 0").WithID(id)
	}
	maxRate := params.GetOr("max_rate_of_change", 0)
	if maxRate <= 0 {
		return nil, diag.New(diag.InvalidParameter, "max_rate_of_change must be > 0").WithID(id)
	}

	v := &Valve{
		Base:            NewBase(id, params, initial),
		FlowCoefficient: cv,
		MaxRateOfChange: maxRate,
	}
	v.targetOpening = clamp(v.st.GetOr("opening", 0), 0, 1)
	return v, nil
}

// OnMessage updates the target opening from an action-topic message.
func (v *Valve) OnMessage(msg *bus.Message) {
	if val, ok := msg.Float("target_opening"); ok {
		v.targetOpening = clamp(val, 0, 1)
		return
	}
	if val, ok := msg.Float("control_signal"); ok {
		v.targetOpening = clamp(val, 0, 1)
	}
}

// Step moves opening toward its target subject to the rate limit, then
// computes orifice flow gated by that opening.
func (v *Valve) Step(action state.Action, dt float64) state.State {
	target := v.targetOpening
	if action.Has("control_signal") {
		target = clamp(action.Get("control_signal"), 0, 1)
	}

	opening := v.st.GetOr("opening", 0)
	opening = clamp(rateLimit(opening, target, v.MaxRateOfChange*dt), 0, 1)

	headUp := action.Get("upstream_head")
	headDown := action.Get("downstream_head")
	flow := orificeFlow(v.FlowCoefficient, opening, headUp, headDown)

	v.st.Set("opening", opening)
	v.st.Set("outflow", flow)
	return v.GetState()
}
