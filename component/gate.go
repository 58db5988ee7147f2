package component

import (
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// Gate models a sluice gate: a rate-limited opening driving orifice flow.
type Gate struct {
	Base

	Width                float64
	DischargeCoefficient float64
	MaxOpening           float64
	MaxRateOfChange      float64

	targetOpening float64
}

// NewGate validates parameters and constructs a Gate.
func NewGate(id string, params state.Parameters, initial state.State) (*Gate, error) {
	width := params.GetOr("width", 0)
	if width <= 0 {
		return nil, diag.New(diag.InvalidParameter, "width must be > 0").WithID(id)
	}
	cd := params.GetOr("discharge_coefficient", 0)
	if cd <= 0 {
		return nil, diag.New(diag.InvalidParameter, "discharge_coefficient must be > 0").WithID(id)
	}
	maxOpening := params.GetOr("max_opening", 1.0)
	maxRate := params.GetOr("max_rate_of_change", 0)
	if maxRate <= 0 {
		return nil, diag.New(diag.InvalidParameter, "max_rate_of_change must be > 0").WithID(id)
	}

	g := &Gate{
		Base:                 NewBase(id, params, initial),
		Width:                width,
		DischargeCoefficient: cd,
		MaxOpening:           maxOpening,
		MaxRateOfChange:      maxRate,
	}
	g.targetOpening = clamp(g.st.GetOr("opening", 0), 0, maxOpening)
	return g, nil
}

// OnMessage updates the target opening from an action-topic message
// carrying a "target_opening" or "control_signal" field.
func (g *Gate) OnMessage(msg *bus.Message) {
	if v, ok := msg.Float("target_opening"); ok {
		g.targetOpening = clamp(v, 0, g.MaxOpening)
		return
	}
	if v, ok := msg.Float("control_signal"); ok {
		g.targetOpening = clamp(v, 0, g.MaxOpening)
	}
}

// Step moves opening toward its target by at most
// max_rate_of_change * dt, then computes orifice outflow, clamped
// non-negative with no reverse flow.
func (g *Gate) Step(action state.Action, dt float64) state.State {
	target := g.targetOpening
	if action.Has("control_signal") {
		target = clamp(action.Get("control_signal"), 0, g.MaxOpening)
	}

	opening := g.st.GetOr("opening", 0)
	opening = clamp(rateLimit(opening, target, g.MaxRateOfChange*dt), 0, g.MaxOpening)

	headUp := action.Get("upstream_head")
	headDown := action.Get("downstream_head")
	outflow := orificeFlow(g.DischargeCoefficient, g.Width*opening, headUp, headDown)

	g.st.Set("opening", opening)
	g.st.Set("outflow", outflow)
	return g.GetState()
}
