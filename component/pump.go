package component

import (
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// Pump models a rate-limited fractional pump: flow is capacity times the
// realized opening, bounded by upstream availability.
type Pump struct {
	Base

	Capacity        float64 // m^3/s at opening = 1
	MaxRateOfChange float64

	targetOpening float64
}

// NewPump validates parameters and constructs a Pump.
func NewPump(id string, params state.Parameters, initial state.State) (*Pump, error) {
	capacity := params.GetOr("capacity", 0)
	if capacity <= 0 {
		return nil, diag.New(diag.InvalidParameter, "capacity must be > 0").WithID(id)
	}
	maxRate := params.GetOr("max_rate_of_change", 0)
	if maxRate <= 0 {
		return nil, diag.New(diag.InvalidParameter, "max_rate_of_change must be > 0").WithID(id)
	}

	p := &Pump{
		Base:            NewBase(id, params, initial),
		Capacity:        capacity,
		MaxRateOfChange: maxRate,
	}
	p.targetOpening = clamp(p.st.GetOr("opening", 0), 0, 1)
	return p, nil
}

// OnMessage updates the target opening from an action-topic message.
func (p *Pump) OnMessage(msg *bus.Message) {
	if v, ok := msg.Float("target_opening"); ok {
		p.targetOpening = clamp(v, 0, 1)
		return
	}
	if v, ok := msg.Float("control_signal"); ok {
		p.targetOpening = clamp(v, 0, 1)
	}
}

// Step moves opening toward its target subject to the rate limit, then
// computes flow as capacity * opening, capped by upstream availability.
func (p *Pump) Step(action state.Action, dt float64) state.State {
	target := p.targetOpening
	if action.Has("control_signal") {
		target = clamp(action.Get("control_signal"), 0, 1)
	}

	opening := p.st.GetOr("opening", 0)
	opening = clamp(rateLimit(opening, target, p.MaxRateOfChange*dt), 0, 1)

	available := action.Get("inflow") + p.drainExtraInflow()
	flow := p.Capacity * opening
	if flow > available {
		flow = available
	}
	if flow < 0 {
		flow = 0
	}

	p.st.Set("opening", opening)
	p.st.Set("outflow", flow)
	return p.GetState()
}
