// Package component implements the physical models that make up a
// hydraulic network: reservoirs, gates, canals, pipes, pumps, valves
// and turbines. Every component holds exactly one state.State, mutated
// by its own Step and, from outside, only through the SetState side
// channel.
package component

import (
	"math"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// Gravity is the standard gravitational acceleration used by every
// orifice and pipe-flow formula in this package.
const Gravity = 9.81

// Component is the public contract every physical model satisfies.
type Component interface {
	ID() string
	Parameters() state.Parameters
	GetState() state.State
	Step(action state.Action, dt float64) state.State
	SetInflow(value float64)
	SetState(key string, value float64)
}

// MessageReceiver is implemented by bus-driven components (gates, pumps,
// valves, turbines): on receiving an action message they update a
// target_* field, realized by the next Step subject to rate limits.
type MessageReceiver interface {
	OnMessage(msg *bus.Message)
}

// Base carries the fields and bookkeeping every component shares: its
// ID, its parameters, its current state, a harness-installed inflow
// side-channel, and a diagnostics recorder for non-fatal faults such as
// an ill-formed action.
type Base struct {
	id        string
	params    state.Parameters
	st        state.State
	extraFlow float64
	Recorder  diag.Recorder
}

// NewBase constructs a Base with the given ID, parameters and initial state.
func NewBase(id string, params state.Parameters, initial state.State) Base {
	if initial == nil {
		initial = state.New()
	}
	return Base{id: id, params: params.Clone(), st: initial}
}

func (b *Base) ID() string { return b.id }

func (b *Base) Parameters() state.Parameters { return b.params.Clone() }

func (b *Base) GetState() state.State { return b.st.Clone() }

func (b *Base) SetState(key string, value float64) { b.st.Set(key, value) }

// SetInflow is the harness-only side channel disturbance agents use to
// add inflow independent of the topology-derived inflow
// carried in the action mapping. It accumulates across calls within a
// tick and is drained by the next Step.
func (b *Base) SetInflow(value float64) { b.extraFlow += value }

func (b *Base) drainExtraInflow() float64 {
	v := b.extraFlow
	b.extraFlow = 0
	return v
}

func (b *Base) recordFault(f *diag.Fault) {
	if b.Recorder != nil {
		b.Recorder.Record(f)
	}
}

// requireAction reads a required action field, recording a HandlerFault
// and substituting zero if the key is missing, per §4.2's "ill-formed
// action" failure semantics.
func (b *Base) requireAction(action state.Action, key string) float64 {
	if !action.Has(key) {
		b.recordFault(diag.New(diag.HandlerFault, "missing required action key "+key).WithID(b.id))
		return 0
	}
	return action.Get(key)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rateLimit moves current toward target by at most maxDelta in either
// direction, the shared actuation rule for gates, pumps, valves and turbines.
func rateLimit(current, target, maxDelta float64) float64 {
	delta := target - current
	if delta > maxDelta {
		delta = maxDelta
	} else if delta < -maxDelta {
		delta = -maxDelta
	}
	return current + delta
}

// orificeFlow computes clamped orifice discharge; no reverse flow.
func orificeFlow(dischargeCoeff, area, headUp, headDown float64) float64 {
	if headUp <= headDown {
		return 0
	}
	return dischargeCoeff * area * math.Sqrt(2*Gravity*(headUp-headDown))
}
