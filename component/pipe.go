package component

import (
	"math"

	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// Pipe models pressurized pipe flow: Q = C * sqrt(max(0, h_up - h_down)),
// with C = A * sqrt(2g*D / (f*L)). No reverse flow.
type Pipe struct {
	Base

	Coefficient float64
}

// NewPipe validates parameters and constructs a Pipe.
func NewPipe(id string, params state.Parameters, initial state.State) (*Pipe, error) {
	diameter := params.GetOr("diameter", 0)
	length := params.GetOr("length", 0)
	friction := params.GetOr("friction_factor", 0)
	if diameter <= 0 {
		return nil, diag.New(diag.InvalidParameter, "diameter must be > 0").WithID(id)
	}
	if length <= 0 {
		return nil, diag.New(diag.InvalidParameter, "length must be > 0").WithID(id)
	}
	if friction <= 0 {
		return nil, diag.New(diag.InvalidParameter, "friction_factor must be > 0").WithID(id)
	}
	area := math.Pi * diameter * diameter / 4

	return &Pipe{
		Base:        NewBase(id, params, initial),
		Coefficient: area * math.Sqrt(2*Gravity*diameter/(friction*length)),
	}, nil
}

// Step computes orifice-like pipe flow from upstream and downstream head.
func (p *Pipe) Step(action state.Action, dt float64) state.State {
	headUp := action.Get("upstream_head")
	headDown := action.Get("downstream_head")

	var flow float64
	if diff := headUp - headDown; diff > 0 {
		flow = p.Coefficient * math.Sqrt(diff)
	}
	p.st.Set("flow", flow)
	p.st.Set("outflow", flow)
	return p.GetState()
}
