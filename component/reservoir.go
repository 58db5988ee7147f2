package component

import (
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// Reservoir models a reservoir or lake: a volume balance clamped to
// [0, max_volume], with water_level derived either linearly from
// surface area or via an optional storage curve.
type Reservoir struct {
	Base

	SurfaceArea  float64 // m^2; used when StorageCurve is nil
	MaxVolume    float64
	EvapRate     float64      // volumetric evaporation rate, m^3/s
	StorageCurve *LookupTable // optional volume -> level table
}

// NewReservoir validates parameters and constructs a Reservoir.
func NewReservoir(id string, params state.Parameters, initial state.State) (*Reservoir, error) {
	surfaceArea := params.GetOr("surface_area", 0)
	if surfaceArea <= 0 {
		return nil, diag.New(diag.InvalidParameter, "surface_area must be > 0").WithID(id)
	}
	maxVolume := params.GetOr("max_volume", 0)
	if maxVolume <= 0 {
		return nil, diag.New(diag.InvalidParameter, "max_volume must be > 0").WithID(id)
	}

	r := &Reservoir{
		Base:        NewBase(id, params, initial),
		SurfaceArea: surfaceArea,
		MaxVolume:   maxVolume,
		EvapRate:    params.GetOr("evap_rate", 0),
	}
	if r.st.GetOr("volume", -1) < 0 {
		if lvl, ok := r.st.Get("water_level"); ok {
			r.st.Set("volume", lvl*surfaceArea)
		} else {
			r.st.Set("volume", 0)
		}
	}
	r.st.Set("water_level", r.st.GetOr("volume", 0)/r.levelDivisor())
	return r, nil
}

func (r *Reservoir) levelDivisor() float64 {
	if r.SurfaceArea <= 0 {
		return 1
	}
	return r.SurfaceArea
}

// Step advances the volume balance by dt:
//
//	volume <- clamp(volume + (inflow - outflow - evap) * dt, 0, max_volume)
//
// Requested outflow exceeding volume/dt is clamped so volume never goes
// negative.
func (r *Reservoir) Step(action state.Action, dt float64) state.State {
	inflow := action.Get("inflow") + r.drainExtraInflow()
	requestedOutflow := action.Get("outflow")

	volume := r.st.GetOr("volume", 0)
	maxOutflow := volume / dt
	outflow := requestedOutflow
	if outflow > maxOutflow {
		outflow = maxOutflow
	}
	if outflow < 0 {
		outflow = 0
	}

	newVolume := volume + (inflow-outflow-r.EvapRate)*dt
	newVolume = clamp(newVolume, 0, r.MaxVolume)

	var level float64
	if r.StorageCurve != nil {
		level = r.StorageCurve.Lookup(newVolume)
	} else {
		level = newVolume / r.levelDivisor()
	}

	r.st.Set("volume", newVolume)
	r.st.Set("water_level", level)
	r.st.Set("outflow", outflow)
	r.st.Set("inflow", inflow)
	return r.GetState()
}

// LookupTable is a piecewise-linear table used for volume-to-level
// storage curves where a constant surface area is too coarse.
type LookupTable struct {
	X []float64
	Y []float64
}

// Lookup returns the linearly interpolated Y for the given X, clamping
// to the table's bounds outside its range.
func (t *LookupTable) Lookup(x float64) float64 {
	if t == nil || len(t.X) == 0 {
		return 0
	}
	if x <= t.X[0] {
		return t.Y[0]
	}
	last := len(t.X) - 1
	if x >= t.X[last] {
		return t.Y[last]
	}
	for i := 1; i <= last; i++ {
		if x <= t.X[i] {
			x0, x1 := t.X[i-1], t.X[i]
			y0, y1 := t.Y[i-1], t.Y[i]
			frac := (x - x0) / (x1 - x0)
			return y0 + frac*(y1-y0)
		}
	}
	return t.Y[last]
}
