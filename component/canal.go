package component

import (
	"github.com/leixiaohui-1974/CHS-SDK/diag"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// CanalModel selects one of Canal's five interchangeable routing models.
type CanalModel string

const (
	CanalIntegral          CanalModel = "integral"
	CanalIntegralDelay     CanalModel = "integral_delay"
	CanalIntegralDelayZero CanalModel = "integral_delay_zero"
	CanalLinearReservoir   CanalModel = "linear_reservoir"
	CanalStVenant          CanalModel = "st_venant"
)

// NetworkSolver is the collaborator a st_venant Canal needs: it gathers
// every st_venant channel's equations each tick and solves the coupled
// system, then pushes the result back via UpdateState. The harness must
// refuse to schedule a st_venant Canal through the ordinary Step loop
// unless one is registered.
type NetworkSolver interface {
	RegisterChannel(c *Canal)
}

// Canal models an open channel. Four of its five sub-models
// (integral, integral_delay, integral_delay_zero, linear_reservoir) are
// self-contained and driven by Step. The fifth, st_venant, is NOT driven
// by Step: it exposes GetEquations/UpdateState for a NetworkSolver instead.
type Canal struct {
	Base

	Model CanalModel

	// integral / linear_reservoir
	SurfaceArea     float64 // m^2, used to derive volume's level
	StorageConstant float64 // K, time units; used by linear_reservoir

	// integral_delay / integral_delay_zero
	DelaySteps  int
	delayBuffer []float64

	solver NetworkSolver
}

// NewCanal validates parameters and constructs a Canal for the given model.
func NewCanal(id string, model CanalModel, params state.Parameters, initial state.State) (*Canal, error) {
	c := &Canal{
		Base:  NewBase(id, params, initial),
		Model: model,
	}

	switch model {
	case CanalIntegral, CanalIntegralDelay, CanalIntegralDelayZero:
		c.SurfaceArea = params.GetOr("surface_area", 0)
		if c.SurfaceArea <= 0 {
			return nil, diag.New(diag.InvalidParameter, "surface_area must be > 0").WithID(id)
		}
		if model != CanalIntegral {
			delaySteps := int(params.GetOr("delay_steps", 0))
			if delaySteps <= 0 {
				return nil, diag.New(diag.InvalidParameter, "delay_steps must be > 0").WithID(id)
			}
			c.DelaySteps = delaySteps
			fill := 0.0
			if model == CanalIntegralDelay {
				fill = initial.GetOr("inflow", 0)
			}
			c.delayBuffer = make([]float64, delaySteps)
			for i := range c.delayBuffer {
				c.delayBuffer[i] = fill
			}
		}
	case CanalLinearReservoir:
		c.StorageConstant = params.GetOr("storage_constant", 0)
		if c.StorageConstant <= 0 {
			return nil, diag.New(diag.InvalidParameter, "storage_constant must be > 0").WithID(id)
		}
	case CanalStVenant:
		// validated at RegisterChannel-time by the solver, not here.
	default:
		return nil, diag.New(diag.InvalidParameter, "unknown canal model "+string(model)).WithID(id)
	}

	return c, nil
}

// AttachSolver registers a NetworkSolver for a st_venant Canal.
func (c *Canal) AttachSolver(solver NetworkSolver) {
	c.solver = solver
	if solver != nil {
		solver.RegisterChannel(c)
	}
}

// HasSolver reports whether a NetworkSolver is attached, the precondition
// the harness checks before ever scheduling a st_venant Canal.
func (c *Canal) HasSolver() bool { return c.solver != nil }

// RequiresSolver reports whether this Canal must not be driven by the
// ordinary Step loop without a NetworkSolver attached.
func (c *Canal) RequiresSolver() bool { return c.Model == CanalStVenant }

// GetEquations returns the st_venant channel's current coefficients for
// the NetworkSolver. Only meaningful when Model == CanalStVenant.
func (c *Canal) GetEquations() (volume, outflow float64) {
	return c.st.GetOr("volume", 0), c.st.GetOr("outflow", 0)
}

// UpdateState applies a solved head/flow delta to a st_venant channel's
// state. Only meaningful when Model == CanalStVenant.
func (c *Canal) UpdateState(dH, dQ float64) {
	c.st.Set("water_level", c.st.GetOr("water_level", 0)+dH)
	c.st.Set("outflow", c.st.GetOr("outflow", 0)+dQ)
}

// Step advances one of the four standalone sub-models. Calling Step on a
// st_venant Canal is a caller error (the harness must exclude it from
// the ordinary loop); it returns the unchanged state defensively.
func (c *Canal) Step(action state.Action, dt float64) state.State {
	inflow := action.Get("inflow") + c.drainExtraInflow()

	switch c.Model {
	case CanalIntegral:
		return c.stepIntegral(action, inflow, dt)
	case CanalIntegralDelay, CanalIntegralDelayZero:
		return c.stepIntegralDelay(action, inflow, dt)
	case CanalLinearReservoir:
		return c.stepLinearReservoir(inflow, dt)
	default: // st_venant, or unknown: not driven by Step
		c.recordFault(diag.New(diag.StepFault, "st_venant canal must not be stepped without a NetworkSolver").WithID(c.id))
		return c.GetState()
	}
}

func (c *Canal) stepIntegral(action state.Action, inflow, dt float64) state.State {
	volume := c.st.GetOr("volume", 0)
	requestedOutflow := action.Get("outflow")
	maxOutflow := volume / dt
	outflow := clamp(requestedOutflow, 0, maxOutflow)

	newVolume := clamp(volume+(inflow-outflow)*dt, 0, maxFloatIfZero(c.SurfaceArea))
	c.st.Set("volume", newVolume)
	c.st.Set("water_level", newVolume/c.SurfaceArea)
	c.st.Set("outflow", outflow)
	c.st.Set("inflow", inflow)
	return c.GetState()
}

func (c *Canal) stepIntegralDelay(action state.Action, inflow, dt float64) state.State {
	delayed := c.delayBuffer[0]
	c.delayBuffer = append(c.delayBuffer[1:], inflow)

	volume := c.st.GetOr("volume", 0)
	requestedOutflow := action.Get("outflow")
	maxOutflow := volume / dt
	outflow := clamp(requestedOutflow, 0, maxOutflow)

	newVolume := clamp(volume+(delayed-outflow)*dt, 0, maxFloatIfZero(c.SurfaceArea))
	c.st.Set("volume", newVolume)
	c.st.Set("water_level", newVolume/c.SurfaceArea)
	c.st.Set("outflow", outflow)
	c.st.Set("inflow", inflow)
	return c.GetState()
}

func (c *Canal) stepLinearReservoir(inflow, dt float64) state.State {
	volume := c.st.GetOr("volume", 0)
	outflow := volume / c.StorageConstant
	newVolume := volume + (inflow-outflow)*dt
	if newVolume < 0 {
		newVolume = 0
	}
	c.st.Set("volume", newVolume)
	c.st.Set("outflow", outflow)
	c.st.Set("inflow", inflow)
	return c.GetState()
}

func maxFloatIfZero(surfaceArea float64) float64 {
	if surfaceArea <= 0 {
		return 0
	}
	// No explicit max_volume for a canal reach; bound by a generous
	// multiple of surface area so the clamp only guards against
	// accumulation bugs rather than acting as a real capacity limit.
	return surfaceArea * 1e6
}
