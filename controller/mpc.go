package controller

import (
	"context"
	"time"

	"github.com/leixiaohui-1974/CHS-SDK/diag"
)

// Solver is the pluggable optimizer an MPC controller delegates to.
// Solver internals (QP/NLP formulation, horizon search) are explicitly
// out of scope for this core; Solver is the seam a real optimizer plugs
// into, mirroring the agent package's Minimizer for parameter
// identification.
type Solver interface {
	// Solve returns the first-step control action for the given
	// observation, setpoint and horizon, or an error if it fails to
	// converge within its own budget.
	Solve(ctx context.Context, observation, setpoint float64, horizon int) (float64, error)
}

// MPC is a facade over a pluggable Solver: it owns the setpoint and
// horizon, and surfaces OptimizationTimeout if the solver does not
// return within Timeout.
type MPC struct {
	Solver  Solver
	Horizon int
	Timeout time.Duration

	setpoint   float64
	lastOutput float64
}

// NewMPC constructs an MPC facade around solver.
func NewMPC(solver Solver, horizon int, timeout time.Duration, setpoint float64) *MPC {
	return &MPC{Solver: solver, Horizon: horizon, Timeout: timeout, setpoint: setpoint}
}

func (m *MPC) SetSetpoint(value float64) { m.setpoint = value }

func (m *MPC) Setpoint() float64 { return m.setpoint }

// ComputeAction delegates to the injected Solver under a deadline. If
// the solver fails or times out, the previous output is held and the
// failure is not reported: ComputeAction cannot return an error (the
// Controller interface is error-free), so callers that need failure
// visibility should use ComputeActionWithError.
func (m *MPC) ComputeAction(observation, _ float64) float64 {
	out, err := m.ComputeActionWithError(observation)
	if err != nil {
		return m.lastOutput
	}
	return out
}

// ComputeActionWithError is the same computation as ComputeAction but
// surfaces the underlying OptimizationTimeout / solver error instead of
// silently holding the last output.
func (m *MPC) ComputeActionWithError(observation float64) (float64, error) {
	ctx := context.Background()
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	out, err := m.Solver.Solve(ctx, observation, m.setpoint, m.Horizon)
	if err != nil {
		if ctx.Err() != nil {
			return m.lastOutput, diag.Wrap(diag.OptimizationTimeout, "MPC solver did not converge in time", err)
		}
		return m.lastOutput, diag.Wrap(diag.OptimizationTimeout, "MPC solver failed", err)
	}
	m.lastOutput = out
	return out, nil
}
