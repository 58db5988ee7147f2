package controller

// PID is the canonical controller: proportional-integral-derivative with
// clamped output and conditional anti-windup. Gains may be signed to
// express reverse-acting processes (opening a gate lowers a reservoir
// level, so its gains are negative).
type PID struct {
	Kp, Ki, Kd float64
	MinOutput  float64
	MaxOutput  float64

	setpoint float64
	integral float64
	prevErr  float64
	clamped  bool
	prevOut  float64

	initialized bool
}

// NewPID constructs a PID controller with the given gains, output bounds
// and initial setpoint.
func NewPID(kp, ki, kd, minOutput, maxOutput, setpoint float64) *PID {
	return &PID{
		Kp: kp, Ki: ki, Kd: kd,
		MinOutput: minOutput, MaxOutput: maxOutput,
		setpoint: setpoint,
	}
}

// SetSetpoint assigns the target; it does not reset the integral.
func (p *PID) SetSetpoint(value float64) { p.setpoint = value }

// Setpoint returns the current target.
func (p *PID) Setpoint() float64 { return p.setpoint }

// ComputeAction advances the controller by one step of size dt and
// returns the clamped control output.
func (p *PID) ComputeAction(observation, dt float64) float64 {
	err := p.setpoint - observation

	// Anti-windup: when the previous output was clamped, skip integrating
	// if the error has the same sign as that previous output. With
	// negative gains the saturating error and output have opposite signs,
	// so integration continues while clamped.
	if !(p.clamped && sign(err) == sign(p.prevOut)) {
		p.integral += err * dt
	}

	var derivative float64
	if p.initialized && dt > 0 {
		derivative = (err - p.prevErr) / dt
	}

	raw := p.Kp*err + p.Ki*p.integral + p.Kd*derivative
	output := clamp(raw, p.MinOutput, p.MaxOutput)

	p.clamped = output != raw
	p.prevOut = output
	p.prevErr = err
	p.initialized = true

	return output
}
