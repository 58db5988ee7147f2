package controller

// BangBang is an on/off controller: it outputs High whenever the
// observation is below setpoint by more than Hysteresis, Low when above
// by more than Hysteresis, and holds its previous output inside the
// hysteresis band to avoid chattering.
type BangBang struct {
	Low, High  float64
	Hysteresis float64

	setpoint   float64
	lastOutput float64
}

// NewBangBang constructs a BangBang controller.
func NewBangBang(low, high, hysteresis, setpoint float64) *BangBang {
	return &BangBang{Low: low, High: high, Hysteresis: hysteresis, setpoint: setpoint, lastOutput: low}
}

func (b *BangBang) SetSetpoint(value float64) { b.setpoint = value }

func (b *BangBang) Setpoint() float64 { return b.setpoint }

// ComputeAction ignores dt: bang-bang control is memoryless except for
// its hysteresis-held last output.
func (b *BangBang) ComputeAction(observation, _ float64) float64 {
	switch {
	case observation < b.setpoint-b.Hysteresis:
		b.lastOutput = b.High
	case observation > b.setpoint+b.Hysteresis:
		b.lastOutput = b.Low
	}
	return b.lastOutput
}
