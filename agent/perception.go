package agent

import (
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// StateSource is the narrow view of a Component a perception agent
// needs: its current state, as a copy.
type StateSource interface {
	GetState() state.State
}

// SmoothingConfig selects which state keys get exponential-moving-average
// smoothing and at what rate. Keys not listed pass through unchanged
// (Open Question decision: EMA is opt-in per key, not blanket).
type SmoothingConfig struct {
	Alpha float64
	Keys  map[string]bool
}

// DigitalTwinAgent (also used as a PerceptionAgent) reads its bound
// component's state each tick, optionally EMA-smooths configured keys,
// and publishes the result on StateTopic.
type DigitalTwinAgent struct {
	Base

	Component  StateSource
	StateTopic bus.Topic
	Smoothing  SmoothingConfig

	smoothed map[string]float64
}

// NewDigitalTwinAgent constructs a DigitalTwinAgent.
func NewDigitalTwinAgent(id string, b *bus.MessageBus, component StateSource, stateTopic bus.Topic, smoothing SmoothingConfig) *DigitalTwinAgent {
	return &DigitalTwinAgent{
		Base:       NewBase(id, b),
		Component:  component,
		StateTopic: stateTopic,
		Smoothing:  smoothing,
		smoothed:   make(map[string]float64),
	}
}

// Run reads the bound component's state, smooths configured keys, and
// publishes the cleaned state on StateTopic.
func (a *DigitalTwinAgent) Run(currentTime float64) {
	st := a.Component.GetState()
	msg := bus.NewMessage(string(a.StateTopic), a.ID())

	for key, value := range st {
		if a.Smoothing.Keys != nil && a.Smoothing.Keys[key] {
			value = a.smooth(key, value)
		}
		msg.Set(key, value)
	}
	_ = a.Bus.Publish(a.StateTopic, msg)
}

func (a *DigitalTwinAgent) smooth(key string, value float64) float64 {
	prev, ok := a.smoothed[key]
	if !ok {
		a.smoothed[key] = value
		return value
	}
	alpha := a.Smoothing.Alpha
	next := alpha*value + (1-alpha)*prev
	a.smoothed[key] = next
	return next
}
