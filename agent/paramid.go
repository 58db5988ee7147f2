package agent

import "github.com/leixiaohui-1974/CHS-SDK/bus"

// Sample is one (input, observation) pair collected by a
// ParameterIdentificationAgent between identification runs.
type Sample struct {
	Input, Observation float64
}

// ParameterIdentifiable is the narrow interface a component adapts to so
// it can be re-tuned by a ParameterIdentificationAgent without this
// package knowing the component's concrete type.
type ParameterIdentifiable interface {
	IdentifyParameters(batch []Sample) error
}

// Minimizer is the pluggable optimizer IdentifyParameters delegates to
// internally; this package never implements one, only the seam
// (mirroring controller.Solver for MPC — both keep optimizer internals
// out of the core per the Non-goal on general optimization internals).
type Minimizer interface {
	Minimize(objective func(params []float64) float64, initial []float64) ([]float64, error)
}

// ParameterIdentificationAgent collects (input, observation) pairs from
// subscribed topics and, once it has IdentificationInterval new samples,
// hands the batch to its target component's IdentifyParameters and
// clears the buffer.
type ParameterIdentificationAgent struct {
	Base

	Target                 ParameterIdentifiable
	IdentificationInterval int

	inputKey, observationKey string
	pendingInput             float64
	havePendingInput         bool
	buffer                   []Sample
}

// NewParameterIdentificationAgent constructs a ParameterIdentificationAgent
// and subscribes it to inputTopic/observationTopic.
func NewParameterIdentificationAgent(id string, b *bus.MessageBus, target ParameterIdentifiable, interval int, inputTopic bus.Topic, inputKey string, observationTopic bus.Topic, observationKey string) *ParameterIdentificationAgent {
	a := &ParameterIdentificationAgent{
		Base:                   NewBase(id, b),
		Target:                 target,
		IdentificationInterval: interval,
		inputKey:               inputKey,
		observationKey:         observationKey,
	}
	b.Subscribe(inputTopic, a.onInput)
	b.Subscribe(observationTopic, a.onObservation)
	return a
}

func (a *ParameterIdentificationAgent) onInput(msg *bus.Message) {
	if v, ok := msg.Float(a.inputKey); ok {
		a.pendingInput = v
		a.havePendingInput = true
	}
}

func (a *ParameterIdentificationAgent) onObservation(msg *bus.Message) {
	if !a.havePendingInput {
		return
	}
	obs, ok := msg.Float(a.observationKey)
	if !ok {
		return
	}
	a.buffer = append(a.buffer, Sample{Input: a.pendingInput, Observation: obs})
	a.havePendingInput = false

	if len(a.buffer) >= a.IdentificationInterval {
		_ = a.Target.IdentifyParameters(a.buffer)
		a.buffer = nil
	}
}

// Run is a no-op: ParameterIdentificationAgent drives entirely off
// subscribed input/observation messages.
func (a *ParameterIdentificationAgent) Run(currentTime float64) {}
