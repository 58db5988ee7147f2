package agent

import (
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/controller"
)

// LocalControlAgent subscribes to an observation topic, runs its
// embedded Controller on each observation, and publishes the result as
// {control_signal: x} on ActionTopic. An optional command topic updates
// the controller's setpoint. No feedback topic is subscribed.
type LocalControlAgent struct {
	Base

	Controller     controller.Controller
	ObservationKey string
	ActionTopic    bus.Topic

	lastDt float64
}

// NewLocalControlAgent constructs a LocalControlAgent and subscribes it
// to observationTopic and, if non-empty, commandTopic.
func NewLocalControlAgent(id string, b *bus.MessageBus, ctrl controller.Controller, observationTopic bus.Topic, observationKey string, commandTopic bus.Topic, actionTopic bus.Topic) *LocalControlAgent {
	a := &LocalControlAgent{
		Base:           NewBase(id, b),
		Controller:     ctrl,
		ObservationKey: observationKey,
		ActionTopic:    actionTopic,
		lastDt:         1.0,
	}

	b.Subscribe(observationTopic, a.onObservation)
	if commandTopic != "" {
		b.Subscribe(commandTopic, a.onCommand)
	}
	return a
}

func (a *LocalControlAgent) onObservation(msg *bus.Message) {
	obs, ok := msg.Float(a.ObservationKey)
	if !ok {
		return
	}
	if dt, ok := msg.Float("dt"); ok {
		a.lastDt = dt
	}
	output := a.Controller.ComputeAction(obs, a.lastDt)
	out := bus.NewMessage(string(a.ActionTopic), a.ID()).Set("control_signal", output)
	_ = a.Bus.Publish(a.ActionTopic, out)
}

func (a *LocalControlAgent) onCommand(msg *bus.Message) {
	if v, ok := msg.Float("new_setpoint"); ok {
		a.Controller.SetSetpoint(v)
	}
}

// Run is a no-op for LocalControlAgent: all of its work happens via bus
// callbacks registered at construction, driven by whichever perception
// agent publishes observations.
func (a *LocalControlAgent) Run(currentTime float64) {}
