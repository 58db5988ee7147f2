package agent

import "github.com/leixiaohui-1974/CHS-SDK/bus"

// ScenarioEvent is one scripted publish: at Time, publish Fields on Topic.
type ScenarioEvent struct {
	Time   float64
	Topic  bus.Topic
	Fields map[string]float64
}

// ScenarioAgent holds a time-sorted list of scripted events and
// publishes each one exactly once, on the first Run whose currentTime
// has reached the event's scheduled time. Events are consumed, never
// replayed, so callers must pass Events already sorted by Time (the
// ScenarioLoader is responsible for sorting at load time).
type ScenarioAgent struct {
	Base

	Events []ScenarioEvent
	next   int
}

// NewScenarioAgent constructs a ScenarioAgent over a time-sorted event list.
func NewScenarioAgent(id string, b *bus.MessageBus, events []ScenarioEvent) *ScenarioAgent {
	return &ScenarioAgent{Base: NewBase(id, b), Events: events}
}

// Run publishes every event whose scheduled time has been reached.
func (a *ScenarioAgent) Run(currentTime float64) {
	for a.next < len(a.Events) && a.Events[a.next].Time <= currentTime {
		event := a.Events[a.next]
		msg := bus.NewMessage(string(event.Topic), a.ID())
		for k, v := range event.Fields {
			msg.Set(k, v)
		}
		_ = a.Bus.Publish(event.Topic, msg)
		a.next++
	}
}
