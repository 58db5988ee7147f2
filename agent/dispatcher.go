package agent

import "github.com/leixiaohui-1974/CHS-SDK/bus"

// Rule is one row of a CentralDispatcher's rule table: if the observed
// value satisfies Predicate, publish Setpoint on CommandTopic.
type Rule struct {
	Predicate    func(observed float64) bool
	Setpoint     float64
	CommandTopic bus.Topic
}

// CentralDispatcher subscribes to one or more state topics and, on each
// observation, evaluates its rule table top-to-bottom; the first
// matching rule's setpoint is published. If no rule matches, Default is
// published on every configured command topic, so downstream agents
// always hear a decision each tick a dispatcher runs.
type CentralDispatcher struct {
	Base

	ObservationKey string
	Rules          []Rule
	DefaultTopics  []bus.Topic
	Default        float64
}

// NewCentralDispatcher constructs a CentralDispatcher and subscribes it
// to observationTopic, reading observationKey out of each message.
func NewCentralDispatcher(id string, b *bus.MessageBus, observationTopic bus.Topic, observationKey string, rules []Rule, defaultTopics []bus.Topic, defaultSetpoint float64) *CentralDispatcher {
	d := &CentralDispatcher{
		Base:           NewBase(id, b),
		ObservationKey: observationKey,
		Rules:          rules,
		DefaultTopics:  defaultTopics,
		Default:        defaultSetpoint,
	}
	b.Subscribe(observationTopic, d.onObservation)
	return d
}

func (d *CentralDispatcher) onObservation(msg *bus.Message) {
	observed, ok := msg.Float(d.ObservationKey)
	if !ok {
		return
	}

	for _, rule := range d.Rules {
		if rule.Predicate(observed) {
			out := bus.NewMessage(string(rule.CommandTopic), d.ID()).Set("new_setpoint", rule.Setpoint)
			_ = d.Bus.Publish(rule.CommandTopic, out)
			return
		}
	}
	for _, topic := range d.DefaultTopics {
		out := bus.NewMessage(string(topic), d.ID()).Set("new_setpoint", d.Default)
		_ = d.Bus.Publish(topic, out)
	}
}

// Run is a no-op: CentralDispatcher drives entirely off observation messages.
func (d *CentralDispatcher) Run(currentTime float64) {}
