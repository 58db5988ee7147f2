package agent

import (
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
)

func TestScenarioAgentPublishesEachEventOnce(t *testing.T) {
	b := bus.New()
	var received []*bus.Message
	b.Subscribe("rain", func(m *bus.Message) { received = append(received, m) })

	a := NewScenarioAgent("scripted", b, []ScenarioEvent{
		{Time: 1.0, Topic: "rain", Fields: map[string]float64{"rate": 0.01}},
		{Time: 3.0, Topic: "rain", Fields: map[string]float64{"rate": 0.05}},
	})

	a.Run(0)
	if len(received) != 0 {
		t.Fatalf("expected no publishes before first event time, got %d", len(received))
	}

	a.Run(1.0)
	if len(received) != 1 {
		t.Fatalf("expected 1 publish at t=1.0, got %d", len(received))
	}
	if v, _ := received[0].Float("rate"); v != 0.01 {
		t.Fatalf("rate = %v, want 0.01", v)
	}

	a.Run(2.0)
	if len(received) != 1 {
		t.Fatalf("expected no new publish at t=2.0, got %d total", len(received))
	}

	a.Run(5.0)
	if len(received) != 2 {
		t.Fatalf("expected 2nd event to fire once t has passed 3.0, got %d total", len(received))
	}

	a.Run(10.0)
	if len(received) != 2 {
		t.Fatalf("events must not replay: expected 2 total, got %d", len(received))
	}
}
