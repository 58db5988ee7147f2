package agent

import (
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
)

func TestRainfallAgentOnlyPublishesWithinWindow(t *testing.T) {
	b := bus.New()
	var received int
	b.Subscribe("disturbance.inflow", func(m *bus.Message) { received++ })

	a := NewRainfallAgent("rain-1", b, "disturbance.inflow", "inflow_rate", ConstantInflow(150), 300, 500)

	a.Run(100)
	if received != 0 {
		t.Fatalf("published outside activation window")
	}
	a.Run(300)
	if received != 1 {
		t.Fatalf("did not publish at window start")
	}
	a.Run(499)
	a.Run(500)
	if received != 2 {
		t.Fatalf("received = %d, want 2 (window end is exclusive)", received)
	}
}

func TestScenarioAgentConsumesEventsOnce(t *testing.T) {
	b := bus.New()
	var count int
	b.Subscribe("scenario.event", func(m *bus.Message) { count++ })

	a := NewScenarioAgent("scenario-1", b, []ScenarioEvent{
		{Time: 5, Topic: "scenario.event", Fields: map[string]float64{"x": 1}},
	})

	a.Run(0)
	if count != 0 {
		t.Fatalf("fired before scheduled time")
	}
	a.Run(5)
	if count != 1 {
		t.Fatalf("did not fire at scheduled time")
	}
	a.Run(10)
	if count != 1 {
		t.Fatalf("event replayed: count = %d, want 1", count)
	}
}
