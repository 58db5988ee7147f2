package agent

import (
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
)

func TestPumpControlAgentProportionalDecomposition(t *testing.T) {
	b := bus.New()
	got := make(map[string]float64)
	devices := []Device{
		{ID: "pump-1", Topic: "action.pump.1", Capacity: 10},
		{ID: "pump-2", Topic: "action.pump.2", Capacity: 10},
	}
	for _, d := range devices {
		topic := d.Topic
		b.Subscribe(topic, func(m *bus.Message) {
			v, _ := m.Float("control_signal")
			got[m.Source] = v
		})
	}

	NewPumpControlAgent("station-1", b, "goal.station", devices, DecompositionProportional)
	_ = b.Publish("goal.station", bus.NewMessage("goal.station", "dispatcher").Set("target_flow", 10.0))

	if got["station-1"] != 0.5 {
		t.Fatalf("want both pumps at 0.5 opening, got %v", got)
	}
}

func TestPumpStationControlAgentCountDecomposition(t *testing.T) {
	b := bus.New()
	openings := make(map[bus.Topic]float64)
	devices := []Device{
		{ID: "pump-1", Topic: "action.pump.1", Priority: 0},
		{ID: "pump-2", Topic: "action.pump.2", Priority: 1},
		{ID: "pump-3", Topic: "action.pump.3", Priority: 2},
	}
	for _, d := range devices {
		topic := d.Topic
		b.Subscribe(topic, func(m *bus.Message) {
			v, _ := m.Float("control_signal")
			openings[bus.Topic(m.Topic)] = v
		})
	}

	NewPumpStationControlAgent("station-2", b, "goal.count", devices)
	_ = b.Publish("goal.count", bus.NewMessage("goal.count", "dispatcher").Set("target_pump_count", 2.0))

	if openings["action.pump.1"] != 1 || openings["action.pump.2"] != 1 {
		t.Fatalf("expected first two pumps on, got %v", openings)
	}
	if openings["action.pump.3"] != 0 {
		t.Fatalf("expected third pump off, got %v", openings)
	}
}
