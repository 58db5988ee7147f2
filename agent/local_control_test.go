package agent

import (
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/controller"
)

func TestLocalControlAgentPublishesControlSignal(t *testing.T) {
	b := bus.New()
	pid := controller.NewPID(-0.5, 0, 0, 0, 1, 12.0)

	var got *bus.Message
	b.Subscribe("action.gate", func(m *bus.Message) { got = m })

	NewLocalControlAgent("ctrl-1", b, pid, "state.reservoir", "water_level", "", "action.gate")

	_ = b.Publish("state.reservoir", bus.NewMessage("state.reservoir", "twin-1").Set("water_level", 14.0))

	if got == nil {
		t.Fatalf("no action published")
	}
	signal, ok := got.Float("control_signal")
	if !ok {
		t.Fatalf("action message missing control_signal")
	}
	if signal != 1.0 {
		t.Fatalf("control_signal = %v, want 1.0 (clamped at max_output)", signal)
	}
}

func TestLocalControlAgentUpdatesSetpointFromCommandTopic(t *testing.T) {
	b := bus.New()
	pid := controller.NewPID(-0.5, 0, 0, 0, 1, 12.0)
	NewLocalControlAgent("ctrl-2", b, pid, "state.reservoir", "water_level", "command.setpoint", "action.gate")

	_ = b.Publish("command.setpoint", bus.NewMessage("command.setpoint", "dispatcher").Set("new_setpoint", 15.0))
	if pid.Setpoint() != 15.0 {
		t.Fatalf("Setpoint() = %v, want 15.0 after command", pid.Setpoint())
	}
}
