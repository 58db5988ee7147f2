// Package agent implements the Agent interface and its variants:
// perception, local and hierarchical control, disturbance injection,
// scripted scenario playback, and parameter identification. Agents
// never own physical state directly; they mutate components only by
// publishing action messages on the bus.
package agent

import (
	"github.com/leixiaohui-1974/CHS-SDK/bus"
	"github.com/leixiaohui-1974/CHS-SDK/internal/logging"
)

// Agent is the public contract every agent variant satisfies. Most
// agents do their real work via bus callbacks registered at
// construction; Run exists to drive time-gated behavior (disturbance
// activation windows, scenario playback, periodic dispatch).
type Agent interface {
	ID() string
	Run(currentTime float64)
}

// Base carries the fields every agent variant shares: its ID, a bus
// reference, and a logger for non-fatal fault reporting.
type Base struct {
	id     string
	Bus    *bus.MessageBus
	Logger logging.Logger
}

// NewBase constructs a Base bound to the given bus.
func NewBase(id string, b *bus.MessageBus) Base {
	return Base{id: id, Bus: b, Logger: logging.Noop()}
}

func (b *Base) ID() string { return b.id }
