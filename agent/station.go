package agent

import (
	"sort"

	"github.com/leixiaohui-1974/CHS-SDK/bus"
)

// DecompositionRule selects how a station control agent distributes a
// station-level target across its devices.
type DecompositionRule string

const (
	// DecompositionCount distributes the target by bringing whole units
	// online/offline to approximate it (pump count), each unit running
	// at full capacity.
	DecompositionCount DecompositionRule = "count"
	// DecompositionProportional splits the target evenly across all
	// devices regardless of individual capacity.
	DecompositionProportional DecompositionRule = "proportional"
	// DecompositionPrioritized fills devices in priority order up to
	// each device's capacity before moving to the next.
	DecompositionPrioritized DecompositionRule = "prioritized"
)

// Device is one unit a station control agent commands.
type Device struct {
	ID       string
	Topic    bus.Topic
	Capacity float64 // under DecompositionCount, the mean capacity converts the target into a unit count
	Priority int     // lower runs first under DecompositionPrioritized
}

// PumpControlAgent decomposes a station-level flow-rate goal into
// per-pump opening commands using a configured DecompositionRule.
type PumpControlAgent struct {
	Base

	GoalTopic bus.Topic
	Devices   []Device
	Rule      DecompositionRule
}

// NewPumpControlAgent constructs a PumpControlAgent and subscribes it
// to goalTopic.
func NewPumpControlAgent(id string, b *bus.MessageBus, goalTopic bus.Topic, devices []Device, rule DecompositionRule) *PumpControlAgent {
	a := &PumpControlAgent{
		Base:      NewBase(id, b),
		GoalTopic: goalTopic,
		Devices:   devices,
		Rule:      rule,
	}
	b.Subscribe(goalTopic, a.onGoal)
	return a
}

func (a *PumpControlAgent) onGoal(msg *bus.Message) {
	target, ok := msg.Float("target_flow")
	if !ok {
		return
	}
	for deviceID, fraction := range decompose(a.Rule, target, a.Devices) {
		dev := deviceByID(a.Devices, deviceID)
		out := bus.NewMessage(string(dev.Topic), a.ID()).Set("control_signal", fraction)
		_ = a.Bus.Publish(dev.Topic, out)
	}
}

// Run is a no-op: PumpControlAgent drives entirely off goal messages.
func (a *PumpControlAgent) Run(currentTime float64) {}

// PumpStationControlAgent decomposes a station-level target expressed as
// a pump count (how many units should be running) rather than a flow
// rate, turning whole pumps on in priority order.
type PumpStationControlAgent struct {
	Base

	GoalTopic bus.Topic
	Devices   []Device
}

// NewPumpStationControlAgent constructs a PumpStationControlAgent and
// subscribes it to goalTopic.
func NewPumpStationControlAgent(id string, b *bus.MessageBus, goalTopic bus.Topic, devices []Device) *PumpStationControlAgent {
	a := &PumpStationControlAgent{
		Base:      NewBase(id, b),
		GoalTopic: goalTopic,
		Devices:   devices,
	}
	b.Subscribe(goalTopic, a.onGoal)
	return a
}

func (a *PumpStationControlAgent) onGoal(msg *bus.Message) {
	count, ok := msg.Float("target_pump_count")
	if !ok {
		return
	}
	ordered := append([]Device(nil), a.Devices...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	for i, dev := range ordered {
		opening := 0.0
		if float64(i) < count {
			opening = 1.0
		}
		out := bus.NewMessage(string(dev.Topic), a.ID()).Set("control_signal", opening)
		_ = a.Bus.Publish(dev.Topic, out)
	}
}

// Run is a no-op: PumpStationControlAgent drives entirely off goal messages.
func (a *PumpStationControlAgent) Run(currentTime float64) {}

// decompose distributes target across devices per rule, returning a
// fractional opening (0..1) per device ID.
func decompose(rule DecompositionRule, target float64, devices []Device) map[string]float64 {
	result := make(map[string]float64, len(devices))
	switch rule {
	case DecompositionCount:
		totalCapacity := 0.0
		for _, d := range devices {
			totalCapacity += d.Capacity
		}
		unitsNeeded := 0
		if totalCapacity > 0 && len(devices) > 0 {
			perUnit := totalCapacity / float64(len(devices))
			unitsNeeded = int(target/perUnit + 0.5)
		}
		ordered := append([]Device(nil), devices...)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })
		for i, d := range ordered {
			if i < unitsNeeded {
				result[d.ID] = 1.0
			} else {
				result[d.ID] = 0.0
			}
		}
	case DecompositionProportional:
		if len(devices) == 0 {
			return result
		}
		share := target / float64(len(devices))
		for _, d := range devices {
			if d.Capacity <= 0 {
				result[d.ID] = 0
				continue
			}
			result[d.ID] = clamp01(share / d.Capacity)
		}
	case DecompositionPrioritized:
		ordered := append([]Device(nil), devices...)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })
		remaining := target
		for _, d := range ordered {
			if d.Capacity <= 0 {
				result[d.ID] = 0
				continue
			}
			take := remaining
			if take > d.Capacity {
				take = d.Capacity
			}
			if take < 0 {
				take = 0
			}
			result[d.ID] = clamp01(take / d.Capacity)
			remaining -= take
		}
	}
	return result
}

func deviceByID(devices []Device, id string) Device {
	for _, d := range devices {
		if d.ID == id {
			return d
		}
	}
	return Device{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
