package agent

import "github.com/leixiaohui-1974/CHS-SDK/bus"

// InflowProvider is the seam a disturbance data source adapts to. The
// core ships only formula- and table-driven implementations (Rainfall,
// DynamicRainfall, WaterUse); a CSV- or sensor-backed provider plugs in
// without this package changing.
type InflowProvider interface {
	// ValueAt returns the provider's value at currentTime and whether
	// the provider has data for that time at all.
	ValueAt(currentTime float64) (float64, bool)
}

// ConstantInflow is the simplest InflowProvider: a single fixed rate
// active for its whole window.
type ConstantInflow float64

func (c ConstantInflow) ValueAt(float64) (float64, bool) { return float64(c), true }

// TableInflow looks up a value by nearest preceding timestamp, giving a
// CsvInflow-style piecewise-constant series without a file reader.
type TableInflow struct {
	Times  []float64
	Values []float64
}

func (t TableInflow) ValueAt(currentTime float64) (float64, bool) {
	if len(t.Times) == 0 {
		return 0, false
	}
	if currentTime < t.Times[0] {
		return 0, false
	}
	value := t.Values[0]
	for i, ts := range t.Times {
		if ts > currentTime {
			break
		}
		value = t.Values[i]
	}
	return value, true
}

// RainfallAgent publishes its Provider's inflow rate while currentTime is
// within [ActiveFrom, ActiveUntil).
type RainfallAgent struct {
	Base

	Topic       bus.Topic
	Field       string
	Provider    InflowProvider
	ActiveFrom  float64
	ActiveUntil float64
}

// NewRainfallAgent constructs a RainfallAgent.
func NewRainfallAgent(id string, b *bus.MessageBus, topic bus.Topic, field string, provider InflowProvider, activeFrom, activeUntil float64) *RainfallAgent {
	return &RainfallAgent{
		Base: NewBase(id, b), Topic: topic, Field: field,
		Provider: provider, ActiveFrom: activeFrom, ActiveUntil: activeUntil,
	}
}

// Run publishes the provider's value if currentTime is within the active window.
func (a *RainfallAgent) Run(currentTime float64) {
	if currentTime < a.ActiveFrom || currentTime >= a.ActiveUntil {
		return
	}
	value, ok := a.Provider.ValueAt(currentTime)
	if !ok {
		return
	}
	out := bus.NewMessage(string(a.Topic), a.ID()).Set(a.Field, value)
	_ = a.Bus.Publish(a.Topic, out)
}

// DynamicRainfallAgent is a RainfallAgent whose active window can be
// reconfigured at runtime via SetWindow, modeling a forecast update.
type DynamicRainfallAgent struct {
	RainfallAgent
}

// NewDynamicRainfallAgent constructs a DynamicRainfallAgent.
func NewDynamicRainfallAgent(id string, b *bus.MessageBus, topic bus.Topic, field string, provider InflowProvider, activeFrom, activeUntil float64) *DynamicRainfallAgent {
	return &DynamicRainfallAgent{RainfallAgent: *NewRainfallAgent(id, b, topic, field, provider, activeFrom, activeUntil)}
}

// SetWindow updates the active window without resetting the provider.
func (a *DynamicRainfallAgent) SetWindow(from, until float64) {
	a.ActiveFrom = from
	a.ActiveUntil = until
}

// WaterUseAgent publishes its Provider's value on Topic while active,
// modeling municipal or irrigation withdrawal. The value is published
// unchanged, with the Provider's own sign; it is not negated.
type WaterUseAgent struct {
	RainfallAgent
}

// NewWaterUseAgent constructs a WaterUseAgent.
func NewWaterUseAgent(id string, b *bus.MessageBus, topic bus.Topic, field string, provider InflowProvider, activeFrom, activeUntil float64) *WaterUseAgent {
	return &WaterUseAgent{RainfallAgent: *NewRainfallAgent(id, b, topic, field, provider, activeFrom, activeUntil)}
}

// CsvInflowAgent publishes whatever its InflowProvider returns for every
// tick it has data for, with no activation window (the provider itself
// decides coverage via its second return value).
type CsvInflowAgent struct {
	Base

	Topic    bus.Topic
	Field    string
	Provider InflowProvider
}

// NewCsvInflowAgent constructs a CsvInflowAgent.
func NewCsvInflowAgent(id string, b *bus.MessageBus, topic bus.Topic, field string, provider InflowProvider) *CsvInflowAgent {
	return &CsvInflowAgent{Base: NewBase(id, b), Topic: topic, Field: field, Provider: provider}
}

// Run publishes the provider's value for currentTime if it has one.
func (a *CsvInflowAgent) Run(currentTime float64) {
	value, ok := a.Provider.ValueAt(currentTime)
	if !ok {
		return
	}
	out := bus.NewMessage(string(a.Topic), a.ID()).Set(a.Field, value)
	_ = a.Bus.Publish(a.Topic, out)
}
