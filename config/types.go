// Package config implements the ScenarioLoader: parsing a declarative
// JSON or YAML scenario tree into a fully-assembled *harness.Harness,
// via name-to-constructor registries for components, agents and
// controllers. Unknown classes fail with UnknownClass, dangling
// references with WiringError, malformed trees with InvalidConfig.
package config

// RawConfig is the intermediate, loader-agnostic tree every scenario
// file decodes into, whether it arrived as JSON or YAML.
type RawConfig struct {
	SimulationSettings SimulationSettings `yaml:"simulation_settings" json:"simulation_settings"`
	Components         []ComponentConfig  `yaml:"components" json:"components"`
	Topology           []EdgeConfig       `yaml:"topology" json:"topology"`
	Agents             []AgentConfig      `yaml:"agents" json:"agents"`
	Disturbances       []DisturbanceConfig `yaml:"disturbances" json:"disturbances"`
	ScenarioScript     []ScenarioEventConfig `yaml:"scenario_script" json:"scenario_script"`
	Controllers        []ControllerConfig `yaml:"controllers" json:"controllers"`
}

// SimulationSettings carries the tick size and run length. At least one
// of NumSteps or Duration must be usable to derive a step count:
// NumSteps directly, or Duration combined with DT. When both are set,
// NumSteps is used.
type SimulationSettings struct {
	DT       float64 `yaml:"dt" json:"dt"`
	NumSteps int     `yaml:"num_steps" json:"num_steps"`
	Duration float64 `yaml:"duration" json:"duration"`

	// HistorySink names an optional streaming sink: "memory" (default)
	// or "jsonl:<path>".
	HistorySink string `yaml:"history_sink" json:"history_sink"`
	// MaxCascadeDepth overrides the bus's default cascade-depth ceiling
	// when non-zero.
	MaxCascadeDepth int `yaml:"max_cascade_depth" json:"max_cascade_depth"`
}

// ComponentConfig describes one physical component instance.
type ComponentConfig struct {
	ID            string             `yaml:"id" json:"id"`
	Class         string             `yaml:"class" json:"class"`
	Model         string             `yaml:"model" json:"model"` // Canal sub-model; ignored by other classes
	InitialState  map[string]float64 `yaml:"initial_state" json:"initial_state"`
	Parameters    map[string]float64 `yaml:"parameters" json:"parameters"`
	SubscribesTo  string             `yaml:"subscribes_to" json:"subscribes_to"`
	ActionTopic   string             `yaml:"action_topic" json:"action_topic"`
}

// EdgeConfig is one topology.AddEdge(Upstream, Downstream) call.
type EdgeConfig struct {
	Upstream   string `yaml:"upstream" json:"upstream"`
	Downstream string `yaml:"downstream" json:"downstream"`
}

// AgentConfig describes one agent instance. Config carries whatever
// fields the named class's constructor adapter needs; its shape is
// class-specific, mirroring spec.md §4.6's "config dict" per agent.
type AgentConfig struct {
	ID     string         `yaml:"id" json:"id"`
	Class  string         `yaml:"class" json:"class"`
	Config map[string]any `yaml:"config" json:"config"`
}

// DisturbanceConfig is a one-shot scripted action applied to a
// component at a given tick: {time_step, component_id, action, value}.
type DisturbanceConfig struct {
	TimeStep    int     `yaml:"time_step" json:"time_step"`
	ComponentID string  `yaml:"component_id" json:"component_id"`
	Action      string  `yaml:"action" json:"action"`
	Value       float64 `yaml:"value" json:"value"`
}

// ScenarioEventConfig is a one-shot scripted bus publish:
// {time, topic, message}.
type ScenarioEventConfig struct {
	Time    float64            `yaml:"time" json:"time"`
	Topic   string             `yaml:"topic" json:"topic"`
	Message map[string]float64 `yaml:"message" json:"message"`
}

// ControllerConfig describes an orchestrated-mode controller binding:
// {id, type, params, wiring: {controlled_id, observed_id, observation_key}}.
type ControllerConfig struct {
	ID     string             `yaml:"id" json:"id"`
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params" json:"params"`
	Wiring WiringConfig       `yaml:"wiring" json:"wiring"`
}

// WiringConfig names the component a ControllerConfig controls and observes.
type WiringConfig struct {
	ControlledID   string `yaml:"controlled_id" json:"controlled_id"`
	ObservedID     string `yaml:"observed_id" json:"observed_id"`
	ObservationKey string `yaml:"observation_key" json:"observation_key"`
}
