// Package diag is the error taxonomy and diagnostics core shared by the
// bus, component, agent, harness and config packages. It gives every
// simulation failure mode a stable Kind, and carries the full context
// (tick index, component/agent ID, originating topic, cause) the harness
// surfaces on fatal failure.
package diag

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error taxonomy's failure modes.
type Kind string

const (
	InvalidConfig        Kind = "InvalidConfig"
	UnknownClass         Kind = "UnknownClass"
	InvalidParameter     Kind = "InvalidParameter"
	WiringError          Kind = "WiringError"
	CycleDetected        Kind = "CycleDetected"
	CascadeDepthExceeded Kind = "CascadeDepthExceeded"
	HandlerFault         Kind = "HandlerFault"
	StepFault            Kind = "StepFault"
	OptimizationTimeout  Kind = "OptimizationTimeout"
	SolverDivergence     Kind = "SolverDivergence"
)

// Fatal reports whether a Fault of this Kind terminates the simulation
// (§7: "All other errors in build or run terminate the simulation").
// HandlerFault is the sole kind recovered locally.
func (k Kind) Fatal() bool {
	return k != HandlerFault
}

// Fault is the structured diagnostic carried by every error kind in §7.
// It can carry the originating tick, the component/agent ID responsible,
// the bus topic in play (if any), and the underlying cause; each is set
// only where the creator annotates it.
type Fault struct {
	Kind  Kind
	Tick  int
	ID    string // component or agent ID, empty if not applicable
	Topic string // bus topic, empty if not applicable
	Msg   string
	Cause error
}

// New constructs a Fault with no cause.
func New(kind Kind, msg string) *Fault {
	return &Fault{Kind: kind, Msg: msg}
}

// Wrap constructs a Fault carrying an underlying cause, preserving it for
// errors.Is/errors.As via Unwrap.
func Wrap(kind Kind, msg string, cause error) *Fault {
	return &Fault{Kind: kind, Msg: msg, Cause: cause}
}

// WithTick returns a copy of f annotated with the tick index.
func (f *Fault) WithTick(tick int) *Fault {
	c := *f
	c.Tick = tick
	return &c
}

// WithID returns a copy of f annotated with the offending component/agent ID.
func (f *Fault) WithID(id string) *Fault {
	c := *f
	c.ID = id
	return &c
}

// WithTopic returns a copy of f annotated with the originating bus topic.
func (f *Fault) WithTopic(topic string) *Fault {
	c := *f
	c.Topic = topic
	return &c
}

func (f *Fault) Error() string {
	s := fmt.Sprintf("%s: %s", f.Kind, f.Msg)
	if f.ID != "" {
		s += fmt.Sprintf(" (id=%s)", f.ID)
	}
	if f.Topic != "" {
		s += fmt.Sprintf(" (topic=%s)", f.Topic)
	}
	s += fmt.Sprintf(" (tick=%d)", f.Tick)
	if f.Cause != nil {
		s += fmt.Sprintf(": %v", f.Cause)
	}
	return s
}

func (f *Fault) Unwrap() error { return f.Cause }

// IsKind reports whether err is (or wraps) a *Fault of the given Kind.
func IsKind(err error, kind Kind) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// Recorder receives non-fatal faults (HandlerFault) for logging/metrics.
// The bus and components call Record instead of returning the fault, since
// HandlerFault never aborts the caller per §4.1/§7.
type Recorder interface {
	Record(f *Fault)
}

// NoopRecorder discards every fault. Useful as a zero-value default so
// callers never need a nil check.
type NoopRecorder struct{}

func (NoopRecorder) Record(*Fault) {}
