package harness

import (
	"encoding/json"
	"os"

	"github.com/leixiaohui-1974/CHS-SDK/state"
)

// TickResult is the per-tick snapshot the harness appends to history:
// simulated time plus every component's state at that instant.
type TickResult struct {
	Time   float64                 `json:"time"`
	States map[string]state.State `json:"states"`
}

// Sink receives TickResults as they are produced, letting long runs
// flush and truncate in-memory history instead of retaining everything.
// New installs MemorySink, under which history simply grows in memory.
type Sink interface {
	WriteTick(result TickResult) error
	Close() error
}

// MemorySink is a no-op Sink: the harness's own in-memory History slice
// is the only record kept. This is the implicit default.
type MemorySink struct{}

func (MemorySink) WriteTick(TickResult) error { return nil }
func (MemorySink) Close() error               { return nil }

// JSONLinesFileSink appends one JSON object per tick to a file, letting
// the harness truncate its in-memory history between flush intervals
// without losing data.
type JSONLinesFileSink struct {
	f   *os.File
	enc *json.Encoder
}

// NewJSONLinesFileSink opens (creating if necessary) path for appending
// newline-delimited JSON TickResults.
func NewJSONLinesFileSink(path string) (*JSONLinesFileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLinesFileSink{f: f, enc: json.NewEncoder(f)}, nil
}

func (s *JSONLinesFileSink) WriteTick(result TickResult) error {
	return s.enc.Encode(result)
}

func (s *JSONLinesFileSink) Close() error {
	return s.f.Close()
}
