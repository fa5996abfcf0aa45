// Package tracereader replays trace dumps into the event handler. Dumps are
// JSON lines, one record per event:
//
//	{"name":"syscall_entry_read","ts":1000,"cpu":0,"fields":{"fd":3,"count":4096}}
//
// The reader enforces the ordering contract of the state layer: timestamps
// must be non-decreasing.
package tracereader

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/hafixo/lttng-analyses/internal/event"
)

// Handler consumes decoded events in order.
type Handler interface {
	HandleEvent(ev *event.Event) error
}

// Record is the wire form of one trace event.
type Record struct {
	Name      string         `json:"name"`
	Timestamp uint64         `json:"ts"`
	CPU       uint32         `json:"cpu"`
	Fields    map[string]any `json:"fields"`
}

// Event converts the record into the state layer's event view.
func (r *Record) Event() *event.Event {
	ev := event.New(r.Name, r.Timestamp, r.CPU)
	for name, value := range r.Fields {
		ev.WithField(name, value)
	}
	return ev
}

// Reader decodes a trace dump and dispatches its events.
type Reader struct {
	src     *bufio.Scanner
	handler Handler
}

// New creates a reader over a trace dump.
func New(src io.Reader, handler Handler) *Reader {
	scanner := bufio.NewScanner(src)
	// Statedump filename fields can make for long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{src: scanner, handler: handler}
}

// Run replays the whole dump. It fails on malformed lines and on timestamp
// ordering violations; handler errors abort the replay.
func (r *Reader) Run() error {
	var lastTS uint64
	line := 0
	for r.src.Scan() {
		line++
		raw := r.src.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return errors.Wrapf(err, "failed to decode trace record at line %d", line)
		}
		if rec.Timestamp < lastTS {
			return errors.Errorf("trace record at line %d violates timestamp ordering: %d < %d",
				line, rec.Timestamp, lastTS)
		}
		lastTS = rec.Timestamp

		if err := r.handler.HandleEvent(rec.Event()); err != nil {
			return errors.Wrapf(err, "failed to process trace record at line %d", line)
		}
	}
	return errors.Wrap(r.src.Err(), "failed to read trace dump")
}
