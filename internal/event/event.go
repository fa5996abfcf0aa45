// Package event defines the trace event view consumed by the state layer.
//
// Events arrive pre-decoded from the trace reader in non-decreasing timestamp
// order. Field lookup distinguishes an absent field from one that is present
// with a zero value, because several optional fields (family, v4addr, len)
// change the meaning of an event when present.
package event

import "strings"

// Field names exposed by the kernel tracepoints this layer consumes. The
// names are compatibility-significant: the trace reader must preserve them.
const (
	FieldRet      = "ret"
	FieldFilename = "filename"
	FieldFlags    = "flags"
	FieldFamily   = "family"
	FieldV4Addr   = "v4addr"
	FieldSPort    = "sport"
	FieldFD       = "fd"
	FieldFDIn     = "fd_in"
	FieldFDOut    = "fd_out"
	FieldLen      = "len"
	FieldCount    = "count"
	FieldInFD     = "in_fd"
	FieldOutFD    = "out_fd"
	FieldNBytes   = "nbytes"
	FieldIRQ      = "irq"
	FieldVec      = "vec"
	FieldDev      = "dev"
	FieldSector   = "sector"
	FieldNrSector = "nr_sector"
	FieldTID      = "tid"
	FieldRWBS     = "rwbs"

	FieldOldDev    = "old_dev"
	FieldOldSector = "old_sector"
	FieldPID       = "pid"
	FieldName      = "name"
	FieldComm      = "comm"
	FieldPrevTID   = "prev_tid"
	FieldNextTID   = "next_tid"
	FieldNextComm  = "next_comm"
	FieldParentTID = "parent_tid"
	FieldParentPID = "parent_pid"
	FieldChildTID  = "child_tid"
	FieldChildPID  = "child_pid"
	FieldChildComm = "child_comm"
	FieldPages     = "pages"
)

// Syscall tracepoint name prefixes, including the 32-bit compat variants.
const (
	syscallEntryPrefix       = "syscall_entry_"
	syscallExitPrefix        = "syscall_exit_"
	compatSyscallEntryPrefix = "compat_syscall_entry_"
	compatSyscallExitPrefix  = "compat_syscall_exit_"
)

// Event is one timestamped trace record. Timestamps are nanoseconds since
// boot; zero is reserved as the unset value throughout the state layer.
type Event struct {
	Name      string
	Timestamp uint64
	CPU       uint32

	fields map[string]any
}

// New creates an event with no fields.
func New(name string, ts uint64, cpu uint32) *Event {
	return &Event{
		Name:      name,
		Timestamp: ts,
		CPU:       cpu,
		fields:    make(map[string]any),
	}
}

// WithField sets a field and returns the event for chaining.
func (e *Event) WithField(name string, value any) *Event {
	e.fields[name] = value
	return e
}

// Has reports whether a field is present, regardless of its value.
func (e *Event) Has(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// Int returns a field as a signed integer. The second return value reports
// presence: a missing field is never confused with a present zero.
func (e *Event) Int(name string) (int64, bool) {
	switch v := e.fields[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		// JSON decoders hand integers over as float64.
		return int64(v), true
	}
	return 0, false
}

// Uint returns a field as an unsigned integer.
func (e *Event) Uint(name string) (uint64, bool) {
	v, ok := e.Int(name)
	if !ok || v < 0 {
		return 0, ok && v >= 0
	}
	return uint64(v), true
}

// Str returns a string field.
func (e *Event) Str(name string) (string, bool) {
	v, ok := e.fields[name].(string)
	return v, ok
}

// Fields exposes the raw field map for expression evaluation. Callers must
// treat it as read-only.
func (e *Event) Fields() map[string]any {
	return e.fields
}

// IsSyscallEntry reports whether the event name marks a syscall entry.
func IsSyscallEntry(name string) bool {
	return strings.HasPrefix(name, syscallEntryPrefix) ||
		strings.HasPrefix(name, compatSyscallEntryPrefix)
}

// IsSyscallExit reports whether the event name marks a syscall exit.
func IsSyscallExit(name string) bool {
	return strings.HasPrefix(name, syscallExitPrefix) ||
		strings.HasPrefix(name, compatSyscallExitPrefix)
}

// SyscallName strips the entry/exit tracepoint prefix from an event name.
// Non-syscall event names are returned unchanged.
func SyscallName(name string) string {
	for _, prefix := range []string{
		compatSyscallEntryPrefix, compatSyscallExitPrefix,
		syscallEntryPrefix, syscallExitPrefix,
	} {
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}
