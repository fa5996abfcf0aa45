package tracker

import (
	"golang.org/x/sys/unix"

	"github.com/hafixo/lttng-analyses/internal/event"
	"github.com/hafixo/lttng-analyses/internal/state"
)

// Statedump events describe tasks and descriptors that were already alive
// when tracing started, so the registries are seeded rather than built from
// entry events. Statedump-seeded descriptors stay unclassified; their
// transfers land in the unknown counters.

func (t *Tracker) handleStatedumpProcessState(ev *event.Event) {
	tid, ok := ev.Int(event.FieldTID)
	if !ok {
		return
	}
	proc := t.sys.GetOrCreateProcess(tid)
	if pid, ok := ev.Int(event.FieldPID); ok {
		proc.PID = pid
	}
	if proc.Comm == "" {
		if name, ok := ev.Str(event.FieldName); ok {
			proc.Comm = name
		}
	}
}

func (t *Tracker) handleStatedumpFileDescriptor(ev *event.Event) {
	pid, ok := ev.Int(event.FieldPID)
	if !ok {
		return
	}
	num, ok := ev.Int(event.FieldFD)
	if !ok {
		return
	}

	proc := t.sys.GetOrCreateProcess(pid)
	if _, tracked := proc.FDs[num]; tracked {
		return
	}

	fd := state.NewFD(num)
	if filename, ok := ev.Str(event.FieldFilename); ok {
		fd.Filename = filename
	}
	if flags, ok := ev.Int(event.FieldFlags); ok {
		fd.Cloexec = flags&unix.O_CLOEXEC == unix.O_CLOEXEC
	}
	proc.FDs[num] = fd
}
