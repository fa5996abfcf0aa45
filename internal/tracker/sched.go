package tracker

import (
	"github.com/hafixo/lttng-analyses/internal/event"
)

func (t *Tracker) handleSchedSwitch(ev *event.Event) {
	prevTID, _ := ev.Int(event.FieldPrevTID)
	nextTID, ok := ev.Int(event.FieldNextTID)
	if !ok {
		return
	}

	cpu := t.sys.GetOrCreateCPU(ev.CPU)
	cpu.CurrentTID = nextTID

	next := t.sys.GetOrCreateProcess(nextTID)
	if comm, ok := ev.Str(event.FieldNextComm); ok {
		next.Comm = comm
	}
	next.PrevTID = prevTID

	if t.schedNotifier != nil {
		t.schedNotifier.HandleSchedSwitch(cpu, prevTID, nextTID)
	}
}

// handleSchedProcessFork seeds the child task and copies the parent's
// descriptor table. Inherited descriptors record the parent pid and share
// identity with the parent's entries, but their counters start from zero.
func (t *Tracker) handleSchedProcessFork(ev *event.Event) {
	childTID, ok := ev.Int(event.FieldChildTID)
	if !ok {
		return
	}
	childPID, _ := ev.Int(event.FieldChildPID)

	child := t.sys.GetOrCreateProcess(childTID)
	child.PID = childPID
	if comm, ok := ev.Str(event.FieldChildComm); ok {
		child.Comm = comm
	}

	parentTID, ok := ev.Int(event.FieldParentTID)
	if !ok {
		return
	}
	parent := t.sys.Process(parentTID)
	if parent == nil {
		return
	}
	parentPID, hasPID := ev.Int(event.FieldParentPID)
	if !hasPID {
		parentPID = parent.PID
	}

	for num, fd := range parent.FDs {
		inherited := fd.Clone()
		inherited.Parent = parentPID
		child.FDs[num] = inherited
	}
}

// handleSchedProcessExec drops close-on-exec descriptors from the task
// currently scheduled on the event's CPU.
func (t *Tracker) handleSchedProcessExec(ev *event.Event) {
	proc := t.currentProcess(ev)
	if proc == nil {
		return
	}
	if filename, ok := ev.Str(event.FieldFilename); ok {
		proc.Comm = filename
	}
	for num, fd := range proc.FDs {
		if fd.Cloexec {
			delete(proc.FDs, num)
		}
	}
}

// handleSchedProcessFree retires the task record once the kernel releases it.
func (t *Tracker) handleSchedProcessFree(ev *event.Event) {
	tid, ok := ev.Int(event.FieldTID)
	if !ok {
		return
	}
	delete(t.sys.Processes, tid)
}
