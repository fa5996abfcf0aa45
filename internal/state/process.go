package state

import "github.com/hafixo/lttng-analyses/internal/event"

// Syscall is the record of one in-flight or finished syscall of a task. I/O
// syscalls additionally carry the request object built at entry.
type Syscall struct {
	Name    string
	BeginTS uint64
	EndTS   uint64
	Ret     int64
	// Duration is EndTS - BeginTS once the exit event has been seen.
	Duration uint64
	// IO is set for I/O-class syscalls only.
	IO SyscallRequest
}

// NewSyscallFromEntry builds the syscall record from an entry event.
func NewSyscallFromEntry(ev *event.Event) *Syscall {
	return &Syscall{
		Name:    event.SyscallName(ev.Name),
		BeginTS: ev.Timestamp,
	}
}

// UpdateFromExit closes the syscall span and stores the raw return value.
func (s *Syscall) UpdateFromExit(ev *event.Event) {
	s.EndTS = ev.Timestamp
	s.Duration = s.EndTS - s.BeginTS
	s.Ret, _ = ev.Int(event.FieldRet)
}

// Process is one traced task and its descriptor table. At most one syscall is
// in flight per tid at any time.
type Process struct {
	TID  int64
	PID  int64
	Comm string
	// FDs is the open-descriptor table, indexed by descriptor number.
	FDs            map[int64]*FD
	CurrentSyscall *Syscall
	// PrevTID is the task scheduled before this one, -1 until the first
	// context switch.
	PrevTID int64
}

// NewProcess returns a process with an empty descriptor table. A pid of -1
// means the pid is not known yet.
func NewProcess(tid, pid int64, comm string) *Process {
	return &Process{
		TID:     tid,
		PID:     pid,
		Comm:    comm,
		FDs:     make(map[int64]*FD),
		PrevTID: -1,
	}
}
