package tracker

import (
	"github.com/hafixo/lttng-analyses/internal/event"
	"github.com/hafixo/lttng-analyses/internal/state"
)

// Entry-time size field per read/write syscall. Syscalls absent from this
// table (recvmsg, sendmsg) only report a size on completion, so the request
// size stays unset until exit.
var entrySizeFields = map[string]string{
	"read":     event.FieldCount,
	"readv":    event.FieldCount,
	"recvfrom": event.FieldLen,
	"write":    event.FieldCount,
	"writev":   event.FieldCount,
	"sendto":   event.FieldLen,
}

func (t *Tracker) handleSyscallEntry(ev *event.Event) {
	proc := t.currentProcess(ev)
	if proc == nil {
		return
	}
	if proc.CurrentSyscall != nil {
		t.log.Debug().
			Int64("tid", proc.TID).
			Str("pending", proc.CurrentSyscall.Name).
			Str("event", ev.Name).
			Msg("syscall entry while another is in flight, replacing")
	}

	sc := state.NewSyscallFromEntry(ev)
	sc.IO = t.newIORequest(ev, proc, sc.Name)
	proc.CurrentSyscall = sc

	if t.syscallNotifier != nil {
		t.syscallNotifier.HandleSyscallEntry(proc, sc)
	}
}

// newIORequest classifies the syscall name and builds the matching request
// kind, or nil for syscalls outside the tracked I/O classes.
func (t *Tracker) newIORequest(ev *event.Event, proc *state.Process, name string) state.SyscallRequest {
	switch {
	case state.IsDiskOpenSyscall(name):
		return state.NewOpenFromDisk(ev, proc.TID)
	case name == "accept" || name == "accept4":
		return state.NewOpenFromAccept(ev, proc.TID)
	case name == "socket":
		return state.NewOpenFromSocket(ev, proc.TID)
	case state.IsDupSyscall(name):
		var old *state.FD
		if fd, ok := ev.Int(event.FieldFD); ok {
			old = proc.FDs[fd]
		}
		return state.NewOpenFromOldFD(ev, proc.TID, old)
	case state.IsCloseSyscall(name):
		return state.NewClose(ev, proc.TID)
	case name == "splice":
		return state.NewSplice(ev, proc.TID)
	case name == "sendfile64":
		return state.NewSendfile(ev, proc.TID)
	case state.IsReadWriteSyscall(name):
		return state.NewReadWriteFromFDEvent(ev, proc.TID, entrySizeFields[name])
	case name == "sync":
		return state.NewSyncFromSync(ev, proc.TID)
	case name == "fsync" || name == "fdatasync":
		return state.NewSyncFromFsync(ev, proc.TID)
	case name == "sync_file_range":
		return state.NewSyncFromSyncFileRange(ev, proc.TID)
	default:
		return nil
	}
}

func (t *Tracker) handleSyscallExit(ev *event.Event) {
	proc := t.currentProcess(ev)
	if proc == nil || proc.CurrentSyscall == nil {
		return
	}

	sc := proc.CurrentSyscall
	sc.UpdateFromExit(ev)

	switch req := sc.IO.(type) {
	case *state.OpenIORequest:
		req.UpdateFromExit(ev)
		t.installOpenedFD(proc, req)
	case *state.CloseIORequest:
		req.UpdateFromExit(ev)
		t.applyClose(proc, req)
	case *state.ReadWriteIORequest:
		req.UpdateFromExit(ev)
		t.recordTransfer(proc, req)
	case *state.SyncIORequest:
		req.UpdateFromExit(ev)
		if fd := proc.FDs[req.FD]; fd != nil {
			fd.Requests = append(fd.Requests, req)
		}
	}

	if t.syscallNotifier != nil {
		t.syscallNotifier.HandleSyscallExit(proc, sc)
	}
	proc.CurrentSyscall = nil
}

// installOpenedFD places the descriptor resolved at exit into the process
// table. A duplication syscall whose source is still tracked clones it, so
// the new descriptor shares identity but starts with zeroed counters.
func (t *Tracker) installOpenedFD(proc *state.Process, req *state.OpenIORequest) {
	if req.FD < 0 {
		return
	}

	var fd *state.FD
	if old := proc.FDs[req.SourceFD]; req.SourceFD >= 0 && old != nil {
		fd = old.Clone()
		fd.Num = req.FD
	} else {
		fd = state.NewFD(req.FD)
		fd.Filename = req.Filename
		fd.Type = req.FDType
		fd.Family = req.Family
		fd.Cloexec = req.Cloexec
	}
	fd.Requests = append(fd.Requests, req)
	proc.FDs[req.FD] = fd
}

// applyClose drops the descriptor on success; a failed close leaves the
// table untouched.
func (t *Tracker) applyClose(proc *state.Process, req *state.CloseIORequest) {
	fd := proc.FDs[req.FD]
	if fd == nil {
		return
	}
	fd.Requests = append(fd.Requests, req)
	if req.Errno == 0 {
		delete(proc.FDs, req.FD)
	}
}

// recordTransfer updates the byte counters of the descriptors a successful
// transfer touched. Split-descriptor syscalls count the returned size as a
// read on fd_in and a write on fd_out.
func (t *Tracker) recordTransfer(proc *state.Process, req *state.ReadWriteIORequest) {
	if req.Errno != 0 || req.ReturnedSize < 0 {
		return
	}
	n := uint64(req.ReturnedSize)

	if req.FD >= 0 {
		fd := proc.FDs[req.FD]
		if fd == nil {
			fd = state.NewFD(req.FD)
			proc.FDs[req.FD] = fd
		}
		if req.Op == state.OpRead {
			fd.RecordRead(n)
		} else {
			fd.RecordWrite(n)
		}
		fd.Requests = append(fd.Requests, req)
		return
	}

	if in := proc.FDs[req.FDIn]; req.FDIn >= 0 && in != nil {
		in.RecordRead(n)
		in.Requests = append(in.Requests, req)
	}
	if out := proc.FDs[req.FDOut]; req.FDOut >= 0 && out != nil {
		out.RecordWrite(n)
		out.Requests = append(out.Requests, req)
	}
}

// handleNetDevXmit applies the maybe-net heuristic: a packet transmitted
// while the current task is inside a write-class syscall on an unknown-typed
// descriptor suggests that descriptor is a socket.
func (t *Tracker) handleNetDevXmit(ev *event.Event) {
	proc := t.currentProcess(ev)
	if proc == nil || proc.CurrentSyscall == nil {
		return
	}
	if !state.IsWriteSyscall(proc.CurrentSyscall.Name) {
		return
	}
	req, ok := proc.CurrentSyscall.IO.(*state.ReadWriteIORequest)
	if !ok || req.FD < 0 {
		return
	}
	if fd := proc.FDs[req.FD]; fd != nil && fd.Type == state.FDTypeUnknown {
		fd.Type = state.FDTypeMaybeNet
	}
}
