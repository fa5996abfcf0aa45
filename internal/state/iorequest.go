package state

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/hafixo/lttng-analyses/internal/event"
)

// Operation is the canonical kind of an I/O request.
type Operation int

const (
	OpOpen Operation = iota + 1
	OpRead
	OpWrite
	OpClose
	OpSync
)

func (op Operation) String() string {
	switch op {
	case OpOpen:
		return "open"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpClose:
		return "close"
	case OpSync:
		return "sync"
	default:
		return "unknown"
	}
}

// Request is implemented by every I/O request kind. Consumers recover the
// concrete kind with a type switch.
type Request interface {
	Base() *IORequest
}

// SyscallRequest is implemented by the syscall-level request kinds.
type SyscallRequest interface {
	Request
	SyscallBase() *SyscallIORequest
}

// IORequest is the span of one I/O operation from entry to exit.
type IORequest struct {
	Op      Operation
	BeginTS uint64
	EndTS   uint64
	// Duration is EndTS - BeginTS once the request is finalized.
	Duration uint64
	// Size is the requested size in bytes, -1 until known. Some syscalls
	// only report a size on completion.
	Size int64
	// TID of the task that triggered the request.
	TID int64
	// Errno is the positive error number when the operation failed, 0
	// otherwise. A failed request is data, not an error.
	Errno int64
}

func newIORequest(op Operation, beginTS uint64, size, tid int64) IORequest {
	return IORequest{
		Op:      op,
		BeginTS: beginTS,
		Size:    size,
		TID:     tid,
	}
}

// Base returns the shared request record.
func (r *IORequest) Base() *IORequest { return r }

// Pending reports whether the request has not been finalized yet.
func (r *IORequest) Pending() bool { return r.EndTS == 0 }

// completeSpan closes the request's time span.
func (r *IORequest) completeSpan(endTS uint64) {
	r.EndTS = endTS
	r.Duration = endTS - r.BeginTS
}

// SyscallIORequest is the common record of syscall-level requests, including
// page accounting collected while the syscall was in flight.
type SyscallIORequest struct {
	IORequest
	SyscallName string
	// FD is the descriptor involved, -1 when not applicable or, for open
	// requests, until the exit event resolves it.
	FD int64
	// ReturnedSize is the byte count reported on syscall exit, -1 until
	// then. It may differ from the size requested at entry.
	ReturnedSize int64

	PagesAllocated uint64
	PagesFreed     uint64
	PagesWritten   uint64
	// WokeKswapd records whether the request forced a kswapd wakeup.
	WokeKswapd bool
}

func newSyscallIORequest(op Operation, beginTS uint64, size, tid int64, name string) SyscallIORequest {
	return SyscallIORequest{
		IORequest:    newIORequest(op, beginTS, size, tid),
		SyscallName:  name,
		FD:           -1,
		ReturnedSize: -1,
	}
}

// SyscallBase returns the shared syscall-level record.
func (r *SyscallIORequest) SyscallBase() *SyscallIORequest { return r }

// UpdateFromExit finalizes the span and turns a negative return value into a
// stored errno.
func (r *SyscallIORequest) UpdateFromExit(ev *event.Event) {
	r.completeSpan(ev.Timestamp)
	if ret, _ := ev.Int(event.FieldRet); ret < 0 {
		r.Errno = -ret
	}
}

// recordReturnedSize stores a non-negative return value as the returned size
// and backfills the requested size when none was known at entry, as with
// recvmsg, sendmsg, splice and sendfile64.
func (r *SyscallIORequest) recordReturnedSize(ev *event.Event) {
	ret, _ := ev.Int(event.FieldRet)
	if ret < 0 {
		return
	}
	r.ReturnedSize = ret
	if r.Size < 0 {
		r.Size = ret
	}
}

// OpenIORequest tracks a syscall that produces a new descriptor.
type OpenIORequest struct {
	SyscallIORequest
	Filename string
	FDType   FDType
	// Family is the socket address family when known, unix.AF_UNSPEC
	// otherwise.
	Family  uint16
	Cloexec bool
	// SourceFD is the descriptor a duplication syscall referenced, -1 for
	// the other open kinds.
	SourceFD int64
}

func newOpenIORequest(beginTS uint64, tid int64, name, filename string, fdType FDType) *OpenIORequest {
	return &OpenIORequest{
		SyscallIORequest: newSyscallIORequest(OpOpen, beginTS, -1, tid, name),
		Filename:         filename,
		FDType:           fdType,
		Family:           unix.AF_UNSPEC,
		SourceFD:         -1,
	}
}

// UpdateFromExit finalizes the request and assigns the new descriptor number
// on success.
func (r *OpenIORequest) UpdateFromExit(ev *event.Event) {
	r.SyscallIORequest.UpdateFromExit(ev)
	if ret, _ := ev.Int(event.FieldRet); ret >= 0 {
		r.FD = ret
	}
}

// NewOpenFromDisk builds an open request for open/openat entry events. The
// descriptor is classified as disk-backed up front.
func NewOpenFromDisk(ev *event.Event, tid int64) *OpenIORequest {
	filename, _ := ev.Str(event.FieldFilename)
	req := newOpenIORequest(ev.Timestamp, tid, event.SyscallName(ev.Name), filename, FDTypeDisk)
	if flags, ok := ev.Int(event.FieldFlags); ok {
		req.Cloexec = flags&unix.O_CLOEXEC == unix.O_CLOEXEC
	}
	return req
}

// NewOpenFromAccept builds an open request for accept and accept4 entry
// events. When the embedded IPv4 fields are present the label resolves to
// "address:port" instead of the generic "socket".
func NewOpenFromAccept(ev *event.Event, tid int64) *OpenIORequest {
	req := newOpenIORequest(ev.Timestamp, tid, event.SyscallName(ev.Name), "socket", FDTypeNet)
	if family, ok := ev.Uint(event.FieldFamily); ok {
		req.Family = uint16(family)
		if req.Family == unix.AF_INET {
			if addr, ok := ev.Uint(event.FieldV4Addr); ok {
				sport, _ := ev.Uint(event.FieldSPort)
				req.Filename = fmt.Sprintf("%s:%d", v4AddrString(uint32(addr)), sport)
			}
		}
	}
	return req
}

// NewOpenFromSocket builds an open request for socket entry events.
func NewOpenFromSocket(ev *event.Event, tid int64) *OpenIORequest {
	req := newOpenIORequest(ev.Timestamp, tid, "socket", "socket", FDTypeNet)
	if family, ok := ev.Uint(event.FieldFamily); ok {
		req.Family = uint16(family)
	}
	return req
}

// NewOpenFromOldFD builds an open request for duplication syscalls (fcntl,
// dup, dup2, dup3). The new descriptor inherits the referenced descriptor's
// filename and type; an untracked source degrades to unknown/"unknown".
func NewOpenFromOldFD(ev *event.Event, tid int64, old *FD) *OpenIORequest {
	filename := "unknown"
	fdType := FDTypeUnknown
	if old != nil {
		filename = old.Filename
		fdType = old.Type
	}
	req := newOpenIORequest(ev.Timestamp, tid, event.SyscallName(ev.Name), filename, fdType)
	if fd, ok := ev.Int(event.FieldFD); ok {
		req.SourceFD = fd
	}
	return req
}

// CloseIORequest tracks a close syscall.
type CloseIORequest struct {
	SyscallIORequest
}

// NewClose builds a close request from a close entry event.
func NewClose(ev *event.Event, tid int64) *CloseIORequest {
	req := &CloseIORequest{
		SyscallIORequest: newSyscallIORequest(OpClose, ev.Timestamp, -1, tid, "close"),
	}
	if fd, ok := ev.Int(event.FieldFD); ok {
		req.FD = fd
	}
	return req
}

// ReadWriteIORequest tracks a data-transfer syscall, either on a single
// descriptor or on an fd_in/fd_out pair for splice and sendfile64.
type ReadWriteIORequest struct {
	SyscallIORequest
	// FDIn/FDOut are unused (-1) when FD is set.
	FDIn  int64
	FDOut int64
}

// UpdateFromExit finalizes the request and records the returned size.
func (r *ReadWriteIORequest) UpdateFromExit(ev *event.Event) {
	r.SyscallIORequest.UpdateFromExit(ev)
	r.recordReturnedSize(ev)
}

// NewReadWriteFromFDEvent builds a transfer request from an entry event that
// carries a single fd. The direction comes from read-syscall set membership.
// sizeField names the entry-time size field; it is empty for syscalls that
// only report a size on completion, leaving the size to be backfilled at
// exit.
func NewReadWriteFromFDEvent(ev *event.Event, tid int64, sizeField string) *ReadWriteIORequest {
	size := int64(-1)
	if sizeField != "" {
		if v, ok := ev.Int(sizeField); ok {
			size = v
		}
	}

	name := event.SyscallName(ev.Name)
	op := OpWrite
	if IsReadSyscall(name) {
		op = OpRead
	}

	req := &ReadWriteIORequest{
		SyscallIORequest: newSyscallIORequest(op, ev.Timestamp, size, tid, name),
		FDIn:             -1,
		FDOut:            -1,
	}
	if fd, ok := ev.Int(event.FieldFD); ok {
		req.FD = fd
	}
	return req
}

// NewSplice builds a transfer request from a splice entry event.
func NewSplice(ev *event.Event, tid int64) *ReadWriteIORequest {
	size := int64(-1)
	if v, ok := ev.Int(event.FieldLen); ok {
		size = v
	}
	req := &ReadWriteIORequest{
		SyscallIORequest: newSyscallIORequest(OpRead, ev.Timestamp, size, tid, "splice"),
		FDIn:             -1,
		FDOut:            -1,
	}
	if fd, ok := ev.Int(event.FieldFDIn); ok {
		req.FDIn = fd
	}
	if fd, ok := ev.Int(event.FieldFDOut); ok {
		req.FDOut = fd
	}
	return req
}

// NewSendfile builds a transfer request from a sendfile64 entry event.
func NewSendfile(ev *event.Event, tid int64) *ReadWriteIORequest {
	size := int64(-1)
	if v, ok := ev.Int(event.FieldCount); ok {
		size = v
	}
	req := &ReadWriteIORequest{
		SyscallIORequest: newSyscallIORequest(OpRead, ev.Timestamp, size, tid, "sendfile64"),
		FDIn:             -1,
		FDOut:            -1,
	}
	if fd, ok := ev.Int(event.FieldInFD); ok {
		req.FDIn = fd
	}
	if fd, ok := ev.Int(event.FieldOutFD); ok {
		req.FDOut = fd
	}
	return req
}

// SyncIORequest tracks a sync-class syscall, with an optional descriptor.
type SyncIORequest struct {
	SyscallIORequest
}

// UpdateFromExit finalizes the request and records the returned size.
func (r *SyncIORequest) UpdateFromExit(ev *event.Event) {
	r.SyscallIORequest.UpdateFromExit(ev)
	r.recordReturnedSize(ev)
}

// NewSyncFromSync builds a request for the descriptor-less sync syscall.
func NewSyncFromSync(ev *event.Event, tid int64) *SyncIORequest {
	return &SyncIORequest{
		SyscallIORequest: newSyscallIORequest(OpSync, ev.Timestamp, -1, tid, "sync"),
	}
}

// NewSyncFromFsync builds a request for fsync and fdatasync entry events.
func NewSyncFromFsync(ev *event.Event, tid int64) *SyncIORequest {
	req := &SyncIORequest{
		SyscallIORequest: newSyscallIORequest(OpSync, ev.Timestamp, -1, tid, event.SyscallName(ev.Name)),
	}
	if fd, ok := ev.Int(event.FieldFD); ok {
		req.FD = fd
	}
	return req
}

// NewSyncFromSyncFileRange builds a request for sync_file_range entry events,
// which carry the size up front in nbytes.
func NewSyncFromSyncFileRange(ev *event.Event, tid int64) *SyncIORequest {
	size := int64(-1)
	if v, ok := ev.Int(event.FieldNBytes); ok {
		size = v
	}
	req := &SyncIORequest{
		SyscallIORequest: newSyscallIORequest(OpSync, ev.Timestamp, size, tid, "sync_file_range"),
	}
	if fd, ok := ev.Int(event.FieldFD); ok {
		req.FD = fd
	}
	return req
}

// v4AddrString renders a big-endian packed IPv4 address as dotted quad.
func v4AddrString(addr uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", addr>>24&0xff, addr>>16&0xff, addr>>8&0xff, addr&0xff)
}
