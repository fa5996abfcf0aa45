// Package tracker routes kernel trace events into the state model and
// surfaces lifecycle transitions to registered notifiers.
//
// The tracker is the single owner of its System context: events must arrive
// in non-decreasing timestamp order on one goroutine, with every entry-class
// event preceding its matching exit or completion.
package tracker

import (
	"github.com/rs/zerolog"

	"github.com/hafixo/lttng-analyses/internal/event"
	"github.com/hafixo/lttng-analyses/internal/filter"
	"github.com/hafixo/lttng-analyses/internal/state"
)

// SyscallNotifier observes syscall lifecycle transitions. Exit is delivered
// after the syscall record and its I/O request have been finalized.
type SyscallNotifier interface {
	HandleSyscallEntry(proc *state.Process, sc *state.Syscall)
	HandleSyscallExit(proc *state.Process, sc *state.Syscall)
}

// IRQNotifier observes completed interrupt spans.
type IRQNotifier interface {
	HandleHardIRQExit(irq *state.HardIRQ)
	HandleSoftIRQExit(irq *state.SoftIRQ)
}

// BlockNotifier observes block request completions and remaps. The completed
// request has already been removed from its device's pending map; req on a
// remap is the re-keyed pending request, nil when none was pending under the
// old identity.
type BlockNotifier interface {
	HandleBlockComplete(req *state.BlockIORequest)
	HandleBlockRemap(remap *state.BlockRemapRequest, req *state.BlockIORequest)
}

// SchedNotifier observes context switches.
type SchedNotifier interface {
	HandleSchedSwitch(cpu *state.CPU, prevTID, nextTID int64)
}

// Tracker converts the event stream into live state.
type Tracker struct {
	sys *state.System
	log zerolog.Logger

	filter *filter.Filter

	syscallNotifier SyscallNotifier
	irqNotifier     IRQNotifier
	blockNotifier   BlockNotifier
	schedNotifier   SchedNotifier
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for skipped or unexpected events.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// WithFilter installs an event filter; events it rejects are not processed.
func WithFilter(f *filter.Filter) Option {
	return func(t *Tracker) { t.filter = f }
}

// WithSyscallNotifier registers a syscall lifecycle observer.
func WithSyscallNotifier(n SyscallNotifier) Option {
	return func(t *Tracker) { t.syscallNotifier = n }
}

// WithIRQNotifier registers an interrupt span observer.
func WithIRQNotifier(n IRQNotifier) Option {
	return func(t *Tracker) { t.irqNotifier = n }
}

// WithBlockNotifier registers a block request observer.
func WithBlockNotifier(n BlockNotifier) Option {
	return func(t *Tracker) { t.blockNotifier = n }
}

// WithSchedNotifier registers a context switch observer.
func WithSchedNotifier(n SchedNotifier) Option {
	return func(t *Tracker) { t.schedNotifier = n }
}

// New creates a tracker mutating the given system context.
func New(sys *state.System, opts ...Option) *Tracker {
	t := &Tracker{
		sys: sys,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// System returns the live state owned by the tracker.
func (t *Tracker) System() *state.System { return t.sys }

// HandleEvent routes one event to its handler. Events with no handler are
// ignored; malformed events are skipped with a debug log line. The returned
// error is always nil today and reserved for future fatal conditions.
func (t *Tracker) HandleEvent(ev *event.Event) error {
	if t.filter != nil {
		ok, err := t.filter.Match(ev)
		if err != nil {
			t.log.Debug().Str("event", ev.Name).Err(err).Msg("filter evaluation failed, skipping event")
			return nil
		}
		if !ok {
			return nil
		}
	}

	switch {
	case event.IsSyscallEntry(ev.Name):
		t.handleSyscallEntry(ev)
		return nil
	case event.IsSyscallExit(ev.Name):
		t.handleSyscallExit(ev)
		return nil
	}

	switch ev.Name {
	case "sched_switch":
		t.handleSchedSwitch(ev)
	case "sched_process_fork":
		t.handleSchedProcessFork(ev)
	case "sched_process_exec":
		t.handleSchedProcessExec(ev)
	case "sched_process_free":
		t.handleSchedProcessFree(ev)
	case "irq_handler_entry":
		t.handleIRQHandlerEntry(ev)
	case "irq_handler_exit":
		t.handleIRQHandlerExit(ev)
	case "softirq_raise":
		t.handleSoftIRQRaise(ev)
	case "softirq_entry":
		t.handleSoftIRQEntry(ev)
	case "softirq_exit":
		t.handleSoftIRQExit(ev)
	case "block_rq_issue":
		t.handleBlockRqIssue(ev)
	case "block_rq_complete":
		t.handleBlockRqComplete(ev)
	case "block_bio_remap":
		t.handleBlockBioRemap(ev)
	case "net_dev_xmit":
		t.handleNetDevXmit(ev)
	case "mm_page_alloc":
		t.handleMMPageAlloc(ev)
	case "mm_page_free":
		t.handleMMPageFree(ev)
	case "mm_vmscan_wakeup_kswapd":
		t.handleWakeupKswapd(ev)
	case "writeback_pages_written":
		t.handleWritebackPagesWritten(ev)
	case "lttng_statedump_process_state":
		t.handleStatedumpProcessState(ev)
	case "lttng_statedump_file_descriptor":
		t.handleStatedumpFileDescriptor(ev)
	}
	return nil
}

// currentProcess resolves the task scheduled on the event's CPU, or nil when
// no sched_switch has been seen on that core yet.
func (t *Tracker) currentProcess(ev *event.Event) *state.Process {
	cpu := t.sys.GetOrCreateCPU(ev.CPU)
	if cpu.CurrentTID < 0 {
		return nil
	}
	return t.sys.GetOrCreateProcess(cpu.CurrentTID)
}

// currentRequest returns the I/O request of the syscall in flight on the
// event's CPU, or nil.
func (t *Tracker) currentRequest(ev *event.Event) *state.SyscallIORequest {
	proc := t.currentProcess(ev)
	if proc == nil || proc.CurrentSyscall == nil || proc.CurrentSyscall.IO == nil {
		return nil
	}
	return proc.CurrentSyscall.IO.SyscallBase()
}
