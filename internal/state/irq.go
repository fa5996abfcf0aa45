package state

import "github.com/hafixo/lttng-analyses/internal/event"

// IRQ is the shared record of one interrupt span on a CPU.
type IRQ struct {
	ID      uint32
	CPU     uint32
	BeginTS uint64
	EndTS   uint64
}

// Pending reports whether the span has not ended yet.
func (i *IRQ) Pending() bool { return i.EndTS == 0 }

// Duration is the serviced span length, 0 while pending.
func (i *IRQ) Duration() uint64 {
	if i.Pending() {
		return 0
	}
	return i.EndTS - i.BeginTS
}

// HardIRQ is a hardware interrupt span. Hard IRQs do not nest on a single
// core in this model.
type HardIRQ struct {
	IRQ
	// Ret is the handler return code, set when the exit event is seen.
	Ret int64
}

// NewHardIRQFromEntry builds a hard IRQ span from an irq_handler_entry event.
// The end timestamp and return code are finalized externally.
func NewHardIRQFromEntry(ev *event.Event) *HardIRQ {
	id, _ := ev.Uint(event.FieldIRQ)
	return &HardIRQ{
		IRQ: IRQ{ID: uint32(id), CPU: ev.CPU, BeginTS: ev.Timestamp},
	}
}

// SoftIRQ is a software interrupt span. Raising and servicing are temporally
// decoupled, so the raise timestamp is carried separately from the span
// begin.
type SoftIRQ struct {
	IRQ
	RaiseTS uint64
}

// NewSoftIRQFromRaise builds a softirq record from a softirq_raise event,
// carrying only the raise timestamp.
func NewSoftIRQFromRaise(ev *event.Event) *SoftIRQ {
	vec, _ := ev.Uint(event.FieldVec)
	return &SoftIRQ{
		IRQ:     IRQ{ID: uint32(vec), CPU: ev.CPU},
		RaiseTS: ev.Timestamp,
	}
}

// NewSoftIRQFromEntry builds a softirq record from a softirq_entry event,
// carrying only the begin timestamp. It is used when servicing starts with no
// earlier raise on record.
func NewSoftIRQFromEntry(ev *event.Event) *SoftIRQ {
	vec, _ := ev.Uint(event.FieldVec)
	return &SoftIRQ{
		IRQ: IRQ{ID: uint32(vec), CPU: ev.CPU, BeginTS: ev.Timestamp},
	}
}
