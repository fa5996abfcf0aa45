package tracker

import (
	"github.com/hafixo/lttng-analyses/internal/event"
	"github.com/hafixo/lttng-analyses/internal/state"
)

func (t *Tracker) handleIRQHandlerEntry(ev *event.Event) {
	cpu := t.sys.GetOrCreateCPU(ev.CPU)
	if cpu.CurrentHardIRQ != nil {
		// Hard IRQs do not nest on a single core; a second entry means the
		// previous exit was lost.
		t.log.Debug().
			Uint32("cpu", cpu.ID).
			Uint32("irq", cpu.CurrentHardIRQ.ID).
			Msg("hard irq entry while another is in flight, replacing")
	}
	cpu.CurrentHardIRQ = state.NewHardIRQFromEntry(ev)
}

func (t *Tracker) handleIRQHandlerExit(ev *event.Event) {
	cpu := t.sys.GetOrCreateCPU(ev.CPU)
	irq := cpu.CurrentHardIRQ
	if irq == nil {
		return
	}
	irq.EndTS = ev.Timestamp
	irq.Ret, _ = ev.Int(event.FieldRet)
	cpu.CurrentHardIRQ = nil

	if t.irqNotifier != nil {
		t.irqNotifier.HandleHardIRQExit(irq)
	}
}

func (t *Tracker) handleSoftIRQRaise(ev *event.Event) {
	cpu := t.sys.GetOrCreateCPU(ev.CPU)
	irq := state.NewSoftIRQFromRaise(ev)
	cpu.CurrentSoftIRQs[irq.ID] = append(cpu.CurrentSoftIRQs[irq.ID], irq)
}

// handleSoftIRQEntry starts servicing the oldest raised-but-unserviced
// instance of the vector, producing a single record carrying both the raise
// and begin timestamps. Servicing with no raise on record starts a fresh
// record.
func (t *Tracker) handleSoftIRQEntry(ev *event.Event) {
	cpu := t.sys.GetOrCreateCPU(ev.CPU)
	vec, _ := ev.Uint(event.FieldVec)

	for _, irq := range cpu.CurrentSoftIRQs[uint32(vec)] {
		if irq.BeginTS == 0 {
			irq.BeginTS = ev.Timestamp
			return
		}
	}

	irq := state.NewSoftIRQFromEntry(ev)
	cpu.CurrentSoftIRQs[irq.ID] = append(cpu.CurrentSoftIRQs[irq.ID], irq)
}

func (t *Tracker) handleSoftIRQExit(ev *event.Event) {
	cpu := t.sys.GetOrCreateCPU(ev.CPU)
	vec, _ := ev.Uint(event.FieldVec)
	pending := cpu.CurrentSoftIRQs[uint32(vec)]

	for i, irq := range pending {
		if irq.BeginTS != 0 && irq.EndTS == 0 {
			irq.EndTS = ev.Timestamp
			cpu.CurrentSoftIRQs[uint32(vec)] = append(pending[:i], pending[i+1:]...)
			if t.irqNotifier != nil {
				t.irqNotifier.HandleSoftIRQExit(irq)
			}
			return
		}
	}
}
