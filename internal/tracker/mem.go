package tracker

import (
	"github.com/hafixo/lttng-analyses/internal/event"
)

// Page accounting is attributed to the syscall in flight on the event's CPU;
// page activity outside any tracked syscall is not recorded.

func (t *Tracker) handleMMPageAlloc(ev *event.Event) {
	if req := t.currentRequest(ev); req != nil {
		req.PagesAllocated++
	}
}

func (t *Tracker) handleMMPageFree(ev *event.Event) {
	if req := t.currentRequest(ev); req != nil {
		req.PagesFreed++
	}
}

func (t *Tracker) handleWakeupKswapd(ev *event.Event) {
	if req := t.currentRequest(ev); req != nil {
		req.WokeKswapd = true
	}
}

func (t *Tracker) handleWritebackPagesWritten(ev *event.Event) {
	pages, ok := ev.Uint(event.FieldPages)
	if !ok {
		return
	}
	if req := t.currentRequest(ev); req != nil {
		req.PagesWritten += pages
	}
}
