package tracker

import (
	"github.com/hafixo/lttng-analyses/internal/event"
	"github.com/hafixo/lttng-analyses/internal/state"
)

func (t *Tracker) handleBlockRqIssue(ev *event.Event) {
	req := state.NewBlockFromIssue(ev)
	disk := t.sys.GetOrCreateDisk(req.Dev)
	if _, busy := disk.PendingRequests[req.Sector]; busy {
		t.log.Debug().
			Uint64("dev", req.Dev).
			Uint64("sector", req.Sector).
			Msg("block issue on a sector with a pending request, replacing")
	}
	disk.PendingRequests[req.Sector] = req
}

func (t *Tracker) handleBlockRqComplete(ev *event.Event) {
	dev, _ := ev.Uint(event.FieldDev)
	sector, _ := ev.Uint(event.FieldSector)

	disk := t.sys.Disk(dev)
	if disk == nil {
		return
	}
	req := disk.PendingRequests[sector]
	if req == nil {
		return
	}

	req.UpdateFromComplete(ev)
	delete(disk.PendingRequests, sector)

	if t.blockNotifier != nil {
		t.blockNotifier.HandleBlockComplete(req)
	}
}

// handleBlockBioRemap re-keys a pending request under its new (dev, sector)
// identity so the later completion, reported against the remapped device,
// still matches.
func (t *Tracker) handleBlockBioRemap(ev *event.Event) {
	remap := state.NewBlockRemap(ev)

	var req *state.BlockIORequest
	if old := t.sys.Disk(remap.OldDev); old != nil {
		req = old.PendingRequests[remap.OldSector]
		if req != nil {
			delete(old.PendingRequests, remap.OldSector)
			req.Dev = remap.Dev
			req.Sector = remap.Sector
			t.sys.GetOrCreateDisk(remap.Dev).PendingRequests[remap.Sector] = req
		}
	}

	if t.blockNotifier != nil {
		t.blockNotifier.HandleBlockRemap(remap, req)
	}
}
