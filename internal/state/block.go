package state

import "github.com/hafixo/lttng-analyses/internal/event"

// SectorSize is the logical sector size in bytes, as reported by the kernel
// block layer.
const SectorSize = 512

// BlockIORequest is one request pending on a block device, keyed by
// (dev, sector) while in flight.
type BlockIORequest struct {
	IORequest
	Dev      uint64
	Sector   uint64
	NrSector uint64
}

// NewBlockFromIssue builds a block request from a block_rq_issue event. The
// byte size derives from the sector count; an even encoded rwbs value denotes
// a read, an odd one a write.
func NewBlockFromIssue(ev *event.Event) *BlockIORequest {
	dev, _ := ev.Uint(event.FieldDev)
	sector, _ := ev.Uint(event.FieldSector)
	nrSector, _ := ev.Uint(event.FieldNrSector)
	tid, _ := ev.Int(event.FieldTID)

	op := OpWrite
	if rwbs, _ := ev.Uint(event.FieldRWBS); rwbs%2 == 0 {
		op = OpRead
	}

	return &BlockIORequest{
		IORequest: newIORequest(op, ev.Timestamp, int64(nrSector)*SectorSize, tid),
		Dev:       dev,
		Sector:    sector,
		NrSector:  nrSector,
	}
}

// UpdateFromComplete finalizes the span from a block_rq_complete event.
// Matching the completion to the pending request and removing it from the
// device's pending map is the caller's responsibility.
func (r *BlockIORequest) UpdateFromComplete(ev *event.Event) {
	r.completeSpan(ev.Timestamp)
}

// BlockRemapRequest links a request's new (dev, sector) identity to its old
// one, so pending requests can be tracked through remapping layers such as
// device-mapper.
type BlockRemapRequest struct {
	Dev       uint64
	Sector    uint64
	OldDev    uint64
	OldSector uint64
}

// NewBlockRemap builds a remap link from a block_bio_remap event.
func NewBlockRemap(ev *event.Event) *BlockRemapRequest {
	dev, _ := ev.Uint(event.FieldDev)
	sector, _ := ev.Uint(event.FieldSector)
	oldDev, _ := ev.Uint(event.FieldOldDev)
	oldSector, _ := ev.Uint(event.FieldOldSector)
	return &BlockRemapRequest{
		Dev:       dev,
		Sector:    sector,
		OldDev:    oldDev,
		OldSector: oldSector,
	}
}

// Disk tracks the requests pending on one block device, indexed by sector.
type Disk struct {
	Dev             uint64
	PendingRequests map[uint64]*BlockIORequest
}

// NewDisk returns a disk with no pending requests.
func NewDisk(dev uint64) *Disk {
	return &Disk{
		Dev:             dev,
		PendingRequests: make(map[uint64]*BlockIORequest),
	}
}
