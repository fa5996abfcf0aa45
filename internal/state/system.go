// Package state holds the live entities a kernel trace translates into:
// processes and their descriptor tables, per-CPU scheduling and interrupt
// context, and pending I/O requests at the syscall and block layers.
//
// All state is owned by a single System context passed explicitly to the
// event-processing layer; there is no ambient singleton state and no locking.
// Processing is single-threaded by construction.
package state

// System is the root context object owning every registry.
type System struct {
	// Processes is indexed by tid.
	Processes map[int64]*Process
	// CPUs is indexed by core id.
	CPUs map[uint32]*CPU
	// Disks is indexed by device number.
	Disks map[uint64]*Disk
}

// NewSystem returns an empty system context.
func NewSystem() *System {
	return &System{
		Processes: make(map[int64]*Process),
		CPUs:      make(map[uint32]*CPU),
		Disks:     make(map[uint64]*Disk),
	}
}

// Process returns the process for a tid, or nil if untracked.
func (s *System) Process(tid int64) *Process {
	return s.Processes[tid]
}

// GetOrCreateProcess returns the process for a tid, creating an empty record
// on first sight.
func (s *System) GetOrCreateProcess(tid int64) *Process {
	p, ok := s.Processes[tid]
	if !ok {
		p = NewProcess(tid, -1, "")
		s.Processes[tid] = p
	}
	return p
}

// CPU returns the record for a core, or nil if untracked.
func (s *System) CPU(id uint32) *CPU {
	return s.CPUs[id]
}

// GetOrCreateCPU returns the record for a core, creating it on first sight.
func (s *System) GetOrCreateCPU(id uint32) *CPU {
	c, ok := s.CPUs[id]
	if !ok {
		c = NewCPU(id)
		s.CPUs[id] = c
	}
	return c
}

// Disk returns the record for a block device, or nil if untracked.
func (s *System) Disk(dev uint64) *Disk {
	return s.Disks[dev]
}

// GetOrCreateDisk returns the record for a block device, creating it on
// first sight.
func (s *System) GetOrCreateDisk(dev uint64) *Disk {
	d, ok := s.Disks[dev]
	if !ok {
		d = NewDisk(dev)
		s.Disks[dev] = d
	}
	return d
}

// PendingBlockRequest returns the in-flight block request for a
// (device, sector) key, or nil.
func (s *System) PendingBlockRequest(dev, sector uint64) *BlockIORequest {
	d := s.Disks[dev]
	if d == nil {
		return nil
	}
	return d.PendingRequests[sector]
}
