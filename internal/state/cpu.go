package state

// CPU is the scheduling and interrupt context of one core.
type CPU struct {
	ID uint32
	// CurrentTID is the task currently scheduled, -1 until the first
	// sched_switch is seen.
	CurrentTID int64
	// CurrentHardIRQ is the hard IRQ being serviced, nil outside interrupt
	// context. Hard IRQs do not nest on a single core.
	CurrentHardIRQ *HardIRQ
	// CurrentSoftIRQs holds the pending softirqs per vector, ordered
	// chronologically: several instances of the same vector may be raised
	// before any is serviced.
	CurrentSoftIRQs map[uint32][]*SoftIRQ
}

// NewCPU returns a CPU with no scheduled task and no interrupt context.
func NewCPU(id uint32) *CPU {
	return &CPU{
		ID:              id,
		CurrentTID:      -1,
		CurrentSoftIRQs: make(map[uint32][]*SoftIRQ),
	}
}
