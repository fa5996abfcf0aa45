package state

import "golang.org/x/sys/unix"

// FDType classifies what a descriptor points at.
type FDType int

const (
	FDTypeUnknown FDType = iota
	FDTypeDisk
	FDTypeNet
	// FDTypeMaybeNet marks descriptors that are probably, but not certainly,
	// network sockets: the type is inferred when a net_dev_xmit event fires
	// while a write syscall is in flight on an unknown-typed descriptor.
	// The inference is a heuristic and is kept as such.
	FDTypeMaybeNet
)

func (t FDType) String() string {
	switch t {
	case FDTypeDisk:
		return "disk"
	case FDTypeNet:
		return "net"
	case FDTypeMaybeNet:
		return "maybe_net"
	default:
		return "unknown"
	}
}

// FD is one open descriptor of a process, with byte counters bucketed by the
// descriptor's type at transfer time and a history of the syscall-level
// requests that touched it.
type FD struct {
	Num      int64
	Filename string
	Family   uint16
	Type     FDType
	// Parent is the pid the descriptor was inherited from, -1 otherwise.
	Parent  int64
	Cloexec bool

	NetRead   uint64
	NetWrite  uint64
	DiskRead  uint64
	DiskWrite uint64
	// Unclassified transfers (FD passing, statedump-seeded descriptors).
	UnkRead  uint64
	UnkWrite uint64
	// Totals across all buckets.
	Read  uint64
	Write uint64

	// Requests is the chronological history of syscall-level requests made
	// through this descriptor.
	Requests []SyscallRequest
}

// NewFD returns a descriptor with no classification and zeroed counters.
func NewFD(num int64) *FD {
	return &FD{
		Num:    num,
		Family: unix.AF_UNSPEC,
		Parent: -1,
	}
}

// Clone models a new descriptor referencing the same endpoint, as produced by
// dup-class syscalls and fork inheritance. Identity fields are copied;
// counters and request history start from zero.
func (f *FD) Clone() *FD {
	return &FD{
		Num:      f.Num,
		Filename: f.Filename,
		Family:   f.Family,
		Type:     f.Type,
		Parent:   f.Parent,
		Cloexec:  f.Cloexec,
	}
}

// RecordRead adds n bytes to the read counter matching the descriptor's
// current type and to the unconditional total.
func (f *FD) RecordRead(n uint64) {
	switch f.Type {
	case FDTypeNet, FDTypeMaybeNet:
		f.NetRead += n
	case FDTypeDisk:
		f.DiskRead += n
	default:
		f.UnkRead += n
	}
	f.Read += n
}

// RecordWrite adds n bytes to the write counter matching the descriptor's
// current type and to the unconditional total.
func (f *FD) RecordWrite(n uint64) {
	switch f.Type {
	case FDTypeNet, FDTypeMaybeNet:
		f.NetWrite += n
	case FDTypeDisk:
		f.DiskWrite += n
	default:
		f.UnkWrite += n
	}
	f.Write += n
}
