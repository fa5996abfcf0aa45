package state

// Syscall classification sets. Membership decides which I/O request kind an
// entry event builds and which direction a transfer is counted under.

type stringSet map[string]struct{}

func newStringSet(names ...string) stringSet {
	s := make(stringSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s stringSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

var (
	// diskOpenSyscalls open a descriptor backed by the filesystem.
	diskOpenSyscalls = newStringSet("open", "openat")
	// netOpenSyscalls open a descriptor backed by a socket.
	netOpenSyscalls = newStringSet("accept", "accept4", "socket")
	// dupSyscalls duplicate an existing descriptor.
	dupSyscalls = newStringSet("fcntl", "dup", "dup2", "dup3")

	closeSyscalls = newStringSet("close")
	readSyscalls  = newStringSet("read", "recvmsg", "recvfrom", "splice", "readv", "sendfile64")
	writeSyscalls = newStringSet("write", "sendmsg", "sendto", "writev")
	syncSyscalls  = newStringSet("sync", "sync_file_range", "fsync", "fdatasync")
)

// IsDiskOpenSyscall reports whether name opens a disk-backed descriptor.
func IsDiskOpenSyscall(name string) bool { return diskOpenSyscalls.has(name) }

// IsNetOpenSyscall reports whether name opens a socket descriptor.
func IsNetOpenSyscall(name string) bool { return netOpenSyscalls.has(name) }

// IsDupSyscall reports whether name duplicates a descriptor.
func IsDupSyscall(name string) bool { return dupSyscalls.has(name) }

// IsOpenSyscall reports whether name produces a new descriptor of any kind.
func IsOpenSyscall(name string) bool {
	return diskOpenSyscalls.has(name) || netOpenSyscalls.has(name) || dupSyscalls.has(name)
}

// IsCloseSyscall reports whether name closes a descriptor.
func IsCloseSyscall(name string) bool { return closeSyscalls.has(name) }

// IsReadSyscall reports whether name reads from a descriptor.
func IsReadSyscall(name string) bool { return readSyscalls.has(name) }

// IsWriteSyscall reports whether name writes to a descriptor.
func IsWriteSyscall(name string) bool { return writeSyscalls.has(name) }

// IsReadWriteSyscall reports whether name transfers data on a descriptor.
func IsReadWriteSyscall(name string) bool {
	return readSyscalls.has(name) || writeSyscalls.has(name)
}

// IsSyncSyscall reports whether name flushes data to storage.
func IsSyncSyscall(name string) bool { return syncSyscalls.has(name) }

// IsIOSyscall reports whether name belongs to any I/O class tracked here.
func IsIOSyscall(name string) bool {
	return IsOpenSyscall(name) || IsCloseSyscall(name) ||
		IsReadWriteSyscall(name) || IsSyncSyscall(name)
}
