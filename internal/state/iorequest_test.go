package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/hafixo/lttng-analyses/internal/event"
)

func TestOpenFromDisk_FinalizedAtExit(t *testing.T) {
	entry := event.New("syscall_entry_openat", 10, 0).
		WithField(event.FieldFilename, "/tmp/a").
		WithField(event.FieldFlags, int64(unix.O_RDWR|unix.O_CLOEXEC))

	req := NewOpenFromDisk(entry, 42)
	require.Equal(t, "openat", req.SyscallName)
	assert.Equal(t, "/tmp/a", req.Filename)
	assert.Equal(t, FDTypeDisk, req.FDType)
	assert.True(t, req.Cloexec)
	assert.Equal(t, int64(-1), req.FD)
	assert.True(t, req.Pending())

	exit := event.New("syscall_exit_openat", 12, 0).WithField(event.FieldRet, int64(7))
	req.UpdateFromExit(exit)

	assert.False(t, req.Pending())
	assert.Equal(t, int64(7), req.FD)
	assert.Equal(t, uint64(2), req.Duration)
	assert.GreaterOrEqual(t, req.EndTS, req.BeginTS)
	assert.Equal(t, req.EndTS-req.BeginTS, req.Duration)
	assert.Equal(t, int64(0), req.Errno)
}

func TestOpenFromDisk_NegativeReturnBecomesErrno(t *testing.T) {
	entry := event.New("syscall_entry_open", 10, 0).
		WithField(event.FieldFilename, "/etc/shadow").
		WithField(event.FieldFlags, int64(unix.O_RDONLY))
	req := NewOpenFromDisk(entry, 1)

	exit := event.New("syscall_exit_open", 11, 0).WithField(event.FieldRet, int64(-13))
	req.UpdateFromExit(exit)

	assert.Equal(t, int64(13), req.Errno, "EACCES stored as positive errno")
	assert.Equal(t, int64(-1), req.FD, "failed open resolves no descriptor")
}

func TestOpenFromAccept_INETLabel(t *testing.T) {
	// 10.0.0.1 packed big-endian.
	entry := event.New("syscall_entry_accept", 100, 0).
		WithField(event.FieldFamily, int64(unix.AF_INET)).
		WithField(event.FieldV4Addr, int64(0x0a000001)).
		WithField(event.FieldSPort, int64(80))

	req := NewOpenFromAccept(entry, 42)
	assert.Equal(t, FDTypeNet, req.FDType)
	assert.Equal(t, uint16(unix.AF_INET), req.Family)
	assert.Equal(t, "10.0.0.1:80", req.Filename)
	assert.Equal(t, int64(42), req.TID)
}

func TestOpenFromAccept_NoFamilyKeepsSocketLabel(t *testing.T) {
	req := NewOpenFromAccept(event.New("syscall_entry_accept4", 100, 0), 1)
	assert.Equal(t, "socket", req.Filename)
	assert.Equal(t, uint16(unix.AF_UNSPEC), req.Family)
}

func TestOpenFromOldFD_UntrackedSourceDegrades(t *testing.T) {
	entry := event.New("syscall_entry_dup2", 100, 0).WithField(event.FieldFD, int64(5))

	req := NewOpenFromOldFD(entry, 42, nil)
	assert.Equal(t, "unknown", req.Filename)
	assert.Equal(t, FDTypeUnknown, req.FDType)
	assert.Equal(t, int64(5), req.SourceFD)
}

func TestOpenFromOldFD_InheritsFromTrackedSource(t *testing.T) {
	old := NewFD(5)
	old.Filename = "/var/log/messages"
	old.Type = FDTypeDisk

	entry := event.New("syscall_entry_dup", 100, 0).WithField(event.FieldFD, int64(5))
	req := NewOpenFromOldFD(entry, 42, old)

	assert.Equal(t, "/var/log/messages", req.Filename)
	assert.Equal(t, FDTypeDisk, req.FDType)
}

func TestReadWrite_Classification(t *testing.T) {
	read := NewReadWriteFromFDEvent(
		event.New("syscall_entry_read", 10, 0).
			WithField(event.FieldFD, int64(3)).
			WithField(event.FieldCount, int64(4096)),
		1, event.FieldCount)
	assert.Equal(t, OpRead, read.Op)
	assert.Equal(t, int64(4096), read.Size)
	assert.Equal(t, int64(3), read.FD)

	write := NewReadWriteFromFDEvent(
		event.New("syscall_entry_sendmsg", 10, 0).WithField(event.FieldFD, int64(4)),
		1, "")
	assert.Equal(t, OpWrite, write.Op, "sendmsg is not in the read set")
	assert.Equal(t, int64(-1), write.Size, "size unknown until exit")
}

func TestReadWrite_SizeBackfilledFromReturn(t *testing.T) {
	req := NewReadWriteFromFDEvent(
		event.New("syscall_entry_recvmsg", 10, 0).WithField(event.FieldFD, int64(3)),
		1, "")
	require.Equal(t, int64(-1), req.Size)

	req.UpdateFromExit(event.New("syscall_exit_recvmsg", 15, 0).WithField(event.FieldRet, int64(512)))

	assert.Equal(t, int64(512), req.ReturnedSize)
	assert.Equal(t, req.ReturnedSize, req.Size, "entry-time size backfilled from return")
	assert.Equal(t, uint64(5), req.Duration)
}

func TestReadWrite_EntrySizeNotOverwritten(t *testing.T) {
	req := NewReadWriteFromFDEvent(
		event.New("syscall_entry_read", 10, 0).
			WithField(event.FieldFD, int64(3)).
			WithField(event.FieldCount, int64(4096)),
		1, event.FieldCount)

	req.UpdateFromExit(event.New("syscall_exit_read", 12, 0).WithField(event.FieldRet, int64(100)))

	assert.Equal(t, int64(100), req.ReturnedSize)
	assert.Equal(t, int64(4096), req.Size, "short read keeps the requested size")
}

func TestSplice_SplitDescriptors(t *testing.T) {
	req := NewSplice(
		event.New("syscall_entry_splice", 10, 0).
			WithField(event.FieldFDIn, int64(3)).
			WithField(event.FieldFDOut, int64(4)).
			WithField(event.FieldLen, int64(65536)),
		7)

	assert.Equal(t, OpRead, req.Op)
	assert.Equal(t, int64(3), req.FDIn)
	assert.Equal(t, int64(4), req.FDOut)
	assert.Equal(t, int64(-1), req.FD)
	assert.Equal(t, int64(65536), req.Size)
}

func TestSendfile_SplitDescriptors(t *testing.T) {
	req := NewSendfile(
		event.New("syscall_entry_sendfile64", 10, 0).
			WithField(event.FieldInFD, int64(8)).
			WithField(event.FieldOutFD, int64(9)).
			WithField(event.FieldCount, int64(1024)),
		7)

	assert.Equal(t, "sendfile64", req.SyscallName)
	assert.Equal(t, int64(8), req.FDIn)
	assert.Equal(t, int64(9), req.FDOut)
	assert.Equal(t, int64(1024), req.Size)
}

func TestSync_SizeBackfilledFromReturn(t *testing.T) {
	req := NewSyncFromFsync(
		event.New("syscall_entry_fsync", 10, 0).WithField(event.FieldFD, int64(3)), 1)
	require.Equal(t, int64(-1), req.Size)

	req.UpdateFromExit(event.New("syscall_exit_fsync", 30, 0).WithField(event.FieldRet, int64(0)))

	assert.Equal(t, int64(0), req.ReturnedSize)
	assert.Equal(t, int64(0), req.Size)
	assert.Equal(t, uint64(20), req.Duration)
}

func TestSyncFileRange_EntrySize(t *testing.T) {
	req := NewSyncFromSyncFileRange(
		event.New("syscall_entry_sync_file_range", 10, 0).
			WithField(event.FieldFD, int64(3)).
			WithField(event.FieldNBytes, int64(8192)),
		1)
	assert.Equal(t, int64(8192), req.Size)
	assert.Equal(t, int64(3), req.FD)
	assert.Equal(t, OpSync, req.Op)
}

func TestClose_CarriesDescriptor(t *testing.T) {
	req := NewClose(event.New("syscall_entry_close", 10, 0).WithField(event.FieldFD, int64(7)), 1)
	assert.Equal(t, OpClose, req.Op)
	assert.Equal(t, int64(7), req.FD)
}
