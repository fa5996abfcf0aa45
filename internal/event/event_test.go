package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldLookup_PresentZeroVsAbsent(t *testing.T) {
	ev := New("syscall_exit_read", 100, 0).WithField(FieldRet, int64(0))

	ret, ok := ev.Int(FieldRet)
	assert.True(t, ok, "present zero must be reported as present")
	assert.Equal(t, int64(0), ret)

	_, ok = ev.Int(FieldFD)
	assert.False(t, ok, "absent field must be reported as absent")
	assert.False(t, ev.Has(FieldFD))
	assert.True(t, ev.Has(FieldRet))
}

func TestFieldLookup_JSONNumbers(t *testing.T) {
	ev := New("block_rq_issue", 100, 0).
		WithField(FieldSector, float64(2048)).
		WithField(FieldDev, float64(264241152))

	sector, ok := ev.Uint(FieldSector)
	assert.True(t, ok)
	assert.Equal(t, uint64(2048), sector)
}

func TestFieldLookup_Strings(t *testing.T) {
	ev := New("syscall_entry_open", 100, 0).WithField(FieldFilename, "/tmp/a")

	filename, ok := ev.Str(FieldFilename)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/a", filename)

	_, ok = ev.Int(FieldFilename)
	assert.False(t, ok, "string field must not decode as integer")
}

func TestSyscallNamePrefixes(t *testing.T) {
	assert.True(t, IsSyscallEntry("syscall_entry_openat"))
	assert.True(t, IsSyscallEntry("compat_syscall_entry_read"))
	assert.False(t, IsSyscallEntry("syscall_exit_openat"))

	assert.True(t, IsSyscallExit("syscall_exit_openat"))
	assert.True(t, IsSyscallExit("compat_syscall_exit_read"))
	assert.False(t, IsSyscallExit("sched_switch"))

	assert.Equal(t, "openat", SyscallName("syscall_entry_openat"))
	assert.Equal(t, "read", SyscallName("compat_syscall_exit_read"))
	assert.Equal(t, "sched_switch", SyscallName("sched_switch"))
}
