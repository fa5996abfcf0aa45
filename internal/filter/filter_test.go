package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafixo/lttng-analyses/internal/event"
)

func TestCompile_RejectsNonBooleanExpression(t *testing.T) {
	_, err := Compile(`name + "x"`)
	assert.Error(t, err)
}

func TestCompile_RejectsSyntaxError(t *testing.T) {
	_, err := Compile(`cpu ==`)
	assert.Error(t, err)
}

func TestMatch_ByName(t *testing.T) {
	f, err := Compile(`name startsWith "syscall_entry_"`)
	require.NoError(t, err)

	ok, err := f.Match(event.New("syscall_entry_read", 100, 0))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(event.New("sched_switch", 100, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_ByCPUAndTID(t *testing.T) {
	f, err := Compile(`cpu == 2 && tid == 42`)
	require.NoError(t, err)

	ok, err := f.Match(event.New("sched_process_free", 100, 2).
		WithField(event.FieldTID, int64(42)))
	require.NoError(t, err)
	assert.True(t, ok)

	// Missing tid field evaluates as 0.
	ok, err = f.Match(event.New("sched_process_free", 100, 2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_ByRawField(t *testing.T) {
	f, err := Compile(`fields.fd == 3`)
	require.NoError(t, err)

	ok, err := f.Match(event.New("syscall_entry_read", 100, 0).
		WithField(event.FieldFD, 3))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSource_PreservesExpressionText(t *testing.T) {
	f, err := Compile(`cpu == 0`)
	require.NoError(t, err)
	assert.Equal(t, `cpu == 0`, f.Source())
}
